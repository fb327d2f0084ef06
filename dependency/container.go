package dependency

import (
	"fmt"

	telemetryUseCase "github.com/agaii/ping-api/application/usecases/telemetry"
	"github.com/agaii/ping-api/domain/repository"
	"github.com/agaii/ping-api/infrastructure/cache"
	"github.com/agaii/ping-api/infrastructure/config"
	"github.com/agaii/ping-api/infrastructure/logger"
	"github.com/agaii/ping-api/infrastructure/metrics"
	"github.com/agaii/ping-api/infrastructure/security"
	"github.com/agaii/ping-api/infrastructure/sessionlog"
	telemetryCtrl "github.com/agaii/ping-api/presentation/controllers/telemetry"
	"go.opentelemetry.io/otel/sdk/trace"
)

type Container struct {
	Config *config.Config
	Logger *logger.Logger

	TracerProvider *trace.TracerProvider
	MetricsManager metrics.Manager

	TokenVerifier *security.TokenVerifier

	BehaviorEventRepo repository.BehaviorEventRepository
	SessionLogWriter  *sessionlog.Writer

	TelemetryUC telemetryUseCase.TelemetryUseCase

	TelemetryController telemetryCtrl.TelemetryController
}

func NewContainer() (*Container, error) {
	c := &Container{}

	c.Config = config.GetConfig()

	loggerInstance, err := newLogger(c.Config)
	if err != nil {
		return nil, fmt.Errorf("error initializing logger: %w", err)
	}
	c.Logger = loggerInstance

	c.Logger.Info("Initializing Ping API dependencies")

	if err := cache.InitRedis(c.Config); err != nil {
		return nil, fmt.Errorf("error initializing cache: %w", err)
	}

	if err := c.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("error initializing infrastructure: %w", err)
	}

	c.initUseCases()

	c.initControllers()

	c.Logger.Info("All dependencies initialized successfully")

	return c, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	if cfg.IsProduction() {
		return logger.NewProductionLogger(cfg)
	}
	return logger.NewDevelopmentLogger()
}

func (c *Container) initUseCases() {
	c.TelemetryUC = telemetryUseCase.NewTelemetryUseCase(
		c.BehaviorEventRepo,
		c.SessionLogWriter,
		c.MetricsManager,
		c.Logger,
		c.Config.Telemetry.CapturePolicy,
	)

	c.Logger.Info("Use cases initialized successfully")
}

func (c *Container) initControllers() {
	c.TelemetryController = telemetryCtrl.NewTelemetryController(c.TelemetryUC)

	c.Logger.Info("Controllers initialized successfully")
}
