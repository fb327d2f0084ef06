package dependency

import (
	"fmt"

	"github.com/agaii/ping-api/infrastructure/metrics"
	"github.com/agaii/ping-api/infrastructure/metrics/exporters"
	"github.com/agaii/ping-api/infrastructure/persistence/database"
	"github.com/agaii/ping-api/infrastructure/persistence/migration"
	repositories "github.com/agaii/ping-api/infrastructure/persistence/repository"
	"github.com/agaii/ping-api/infrastructure/security"
	"github.com/agaii/ping-api/infrastructure/sessionlog"
	"go.uber.org/zap"
)

func (c *Container) initInfrastructure() error {
	tracerProvider, err := exporters.InitJaegerExporter(c.Config)
	if err != nil {
		c.Logger.Error("failed to initialize Jaeger exporter", zap.Error(err))
		c.Logger.Warn("Using noop tracer provider as fallback")
	} else {
		c.TracerProvider = tracerProvider
		c.Logger.Info("Jaeger exporter initialized successfully",
			zap.String("endpoint", c.Config.Jaeger.Endpoint),
			zap.String("service", c.Config.Jaeger.ServiceName),
		)
	}

	meter := exporters.Prometheus(c.Config.Jaeger.ServiceName, c.Config.Jaeger.ServiceVersion)
	if meter == nil {
		return fmt.Errorf("failed to initialize Prometheus exporter")
	}

	c.MetricsManager = metrics.NewMetricsManager(meter, c.Logger)

	c.MetricsManager.NewGauge("app_go_routines", "Number of goroutines")
	c.MetricsManager.NewGauge("app_sys_memory_alloc", "Bytes allocated and in use")
	c.MetricsManager.NewGauge("app_sys_total_alloc", "Total bytes allocated")
	c.MetricsManager.NewGauge("app_go_numGC", "Number of completed GC cycles")
	c.MetricsManager.NewGauge("app_go_sys", "Total bytes of memory obtained from OS")

	c.MetricsManager.NewCounter(metrics.EventsReceivedTotal, "Total number of telemetry events received")
	c.MetricsManager.NewCounter(metrics.EventsSavedTotal, "Total number of telemetry events persisted")
	c.MetricsManager.NewCounter(metrics.EventsRejectedTotal, "Total number of telemetry events dropped by the compliance filter")
	c.MetricsManager.NewCounter(metrics.SessionLogWriteErrorTotal, "Total number of failed session log appends")
	c.MetricsManager.NewHistogram(metrics.IngestBatchSeconds, "Ingest batch processing duration in seconds",
		0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5)

	c.Logger.Info("Metrics initialized successfully")

	if err := database.InitDb(c.Config, c.Logger.Log); err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	migration.Up1()

	c.BehaviorEventRepo = repositories.NewBehaviorEventRepository(c.Logger.Log)

	c.SessionLogWriter = sessionlog.NewWriter(sessionlog.NewResolver(c.Config.Telemetry.DataDir))

	c.TokenVerifier = security.NewTokenVerifier(c.Config.Auth.JwtSecret)

	return nil
}
