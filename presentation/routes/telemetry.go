package routes

import (
	"github.com/agaii/ping-api/infrastructure/logger"
	"github.com/agaii/ping-api/presentation/controllers/telemetry"
	"github.com/agaii/ping-api/presentation/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func TelemetryRoutes(
	router *gin.RouterGroup,
	controller telemetry.TelemetryController,
	redisClient *redis.Client,
	logger *logger.Logger,
) {
	group := router.Group("/telemetry")
	{
		group.POST("/session/start",
			middlewares.RateLimiterMiddleware(redisClient, logger, middlewares.SessionRateLimiterConfig()),
			controller.StartSession)
		group.POST("/events",
			middlewares.RateLimiterMiddleware(redisClient, logger, middlewares.IngestRateLimiterConfig()),
			controller.IngestEvents)
		group.POST("/session/end",
			middlewares.RateLimiterMiddleware(redisClient, logger, middlewares.SessionRateLimiterConfig()),
			controller.EndSession)
		group.GET("/session/:session_id/stats",
			middlewares.RequireActor(),
			middlewares.RateLimiterMiddleware(redisClient, logger, middlewares.SessionRateLimiterConfig()),
			controller.SessionStats)

		group.DELETE("/user/data",
			middlewares.RequireActor(),
			middlewares.RateLimiterMiddleware(redisClient, logger, middlewares.RightsRateLimiterConfig()),
			controller.EraseUserData)
		group.GET("/user/export",
			middlewares.RequireActor(),
			middlewares.RateLimiterMiddleware(redisClient, logger, middlewares.RightsRateLimiterConfig()),
			controller.ExportUserData)
	}
}
