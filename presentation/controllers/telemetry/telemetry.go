package telemetry

import (
	"errors"
	"net/http"

	usecase "github.com/agaii/ping-api/application/usecases/telemetry"
	"github.com/agaii/ping-api/presentation/middlewares"
	"github.com/gin-gonic/gin"
)

type TelemetryController interface {
	StartSession(ctx *gin.Context)
	IngestEvents(ctx *gin.Context)
	EndSession(ctx *gin.Context)
	SessionStats(ctx *gin.Context)
	EraseUserData(ctx *gin.Context)
	ExportUserData(ctx *gin.Context)
}

type telemetryController struct {
	usecase usecase.TelemetryUseCase
}

func NewTelemetryController(usecase usecase.TelemetryUseCase) TelemetryController {
	return &telemetryController{
		usecase: usecase,
	}
}

func (c *telemetryController) StartSession(ctx *gin.Context) {
	var req StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	actor, _ := middlewares.GetActorFromContext(ctx)

	result, err := c.usecase.StartSession(ctx.Request.Context(), actor, req.ModuleID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, result)
}

func (c *telemetryController) IngestEvents(ctx *gin.Context) {
	var req IngestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	actor, _ := middlewares.GetActorFromContext(ctx)

	result, err := c.usecase.Ingest(ctx.Request.Context(), actor, req.SessionID, req.Events)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (c *telemetryController) EndSession(ctx *gin.Context) {
	var req EndSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	actor, _ := middlewares.GetActorFromContext(ctx)

	result, err := c.usecase.EndSession(ctx.Request.Context(), actor, req.SessionID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (c *telemetryController) SessionStats(ctx *gin.Context) {
	sessionID := ctx.Param("session_id")
	if sessionID == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "session ID is required",
		})
		return
	}

	actor, _ := middlewares.GetActorFromContext(ctx)

	result, err := c.usecase.SessionStats(ctx.Request.Context(), actor, sessionID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (c *telemetryController) EraseUserData(ctx *gin.Context) {
	actor, _ := middlewares.GetActorFromContext(ctx)

	// mode=detach keeps the rows for research but severs the user
	// link; only meaningful for registered users.
	if ctx.Query("mode") == "detach" && actor.IsRegistered() {
		detached, err := c.usecase.AnonymizeUser(ctx.Request.Context(), *actor.UserID)
		if err != nil {
			c.writeError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"events_detached": detached})
		return
	}

	result, err := c.usecase.Erase(ctx.Request.Context(), actor)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (c *telemetryController) ExportUserData(ctx *gin.Context) {
	actor, _ := middlewares.GetActorFromContext(ctx)

	result, err := c.usecase.Export(ctx.Request.Context(), actor)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (c *telemetryController) writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, usecase.ErrSessionNotFound):
		ctx.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, usecase.ErrForbidden):
		ctx.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You do not own this session",
		})
	default:
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong",
		})
	}
}
