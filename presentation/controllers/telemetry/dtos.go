package telemetry

import "github.com/agaii/ping-api/domain/event"

type StartSessionRequest struct {
	ModuleID string `json:"module_id" binding:"required,max=128"`
}

type IngestRequest struct {
	SessionID string           `json:"session_id" binding:"required,max=64"`
	Events    []event.RawEvent `json:"events" binding:"required"`
}

type EndSessionRequest struct {
	SessionID string `json:"session_id" binding:"required,max=64"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
