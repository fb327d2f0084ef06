package repository

import (
	"context"

	"github.com/agaii/ping-api/domain/model"
)

type BehaviorEventRepository interface {
	// CreateBatch inserts all rows inside a single transaction: every
	// row is persisted or none is.
	CreateBatch(ctx context.Context, events []model.BehaviorEvent) error

	CountBySession(ctx context.Context, sessionID string) (int64, error)

	// ListBySession returns the session's rows in storage order.
	ListBySession(ctx context.Context, sessionID string) ([]model.BehaviorEvent, error)

	// ListByActor returns every row recorded against the actor's
	// identity, in storage order.
	ListByActor(ctx context.Context, actor model.Actor) ([]model.BehaviorEvent, error)

	// DeleteByActor removes every row recorded against the actor's
	// identity and reports how many were deleted.
	DeleteByActor(ctx context.Context, actor model.Actor) (int64, error)

	// AnonymizeUser detaches a registered user from their rows
	// (user_id -> NULL) without deleting the telemetry. Used by
	// account hard-deletes, which keep research data but sever the
	// identity link.
	AnonymizeUser(ctx context.Context, userID int64) (int64, error)
}
