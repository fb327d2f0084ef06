package repository

import (
	"context"
	"errors"

	"github.com/agaii/ping-api/domain/model"
	"github.com/agaii/ping-api/domain/repository"
	"github.com/agaii/ping-api/infrastructure/persistence/database"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNoActorIdentity = errors.New("actor has no identity to match rows against")

type PostgresBehaviorEventRepository struct {
	database *gorm.DB
	logger   *zap.Logger
}

func NewBehaviorEventRepository(zapLogger *zap.Logger) repository.BehaviorEventRepository {
	return &PostgresBehaviorEventRepository{
		database: database.GetDb(),
		logger:   zapLogger,
	}
}

// CreateBatch inserts the batch inside one transaction. Rows are
// written in slice order; a failure rolls back every row.
func (r *PostgresBehaviorEventRepository) CreateBatch(ctx context.Context, events []model.BehaviorEvent) error {
	if len(events) == 0 {
		return nil
	}

	err := r.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&events).Error
	})
	if err != nil {
		r.logger.Error("behavior event batch insert failed",
			zap.Error(err),
			zap.Int("batch_size", len(events)),
		)
		return err
	}
	return nil
}

func (r *PostgresBehaviorEventRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.database.WithContext(ctx).
		Model(&model.BehaviorEvent{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	if err != nil {
		r.logger.Error("behavior event count failed", zap.Error(err), zap.String("session_id", sessionID))
		return 0, err
	}
	return count, nil
}

func (r *PostgresBehaviorEventRepository) ListBySession(ctx context.Context, sessionID string) ([]model.BehaviorEvent, error) {
	var events []model.BehaviorEvent
	err := r.database.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		r.logger.Error("behavior event session query failed", zap.Error(err), zap.String("session_id", sessionID))
		return nil, err
	}
	return events, nil
}

func (r *PostgresBehaviorEventRepository) ListByActor(ctx context.Context, actor model.Actor) ([]model.BehaviorEvent, error) {
	scope, err := r.actorScope(ctx, actor)
	if err != nil {
		return nil, err
	}

	var events []model.BehaviorEvent
	if err := scope.Order("id ASC").Find(&events).Error; err != nil {
		r.logger.Error("behavior event actor query failed", zap.Error(err))
		return nil, err
	}
	return events, nil
}

func (r *PostgresBehaviorEventRepository) DeleteByActor(ctx context.Context, actor model.Actor) (int64, error) {
	scope, err := r.actorScope(ctx, actor)
	if err != nil {
		return 0, err
	}

	result := scope.Delete(&model.BehaviorEvent{})
	if result.Error != nil {
		r.logger.Error("behavior event erase failed", zap.Error(result.Error))
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *PostgresBehaviorEventRepository) AnonymizeUser(ctx context.Context, userID int64) (int64, error) {
	result := r.database.WithContext(ctx).
		Model(&model.BehaviorEvent{}).
		Where("user_id = ?", userID).
		Update("user_id", nil)
	if result.Error != nil {
		r.logger.Error("behavior event anonymize failed", zap.Error(result.Error), zap.Int64("user_id", userID))
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *PostgresBehaviorEventRepository) actorScope(ctx context.Context, actor model.Actor) (*gorm.DB, error) {
	tx := r.database.WithContext(ctx).Model(&model.BehaviorEvent{})
	if actor.IsRegistered() {
		return tx.Where("user_id = ?", *actor.UserID), nil
	}
	if actor.GuestID != nil && *actor.GuestID != "" {
		return tx.Where("guest_session_id = ?", *actor.GuestID), nil
	}
	return nil, ErrNoActorIdentity
}
