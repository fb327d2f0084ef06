package model

import (
	"database/sql"
	"time"
)

// BehaviorEvent is one durable, queryable telemetry record. Rows are
// pure inserts: they are never updated, and deleted only through the
// data-subject-rights erase operation.
type BehaviorEvent struct {
	ID int64 `gorm:"primaryKey"`

	// Actors - at most one of these is set; both absent means the
	// event was captured from an unauthenticated caller.
	UserID         sql.NullInt64  `gorm:"null;index"`
	GuestSessionID sql.NullString `gorm:"type:VARCHAR(64);null;index"`

	ModuleID  string `gorm:"type:VARCHAR(128);not null;index"`
	SessionID string `gorm:"type:VARCHAR(64);not null;index"`

	EventType string `gorm:"type:VARCHAR(32);not null;index"`

	// Payload snapshot after compliance filtering and summarization;
	// always carries the anonymized identity token under "anon_id".
	EventData []byte `gorm:"type:JSONB;not null"`

	Timestamp time.Time `gorm:"type:TIMESTAMP with time zone;not null;index"`
}

func (BehaviorEvent) TableName() string {
	return "behavior_events"
}
