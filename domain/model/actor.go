package model

import "database/sql"

// Actor is the resolved identity behind a request: a registered user,
// a guest, or anonymous (neither set). Ingestion accepts all three;
// stats, export and erase require a non-anonymous actor.
type Actor struct {
	UserID  *int64
	GuestID *string
}

func (a Actor) IsAnonymous() bool {
	return a.UserID == nil && (a.GuestID == nil || *a.GuestID == "")
}

func (a Actor) IsRegistered() bool {
	return a.UserID != nil
}

// NullUserID returns the actor's user id as a nullable column value.
func (a Actor) NullUserID() sql.NullInt64 {
	if a.UserID == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *a.UserID, Valid: true}
}

// NullGuestID returns the actor's guest id as a nullable column value.
func (a Actor) NullGuestID() sql.NullString {
	if a.GuestID == nil || *a.GuestID == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *a.GuestID, Valid: true}
}

// Owns reports whether the event was recorded against this actor's
// identity. Registered users match on user id, guests on guest id.
func (a Actor) Owns(e BehaviorEvent) bool {
	if a.IsRegistered() {
		return e.UserID.Valid && e.UserID.Int64 == *a.UserID
	}
	if a.GuestID != nil && *a.GuestID != "" {
		return e.GuestSessionID.Valid && e.GuestSessionID.String == *a.GuestID
	}
	return false
}
