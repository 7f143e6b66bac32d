package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transactor hands out store handles bound to a request context.
// Repositories receive the handle explicitly so that a usecase decides
// which calls share a transaction.
type Transactor interface {
	DB(ctx context.Context) *gorm.DB
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	// ReadSnapshot runs fn in a read-only repeatable-read transaction so
	// that every query inside it sees the same committed state.
	ReadSnapshot(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CalendarLock serializes writes that change a contractor's calendar.
// The lock is held until the surrounding transaction ends.
type CalendarLock interface {
	Lock(db *gorm.DB, contractorID int64) error
	// LockClient serializes a client's bookings across contractors. Callers
	// take it before any contractor lock.
	LockClient(db *gorm.DB, clientID uuid.UUID) error
}
