package repository

import (
	domainRepo "marketplace-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// clientLockSpace is the first key of the two-key advisory locks taken per
// client. Two-key locks never collide with the single-key contractor locks.
const clientLockSpace = 1

type calendarLock struct{}

func NewCalendarLock() domainRepo.CalendarLock {
	return &calendarLock{}
}

// Lock takes a transaction-scoped advisory lock keyed by the contractor id.
// It must run inside a transaction; outside one the lock is released at once.
func (l *calendarLock) Lock(db *gorm.DB, contractorID int64) error {
	return db.Exec("SELECT pg_advisory_xact_lock(?)", contractorID).Error
}

func (l *calendarLock) LockClient(db *gorm.DB, clientID uuid.UUID) error {
	return db.Exec("SELECT pg_advisory_xact_lock(?, hashtext(?))", clientLockSpace, clientID.String()).Error
}
