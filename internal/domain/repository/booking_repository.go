package repository

import (
	"time"

	"marketplace-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(db *gorm.DB, booking *entity.Booking) error
	FindByID(db *gorm.DB, id int64) (*entity.Booking, error)
	FindByClientID(db *gorm.DB, clientID uuid.UUID) ([]entity.Booking, error)
	FindByContractorID(db *gorm.DB, contractorID int64, filter *entity.BookingFilter) ([]entity.Booking, error)
	// FindActiveInRange returns PENDING and CONFIRMED bookings of a contractor
	// whose interval intersects [from, to).
	FindActiveInRange(db *gorm.DB, contractorID int64, from, to time.Time) ([]entity.Booking, error)
	// FindByIDsForUpdate row-locks the contractor's bookings among ids.
	FindByIDsForUpdate(db *gorm.DB, contractorID int64, ids []int64) ([]entity.Booking, error)
	CountByClientAndStatus(db *gorm.DB, clientID uuid.UUID, status entity.BookingStatus) (int64, error)
	// UpdateStatus changes the status only while the booking is not terminal.
	// Returns affected rows: 0 means the booking was finished concurrently.
	UpdateStatus(db *gorm.DB, id int64, status entity.BookingStatus) (int64, error)
	UpdateStatusBulk(db *gorm.DB, ids []int64, status entity.BookingStatus) (int64, error)
	UpdateSchedule(db *gorm.DB, booking *entity.Booking) error
}
