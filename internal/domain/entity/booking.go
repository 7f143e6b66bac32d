package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// ActiveBookingStatuses are the statuses that occupy the contractor's calendar.
var ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

// ParseBookingStatus accepts only the four known statuses.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch st := BookingStatus(s); st {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return st, true
	}
	return "", false
}

// Booking represents a client booking of a contractor's service.
// EndsAt is stored next to ScheduledAt so the store can index the occupied interval.
type Booking struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ServiceID       int64           `gorm:"not null;index" json:"service_id"`
	ContractorID    int64           `gorm:"not null;index" json:"contractor_id"`
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	ScheduledAt     time.Time       `gorm:"type:timestamptz;not null;index" json:"scheduled_at"`
	EndsAt          time.Time       `gorm:"type:timestamptz;not null" json:"ends_at"`
	DurationMinutes int             `gorm:"column:duration_minutes;not null" json:"duration_minutes"`
	Status          BookingStatus   `gorm:"type:varchar(20);not null;default:'CONFIRMED';index" json:"status"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_price"`
	Notes           *string         `gorm:"type:varchar(500)" json:"notes,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Service Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Client  User    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// IsPending checks if booking is in pending status
func (b *Booking) IsPending() bool {
	return b.Status == BookingStatusPending
}

// IsConfirmed checks if booking is confirmed
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// IsActive reports whether the booking still occupies the calendar.
func (b *Booking) IsActive() bool {
	return b.IsPending() || b.IsConfirmed()
}

// IsTerminal reports whether the booking can no longer change.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCancelled || b.Status == BookingStatusCompleted
}

// Duration returns the booked length.
func (b *Booking) Duration() time.Duration {
	return time.Duration(b.DurationMinutes) * time.Minute
}

// Schedule sets the start instant and length, keeping EndsAt in sync.
func (b *Booking) Schedule(at time.Time, durationMinutes int) {
	b.ScheduledAt = at
	b.DurationMinutes = durationMinutes
	b.EndsAt = at.Add(time.Duration(durationMinutes) * time.Minute)
}
