package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// CreateBookingRequest books the service named in the URL.
type CreateBookingRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
	Notes       *string   `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// QuickCreateBookingRequest books on behalf of a client identified by e-mail.
type QuickCreateBookingRequest struct {
	ServiceID       int64     `json:"service_id" validate:"required,gt=0"`
	ClientEmail     string    `json:"client_email" validate:"required,email"`
	ClientName      *string   `json:"client_name,omitempty" validate:"omitempty,min=2,max=255"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes *int      `json:"duration_minutes,omitempty" validate:"omitempty,gt=0,lte=1440"`
	Notes           *string   `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type RescheduleBookingRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=CONFIRMED CANCELLED COMPLETED"`
}

type BulkBookingActionRequest struct {
	BookingIDs []int64 `json:"booking_ids" validate:"required,min=1,max=100,dive,gt=0"`
	Action     string  `json:"action" validate:"required,oneof=CONFIRMED CANCELLED COMPLETED"`
}

// BookingListQuery carries the raw query string of the contractor listing.
// Start and End accept YYYY-MM-DD or RFC 3339.
type BookingListQuery struct {
	Status string
	Start  string
	End    string
}

// Response DTOs

type ServiceSummary struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	DurationMinutes int             `json:"duration_minutes"`
	Price           decimal.Decimal `json:"price"`
}

type BookingResponse struct {
	ID              int64           `json:"id"`
	ServiceID       int64           `json:"service_id"`
	ContractorID    int64           `json:"contractor_id"`
	ClientID        uuid.UUID       `json:"client_id"`
	ScheduledAt     time.Time       `json:"scheduled_at"`
	EndsAt          time.Time       `json:"ends_at"`
	DurationMinutes int             `json:"duration_minutes"`
	Status          string          `json:"status"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Notes           *string         `json:"notes,omitempty"`
	Service         *ServiceSummary `json:"service,omitempty"`
	Client          *UserResponse   `json:"client,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

type RescheduleBookingResponse struct {
	Booking             BookingResponse `json:"booking"`
	PreviousScheduledAt time.Time       `json:"previous_scheduled_at"`
	NewScheduledAt      time.Time       `json:"new_scheduled_at"`
}

type BulkBookingActionResponse struct {
	Updated int64  `json:"updated"`
	Message string `json:"message"`
}

// ScheduleConflict is one existing booking or blocked slot that a requested
// time collides with.
type ScheduleConflict struct {
	Type      string    `json:"type"` // "booking" or "blocked_slot"
	ID        int64     `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Reason    *string   `json:"reason,omitempty"`
}

// InvalidBooking explains why a member of a bulk action was refused.
type InvalidBooking struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type MissingBookings struct {
	MissingIDs []int64 `json:"missing_ids"`
}
