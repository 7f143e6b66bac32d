package usecase

import (
	"errors"

	"marketplace-booking/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUnauthenticated     = apperror.Unauthorized("unauthenticated", "user not found in context")
	ErrNotContractor       = apperror.Forbidden("not_contractor", "contractor profile not found")
	ErrServiceNotFound     = apperror.NotFound("service_not_found", "service not found")
	ErrServiceUnavailable  = apperror.Validation("service_unavailable", "service is not available for booking")
	ErrSelfBooking         = apperror.Validation("self_booking", "you cannot book your own service")
	ErrActiveBookingLimit  = apperror.Conflict("active_booking_limit", "maximum number of active bookings reached")
	ErrBookingConflict     = apperror.Conflict("booking_conflict", "time slot is not available")
	ErrBookingNotFound     = apperror.NotFound("booking_not_found", "booking not found")
	ErrBookingNotOwned     = apperror.Forbidden("booking_not_owned", "booking does not belong to you")
	ErrBookingsNotFound    = apperror.NotFound("bookings_not_found", "some bookings were not found")
	ErrBulkInvalid         = apperror.Conflict("bulk_invalid", "some bookings cannot be updated")
	ErrScheduledAtRequired = apperror.Validation("scheduled_at_required", "scheduled_at is required")
	ErrInvalidFilter       = apperror.Validation("invalid_filter", "invalid booking filter")
	ErrInvalidTimeRange    = apperror.Validation("invalid_time_range", "end time must be after start time")
	ErrInvalidAvailability = apperror.Validation("invalid_availability", "invalid availability")
	ErrBlockedSlotNotFound = apperror.NotFound("blocked_slot_not_found", "blocked slot not found")
	ErrBlockedSlotConflict = apperror.Conflict("blocked_slot_conflict", "time range overlaps existing blocked slots")
	ErrBlockedSlotStarted  = apperror.Validation("blocked_slot_started", "cannot unblock a time range that has already started")
	ErrInvalidDate         = apperror.Validation("invalid_date", "date must be in YYYY-MM-DD format")
)

// isExclusionViolation reports a PostgreSQL exclusion constraint violation
// (23P01), raised when two active bookings of a contractor would overlap.
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
