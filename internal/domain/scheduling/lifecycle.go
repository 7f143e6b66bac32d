package scheduling

import (
	"fmt"
	"time"

	"marketplace-booking/internal/domain/entity"
	"marketplace-booking/pkg/apperror"
)

var (
	ErrLeadTime            = apperror.Validation("lead_time", "booking must be at least 2 hours in advance")
	ErrCancellationCutoff  = apperror.Validation("cancellation_cutoff", "cannot cancel booking less than 2 hours before scheduled time")
	ErrTerminalBooking     = apperror.Conflict("terminal_booking", "cannot change a cancelled or completed booking")
	ErrInvalidTransition   = apperror.Conflict("invalid_transition", "invalid status transition")
	ErrInvalidTargetStatus = apperror.Validation("invalid_status", "status must be one of CONFIRMED, CANCELLED, COMPLETED")
)

// Rules holds the time-based booking policy.
type Rules struct {
	LeadTime     time.Duration
	CancelCutoff time.Duration
}

func DefaultRules() Rules {
	return Rules{LeadTime: DefaultLeadTime, CancelCutoff: 2 * time.Hour}
}

// CheckLeadTime rejects start instants earlier than now+LeadTime. A start
// exactly LeadTime away is allowed.
func (r Rules) CheckLeadTime(now, at time.Time) error {
	if at.Before(now.Add(r.LeadTime)) {
		return ErrLeadTime.WithMessage("booking must be at least %s in advance", humanize(r.LeadTime))
	}
	return nil
}

// CheckClientCancel guards a client-initiated cancellation.
func (r Rules) CheckClientCancel(b *entity.Booking, now time.Time) error {
	if b.IsTerminal() {
		return ErrTerminalBooking
	}
	if b.ScheduledAt.Sub(now) < r.CancelCutoff {
		return ErrCancellationCutoff.WithMessage("cannot cancel booking less than %s before scheduled time", humanize(r.CancelCutoff))
	}
	return nil
}

// CheckReschedulable rejects moving a finished booking.
func CheckReschedulable(b *entity.Booking) error {
	if b.IsTerminal() {
		return ErrTerminalBooking
	}
	return nil
}

// CheckStatusChange validates a single contractor status update. Terminal
// bookings never change and only CONFIRMED, CANCELLED or COMPLETED may be
// requested.
func CheckStatusChange(current, target entity.BookingStatus) error {
	switch target {
	case entity.BookingStatusConfirmed, entity.BookingStatusCancelled, entity.BookingStatusCompleted:
	default:
		return ErrInvalidTargetStatus
	}
	if current == entity.BookingStatusCancelled || current == entity.BookingStatusCompleted {
		return ErrTerminalBooking
	}
	return nil
}

// CheckBulkTransition is the stricter rule applied to bulk actions:
// confirming requires PENDING and completing requires CONFIRMED.
func CheckBulkTransition(current, target entity.BookingStatus) error {
	if err := CheckStatusChange(current, target); err != nil {
		return err
	}
	switch {
	case target == entity.BookingStatusConfirmed && current != entity.BookingStatusPending:
		return ErrInvalidTransition.WithMessage("only pending bookings can be confirmed")
	case target == entity.BookingStatusCompleted && current != entity.BookingStatusConfirmed:
		return ErrInvalidTransition.WithMessage("only confirmed bookings can be completed")
	}
	return nil
}

func humanize(d time.Duration) string {
	switch {
	case d%time.Hour == 0 && d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	default:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	}
}
