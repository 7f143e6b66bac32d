package scheduling

import (
	"errors"
	"testing"
	"time"

	"marketplace-booking/internal/domain/entity"
	"marketplace-booking/pkg/apperror"
)

func TestCheckLeadTimeBoundary(t *testing.T) {
	rules := DefaultRules()
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	if err := rules.CheckLeadTime(now, now.Add(119*time.Minute)); !errors.Is(err, ErrLeadTime) {
		t.Fatalf("expected ErrLeadTime at +119m, got %v", err)
	}
	if err := rules.CheckLeadTime(now, now.Add(120*time.Minute)); err != nil {
		t.Fatalf("expected exactly +120m to be allowed, got %v", err)
	}
	if err := rules.CheckLeadTime(now, now.Add(121*time.Minute)); err != nil {
		t.Fatalf("expected +121m to be allowed, got %v", err)
	}
}

func TestCheckLeadTimeMessageFollowsRule(t *testing.T) {
	rules := Rules{LeadTime: 90 * time.Minute}
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	err := apperror.From(rules.CheckLeadTime(now, now))
	if err == nil || err.Message != "booking must be at least 90 minutes in advance" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestCheckClientCancelCutoff(t *testing.T) {
	rules := DefaultRules()
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	b := func(d time.Duration) *entity.Booking {
		return &entity.Booking{Status: entity.BookingStatusConfirmed, ScheduledAt: now.Add(d)}
	}

	if err := rules.CheckClientCancel(b(time.Hour+59*time.Minute), now); !errors.Is(err, ErrCancellationCutoff) {
		t.Fatalf("expected cutoff error at 1h59m, got %v", err)
	}
	if err := rules.CheckClientCancel(b(2*time.Hour), now); err != nil {
		t.Fatalf("expected exactly 2h to be allowed, got %v", err)
	}
	if err := rules.CheckClientCancel(b(2*time.Hour+time.Minute), now); err != nil {
		t.Fatalf("expected 2h01m to be allowed, got %v", err)
	}

	pending := b(3 * time.Hour)
	pending.Status = entity.BookingStatusPending
	if err := rules.CheckClientCancel(pending, now); err != nil {
		t.Fatalf("expected pending booking to be cancellable, got %v", err)
	}
}

func TestTerminalBookingsAreImmutable(t *testing.T) {
	rules := DefaultRules()
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	terminal := []entity.BookingStatus{entity.BookingStatusCancelled, entity.BookingStatusCompleted}
	targets := []entity.BookingStatus{entity.BookingStatusConfirmed, entity.BookingStatusCancelled, entity.BookingStatusCompleted}

	for _, current := range terminal {
		for _, target := range targets {
			if err := CheckStatusChange(current, target); !errors.Is(err, ErrTerminalBooking) {
				t.Errorf("%s -> %s: expected ErrTerminalBooking, got %v", current, target, err)
			}
			if err := CheckBulkTransition(current, target); !errors.Is(err, ErrTerminalBooking) {
				t.Errorf("bulk %s -> %s: expected ErrTerminalBooking, got %v", current, target, err)
			}
		}
		b := &entity.Booking{Status: current, ScheduledAt: now.Add(48 * time.Hour)}
		if err := CheckReschedulable(b); !errors.Is(err, ErrTerminalBooking) {
			t.Errorf("reschedule from %s: expected ErrTerminalBooking, got %v", current, err)
		}
		if err := rules.CheckClientCancel(b, now); !errors.Is(err, ErrTerminalBooking) {
			t.Errorf("cancel from %s: expected ErrTerminalBooking, got %v", current, err)
		}
	}
}

func TestCheckStatusChangeRejectsUnknownTarget(t *testing.T) {
	if err := CheckStatusChange(entity.BookingStatusConfirmed, entity.BookingStatusPending); !errors.Is(err, ErrInvalidTargetStatus) {
		t.Fatalf("expected ErrInvalidTargetStatus, got %v", err)
	}
	if err := CheckStatusChange(entity.BookingStatusConfirmed, entity.BookingStatusCompleted); err != nil {
		t.Fatalf("single update CONFIRMED -> COMPLETED should pass, got %v", err)
	}
	if err := CheckStatusChange(entity.BookingStatusPending, entity.BookingStatusCompleted); err != nil {
		t.Fatalf("single update PENDING -> COMPLETED should pass, got %v", err)
	}
}

func TestCheckBulkTransition(t *testing.T) {
	tests := []struct {
		current, target entity.BookingStatus
		wantErr         error
	}{
		{entity.BookingStatusPending, entity.BookingStatusConfirmed, nil},
		{entity.BookingStatusConfirmed, entity.BookingStatusConfirmed, ErrInvalidTransition},
		{entity.BookingStatusConfirmed, entity.BookingStatusCompleted, nil},
		{entity.BookingStatusPending, entity.BookingStatusCompleted, ErrInvalidTransition},
		{entity.BookingStatusPending, entity.BookingStatusCancelled, nil},
		{entity.BookingStatusConfirmed, entity.BookingStatusCancelled, nil},
	}
	for _, tt := range tests {
		err := CheckBulkTransition(tt.current, tt.target)
		if tt.wantErr == nil && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tt.current, tt.target, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("%s -> %s: expected %v, got %v", tt.current, tt.target, tt.wantErr, err)
		}
	}
}
