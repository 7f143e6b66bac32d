package usecase

import (
	"context"
	"time"

	"marketplace-booking/internal/converter"
	"marketplace-booking/internal/delivery/dto"
	"marketplace-booking/internal/delivery/http/middleware"
	"marketplace-booking/internal/domain/entity"
	"marketplace-booking/internal/domain/repository"
	"marketplace-booking/internal/domain/scheduling"
	"marketplace-booking/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// calendar bundles what every calendar-changing usecase needs: resolving
// the acting contractor, building a conflict checker for a time range and
// invalidating cached slots after a commit.
type calendar struct {
	log            *logrus.Logger
	opts           SchedulingOptions
	contractorRepo repository.ContractorRepository
	bookingRepo    repository.BookingRepository
	blockedRepo    repository.BlockedSlotRepository
	lock           repository.CalendarLock
	slotCache      service.SlotCache
}

func (c *calendar) currentContractor(ctx context.Context, db *gorm.DB) (*entity.Contractor, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	contractor, err := c.contractorRepo.FindByUserID(db, userID)
	if err != nil {
		c.log.Warnf("Failed to find contractor for user %s: %+v", userID, err)
		return nil, err
	}
	if contractor == nil {
		return nil, ErrNotContractor
	}
	return contractor, nil
}

// checker loads the active bookings and blocked slots that can collide with
// [start, start+duration) and wraps them in a Checker.
func (c *calendar) checker(db *gorm.DB, contractorID int64, start time.Time, duration time.Duration) (*scheduling.Checker, error) {
	loc := c.opts.location()
	end := start.Add(duration)

	bookings, err := c.bookingRepo.FindActiveInRange(db, contractorID, start, end)
	if err != nil {
		c.log.Warnf("Failed to load bookings of contractor %d: %+v", contractorID, err)
		return nil, err
	}
	slots, err := c.blockedRepo.FindByContractorInRange(db, contractorID, scheduling.StartOfDay(start, loc), scheduling.StartOfDay(end, loc))
	if err != nil {
		c.log.Warnf("Failed to load blocked slots of contractor %d: %+v", contractorID, err)
		return nil, err
	}
	return scheduling.NewChecker(c.opts.Generator.Quantum, bookings, slots, loc), nil
}

// ensureFree returns ErrBookingConflict listing every offender when
// [start, start+duration) is taken. excludeID is ignored when zero.
func (c *calendar) ensureFree(db *gorm.DB, contractorID int64, start time.Time, duration time.Duration, excludeID int64) error {
	checker, err := c.checker(db, contractorID, start, duration)
	if err != nil {
		return err
	}
	if excludeID != 0 {
		checker = checker.Excluding(excludeID)
	}
	if conflicts := checker.Check(start, duration); !conflicts.Empty() {
		return ErrBookingConflict.WithDetails(converter.ConflictsToResponse(conflicts))
	}
	return nil
}

func (c *calendar) lockCalendar(tx *gorm.DB, contractorID int64) error {
	if err := c.lock.Lock(tx, contractorID); err != nil {
		c.log.Warnf("Failed to lock calendar of contractor %d: %+v", contractorID, err)
		return err
	}
	return nil
}

// invalidate runs after commit. A failure only delays cache expiry.
func (c *calendar) invalidate(ctx context.Context, contractorID int64) {
	if c.slotCache == nil {
		return
	}
	if err := c.slotCache.Invalidate(ctx, contractorID); err != nil {
		c.log.Warnf("Failed to invalidate slot cache of contractor %d: %+v", contractorID, err)
	}
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// reloadBooking fetches the stored row with relations; on failure the
// in-memory booking is returned as is.
func (c *calendar) reloadBooking(db *gorm.DB, booking *entity.Booking) *dto.BookingResponse {
	full, err := c.bookingRepo.FindByID(db, booking.ID)
	if err != nil || full == nil {
		c.log.Warnf("Failed to reload booking %d: %+v", booking.ID, err)
		return converter.BookingToResponse(booking)
	}
	return converter.BookingToResponse(full)
}
