package usecase

import (
	"context"
	"fmt"
	"strconv"

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

type AvailabilityUsecase interface {
	GetAvailability(ctx context.Context) (*dto.AvailabilityResponse, error)
	SetAvailability(ctx context.Context, req *dto.SetAvailabilityRequest) (*dto.AvailabilityResponse, error)
	GetAvailableSlots(ctx context.Context, serviceID int64) (*dto.AvailableSlotsResponse, error)
}

type availabilityUsecase struct {
	calendar
	transactor       repository.Transactor
	availabilityRepo repository.AvailabilityRepository
	serviceRepo      repository.ServiceRepository
	auditService     service.AuditService
}

func NewAvailabilityUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	opts SchedulingOptions,
	contractorRepo repository.ContractorRepository,
	availabilityRepo repository.AvailabilityRepository,
	serviceRepo repository.ServiceRepository,
	bookingRepo repository.BookingRepository,
	blockedRepo repository.BlockedSlotRepository,
	lock repository.CalendarLock,
	auditService service.AuditService,
	slotCache service.SlotCache,
) AvailabilityUsecase {
	return &availabilityUsecase{
		calendar: calendar{
			log:            log,
			opts:           opts,
			contractorRepo: contractorRepo,
			bookingRepo:    bookingRepo,
			blockedRepo:    blockedRepo,
			lock:           lock,
			slotCache:      slotCache,
		},
		transactor:       transactor,
		availabilityRepo: availabilityRepo,
		serviceRepo:      serviceRepo,
		auditService:     auditService,
	}
}

// GetAvailability returns the contractor's effective week, defaults included.
func (u *availabilityUsecase) GetAvailability(ctx context.Context) (*dto.AvailabilityResponse, error) {
	db := u.transactor.DB(ctx)
	contractor, err := u.currentContractor(ctx, db)
	if err != nil {
		return nil, err
	}

	rows, err := u.availabilityRepo.FindByContractorID(db, contractor.ID)
	if err != nil {
		u.log.Warnf("Failed to find availability of contractor %d: %+v", contractor.ID, err)
		return nil, err
	}

	return converter.WeekToResponse(scheduling.ResolveWeek(rows), len(rows) == 0), nil
}

// SetAvailability replaces all weekly rows of the contractor.
func (u *availabilityUsecase) SetAvailability(ctx context.Context, req *dto.SetAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	rows, err := availabilityRows(req)
	if err != nil {
		return nil, err
	}

	db := u.transactor.DB(ctx)
	contractor, err := u.currentContractor(ctx, db)
	if err != nil {
		return nil, err
	}
	userID, _ := middleware.GetUserIDFromContext(ctx)

	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.lockCalendar(tx, contractor.ID); err != nil {
			return err
		}

		previous, err := u.availabilityRepo.FindByContractorID(tx, contractor.ID)
		if err != nil {
			u.log.Warnf("Failed to find availability of contractor %d: %+v", contractor.ID, err)
			return err
		}

		if err := u.availabilityRepo.Replace(tx, contractor.ID, rows); err != nil {
			u.log.Warnf("Failed to replace availability of contractor %d: %+v", contractor.ID, err)
			return err
		}

		return u.auditService.LogUpdate(ctx, tx, &userID, entity.AuditActionAvailabilitySet,
			entity.AuditEntityAvailability, strconv.FormatInt(contractor.ID, 10), previous, rows)
	})
	if err != nil {
		return nil, err
	}

	u.invalidate(ctx, contractor.ID)
	u.log.Infof("Availability replaced: contractor=%d, days=%d", contractor.ID, len(rows))

	return converter.WeekToResponse(scheduling.ResolveWeek(rows), len(rows) == 0), nil
}

// GetAvailableSlots lists bookable start times of a service. The computed
// list may come from cache; it is always re-filtered against the current
// lead-time boundary before it is capped.
func (u *availabilityUsecase) GetAvailableSlots(ctx context.Context, serviceID int64) (*dto.AvailableSlotsResponse, error) {
	db := u.transactor.DB(ctx)
	svc, err := u.serviceRepo.FindByID(db, serviceID)
	if err != nil {
		u.log.Warnf("Failed to find service %d: %+v", serviceID, err)
		return nil, err
	}
	// Inactive services and suspended contractors are hidden from clients.
	if svc == nil || !svc.IsActive || !svc.Contractor.IsApproved() {
		return nil, ErrServiceNotFound
	}

	duration := svc.Duration()
	load := func(ctx context.Context) ([]scheduling.Slot, error) {
		return u.computeSlots(ctx, svc.ContractorID, duration)
	}

	var slots []scheduling.Slot
	if u.slotCache != nil {
		slots, err = u.slotCache.Get(ctx, svc.ContractorID, svc.ID, load)
	} else {
		slots, err = load(ctx)
	}
	if err != nil {
		return nil, err
	}

	now := u.opts.now()
	earliest := now.Add(u.opts.Rules.LeadTime)
	bookable := make([]scheduling.Slot, 0, len(slots))
	for _, s := range slots {
		if !s.Instant.After(now) || s.Instant.Before(earliest) {
			continue
		}
		if u.opts.SlotLimit > 0 && len(bookable) >= u.opts.SlotLimit {
			break
		}
		bookable = append(bookable, s)
	}

	resp := &dto.AvailableSlotsResponse{
		ServiceID:       svc.ID,
		DurationMinutes: duration,
		AvailableSlots:  converter.SlotsToResponses(bookable),
	}
	if len(bookable) > 0 {
		next := converter.SlotToResponse(bookable[0])
		resp.NextAvailableSlot = &next
	}
	return resp, nil
}

// computeSlots reads one consistent snapshot of the contractor's calendar
// and sweeps the horizon over it.
func (u *availabilityUsecase) computeSlots(ctx context.Context, contractorID int64, durationMinutes int) ([]scheduling.Slot, error) {
	now := u.opts.now()
	gen := u.opts.Generator
	gen.Location = u.opts.location()
	days := gen.Days(now)
	from, to := days[0], days[len(days)-1]

	var (
		rows     []entity.WeeklyAvailability
		bookings []entity.Booking
		blocked  []entity.BlockedSlot
	)
	err := u.transactor.ReadSnapshot(ctx, func(tx *gorm.DB) error {
		var err error
		if rows, err = u.availabilityRepo.FindByContractorID(tx, contractorID); err != nil {
			return fmt.Errorf("availability: %w", err)
		}
		if bookings, err = u.bookingRepo.FindActiveInRange(tx, contractorID, from, to.AddDate(0, 0, 1)); err != nil {
			return fmt.Errorf("bookings: %w", err)
		}
		if blocked, err = u.blockedRepo.FindByContractorInRange(tx, contractorID, from, to); err != nil {
			return fmt.Errorf("blocked slots: %w", err)
		}
		return nil
	})
	if err != nil {
		u.log.Warnf("Failed to load calendar snapshot of contractor %d: %+v", contractorID, err)
		return nil, err
	}

	checker := scheduling.NewChecker(gen.Quantum, bookings, blocked, gen.Location)
	return gen.Available(ctx, scheduling.ResolveWeek(rows), checker, minutes(durationMinutes), now, 0)
}

// availabilityRows validates a replacement set beyond what struct tags can
// express: one row per weekday and a window that ends after it starts.
func availabilityRows(req *dto.SetAvailabilityRequest) ([]entity.WeeklyAvailability, error) {
	seen := make(map[int]bool, len(req.Availability))
	invalid := make(map[string]string)
	rows := make([]entity.WeeklyAvailability, 0, len(req.Availability))

	for i, day := range req.Availability {
		field := fmt.Sprintf("availability[%d]", i)
		if day.DayOfWeek == nil {
			invalid[field+".day_of_week"] = "day_of_week is required"
			continue
		}
		if seen[*day.DayOfWeek] {
			invalid[field+".day_of_week"] = "day_of_week must be unique"
			continue
		}
		seen[*day.DayOfWeek] = true

		start, startErr := scheduling.ParseClock(day.StartTime)
		end, endErr := scheduling.ParseClock(day.EndTime)
		if startErr != nil || endErr != nil {
			invalid[field] = "start_time and end_time must be in HH:mm format"
			continue
		}
		if end <= start {
			invalid[field+".end_time"] = "end_time must be after start_time"
			continue
		}

		available := true
		if day.IsAvailable != nil {
			available = *day.IsAvailable
		}
		rows = append(rows, entity.WeeklyAvailability{
			DayOfWeek:   *day.DayOfWeek,
			StartTime:   start.String(),
			EndTime:     end.String(),
			IsAvailable: available,
		})
	}

	if len(invalid) > 0 {
		return nil, ErrInvalidAvailability.WithDetails(invalid)
	}
	return rows, nil
}
