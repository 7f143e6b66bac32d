package usecase

import (
	"context"
	"strconv"
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

type BlockedTimeUsecase interface {
	CreateBlockedSlot(ctx context.Context, req *dto.CreateBlockedSlotRequest) (*dto.BlockedSlotResponse, error)
	GetBlockedSlots(ctx context.Context) (*dto.BlockedSlotListResponse, error)
	DeleteBlockedSlot(ctx context.Context, id int64) error
}

type blockedTimeUsecase struct {
	calendar
	transactor   repository.Transactor
	auditService service.AuditService
}

func NewBlockedTimeUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	opts SchedulingOptions,
	contractorRepo repository.ContractorRepository,
	blockedRepo repository.BlockedSlotRepository,
	lock repository.CalendarLock,
	auditService service.AuditService,
	slotCache service.SlotCache,
) BlockedTimeUsecase {
	return &blockedTimeUsecase{
		calendar: calendar{
			log:            log,
			opts:           opts,
			contractorRepo: contractorRepo,
			blockedRepo:    blockedRepo,
			lock:           lock,
			slotCache:      slotCache,
		},
		transactor:   transactor,
		auditService: auditService,
	}
}

// CreateBlockedSlot adds a one-off exclusion. Overlapping an existing block
// of the same day is refused with the full list of offending ranges.
func (u *blockedTimeUsecase) CreateBlockedSlot(ctx context.Context, req *dto.CreateBlockedSlotRequest) (*dto.BlockedSlotResponse, error) {
	loc := u.opts.location()
	date, err := time.ParseInLocation("2006-01-02", req.Date, loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	slot := &entity.BlockedSlot{
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	}
	candidate, err := scheduling.BlockedInterval(*slot, loc)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}
	// Store normalized HH:mm.
	slot.StartTime = scheduling.ClockOf(candidate.Start).String()
	slot.EndTime = scheduling.ClockOf(candidate.End).String()

	db := u.transactor.DB(ctx)
	contractor, err := u.currentContractor(ctx, db)
	if err != nil {
		return nil, err
	}
	slot.ContractorID = contractor.ID
	userID, _ := middleware.GetUserIDFromContext(ctx)

	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.lockCalendar(tx, contractor.ID); err != nil {
			return err
		}

		existing, err := u.blockedRepo.FindByContractorAndDate(tx, contractor.ID, date)
		if err != nil {
			u.log.Warnf("Failed to find blocked slots of contractor %d on %s: %+v", contractor.ID, req.Date, err)
			return err
		}

		var conflicts []dto.BlockedSlotConflict
		for _, other := range existing {
			iv, err := scheduling.BlockedInterval(other, loc)
			if err != nil {
				continue
			}
			if candidate.Overlaps(iv) {
				conflicts = append(conflicts, converter.BlockedSlotToConflict(other))
			}
		}
		if len(conflicts) > 0 {
			return ErrBlockedSlotConflict.WithDetails(conflicts)
		}

		if err := u.blockedRepo.Create(tx, slot); err != nil {
			u.log.Warnf("Failed to create blocked slot: %+v", err)
			return err
		}

		return u.auditService.LogCreate(ctx, tx, &userID, entity.AuditActionBlockedSlotCreate,
			entity.AuditEntityBlockedSlot, strconv.FormatInt(slot.ID, 10), slot)
	})
	if err != nil {
		return nil, err
	}

	u.invalidate(ctx, contractor.ID)
	u.log.Infof("Blocked slot created: id=%d, contractor=%d, %s %s-%s", slot.ID, contractor.ID, req.Date, slot.StartTime, slot.EndTime)

	return converter.BlockedSlotToResponse(slot), nil
}

// GetBlockedSlots lists the contractor's blocked ranges from today onward.
func (u *blockedTimeUsecase) GetBlockedSlots(ctx context.Context) (*dto.BlockedSlotListResponse, error) {
	db := u.transactor.DB(ctx)
	contractor, err := u.currentContractor(ctx, db)
	if err != nil {
		return nil, err
	}

	today := scheduling.StartOfDay(u.opts.now(), u.opts.location())
	slots, err := u.blockedRepo.FindByContractorFrom(db, contractor.ID, today)
	if err != nil {
		u.log.Warnf("Failed to find blocked slots of contractor %d: %+v", contractor.ID, err)
		return nil, err
	}

	return &dto.BlockedSlotListResponse{
		BlockedSlots: converter.BlockedSlotsToResponses(slots),
		Total:        len(slots),
	}, nil
}

// DeleteBlockedSlot removes a block that has not started yet.
func (u *blockedTimeUsecase) DeleteBlockedSlot(ctx context.Context, id int64) error {
	db := u.transactor.DB(ctx)
	contractor, err := u.currentContractor(ctx, db)
	if err != nil {
		return err
	}
	userID, _ := middleware.GetUserIDFromContext(ctx)

	slot, err := u.blockedRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find blocked slot %d: %+v", id, err)
		return err
	}
	if slot == nil || slot.ContractorID != contractor.ID {
		return ErrBlockedSlotNotFound
	}

	iv, err := scheduling.BlockedInterval(*slot, u.opts.location())
	if err == nil && !iv.Start.After(u.opts.now()) {
		return ErrBlockedSlotStarted
	}

	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.lockCalendar(tx, contractor.ID); err != nil {
			return err
		}
		affected, err := u.blockedRepo.Delete(tx, id)
		if err != nil {
			u.log.Warnf("Failed to delete blocked slot %d: %+v", id, err)
			return err
		}
		if affected == 0 {
			return ErrBlockedSlotNotFound
		}
		return u.auditService.LogDelete(ctx, tx, &userID, entity.AuditActionBlockedSlotDelete,
			entity.AuditEntityBlockedSlot, strconv.FormatInt(id, 10), slot)
	})
	if err != nil {
		return err
	}

	u.invalidate(ctx, contractor.ID)
	u.log.Infof("Blocked slot deleted: id=%d, contractor=%d", id, contractor.ID)
	return nil
}
