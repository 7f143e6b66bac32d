package usecase

import (
	"context"
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

type ClientBookingUsecase interface {
	CreateBooking(ctx context.Context, serviceID int64, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	GetMyBookings(ctx context.Context) (*dto.BookingListResponse, error)
	GetMyBooking(ctx context.Context, id int64) (*dto.BookingResponse, error)
	CancelBooking(ctx context.Context, id int64) (*dto.BookingResponse, error)
}

type clientBookingUsecase struct {
	calendar
	transactor   repository.Transactor
	serviceRepo  repository.ServiceRepository
	auditService service.AuditService
}

func NewClientBookingUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	opts SchedulingOptions,
	serviceRepo repository.ServiceRepository,
	bookingRepo repository.BookingRepository,
	blockedRepo repository.BlockedSlotRepository,
	lock repository.CalendarLock,
	auditService service.AuditService,
	slotCache service.SlotCache,
) ClientBookingUsecase {
	return &clientBookingUsecase{
		calendar: calendar{
			log:         log,
			opts:        opts,
			bookingRepo: bookingRepo,
			blockedRepo: blockedRepo,
			lock:        lock,
			slotCache:   slotCache,
		},
		transactor:   transactor,
		serviceRepo:  serviceRepo,
		auditService: auditService,
	}
}

// CreateBooking books a service for the caller. The booking is stored
// CONFIRMED once every rule holds.
//
// Flow:
// 1. Validate the service and the caller (not the owner)
// 2. Check the lead time
// 3. In one transaction: lock the client, then the contractor calendar,
//    check the client's active booking count and the full requested span,
//    insert, audit
// 4. Invalidate cached slots of the contractor
func (u *clientBookingUsecase) CreateBooking(ctx context.Context, serviceID int64, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if req.ScheduledAt.IsZero() {
		return nil, ErrScheduledAtRequired
	}

	db := u.transactor.DB(ctx)
	svc, err := u.serviceRepo.FindByID(db, serviceID)
	if err != nil {
		u.log.Warnf("Failed to find service %d: %+v", serviceID, err)
		return nil, err
	}
	if svc == nil || !svc.IsActive || !svc.Contractor.IsApproved() {
		return nil, ErrServiceNotFound
	}
	if svc.Contractor.UserID == userID {
		return nil, ErrSelfBooking
	}

	at := req.ScheduledAt.In(u.opts.location())
	if err := u.opts.Rules.CheckLeadTime(u.opts.now(), at); err != nil {
		return nil, err
	}

	booking := &entity.Booking{
		ServiceID:    svc.ID,
		ContractorID: svc.ContractorID,
		ClientID:     userID,
		Status:       entity.BookingStatusConfirmed,
		TotalPrice:   svc.Price,
		Notes:        req.Notes,
	}
	booking.Schedule(at, svc.Duration())

	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if u.opts.MaxActiveBookings > 0 {
			if err := u.lock.LockClient(tx, userID); err != nil {
				u.log.Warnf("Failed to lock bookings of client %s: %+v", userID, err)
				return err
			}
		}
		if err := u.lockCalendar(tx, svc.ContractorID); err != nil {
			return err
		}

		if u.opts.MaxActiveBookings > 0 {
			active, err := u.bookingRepo.CountByClientAndStatus(tx, userID, entity.BookingStatusConfirmed)
			if err != nil {
				u.log.Warnf("Failed to count bookings of client %s: %+v", userID, err)
				return err
			}
			if active >= int64(u.opts.MaxActiveBookings) {
				return ErrActiveBookingLimit.WithMessage("maximum %d active bookings reached", u.opts.MaxActiveBookings)
			}
		}

		if err := u.ensureFree(tx, svc.ContractorID, booking.ScheduledAt, booking.Duration(), 0); err != nil {
			return err
		}

		if err := u.bookingRepo.Create(tx, booking); err != nil {
			if isExclusionViolation(err) {
				return ErrBookingConflict
			}
			u.log.Warnf("Failed to create booking: %+v", err)
			return err
		}

		return u.auditService.LogCreate(ctx, tx, &userID, entity.AuditActionBookingCreate,
			entity.AuditEntityBooking, strconv.FormatInt(booking.ID, 10), converter.BookingToResponse(booking))
	})
	if err != nil {
		return nil, err
	}

	u.invalidate(ctx, svc.ContractorID)
	u.log.Infof("Booking created: id=%d, service=%d, client=%s, at=%s", booking.ID, svc.ID, userID, booking.ScheduledAt.Format("2006-01-02 15:04"))

	return u.reloadBooking(u.transactor.DB(ctx), booking), nil
}

// GetMyBookings returns all bookings for the logged-in client
func (u *clientBookingUsecase) GetMyBookings(ctx context.Context) (*dto.BookingListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	bookings, err := u.bookingRepo.FindByClientID(u.transactor.DB(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find bookings for client %s: %+v", userID, err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

func (u *clientBookingUsecase) GetMyBooking(ctx context.Context, id int64) (*dto.BookingResponse, error) {
	booking, err := u.ownBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.BookingToResponse(booking), nil
}

// CancelBooking cancels the caller's booking while it is still at least the
// cancellation cutoff away.
func (u *clientBookingUsecase) CancelBooking(ctx context.Context, id int64) (*dto.BookingResponse, error) {
	booking, err := u.ownBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.opts.Rules.CheckClientCancel(booking, u.opts.now()); err != nil {
		return nil, err
	}

	previous := booking.Status
	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		// Conditional update guards against a concurrent terminal transition.
		affected, err := u.bookingRepo.UpdateStatus(tx, booking.ID, entity.BookingStatusCancelled)
		if err != nil {
			u.log.Warnf("Failed to cancel booking %d: %+v", booking.ID, err)
			return err
		}
		if affected == 0 {
			return scheduling.ErrTerminalBooking
		}

		return u.auditService.LogUpdate(ctx, tx, &booking.ClientID, entity.AuditActionBookingCancel,
			entity.AuditEntityBooking, strconv.FormatInt(booking.ID, 10),
			map[string]interface{}{"status": previous},
			map[string]interface{}{"status": entity.BookingStatusCancelled})
	})
	if err != nil {
		return nil, err
	}

	booking.Status = entity.BookingStatusCancelled
	u.invalidate(ctx, booking.ContractorID)
	u.log.Infof("Booking cancelled by client: id=%d", booking.ID)

	return converter.BookingToResponse(booking), nil
}

func (u *clientBookingUsecase) ownBooking(ctx context.Context, id int64) (*entity.Booking, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	booking, err := u.bookingRepo.FindByID(u.transactor.DB(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find booking %d: %+v", id, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if booking.ClientID != userID {
		return nil, ErrBookingNotOwned
	}
	return booking, nil
}
