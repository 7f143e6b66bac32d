package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"marketplace-booking/internal/converter"
	"marketplace-booking/internal/delivery/dto"
	"marketplace-booking/internal/delivery/http/middleware"
	"marketplace-booking/internal/domain/entity"
	"marketplace-booking/internal/domain/repository"
	"marketplace-booking/internal/domain/scheduling"
	"marketplace-booking/internal/service"
	"marketplace-booking/pkg/apperror"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ContractorBookingUsecase interface {
	GetBookings(ctx context.Context, query dto.BookingListQuery) (*dto.BookingListResponse, error)
	QuickCreateBooking(ctx context.Context, req *dto.QuickCreateBookingRequest) (*dto.BookingResponse, error)
	RescheduleBooking(ctx context.Context, id int64, req *dto.RescheduleBookingRequest) (*dto.RescheduleBookingResponse, error)
	UpdateBookingStatus(ctx context.Context, id int64, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error)
	BulkUpdateStatus(ctx context.Context, req *dto.BulkBookingActionRequest) (*dto.BulkBookingActionResponse, error)
}

type contractorBookingUsecase struct {
	calendar
	transactor   repository.Transactor
	serviceRepo  repository.ServiceRepository
	userRepo     repository.UserRepository
	auditService service.AuditService
}

func NewContractorBookingUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	opts SchedulingOptions,
	contractorRepo repository.ContractorRepository,
	serviceRepo repository.ServiceRepository,
	userRepo repository.UserRepository,
	bookingRepo repository.BookingRepository,
	blockedRepo repository.BlockedSlotRepository,
	lock repository.CalendarLock,
	auditService service.AuditService,
	slotCache service.SlotCache,
) ContractorBookingUsecase {
	return &contractorBookingUsecase{
		calendar: calendar{
			log:            log,
			opts:           opts,
			contractorRepo: contractorRepo,
			bookingRepo:    bookingRepo,
			blockedRepo:    blockedRepo,
			lock:           lock,
			slotCache:      slotCache,
		},
		transactor:   transactor,
		serviceRepo:  serviceRepo,
		userRepo:     userRepo,
		auditService: auditService,
	}
}

// GetBookings lists the contractor's bookings, optionally filtered by status
// and by a scheduled_at range.
func (u *contractorBookingUsecase) GetBookings(ctx context.Context, query dto.BookingListQuery) (*dto.BookingListResponse, error) {
	filter, err := u.parseFilter(query)
	if err != nil {
		return nil, err
	}

	db := u.transactor.DB(ctx)
	contractor, err := u.currentContractor(ctx, db)
	if err != nil {
		return nil, err
	}

	bookings, err := u.bookingRepo.FindByContractorID(db, contractor.ID, filter)
	if err != nil {
		u.log.Warnf("Failed to find bookings of contractor %d: %+v", contractor.ID, err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

// QuickCreateBooking books one of the contractor's services on behalf of a
// client. Unknown e-mail addresses get a new user account.
func (u *contractorBookingUsecase) QuickCreateBooking(ctx context.Context, req *dto.QuickCreateBookingRequest) (*dto.BookingResponse, error) {
	if req.ScheduledAt.IsZero() {
		return nil, ErrScheduledAtRequired
	}

	db := u.transactor.DB(ctx)
	contractor, err := u.currentContractor(ctx, db)
	if err != nil {
		return nil, err
	}
	actorID, _ := middleware.GetUserIDFromContext(ctx)

	svc, err := u.serviceRepo.FindByID(db, req.ServiceID)
	if err != nil {
		u.log.Warnf("Failed to find service %d: %+v", req.ServiceID, err)
		return nil, err
	}
	if svc == nil || svc.ContractorID != contractor.ID {
		return nil, ErrServiceNotFound
	}
	if !svc.IsActive {
		return nil, ErrServiceUnavailable
	}

	duration := svc.Duration()
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}

	at := req.ScheduledAt.In(u.opts.location())
	if err := u.opts.Rules.CheckLeadTime(u.opts.now(), at); err != nil {
		return nil, err
	}

	booking := &entity.Booking{
		ServiceID:    svc.ID,
		ContractorID: contractor.ID,
		Status:       entity.BookingStatusConfirmed,
		TotalPrice:   svc.Price,
		Notes:        req.Notes,
	}
	booking.Schedule(at, duration)

	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.lockCalendar(tx, contractor.ID); err != nil {
			return err
		}

		client, err := u.findOrCreateClient(tx, req.ClientEmail, req.ClientName)
		if err != nil {
			return err
		}
		if client.ID == contractor.UserID {
			return ErrSelfBooking
		}
		booking.ClientID = client.ID

		if err := u.ensureFree(tx, contractor.ID, booking.ScheduledAt, booking.Duration(), 0); err != nil {
			return err
		}

		if err := u.bookingRepo.Create(tx, booking); err != nil {
			if isExclusionViolation(err) {
				return ErrBookingConflict
			}
			u.log.Warnf("Failed to create booking: %+v", err)
			return err
		}

		return u.auditService.LogCreate(ctx, tx, &actorID, entity.AuditActionBookingQuickCreate,
			entity.AuditEntityBooking, strconv.FormatInt(booking.ID, 10), converter.BookingToResponse(booking))
	})
	if err != nil {
		return nil, err
	}

	u.invalidate(ctx, contractor.ID)
	u.log.Infof("Booking quick-created: id=%d, contractor=%d, client=%s", booking.ID, contractor.ID, booking.ClientID)

	return u.reloadBooking(db, booking), nil
}

// RescheduleBooking moves a booking to a new start. Its own current slot
// does not count as a conflict.
func (u *contractorBookingUsecase) RescheduleBooking(ctx context.Context, id int64, req *dto.RescheduleBookingRequest) (*dto.RescheduleBookingResponse, error) {
	if req.ScheduledAt.IsZero() {
		return nil, ErrScheduledAtRequired
	}

	db := u.transactor.DB(ctx)
	contractor, err := u.currentContractor(ctx, db)
	if err != nil {
		return nil, err
	}
	actorID, _ := middleware.GetUserIDFromContext(ctx)

	at := req.ScheduledAt.In(u.opts.location())
	if err := u.opts.Rules.CheckLeadTime(u.opts.now(), at); err != nil {
		return nil, err
	}

	var booking *entity.Booking
	var previous time.Time
	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.lockCalendar(tx, contractor.ID); err != nil {
			return err
		}

		locked, err := u.bookingRepo.FindByIDsForUpdate(tx, contractor.ID, []int64{id})
		if err != nil {
			u.log.Warnf("Failed to lock booking %d: %+v", id, err)
			return err
		}
		if len(locked) == 0 {
			return ErrBookingNotFound
		}
		booking = &locked[0]
		if err := scheduling.CheckReschedulable(booking); err != nil {
			return err
		}

		if err := u.ensureFree(tx, contractor.ID, at, booking.Duration(), booking.ID); err != nil {
			return err
		}

		previous = booking.ScheduledAt
		booking.Schedule(at, booking.DurationMinutes)
		if err := u.bookingRepo.UpdateSchedule(tx, booking); err != nil {
			if isExclusionViolation(err) {
				return ErrBookingConflict
			}
			u.log.Warnf("Failed to reschedule booking %d: %+v", id, err)
			return err
		}

		return u.auditService.LogUpdate(ctx, tx, &actorID, entity.AuditActionBookingReschedule,
			entity.AuditEntityBooking, strconv.FormatInt(booking.ID, 10),
			map[string]interface{}{"scheduled_at": previous},
			map[string]interface{}{"scheduled_at": booking.ScheduledAt})
	})
	if err != nil {
		return nil, err
	}

	u.invalidate(ctx, contractor.ID)
	u.log.Infof("Booking rescheduled: id=%d, from=%s, to=%s", booking.ID, previous.Format(time.RFC3339), booking.ScheduledAt.Format(time.RFC3339))

	return &dto.RescheduleBookingResponse{
		Booking:             *u.reloadBooking(db, booking),
		PreviousScheduledAt: previous,
		NewScheduledAt:      booking.ScheduledAt,
	}, nil
}

// UpdateBookingStatus applies a single contractor status change.
func (u *contractorBookingUsecase) UpdateBookingStatus(ctx context.Context, id int64, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error) {
	target, ok := entity.ParseBookingStatus(req.Status)
	if !ok {
		return nil, scheduling.ErrInvalidTargetStatus
	}

	db := u.transactor.DB(ctx)
	contractor, err := u.currentContractor(ctx, db)
	if err != nil {
		return nil, err
	}
	actorID, _ := middleware.GetUserIDFromContext(ctx)

	var booking *entity.Booking
	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		locked, err := u.bookingRepo.FindByIDsForUpdate(tx, contractor.ID, []int64{id})
		if err != nil {
			u.log.Warnf("Failed to lock booking %d: %+v", id, err)
			return err
		}
		if len(locked) == 0 {
			return ErrBookingNotFound
		}
		booking = &locked[0]
		if err := scheduling.CheckStatusChange(booking.Status, target); err != nil {
			return err
		}

		previous := booking.Status
		affected, err := u.bookingRepo.UpdateStatus(tx, booking.ID, target)
		if err != nil {
			u.log.Warnf("Failed to update status of booking %d: %+v", id, err)
			return err
		}
		if affected == 0 {
			return scheduling.ErrTerminalBooking
		}
		booking.Status = target

		return u.auditService.LogUpdate(ctx, tx, &actorID, entity.AuditActionBookingStatus,
			entity.AuditEntityBooking, strconv.FormatInt(booking.ID, 10),
			map[string]interface{}{"status": previous},
			map[string]interface{}{"status": target})
	})
	if err != nil {
		return nil, err
	}

	u.invalidate(ctx, contractor.ID)
	u.log.Infof("Booking status updated: id=%d, status=%s", booking.ID, target)

	return u.reloadBooking(db, booking), nil
}

// BulkUpdateStatus validates every member before writing any of them. One
// failing member rejects the whole batch, and every failing member is
// reported.
func (u *contractorBookingUsecase) BulkUpdateStatus(ctx context.Context, req *dto.BulkBookingActionRequest) (*dto.BulkBookingActionResponse, error) {
	target, ok := entity.ParseBookingStatus(req.Action)
	if !ok {
		return nil, scheduling.ErrInvalidTargetStatus
	}
	ids := uniqueIDs(req.BookingIDs)
	if len(ids) == 0 {
		return nil, apperror.Validation("booking_ids_required", "booking_ids is required")
	}

	db := u.transactor.DB(ctx)
	contractor, err := u.currentContractor(ctx, db)
	if err != nil {
		return nil, err
	}
	actorID, _ := middleware.GetUserIDFromContext(ctx)

	var updated int64
	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		bookings, err := u.bookingRepo.FindByIDsForUpdate(tx, contractor.ID, ids)
		if err != nil {
			u.log.Warnf("Failed to lock bookings %v: %+v", ids, err)
			return err
		}

		if missing := missingIDs(ids, bookings); len(missing) > 0 {
			return ErrBookingsNotFound.WithDetails(dto.MissingBookings{MissingIDs: missing})
		}

		var invalid []dto.InvalidBooking
		for _, b := range bookings {
			if err := scheduling.CheckBulkTransition(b.Status, target); err != nil {
				invalid = append(invalid, dto.InvalidBooking{
					ID:     b.ID,
					Status: string(b.Status),
					Reason: apperror.From(err).Message,
				})
			}
		}
		if len(invalid) > 0 {
			return ErrBulkInvalid.WithDetails(invalid)
		}

		updated, err = u.bookingRepo.UpdateStatusBulk(tx, ids, target)
		if err != nil {
			u.log.Warnf("Failed to bulk update bookings %v: %+v", ids, err)
			return err
		}
		if updated != int64(len(ids)) {
			return fmt.Errorf("bulk update changed %d of %d locked bookings", updated, len(ids))
		}

		for _, b := range bookings {
			if err := u.auditService.LogUpdate(ctx, tx, &actorID, entity.AuditActionBookingBulkStatus,
				entity.AuditEntityBooking, strconv.FormatInt(b.ID, 10),
				map[string]interface{}{"status": b.Status},
				map[string]interface{}{"status": target}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.invalidate(ctx, contractor.ID)
	u.log.Infof("Bulk status update: contractor=%d, status=%s, count=%d", contractor.ID, target, updated)

	return &dto.BulkBookingActionResponse{
		Updated: updated,
		Message: fmt.Sprintf("Successfully updated %d booking(s) to %s", updated, target),
	}, nil
}

// findOrCreateClient looks a client up by e-mail and creates the account
// when none exists. A concurrent insert of the same address is resolved by
// reading the winner.
func (u *contractorBookingUsecase) findOrCreateClient(tx *gorm.DB, email string, name *string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := u.userRepo.FindByEmail(tx, email)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", email, err)
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	fullName := strings.SplitN(email, "@", 2)[0]
	if name != nil && strings.TrimSpace(*name) != "" {
		fullName = strings.TrimSpace(*name)
	}
	active := true
	user = &entity.User{Email: email, FullName: fullName, IsActive: &active}

	if err := u.userRepo.Create(tx, user); err != nil {
		if !isDuplicateKeyError(err) {
			u.log.Warnf("Failed to create user %s: %+v", email, err)
			return nil, err
		}
		existing, findErr := u.userRepo.FindByEmail(tx, email)
		if findErr != nil || existing == nil {
			return nil, errors.Join(err, findErr)
		}
		return existing, nil
	}

	u.log.Infof("Client account created for quick booking: %s", email)
	return user, nil
}

func (u *contractorBookingUsecase) parseFilter(query dto.BookingListQuery) (*entity.BookingFilter, error) {
	filter := &entity.BookingFilter{}
	invalid := make(map[string]string)

	if query.Status != "" {
		status, ok := entity.ParseBookingStatus(strings.ToUpper(query.Status))
		if !ok {
			invalid["status"] = "status must be one of PENDING, CONFIRMED, CANCELLED, COMPLETED"
		} else {
			filter.Status = &status
		}
	}
	if query.Start != "" {
		from, _, err := parseBound(query.Start, u.opts.location())
		if err != nil {
			invalid["start"] = "start must be YYYY-MM-DD or RFC 3339"
		} else {
			filter.From = &from
		}
	}
	if query.End != "" {
		to, dateOnly, err := parseBound(query.End, u.opts.location())
		if err != nil {
			invalid["end"] = "end must be YYYY-MM-DD or RFC 3339"
		} else {
			if dateOnly {
				// A bare date includes the whole day.
				to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
			}
			filter.To = &to
		}
	}

	if len(invalid) > 0 {
		return nil, ErrInvalidFilter.WithDetails(invalid)
	}
	return filter, nil
}

func parseBound(s string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, false, err
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func missingIDs(ids []int64, found []entity.Booking) []int64 {
	present := make(map[int64]bool, len(found))
	for _, b := range found {
		present[b.ID] = true
	}
	var missing []int64
	for _, id := range ids {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
