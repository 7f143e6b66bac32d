package usecase

import (
	"context"
	"strconv"

	"marketplace-booking/internal/converter"
	"marketplace-booking/internal/delivery/dto"
	"marketplace-booking/internal/domain/entity"
	"marketplace-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

type AuditLogUsecase interface {
	GetBookingHistory(ctx context.Context, bookingID int64) (*dto.AuditLogListResponse, error)
}

type auditLogUsecase struct {
	calendar
	transactor   repository.Transactor
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	contractorRepo repository.ContractorRepository,
	bookingRepo repository.BookingRepository,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		calendar: calendar{
			log:            log,
			contractorRepo: contractorRepo,
			bookingRepo:    bookingRepo,
		},
		transactor:   transactor,
		auditLogRepo: auditLogRepo,
	}
}

// GetBookingHistory lists the recorded changes of one of the contractor's
// bookings, oldest first.
func (u *auditLogUsecase) GetBookingHistory(ctx context.Context, bookingID int64) (*dto.AuditLogListResponse, error) {
	db := u.transactor.DB(ctx)
	contractor, err := u.currentContractor(ctx, db)
	if err != nil {
		return nil, err
	}

	booking, err := u.bookingRepo.FindByID(db, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %d: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil || booking.ContractorID != contractor.ID {
		return nil, ErrBookingNotFound
	}

	logs, err := u.auditLogRepo.FindByEntity(db, entity.AuditEntityBooking, strconv.FormatInt(bookingID, 10))
	if err != nil {
		u.log.Warnf("Failed to find history of booking %d: %+v", bookingID, err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}
