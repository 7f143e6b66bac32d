package repository

import (
	"errors"
	"time"

	"marketplace-booking/internal/domain/entity"
	domainRepo "marketplace-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bookingRepository struct{}

func NewBookingRepository() domainRepo.BookingRepository {
	return &bookingRepository{}
}

func (r *bookingRepository) Create(db *gorm.DB, booking *entity.Booking) error {
	return db.Omit("Service", "Client").Create(booking).Error
}

func (r *bookingRepository) FindByID(db *gorm.DB, id int64) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.Preload("Service").Preload("Client").Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByClientID(db *gorm.DB, clientID uuid.UUID) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := db.Preload("Service").
		Where("client_id = ?", clientID).
		Order("scheduled_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByContractorID(db *gorm.DB, contractorID int64, filter *entity.BookingFilter) ([]entity.Booking, error) {
	var bookings []entity.Booking
	query := db.Preload("Service").Preload("Client").Where("contractor_id = ?", contractorID)

	if filter != nil {
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.From != nil {
			query = query.Where("scheduled_at >= ?", *filter.From)
		}
		if filter.To != nil {
			query = query.Where("scheduled_at <= ?", *filter.To)
		}
	}

	err := query.Order("scheduled_at ASC").Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindActiveInRange(db *gorm.DB, contractorID int64, from, to time.Time) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := db.Where("contractor_id = ? AND status IN ?", contractorID, entity.ActiveBookingStatuses).
		Where("scheduled_at < ? AND ends_at > ?", to, from).
		Order("scheduled_at ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByIDsForUpdate(db *gorm.DB, contractorID int64, ids []int64) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("contractor_id = ? AND id IN ?", contractorID, ids).
		Order("id ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) CountByClientAndStatus(db *gorm.DB, clientID uuid.UUID, status entity.BookingStatus) (int64, error) {
	var count int64
	err := db.Model(&entity.Booking{}).
		Where("client_id = ? AND status = ?", clientID, status).
		Count(&count).Error
	return count, err
}

var terminalStatuses = []entity.BookingStatus{entity.BookingStatusCancelled, entity.BookingStatusCompleted}

func (r *bookingRepository) UpdateStatus(db *gorm.DB, id int64, status entity.BookingStatus) (int64, error) {
	result := db.Model(&entity.Booking{}).
		Where("id = ? AND status NOT IN ?", id, terminalStatuses).
		Update("status", status)
	return result.RowsAffected, result.Error
}

func (r *bookingRepository) UpdateStatusBulk(db *gorm.DB, ids []int64, status entity.BookingStatus) (int64, error) {
	result := db.Model(&entity.Booking{}).
		Where("id IN ? AND status NOT IN ?", ids, terminalStatuses).
		Update("status", status)
	return result.RowsAffected, result.Error
}

func (r *bookingRepository) UpdateSchedule(db *gorm.DB, booking *entity.Booking) error {
	return db.Model(&entity.Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]interface{}{
			"scheduled_at":     booking.ScheduledAt,
			"ends_at":          booking.EndsAt,
			"duration_minutes": booking.DurationMinutes,
		}).Error
}
