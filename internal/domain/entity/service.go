package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is a bookable offering of a contractor. Only the fields the
// scheduling engine needs are mapped; CRUD lives in the catalogue service.
type Service struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ContractorID    int64           `gorm:"not null;index" json:"contractor_id"`
	Title           string          `gorm:"type:varchar(255);not null" json:"title"`
	DurationMinutes int             `gorm:"column:duration_minutes;not null;default:60" json:"duration_minutes"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	IsActive        bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Contractor Contractor `gorm:"foreignKey:ContractorID" json:"contractor,omitempty"`
}

func (Service) TableName() string {
	return "services"
}

// Duration returns the service length, falling back to one hour when unset.
func (s *Service) Duration() int {
	if s.DurationMinutes <= 0 {
		return 60
	}
	return s.DurationMinutes
}
