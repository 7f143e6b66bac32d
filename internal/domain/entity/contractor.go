package entity

import (
	"time"

	"github.com/google/uuid"
)

// ContractorStatus mirrors the moderation state owned by the application-review flow.
type ContractorStatus int

const (
	ContractorStatusPending   ContractorStatus = 0
	ContractorStatusApproved  ContractorStatus = 1
	ContractorStatusSuspended ContractorStatus = 2
)

// Contractor is the service provider side of a user account.
type Contractor struct {
	ID        int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Status    ContractorStatus `gorm:"not null;default:0;index" json:"status"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User         User                 `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Availability []WeeklyAvailability `gorm:"foreignKey:ContractorID" json:"availability,omitempty"`
}

func (Contractor) TableName() string {
	return "contractors"
}

func (c *Contractor) IsApproved() bool {
	return c.Status == ContractorStatusApproved
}
