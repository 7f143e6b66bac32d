package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity record shared with the auth service. Clients book
// under their user id; contractors are linked through Contractor.UserID.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName      string    `gorm:"type:varchar(255);not null" json:"full_name"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	IsActive      *bool     `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
