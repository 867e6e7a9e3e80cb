package models

import (
	"time"

	"github.com/google/uuid"
)

// UserModel represents the database model for User
type UserModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username       string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHashed string    `gorm:"column:password_hash;type:varchar(255);not null"`
	Role           string    `gorm:"type:varchar(20);not null;default:'customer'"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}
