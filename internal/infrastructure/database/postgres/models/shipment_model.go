package models

import (
	"time"

	"github.com/google/uuid"
)

// ShipmentModel represents the database model for Shipments
type ShipmentModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ShipmentNumber  string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	SenderID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	ReceiverID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	DriverID        *uuid.UUID `gorm:"type:uuid;index"`
	SensorUnitID    *uuid.UUID `gorm:"type:uuid;index"`
	Status          string     `gorm:"type:varchar(20);not null;default:'created';index"`
	MinTemp         *int       `gorm:"type:integer"`
	MaxTemp         *int       `gorm:"type:integer"`
	MinHumidity     *int       `gorm:"type:integer"`
	MaxHumidity     *int       `gorm:"type:integer"`
	DeliveryAddress *string    `gorm:"type:text"`
	PickupAddress   *string    `gorm:"type:text"`
	CreatedAt       time.Time  `gorm:"not null;index"`
}

func (ShipmentModel) TableName() string {
	return "shipments"
}
