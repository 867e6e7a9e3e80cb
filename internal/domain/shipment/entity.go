package shipment

import (
	"time"

	"github.com/google/uuid"

	"shipment-tracker/internal/domain/reading"
)

// Status represents the status of a shipment
type Status string

const (
	StatusCreated   Status = "created"
	StatusAssigned  Status = "assigned"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusCreated, StatusAssigned, StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Shipment represents a shipment entity in the domain. Readings are linked
// to it only through SensorUnitID.
type Shipment struct {
	ID             uuid.UUID
	ShipmentNumber string

	// Parties involved
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	DriverID   *uuid.UUID

	SensorUnitID *uuid.UUID
	Status       Status

	// Environmental thresholds
	MinTemp     *int
	MaxTemp     *int
	MinHumidity *int
	MaxHumidity *int

	DeliveryAddress *string
	PickupAddress   *string

	CreatedAt time.Time
}

// WithLatestValues is a shipment projected with the most recent reading of
// its sensor unit. Temperature and Humidity are nil when there is none.
type WithLatestValues struct {
	Shipment
	Temperature *reading.Measurement
	Humidity    *reading.Measurement
}

// Changes is a partial update. Nil fields are skipped, so a column can never
// be cleared through it.
type Changes struct {
	ShipmentNumber  *string
	SenderID        *uuid.UUID
	ReceiverID      *uuid.UUID
	DriverID        *uuid.UUID
	SensorUnitID    *uuid.UUID
	Status          *Status
	MinTemp         *int
	MaxTemp         *int
	MinHumidity     *int
	MaxHumidity     *int
	DeliveryAddress *string
	PickupAddress   *string
}

func (c Changes) IsEmpty() bool {
	return c == Changes{}
}
