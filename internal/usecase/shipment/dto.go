package shipment

import (
	"time"

	"github.com/google/uuid"

	domainShipment "shipment-tracker/internal/domain/shipment"
)

type CreateShipmentRequest struct {
	ShipmentNumber  string     `json:"shipment_number" validate:"required,notblank,max=100"`
	SenderID        uuid.UUID  `json:"sender_id" validate:"required"`
	ReceiverID      uuid.UUID  `json:"receiver_id" validate:"required"`
	DriverID        *uuid.UUID `json:"driver_id"`
	SensorUnitID    *uuid.UUID `json:"sensor_unit_id"`
	Status          *string    `json:"status" validate:"omitnil,shipment_status"`
	MinTemp         *int       `json:"min_temp" validate:"omitnil,min=-100,max=100"`
	MaxTemp         *int       `json:"max_temp" validate:"omitnil,min=-100,max=100"`
	MinHumidity     *int       `json:"min_humidity" validate:"omitnil,min=0,max=100"`
	MaxHumidity     *int       `json:"max_humidity" validate:"omitnil,min=0,max=100"`
	DeliveryAddress *string    `json:"delivery_address" validate:"omitnil,notblank,max=500"`
	PickupAddress   *string    `json:"pickup_address" validate:"omitnil,notblank,max=500"`
}

// UpdateShipmentRequest is a partial update over every editable field.
// Absent and null fields are skipped; there is no way to clear a column.
type UpdateShipmentRequest struct {
	ShipmentNumber  *string    `json:"shipment_number" validate:"omitnil,notblank,max=100"`
	SenderID        *uuid.UUID `json:"sender_id"`
	ReceiverID      *uuid.UUID `json:"receiver_id"`
	DriverID        *uuid.UUID `json:"driver_id"`
	SensorUnitID    *uuid.UUID `json:"sensor_unit_id"`
	Status          *string    `json:"status" validate:"omitnil,shipment_status"`
	MinTemp         *int       `json:"min_temp" validate:"omitnil,min=-100,max=100"`
	MaxTemp         *int       `json:"max_temp" validate:"omitnil,min=-100,max=100"`
	MinHumidity     *int       `json:"min_humidity" validate:"omitnil,min=0,max=100"`
	MaxHumidity     *int       `json:"max_humidity" validate:"omitnil,min=0,max=100"`
	DeliveryAddress *string    `json:"delivery_address" validate:"omitnil,notblank,max=500"`
	PickupAddress   *string    `json:"pickup_address" validate:"omitnil,notblank,max=500"`
}

func (r *UpdateShipmentRequest) toChanges() domainShipment.Changes {
	c := domainShipment.Changes{
		ShipmentNumber:  r.ShipmentNumber,
		SenderID:        r.SenderID,
		ReceiverID:      r.ReceiverID,
		DriverID:        r.DriverID,
		SensorUnitID:    r.SensorUnitID,
		MinTemp:         r.MinTemp,
		MaxTemp:         r.MaxTemp,
		MinHumidity:     r.MinHumidity,
		MaxHumidity:     r.MaxHumidity,
		DeliveryAddress: r.DeliveryAddress,
		PickupAddress:   r.PickupAddress,
	}
	if r.Status != nil {
		status := domainShipment.Status(*r.Status)
		c.Status = &status
	}
	return c
}

type ShipmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	ShipmentNumber  string     `json:"shipment_number"`
	SenderID        uuid.UUID  `json:"sender_id"`
	ReceiverID      uuid.UUID  `json:"receiver_id"`
	DriverID        *uuid.UUID `json:"driver_id"`
	SensorUnitID    *uuid.UUID `json:"sensor_unit_id"`
	Status          string     `json:"status"`
	MinTemp         *int       `json:"min_temp"`
	MaxTemp         *int       `json:"max_temp"`
	MinHumidity     *int       `json:"min_humidity"`
	MaxHumidity     *int       `json:"max_humidity"`
	DeliveryAddress *string    `json:"delivery_address"`
	PickupAddress   *string    `json:"pickup_address"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ShipmentWithLatestValuesResponse carries the newest reading of the
// shipment's sensor unit. Both values are null when there is none.
type ShipmentWithLatestValuesResponse struct {
	ShipmentResponse
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

func ToShipmentResponse(s *domainShipment.Shipment) *ShipmentResponse {
	return &ShipmentResponse{
		ID:              s.ID,
		ShipmentNumber:  s.ShipmentNumber,
		SenderID:        s.SenderID,
		ReceiverID:      s.ReceiverID,
		DriverID:        s.DriverID,
		SensorUnitID:    s.SensorUnitID,
		Status:          string(s.Status),
		MinTemp:         s.MinTemp,
		MaxTemp:         s.MaxTemp,
		MinHumidity:     s.MinHumidity,
		MaxHumidity:     s.MaxHumidity,
		DeliveryAddress: s.DeliveryAddress,
		PickupAddress:   s.PickupAddress,
		CreatedAt:       s.CreatedAt,
	}
}

func ToShipmentResponses(shipments []*domainShipment.Shipment) []*ShipmentResponse {
	out := make([]*ShipmentResponse, len(shipments))
	for i, s := range shipments {
		out[i] = ToShipmentResponse(s)
	}
	return out
}

func ToShipmentWithLatestValuesResponse(s *domainShipment.WithLatestValues) *ShipmentWithLatestValuesResponse {
	resp := &ShipmentWithLatestValuesResponse{ShipmentResponse: *ToShipmentResponse(&s.Shipment)}
	if s.Temperature != nil {
		v := s.Temperature.Value
		resp.Temperature = &v
	}
	if s.Humidity != nil {
		v := s.Humidity.Value
		resp.Humidity = &v
	}
	return resp
}

func ToShipmentWithLatestValuesResponses(shipments []*domainShipment.WithLatestValues) []*ShipmentWithLatestValuesResponse {
	out := make([]*ShipmentWithLatestValuesResponse, len(shipments))
	for i, s := range shipments {
		out[i] = ToShipmentWithLatestValuesResponse(s)
	}
	return out
}
