package controlunit

import (
	"time"

	"github.com/google/uuid"

	"shipment-tracker/internal/domain/reading"
)

// MeasurementPayload is the wire form of one sensor value: {"value": <number>}.
type MeasurementPayload struct {
	Value *float64 `json:"value" validate:"required"`
}

func (p *MeasurementPayload) toMeasurement() reading.Measurement {
	return reading.Measurement{Value: *p.Value}
}

type SingleReadingRequest struct {
	ControlUnitID string              `json:"control_unit_id" validate:"required"`
	SensorUnitID  uuid.UUID           `json:"sensor_unit_id" validate:"required"`
	Timestamp     *time.Time          `json:"timestamp"`
	Temperature   *MeasurementPayload `json:"temperature" validate:"required"`
	Humidity      *MeasurementPayload `json:"humidity" validate:"required"`
}

// BatchRequest groups readings by the time they were taken. Every
// (group, sensor unit) pair becomes one stored reading.
type BatchRequest struct {
	ControlUnitID   string           `json:"control_unit_id" validate:"required"`
	TimestampGroups []TimestampGroup `json:"timestamp_groups" validate:"required,min=1,dive"`
}

type TimestampGroup struct {
	// Timestamp is in unix seconds.
	Timestamp   *int64              `json:"timestamp" validate:"required"`
	SensorUnits []SensorUnitReading `json:"sensor_units" validate:"required,dive"`
}

type SensorUnitReading struct {
	SensorUnitID uuid.UUID `json:"sensor_unit_id" validate:"required"`
	Temperature  *float64  `json:"temperature" validate:"required"`
	Humidity     *float64  `json:"humidity" validate:"required"`
}

// Size returns the number of readings the batch expands to.
func (b *BatchRequest) Size() int {
	n := 0
	for _, g := range b.TimestampGroups {
		n += len(g.SensorUnits)
	}
	return n
}

type BatchResponse struct {
	Status string `json:"status"`
	Saved  int    `json:"saved"`
}

// UpdateReadingRequest is a partial update. Absent fields are left unchanged.
type UpdateReadingRequest struct {
	Timestamp   *time.Time          `json:"timestamp"`
	Temperature *MeasurementPayload `json:"temperature"`
	Humidity    *MeasurementPayload `json:"humidity"`
}

type ReadingResponse struct {
	ID            uuid.UUID           `json:"id"`
	SensorUnitID  uuid.UUID           `json:"sensor_unit_id"`
	ControlUnitID uuid.UUID           `json:"control_unit_id"`
	Timestamp     time.Time           `json:"timestamp"`
	Temperature   reading.Measurement `json:"temperature"`
	Humidity      reading.Measurement `json:"humidity"`
}

func ToReadingResponse(r *reading.Reading) *ReadingResponse {
	return &ReadingResponse{
		ID:            r.ID,
		SensorUnitID:  r.SensorUnitID,
		ControlUnitID: r.ControlUnitID,
		Timestamp:     r.Timestamp,
		Temperature:   r.Temperature,
		Humidity:      r.Humidity,
	}
}

func ToReadingResponses(readings []*reading.Reading) []*ReadingResponse {
	out := make([]*ReadingResponse, len(readings))
	for i, r := range readings {
		out[i] = ToReadingResponse(r)
	}
	return out
}
