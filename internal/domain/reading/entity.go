package reading

import (
	"time"

	"github.com/google/uuid"
)

// Measurement is a single sensor value. On the wire it is {"value": <number>}.
type Measurement struct {
	Value float64 `json:"value"`
}

// Reading is one time-stamped temperature/humidity sample reported by a
// control unit for one of its sensor units.
type Reading struct {
	ID            uuid.UUID
	SensorUnitID  uuid.UUID
	ControlUnitID uuid.UUID
	Timestamp     time.Time
	Temperature   Measurement
	Humidity      Measurement
}

// Changes is a partial update. Nil fields are left unchanged.
type Changes struct {
	Timestamp   *time.Time
	Temperature *Measurement
	Humidity    *Measurement
}

func (c Changes) IsEmpty() bool {
	return c.Timestamp == nil && c.Temperature == nil && c.Humidity == nil
}
