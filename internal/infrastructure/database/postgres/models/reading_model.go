package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSONMeasurement is a sensor value stored as the JSON object {"value": <number>}.
type JSONMeasurement float64

type measurementDoc struct {
	Value *float64 `json:"value"`
}

// Value implements driver.Valuer.
func (m JSONMeasurement) Value() (driver.Value, error) {
	v := float64(m)
	b, err := json.Marshal(measurementDoc{Value: &v})
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *JSONMeasurement) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported measurement type %T", src)
	}

	var doc measurementDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode measurement: %w", err)
	}
	if doc.Value == nil {
		return fmt.Errorf("measurement has no value: %s", raw)
	}
	*m = JSONMeasurement(*doc.Value)
	return nil
}

// GormDBDataType picks jsonb on PostgreSQL and json elsewhere.
func (JSONMeasurement) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "json"
}

// ReadingModel represents the database model for a control unit reading
type ReadingModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SensorUnitID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_control_unit_data_sensor_ts,priority:1"`
	ControlUnitID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Timestamp     time.Time       `gorm:"column:timestamp;not null;index:idx_control_unit_data_sensor_ts,priority:2"`
	Temperature   JSONMeasurement `gorm:"not null"`
	Humidity      JSONMeasurement `gorm:"not null"`
}

func (ReadingModel) TableName() string {
	return "control_unit_data"
}
