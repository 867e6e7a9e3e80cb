package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shipment-tracker/internal/domain/reading"
	"shipment-tracker/internal/infrastructure/database/postgres/models"
)

const readingInsertBatchSize = 200

// ReadingRepository stores control unit data
type ReadingRepository struct {
	db *DB
}

func NewReadingRepository(db *DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

func (r *ReadingRepository) Create(ctx context.Context, rd *reading.Reading) error {
	if rd.ID == uuid.Nil {
		rd.ID = uuid.New()
	}
	rd.Timestamp = rd.Timestamp.UTC()

	if err := r.db.conn(ctx).Create(toReadingModel(rd)).Error; err != nil {
		return fmt.Errorf("failed to create reading: %w", err)
	}
	return nil
}

// CreateBatch inserts all readings in one transaction. Either every row is
// stored or none is.
func (r *ReadingRepository) CreateBatch(ctx context.Context, readings []*reading.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	dbModels := make([]*models.ReadingModel, len(readings))
	for i, rd := range readings {
		if rd.ID == uuid.Nil {
			rd.ID = uuid.New()
		}
		rd.Timestamp = rd.Timestamp.UTC()
		dbModels[i] = toReadingModel(rd)
	}

	return r.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := r.db.conn(ctx).CreateInBatches(dbModels, readingInsertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to create readings: %w", err)
		}
		return nil
	})
}

func (r *ReadingRepository) GetByID(ctx context.Context, readingID uuid.UUID) (*reading.Reading, error) {
	var dbModel models.ReadingModel
	err := r.db.conn(ctx).First(&dbModel, "id = ?", readingID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reading.ErrReadingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}

	return toReadingEntity(&dbModel), nil
}

func (r *ReadingRepository) List(ctx context.Context, offset, limit int) ([]*reading.Reading, error) {
	var dbModels []models.ReadingModel
	err := r.db.conn(ctx).
		Order("control_unit_data.timestamp ASC").Order("control_unit_data.id ASC").
		Offset(offset).Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}

	readings := make([]*reading.Reading, len(dbModels))
	for i := range dbModels {
		readings[i] = toReadingEntity(&dbModels[i])
	}
	return readings, nil
}

func (r *ReadingRepository) Update(ctx context.Context, readingID uuid.UUID, changes reading.Changes) (*reading.Reading, error) {
	updates := map[string]interface{}{}
	if changes.Timestamp != nil {
		updates["timestamp"] = changes.Timestamp.UTC()
	}
	if changes.Temperature != nil {
		updates["temperature"] = models.JSONMeasurement(changes.Temperature.Value)
	}
	if changes.Humidity != nil {
		updates["humidity"] = models.JSONMeasurement(changes.Humidity.Value)
	}

	if len(updates) > 0 {
		result := r.db.conn(ctx).Model(&models.ReadingModel{}).Where("id = ?", readingID).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update reading: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, reading.ErrReadingNotFound
		}
	}

	return r.GetByID(ctx, readingID)
}

func (r *ReadingRepository) Delete(ctx context.Context, readingID uuid.UUID) error {
	result := r.db.conn(ctx).Delete(&models.ReadingModel{}, "id = ?", readingID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete reading: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return reading.ErrReadingNotFound
	}
	return nil
}

func toReadingModel(rd *reading.Reading) *models.ReadingModel {
	return &models.ReadingModel{
		ID:            rd.ID,
		SensorUnitID:  rd.SensorUnitID,
		ControlUnitID: rd.ControlUnitID,
		Timestamp:     rd.Timestamp,
		Temperature:   models.JSONMeasurement(rd.Temperature.Value),
		Humidity:      models.JSONMeasurement(rd.Humidity.Value),
	}
}

func toReadingEntity(m *models.ReadingModel) *reading.Reading {
	return &reading.Reading{
		ID:            m.ID,
		SensorUnitID:  m.SensorUnitID,
		ControlUnitID: m.ControlUnitID,
		Timestamp:     m.Timestamp.UTC(),
		Temperature:   reading.Measurement{Value: float64(m.Temperature)},
		Humidity:      reading.Measurement{Value: float64(m.Humidity)},
	}
}
