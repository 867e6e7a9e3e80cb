package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shipment-tracker/internal/domain/reading"
	"shipment-tracker/internal/domain/shipment"
	"shipment-tracker/internal/infrastructure/database/postgres/models"
)

type ShipmentRepository struct {
	db *DB
}

func NewShipmentRepository(db *DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

// shipmentLatestRow is one row of the shipment / latest reading join.
type shipmentLatestRow struct {
	models.ShipmentModel `gorm:"embedded"`
	LatestTemperature    *models.JSONMeasurement
	LatestHumidity       *models.JSONMeasurement
}

func (r *ShipmentRepository) Create(ctx context.Context, s *shipment.Shipment) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now().UTC()
	if s.Status == "" {
		s.Status = shipment.StatusCreated
	}

	dbModel := toShipmentModel(s)
	if err := r.db.conn(ctx).Create(dbModel).Error; err != nil {
		switch {
		case isUniqueViolation(err):
			return shipment.ErrShipmentAlreadyExists
		case isForeignKeyViolation(err):
			return shipment.ErrInvalidParty
		}
		return fmt.Errorf("failed to create shipment: %w", err)
	}

	return nil
}

func (r *ShipmentRepository) GetByID(ctx context.Context, shipmentID uuid.UUID) (*shipment.Shipment, error) {
	var dbModel models.ShipmentModel
	err := r.db.conn(ctx).Where("id = ?", shipmentID).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shipment.ErrShipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}

	return toShipmentEntity(&dbModel), nil
}

func (r *ShipmentRepository) GetWithLatestValues(ctx context.Context, shipmentID uuid.UUID) (*shipment.WithLatestValues, error) {
	var rows []shipmentLatestRow
	err := r.withLatestQuery(ctx).
		Where("s.id = ?", shipmentID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}
	if len(rows) == 0 {
		return nil, shipment.ErrShipmentNotFound
	}

	return toWithLatestValues(&rows[0]), nil
}

func (r *ShipmentRepository) List(ctx context.Context, filter shipment.Filter) ([]*shipment.Shipment, error) {
	var dbModels []models.ShipmentModel
	query := applyShipmentFilter(r.db.conn(ctx).Table("shipments AS s"), filter)
	err := query.
		Order("s.created_at ASC").Order("s.id ASC").
		Offset(filter.Offset).Limit(filter.Limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}

	shipments := make([]*shipment.Shipment, len(dbModels))
	for i := range dbModels {
		shipments[i] = toShipmentEntity(&dbModels[i])
	}
	return shipments, nil
}

func (r *ShipmentRepository) ListWithLatestValues(ctx context.Context, filter shipment.Filter) ([]*shipment.WithLatestValues, error) {
	var rows []shipmentLatestRow
	err := applyShipmentFilter(r.withLatestQuery(ctx), filter).
		Order("s.created_at ASC").Order("s.id ASC").
		Offset(filter.Offset).Limit(filter.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}

	result := make([]*shipment.WithLatestValues, len(rows))
	for i := range rows {
		result[i] = toWithLatestValues(&rows[i])
	}
	return result, nil
}

func (r *ShipmentRepository) Update(ctx context.Context, shipmentID uuid.UUID, changes shipment.Changes) (*shipment.Shipment, error) {
	updates := shipmentUpdates(changes)

	if len(updates) > 0 {
		result := r.db.conn(ctx).Model(&models.ShipmentModel{}).Where("id = ?", shipmentID).Updates(updates)
		if result.Error != nil {
			switch {
			case isUniqueViolation(result.Error):
				return nil, shipment.ErrShipmentAlreadyExists
			case isForeignKeyViolation(result.Error):
				return nil, shipment.ErrInvalidParty
			}
			return nil, fmt.Errorf("failed to update shipment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, shipment.ErrShipmentNotFound
		}
	}

	return r.GetByID(ctx, shipmentID)
}

// Delete removes the shipment and returns it as it was before deletion.
func (r *ShipmentRepository) Delete(ctx context.Context, shipmentID uuid.UUID) (*shipment.Shipment, error) {
	var deleted *shipment.Shipment
	err := r.db.WithinTransaction(ctx, func(ctx context.Context) error {
		s, err := r.GetByID(ctx, shipmentID)
		if err != nil {
			return err
		}

		result := r.db.conn(ctx).Delete(&models.ShipmentModel{}, "id = ?", shipmentID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete shipment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shipment.ErrShipmentNotFound
		}

		deleted = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// withLatestQuery joins every shipment with the newest reading of its sensor
// unit. Ties on timestamp go to the reading with the smallest id.
func (r *ShipmentRepository) withLatestQuery(ctx context.Context) *gorm.DB {
	conn := r.db.conn(ctx)

	maxTimestamps := conn.Table("control_unit_data AS d").
		Select("d.sensor_unit_id, MAX(d.timestamp) AS max_ts").
		Group("d.sensor_unit_id")

	firstOfTies := conn.Table("control_unit_data AS r2").
		Select("r2.id").
		Where("r2.sensor_unit_id = r.sensor_unit_id AND r2.timestamp = r.timestamp").
		Order("r2.id").
		Limit(1)

	latest := conn.Table("control_unit_data AS r").
		Select("r.sensor_unit_id, r.temperature, r.humidity").
		Joins("JOIN (?) AS m ON r.sensor_unit_id = m.sensor_unit_id AND r.timestamp = m.max_ts", maxTimestamps).
		Where("r.id = (?)", firstOfTies)

	return conn.Table("shipments AS s").
		Select("s.*, lr.temperature AS latest_temperature, lr.humidity AS latest_humidity").
		Joins("LEFT JOIN (?) AS lr ON lr.sensor_unit_id = s.sensor_unit_id", latest)
}

func applyShipmentFilter(query *gorm.DB, filter shipment.Filter) *gorm.DB {
	if filter.SenderOrReceiverID != nil {
		query = query.Where("(s.sender_id = ? OR s.receiver_id = ?)", *filter.SenderOrReceiverID, *filter.SenderOrReceiverID)
	}
	if filter.DriverID != nil {
		query = query.Where("s.driver_id = ?", *filter.DriverID)
	}
	return query
}

func shipmentUpdates(c shipment.Changes) map[string]interface{} {
	updates := map[string]interface{}{}
	if c.ShipmentNumber != nil {
		updates["shipment_number"] = *c.ShipmentNumber
	}
	if c.SenderID != nil {
		updates["sender_id"] = *c.SenderID
	}
	if c.ReceiverID != nil {
		updates["receiver_id"] = *c.ReceiverID
	}
	if c.DriverID != nil {
		updates["driver_id"] = *c.DriverID
	}
	if c.SensorUnitID != nil {
		updates["sensor_unit_id"] = *c.SensorUnitID
	}
	if c.Status != nil {
		updates["status"] = string(*c.Status)
	}
	if c.MinTemp != nil {
		updates["min_temp"] = *c.MinTemp
	}
	if c.MaxTemp != nil {
		updates["max_temp"] = *c.MaxTemp
	}
	if c.MinHumidity != nil {
		updates["min_humidity"] = *c.MinHumidity
	}
	if c.MaxHumidity != nil {
		updates["max_humidity"] = *c.MaxHumidity
	}
	if c.DeliveryAddress != nil {
		updates["delivery_address"] = *c.DeliveryAddress
	}
	if c.PickupAddress != nil {
		updates["pickup_address"] = *c.PickupAddress
	}
	return updates
}

func toShipmentModel(s *shipment.Shipment) *models.ShipmentModel {
	return &models.ShipmentModel{
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

func toShipmentEntity(m *models.ShipmentModel) *shipment.Shipment {
	return &shipment.Shipment{
		ID:              m.ID,
		ShipmentNumber:  m.ShipmentNumber,
		SenderID:        m.SenderID,
		ReceiverID:      m.ReceiverID,
		DriverID:        m.DriverID,
		SensorUnitID:    m.SensorUnitID,
		Status:          shipment.Status(m.Status),
		MinTemp:         m.MinTemp,
		MaxTemp:         m.MaxTemp,
		MinHumidity:     m.MinHumidity,
		MaxHumidity:     m.MaxHumidity,
		DeliveryAddress: m.DeliveryAddress,
		PickupAddress:   m.PickupAddress,
		CreatedAt:       m.CreatedAt,
	}
}

func toWithLatestValues(row *shipmentLatestRow) *shipment.WithLatestValues {
	return &shipment.WithLatestValues{
		Shipment:    *toShipmentEntity(&row.ShipmentModel),
		Temperature: toMeasurementPtr(row.LatestTemperature),
		Humidity:    toMeasurementPtr(row.LatestHumidity),
	}
}

func toMeasurementPtr(m *models.JSONMeasurement) *reading.Measurement {
	if m == nil {
		return nil
	}
	return &reading.Measurement{Value: float64(*m)}
}
