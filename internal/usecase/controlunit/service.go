package controlunit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shipment-tracker/internal/domain/reading"
	"shipment-tracker/internal/logger"
	"shipment-tracker/internal/metrics"
	appErrors "shipment-tracker/pkg/errors"
	"shipment-tracker/pkg/utils"
)

// ErrBatchStorage marks a batch that could not be persisted. No reading of
// such a batch is stored.
var ErrBatchStorage = errors.New("database error")

// Service ingests and manages control unit readings.
type Service struct {
	readingRepo reading.Repository
	metrics     *metrics.IngestionMetrics
	now         func() time.Time
}

// NewService creates a new control unit service. m may be nil.
func NewService(readingRepo reading.Repository, m *metrics.IngestionMetrics) *Service {
	return &Service{
		readingRepo: readingRepo,
		metrics:     m,
		now:         time.Now,
	}
}

// AuthorizeUnit checks that the unit named in the token is the unit named in
// the payload. A malformed token unit id is reported before a mismatch.
func AuthorizeUnit(tokenUnitID, payloadUnitID string) (uuid.UUID, error) {
	tokenID, err := uuid.Parse(tokenUnitID)
	if err != nil {
		return uuid.Nil, appErrors.NewAppError(appErrors.CodeMalformedUnitID, "Invalid control unit id in token", err)
	}

	payloadID, err := uuid.Parse(payloadUnitID)
	if err != nil {
		return uuid.Nil, appErrors.NewAppError(appErrors.CodeValidation, "control_unit_id must be a UUID", err)
	}
	if payloadID != tokenID {
		logger.Warn("Control unit identity mismatch",
			zap.String("token_unit_id", tokenUnitID),
			zap.String("payload_unit_id", payloadUnitID),
			zap.String("event", "control_unit_mismatch"),
		)
		return uuid.Nil, appErrors.ErrControlUnitMismatch
	}

	return tokenID, nil
}

// RecordSingle stores one reading sent by the unit named in the token.
func (s *Service) RecordSingle(ctx context.Context, tokenUnitID string, req *SingleReadingRequest) (*ReadingResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err)
	}

	unitID, err := AuthorizeUnit(tokenUnitID, req.ControlUnitID)
	if err != nil {
		return nil, err
	}

	timestamp := s.now()
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}

	r := &reading.Reading{
		SensorUnitID:  req.SensorUnitID,
		ControlUnitID: unitID,
		Timestamp:     timestamp.UTC(),
		Temperature:   req.Temperature.toMeasurement(),
		Humidity:      req.Humidity.toMeasurement(),
	}
	if err := s.readingRepo.Create(ctx, r); err != nil {
		return nil, err
	}

	s.metrics.AddSaved(metrics.SourceHTTP, 1)
	logger.Debug("Reading saved",
		zap.String("reading_id", r.ID.String()),
		zap.String("control_unit_id", unitID.String()),
		zap.String("sensor_unit_id", r.SensorUnitID.String()),
		zap.String("event", "reading_saved"),
	)

	return ToReadingResponse(r), nil
}

// RecordBatch expands a grouped batch into readings and stores them in one
// transaction. source labels the transport for metrics.
func (s *Service) RecordBatch(ctx context.Context, tokenUnitID string, req *BatchRequest, source string) (*BatchResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		s.metrics.IncBatch(source, metrics.ResultRejected)
		return nil, appErrors.Validation(err)
	}

	unitID, err := AuthorizeUnit(tokenUnitID, req.ControlUnitID)
	if err != nil {
		s.metrics.IncBatch(source, metrics.ResultRejected)
		return nil, err
	}

	readings := ExpandBatch(unitID, req)
	if err := s.readingRepo.CreateBatch(ctx, readings); err != nil {
		s.metrics.IncBatch(source, metrics.ResultFailed)
		logger.Error("Failed to save reading batch",
			zap.String("control_unit_id", unitID.String()),
			zap.Int("readings", len(readings)),
			zap.String("source", source),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrBatchStorage, err)
	}

	s.metrics.IncBatch(source, metrics.ResultOK)
	s.metrics.AddSaved(source, len(readings))
	logger.Info("Reading batch saved",
		zap.String("control_unit_id", unitID.String()),
		zap.Int("groups", len(req.TimestampGroups)),
		zap.Int("saved", len(readings)),
		zap.String("source", source),
		zap.String("event", "readings_batch_saved"),
	)

	return &BatchResponse{Status: "ok", Saved: len(readings)}, nil
}

// ExpandBatch turns every (group, sensor unit) pair into one reading stamped
// with the group's time.
func ExpandBatch(unitID uuid.UUID, req *BatchRequest) []*reading.Reading {
	readings := make([]*reading.Reading, 0, req.Size())
	for _, group := range req.TimestampGroups {
		ts := time.Unix(*group.Timestamp, 0).UTC()
		for _, su := range group.SensorUnits {
			readings = append(readings, &reading.Reading{
				SensorUnitID:  su.SensorUnitID,
				ControlUnitID: unitID,
				Timestamp:     ts,
				Temperature:   reading.Measurement{Value: *su.Temperature},
				Humidity:      reading.Measurement{Value: *su.Humidity},
			})
		}
	}
	return readings
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]*ReadingResponse, error) {
	readings, err := s.readingRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return ToReadingResponses(readings), nil
}

func (s *Service) Get(ctx context.Context, readingID uuid.UUID) (*ReadingResponse, error) {
	r, err := s.readingRepo.GetByID(ctx, readingID)
	if err != nil {
		return nil, err
	}
	return ToReadingResponse(r), nil
}

func (s *Service) Update(ctx context.Context, readingID uuid.UUID, req *UpdateReadingRequest) (*ReadingResponse, error) {
	changes := reading.Changes{Timestamp: req.Timestamp}
	if req.Temperature != nil {
		if req.Temperature.Value == nil {
			return nil, appErrors.NewAppError(appErrors.CodeValidation, "temperature requires a value", nil)
		}
		m := req.Temperature.toMeasurement()
		changes.Temperature = &m
	}
	if req.Humidity != nil {
		if req.Humidity.Value == nil {
			return nil, appErrors.NewAppError(appErrors.CodeValidation, "humidity requires a value", nil)
		}
		m := req.Humidity.toMeasurement()
		changes.Humidity = &m
	}
	if changes.IsEmpty() {
		return nil, appErrors.NewAppError(appErrors.CodeEmptyUpdate, "No fields to update", nil)
	}

	r, err := s.readingRepo.Update(ctx, readingID, changes)
	if err != nil {
		return nil, err
	}

	logger.Info("Reading updated",
		zap.String("reading_id", readingID.String()),
		zap.String("event", "reading_updated"),
	)
	return ToReadingResponse(r), nil
}

func (s *Service) Delete(ctx context.Context, readingID uuid.UUID) error {
	if err := s.readingRepo.Delete(ctx, readingID); err != nil {
		return err
	}

	logger.Info("Reading deleted",
		zap.String("reading_id", readingID.String()),
		zap.String("event", "reading_deleted"),
	)
	return nil
}
