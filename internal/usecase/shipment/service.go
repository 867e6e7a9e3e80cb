package shipment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shipment-tracker/internal/config"
	domainShipment "shipment-tracker/internal/domain/shipment"
	domainUser "shipment-tracker/internal/domain/user"
	"shipment-tracker/internal/logger"
	appErrors "shipment-tracker/pkg/errors"
	"shipment-tracker/pkg/utils"
)

// Transactor runs fn inside one database transaction carried by ctx.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements shipment use cases
type Service struct {
	shipmentRepo       domainShipment.Repository
	userRepo           domainUser.Repository
	tx                 Transactor
	enforceTransitions bool
}

// NewService creates a new shipment service
func NewService(
	shipmentRepo domainShipment.Repository,
	userRepo domainUser.Repository,
	tx Transactor,
	cfg *config.Config,
) *Service {
	return &Service{
		shipmentRepo:       shipmentRepo,
		userRepo:           userRepo,
		tx:                 tx,
		enforceTransitions: cfg.Shipment.EnforceTransitions,
	}
}

// visibilityFilter narrows listings to what caller may see. ok is false
// when the caller has no personal shipments at all (admins).
func visibilityFilter(caller *domainUser.User, offset, limit int) (filter domainShipment.Filter, ok bool) {
	filter = domainShipment.Filter{Offset: offset, Limit: limit}
	switch caller.Role {
	case domainUser.RoleCustomer:
		filter.SenderOrReceiverID = &caller.ID
	case domainUser.RoleDriver:
		filter.DriverID = &caller.ID
	default:
		return filter, false
	}
	return filter, true
}

func canSee(caller *domainUser.User, s *domainShipment.Shipment) bool {
	switch caller.Role {
	case domainUser.RoleAdmin:
		return true
	case domainUser.RoleCustomer:
		return s.SenderID == caller.ID || s.ReceiverID == caller.ID
	case domainUser.RoleDriver:
		return s.DriverID != nil && *s.DriverID == caller.ID
	}
	return false
}

// Create stores a new shipment. A customer may only create shipments they
// send or receive.
func (s *Service) Create(ctx context.Context, caller *domainUser.User, req *CreateShipmentRequest) (*ShipmentResponse, error) {
	req.ShipmentNumber = utils.SanitizeString(req.ShipmentNumber)
	req.DeliveryAddress = utils.SanitizeOptional(req.DeliveryAddress)
	req.PickupAddress = utils.SanitizeOptional(req.PickupAddress)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err)
	}

	if caller.Role == domainUser.RoleCustomer && caller.ID != req.SenderID && caller.ID != req.ReceiverID {
		logger.Warn("Customer tried to create a shipment for other parties",
			zap.String("user_id", caller.ID.String()),
			zap.String("event", "shipment_create_denied"),
		)
		return nil, appErrors.ErrInsufficientPermissions
	}

	shipment := &domainShipment.Shipment{
		ShipmentNumber:  req.ShipmentNumber,
		SenderID:        req.SenderID,
		ReceiverID:      req.ReceiverID,
		DriverID:        req.DriverID,
		SensorUnitID:    req.SensorUnitID,
		Status:          domainShipment.StatusCreated,
		MinTemp:         req.MinTemp,
		MaxTemp:         req.MaxTemp,
		MinHumidity:     req.MinHumidity,
		MaxHumidity:     req.MaxHumidity,
		DeliveryAddress: req.DeliveryAddress,
		PickupAddress:   req.PickupAddress,
	}
	if req.Status != nil {
		shipment.Status = domainShipment.Status(*req.Status)
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := ValidateParties(ctx, s.userRepo, &req.SenderID, &req.ReceiverID, req.DriverID); err != nil {
			return err
		}
		return s.shipmentRepo.Create(ctx, shipment)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Shipment created",
		zap.String("shipment_id", shipment.ID.String()),
		zap.String("shipment_number", shipment.ShipmentNumber),
		zap.String("status", string(shipment.Status)),
		zap.String("event", "shipment_created"),
	)

	return ToShipmentResponse(shipment), nil
}

// ListAll returns every shipment, unfiltered.
func (s *Service) ListAll(ctx context.Context, offset, limit int) ([]*ShipmentResponse, error) {
	shipments, err := s.shipmentRepo.List(ctx, domainShipment.Filter{Offset: offset, Limit: limit})
	if err != nil {
		return nil, err
	}
	return ToShipmentResponses(shipments), nil
}

// ListAllWithLatestValues returns every shipment with its latest reading.
func (s *Service) ListAllWithLatestValues(ctx context.Context, offset, limit int) ([]*ShipmentWithLatestValuesResponse, error) {
	shipments, err := s.shipmentRepo.ListWithLatestValues(ctx, domainShipment.Filter{Offset: offset, Limit: limit})
	if err != nil {
		return nil, err
	}
	return ToShipmentWithLatestValuesResponses(shipments), nil
}

// ListMine returns the shipments caller takes part in: sent or received for
// customers, assigned for drivers. Admins get an empty list.
func (s *Service) ListMine(ctx context.Context, caller *domainUser.User, offset, limit int) ([]*ShipmentResponse, error) {
	filter, ok := visibilityFilter(caller, offset, limit)
	if !ok {
		return []*ShipmentResponse{}, nil
	}

	shipments, err := s.shipmentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToShipmentResponses(shipments), nil
}

func (s *Service) ListMineWithLatestValues(ctx context.Context, caller *domainUser.User, offset, limit int) ([]*ShipmentWithLatestValuesResponse, error) {
	filter, ok := visibilityFilter(caller, offset, limit)
	if !ok {
		return []*ShipmentWithLatestValuesResponse{}, nil
	}

	shipments, err := s.shipmentRepo.ListWithLatestValues(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToShipmentWithLatestValuesResponses(shipments), nil
}

// Get returns one shipment. Shipments caller may not see are reported as
// not found.
func (s *Service) Get(ctx context.Context, caller *domainUser.User, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if !canSee(caller, shipment) {
		return nil, domainShipment.ErrShipmentNotFound
	}
	return ToShipmentResponse(shipment), nil
}

func (s *Service) GetWithLatestValues(ctx context.Context, caller *domainUser.User, shipmentID uuid.UUID) (*ShipmentWithLatestValuesResponse, error) {
	shipment, err := s.shipmentRepo.GetWithLatestValues(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if !canSee(caller, &shipment.Shipment) {
		return nil, domainShipment.ErrShipmentNotFound
	}
	return ToShipmentWithLatestValuesResponse(shipment), nil
}

// UpdateDriverAndStatus sets the driver and/or status. Nil arguments are
// left unchanged; an unknown status is rejected.
func (s *Service) UpdateDriverAndStatus(ctx context.Context, shipmentID uuid.UUID, driverID *uuid.UUID, status *string) (*ShipmentResponse, error) {
	changes := domainShipment.Changes{DriverID: driverID}
	if status != nil {
		st := domainShipment.Status(*status)
		changes.Status = &st
	}

	return s.update(ctx, shipmentID, changes)
}

// UpdateAll applies a partial update over every editable field.
func (s *Service) UpdateAll(ctx context.Context, shipmentID uuid.UUID, req *UpdateShipmentRequest) (*ShipmentResponse, error) {
	if req.ShipmentNumber != nil {
		sanitized := utils.SanitizeString(*req.ShipmentNumber)
		req.ShipmentNumber = &sanitized
	}
	req.DeliveryAddress = utils.SanitizeOptional(req.DeliveryAddress)
	req.PickupAddress = utils.SanitizeOptional(req.PickupAddress)

	changes := req.toChanges()
	if changes.IsEmpty() {
		return nil, appErrors.NewAppError(appErrors.CodeEmptyUpdate, "No fields to update", nil)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err)
	}

	return s.update(ctx, shipmentID, changes)
}

func (s *Service) update(ctx context.Context, shipmentID uuid.UUID, changes domainShipment.Changes) (*ShipmentResponse, error) {
	if changes.Status != nil && !changes.Status.IsValid() {
		return nil, appErrors.NewAppError(appErrors.CodeInvalidStatus,
			fmt.Sprintf("Invalid status %q", *changes.Status), domainShipment.ErrInvalidStatus)
	}

	var updated *domainShipment.Shipment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.shipmentRepo.GetByID(ctx, shipmentID)
		if err != nil {
			return err
		}

		if changes.Status != nil && s.enforceTransitions {
			if err := domainShipment.ValidateStatusTransition(current.Status, *changes.Status); err != nil {
				return appErrors.NewAppError(appErrors.CodeInvalidTransition, err.Error(), err)
			}
		}

		if err := ValidateParties(ctx, s.userRepo, changes.SenderID, changes.ReceiverID, changes.DriverID); err != nil {
			return err
		}

		if changes.IsEmpty() {
			updated = current
			return nil
		}

		updated, err = s.shipmentRepo.Update(ctx, shipmentID, changes)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Shipment updated",
		zap.String("shipment_id", updated.ID.String()),
		zap.String("status", string(updated.Status)),
		zap.String("event", "shipment_updated"),
	)

	return ToShipmentResponse(updated), nil
}

// Delete removes a shipment and returns it as it was.
func (s *Service) Delete(ctx context.Context, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	deleted, err := s.shipmentRepo.Delete(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	logger.Info("Shipment deleted",
		zap.String("shipment_id", shipmentID.String()),
		zap.String("event", "shipment_deleted"),
	)

	return ToShipmentResponse(deleted), nil
}
