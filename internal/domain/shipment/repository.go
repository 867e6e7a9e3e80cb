package shipment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for shipment repository operations
type Repository interface {
	Create(ctx context.Context, shipment *Shipment) error
	GetByID(ctx context.Context, shipmentID uuid.UUID) (*Shipment, error)
	GetWithLatestValues(ctx context.Context, shipmentID uuid.UUID) (*WithLatestValues, error)
	List(ctx context.Context, filter Filter) ([]*Shipment, error)
	ListWithLatestValues(ctx context.Context, filter Filter) ([]*WithLatestValues, error)
	Update(ctx context.Context, shipmentID uuid.UUID, changes Changes) (*Shipment, error)
	Delete(ctx context.Context, shipmentID uuid.UUID) (*Shipment, error)
}

// Filter narrows a listing. A nil party field means no restriction on it.
type Filter struct {
	// SenderOrReceiverID matches shipments the user sends or receives.
	SenderOrReceiverID *uuid.UUID
	DriverID           *uuid.UUID

	Offset int
	Limit  int
}
