package shipment

import "errors"

var (
	ErrShipmentNotFound        = errors.New("shipment not found")
	ErrShipmentAlreadyExists   = errors.New("shipment number already exists")
	ErrInvalidStatus           = errors.New("invalid shipment status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidParty            = errors.New("referenced user does not exist")
)
