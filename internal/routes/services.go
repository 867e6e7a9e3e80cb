package routes

import (
	"shipment-tracker/internal/config"
	"shipment-tracker/internal/infrastructure/database/postgres"
	"shipment-tracker/internal/metrics"
	"shipment-tracker/internal/usecase/auth"
	"shipment-tracker/internal/usecase/controlunit"
	"shipment-tracker/internal/usecase/shipment"
	"shipment-tracker/internal/usecase/user"
)

// Services holds the use cases shared by the HTTP and MQTT transports.
type Services struct {
	Auth         *auth.Service
	Users        *user.Service
	Shipments    *shipment.Service
	ControlUnits *controlunit.Service
}

func NewServices(cfg *config.Config, db *postgres.DB, ingestion *metrics.IngestionMetrics) *Services {
	userRepository := postgres.NewUserRepository(db)
	shipmentRepository := postgres.NewShipmentRepository(db)
	readingRepository := postgres.NewReadingRepository(db)

	return &Services{
		Auth:         auth.NewService(userRepository, cfg),
		Users:        user.NewService(userRepository),
		Shipments:    shipment.NewService(shipmentRepository, userRepository, db, cfg),
		ControlUnits: controlunit.NewService(readingRepository, ingestion),
	}
}
