package testutil

import (
	"time"

	"shipment-tracker/internal/config"
)

const (
	UserSecret        = "test-user-secret"
	ControlUnitSecret = "test-control-unit-secret"
)

// Config returns settings suitable for service and handler tests.
func Config() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Environment:     "test",
			MaxRequestBytes: 1 << 20,
		},
		JWT: config.JWTConfig{
			Secret:                UserSecret,
			ControlUnitSecret:     ControlUnitSecret,
			Algorithm:             "HS256",
			ExpiryMinutes:         30,
			ControlUnitTTLMinutes: 30,
		},
		RateLimit: config.RateLimitConfig{
			PerMinute: 10000,
			Burst:     10000,
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:         time.Hour,
		},
	}
}
