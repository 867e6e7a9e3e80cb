package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"shipment-tracker/internal/infrastructure/database/postgres/models"
	"shipment-tracker/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// Migrate runs a goose command (up, down, status, ...) against the embedded
// SQL migrations.
func (d *DB) Migrate(ctx context.Context, command string, args ...string) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	logger.Info("Running database migrations", zap.String("command", command))
	if err := goose.RunContext(ctx, command, sqlDB, migrationsDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// AutoMigrateModels creates the tables from the gorm models. It carries no
// foreign keys and is meant for throwaway databases such as SQLite in tests.
func (d *DB) AutoMigrateModels() error {
	return d.DB.AutoMigrate(
		&models.UserModel{},
		&models.ShipmentModel{},
		&models.ReadingModel{},
	)
}
