// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"shipment-tracker/internal/infrastructure/database/postgres"
)

// NewDB returns an in-memory SQLite database with the schema created from
// the gorm models. It is closed when the test ends.
func NewDB(t *testing.T) *postgres.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:test_%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := postgres.NewDBFromGorm(gdb)
	require.NoError(t, db.AutoMigrateModels())

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
