package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"booking-reconciliation-backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedBooking(t *testing.T, repo *BookingRepository, name string, amount int64) *models.Booking {
	t.Helper()
	b := &models.Booking{
		ClientName:     name,
		ClientEmail:    "client@example.com",
		RecordedAmount: amount,
		BookingDate:    time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}
