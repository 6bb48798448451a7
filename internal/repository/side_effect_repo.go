package repository

import (
	"context"
	"fmt"
	"time"

	"booking-reconciliation-backend/internal/models"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultStaleAfter is how long a run may sit in "running" before another
// dispatcher is allowed to reclaim it.
const DefaultStaleAfter = 15 * time.Minute

type SideEffectRepository struct {
	db         *gorm.DB
	node       *snowflake.Node
	staleAfter time.Duration
}

func NewSideEffectRepository(db *gorm.DB, nodeID int64) (*SideEffectRepository, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &SideEffectRepository{db: db, node: node, staleAfter: DefaultStaleAfter}, nil
}

// Claim reserves (transactionID, handler) for the caller. It returns the
// ledger row and whether the caller now owns it. A row that already
// succeeded, or is running and not stale, is returned unclaimed.
func (r *SideEffectRepository) Claim(ctx context.Context, transactionID, handler string, bookingID uuid.UUID, amount int64) (*models.SideEffectRun, bool, error) {
	run := &models.SideEffectRun{
		ID:            r.node.Generate(),
		TransactionID: transactionID,
		Handler:       handler,
		BookingID:     bookingID,
		Amount:        amount,
		Status:        models.SideEffectRunning,
		Attempts:      1,
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}, {Name: "handler"}},
			DoNothing: true,
		}).
		Create(run)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return run, true, nil
	}

	staleBefore := time.Now().Add(-r.staleAfter)
	res = r.db.WithContext(ctx).Model(&models.SideEffectRun{}).
		Where("transaction_id = ? AND handler = ?", transactionID, handler).
		Where("status = ? OR (status = ? AND updated_at < ?)",
			models.SideEffectFailed, models.SideEffectRunning, staleBefore).
		Updates(map[string]interface{}{
			"status":     models.SideEffectRunning,
			"attempts":   gorm.Expr("attempts + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, false, res.Error
	}

	var existing models.SideEffectRun
	if err := r.db.WithContext(ctx).
		First(&existing, "transaction_id = ? AND handler = ?", transactionID, handler).Error; err != nil {
		return nil, false, err
	}
	return &existing, res.RowsAffected == 1, nil
}

func (r *SideEffectRepository) Complete(ctx context.Context, id snowflake.ID, artifacts datatypes.JSON) error {
	return r.db.WithContext(ctx).Model(&models.SideEffectRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.SideEffectSucceeded,
			"artifacts":  artifacts,
			"last_error": "",
		}).Error
}

func (r *SideEffectRepository) Fail(ctx context.Context, id snowflake.ID, cause error) error {
	return r.db.WithContext(ctx).Model(&models.SideEffectRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.SideEffectFailed,
			"last_error": cause.Error(),
		}).Error
}

// ListRetryable returns failed runs and runs stuck in "running", oldest first.
func (r *SideEffectRepository) ListRetryable(ctx context.Context, limit int) ([]models.SideEffectRun, error) {
	var runs []models.SideEffectRun
	staleBefore := time.Now().Add(-r.staleAfter)
	q := r.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND updated_at < ?)",
			models.SideEffectFailed, models.SideEffectRunning, staleBefore).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&runs).Error
	return runs, err
}

func (r *SideEffectRepository) ListByTransaction(ctx context.Context, transactionID string) ([]models.SideEffectRun, error) {
	var runs []models.SideEffectRun
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("handler ASC").
		Find(&runs).Error
	return runs, err
}
