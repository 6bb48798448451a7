package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"booking-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentNotificationRepository struct {
	db *gorm.DB
}

func NewPaymentNotificationRepository(db *gorm.DB) *PaymentNotificationRepository {
	return &PaymentNotificationRepository{db: db}
}

// Record inserts the notification unless one with the same transaction id is
// already logged. The stored row is returned either way.
func (r *PaymentNotificationRepository) Record(ctx context.Context, n *models.PaymentNotification) (*models.PaymentNotification, bool, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Status == "" {
		n.Status = models.NotificationStatusReceived
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "transaction_id"}}, DoNothing: true}).
		Create(n)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return n, true, nil
	}

	existing, err := r.GetByTransactionID(ctx, n.TransactionID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *PaymentNotificationRepository) Save(ctx context.Context, n *models.PaymentNotification) error {
	return r.db.WithContext(ctx).Save(n).Error
}

// MarkApplied confirms a notification whose transaction already paid
// bookingID. A row that is already confirmed keeps its stored outcome.
func (r *PaymentNotificationRepository) MarkApplied(ctx context.Context, id, bookingID uuid.UUID, message string) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentNotification{}).
		Where("id = ? AND status <> ?", id, models.NotificationStatusConfirmed).
		Updates(map[string]interface{}{
			"status":             models.NotificationStatusConfirmed,
			"message":            message,
			"matched_booking_id": bookingID,
		}).Error
}

func (r *PaymentNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentNotification, error) {
	var n models.PaymentNotification
	err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *PaymentNotificationRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.PaymentNotification, error) {
	var n models.PaymentNotification
	err := r.db.WithContext(ctx).First(&n, "transaction_id = ?", transactionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

type NotificationFilter struct {
	Status  string
	BatchID *uuid.UUID
	Cursor  string
	Limit   int
	Search  string
}

// List pages through the notification log ordered by id. The returned cursor
// is empty when there are no more rows.
func (r *PaymentNotificationRepository) List(ctx context.Context, f NotificationFilter) ([]models.PaymentNotification, string, bool, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var items []models.PaymentNotification
	query := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(limit + 1)

	if f.Status != "" && f.Status != "all" {
		query = query.Where("status = ?", f.Status)
	}
	if f.BatchID != nil {
		query = query.Where("import_batch_id = ?", *f.BatchID)
	}
	if f.Cursor != "" {
		query = query.Where("id > ?", f.Cursor)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where(
			"LOWER(raw_description) LIKE ? OR LOWER(normalized_name) LIKE ? OR transaction_id = ?",
			like, like, f.Search,
		)
	}

	if err := query.Find(&items).Error; err != nil {
		return nil, "", false, err
	}

	hasMore := false
	var nextCursor string
	if len(items) > limit {
		hasMore = true
		nextCursor = items[limit-1].ID.String()
		items = items[:limit]
	}
	return items, nextCursor, hasMore, nil
}

type NotificationStats struct {
	Total       int64 `json:"total"`
	TotalAmount int64 `json:"total_amount"`

	ConfirmedCount int64 `json:"confirmed_count"`
	ConfirmedSum   int64 `json:"confirmed_sum"`

	PendingCount int64 `json:"pending_count"`
	PendingSum   int64 `json:"pending_sum"`

	AmbiguousCount int64 `json:"ambiguous_count"`
	AmbiguousSum   int64 `json:"ambiguous_sum"`

	ErrorCount int64 `json:"error_count"`
	ErrorSum   int64 `json:"error_sum"`

	RejectedCount int64 `json:"rejected_count"`
	RejectedSum   int64 `json:"rejected_sum"`
}

type statRow struct {
	Status string
	Count  int64
	Sum    int64
}

func (r *PaymentNotificationRepository) Stats(ctx context.Context) (NotificationStats, error) {
	var stats NotificationStats
	var rows []statRow

	err := r.db.WithContext(ctx).Model(&models.PaymentNotification{}).
		Select("status, COUNT(*) as count, COALESCE(SUM(amount),0) as sum").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return stats, err
	}

	for _, row := range rows {
		stats.Total += row.Count
		stats.TotalAmount += row.Sum

		switch row.Status {
		case models.NotificationStatusConfirmed:
			stats.ConfirmedCount, stats.ConfirmedSum = row.Count, row.Sum
		case models.NotificationStatusPending:
			stats.PendingCount, stats.PendingSum = row.Count, row.Sum
		case models.NotificationStatusAmbiguous:
			stats.AmbiguousCount, stats.AmbiguousSum = row.Count, row.Sum
		case models.NotificationStatusError:
			stats.ErrorCount, stats.ErrorSum = row.Count, row.Sum
		case models.NotificationStatusRejected:
			stats.RejectedCount, stats.RejectedSum = row.Count, row.Sum
		}
	}
	return stats, nil
}

func (r *PaymentNotificationRepository) CreateAudit(ctx context.Context, entry *models.MatchAuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *PaymentNotificationRepository) ListAudit(ctx context.Context, notificationID uuid.UUID) ([]models.MatchAuditLog, error) {
	var entries []models.MatchAuditLog
	err := r.db.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *PaymentNotificationRepository) CreateBatch(ctx context.Context, filename string) (*models.ImportBatch, error) {
	now := time.Now()
	batch := &models.ImportBatch{
		ID:        uuid.New(),
		Filename:  filename,
		Status:    models.BatchStatusProcessing,
		StartedAt: now,
		CreatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(batch).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *PaymentNotificationRepository) GetBatch(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// UpdateBatchProgress persists running counters. Passing a completion time
// also marks the batch completed.
func (r *PaymentNotificationRepository) UpdateBatchProgress(ctx context.Context, batch *models.ImportBatch, completedAt *time.Time) error {
	updates := map[string]interface{}{
		"total_rows":      batch.TotalRows,
		"processed_count": batch.ProcessedCount,
		"confirmed_count": batch.ConfirmedCount,
		"pending_count":   batch.PendingCount,
		"ambiguous_count": batch.AmbiguousCount,
		"error_count":     batch.ErrorCount,
	}
	if completedAt != nil {
		updates["status"] = models.BatchStatusCompleted
		updates["completed_at"] = *completedAt
	}
	return r.db.WithContext(ctx).Model(&models.ImportBatch{}).
		Where("id = ?", batch.ID).
		Updates(updates).Error
}
