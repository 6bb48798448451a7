package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"booking-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordIsIdempotentPerTransaction(t *testing.T) {
	repo := NewPaymentNotificationRepository(newTestDB(t))
	ctx := context.Background()

	first, created, err := repo.Record(ctx, &models.PaymentNotification{
		TransactionID:  "tx-1",
		RawDescription: "TUVAN LEHOA",
		Amount:         299000,
		NotifiedAt:     time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.NotificationStatusReceived, first.Status)

	second, created, err := repo.Record(ctx, &models.PaymentNotification{
		TransactionID:  "tx-1",
		RawDescription: "TUVAN LEHOA",
		Amount:         299000,
		NotifiedAt:     time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestMarkAppliedKeepsConfirmedOutcome(t *testing.T) {
	repo := NewPaymentNotificationRepository(newTestDB(t))
	ctx := context.Background()
	bookingID := uuid.New()

	pending, _, err := repo.Record(ctx, &models.PaymentNotification{TransactionID: "tx-pending", Amount: 1000})
	require.NoError(t, err)
	require.NoError(t, repo.MarkApplied(ctx, pending.ID, bookingID, "payment already applied"))

	got, err := repo.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationStatusConfirmed, got.Status)
	assert.Equal(t, "payment already applied", got.Message)
	require.NotNil(t, got.MatchedBookingID)
	assert.Equal(t, bookingID, *got.MatchedBookingID)

	confirmed, _, err := repo.Record(ctx, &models.PaymentNotification{TransactionID: "tx-done", Amount: 29900})
	require.NoError(t, err)
	confirmed.Status = models.NotificationStatusConfirmed
	confirmed.Message = "payment confirmed"
	confirmed.AmountRatio = 0.1
	confirmed.MatchDetails = []byte(`{"outcome":"confirmed"}`)
	confirmed.MatchedBookingID = &bookingID
	require.NoError(t, repo.Save(ctx, confirmed))

	require.NoError(t, repo.MarkApplied(ctx, confirmed.ID, uuid.New(), "payment already applied"))

	got, err = repo.GetByID(ctx, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, "payment confirmed", got.Message)
	assert.InDelta(t, 0.1, got.AmountRatio, 0.0001)
	assert.JSONEq(t, `{"outcome":"confirmed"}`, string(got.MatchDetails))
	assert.Equal(t, bookingID, *got.MatchedBookingID)
}

func TestListAndStats(t *testing.T) {
	repo := NewPaymentNotificationRepository(newTestDB(t))
	ctx := context.Background()

	statuses := []string{
		models.NotificationStatusConfirmed,
		models.NotificationStatusConfirmed,
		models.NotificationStatusPending,
		models.NotificationStatusAmbiguous,
		models.NotificationStatusError,
	}
	for i, status := range statuses {
		n, _, err := repo.Record(ctx, &models.PaymentNotification{
			TransactionID:  fmt.Sprintf("tx-%d", i),
			RawDescription: fmt.Sprintf("TUVAN CLIENT%d", i),
			NormalizedName: fmt.Sprintf("CLIENT%d", i),
			Amount:         int64(1000 * (i + 1)),
			NotifiedAt:     time.Now(),
		})
		require.NoError(t, err)
		n.Status = status
		require.NoError(t, repo.Save(ctx, n))
	}

	page, cursor, more, err := repo.List(ctx, NotificationFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.True(t, more)
	require.NotEmpty(t, cursor)

	seen := map[uuid.UUID]bool{page[0].ID: true, page[1].ID: true}
	for more {
		page, cursor, more, err = repo.List(ctx, NotificationFilter{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		for _, n := range page {
			assert.False(t, seen[n.ID], "row returned twice")
			seen[n.ID] = true
		}
	}
	assert.Len(t, seen, len(statuses))

	confirmed, _, _, err := repo.List(ctx, NotificationFilter{Status: models.NotificationStatusConfirmed})
	require.NoError(t, err)
	assert.Len(t, confirmed, 2)

	found, _, _, err := repo.List(ctx, NotificationFilter{Search: "client3"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "tx-3", found[0].TransactionID)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(15000), stats.TotalAmount)
	assert.Equal(t, int64(2), stats.ConfirmedCount)
	assert.Equal(t, int64(3000), stats.ConfirmedSum)
	assert.Equal(t, int64(1), stats.PendingCount)
	assert.Equal(t, int64(1), stats.AmbiguousCount)
	assert.Equal(t, int64(1), stats.ErrorCount)
}

func TestBatchProgress(t *testing.T) {
	repo := NewPaymentNotificationRepository(newTestDB(t))
	ctx := context.Background()

	batch, err := repo.CreateBatch(ctx, "statement.csv")
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusProcessing, batch.Status)

	batch.TotalRows = 3
	batch.ProcessedCount = 2
	batch.ConfirmedCount = 2
	require.NoError(t, repo.UpdateBatchProgress(ctx, batch, nil))

	stored, err := repo.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ProcessedCount)
	assert.Equal(t, models.BatchStatusProcessing, stored.Status)

	now := time.Now()
	batch.ProcessedCount = 3
	batch.PendingCount = 1
	require.NoError(t, repo.UpdateBatchProgress(ctx, batch, &now))

	stored, err = repo.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusCompleted, stored.Status)
	assert.Equal(t, 3, stored.ProcessedCount)
	assert.Equal(t, 1, stored.PendingCount)
	assert.NotNil(t, stored.CompletedAt)
}

func TestAuditEntries(t *testing.T) {
	repo := NewPaymentNotificationRepository(newTestDB(t))
	ctx := context.Background()
	notificationID := uuid.New()

	require.NoError(t, repo.CreateAudit(ctx, &models.MatchAuditLog{
		NotificationID: notificationID,
		TransactionID:  "tx-1",
		Action:         models.AuditActionReject,
		PreviousStatus: models.NotificationStatusPending,
		PerformedBy:    "ops",
	}))

	entries, err := repo.ListAudit(ctx, notificationID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionReject, entries[0].Action)
}
