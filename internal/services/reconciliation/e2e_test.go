package reconciliation_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"booking-reconciliation-backend/internal/config"
	"booking-reconciliation-backend/internal/models"
	"booking-reconciliation-backend/internal/repository"
	"booking-reconciliation-backend/internal/services/matching"
	service "booking-reconciliation-backend/internal/services/reconciliation"
	"booking-reconciliation-backend/internal/services/sideeffects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type countingCalendar struct {
	mu    sync.Mutex
	calls int
}

func (c *countingCalendar) CreateEvent(ctx context.Context, key string, req sideeffects.CalendarEventRequest) (*sideeffects.CalendarEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return &sideeffects.CalendarEvent{
		EventID:     fmt.Sprintf("evt-%s", key),
		MeetingLink: "https://meet.example.com/" + req.BookingID,
	}, nil
}

func (c *countingCalendar) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type flowEnv struct {
	svc           *service.Service
	bookings      *repository.BookingRepository
	notifications *repository.PaymentNotificationRepository
	calendar      *countingCalendar
}

func newFlowEnv(t *testing.T) *flowEnv {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "flow.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	ledger, err := repository.NewSideEffectRepository(db, 1)
	require.NoError(t, err)

	env := &flowEnv{
		bookings:      repository.NewBookingRepository(db),
		notifications: repository.NewPaymentNotificationRepository(db),
		calendar:      &countingCalendar{},
	}
	dispatcher := sideeffects.NewDispatcher(ledger, 5*time.Second, zap.NewNop(),
		sideeffects.NewCalendarHandler(env.calendar),
		sideeffects.NewSubscriptionHandler(repository.NewSubscriptionRepository(db), "premium", 30),
	)
	env.svc = service.NewService(config.DefaultMatching(), env.bookings, env.notifications, dispatcher, zap.NewNop())
	return env
}

func (e *flowEnv) createBooking(t *testing.T, name string, amount int64) *models.Booking {
	t.Helper()
	b := &models.Booking{
		ClientName:     name,
		ClientEmail:    "client@example.com",
		ServiceType:    "tarot",
		RecordedAmount: amount,
		BookingDate:    time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, e.svc.CreateBooking(context.Background(), b))
	return b
}

func TestFullFlow(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()
	booking := env.createBooking(t, "Test Full Flow", 299000)

	n := matching.Notification{
		TransactionID:  "test-123",
		RawDescription: "TUVAN TESTFULLFLOW 16102026",
		Amount:         299000,
		Timestamp:      time.Now(),
	}

	res, err := env.svc.HandleNotification(ctx, n, nil)
	require.NoError(t, err)
	assert.Equal(t, service.StatusConfirmed, res.Status)
	require.NotNil(t, res.BookingID)
	assert.Equal(t, booking.ID, *res.BookingID)
	require.NotNil(t, res.CalendarEventID)
	assert.NotNil(t, res.SubscriptionID)

	stored, err := env.bookings.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, stored.Status)
	assert.Equal(t, models.PaymentStatusConfirmed, stored.PaymentStatus)
	require.NotNil(t, stored.PaymentTransactionID)
	assert.Equal(t, "test-123", *stored.PaymentTransactionID)
	require.NotNil(t, stored.CalendarEventID)
	assert.Equal(t, *res.CalendarEventID, *stored.CalendarEventID)
	assert.NotNil(t, stored.PaymentConfirmedAt)

	replay, err := env.svc.HandleNotification(ctx, n, nil)
	require.NoError(t, err)
	assert.Equal(t, service.StatusConfirmed, replay.Status)
	assert.True(t, replay.Replay)
	require.NotNil(t, replay.CalendarEventID)
	assert.Equal(t, *res.CalendarEventID, *replay.CalendarEventID)
	assert.Equal(t, 1, env.calendar.count())

	stats, err := env.svc.NotificationStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.ConfirmedCount)
}

func TestFullFlowConcurrentDeliveries(t *testing.T) {
	env := newFlowEnv(t)
	booking := env.createBooking(t, "Test Full Flow", 299000)

	n := matching.Notification{TransactionID: "test-concurrent", RawDescription: "TUVAN TESTFULLFLOW", Amount: 299000}

	var wg sync.WaitGroup
	results := make([]*service.Result, 4)
	errs := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = env.svc.HandleNotification(context.Background(), n, nil)
		}()
	}
	wg.Wait()

	fresh := 0
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, service.StatusConfirmed, results[i].Status)
		assert.Equal(t, booking.ID, *results[i].BookingID)
		if !results[i].Replay {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)
	assert.Equal(t, 1, env.calendar.count())

	logged, err := env.notifications.GetByTransactionID(context.Background(), "test-concurrent")
	require.NoError(t, err)
	assert.Equal(t, models.NotificationStatusConfirmed, logged.Status)
	assert.InDelta(t, 1.0, logged.AmountRatio, 0.0001)
	assert.Contains(t, string(logged.MatchDetails), `"outcome":"confirmed"`)
}

// staleNotifications returns the logged row as it looked before the first
// delivery stored its outcome.
type staleNotifications struct {
	*repository.PaymentNotificationRepository
}

func (s staleNotifications) Record(ctx context.Context, n *models.PaymentNotification) (*models.PaymentNotification, bool, error) {
	rec, created, err := s.PaymentNotificationRepository.Record(ctx, n)
	if err != nil {
		return nil, false, err
	}
	stale := *rec
	stale.Status = models.NotificationStatusReceived
	stale.AmountRatio = 0
	stale.MatchDetails = nil
	stale.MatchedBookingID = nil
	return &stale, created, nil
}

func TestLateDeliveryKeepsMatchDetails(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()
	booking := env.createBooking(t, "Nguyen Van A", 299000)

	n := matching.Notification{TransactionID: "tx-late-copy", RawDescription: "TUVAN NGUYENVANA", Amount: 29900}
	res, err := env.svc.HandleNotification(ctx, n, nil)
	require.NoError(t, err)
	require.False(t, res.Replay)

	late := service.NewService(config.DefaultMatching(), env.bookings,
		staleNotifications{env.notifications}, nil, zap.NewNop())
	replay, err := late.HandleNotification(ctx, n, nil)
	require.NoError(t, err)
	assert.True(t, replay.Replay)
	assert.Equal(t, booking.ID, *replay.BookingID)

	logged, err := env.notifications.GetByTransactionID(ctx, "tx-late-copy")
	require.NoError(t, err)
	assert.Equal(t, models.NotificationStatusConfirmed, logged.Status)
	assert.Equal(t, "payment confirmed", logged.Message)
	assert.InDelta(t, 0.1, logged.AmountRatio, 0.0001)
	assert.Contains(t, string(logged.MatchDetails), `"outcome":"confirmed"`)
	require.NotNil(t, logged.MatchedBookingID)
	assert.Equal(t, booking.ID, *logged.MatchedBookingID)
}

func TestDiscountedPaymentConfirms(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()
	booking := env.createBooking(t, "Nguyen Van A", 299000)

	res, err := env.svc.HandleNotification(ctx, matching.Notification{
		TransactionID:  "tx-discount",
		RawDescription: "TUVAN NGUYEN VAN A",
		Amount:         29900,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, service.StatusConfirmed, res.Status)

	stored, err := env.bookings.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PaidAmount)
	assert.Equal(t, int64(29900), *stored.PaidAmount)
	assert.Equal(t, int64(299000), stored.RecordedAmount)
}

func TestUnderpaymentStaysPendingUntilManualMatch(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()
	booking := env.createBooking(t, "Test Full Flow", 299000)

	res, err := env.svc.HandleNotification(ctx, matching.Notification{
		TransactionID:  "tx-small",
		RawDescription: "TUVAN TESTFULLFLOW",
		Amount:         1000,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, service.StatusPending, res.Status)

	stored, err := env.bookings.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, stored.Status)
	assert.Nil(t, stored.PaymentTransactionID)

	n, err := env.notifications.GetByTransactionID(ctx, "tx-small")
	require.NoError(t, err)
	assert.Equal(t, models.NotificationStatusPending, n.Status)

	matched, err := env.svc.ManualMatch(ctx, n.ID, booking.ID, "ops", "deposit agreed with client")
	require.NoError(t, err)
	assert.Equal(t, service.StatusConfirmed, matched.Status)

	audit, err := env.notifications.ListAudit(ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, models.AuditActionManualMatch, audit[0].Action)

	_, err = env.svc.ManualMatch(ctx, n.ID, booking.ID, "ops", "")
	assert.ErrorIs(t, err, service.ErrNotificationSettled)
}

func TestReplayStatement(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()
	env.createBooking(t, "Test Full Flow", 299000)
	env.createBooking(t, "Tran Thi B", 500000)
	env.createBooking(t, "Tran Thi B", 500000)

	date := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	rows := []service.StatementRow{
		{TransactionID: "FT1", Date: date, Description: "TUVAN TESTFULLFLOW", Amount: 299000},
		{TransactionID: "FT2", Date: date, Description: "TUVAN TRANTHIB", Amount: 500000},
		{TransactionID: "FT3", Date: date, Description: "TUVAN LEVANC", Amount: 100000},
		{TransactionID: "FT1", Date: date, Description: "TUVAN TESTFULLFLOW", Amount: 299000},
	}

	batch, err := env.notifications.CreateBatch(ctx, "statement.csv")
	require.NoError(t, err)
	require.NoError(t, env.svc.ReplayStatement(ctx, batch, rows))

	stored, err := env.svc.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusCompleted, stored.Status)
	assert.Equal(t, 4, stored.ProcessedCount)
	assert.Equal(t, 2, stored.ConfirmedCount)
	assert.Equal(t, 1, stored.AmbiguousCount)
	assert.Equal(t, 1, stored.PendingCount)
	assert.NotNil(t, stored.CompletedAt)

	items, _, _, err := env.svc.ListNotifications(ctx, repository.NotificationFilter{BatchID: &batch.ID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, items, 3)
}
