package reconciliation

import (
	"context"
	"time"

	"booking-reconciliation-backend/internal/models"
	"booking-reconciliation-backend/internal/repository"
	"booking-reconciliation-backend/internal/services/sideeffects"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interface.go -destination=mocks/mock_interface.go -package=mock_reconciliation

// BookingStore is implemented by repository.BookingRepository and
// repository.SupabaseBookingRepository.
type BookingStore interface {
	FindPendingBookings(ctx context.Context, f repository.PendingFilter) ([]models.Booking, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Create(ctx context.Context, b *models.Booking) error
	ConfirmBookingIfUnset(ctx context.Context, id uuid.UUID, transactionID string, amount int64) (*models.Booking, error)
	RecordSideEffects(ctx context.Context, id uuid.UUID, calendarEventID, meetingLink *string) error
}

type NotificationStore interface {
	Record(ctx context.Context, n *models.PaymentNotification) (*models.PaymentNotification, bool, error)
	Save(ctx context.Context, n *models.PaymentNotification) error
	MarkApplied(ctx context.Context, id, bookingID uuid.UUID, message string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentNotification, error)
	List(ctx context.Context, f repository.NotificationFilter) ([]models.PaymentNotification, string, bool, error)
	Stats(ctx context.Context) (repository.NotificationStats, error)
	CreateAudit(ctx context.Context, entry *models.MatchAuditLog) error
	CreateBatch(ctx context.Context, filename string) (*models.ImportBatch, error)
	GetBatch(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error)
	UpdateBatchProgress(ctx context.Context, batch *models.ImportBatch, completedAt *time.Time) error
}

type Dispatcher interface {
	OnPaymentConfirmed(ctx context.Context, evt sideeffects.PaymentConfirmed) sideeffects.Result
	RetryFailed(ctx context.Context, lookup sideeffects.BookingLookup, limit int) ([]sideeffects.RetryOutcome, error)
}
