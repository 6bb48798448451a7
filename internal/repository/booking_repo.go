package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"booking-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendingFilter narrows the pending booking scan. Zero bounds are ignored.
type PendingFilter struct {
	MinAmount int64
	MaxAmount int64
}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) DB() *gorm.DB {
	return r.db
}

// FindPendingBookings returns unpaid bookings, newest first.
func (r *BookingRepository) FindPendingBookings(ctx context.Context, f PendingFilter) ([]models.Booking, error) {
	var bookings []models.Booking

	q := r.db.WithContext(ctx).
		Where("status = ? AND payment_status = ?", models.BookingStatusPending, models.PaymentStatusPending).
		Where("payment_transaction_id IS NULL")
	if f.MinAmount > 0 {
		q = q.Where("recorded_amount >= ?", f.MinAmount)
	}
	if f.MaxAmount > 0 {
		q = q.Where("recorded_amount <= ?", f.MaxAmount)
	}

	err := q.Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) FindByTransactionID(ctx context.Context, transactionID string) (*models.Booking, error) {
	var b models.Booking
	err := r.db.WithContext(ctx).First(&b, "payment_transaction_id = ?", transactionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = models.BookingStatusPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = models.PaymentStatusPending
	}
	b.ClientName = strings.TrimSpace(b.ClientName)
	return r.db.WithContext(ctx).Create(b).Error
}

// ConfirmBookingIfUnset is the only writer of payment_transaction_id. The
// guard lives in the UPDATE itself so two concurrent deliveries cannot both
// win. When nothing was updated the row is re-read to tell a replay of the
// same transaction (ErrAlreadyConfirmed, booking returned) from a booking
// that vanished, was cancelled (ErrBookingNotFound) or was paid by another
// transaction (ErrBookingAlreadyPaid).
func (r *BookingRepository) ConfirmBookingIfUnset(ctx context.Context, id uuid.UUID, transactionID string, amount int64) (*models.Booking, error) {
	now := time.Now()

	res := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND payment_transaction_id IS NULL AND status <> ?", id, models.BookingStatusCancelled).
		Updates(map[string]interface{}{
			"status":                 models.BookingStatusConfirmed,
			"payment_status":         models.PaymentStatusConfirmed,
			"payment_transaction_id": transactionID,
			"payment_confirmed_at":   now,
			"paid_amount":            amount,
			"updated_at":             now,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 1 {
		return b, nil
	}

	switch {
	case b.PaymentTransactionID == nil:
		return nil, ErrBookingNotFound
	case *b.PaymentTransactionID == transactionID:
		return b, ErrAlreadyConfirmed
	default:
		return b, ErrBookingAlreadyPaid
	}
}

// RecordSideEffects stores side-effect artifacts without overwriting ones a
// previous delivery already recorded.
func (r *BookingRepository) RecordSideEffects(ctx context.Context, id uuid.UUID, calendarEventID, meetingLink *string) error {
	if calendarEventID != nil {
		if err := r.db.WithContext(ctx).Model(&models.Booking{}).
			Where("id = ? AND calendar_event_id IS NULL", id).
			Update("calendar_event_id", *calendarEventID).Error; err != nil {
			return err
		}
	}
	if meetingLink != nil {
		if err := r.db.WithContext(ctx).Model(&models.Booking{}).
			Where("id = ? AND meeting_link IS NULL", id).
			Update("meeting_link", *meetingLink).Error; err != nil {
			return err
		}
	}
	return nil
}
