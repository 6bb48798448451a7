package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"

	PaymentStatusPending   = "pending"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusFailed    = "failed"
)

// Booking is a consultation waiting for (or holding) a bank transfer payment.
// PaymentTransactionID is written once by the reconciliation pipeline and is
// the idempotency key for every side effect that follows.
type Booking struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClientName           string     `gorm:"index" json:"client_name"`
	ClientEmail          string     `json:"client_email"`
	ClientPhone          string     `json:"client_phone"`
	ServiceType          string     `json:"service_type"`
	RecordedAmount       int64      `gorm:"index" json:"recorded_amount"`
	PaidAmount           *int64     `json:"paid_amount"`
	Status               string     `gorm:"index" json:"status"`
	PaymentStatus        string     `gorm:"index" json:"payment_status"`
	PaymentTransactionID *string    `gorm:"uniqueIndex" json:"payment_transaction_id"`
	PaymentConfirmedAt   *time.Time `json:"payment_confirmed_at"`
	BookingDate          time.Time  `gorm:"type:date" json:"booking_date"`
	BonusDays            int        `json:"bonus_days"`
	CalendarEventID      *string    `json:"calendar_event_id"`
	MeetingLink          *string    `json:"meeting_link"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (b *Booking) IsPaid() bool {
	return b.PaymentTransactionID != nil || b.PaymentStatus == PaymentStatusConfirmed
}
