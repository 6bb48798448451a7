package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	NotificationStatusReceived  = "received"
	NotificationStatusConfirmed = "confirmed"
	NotificationStatusPending   = "pending"
	NotificationStatusAmbiguous = "ambiguous"
	NotificationStatusError     = "error"
	NotificationStatusRejected  = "rejected"
)

// PaymentNotification is one bank transfer reported by the payment gateway
// (webhook) or replayed from a statement upload.
type PaymentNotification struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionID    string         `gorm:"uniqueIndex" json:"transaction_id"`
	ImportBatchID    *uuid.UUID     `gorm:"type:uuid;index" json:"import_batch_id"`
	RawDescription   string         `json:"raw_description"`
	NormalizedName   string         `gorm:"index" json:"normalized_name"`
	DescriptionDate  *time.Time     `gorm:"type:date" json:"description_date"`
	Amount           int64          `gorm:"index" json:"amount"`
	NotifiedAt       time.Time      `json:"notified_at"`
	Status           string         `gorm:"index" json:"status"`
	MatchedBookingID *uuid.UUID     `gorm:"type:uuid" json:"matched_booking_id"`
	AmountRatio      float64        `json:"amount_ratio"`
	Message          string         `json:"message"`
	MatchDetails     datatypes.JSON `json:"match_details"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
