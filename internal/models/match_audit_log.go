package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditActionManualMatch = "manual_match"
	AuditActionReject      = "reject"
)

// MatchAuditLog records operator decisions on notifications the matcher
// could not resolve on its own.
type MatchAuditLog struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	NotificationID uuid.UUID  `gorm:"type:uuid;index" json:"notification_id"`
	TransactionID  string     `gorm:"index" json:"transaction_id"`
	Action         string     `json:"action"`
	PreviousStatus string     `json:"previous_status"`
	BookingID      *uuid.UUID `gorm:"type:uuid" json:"booking_id"`
	PerformedBy    string     `json:"performed_by"`
	Reason         string     `json:"reason"`
	CreatedAt      time.Time  `json:"created_at"`
}
