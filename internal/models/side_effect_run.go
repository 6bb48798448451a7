package models

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SideEffectRunning   = "running"
	SideEffectSucceeded = "succeeded"
	SideEffectFailed    = "failed"
)

// SideEffectRun is the per-handler ledger row for a confirmed payment.
// (transaction_id, handler) is unique, so a handler runs at most once per
// transaction unless a failed run is reclaimed.
type SideEffectRun struct {
	ID            snowflake.ID   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	TransactionID string         `gorm:"not null;uniqueIndex:ux_side_effect_tx_handler,priority:1" json:"transaction_id"`
	Handler       string         `gorm:"not null;uniqueIndex:ux_side_effect_tx_handler,priority:2" json:"handler"`
	BookingID     uuid.UUID      `gorm:"type:uuid;index" json:"booking_id"`
	Amount        int64          `json:"amount"`
	Status        string         `gorm:"index" json:"status"`
	Attempts      int            `json:"attempts"`
	Artifacts     datatypes.JSON `json:"artifacts"`
	LastError     string         `json:"last_error"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
