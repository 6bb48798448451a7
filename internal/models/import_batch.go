package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	BatchStatusProcessing = "processing"
	BatchStatusCompleted  = "completed"
)

// ImportBatch tracks a bank statement replayed through the pipeline after
// webhook deliveries were missed.
type ImportBatch struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Filename       string     `json:"filename"`
	TotalRows      int        `json:"total_rows"`
	ProcessedCount int        `json:"processed_count"`
	ConfirmedCount int        `json:"confirmed_count"`
	PendingCount   int        `json:"pending_count"`
	AmbiguousCount int        `json:"ambiguous_count"`
	ErrorCount     int        `json:"error_count"`
	Status         string     `json:"status"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`
}
