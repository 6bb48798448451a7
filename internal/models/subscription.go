package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

type Subscription struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientKey   string    `gorm:"index" json:"client_key"`
	ClientEmail string    `gorm:"index" json:"client_email"`
	ClientName  string    `json:"client_name"`
	Plan        string    `json:"plan"`
	Status      string    `gorm:"index" json:"status"`
	StartsAt    time.Time `json:"starts_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	// ActiveSlot is "client_key|plan" while the subscription is active and
	// nil once it expires, so a client holds one active subscription per plan.
	ActiveSlot *string   `gorm:"uniqueIndex" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// All lists every model migrated by db:migrate and serve.
func All() []interface{} {
	return []interface{}{
		&Booking{},
		&PaymentNotification{},
		&MatchAuditLog{},
		&ImportBatch{},
		&SideEffectRun{},
		&Subscription{},
	}
}
