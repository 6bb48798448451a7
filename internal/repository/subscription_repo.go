package repository

import (
	"context"
	"errors"
	"time"

	"booking-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// BonusGrant describes days of plan access granted for a confirmed payment.
type BonusGrant struct {
	ClientKey   string
	ClientEmail string
	ClientName  string
	Plan        string
	Days        int
	Now         time.Time
}

// ErrGrantContended is returned when a concurrent grant keeps winning the
// insert of a client's subscription.
var ErrGrantContended = errors.New("subscription grant contended")

// GrantBonus extends the client's active subscription for the plan, or starts
// a new one when none is active. Extension starts from the later of now and
// the current expiry.
func (r *SubscriptionRepository) GrantBonus(ctx context.Context, g BonusGrant) (*models.Subscription, error) {
	for attempt := 0; attempt < 3; attempt++ {
		sub, err := r.grantOnce(ctx, g)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			return sub, nil
		}
	}
	return nil, ErrGrantContended
}

// grantOnce returns a nil subscription when another grant inserted the
// client's active row first; the caller retries and extends that row.
func (r *SubscriptionRepository) grantOnce(ctx context.Context, g BonusGrant) (*models.Subscription, error) {
	slot := activeSlot(g.ClientKey, g.Plan)
	var sub models.Subscription
	inserted := true

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("active_slot = ?", slot).
			First(&sub).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			sub = models.Subscription{
				ID:          uuid.New(),
				ClientKey:   g.ClientKey,
				ClientEmail: g.ClientEmail,
				ClientName:  g.ClientName,
				Plan:        g.Plan,
				Status:      models.SubscriptionActive,
				StartsAt:    g.Now,
				ExpiresAt:   g.Now.AddDate(0, 0, g.Days),
				ActiveSlot:  &slot,
			}
			res := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "active_slot"}}, DoNothing: true}).
				Create(&sub)
			if res.Error != nil {
				return res.Error
			}
			inserted = res.RowsAffected == 1
			return nil
		case err != nil:
			return err
		}

		base := sub.ExpiresAt
		if base.Before(g.Now) {
			base = g.Now
		}
		sub.ExpiresAt = base.AddDate(0, 0, g.Days)
		return tx.Save(&sub).Error
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, nil
	}
	return &sub, nil
}

func activeSlot(clientKey, plan string) string {
	return clientKey + "|" + plan
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}
