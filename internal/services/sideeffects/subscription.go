package sideeffects

import (
	"context"
	"strings"
	"time"

	"booking-reconciliation-backend/internal/models"
	"booking-reconciliation-backend/internal/repository"
	"booking-reconciliation-backend/internal/services/matching"
)

const HandlerSubscription = "subscription_bonus"

type SubscriptionGranter interface {
	GrantBonus(ctx context.Context, g repository.BonusGrant) (*models.Subscription, error)
}

// SubscriptionHandler grants the bonus plan days bundled with a paid
// consultation.
type SubscriptionHandler struct {
	store       SubscriptionGranter
	plan        string
	defaultDays int
	now         func() time.Time
}

func NewSubscriptionHandler(store SubscriptionGranter, plan string, defaultDays int) *SubscriptionHandler {
	if plan == "" {
		plan = "premium"
	}
	return &SubscriptionHandler{store: store, plan: plan, defaultDays: defaultDays, now: time.Now}
}

func (h *SubscriptionHandler) Name() string {
	return HandlerSubscription
}

func (h *SubscriptionHandler) Handle(ctx context.Context, evt PaymentConfirmed) (Artifacts, error) {
	b := evt.Booking
	days := b.BonusDays
	if days <= 0 {
		days = h.defaultDays
	}
	if days <= 0 {
		return Artifacts{}, nil
	}

	sub, err := h.store.GrantBonus(ctx, repository.BonusGrant{
		ClientKey:   clientKey(b),
		ClientEmail: strings.ToLower(strings.TrimSpace(b.ClientEmail)),
		ClientName:  b.ClientName,
		Plan:        h.plan,
		Days:        days,
		Now:         h.now(),
	})
	if err != nil {
		return Artifacts{}, err
	}

	id := sub.ID.String()
	return Artifacts{SubscriptionID: &id}, nil
}

// clientKey identifies a client by email, then phone, then name.
func clientKey(b models.Booking) string {
	if email := strings.ToLower(strings.TrimSpace(b.ClientEmail)); email != "" {
		return "email:" + email
	}
	if b.ClientPhone != "" {
		return "phone:" + b.ClientPhone
	}
	return "name:" + matching.NormalizeName(b.ClientName)
}
