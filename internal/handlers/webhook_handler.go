package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"booking-reconciliation-backend/internal/services/matching"
	service "booking-reconciliation-backend/internal/services/reconciliation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05", time.DateOnly}

type paymentWebhook struct {
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	TransactionID string          `json:"transactionId"`
	Timestamp     string          `json:"timestamp"`
}

type WebhookHandler struct {
	service *service.Service
	log     *zap.Logger
}

func NewWebhookHandler(s *service.Service, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{service: s, log: log}
}

// Payment receives a bank transfer notification from the payment gateway.
// Every recognized notification gets a 200, matched or not, so the gateway
// only retries malformed-looking deliveries it can fix (400) and store
// outages (503).
func (h *WebhookHandler) Payment(c *gin.Context) {
	var payload paymentWebhook
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, service.Result{Status: service.StatusError, Message: "invalid payload"})
		return
	}

	amount, err := matching.WholeAmount(payload.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.Result{Status: service.StatusError, Message: err.Error()})
		return
	}

	ts, err := parseTimestamp(payload.Timestamp)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.Result{Status: service.StatusError, Message: "invalid timestamp"})
		return
	}

	res, err := h.service.HandleNotification(c.Request.Context(), matching.Notification{
		TransactionID:  strings.TrimSpace(payload.TransactionID),
		RawDescription: payload.Description,
		Amount:         amount,
		Timestamp:      ts,
	}, nil)
	switch {
	case errors.Is(err, matching.ErrInvalidNotification):
		c.JSON(http.StatusBadRequest, service.Result{Status: service.StatusError, Message: err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusServiceUnavailable, service.Result{Status: service.StatusError, Message: "temporarily unable to process payment"})
		return
	}

	c.JSON(http.StatusOK, res)
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
