package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"booking-reconciliation-backend/internal/models"
	"booking-reconciliation-backend/internal/repository"
	service "booking-reconciliation-backend/internal/services/reconciliation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReconciliationHandler struct {
	service *service.Service
	log     *zap.Logger
}

func NewReconciliationHandler(s *service.Service, log *zap.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{service: s, log: log}
}

func (h *ReconciliationHandler) CreateBooking(c *gin.Context) {
	var payload struct {
		ClientName     string `json:"client_name"`
		ClientEmail    string `json:"client_email"`
		ClientPhone    string `json:"client_phone"`
		ServiceType    string `json:"service_type"`
		RecordedAmount int64  `json:"recorded_amount"`
		BookingDate    string `json:"booking_date"` // dd-mm-yyyy or yyyy-mm-dd
		BonusDays      int    `json:"bonus_days"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	booking := &models.Booking{
		ClientName:     payload.ClientName,
		ClientEmail:    payload.ClientEmail,
		ClientPhone:    payload.ClientPhone,
		ServiceType:    payload.ServiceType,
		RecordedAmount: payload.RecordedAmount,
		BonusDays:      payload.BonusDays,
	}
	if payload.BookingDate != "" {
		date, err := service.ParseDate(payload.BookingDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking date, expected dd-mm-yyyy or yyyy-mm-dd"})
			return
		}
		booking.BookingDate = date
	}

	if err := h.service.CreateBooking(c.Request.Context(), booking); err != nil {
		if errors.Is(err, service.ErrInvalidBooking) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("create booking failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create booking"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "booking created", "booking": booking})
}

func (h *ReconciliationHandler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID"})
		return
	}

	booking, err := h.service.GetBooking(c.Request.Context(), id)
	if errors.Is(err, repository.ErrBookingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

func (h *ReconciliationHandler) UploadBookings(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	inserted, skipped, err := h.service.ImportBookings(c.Request.Context(), file)
	if err != nil {
		h.log.Error("booking import failed", zap.String("file", header.Filename), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file":          header.Filename,
		"bookingsAdded": inserted,
		"skipped":       skipped,
	})
}

func (h *ReconciliationHandler) ListNotifications(c *gin.Context) {
	filter := repository.NotificationFilter{
		Status: c.Query("status"),
		Cursor: c.Query("cursor"),
		Search: c.Query("search"),
		Limit:  50,
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}
	if raw := c.Query("batch_id"); raw != "" {
		batchID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
			return
		}
		filter.BatchID = &batchID
	}

	items, nextCursor, hasMore, err := h.service.ListNotifications(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
	})
}

func (h *ReconciliationHandler) NotificationStats(c *gin.Context) {
	stats, err := h.service.NotificationStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ReconciliationHandler) ManualMatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification ID"})
		return
	}

	var payload struct {
		BookingID   string `json:"booking_id"`
		PerformedBy string `json:"performed_by"`
		Reason      string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	bookingID, err := uuid.Parse(payload.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID"})
		return
	}

	res, err := h.service.ManualMatch(c.Request.Context(), id, bookingID, operator(payload.PerformedBy), payload.Reason)
	if err != nil {
		h.writeOperatorError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification manually matched", "result": res})
}

func (h *ReconciliationHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification ID"})
		return
	}

	var payload struct {
		PerformedBy string `json:"performed_by"`
		Reason      string `json:"reason"`
	}
	// body is optional
	_ = c.ShouldBindJSON(&payload)

	n, err := h.service.Reject(c.Request.Context(), id, operator(payload.PerformedBy), payload.Reason)
	if err != nil {
		h.writeOperatorError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification rejected", "notification": n})
}

// UploadStatement replays a bank statement export through the matcher in
// the background and returns the batch to poll.
func (h *ReconciliationHandler) UploadStatement(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	rows, skipped, err := service.ParseStatement(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batch, err := h.service.StartReplay(c.Request.Context(), header.Filename, rows)
	if err != nil {
		h.log.Error("create import batch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start replay"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"batch_id": batch.ID.String(),
		"status":   batch.Status,
		"total":    batch.TotalRows,
		"skipped":  skipped,
	})
}

func (h *ReconciliationHandler) GetBatchProgress(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	batch, err := h.service.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"processed_count": batch.ProcessedCount,
		"total":           batch.TotalRows,
		"status":          batch.Status,
		"confirmed":       batch.ConfirmedCount,
		"pending":         batch.PendingCount,
		"ambiguous":       batch.AmbiguousCount,
		"errors":          batch.ErrorCount,
		"completed_at":    batch.CompletedAt,
	})
}

func (h *ReconciliationHandler) writeOperatorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotificationNotFound), errors.Is(err, repository.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotificationSettled), errors.Is(err, repository.ErrBookingAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error("operator action failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func operator(name string) string {
	if name == "" {
		return "admin"
	}
	return name
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}
