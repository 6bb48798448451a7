package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"booking-reconciliation-backend/internal/config"
	handler "booking-reconciliation-backend/internal/handlers"
	"booking-reconciliation-backend/internal/repository"
	service "booking-reconciliation-backend/internal/services/reconciliation"
	"booking-reconciliation-backend/internal/services/sideeffects"
)

// BuildService wires the reconciliation service. The gorm database always
// holds the notification log and side-effect ledger; bookings live there
// too unless the Supabase backend is configured.
func BuildService(cfg *config.Config, db *gorm.DB, log *zap.Logger) (*service.Service, error) {
	var bookings service.BookingStore
	switch cfg.BookingStore.Backend {
	case config.BackendSupabase:
		repo, err := repository.NewSupabaseBookingRepository(
			cfg.BookingStore.SupabaseURL,
			cfg.BookingStore.SupabaseServiceKey,
			cfg.BookingStore.Table,
		)
		if err != nil {
			return nil, err
		}
		bookings = repo
	default:
		bookings = repository.NewBookingRepository(db)
	}

	ledger, err := repository.NewSideEffectRepository(db, 1)
	if err != nil {
		return nil, fmt.Errorf("side effect ledger: %w", err)
	}

	handlers := []sideeffects.Handler{
		sideeffects.NewSubscriptionHandler(
			repository.NewSubscriptionRepository(db),
			cfg.SideEffects.BonusPlan,
			cfg.SideEffects.DefaultBonusDays,
		),
	}
	if cfg.SideEffects.CalendarURL != "" {
		handlers = append(handlers, sideeffects.NewCalendarHandler(
			sideeffects.NewHTTPCalendarClient(cfg.SideEffects.CalendarURL, cfg.SideEffects.CalendarAPIKey, nil),
		))
	} else {
		log.Warn("CALENDAR_URL not set, calendar events disabled")
	}

	dispatcher := sideeffects.NewDispatcher(ledger, cfg.SideEffects.DispatchTimeout, log, handlers...)

	return service.NewService(
		cfg.Matching,
		bookings,
		repository.NewPaymentNotificationRepository(db),
		dispatcher,
		log,
	), nil
}

func RegisterRoutes(r *gin.Engine, svc *service.Service, log *zap.Logger) {
	reconHandler := handler.NewReconciliationHandler(svc, log)
	webhookHandler := handler.NewWebhookHandler(svc, log)

	api := r.Group("/api")

	api.GET("/health", handler.Health)

	api.POST("/webhooks/payment", webhookHandler.Payment)

	bookings := api.Group("/bookings")
	{
		bookings.POST("", reconHandler.CreateBooking)
		bookings.POST("/upload", reconHandler.UploadBookings)
		bookings.GET("/:id", reconHandler.GetBooking)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", reconHandler.ListNotifications)
		notifications.GET("/stats", reconHandler.NotificationStats)
		notifications.POST("/upload", reconHandler.UploadStatement)
		notifications.GET("/batches/:batchId", reconHandler.GetBatchProgress)
		notifications.POST("/:id/match", reconHandler.ManualMatch)
		notifications.POST("/:id/reject", reconHandler.Reject)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
}
