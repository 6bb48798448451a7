package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"booking-reconciliation-backend/internal/config"
	"booking-reconciliation-backend/internal/models"
	"booking-reconciliation-backend/internal/repository"
	"booking-reconciliation-backend/internal/services/matching"
	"booking-reconciliation-backend/internal/services/sideeffects"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusAmbiguous = "ambiguous"
	StatusError     = "error"
)

var (
	ErrStoreUnavailable    = errors.New("booking store unavailable")
	ErrNotificationSettled = errors.New("notification already settled")
	ErrInvalidBooking      = errors.New("invalid booking")
)

// Result is returned to the payment gateway for every recognized
// notification, matched or not.
type Result struct {
	Status          string     `json:"status"`
	BookingID       *uuid.UUID `json:"bookingId,omitempty"`
	Message         string     `json:"message"`
	CalendarEventID *string    `json:"calendarEventId,omitempty"`
	MeetingLink     *string    `json:"meetingLink,omitempty"`
	SubscriptionID  *string    `json:"subscriptionId,omitempty"`
	Replay          bool       `json:"replay,omitempty"`
}

type Service struct {
	parser        *matching.Parser
	matcher       *matching.Matcher
	applier       *Applier
	bookings      BookingStore
	notifications NotificationStore
	dispatcher    Dispatcher
	log           *zap.Logger
}

func NewService(
	cfg config.MatchingConfig,
	bookings BookingStore,
	notifications NotificationStore,
	dispatcher Dispatcher,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		parser:        matching.NewParser(cfg.PrefixKeywords),
		matcher:       matching.NewMatcher(cfg),
		applier:       NewApplier(bookings, dispatcher, log),
		bookings:      bookings,
		notifications: notifications,
		dispatcher:    dispatcher,
		log:           log,
	}
}

// HandleNotification runs Parse, Match and Apply for one bank transfer.
// Unmatched outcomes come back as a Result with a nil error; the error is
// only set for malformed input (matching.ErrInvalidNotification) and store
// failures (ErrStoreUnavailable), which the gateway should retry.
func (s *Service) HandleNotification(ctx context.Context, n matching.Notification, batchID *uuid.UUID) (*Result, error) {
	parsed, err := s.parser.Parse(n)
	if err != nil {
		s.log.Warn("invalid payment notification",
			zap.String("transaction_id", n.TransactionID),
			zap.String("description", n.RawDescription),
			zap.Int64("amount", n.Amount),
			zap.Error(err),
		)
		return nil, err
	}

	log := s.log.With(
		zap.String("transaction_id", parsed.TransactionID),
		zap.String("normalized_name", parsed.NormalizedName),
		zap.Int64("amount", parsed.Amount),
	)

	rec, _, err := s.notifications.Record(ctx, &models.PaymentNotification{
		TransactionID:   parsed.TransactionID,
		ImportBatchID:   batchID,
		RawDescription:  parsed.RawDescription,
		NormalizedName:  parsed.NormalizedName,
		DescriptionDate: parsed.DescriptionDate,
		Amount:          parsed.Amount,
		NotifiedAt:      parsed.Timestamp,
		Status:          models.NotificationStatusReceived,
	})
	if err != nil {
		log.Error("notification log write failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// A transaction that already paid a booking is a redelivery.
	paid, err := s.bookings.FindByTransactionID(ctx, parsed.TransactionID)
	switch {
	case err == nil:
		log.Info("payment already applied", zap.String("booking_id", paid.ID.String()))
		s.markApplied(ctx, rec, paid)
		return confirmedResult(replayConfirmation(paid)), nil
	case !errors.Is(err, repository.ErrBookingNotFound):
		log.Error("transaction lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if rec.Status == models.NotificationStatusRejected {
		return &Result{Status: StatusError, Message: "notification was rejected by an operator"}, nil
	}

	minAmount, maxAmount := s.matcher.AmountBounds(parsed.Amount)
	pending, err := s.bookings.FindPendingBookings(ctx, repository.PendingFilter{MinAmount: minAmount, MaxAmount: maxAmount})
	if err != nil {
		log.Error("pending booking query failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	match, err := s.matcher.Match(parsed, pending)
	details := matchDetails{
		NormalizedName: parsed.NormalizedName,
		Considered:     match.Considered,
		CandidateIDs:   match.CandidateIDs,
		Signals:        match.Signals,
	}
	log = log.With(
		zap.Float64("amount_ratio", match.Signals.AmountRatio),
		zap.Int("considered", match.Considered),
		zap.Stringers("candidate_ids", match.CandidateIDs),
	)
	rec.AmountRatio = match.Signals.AmountRatio

	if errors.Is(err, matching.ErrNoMatch) || errors.Is(err, matching.ErrAmbiguousMatch) {
		// a concurrent delivery may have confirmed the booking after the
		// replay check above
		if res := s.appliedConcurrently(ctx, rec, parsed.TransactionID); res != nil {
			return res, nil
		}
	}

	switch {
	case errors.Is(err, matching.ErrNoMatch):
		log.Warn("no booking matched payment")
		details.Outcome = StatusPending
		s.finish(ctx, rec, models.NotificationStatusPending, "no matching pending booking", &details)
		return &Result{Status: StatusPending, Message: "no matching pending booking; held for manual review"}, nil
	case errors.Is(err, matching.ErrAmbiguousMatch):
		log.Warn("payment matches several bookings")
		details.Outcome = StatusAmbiguous
		s.finish(ctx, rec, models.NotificationStatusAmbiguous, "several pending bookings match", &details)
		return &Result{
			Status:  StatusAmbiguous,
			Message: fmt.Sprintf("%d pending bookings match; manual reconciliation required", len(match.CandidateIDs)),
		}, nil
	case err != nil:
		return nil, err
	}

	conf, err := s.applier.Apply(ctx, *match.BookingID, parsed.TransactionID, parsed.Amount)
	if errors.Is(err, repository.ErrBookingNotFound) || errors.Is(err, repository.ErrBookingAlreadyPaid) {
		log.Warn("matched booking can no longer be confirmed",
			zap.String("booking_id", match.BookingID.String()), zap.Error(err))
		details.Outcome = StatusError
		s.finish(ctx, rec, models.NotificationStatusError, err.Error(), &details)
		return &Result{Status: StatusError, BookingID: match.BookingID, Message: err.Error()}, nil
	}
	if err != nil {
		if res := s.appliedConcurrently(ctx, rec, parsed.TransactionID); res != nil {
			return res, nil
		}
		log.Error("booking confirmation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	log.Info("payment confirmed",
		zap.String("booking_id", conf.Booking.ID.String()),
		zap.Bool("discounted", match.Signals.Discounted),
		zap.Bool("replay", conf.Replay),
	)
	details.Outcome = StatusConfirmed
	details.SideEffectFailures = conf.SideEffects.Failures
	rec.MatchedBookingID = &conf.Booking.ID
	s.finish(ctx, rec, models.NotificationStatusConfirmed, "payment confirmed", &details)
	return confirmedResult(conf), nil
}

// appliedConcurrently returns a replay result when another delivery of the
// same transaction has confirmed a booking in the meantime.
func (s *Service) appliedConcurrently(ctx context.Context, rec *models.PaymentNotification, transactionID string) *Result {
	paid, err := s.bookings.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil
	}
	s.log.Info("payment applied by a concurrent delivery",
		zap.String("transaction_id", transactionID), zap.String("booking_id", paid.ID.String()))
	s.markApplied(ctx, rec, paid)
	return confirmedResult(replayConfirmation(paid))
}

// markApplied confirms rec without rewriting the row, so the match details
// stored by the delivery that applied the payment survive.
func (s *Service) markApplied(ctx context.Context, rec *models.PaymentNotification, paid *models.Booking) {
	if rec.Status == models.NotificationStatusConfirmed {
		return
	}
	if err := s.notifications.MarkApplied(ctx, rec.ID, paid.ID, "payment already applied"); err != nil {
		s.log.Error("notification outcome not stored",
			zap.String("transaction_id", rec.TransactionID), zap.Error(err))
	}
}

type matchDetails struct {
	Outcome            string            `json:"outcome"`
	NormalizedName     string            `json:"normalized_name"`
	Considered         int               `json:"considered"`
	CandidateIDs       []uuid.UUID       `json:"candidate_ids,omitempty"`
	Signals            matching.Signals  `json:"confidence_signals"`
	SideEffectFailures map[string]string `json:"side_effect_failures,omitempty"`
}

// finish stores the outcome on the notification log. The log is an audit
// trail, so a failed write is reported but does not change the outcome.
func (s *Service) finish(ctx context.Context, rec *models.PaymentNotification, status, message string, details *matchDetails) {
	rec.Status = status
	rec.Message = message
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			rec.MatchDetails = raw
		}
	}
	if err := s.notifications.Save(ctx, rec); err != nil {
		s.log.Error("notification outcome not stored",
			zap.String("transaction_id", rec.TransactionID), zap.String("status", status), zap.Error(err))
	}
}

func confirmedResult(conf *Confirmation) *Result {
	id := conf.Booking.ID
	msg := "payment confirmed"
	if conf.Replay {
		msg = "payment already applied"
	} else if conf.SideEffects.Failed() {
		msg = "payment confirmed; some side effects failed and will be retried"
	}
	return &Result{
		Status:          StatusConfirmed,
		BookingID:       &id,
		Message:         msg,
		CalendarEventID: conf.SideEffects.CalendarEventID,
		MeetingLink:     conf.SideEffects.MeetingLink,
		SubscriptionID:  conf.SideEffects.SubscriptionID,
		Replay:          conf.Replay,
	}
}

// ManualMatch applies an unresolved notification to a booking an operator
// picked, through the same guarded confirmation as automatic matches.
func (s *Service) ManualMatch(ctx context.Context, notificationID, bookingID uuid.UUID, performedBy, reason string) (*Result, error) {
	n, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.Status == models.NotificationStatusConfirmed {
		return nil, ErrNotificationSettled
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	conf, err := s.applier.Apply(ctx, bookingID, n.TransactionID, n.Amount)
	if err != nil {
		return nil, err
	}

	previous := n.Status
	n.MatchedBookingID = &conf.Booking.ID
	if booking.RecordedAmount > 0 {
		n.AmountRatio = decimal.NewFromInt(n.Amount).
			Div(decimal.NewFromInt(booking.RecordedAmount)).
			Round(4).InexactFloat64()
	}
	s.finish(ctx, n, models.NotificationStatusConfirmed, "matched manually by "+performedBy, nil)

	if err := s.notifications.CreateAudit(ctx, &models.MatchAuditLog{
		NotificationID: n.ID,
		TransactionID:  n.TransactionID,
		Action:         models.AuditActionManualMatch,
		PreviousStatus: previous,
		BookingID:      &conf.Booking.ID,
		PerformedBy:    performedBy,
		Reason:         reason,
	}); err != nil {
		s.log.Error("audit entry not stored", zap.String("notification_id", n.ID.String()), zap.Error(err))
	}

	s.log.Info("notification matched manually",
		zap.String("transaction_id", n.TransactionID),
		zap.String("booking_id", bookingID.String()),
		zap.String("performed_by", performedBy),
	)
	return confirmedResult(conf), nil
}

// Reject marks a notification as not being a booking payment.
func (s *Service) Reject(ctx context.Context, notificationID uuid.UUID, performedBy, reason string) (*models.PaymentNotification, error) {
	n, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.Status == models.NotificationStatusConfirmed {
		return nil, ErrNotificationSettled
	}

	previous := n.Status
	n.Status = models.NotificationStatusRejected
	n.Message = "rejected by " + performedBy
	if err := s.notifications.Save(ctx, n); err != nil {
		return nil, err
	}
	if err := s.notifications.CreateAudit(ctx, &models.MatchAuditLog{
		NotificationID: n.ID,
		TransactionID:  n.TransactionID,
		Action:         models.AuditActionReject,
		PreviousStatus: previous,
		PerformedBy:    performedBy,
		Reason:         reason,
	}); err != nil {
		s.log.Error("audit entry not stored", zap.String("notification_id", n.ID.String()), zap.Error(err))
	}
	return n, nil
}

func (s *Service) ListNotifications(ctx context.Context, f repository.NotificationFilter) ([]models.PaymentNotification, string, bool, error) {
	return s.notifications.List(ctx, f)
}

func (s *Service) NotificationStats(ctx context.Context) (repository.NotificationStats, error) {
	return s.notifications.Stats(ctx)
}

func (s *Service) CreateBooking(ctx context.Context, b *models.Booking) error {
	b.ClientName = strings.TrimSpace(b.ClientName)
	if b.ClientName == "" {
		return fmt.Errorf("%w: client name required", ErrInvalidBooking)
	}
	if b.RecordedAmount <= 0 {
		return fmt.Errorf("%w: recorded amount must be positive", ErrInvalidBooking)
	}
	if b.BonusDays < 0 {
		return fmt.Errorf("%w: bonus days must not be negative", ErrInvalidBooking)
	}
	return s.bookings.Create(ctx, b)
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// RetrySideEffects re-runs failed side effects and stores any artifacts they
// produce on the booking.
func (s *Service) RetrySideEffects(ctx context.Context, limit int) ([]sideeffects.RetryOutcome, error) {
	outcomes, err := s.dispatcher.RetryFailed(ctx, s.bookings.GetByID, limit)
	if err != nil {
		return nil, err
	}
	for _, o := range outcomes {
		if o.Result.CalendarEventID == nil && o.Result.MeetingLink == nil {
			continue
		}
		if err := s.bookings.RecordSideEffects(ctx, o.BookingID, o.Result.CalendarEventID, o.Result.MeetingLink); err != nil {
			s.log.Warn("retried artifacts not stored",
				zap.String("booking_id", o.BookingID.String()), zap.Error(err))
		}
	}
	return outcomes, nil
}
