package sideeffects

import (
	"context"
	"encoding/json"
	"time"

	"booking-reconciliation-backend/internal/models"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// PaymentConfirmed is emitted once a booking has been confirmed for a
// transaction. TransactionID is the idempotency key for every handler.
type PaymentConfirmed struct {
	TransactionID string
	Booking       models.Booking
	Amount        int64
}

// Artifacts are the values side effects hand back to the booking record and
// the webhook response.
type Artifacts struct {
	CalendarEventID *string `json:"calendar_event_id,omitempty"`
	MeetingLink     *string `json:"meeting_link,omitempty"`
	SubscriptionID  *string `json:"subscription_id,omitempty"`
}

func (a *Artifacts) merge(o Artifacts) {
	if a.CalendarEventID == nil {
		a.CalendarEventID = o.CalendarEventID
	}
	if a.MeetingLink == nil {
		a.MeetingLink = o.MeetingLink
	}
	if a.SubscriptionID == nil {
		a.SubscriptionID = o.SubscriptionID
	}
}

// Result is what a dispatch produced. Failures maps handler name to error
// text; a failed handler never undoes the confirmation.
type Result struct {
	Artifacts
	Failures map[string]string `json:"failures,omitempty"`
}

func (r Result) Failed() bool {
	return len(r.Failures) > 0
}

type Handler interface {
	Name() string
	Handle(ctx context.Context, evt PaymentConfirmed) (Artifacts, error)
}

// Ledger records one run per (transaction, handler).
type Ledger interface {
	Claim(ctx context.Context, transactionID, handler string, bookingID uuid.UUID, amount int64) (*models.SideEffectRun, bool, error)
	Complete(ctx context.Context, id snowflake.ID, artifacts datatypes.JSON) error
	Fail(ctx context.Context, id snowflake.ID, cause error) error
	ListRetryable(ctx context.Context, limit int) ([]models.SideEffectRun, error)
}

type Dispatcher struct {
	ledger   Ledger
	handlers []Handler
	timeout  time.Duration
	log      *zap.Logger
}

func NewDispatcher(ledger Ledger, timeout time.Duration, log *zap.Logger, handlers ...Handler) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{ledger: ledger, handlers: handlers, timeout: timeout, log: log}
}

// OnPaymentConfirmed runs every handler concurrently under the dispatch
// timeout. Handlers that already succeeded for this transaction are not run
// again; their stored artifacts are returned instead.
func (d *Dispatcher) OnPaymentConfirmed(ctx context.Context, evt PaymentConfirmed) Result {
	return d.dispatch(ctx, evt, d.handlers)
}

func (d *Dispatcher) dispatch(ctx context.Context, evt PaymentConfirmed, handlers []Handler) Result {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	artifacts := make([]Artifacts, len(handlers))
	errs := make([]error, len(handlers))

	// Plain group: one failing handler must not cancel its siblings.
	var g errgroup.Group
	for i, h := range handlers {
		g.Go(func() error {
			artifacts[i], errs[i] = d.run(ctx, h, evt)
			return nil
		})
	}
	_ = g.Wait()

	var res Result
	for i, h := range handlers {
		if errs[i] != nil {
			if res.Failures == nil {
				res.Failures = make(map[string]string)
			}
			res.Failures[h.Name()] = errs[i].Error()
			continue
		}
		res.merge(artifacts[i])
	}
	return res
}

func (d *Dispatcher) run(ctx context.Context, h Handler, evt PaymentConfirmed) (Artifacts, error) {
	log := d.log.With(
		zap.String("handler", h.Name()),
		zap.String("transaction_id", evt.TransactionID),
		zap.String("booking_id", evt.Booking.ID.String()),
	)

	run, claimed, err := d.ledger.Claim(ctx, evt.TransactionID, h.Name(), evt.Booking.ID, evt.Amount)
	if err != nil {
		log.Error("side effect claim failed", zap.Error(err))
		return Artifacts{}, err
	}

	if !claimed {
		var stored Artifacts
		if run.Status == models.SideEffectSucceeded && len(run.Artifacts) > 0 {
			if err := json.Unmarshal(run.Artifacts, &stored); err != nil {
				log.Warn("stored artifacts unreadable", zap.Error(err))
			}
		}
		log.Debug("side effect already handled", zap.String("status", run.Status))
		return stored, nil
	}

	out, err := h.Handle(ctx, evt)

	// The dispatch deadline may already be spent; ledger writes get their own.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err != nil {
		log.Warn("side effect failed", zap.Int("attempt", run.Attempts), zap.Error(err))
		if ferr := d.ledger.Fail(writeCtx, run.ID, err); ferr != nil {
			log.Error("side effect failure not recorded", zap.Error(ferr))
		}
		return Artifacts{}, err
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return out, err
	}
	if err := d.ledger.Complete(writeCtx, run.ID, datatypes.JSON(raw)); err != nil {
		log.Error("side effect completion not recorded", zap.Error(err))
	}
	log.Info("side effect completed", zap.Int("attempt", run.Attempts))
	return out, nil
}

// BookingLookup loads the booking a ledger row points to.
type BookingLookup func(ctx context.Context, id uuid.UUID) (*models.Booking, error)

type RetryOutcome struct {
	TransactionID string
	BookingID     uuid.UUID
	Handler       string
	Result        Result
}

// RetryFailed re-runs failed or stale ledger rows, one dispatch per row.
func (d *Dispatcher) RetryFailed(ctx context.Context, lookup BookingLookup, limit int) ([]RetryOutcome, error) {
	runs, err := d.ledger.ListRetryable(ctx, limit)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Handler, len(d.handlers))
	for _, h := range d.handlers {
		byName[h.Name()] = h
	}

	outcomes := make([]RetryOutcome, 0, len(runs))
	for _, run := range runs {
		h, ok := byName[run.Handler]
		if !ok {
			d.log.Warn("no handler registered for ledger row",
				zap.String("handler", run.Handler), zap.String("transaction_id", run.TransactionID))
			continue
		}

		booking, err := lookup(ctx, run.BookingID)
		if err != nil {
			d.log.Error("retry booking lookup failed",
				zap.String("booking_id", run.BookingID.String()), zap.Error(err))
			continue
		}

		evt := PaymentConfirmed{TransactionID: run.TransactionID, Booking: *booking, Amount: run.Amount}
		outcomes = append(outcomes, RetryOutcome{
			TransactionID: run.TransactionID,
			BookingID:     run.BookingID,
			Handler:       run.Handler,
			Result:        d.dispatch(ctx, evt, []Handler{h}),
		})
	}
	return outcomes, nil
}
