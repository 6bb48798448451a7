package reconciliation

import (
	"context"
	"errors"

	"booking-reconciliation-backend/internal/models"
	"booking-reconciliation-backend/internal/repository"
	"booking-reconciliation-backend/internal/services/sideeffects"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Confirmation is the outcome of applying a payment to a booking.
type Confirmation struct {
	Booking     *models.Booking
	Replay      bool
	SideEffects sideeffects.Result
}

// Applier confirms a matched booking and dispatches side effects exactly
// once per transaction id.
type Applier struct {
	bookings   BookingStore
	dispatcher Dispatcher
	log        *zap.Logger
}

func NewApplier(bookings BookingStore, dispatcher Dispatcher, log *zap.Logger) *Applier {
	return &Applier{bookings: bookings, dispatcher: dispatcher, log: log}
}

// Apply returns repository.ErrBookingNotFound or
// repository.ErrBookingAlreadyPaid when the booking can no longer take this
// payment. A booking already confirmed by the same transaction is reported
// as a replay and its side effects are not dispatched again.
func (a *Applier) Apply(ctx context.Context, bookingID uuid.UUID, transactionID string, amount int64) (*Confirmation, error) {
	booking, err := a.bookings.ConfirmBookingIfUnset(ctx, bookingID, transactionID, amount)
	if errors.Is(err, repository.ErrAlreadyConfirmed) {
		a.log.Info("duplicate delivery for confirmed booking",
			zap.String("transaction_id", transactionID),
			zap.String("booking_id", bookingID.String()),
		)
		return replayConfirmation(booking), nil
	}
	if err != nil {
		return nil, err
	}

	res := a.dispatcher.OnPaymentConfirmed(ctx, sideeffects.PaymentConfirmed{
		TransactionID: transactionID,
		Booking:       *booking,
		Amount:        amount,
	})
	for handler, msg := range res.Failures {
		a.log.Warn("side effect failed, payment stays confirmed",
			zap.String("transaction_id", transactionID),
			zap.String("booking_id", bookingID.String()),
			zap.String("handler", handler),
			zap.String("error", msg),
		)
	}

	if res.CalendarEventID != nil || res.MeetingLink != nil {
		if err := a.bookings.RecordSideEffects(ctx, booking.ID, res.CalendarEventID, res.MeetingLink); err != nil {
			a.log.Warn("side effect artifacts not stored",
				zap.String("booking_id", bookingID.String()), zap.Error(err))
		} else {
			if booking.CalendarEventID == nil {
				booking.CalendarEventID = res.CalendarEventID
			}
			if booking.MeetingLink == nil {
				booking.MeetingLink = res.MeetingLink
			}
		}
	}

	return &Confirmation{Booking: booking, SideEffects: res}, nil
}

func replayConfirmation(b *models.Booking) *Confirmation {
	return &Confirmation{
		Booking: b,
		Replay:  true,
		SideEffects: sideeffects.Result{Artifacts: sideeffects.Artifacts{
			CalendarEventID: b.CalendarEventID,
			MeetingLink:     b.MeetingLink,
		}},
	}
}
