package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"booking-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

// SupabaseBookingRepository reads and confirms bookings through PostgREST when
// the booking table lives in a hosted Supabase project.
// postgrest-go has no context support, so ctx is only checked before each call.
type SupabaseBookingRepository struct {
	client *supabase.Client
	table  string
}

// supabaseBooking mirrors the bookings row as PostgREST serializes it; date
// columns come back as plain "2006-01-02" strings.
type supabaseBooking struct {
	ID                   uuid.UUID  `json:"id"`
	ClientName           string     `json:"client_name"`
	ClientEmail          string     `json:"client_email"`
	ClientPhone          string     `json:"client_phone"`
	ServiceType          string     `json:"service_type"`
	RecordedAmount       int64      `json:"recorded_amount"`
	PaidAmount           *int64     `json:"paid_amount"`
	Status               string     `json:"status"`
	PaymentStatus        string     `json:"payment_status"`
	PaymentTransactionID *string    `json:"payment_transaction_id"`
	PaymentConfirmedAt   *time.Time `json:"payment_confirmed_at"`
	BookingDate          string     `json:"booking_date,omitempty"`
	BonusDays            int        `json:"bonus_days"`
	CalendarEventID      *string    `json:"calendar_event_id"`
	MeetingLink          *string    `json:"meeting_link"`
	CreatedAt            *time.Time `json:"created_at,omitempty"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
}

func (s supabaseBooking) toModel() models.Booking {
	b := models.Booking{
		ID:                   s.ID,
		ClientName:           s.ClientName,
		ClientEmail:          s.ClientEmail,
		ClientPhone:          s.ClientPhone,
		ServiceType:          s.ServiceType,
		RecordedAmount:       s.RecordedAmount,
		PaidAmount:           s.PaidAmount,
		Status:               s.Status,
		PaymentStatus:        s.PaymentStatus,
		PaymentTransactionID: s.PaymentTransactionID,
		PaymentConfirmedAt:   s.PaymentConfirmedAt,
		BonusDays:            s.BonusDays,
		CalendarEventID:      s.CalendarEventID,
		MeetingLink:          s.MeetingLink,
	}
	if d, err := time.Parse(time.DateOnly, s.BookingDate); err == nil {
		b.BookingDate = d
	}
	if s.CreatedAt != nil {
		b.CreatedAt = *s.CreatedAt
	}
	if s.UpdatedAt != nil {
		b.UpdatedAt = *s.UpdatedAt
	}
	return b
}

func NewSupabaseBookingRepository(url, serviceKey, table string) (*SupabaseBookingRepository, error) {
	client, err := supabase.NewClient(url, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	if table == "" {
		table = "bookings"
	}
	return &SupabaseBookingRepository{client: client, table: table}, nil
}

func (r *SupabaseBookingRepository) FindPendingBookings(ctx context.Context, f PendingFilter) ([]models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := r.client.From(r.table).Select("*", "", false).
		Eq("status", models.BookingStatusPending).
		Eq("payment_status", models.PaymentStatusPending).
		Is("payment_transaction_id", "null")
	// filters are keyed by column, so a two-sided range has to go through and=()
	var bounds []string
	if f.MinAmount > 0 {
		bounds = append(bounds, "recorded_amount.gte."+strconv.FormatInt(f.MinAmount, 10))
	}
	if f.MaxAmount > 0 {
		bounds = append(bounds, "recorded_amount.lte."+strconv.FormatInt(f.MaxAmount, 10))
	}
	if len(bounds) > 0 {
		q = q.And(strings.Join(bounds, ","), "")
	}

	var rows []supabaseBooking
	if _, err := q.Order("created_at", &postgrest.OrderOpts{Ascending: false}).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("list pending bookings: %w", err)
	}
	return toModels(rows), nil
}

func (r *SupabaseBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return r.first(ctx, "id", id.String())
}

func (r *SupabaseBookingRepository) FindByTransactionID(ctx context.Context, transactionID string) (*models.Booking, error) {
	return r.first(ctx, "payment_transaction_id", transactionID)
}

func (r *SupabaseBookingRepository) first(ctx context.Context, column, value string) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []supabaseBooking
	if _, err := r.client.From(r.table).Select("*", "", false).
		Eq(column, value).
		Limit(1, "").
		ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("get booking by %s: %w", column, err)
	}
	if len(rows) == 0 {
		return nil, ErrBookingNotFound
	}
	b := rows[0].toModel()
	return &b, nil
}

func (r *SupabaseBookingRepository) Create(ctx context.Context, b *models.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = models.BookingStatusPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = models.PaymentStatusPending
	}

	row := supabaseBooking{
		ID:             b.ID,
		ClientName:     b.ClientName,
		ClientEmail:    b.ClientEmail,
		ClientPhone:    b.ClientPhone,
		ServiceType:    b.ServiceType,
		RecordedAmount: b.RecordedAmount,
		Status:         b.Status,
		PaymentStatus:  b.PaymentStatus,
		BonusDays:      b.BonusDays,
	}
	if !b.BookingDate.IsZero() {
		row.BookingDate = b.BookingDate.Format(time.DateOnly)
	}

	var created []supabaseBooking
	if _, err := r.client.From(r.table).Insert(row, false, "", "representation", "").ExecuteTo(&created); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	if len(created) > 0 {
		*b = created[0].toModel()
	}
	return nil
}

// ConfirmBookingIfUnset issues a single conditional PATCH; PostgREST applies
// the filters in the same UPDATE statement, which keeps it atomic.
func (r *SupabaseBookingRepository) ConfirmBookingIfUnset(ctx context.Context, id uuid.UUID, transactionID string, amount int64) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	patch := map[string]interface{}{
		"status":                 models.BookingStatusConfirmed,
		"payment_status":         models.PaymentStatusConfirmed,
		"payment_transaction_id": transactionID,
		"payment_confirmed_at":   now,
		"paid_amount":            amount,
		"updated_at":             now,
	}

	var updated []supabaseBooking
	if _, err := r.client.From(r.table).Update(patch, "representation", "").
		Eq("id", id.String()).
		Is("payment_transaction_id", "null").
		Neq("status", models.BookingStatusCancelled).
		ExecuteTo(&updated); err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	if len(updated) == 1 {
		b := updated[0].toModel()
		return &b, nil
	}

	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case b.PaymentTransactionID == nil:
		return nil, ErrBookingNotFound
	case *b.PaymentTransactionID == transactionID:
		return b, ErrAlreadyConfirmed
	default:
		return b, ErrBookingAlreadyPaid
	}
}

func (r *SupabaseBookingRepository) RecordSideEffects(ctx context.Context, id uuid.UUID, calendarEventID, meetingLink *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fields := map[string]*string{
		"calendar_event_id": calendarEventID,
		"meeting_link":      meetingLink,
	}
	for column, value := range fields {
		if value == nil {
			continue
		}
		var rows []supabaseBooking
		if _, err := r.client.From(r.table).Update(map[string]interface{}{column: *value}, "representation", "").
			Eq("id", id.String()).
			Is(column, "null").
			ExecuteTo(&rows); err != nil {
			return fmt.Errorf("record %s: %w", column, err)
		}
	}
	return nil
}

func toModels(rows []supabaseBooking) []models.Booking {
	out := make([]models.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out
}
