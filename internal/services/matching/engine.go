package matching

import (
	"errors"
	"sort"
	"time"

	"booking-reconciliation-backend/internal/config"
	"booking-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNoMatch        = errors.New("no pending booking matches the notification")
	ErrAmbiguousMatch = errors.New("more than one pending booking matches the notification")
)

// Signals explains why a booking was (or was not) picked.
type Signals struct {
	NameMatch      bool    `json:"name_match"`
	NameSimilarity float64 `json:"name_similarity"`
	AmountRatio    float64 `json:"amount_ratio"`
	Discounted     bool    `json:"discounted"`
	DateMatch      bool    `json:"date_match"`
}

type MatchResult struct {
	BookingID    *uuid.UUID      `json:"booking_id"`
	Booking      *models.Booking `json:"-"`
	Signals      Signals         `json:"confidence_signals"`
	CandidateIDs []uuid.UUID     `json:"candidate_ids"`
	Considered   int             `json:"considered"`
}

type candidate struct {
	booking *models.Booking
	signals Signals
}

type Matcher struct {
	cfg config.MatchingConfig
	one decimal.Decimal
}

func NewMatcher(cfg config.MatchingConfig) *Matcher {
	return &Matcher{cfg: cfg, one: decimal.NewFromInt(1)}
}

// AmountBounds returns the recorded_amount range that can possibly accept a
// payment of amount, so the store query does not load every pending booking.
func (m *Matcher) AmountBounds(amount int64) (int64, int64) {
	paid := decimal.NewFromInt(amount)

	upperRatio := decimal.Max(m.cfg.DiscountCeiling, m.one.Add(m.cfg.ExactTolerance))
	lowerRatio := decimal.Min(m.cfg.DiscountFloor, m.one.Sub(m.cfg.ExactTolerance))

	minRecorded := paid.DivRound(upperRatio, 8).Floor().IntPart()
	maxRecorded := paid.DivRound(lowerRatio, 8).Ceil().IntPart()
	return minRecorded, maxRecorded
}

// Match picks the single pending booking a parsed notification pays for.
// A booking is a candidate when the memo names its client and the paid
// amount is either the recorded price (within ExactTolerance) or a discount
// inside [DiscountFloor, DiscountCeiling]. A memo date narrows the
// candidates; anything still plural is ambiguous unless PreferLatest is set.
func (m *Matcher) Match(p *ParsedNotification, bookings []models.Booking) (*MatchResult, error) {
	result := &MatchResult{Considered: len(bookings)}

	var candidates []candidate
	for i := range bookings {
		b := &bookings[i]
		if !isPending(b) || b.RecordedAmount <= 0 {
			continue
		}

		nameOK, sim := NameMatches(p.NormalizedName, NormalizeName(b.ClientName), m.cfg.NameSimilarityMin)
		ratio := decimal.NewFromInt(p.Amount).Div(decimal.NewFromInt(b.RecordedAmount))
		exact := ratio.Sub(m.one).Abs().LessThanOrEqual(m.cfg.ExactTolerance)
		discounted := !exact &&
			ratio.GreaterThanOrEqual(m.cfg.DiscountFloor) &&
			ratio.LessThanOrEqual(m.cfg.DiscountCeiling)

		s := Signals{
			NameMatch:      nameOK,
			NameSimilarity: sim,
			AmountRatio:    ratio.Round(4).InexactFloat64(),
			Discounted:     discounted,
			DateMatch:      p.DescriptionDate != nil && sameDay(b.BookingDate, *p.DescriptionDate),
		}

		if !nameOK {
			continue
		}
		if !exact && !discounted {
			// keep the closest name hit so the miss can be explained in logs
			if !result.Signals.NameMatch {
				result.Signals = s
			}
			continue
		}
		candidates = append(candidates, candidate{booking: b, signals: s})
	}

	if len(candidates) == 0 {
		return result, ErrNoMatch
	}

	if p.DescriptionDate != nil {
		var dated []candidate
		for _, c := range candidates {
			if c.signals.DateMatch {
				dated = append(dated, c)
			}
		}
		if len(dated) > 0 {
			candidates = dated
		}
	}

	for _, c := range candidates {
		result.CandidateIDs = append(result.CandidateIDs, c.booking.ID)
	}

	if len(candidates) > 1 && m.cfg.PreferLatest {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].booking.CreatedAt.After(candidates[j].booking.CreatedAt)
		})
		if candidates[0].booking.CreatedAt.After(candidates[1].booking.CreatedAt) {
			candidates = candidates[:1]
		}
	}

	if len(candidates) > 1 {
		result.Signals = candidates[0].signals
		return result, ErrAmbiguousMatch
	}

	best := candidates[0]
	id := best.booking.ID
	result.BookingID = &id
	result.Booking = best.booking
	result.Signals = best.signals
	return result, nil
}

func isPending(b *models.Booking) bool {
	return b.Status == models.BookingStatusPending &&
		b.PaymentStatus == models.PaymentStatusPending &&
		b.PaymentTransactionID == nil
}

func sameDay(a, b time.Time) bool {
	return a.Format(time.DateOnly) == b.Format(time.DateOnly)
}
