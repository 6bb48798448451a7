package matching

import (
	"errors"
	"testing"
	"time"

	"booking-reconciliation-backend/internal/config"
	"booking-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingBooking(name string, amount int64, date string, created time.Time) models.Booking {
	d, _ := time.Parse(time.DateOnly, date)
	return models.Booking{
		ID:             uuid.New(),
		ClientName:     name,
		RecordedAmount: amount,
		Status:         models.BookingStatusPending,
		PaymentStatus:  models.PaymentStatusPending,
		BookingDate:    d,
		CreatedAt:      created,
	}
}

func parsed(t *testing.T, desc string, amount int64) *ParsedNotification {
	t.Helper()
	p, err := NewParser([]string{"TUVAN"}).Parse(Notification{TransactionID: "tx", RawDescription: desc, Amount: amount})
	require.NoError(t, err)
	return p
}

func TestMatchAmounts(t *testing.T) {
	m := NewMatcher(config.DefaultMatching())
	now := time.Now()

	tests := []struct {
		name       string
		amount     int64
		wantErr    error
		discounted bool
		ratio      float64
	}{
		{"exact price", 299000, nil, false, 1},
		{"within exact tolerance", 296500, nil, false, 0.9916},
		{"ninety percent discount", 29900, nil, true, 0.1},
		{"half price", 149500, nil, true, 0.5},
		{"floor edge", 14950, nil, true, 0.05},
		{"below floor", 1000, ErrNoMatch, false, 0},
		{"just below floor", 14949, ErrNoMatch, false, 0},
		{"overpaid beyond ceiling", 310000, ErrNoMatch, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pendingBooking("Test Full Flow", 299000, "2026-10-16", now)
			res, err := m.Match(parsed(t, "TUVAN TESTFULLFLOW", tt.amount), []models.Booking{b})

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Nil(t, res.BookingID)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, res.BookingID)
			assert.Equal(t, b.ID, *res.BookingID)
			assert.True(t, res.Signals.NameMatch)
			assert.Equal(t, tt.discounted, res.Signals.Discounted)
			assert.InDelta(t, tt.ratio, res.Signals.AmountRatio, 0.0001)
		})
	}
}

func TestMatchBelowFloorExplainsMiss(t *testing.T) {
	m := NewMatcher(config.DefaultMatching())
	b := pendingBooking("Test Full Flow", 299000, "2026-10-16", time.Now())

	res, err := m.Match(parsed(t, "TUVAN TESTFULLFLOW", 1000), []models.Booking{b})
	require.ErrorIs(t, err, ErrNoMatch)
	assert.True(t, res.Signals.NameMatch)
	assert.Less(t, res.Signals.AmountRatio, 0.05)
	assert.Equal(t, 1, res.Considered)
}

func TestMatchRequiresName(t *testing.T) {
	m := NewMatcher(config.DefaultMatching())
	b := pendingBooking("Le Thi Hoa", 299000, "2026-10-16", time.Now())

	_, err := m.Match(parsed(t, "TUVAN TRANVANBINH", 299000), []models.Booking{b})
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestMatchSkipsSettledBookings(t *testing.T) {
	m := NewMatcher(config.DefaultMatching())
	tx := "other"
	paid := pendingBooking("Le Thi Hoa", 299000, "2026-10-16", time.Now())
	paid.PaymentTransactionID = &tx
	cancelled := pendingBooking("Le Thi Hoa", 299000, "2026-10-16", time.Now())
	cancelled.Status = models.BookingStatusCancelled

	_, err := m.Match(parsed(t, "TUVAN LETHIHOA", 299000), []models.Booking{paid, cancelled})
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestMatchAmbiguousWithoutDate(t *testing.T) {
	m := NewMatcher(config.DefaultMatching())
	now := time.Now()
	a := pendingBooking("Le Thi Hoa", 299000, "2026-10-16", now)
	b := pendingBooking("Le Thi Hoa", 299000, "2026-10-20", now.Add(-time.Hour))

	res, err := m.Match(parsed(t, "TUVAN LETHIHOA", 299000), []models.Booking{a, b})
	require.ErrorIs(t, err, ErrAmbiguousMatch)
	assert.Nil(t, res.BookingID)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, res.CandidateIDs)
}

func TestMatchDateBreaksTie(t *testing.T) {
	m := NewMatcher(config.DefaultMatching())
	now := time.Now()
	a := pendingBooking("Le Thi Hoa", 299000, "2026-10-16", now)
	b := pendingBooking("Le Thi Hoa", 299000, "2026-10-20", now.Add(-time.Hour))

	res, err := m.Match(parsed(t, "TUVAN LETHIHOA 20102026", 299000), []models.Booking{a, b})
	require.NoError(t, err)
	assert.Equal(t, b.ID, *res.BookingID)
	assert.True(t, res.Signals.DateMatch)
}

func TestMatchUnmatchedDateStillAmbiguous(t *testing.T) {
	m := NewMatcher(config.DefaultMatching())
	now := time.Now()
	a := pendingBooking("Le Thi Hoa", 299000, "2026-10-16", now)
	b := pendingBooking("Le Thi Hoa", 299000, "2026-10-20", now.Add(-time.Hour))

	_, err := m.Match(parsed(t, "TUVAN LETHIHOA 01012027", 299000), []models.Booking{a, b})
	assert.ErrorIs(t, err, ErrAmbiguousMatch)
}

func TestMatchPreferLatest(t *testing.T) {
	cfg := config.DefaultMatching()
	cfg.PreferLatest = true
	m := NewMatcher(cfg)
	now := time.Now()
	older := pendingBooking("Le Thi Hoa", 299000, "2026-10-16", now.Add(-time.Hour))
	newer := pendingBooking("Le Thi Hoa", 299000, "2026-10-20", now)

	res, err := m.Match(parsed(t, "TUVAN LETHIHOA", 299000), []models.Booking{older, newer})
	require.NoError(t, err)
	assert.Equal(t, newer.ID, *res.BookingID)

	tie := pendingBooking("Le Thi Hoa", 299000, "2026-10-21", now)
	_, err = m.Match(parsed(t, "TUVAN LETHIHOA", 299000), []models.Booking{older, newer, tie})
	assert.ErrorIs(t, err, ErrAmbiguousMatch)
}

func TestAmountBounds(t *testing.T) {
	m := NewMatcher(config.DefaultMatching())

	lo, hi := m.AmountBounds(29900)
	assert.LessOrEqual(t, lo, int64(29900))
	assert.GreaterOrEqual(t, hi, int64(299000))
	assert.Equal(t, int64(598000), hi)

	_, hi = m.AmountBounds(1000)
	assert.Less(t, hi, int64(299000))
}
