package reconciliation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatement(t *testing.T) {
	csv := `transaction_id,date,description,amount
FT2601,16-10-2026,TUVAN TESTFULLFLOW 16102026,299000
FT2602,2026-10-16,TUVAN NGUYENVANA,"29,900"
,16-10-2026,missing id,1000
FT2604,16/10/2026,TUVAN TRANTHIB,abc
FT2605,yesterday,TUVAN LEVANC,1000
FT2606,16/10/2026,TUVAN LEVANC,299.000
`
	rows, skipped, err := ParseStatement(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "FT2601", rows[0].TransactionID)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, int64(299000), rows[0].Amount)
	assert.Equal(t, int64(29900), rows[1].Amount)
	assert.Equal(t, int64(299000), rows[2].Amount)

	require.Len(t, skipped, 3)
	assert.Equal(t, 4, skipped[0].Line)
	assert.Equal(t, "transaction id empty", skipped[0].Err)
	assert.Contains(t, skipped[1].Err, "invalid amount")
	assert.Contains(t, skipped[2].Err, "invalid date")
}

func TestParseStatementEmpty(t *testing.T) {
	rows, skipped, err := ParseStatement(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, skipped)
}

func TestParseBookings(t *testing.T) {
	csv := `client_name,client_email,client_phone,service_type,recorded_amount,booking_date,bonus_days
Test Full Flow,flow@example.com,0901234567,tarot,299000,16-10-2026,45
Nguyen Van A,,,astrology,199000,2026-10-20
,x@example.com,,tarot,1000,16-10-2026
Tran Thi B,b@example.com,,career,500000,16-10-2026,-3
`
	bookings, skipped, err := ParseBookings(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, bookings, 2)
	assert.Equal(t, "Test Full Flow", bookings[0].ClientName)
	assert.Equal(t, 45, bookings[0].BonusDays)
	assert.Equal(t, int64(299000), bookings[0].RecordedAmount)
	assert.Equal(t, 0, bookings[1].BonusDays)
	assert.Equal(t, "2026-10-20", bookings[1].BookingDate.Format(time.DateOnly))

	require.Len(t, skipped, 2)
	assert.Equal(t, "client name empty", skipped[0].Err)
	assert.Equal(t, "invalid bonus_days", skipped[1].Err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "299000", want: 299000},
		{in: " 299000 ", want: 299000},
		{in: "299.000", want: 299000},
		{in: "1.299.000", want: 1299000},
		{in: "299,000", want: 299000},
		{in: "299000.00", want: 299000},
		{in: "299000.5", want: 299001},
		{in: "0", wantErr: true},
		{in: "-5000", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "9223372036854775807", want: 9223372036854775807},
		{in: "18446744073709850616", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"16-10-2026", "2026-10-16", "16/10/2026"} {
		d, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2026-10-16", d.Format(time.DateOnly))
	}
	_, err := ParseDate("10/16/2026")
	assert.Error(t, err)
}
