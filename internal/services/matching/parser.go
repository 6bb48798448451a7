package matching

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

var ErrInvalidNotification = errors.New("invalid notification")

var (
	maxAmount = decimal.NewFromInt(math.MaxInt64)
	minAmount = decimal.NewFromInt(math.MinInt64)
)

// WholeAmount converts a transfer amount to int64. Fractions and values
// outside the int64 range are invalid.
func WholeAmount(d decimal.Decimal) (int64, error) {
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("%w: amount must be a whole number", ErrInvalidNotification)
	}
	if d.GreaterThan(maxAmount) || d.LessThan(minAmount) {
		return 0, fmt.Errorf("%w: amount out of range", ErrInvalidNotification)
	}
	return d.IntPart(), nil
}

const memoDateLayout = "02012006"

// Notification is a bank transfer as reported by the gateway.
type Notification struct {
	TransactionID  string
	RawDescription string
	Amount         int64
	Timestamp      time.Time
}

// ParsedNotification holds the normalized inputs of the candidate matcher.
type ParsedNotification struct {
	TransactionID   string     `json:"transaction_id"`
	RawDescription  string     `json:"raw_description"`
	NormalizedName  string     `json:"normalized_name"`
	DescriptionDate *time.Time `json:"description_date"`
	Amount          int64      `json:"amount"`
	Timestamp       time.Time  `json:"timestamp"`
}

type Parser struct {
	prefixes map[string]struct{}
}

func NewParser(prefixKeywords []string) *Parser {
	p := &Parser{prefixes: make(map[string]struct{}, len(prefixKeywords))}
	for _, k := range prefixKeywords {
		if key := NormalizeName(k); key != "" {
			p.prefixes[key] = struct{}{}
		}
	}
	return p
}

// Parse extracts the client name and memo date from a transfer description
// such as "TUVAN NGUYENVANA 16102026". The name is the run of tokens after
// the first prefix keyword (or from the start when none is present) up to
// the first DDMMYYYY token. Bare reference numbers are dropped.
func (p *Parser) Parse(n Notification) (*ParsedNotification, error) {
	desc := strings.TrimSpace(n.RawDescription)
	switch {
	case desc == "":
		return nil, fmt.Errorf("%w: empty description", ErrInvalidNotification)
	case n.Amount <= 0:
		return nil, fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidNotification, n.Amount)
	case strings.TrimSpace(n.TransactionID) == "":
		return nil, fmt.Errorf("%w: missing transaction id", ErrInvalidNotification)
	}

	tokens := tokenize(desc)

	start := 0
	for i, t := range tokens {
		if _, ok := p.prefixes[t]; ok {
			start = i + 1
			break
		}
	}

	var (
		name strings.Builder
		date *time.Time
	)
	for _, t := range tokens[start:] {
		if d, ok := parseMemoDate(t); ok {
			date = &d
			break
		}
		if _, ok := p.prefixes[t]; ok || isDigits(t) {
			continue
		}
		name.WriteString(t)
	}

	ts := n.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	return &ParsedNotification{
		TransactionID:   strings.TrimSpace(n.TransactionID),
		RawDescription:  desc,
		NormalizedName:  name.String(),
		DescriptionDate: date,
		Amount:          n.Amount,
		Timestamp:       ts,
	}, nil
}

func tokenize(desc string) []string {
	var out []string
	for _, t := range strings.Split(slug.Make(desc), "-") {
		if t != "" {
			out = append(out, strings.ToUpper(t))
		}
	}
	return out
}

func parseMemoDate(t string) (time.Time, bool) {
	if len(t) != len(memoDateLayout) || !isDigits(t) {
		return time.Time{}, false
	}
	d, err := time.Parse(memoDateLayout, t)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
