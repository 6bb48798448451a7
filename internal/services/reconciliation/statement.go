package reconciliation

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"booking-reconciliation-backend/internal/models"
	"booking-reconciliation-backend/internal/services/matching"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const batchProgressEvery = 100

var dateLayouts = []string{"02-01-2006", "2006-01-02", "02/01/2006"}

// StatementRow is one credit line of a bank statement export.
type StatementRow struct {
	TransactionID string
	Date          time.Time
	Description   string
	Amount        int64
}

// RowError reports a CSV line that was skipped.
type RowError struct {
	Line int    `json:"line"`
	Err  string `json:"error"`
}

// ParseStatement reads transaction_id,date,description,amount rows. The first
// row is a header. Bad rows are skipped and reported.
func ParseStatement(r io.Reader) ([]StatementRow, []RowError, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, nil, err
	}

	var rows []StatementRow
	var skipped []RowError
	for i, record := range records {
		line := i + 2
		if blank(record) {
			continue
		}
		if len(record) < 4 {
			skipped = append(skipped, RowError{Line: line, Err: "expected 4 columns"})
			continue
		}

		txID := strings.TrimSpace(record[0])
		if txID == "" {
			skipped = append(skipped, RowError{Line: line, Err: "transaction id empty"})
			continue
		}
		date, err := ParseDate(record[1])
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: err.Error()})
			continue
		}
		amount, err := parseAmount(record[3])
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: err.Error()})
			continue
		}

		rows = append(rows, StatementRow{
			TransactionID: txID,
			Date:          date,
			Description:   strings.TrimSpace(record[2]),
			Amount:        amount,
		})
	}
	return rows, skipped, nil
}

// ParseBookings reads client_name,client_email,client_phone,service_type,
// recorded_amount,booking_date[,bonus_days] rows.
func ParseBookings(r io.Reader) ([]models.Booking, []RowError, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, nil, err
	}

	var bookings []models.Booking
	var skipped []RowError
	for i, record := range records {
		line := i + 2
		if blank(record) {
			continue
		}
		if len(record) < 6 {
			skipped = append(skipped, RowError{Line: line, Err: "expected at least 6 columns"})
			continue
		}

		name := strings.TrimSpace(record[0])
		if name == "" {
			skipped = append(skipped, RowError{Line: line, Err: "client name empty"})
			continue
		}
		amount, err := parseAmount(record[4])
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: err.Error()})
			continue
		}
		date, err := ParseDate(record[5])
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: err.Error()})
			continue
		}

		b := models.Booking{
			ClientName:     name,
			ClientEmail:    strings.TrimSpace(record[1]),
			ClientPhone:    strings.TrimSpace(record[2]),
			ServiceType:    strings.TrimSpace(record[3]),
			RecordedAmount: amount,
			BookingDate:    date,
		}
		if len(record) > 6 && strings.TrimSpace(record[6]) != "" {
			days, err := strconv.Atoi(strings.TrimSpace(record[6]))
			if err != nil || days < 0 {
				skipped = append(skipped, RowError{Line: line, Err: "invalid bonus_days"})
				continue
			}
			b.BonusDays = days
		}
		bookings = append(bookings, b)
	}
	return bookings, skipped, nil
}

// ImportBookings creates every booking row of a CSV export.
func (s *Service) ImportBookings(ctx context.Context, r io.Reader) (int, []RowError, error) {
	bookings, skipped, err := ParseBookings(r)
	if err != nil {
		return 0, nil, err
	}

	inserted := 0
	for i := range bookings {
		if err := s.CreateBooking(ctx, &bookings[i]); err != nil {
			if errors.Is(err, ErrInvalidBooking) {
				skipped = append(skipped, RowError{Err: err.Error()})
				continue
			}
			return inserted, skipped, err
		}
		inserted++
	}
	s.log.Info("bookings imported", zap.Int("inserted", inserted), zap.Int("skipped", len(skipped)))
	return inserted, skipped, nil
}

// StartReplay records an import batch and replays the statement in the
// background. Progress is readable through GetBatch.
func (s *Service) StartReplay(ctx context.Context, filename string, rows []StatementRow) (*models.ImportBatch, error) {
	batch, err := s.notifications.CreateBatch(ctx, filename)
	if err != nil {
		return nil, err
	}
	batch.TotalRows = len(rows)
	snapshot := *batch

	go func() {
		bg := context.WithoutCancel(ctx)
		if err := s.ReplayStatement(bg, batch, rows); err != nil {
			s.log.Error("statement replay failed", zap.String("batch_id", batch.ID.String()), zap.Error(err))
		}
	}()
	return &snapshot, nil
}

// ReplayStatement feeds each row through HandleNotification as if the
// gateway had delivered it. Rows already applied come back as replays.
func (s *Service) ReplayStatement(ctx context.Context, batch *models.ImportBatch, rows []StatementRow) error {
	batch.TotalRows = len(rows)
	log := s.log.With(zap.String("batch_id", batch.ID.String()))

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := s.HandleNotification(ctx, matching.Notification{
			TransactionID:  row.TransactionID,
			RawDescription: row.Description,
			Amount:         row.Amount,
			Timestamp:      row.Date,
		}, &batch.ID)

		switch {
		case err != nil:
			batch.ErrorCount++
		case res.Status == StatusConfirmed:
			batch.ConfirmedCount++
		case res.Status == StatusPending:
			batch.PendingCount++
		case res.Status == StatusAmbiguous:
			batch.AmbiguousCount++
		default:
			batch.ErrorCount++
		}
		batch.ProcessedCount++

		if batch.ProcessedCount%batchProgressEvery == 0 {
			if err := s.notifications.UpdateBatchProgress(ctx, batch, nil); err != nil {
				log.Warn("batch progress not stored", zap.Error(err))
			}
		}
	}

	now := time.Now()
	batch.Status = models.BatchStatusCompleted
	batch.CompletedAt = &now
	if err := s.notifications.UpdateBatchProgress(ctx, batch, &now); err != nil {
		return fmt.Errorf("complete batch: %w", err)
	}
	log.Info("statement replay completed",
		zap.Int("rows", batch.TotalRows),
		zap.Int("confirmed", batch.ConfirmedCount),
		zap.Int("pending", batch.PendingCount),
		zap.Int("ambiguous", batch.AmbiguousCount),
		zap.Int("errors", batch.ErrorCount),
	)
	return nil
}

func (s *Service) GetBatch(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	return s.notifications.GetBatch(ctx, id)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	return records, nil
}

func blank(record []string) bool {
	return strings.TrimSpace(strings.Join(record, "")) == ""
}

// ParseDate accepts dd-mm-yyyy, yyyy-mm-dd and dd/mm/yyyy.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// parseAmount accepts whole amounts with optional thousands separators
// ("299000", "299.000", "299,000") or a decimal point ("299000.00").
func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ".") > 1 || strings.Count(s, ",") > 0 || thousandsDot(s) {
		s = strings.NewReplacer(".", "", ",", "", " ", "").Replace(s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	amount, err := matching.WholeAmount(d.Round(0))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

// thousandsDot reports a single dot followed by exactly three digits, the
// usual VND grouping ("299.000").
func thousandsDot(s string) bool {
	i := strings.IndexByte(s, '.')
	return i > 0 && len(s)-i-1 == 3
}
