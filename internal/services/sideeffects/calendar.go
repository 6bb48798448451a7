package sideeffects

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	HandlerCalendar = "calendar"

	calendarMaxRetries   = 3
	calendarInitialDelay = 500 * time.Millisecond
)

var ErrCalendarDisabled = errors.New("calendar integration disabled")

type CalendarEventRequest struct {
	BookingID   string `json:"bookingId"`
	ClientName  string `json:"clientName"`
	ClientEmail string `json:"clientEmail"`
	ServiceType string `json:"serviceType"`
	Date        string `json:"date"`
}

type CalendarEvent struct {
	EventID     string `json:"eventId"`
	MeetingLink string `json:"meetingLink"`
}

type CalendarClient interface {
	CreateEvent(ctx context.Context, idempotencyKey string, req CalendarEventRequest) (*CalendarEvent, error)
}

// HTTPCalendarClient posts events to the scheduling service.
type HTTPCalendarClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPCalendarClient(baseURL, apiKey string, client *http.Client) *HTTPCalendarClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPCalendarClient{baseURL: baseURL, apiKey: apiKey, client: client}
}

func (c *HTTPCalendarClient) CreateEvent(ctx context.Context, idempotencyKey string, req CalendarEventRequest) (*CalendarEvent, error) {
	if c.baseURL == "" {
		return nil, ErrCalendarDisabled
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal calendar request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < calendarMaxRetries; attempt++ {
		if attempt > 0 {
			delay := calendarInitialDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create calendar request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Idempotency-Key", idempotencyKey)
		if c.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("calendar request failed: %w", err)
			continue
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read calendar response: %w", err)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			lastErr = fmt.Errorf("calendar service error (%d): %s", resp.StatusCode, string(respBody))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return nil, lastErr
		}

		var event CalendarEvent
		if err := json.Unmarshal(respBody, &event); err != nil {
			return nil, fmt.Errorf("decode calendar response: %w", err)
		}
		if event.EventID == "" {
			return nil, errors.New("calendar service returned no event id")
		}
		return &event, nil
	}
	return nil, lastErr
}

// CalendarHandler books the consultation slot and returns its meeting link.
type CalendarHandler struct {
	client CalendarClient
}

func NewCalendarHandler(client CalendarClient) *CalendarHandler {
	return &CalendarHandler{client: client}
}

func (h *CalendarHandler) Name() string {
	return HandlerCalendar
}

func (h *CalendarHandler) Handle(ctx context.Context, evt PaymentConfirmed) (Artifacts, error) {
	b := evt.Booking
	if b.CalendarEventID != nil {
		return Artifacts{CalendarEventID: b.CalendarEventID, MeetingLink: b.MeetingLink}, nil
	}

	req := CalendarEventRequest{
		BookingID:   b.ID.String(),
		ClientName:  b.ClientName,
		ClientEmail: b.ClientEmail,
		ServiceType: b.ServiceType,
	}
	if !b.BookingDate.IsZero() {
		req.Date = b.BookingDate.Format(time.DateOnly)
	}

	event, err := h.client.CreateEvent(ctx, evt.TransactionID, req)
	if err != nil {
		return Artifacts{}, err
	}

	out := Artifacts{CalendarEventID: &event.EventID}
	if event.MeetingLink != "" {
		out.MeetingLink = &event.MeetingLink
	}
	return out, nil
}
