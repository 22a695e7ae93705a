// Package backend is the HTTP client of the rental backend of record.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/urbandrives/storefront/internal/domain/rental"
	"github.com/urbandrives/storefront/internal/platform/apperror"
	"github.com/urbandrives/storefront/internal/platform/metrics"
)

const maxErrorBody = 64 << 10

// Client implements rental.Gateway over the backend's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *zap.Logger
}

// NewClient creates a Client. Every call acquires its own token from tokens.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     logger,
	}
}

var _ rental.Gateway = (*Client)(nil)

// GetVehicle fetches one vehicle.
func (c *Client) GetVehicle(ctx context.Context, id int64) (*rental.Vehicle, error) {
	var v rental.Vehicle
	path := "/api/cars/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, "get_vehicle", http.MethodGet, path, nil, &v); err != nil {
		return nil, translate(err, &resource{entity: "Car", id: strconv.FormatInt(id, 10), redirect: "/cars"})
	}
	if err := v.Validate(); err != nil {
		return nil, apperror.NewUpstreamError("get_vehicle", 0, err)
	}
	return &v, nil
}

// ListVehicles lists the catalog. Available-only listings may be narrowed by
// location and by a date range.
func (c *Client) ListVehicles(ctx context.Context, filter rental.VehicleFilter) ([]rental.Vehicle, error) {
	path := "/api/cars"
	q := url.Values{}
	if filter.AvailableOnly {
		path = "/api/cars/available"
		if filter.Range.IsComplete() {
			path = "/api/cars/available/dates"
			q.Set("startDate", filter.Range.From.String())
			q.Set("endDate", filter.Range.To.String())
		}
		if filter.Location != "" {
			q.Set("location", filter.Location)
		}
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var vehicles []rental.Vehicle
	if err := c.do(ctx, "list_vehicles", http.MethodGet, path, nil, &vehicles); err != nil {
		return nil, translate(err, nil)
	}
	for i := range vehicles {
		if err := vehicles[i].Validate(); err != nil {
			return nil, apperror.NewUpstreamError("list_vehicles", 0, err)
		}
	}
	return vehicles, nil
}

// UpdateVehicleStatus changes a vehicle's fleet status. The backend's admin
// update replaces the whole record, so the current record is read first.
func (c *Client) UpdateVehicleStatus(ctx context.Context, id int64, status rental.VehicleStatus) (*rental.Vehicle, error) {
	current, err := c.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	current.Status = status

	var updated rental.Vehicle
	path := "/api/admin/cars/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, "update_vehicle", http.MethodPut, path, current, &updated); err != nil {
		return nil, translate(err, &resource{entity: "Car", id: strconv.FormatInt(id, 10), redirect: "/admin/cars"})
	}
	if err := updated.Validate(); err != nil {
		return nil, apperror.NewUpstreamError("update_vehicle", 0, err)
	}
	return &updated, nil
}

// CreateBooking submits req. A success reply without a positive id is an error.
func (c *Client) CreateBooking(ctx context.Context, req rental.BookingRequest) (*rental.Booking, error) {
	var b rental.Booking
	if err := c.do(ctx, "create_booking", http.MethodPost, "/api/bookings", newCreateBookingBody(req), &b); err != nil {
		return nil, translate(err, &resource{entity: "Car", id: strconv.FormatInt(req.VehicleID, 10), redirect: "/cars"})
	}
	if err := b.Validate(); err != nil {
		return nil, apperror.NewUpstreamError("create_booking", 0, err)
	}
	return &b, nil
}

// GetBooking fetches one booking.
func (c *Client) GetBooking(ctx context.Context, id int64) (*rental.Booking, error) {
	var b rental.Booking
	path := "/api/bookings/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, "get_booking", http.MethodGet, path, nil, &b); err != nil {
		return nil, translate(err, &resource{entity: "Booking", id: strconv.FormatInt(id, 10), redirect: "/booking"})
	}
	if err := b.Validate(); err != nil {
		return nil, apperror.NewUpstreamError("get_booking", 0, err)
	}
	return &b, nil
}

// ListBookings lists one customer's bookings, or all of them for an empty filter.
func (c *Client) ListBookings(ctx context.Context, filter rental.BookingFilter) ([]rental.Booking, error) {
	path := "/api/bookings"
	if filter.CustomerEmail != "" {
		path = "/api/bookings/customer/" + url.PathEscape(filter.CustomerEmail)
	}
	var bookings []rental.Booking
	if err := c.do(ctx, "list_bookings", http.MethodGet, path, nil, &bookings); err != nil {
		return nil, translate(err, nil)
	}
	for i := range bookings {
		if err := bookings[i].Validate(); err != nil {
			return nil, apperror.NewUpstreamError("list_bookings", 0, err)
		}
	}
	return bookings, nil
}

// CancelBooking asks the backend to cancel id. The reply body is ignored.
func (c *Client) CancelBooking(ctx context.Context, id int64) error {
	path := "/api/bookings/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, "cancel_booking", http.MethodDelete, path, nil, nil); err != nil {
		return translate(err, &resource{entity: "Booking", id: strconv.FormatInt(id, 10), redirect: "/booking"})
	}
	return nil
}

// SalesSummary fetches the revenue report for r.
func (c *Client) SalesSummary(ctx context.Context, r rental.DateRange) (*rental.SalesSummary, error) {
	q := url.Values{}
	if !r.From.IsZero() {
		q.Set("startDate", r.From.String())
	}
	if !r.To.IsZero() {
		q.Set("endDate", r.To.String())
	}
	path := "/api/admin/reports/sales/summary"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var s rental.SalesSummary
	if err := c.do(ctx, "sales_summary", http.MethodGet, path, nil, &s); err != nil {
		return nil, translate(err, nil)
	}
	return &s, nil
}

// do performs one authenticated round trip. The token is acquired first; if
// that fails the backend is never contacted.
func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(op, "token_error").Inc()
		return err
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.BackendDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequests.WithLabelValues(op, "transport_error").Inc()
		c.logger.Warn("backend request failed", zap.String("op", op), zap.Error(err))
		return apperror.NewUpstreamError(op, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.BackendRequests.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
		se := &statusError{op: op, status: resp.StatusCode}
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if len(raw) > 0 && json.Unmarshal(raw, &eb) == nil {
			se.reason = eb.reason()
		}
		c.logger.Info("backend refused request",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("reason", se.reason),
		)
		return se
	}

	metrics.BackendRequests.WithLabelValues(op, "ok").Inc()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.NewUpstreamError(op, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}
