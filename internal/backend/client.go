// Package backend is the REST client for the clinic scheduling service that
// owns appointment storage and cancellation rules.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/patient-portal/internal/appointments"
	"github.com/wolfman30/patient-portal/internal/observability/metrics"
	"github.com/wolfman30/patient-portal/pkg/logging"
)

const (
	defaultBaseURL = "http://localhost:8081"

	// PatientHeader carries the patient id on cancellation requests.
	PatientHeader = "usuCodigo"

	opList   = "list_by_patient"
	opCancel = "cancel"
)

// ErrUnavailable marks transport and decode failures: the backend could not be
// reached or answered with something unreadable.
var ErrUnavailable = errors.New("backend: unavailable")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: returned %d: %s", e.StatusCode, e.Body)
}

// Client calls the clinic backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
	metrics    *metrics.PortalMetrics
	tracer     trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request. Zero keeps the transport defaults.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d, Transport: c.httpClient.Transport}
		}
	}
}

// WithMetrics records call counts and latency.
func WithMetrics(m *metrics.PortalMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient constructs a backend client for baseURL.
func NewClient(baseURL string, logger *logging.Logger, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
		tracer:     otel.Tracer("patient-portal.internal.backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListByPatient returns the patient's appointments in the order the backend sent them.
func (c *Client) ListByPatient(ctx context.Context, patientID string) ([]appointments.Appointment, error) {
	path := "/agendamentos/usuario/" + url.PathEscape(patientID)

	body, err := c.do(ctx, opList, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	var list []appointments.Appointment
	if len(strings.TrimSpace(string(body))) == 0 {
		return list, nil
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("list appointments: decode response: %w: %w", ErrUnavailable, err)
	}
	return list, nil
}

// Cancel deletes an appointment on behalf of patientID.
func (c *Client) Cancel(ctx context.Context, appointmentID, patientID string) error {
	path := "/agendamentos/" + url.PathEscape(appointmentID)
	headers := http.Header{}
	headers.Set(PatientHeader, patientID)

	if _, err := c.do(ctx, opCancel, http.MethodDelete, path, headers); err != nil {
		return fmt.Errorf("cancel appointment %s: %w", appointmentID, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, headers http.Header) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "backend."+op, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	))
	defer span.End()

	start := time.Now()
	status := "error"
	defer func() {
		c.metrics.ObserveBackend(op, status, time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("http request: %w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	status = strconv.Itoa(resp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("read response: %w: %w", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("backend non-2xx response", "status", resp.StatusCode, "path", path, "body", truncate(string(respBody), 300))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
