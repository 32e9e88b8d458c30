// Package api is the thin client of the RevoMotors REST API. It owns the
// base URL, timeouts, bearer injection, status mapping and the resilience
// wrapping of every call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/infra/observability"
	"github.com/boddenberg/revomotors-web/internal/infra/resilience"
)

var tracer = otel.Tracer("api")

// ServiceName labels API failures in errors and logs.
const ServiceName = "revomotors-api"

const maxResponseBytes = 10 << 20

// Client calls the RevoMotors API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// New creates a Client. baseURL must not end with a slash.
func New(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		metrics:    metrics,
		logger:     logger,
	}
}

// call describes one API request.
type call struct {
	method   string
	path     string
	endpoint string // metric/span label, e.g. "GET /api/leads/{id}"
	query    url.Values
	token    string
	body     any        // JSON encoded when set
	form     url.Values // form encoded when set, takes precedence over body
	resource string     // for ErrNotFound
	id       string
}

// do executes c inside the circuit breaker. Reads are retried on transport
// errors and 5xx; writes are attempted exactly once.
func (c *Client) do(ctx context.Context, req call, out any) error {
	ctx, span := tracer.Start(ctx, "api "+req.endpoint)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", req.method),
		attribute.String("api.endpoint", req.endpoint),
	)

	payload, contentType, err := encodeBody(req)
	if err != nil {
		return err
	}

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return &domain.ErrTimeout{Operation: req.endpoint}
	}
	defer c.bulkhead.Release()

	start := time.Now()
	_, err = c.cb.Execute(func() (any, error) {
		attempt := func() error { return c.attempt(ctx, req, payload, contentType, out) }
		if req.method != http.MethodGet {
			return nil, attempt()
		}
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, attempt)
	})
	c.metrics.RecordAPICall(req.endpoint, time.Since(start))

	if err != nil {
		err = c.classify(req, err)
		c.metrics.IncrAPIError(req.endpoint, errorKind(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func encodeBody(req call) ([]byte, string, error) {
	switch {
	case req.form != nil:
		return []byte(req.form.Encode()), "application/x-www-form-urlencoded", nil
	case req.body != nil:
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, "", fmt.Errorf("encode %s body: %w", req.endpoint, err)
		}
		return b, "application/json", nil
	default:
		return nil, "application/json", nil
	}
}

func (c *Client) attempt(ctx context.Context, req call, payload []byte, contentType string, out any) error {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return resilience.Permanent(err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("api: request failed",
			zap.String("endpoint", req.endpoint),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("api: non-2xx response",
			zap.String("endpoint", req.endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return statusError(req, resp.StatusCode, raw)
	}

	c.logger.Debug("api: request OK",
		zap.String("endpoint", req.endpoint),
		zap.Int("status", resp.StatusCode),
	)

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resilience.Permanent(&domain.ErrExternalService{
			Service: ServiceName,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("decode %s: %w", req.endpoint, err),
		})
	}
	return nil
}

// statusError maps a non-2xx response onto the domain error types.
// Only 5xx stays retryable.
func statusError(req call, status int, raw []byte) error {
	detail := Detail(raw)
	switch {
	case status == http.StatusUnauthorized:
		return resilience.Permanent(&domain.ErrUnauthorized{Message: detail})
	case status == http.StatusForbidden:
		return resilience.Permanent(&domain.ErrForbidden{Action: req.endpoint})
	case status == http.StatusNotFound:
		resource := req.resource
		if resource == "" {
			resource = req.path
		}
		return resilience.Permanent(&domain.ErrNotFound{Resource: resource, ID: req.id})
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		if detail == "" {
			detail = http.StatusText(status)
		}
		return resilience.Permanent(&domain.ErrValidation{Message: detail})
	case status >= 500:
		return &domain.ErrExternalService{Service: ServiceName, Status: status, Err: errors.New(orStatusText(detail, status))}
	default:
		return resilience.Permanent(&domain.ErrExternalService{Service: ServiceName, Status: status, Err: errors.New(orStatusText(detail, status))})
	}
}

func orStatusText(detail string, status int) string {
	if detail != "" {
		return detail
	}
	return http.StatusText(status)
}

// Detail extracts the FastAPI "detail" field of an error body. Non-string
// details are returned as compact JSON text; a body without one yields "".
func Detail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 || string(body.Detail) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, body.Detail); err != nil {
		return string(body.Detail)
	}
	return buf.String()
}

// classify turns whatever came out of the breaker into a domain error.
func (c *Client) classify(req call, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: ServiceName}
	}
	err = resilience.Unwrap(err)

	var (
		unauthorized *domain.ErrUnauthorized
		forbidden    *domain.ErrForbidden
		notFound     *domain.ErrNotFound
		validation   *domain.ErrValidation
		external     *domain.ErrExternalService
	)
	switch {
	case errors.As(err, &unauthorized), errors.As(err, &forbidden), errors.As(err, &notFound),
		errors.As(err, &validation), errors.As(err, &external):
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.ErrTimeout{Operation: req.endpoint}
	}
	return &domain.ErrExternalService{Service: ServiceName, Err: err}
}

// errorKind is the metric label for err.
func errorKind(err error) string {
	var (
		unauthorized *domain.ErrUnauthorized
		forbidden    *domain.ErrForbidden
		notFound     *domain.ErrNotFound
		validation   *domain.ErrValidation
		circuit      *domain.ErrCircuitOpen
		external     *domain.ErrExternalService
	)
	switch {
	case errors.As(err, &unauthorized):
		return observability.KindUnauthorized
	case errors.As(err, &forbidden):
		return observability.KindForbidden
	case errors.As(err, &notFound):
		return observability.KindNotFound
	case errors.As(err, &validation):
		return observability.KindValidation
	case errors.As(err, &circuit):
		return observability.KindCircuitOpen
	case errors.As(err, &external) && external.Status != 0:
		return observability.KindUpstream
	default:
		return observability.KindTransport
	}
}

// Ping probes GET /health and reports the round trip.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return time.Since(start), err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return time.Since(start), fmt.Errorf("health returned status %d", resp.StatusCode)
	}
	return time.Since(start), nil
}
