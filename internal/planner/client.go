package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	planPath   = "/plan"
	healthPath = "/health"

	// RequestIDHeader tags every call so service logs can be matched to ours.
	RequestIDHeader = "X-Request-ID"

	tracerName = "github.com/kingrea/whybot/internal/planner"
)

// Logger is the minimal logging surface the client writes to.
type Logger interface {
	Printf(format string, args ...any)
}

// Client talks to the planning service. One call is one request/response;
// there is no retry.
type Client struct {
	settings Settings
	http     *http.Client
	logger   Logger
	tracer   trace.Tracer
	newID    func() string
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithRequestIDs lets tests pin request identifiers.
func WithRequestIDs(gen func() string) Option {
	return func(c *Client) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// NewClient prepares a client for the given settings.
func NewClient(settings Settings, opts ...Option) *Client {
	settings.Normalize()
	c := &Client{
		settings: settings,
		http:     &http.Client{},
		logger:   nopLogger{},
		tracer:   otel.Tracer(tracerName),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Settings returns the normalized settings in use.
func (c *Client) Settings() Settings { return c.settings }

// Plan sends one planning request and decodes the answer. Transport errors,
// non-2xx replies and undecodable bodies come back as ErrTransport,
// *StatusError and ErrMalformed respectively.
func (c *Client) Plan(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("planner: encode request: %w", err)
	}
	id := c.newID()
	ctx, span := c.tracer.Start(ctx, "planner.plan", trace.WithAttributes(
		attribute.String("whybot.request_id", id),
		attribute.Int("whybot.obstacles", len(req.Obstacles)),
		attribute.Int("whybot.hazards", len(req.Hazards)),
	))
	defer span.End()

	started := time.Now()
	body, err := c.do(ctx, http.MethodPost, planPath, id, payload)
	if err != nil {
		c.fail(span, id, err)
		return Result{}, err
	}
	res, err := decodeResult(body)
	if err != nil {
		c.fail(span, id, err)
		return Result{}, err
	}
	span.SetAttributes(
		attribute.Bool("whybot.found", res.Found),
		attribute.Int("whybot.steps", res.Steps),
	)
	c.logger.Printf("planner: %s found=%t steps=%d cost=%.2f in %s",
		id, res.Found, res.Steps, res.TotalCost, time.Since(started).Round(time.Millisecond))
	return res, nil
}

// Health probes the service's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	id := c.newID()
	ctx, span := c.tracer.Start(ctx, "planner.health")
	defer span.End()
	body, err := c.do(ctx, http.MethodGet, healthPath, id, nil)
	if err != nil {
		c.fail(span, id, err)
		return err
	}
	var status struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &status); err != nil {
		err = fmt.Errorf("%w: %v", ErrMalformed, err)
		c.fail(span, id, err)
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(status.Status), "ok") {
		err = fmt.Errorf("%w: health status %q", ErrMalformed, status.Status)
		c.fail(span, id, err)
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, id string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.settings.Timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.settings.Endpoint(path), reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, id)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.settings.MaxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	if int64(len(body)) > c.settings.MaxResponseBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformed, c.settings.MaxResponseBytes)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: snippet(body)}
	}
	return body, nil
}

func (c *Client) fail(span trace.Span, id string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.Printf("planner: %s failed: %v", id, err)
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "…"
	}
	return s
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
