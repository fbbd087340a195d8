// Package authority holds the HTTP clients for the external signing,
// verification and wallet-sharing services.
package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"agriqcert/internal/platform/metrics"
	"agriqcert/internal/platform/tracer"
	dErrors "agriqcert/pkg/domain-errors"
	"agriqcert/pkg/platform/circuit"
)

const (
	defaultTimeout  = 5 * time.Second
	maxResponseSize = 1 << 20
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures one authority endpoint.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient HTTPDoer
	Breaker    *circuit.Breaker
}

type Option func(*client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *client) {
		c.logger = logger
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *client) {
		c.tracer = t
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *client) {
		c.metrics = m
	}
}

// client is the shared JSON-over-HTTP core of every authority client.
type client struct {
	name    string
	baseURL string
	apiKey  string
	timeout time.Duration
	http    HTTPDoer
	breaker *circuit.Breaker
	tracer  tracer.Tracer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func newClient(name string, cfg Config, opts ...Option) *client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &client{
		name:    name,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		http:    cfg.HTTPClient,
		breaker: cfg.Breaker,
		tracer:  tracer.NewNoop(),
		logger:  slog.Default(),
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.Timeout}
	}
	if c.breaker == nil {
		c.breaker = circuit.New(name)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// post sends body as JSON to path and decodes a 2xx response into out.
// Every failure is an *Error wrapped with CodeExternalService.
func (c *client) post(ctx context.Context, span, path, token string, body, out any) (err error) {
	ctx, sp := c.tracer.Start(ctx, span)
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = string(KindOf(err))
		}
		c.metrics.ObserveAuthorityCall(c.name, outcome, time.Since(start))
		sp.End(err)
	}()

	if !c.breaker.Allow() {
		sp.SetAttributes(tracer.Bool(tracer.AttrBreakerOpen, true))
		return c.fail(&Error{Kind: KindCircuitOpen, Message: "circuit open"})
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return c.fail(&Error{Kind: KindInternal, Message: "failed to marshal request", Err: err})
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return c.fail(&Error{Kind: KindInternal, Message: "failed to create request", Err: err})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return c.fail(&Error{Kind: KindTimeout, Message: "request timeout", Err: err})
		}
		return c.fail(&Error{Kind: KindNetwork, Message: "failed to execute request", Err: err})
	}
	defer resp.Body.Close()
	sp.SetAttributes(tracer.Int(tracer.AttrHTTPStatus, resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return c.fail(&Error{Kind: KindBadResponse, Message: "failed to read response", Err: err})
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return c.fail(&Error{Kind: KindAuthentication, Message: "token rejected", StatusCode: resp.StatusCode})
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return c.fail(&Error{Kind: KindUpstream, Message: "unexpected status", StatusCode: resp.StatusCode})
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return c.fail(&Error{Kind: KindBadResponse, Message: "failed to parse response", Err: err})
	}
	c.breaker.RecordSuccess()
	return nil
}

func (c *client) fail(e *Error) error {
	e.Client = c.name
	switch {
	case e.Kind == KindCircuitOpen:
	case e.countsAsFailure():
		if c.breaker.RecordFailure() {
			c.logger.Warn("authority circuit opened", "client", c.name)
		}
	default:
		// The remote answered; a rejected request says nothing about its health.
		c.breaker.RecordSuccess()
	}
	return dErrors.Wrap(e, dErrors.CodeExternalService, fmt.Sprintf("%s call failed", c.name))
}

// badResponse reports a 2xx response whose body lacks a required field.
func (c *client) badResponse(msg string) error {
	return c.fail(&Error{Kind: KindBadResponse, Message: msg})
}
