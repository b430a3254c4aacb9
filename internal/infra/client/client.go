// Package client implements the REST client of the banking service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/observability"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

const (
	serviceName  = "bank"
	maxBodyBytes = 1 << 20
)

// BankClient calls the banking service. It implements port.BankingAPI and
// port.Authenticator. It never retries; every call goes through the
// circuit breaker.
type BankClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewBankClient creates a new BankClient. baseURL includes any API prefix,
// e.g. http://localhost:5000/api.
func NewBankClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, metrics *observability.Metrics, logger *zap.Logger) *BankClient {
	return &BankClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		metrics:    metrics,
		logger:     logger,
	}
}

// BreakerName returns the name of the circuit breaker in use.
func (c *BankClient) BreakerName() string {
	return c.cb.Name()
}

// BreakerState returns closed, half-open or open.
func (c *BankClient) BreakerState() string {
	return c.cb.State().String()
}

// call runs one request through the breaker and records its outcome.
func (c *BankClient) call(ctx context.Context, op, method, path, token string, body, out any) error {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("bank.operation", op),
	)

	start := time.Now()
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.do(ctx, method, path, token, body, out)
	})

	outcome := observability.OutcomeOK
	if err != nil {
		var service *domain.ErrService
		var transport *domain.ErrTransport
		switch {
		case errors.As(err, &service):
			outcome = observability.OutcomeService
		case errors.As(err, &transport):
			outcome = observability.OutcomeTransport
		default:
			// breaker rejections and anything else without a response
			outcome = observability.OutcomeTransport
			err = &domain.ErrTransport{Service: serviceName, Err: err}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		c.logger.Warn("bank call failed",
			zap.String("operation", op),
			zap.String("path", path),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
	}
	c.metrics.RecordFetch(op, outcome, time.Since(start))
	return err
}

// do performs the HTTP exchange. 2xx bodies decode into out; any other
// status must carry {message} to count as a service error.
func (c *BankClient) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &domain.ErrTransport{Service: serviceName, Err: err}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &domain.ErrTransport{Service: serviceName, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ErrTransport{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &domain.ErrTransport{Service: serviceName, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var msg domain.MessageResponse
		if err := json.Unmarshal(data, &msg); err != nil {
			return &domain.ErrTransport{
				Service: serviceName,
				Err:     fmt.Errorf("status %d with unreadable body: %w", resp.StatusCode, err),
			}
		}
		return &domain.ErrService{Service: serviceName, Status: resp.StatusCode, Message: msg.Message}
	}

	c.logger.Debug("bank call ok",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
	)

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.ErrTransport{Service: serviceName, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
