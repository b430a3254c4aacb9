// Package resilience provides the circuit breaker guarding calls to the
// banking service. Requests are never retried: a failure is reported to the
// user, who decides whether to try again.
package resilience

import (
	"errors"
	"time"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"

	"github.com/sony/gobreaker"
)

// Config holds circuit breaker parameters.
type Config struct {
	MaxRequests  uint32        // half-open: allowed probe requests
	Interval     time.Duration // closed: counter reset period
	OpenTimeout  time.Duration // open -> half-open
	MinRequests  uint32        // requests before the ratio is considered
	FailureRatio float64
}

// DefaultConfig mirrors the config package defaults.
func DefaultConfig() Config {
	return Config{
		MaxRequests:  3,
		Interval:     30 * time.Second,
		OpenTimeout:  10 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
}

// StateObserver is notified on every breaker state change.
type StateObserver func(name, state string)

// NewCircuitBreaker creates a circuit breaker. Only transport failures trip
// it: a service that answers with an error payload is healthy.
func NewCircuitBreaker(name string, cfg Config, observe StateObserver) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		IsSuccessful: IsBreakerSuccess,
	}
	if observe != nil {
		settings.OnStateChange = func(name string, _ gobreaker.State, to gobreaker.State) {
			observe(name, to.String())
		}
	}
	cb := gobreaker.NewCircuitBreaker(settings)
	if observe != nil {
		observe(name, cb.State().String())
	}
	return cb
}

// IsBreakerSuccess reports whether err should count as a healthy call.
func IsBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var service *domain.ErrService
	return errors.As(err, &service)
}

// IsOpen reports whether err came from a breaker rejecting the call.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
