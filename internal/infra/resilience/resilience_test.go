package resilience_test

import (
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
)

func testConfig() resilience.Config {
	return resilience.Config{
		MaxRequests:  1,
		Interval:     time.Minute,
		OpenTimeout:  time.Minute,
		MinRequests:  2,
		FailureRatio: 0.5,
	}
}

func TestCircuitBreaker_TripsOnTransportErrors(t *testing.T) {
	var states []string
	cb := resilience.NewCircuitBreaker("test", testConfig(), func(_, state string) {
		states = append(states, state)
	})

	for i := 0; i < 2; i++ {
		_, _ = cb.Execute(func() (any, error) {
			return nil, &domain.ErrTransport{Service: "bank", Err: errors.New("connection refused")}
		})
	}

	_, err := cb.Execute(func() (any, error) { return "ok", nil })
	if !resilience.IsOpen(err) {
		t.Fatalf("expected open breaker error, got %v", err)
	}
	if len(states) == 0 || states[len(states)-1] != "open" {
		t.Errorf("expected last observed state 'open', got %v", states)
	}
}

func TestCircuitBreaker_IgnoresServiceErrors(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test", testConfig(), nil)

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(func() (any, error) {
			return nil, &domain.ErrService{Service: "bank", Status: 400, Message: "Insufficient funds"}
		})
		var service *domain.ErrService
		if !errors.As(err, &service) {
			t.Fatalf("expected service error to pass through, got %v", err)
		}
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected breaker to stay closed, got %s", cb.State())
	}
}

func TestIsBreakerSuccess(t *testing.T) {
	if !resilience.IsBreakerSuccess(nil) {
		t.Error("nil error should be a success")
	}
	if resilience.IsBreakerSuccess(errors.New("boom")) {
		t.Error("plain error should be a failure")
	}
}
