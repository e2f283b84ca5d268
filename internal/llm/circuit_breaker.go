package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a request
// because the model endpoint has been failing.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds tuning for the breaker around model calls.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures that trip the circuit.
	MaxFailures uint32

	// Timeout is how long the circuit stays open before allowing test requests.
	Timeout time.Duration

	// HalfOpenMaxSuccesses is the number of successes in half-open state
	// required to close the circuit again.
	HalfOpenMaxSuccesses uint32
}

// CircuitBreaker wraps gobreaker for LLM calls. Closed passes requests
// through; after MaxFailures consecutive failures it opens and rejects
// everything until Timeout elapses, then probes in half-open state.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

// NewCircuitBreaker creates a breaker with defaults suited to model endpoints:
// 3 consecutive failures trip it, it stays open for 30 seconds, and 2
// half-open successes close it.
func NewCircuitBreaker() *CircuitBreaker {
	return NewCircuitBreakerWithConfig(CircuitBreakerConfig{
		MaxFailures:          3,
		Timeout:              30 * time.Second,
		HalfOpenMaxSuccesses: 2,
	})
}

// NewCircuitBreakerWithConfig creates a breaker with custom settings.
func NewCircuitBreakerWithConfig(config CircuitBreakerConfig) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        "llm",
		MaxRequests: config.HalfOpenMaxSuccesses,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
	}
	return &CircuitBreaker{breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker. Returns ErrCircuitOpen immediately
// when the circuit is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	result, err := cb.breaker.Execute(func() (interface{}, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}
	return result, nil
}

// State returns "closed", "open", or "half-open" for status reporting.
func (cb *CircuitBreaker) State() string {
	switch cb.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}
