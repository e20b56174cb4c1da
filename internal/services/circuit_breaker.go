package services

import (
	"errors"
	"sync"
	"time"

	"household-ledger/internal/models"
)

var (
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

const (
	StateClosed models.CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

type CircuitBreakerConfig struct {
	// Name labels the breaker in metrics
	Name            string
	MaxFailures     int
	ResetTimeout    time.Duration
	HalfOpenMaxSucc int
}

// DefaultCircuitBreakerConfig trips after 5 consecutive failures and probes again after 30s
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:            name,
		MaxFailures:     5,
		ResetTimeout:    30 * time.Second,
		HalfOpenMaxSucc: 1,
	}
}

type CircuitBreaker struct {
	mu                sync.RWMutex
	config            CircuitBreakerConfig
	metrics           MetricsRecorderInterface
	state             models.CircuitBreakerState
	failures          int
	halfOpenSuccesses int
	lastFailureTime   time.Time
	now               func() time.Time
}

// NewCircuitBreaker creates a closed breaker. metrics may be nil.
func NewCircuitBreaker(config CircuitBreakerConfig, metrics MetricsRecorderInterface) CircuitBreakerInterface {
	return &CircuitBreaker{
		config:  config,
		metrics: metrics,
		state:   StateClosed,
		now:     time.Now,
	}
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.now().Sub(cb.lastFailureTime) > cb.config.ResetTimeout {
		cb.setState(StateHalfOpen)
		return false
	}

	return cb.state == StateOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.halfOpenSuccesses++
		if cb.halfOpenSuccesses >= cb.config.HalfOpenMaxSucc {
			cb.setState(StateClosed)
		}
	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = cb.now()

	switch cb.state {
	case StateHalfOpen:
		cb.setState(StateOpen)
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.MaxFailures {
			cb.setState(StateOpen)
		}
	}
}

// setState must be called with mu held
func (cb *CircuitBreaker) setState(state models.CircuitBreakerState) {
	cb.state = state
	cb.halfOpenSuccesses = 0
	if state == StateClosed {
		cb.failures = 0
	}

	if cb.metrics != nil {
		cb.metrics.RecordGauge(MetricCircuitBreakerState, float64(state), map[string]string{"service": cb.config.Name})
	}
}

func (cb *CircuitBreaker) GetState() models.CircuitBreakerState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

func (cb *CircuitBreaker) GetFailureCount() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failures
}
