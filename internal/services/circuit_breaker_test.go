package services

import (
	"testing"
	"time"

	"household-ledger/internal/models"
	"household-ledger/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func newTestBreaker(metrics MetricsRecorderInterface) (*CircuitBreaker, *time.Time) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	breaker := NewCircuitBreaker(CircuitBreakerConfig{
		Name:            "ocr",
		MaxFailures:     3,
		ResetTimeout:    30 * time.Second,
		HalfOpenMaxSucc: 1,
	}, metrics).(*CircuitBreaker)
	breaker.now = func() time.Time { return now }
	return breaker, &now
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	breaker, _ := newTestBreaker(nil)

	breaker.RecordFailure()
	breaker.RecordFailure()
	assert.False(t, breaker.IsOpen())
	assert.Equal(t, 2, breaker.GetFailureCount())

	breaker.RecordFailure()
	assert.True(t, breaker.IsOpen())
	assert.Equal(t, StateOpen, breaker.GetState())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	breaker, _ := newTestBreaker(nil)

	breaker.RecordFailure()
	breaker.RecordFailure()
	breaker.RecordSuccess()
	breaker.RecordFailure()

	assert.False(t, breaker.IsOpen())
	assert.Equal(t, 1, breaker.GetFailureCount())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	breaker, now := newTestBreaker(nil)
	for i := 0; i < 3; i++ {
		breaker.RecordFailure()
	}

	*now = now.Add(31 * time.Second)
	assert.False(t, breaker.IsOpen())
	assert.Equal(t, StateHalfOpen, breaker.GetState())

	breaker.RecordSuccess()
	assert.Equal(t, StateClosed, breaker.GetState())
	assert.Zero(t, breaker.GetFailureCount())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	breaker, now := newTestBreaker(nil)
	for i := 0; i < 3; i++ {
		breaker.RecordFailure()
	}

	*now = now.Add(time.Minute)
	assert.False(t, breaker.IsOpen())

	breaker.RecordFailure()
	assert.True(t, breaker.IsOpen())
}

func TestCircuitBreaker_ReportsStateGauge(t *testing.T) {
	ctrl := gomock.NewController(t)
	metrics := service_mocks.NewMockMetricsRecorderInterface(ctrl)
	breaker, now := newTestBreaker(metrics)

	gomock.InOrder(
		metrics.EXPECT().RecordGauge(MetricCircuitBreakerState, float64(StateOpen), map[string]string{"service": "ocr"}),
		metrics.EXPECT().RecordGauge(MetricCircuitBreakerState, float64(StateHalfOpen), map[string]string{"service": "ocr"}),
		metrics.EXPECT().RecordGauge(MetricCircuitBreakerState, float64(StateClosed), map[string]string{"service": "ocr"}),
	)

	for i := 0; i < 3; i++ {
		breaker.RecordFailure()
	}
	*now = now.Add(time.Minute)
	breaker.IsOpen()
	breaker.RecordSuccess()
	assert.Equal(t, StateClosed, breaker.GetState())
}

func TestCircuitBreakerState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half_open", StateHalfOpen.String())
	assert.Equal(t, "closed", models.CircuitBreakerState(9).String())
}
