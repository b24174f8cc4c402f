package coach

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAtThreshold(t *testing.T) {
	cb := newCircuitBreaker(slog.Default())
	model := "coach-1"

	for i := 0; i < cb.failureThreshold-1; i++ {
		cb.recordFailure(model, fmt.Errorf("error %d", i))
	}
	ok, err := cb.canAttempt(model)
	require.True(t, ok, "closed below threshold: %v", err)

	cb.recordFailure(model, fmt.Errorf("final error"))
	ok, err = cb.canAttempt(model)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestCircuitBreaker_HalfOpenAfterDuration(t *testing.T) {
	cb := newCircuitBreaker(slog.Default())
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }
	model := "coach-1"

	for i := 0; i < cb.failureThreshold; i++ {
		cb.recordFailure(model, fmt.Errorf("error %d", i))
	}
	ok, _ := cb.canAttempt(model)
	require.False(t, ok)

	now = now.Add(cb.openDuration + time.Second)
	ok, _ = cb.canAttempt(model)
	require.True(t, ok)
	assert.Equal(t, stateHalfOpen, cb.state[model])

	// Failed trial reopens
	cb.recordFailure(model, fmt.Errorf("still down"))
	ok, _ = cb.canAttempt(model)
	assert.False(t, ok)
}

func TestCircuitBreaker_SuccessResets(t *testing.T) {
	cb := newCircuitBreaker(slog.Default())
	model := "coach-1"

	cb.recordFailure(model, fmt.Errorf("error 1"))
	cb.recordFailure(model, fmt.Errorf("error 2"))
	cb.recordSuccess(model)

	assert.Zero(t, cb.failures[model])
	ok, _ := cb.canAttempt(model)
	assert.True(t, ok)
}

func TestCircuitBreaker_ModelsAreIndependent(t *testing.T) {
	cb := newCircuitBreaker(slog.Default())

	for i := 0; i < cb.failureThreshold; i++ {
		cb.recordFailure("model-a", fmt.Errorf("error"))
	}

	okA, _ := cb.canAttempt("model-a")
	okB, _ := cb.canAttempt("model-b")
	assert.False(t, okA)
	assert.True(t, okB)
}

func TestCircuitBreaker_HalfOpenAllowsOneTrial(t *testing.T) {
	cb := newCircuitBreaker(slog.Default())
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }
	model := "coach-1"

	for i := 0; i < cb.failureThreshold; i++ {
		cb.recordFailure(model, fmt.Errorf("error %d", i))
	}
	now = now.Add(cb.openDuration + time.Second)

	ok, _ := cb.canAttempt(model)
	require.True(t, ok, "first call after the open window is the trial")
	ok, err := cb.canAttempt(model)
	assert.False(t, ok, "no second call while the trial is in flight")
	assert.Error(t, err)

	// A trial abandoned by the caller frees the slot
	cb.abandonTrial(model)
	ok, _ = cb.canAttempt(model)
	require.True(t, ok)

	cb.recordSuccess(model)
	assert.Equal(t, stateClosed, cb.state[model])
	for i := 0; i < 3; i++ {
		ok, _ = cb.canAttempt(model)
		assert.True(t, ok)
	}
}
