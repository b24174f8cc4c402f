package coach

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// circuitState represents the state of a circuit breaker
type circuitState int

const (
	stateClosed   circuitState = iota // Normal operation
	stateOpen                         // Upstream failing, calls short-circuit
	stateHalfOpen                     // One trial call allowed
)

func (s circuitState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// circuitBreaker tracks consecutive proxy failures per model and stops calling
// a model that keeps failing until openDuration has passed. Keys are limited to
// the proxy client's allowed models.
type circuitBreaker struct {
	failures         map[string]int
	trial            map[string]bool
	lastFailure      map[string]time.Time
	state            map[string]circuitState
	logger           *slog.Logger
	now              func() time.Time
	failureThreshold int
	openDuration     time.Duration
	mu               sync.Mutex
}

func newCircuitBreaker(logger *slog.Logger) *circuitBreaker {
	return &circuitBreaker{
		failureThreshold: 3,
		openDuration:     2 * time.Minute,
		failures:         make(map[string]int),
		lastFailure:      make(map[string]time.Time),
		state:            make(map[string]circuitState),
		trial:            make(map[string]bool),
		logger:           logger,
		now:              time.Now,
	}
}

// canAttempt reports whether a call for key may go out. An open circuit turns
// half-open once openDuration has passed.
func (cb *circuitBreaker) canAttempt(key string) (bool, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state[key] {
	case stateClosed:
		return true, nil
	case stateHalfOpen:
		if cb.trial[key] {
			return false, fmt.Errorf("circuit half-open for model %q, trial call in flight", key)
		}
		cb.trial[key] = true
		return true, nil
	}

	lastFail := cb.lastFailure[key]
	if cb.now().Sub(lastFail) > cb.openDuration {
		cb.setState(key, stateHalfOpen)
		cb.trial[key] = true
		return true, nil
	}
	return false, fmt.Errorf("circuit open for model %q (failures: %d, next retry: %s)",
		key, cb.failures[key], lastFail.Add(cb.openDuration).Format("15:04:05"))
}

func (cb *circuitBreaker) recordSuccess(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	delete(cb.failures, key)
	delete(cb.lastFailure, key)
	delete(cb.trial, key)
	cb.setState(key, stateClosed)
}

// abandonTrial frees the half-open trial slot when the call ended without a verdict
func (cb *circuitBreaker) abandonTrial(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	delete(cb.trial, key)
}

func (cb *circuitBreaker) recordFailure(key string, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures[key]++
	cb.lastFailure[key] = cb.now()
	delete(cb.trial, key)

	// A failed half-open trial reopens immediately
	if cb.failures[key] >= cb.failureThreshold || cb.state[key] == stateHalfOpen {
		cb.setState(key, stateOpen)
		return
	}
	cb.logger.Warn("coach proxy failure",
		"model", key,
		"failures", cb.failures[key],
		"threshold", cb.failureThreshold,
		"error", err)
}

// setState must be called with the lock held
func (cb *circuitBreaker) setState(key string, next circuitState) {
	prev := cb.state[key]
	if prev == next {
		return
	}
	cb.state[key] = next
	cb.logger.Info("coach circuit state changed",
		"model", key,
		"from", prev.String(),
		"to", next.String(),
		"failures", cb.failures[key])
}
