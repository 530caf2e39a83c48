package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without calling the protected function while the
// breaker rejects requests.
var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed   State = iota // requests pass through
	StateOpen                  // requests fail immediately
	StateHalfOpen              // a limited number of trial requests pass through
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type Config struct {
	FailureThreshold    int           // consecutive failures before opening
	SuccessThreshold    int           // successes in half-open before closing
	Timeout             time.Duration // open duration before probing
	MaxRequestsHalfOpen int           // concurrent trial requests allowed in half-open
}

func DefaultConfig() Config {
	return Config{
		FailureThreshold:    5,
		SuccessThreshold:    1,
		Timeout:             15 * time.Second,
		MaxRequestsHalfOpen: 1,
	}
}

type CircuitBreaker struct {
	config Config
	now    func() time.Time

	mu               sync.Mutex
	state            State
	failureCount     int
	successCount     int
	halfOpenRequests int
	generation       uint64
	stateChangeTime  time.Time

	onStateChange func(from, to State)
}

func New(config Config) *CircuitBreaker {
	if config.MaxRequestsHalfOpen <= 0 {
		config.MaxRequestsHalfOpen = 1
	}
	return &CircuitBreaker{
		config:          config,
		now:             time.Now,
		state:           StateClosed,
		stateChangeTime: time.Now(),
	}
}

// OnStateChange registers a callback invoked asynchronously on transitions.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Execute runs fn unless the breaker is open. The error of fn is returned
// unchanged so callers can still classify it.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	adm, ok := cb.allowRequest()
	if !ok {
		return ErrOpen
	}

	err := fn(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		cb.onFailure()
		return err
	}
	if err != nil {
		// caller went away; says nothing about the backend
		cb.release(adm)
		return err
	}

	cb.onSuccess(adm)
	return nil
}

// admission records how a request was let through. Only requests admitted
// in the current half-open period hold a trial slot.
type admission struct {
	trial      bool
	generation uint64
}

func (cb *CircuitBreaker) allowRequest() (admission, bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.stateChangeTime) < cb.config.Timeout {
			return admission{}, false
		}
		cb.transitionTo(StateHalfOpen)
	}

	if cb.state == StateHalfOpen {
		if cb.halfOpenRequests >= cb.config.MaxRequestsHalfOpen {
			return admission{}, false
		}
		cb.halfOpenRequests++
		return admission{trial: true, generation: cb.generation}, true
	}

	return admission{generation: cb.generation}, true
}

// ownsTrialSlot must be called with mu held.
func (cb *CircuitBreaker) ownsTrialSlot(adm admission) bool {
	return adm.trial && adm.generation == cb.generation && cb.state == StateHalfOpen
}

func (cb *CircuitBreaker) release(adm admission) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.ownsTrialSlot(adm) && cb.halfOpenRequests > 0 {
		cb.halfOpenRequests--
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.successCount = 0

	switch cb.state {
	case StateClosed:
		if cb.failureCount >= cb.config.FailureThreshold {
			cb.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		cb.transitionTo(StateOpen)
	}
}

func (cb *CircuitBreaker) onSuccess(adm admission) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateHalfOpen {
		cb.failureCount = 0
		return
	}
	// a request admitted before the breaker opened says nothing about recovery
	if !cb.ownsTrialSlot(adm) {
		return
	}

	cb.successCount++
	if cb.halfOpenRequests > 0 {
		cb.halfOpenRequests--
	}
	if cb.successCount >= cb.config.SuccessThreshold {
		cb.transitionTo(StateClosed)
	}
}

// transitionTo must be called with mu held.
func (cb *CircuitBreaker) transitionTo(newState State) {
	if cb.state == newState {
		return
	}

	oldState := cb.state
	cb.state = newState
	cb.generation++
	cb.stateChangeTime = cb.now()
	cb.failureCount = 0
	cb.successCount = 0
	cb.halfOpenRequests = 0

	if cb.onStateChange != nil {
		go cb.onStateChange(oldState, newState)
	}
}

func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
