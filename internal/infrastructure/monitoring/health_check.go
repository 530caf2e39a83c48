package monitoring

import (
	"context"
	"sync"
	"time"

	"unlistedtube/internal/core/ports"
	"unlistedtube/pkg/circuitbreaker"
)

type HealthChecker struct {
	checks []HealthCheck
	mu     sync.RWMutex
}

type HealthCheck struct {
	Name    string
	Check   func(ctx context.Context) error
	Timeout time.Duration
}

// HealthStatus is served on /ready. Failure causes stay in Errors, which is
// not serialized.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Errors    map[string]error  `json:"-"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make([]HealthCheck, 0),
	}
}

func (h *HealthChecker) AddCheck(name string, check func(ctx context.Context) error, timeout time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.checks = append(h.checks, HealthCheck{
		Name:    name,
		Check:   check,
		Timeout: timeout,
	})
}

// AddRepositoryCheck adds a check that pings the video store
func (h *HealthChecker) AddRepositoryCheck(repo ports.VideoRepository, timeout time.Duration) {
	h.AddCheck("video_store", repo.Ping, timeout)
}

// AddCircuitBreakerCheck reports unhealthy while the named breaker is open.
// Half-open counts as healthy.
func (h *HealthChecker) AddCircuitBreakerCheck(name string, state func() circuitbreaker.State) {
	h.AddCheck(name, func(context.Context) error {
		if state() == circuitbreaker.StateOpen {
			return circuitbreaker.ErrOpen
		}
		return nil
	}, 0)
}

func (h *HealthChecker) CheckAll(ctx context.Context) HealthStatus {
	h.mu.RLock()
	checks := make([]HealthCheck, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks:    make(map[string]string, len(checks)),
		Errors:    make(map[string]error),
	}

	for _, check := range checks {
		if err := runCheck(ctx, check); err != nil {
			status.Status = "unhealthy"
			status.Checks[check.Name] = "unhealthy"
			status.Errors[check.Name] = err
			continue
		}
		status.Checks[check.Name] = "healthy"
	}

	return status
}

func runCheck(ctx context.Context, check HealthCheck) error {
	if check.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, check.Timeout)
		defer cancel()
	}
	return check.Check(ctx)
}
