package reliability

import (
	"context"
	"errors"
	"fmt"

	"unlistedtube/internal/core/domain"
	"unlistedtube/internal/core/ports"
	"unlistedtube/pkg/circuitbreaker"

	"go.uber.org/zap"
)

// VideoRepositoryWrapper guards a VideoRepository with a circuit breaker.
// Operations are never retried; while the breaker is open they fail at once.
type VideoRepositoryWrapper struct {
	repo           ports.VideoRepository
	circuitBreaker *circuitbreaker.CircuitBreaker
	logger         *zap.SugaredLogger
}

// NewVideoRepositoryWrapper creates a new wrapper with a circuit breaker
func NewVideoRepositoryWrapper(
	repo ports.VideoRepository,
	cbConfig circuitbreaker.Config,
	logger *zap.SugaredLogger,
) *VideoRepositoryWrapper {
	wrapper := &VideoRepositoryWrapper{
		repo:           repo,
		circuitBreaker: circuitbreaker.New(cbConfig),
		logger:         logger,
	}

	wrapper.circuitBreaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Infow("video store circuit breaker state changed",
			"from", from.String(),
			"to", to.String(),
		)
	})

	return wrapper
}

func (w *VideoRepositoryWrapper) Create(ctx context.Context, video *domain.Video) error {
	return w.execute(ctx, "create", func(ctx context.Context) error {
		return w.repo.Create(ctx, video)
	})
}

func (w *VideoRepositoryWrapper) List(ctx context.Context) ([]*domain.Video, error) {
	var videos []*domain.Video
	err := w.execute(ctx, "list", func(ctx context.Context) error {
		var err error
		videos, err = w.repo.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return videos, nil
}

// Ping bypasses the breaker so readiness reflects the store itself.
func (w *VideoRepositoryWrapper) Ping(ctx context.Context) error {
	return w.repo.Ping(ctx)
}

// State is polled by the readiness check while the breaker is enabled.
func (w *VideoRepositoryWrapper) State() circuitbreaker.State {
	return w.circuitBreaker.GetState()
}

func (w *VideoRepositoryWrapper) execute(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	err := w.circuitBreaker.Execute(ctx, fn)
	if errors.Is(err, circuitbreaker.ErrOpen) {
		w.logger.Warnw("video store operation rejected, circuit open",
			"operation", operation,
		)
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return err
}
