package memory

import (
	"context"
	"sync"

	"unlistedtube/internal/core/domain"
	"unlistedtube/internal/core/ports"
	"unlistedtube/pkg/tracing"
	"unlistedtube/pkg/utils"
)

// MemoryVideoRepository keeps records in insertion order for tests and
// single-process development runs.
type MemoryVideoRepository struct {
	videos []domain.Video
	mu     sync.RWMutex
}

func NewMemoryVideoRepository() ports.VideoRepository {
	return &MemoryVideoRepository{}
}

func (r *MemoryVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	_, span := tracing.TraceStoreOperation(ctx, "memory", "create")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	video.ID = domain.VideoID(utils.GenerateID())
	r.videos = append(r.videos, *video)
	span.SetAttributes(tracing.VideoIDKey.String(string(video.ID)))
	return nil
}

func (r *MemoryVideoRepository) List(ctx context.Context) ([]*domain.Video, error) {
	_, span := tracing.TraceStoreOperation(ctx, "memory", "list")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	videos := make([]*domain.Video, 0, len(r.videos))
	for i := range r.videos {
		v := r.videos[i]
		videos = append(videos, &v)
	}
	span.SetAttributes(tracing.ResultCountKey.Int(len(videos)))
	return videos, nil
}

func (r *MemoryVideoRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
