package ports

import (
	"context"

	"unlistedtube/internal/core/domain"
)

// VideoRepository persists video records. Implementations assign the ID on
// Create and return records from List in insertion order.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	List(ctx context.Context) ([]*domain.Video, error)
	Ping(ctx context.Context) error
}
