package ports

import (
	"context"

	"unlistedtube/internal/core/domain"
)

type VideoService interface {
	ListVideos(ctx context.Context) ([]*domain.Video, error)
	AddVideo(ctx context.Context, youtubeID, title string) (*domain.Video, error)
}

// Metrics receives domain events worth counting.
type Metrics interface {
	RecordLogin(success bool)
	RecordSessionCheck(authenticated bool)
	RecordVideoAdded()
	RecordStoreError(operation string)
}
