package services

import (
	"context"
	"errors"
	"time"

	"unlistedtube/internal/core/domain"
	"unlistedtube/internal/core/ports"
	apperrors "unlistedtube/pkg/errors"
	"unlistedtube/pkg/validation"
)

type videoService struct {
	repo             ports.VideoRepository
	metrics          ports.Metrics
	operationTimeout time.Duration
}

// NewVideoService builds the video record store on top of repo. A positive
// operationTimeout bounds each repository call; metrics may be nil.
func NewVideoService(repo ports.VideoRepository, metrics ports.Metrics, operationTimeout time.Duration) ports.VideoService {
	return &videoService{
		repo:             repo,
		metrics:          metrics,
		operationTimeout: operationTimeout,
	}
}

func (s *videoService) ListVideos(ctx context.Context) ([]*domain.Video, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	videos, err := s.repo.List(ctx)
	if err != nil {
		s.recordStoreError("list")
		return nil, apperrors.NewInfrastructureError(err, "Internal Server Error").
			WithContext("operation", "list")
	}
	if videos == nil {
		videos = []*domain.Video{}
	}
	return videos, nil
}

func (s *videoService) AddVideo(ctx context.Context, youtubeID, title string) (*domain.Video, error) {
	if err := validation.ValidateVideoInput(youtubeID, title); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	video := &domain.Video{YouTubeID: youtubeID, Title: title}
	if err := s.repo.Create(ctx, video); err != nil {
		s.recordStoreError("create")
		return nil, apperrors.NewInfrastructureError(err, "Internal Server Error").
			WithContext("operation", "create")
	}
	if video.ID == "" {
		return nil, apperrors.NewInfrastructureError(errors.New("store did not assign an id"), "Internal Server Error")
	}

	if s.metrics != nil {
		s.metrics.RecordVideoAdded()
	}
	return video, nil
}

func (s *videoService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.operationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.operationTimeout)
}

func (s *videoService) recordStoreError(operation string) {
	if s.metrics != nil {
		s.metrics.RecordStoreError(operation)
	}
}
