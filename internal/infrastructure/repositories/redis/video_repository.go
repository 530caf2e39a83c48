package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"unlistedtube/internal/core/domain"
	"unlistedtube/internal/core/ports"
	"unlistedtube/pkg/tracing"
	"unlistedtube/pkg/utils"

	"github.com/redis/go-redis/v9"
)

const (
	videoKeyPrefix = "unlistedtube:video:"
	videoIndexKey  = "unlistedtube:videos"
)

// RedisVideoRepository stores each record as a JSON document under its own
// key and keeps insertion order in a list of ids.
type RedisVideoRepository struct {
	client *redis.Client
}

func NewRedisVideoRepository(client *redis.Client) ports.VideoRepository {
	return &RedisVideoRepository{client: client}
}

func videoKey(id domain.VideoID) string {
	return videoKeyPrefix + string(id)
}

func (r *RedisVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	ctx, span := tracing.TraceStoreOperation(ctx, "redis", "create")
	defer span.End()

	stored := *video
	stored.ID = domain.VideoID(utils.GenerateID())

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal video: %w", err)
	}

	// document and index entry land together or not at all
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, videoKey(stored.ID), data, 0)
		pipe.RPush(ctx, videoIndexKey, string(stored.ID))
		return nil
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return fmt.Errorf("failed to store video in Redis: %w", err)
	}

	video.ID = stored.ID
	span.SetAttributes(tracing.VideoIDKey.String(string(video.ID)))
	return nil
}

func (r *RedisVideoRepository) List(ctx context.Context) ([]*domain.Video, error) {
	ctx, span := tracing.TraceStoreOperation(ctx, "redis", "list")
	defer span.End()

	ids, err := r.client.LRange(ctx, videoIndexKey, 0, -1).Result()
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to read video index from Redis: %w", err)
	}

	videos := make([]*domain.Video, 0, len(ids))
	if len(ids) == 0 {
		return videos, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = videoKey(domain.VideoID(id))
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to read videos from Redis: %w", err)
	}

	for i, raw := range values {
		s, ok := raw.(string)
		if !ok {
			// index entry without a document; skip it
			continue
		}
		var v domain.Video
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal video %s: %w", ids[i], err)
		}
		videos = append(videos, &v)
	}

	span.SetAttributes(tracing.ResultCountKey.Int(len(videos)))
	return videos, nil
}

func (r *RedisVideoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
