package mongo

import (
	"context"
	"fmt"

	"unlistedtube/internal/core/domain"
	"unlistedtube/internal/core/ports"
	"unlistedtube/pkg/tracing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// videoDocument is the stored shape of a video record.
type videoDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	YouTubeID string             `bson:"youtubeId"`
	Title     string             `bson:"title"`
}

func (d videoDocument) toDomain() *domain.Video {
	return &domain.Video{
		ID:        domain.VideoID(d.ID.Hex()),
		YouTubeID: d.YouTubeID,
		Title:     d.Title,
	}
}

// MongoVideoRepository keeps videos in a single collection. Listing uses
// natural order, which is insertion order for a collection without deletes.
type MongoVideoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoVideoRepository(client *mongo.Client, database, collection string) ports.VideoRepository {
	return &MongoVideoRepository{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

func (r *MongoVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	ctx, span := tracing.TraceStoreOperation(ctx, "mongo", "create")
	defer span.End()

	doc := videoDocument{YouTubeID: video.YouTubeID, Title: video.Title}
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		tracing.RecordError(ctx, err)
		return fmt.Errorf("failed to insert video: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	video.ID = domain.VideoID(oid.Hex())
	span.SetAttributes(tracing.VideoIDKey.String(string(video.ID)))
	return nil
}

func (r *MongoVideoRepository) List(ctx context.Context) ([]*domain.Video, error) {
	ctx, span := tracing.TraceStoreOperation(ctx, "mongo", "list")
	defer span.End()

	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer cursor.Close(ctx)

	videos := make([]*domain.Video, 0)
	for cursor.Next(ctx) {
		var doc videoDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode video: %w", err)
		}
		videos = append(videos, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to iterate videos: %w", err)
	}

	span.SetAttributes(tracing.ResultCountKey.Int(len(videos)))
	return videos, nil
}

func (r *MongoVideoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}
