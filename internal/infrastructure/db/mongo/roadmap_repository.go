package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/upskillai/roadmap-api/internal/core/domain"
)

const roadmapsCollection = "roadmaps"

// RoadmapRepository implements ports.RoadmapRepository using MongoDB.
type RoadmapRepository struct {
	col *mongo.Collection
}

func NewRoadmapRepository(db *mongo.Database) *RoadmapRepository {
	return &RoadmapRepository{col: db.Collection(roadmapsCollection)}
}

func (r *RoadmapRepository) Create(ctx context.Context, roadmap *domain.Roadmap) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, roadmap); err != nil {
		return fmt.Errorf("insert roadmap: %w", err)
	}
	return nil
}

func (r *RoadmapRepository) FindByID(ctx context.Context, id string) (*domain.Roadmap, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var roadmap domain.Roadmap
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&roadmap); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoadmapNotFound
		}
		return nil, fmt.Errorf("find roadmap: %w", err)
	}
	return &roadmap, nil
}

func (r *RoadmapRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Roadmap, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list roadmaps: %w", err)
	}
	defer cur.Close(ctx)

	var roadmaps []*domain.Roadmap
	for cur.Next(ctx) {
		var roadmap domain.Roadmap
		if err := cur.Decode(&roadmap); err != nil {
			return nil, fmt.Errorf("decode roadmap: %w", err)
		}
		roadmaps = append(roadmaps, &roadmap)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list roadmaps: %w", err)
	}
	return roadmaps, nil
}

// DeleteOwned removes the roadmap only when both id and owner match. A
// missing id and a non-owner id are indistinguishable to the caller, which
// is what the delete endpoint reports (404 either way).
func (r *RoadmapRepository) DeleteOwned(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete roadmap: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRoadmapNotFound
	}
	return nil
}

// EnsureIndexes creates the owner index used by ListByUser.
func (r *RoadmapRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
