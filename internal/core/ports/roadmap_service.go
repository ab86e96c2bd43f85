package ports

import (
	"context"
	"encoding/json"

	"github.com/upskillai/roadmap-api/internal/core/domain"
)

// SaveRoadmapInput carries the data needed to save a generated roadmap.
type SaveRoadmapInput struct {
	UserID      string
	Title       string
	UserGoal    string
	SkillLevel  string
	RoadmapData json.RawMessage
}

// RoadmapService defines the owner-scoped roadmap use cases.
type RoadmapService interface {
	Save(ctx context.Context, input SaveRoadmapInput) (*domain.Roadmap, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Roadmap, error)
	// Get returns domain.ErrForbidden when the roadmap exists but belongs
	// to another account.
	Get(ctx context.Context, id, userID string) (*domain.Roadmap, error)
	// Delete reports domain.ErrRoadmapNotFound for both a missing id and a
	// non-owner id, leaving the record untouched in the latter case.
	Delete(ctx context.Context, id, userID string) error
}
