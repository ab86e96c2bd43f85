package ports

import (
	"context"

	"github.com/upskillai/roadmap-api/internal/core/domain"
)

// RoadmapRepository defines persistence operations for saved roadmaps.
// Ownership is enforced by the service layer; FindByID returns the record
// regardless of owner so the service can distinguish 403 from 404.
type RoadmapRepository interface {
	Create(ctx context.Context, roadmap *domain.Roadmap) error
	FindByID(ctx context.Context, id string) (*domain.Roadmap, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Roadmap, error)
	// DeleteOwned removes the roadmap only when both id and owner match,
	// returning domain.ErrRoadmapNotFound otherwise.
	DeleteOwned(ctx context.Context, id, userID string) error
}
