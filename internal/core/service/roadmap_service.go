package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/upskillai/roadmap-api/internal/core/domain"
	"github.com/upskillai/roadmap-api/internal/core/ports"
)

// RoadmapService implements owner-scoped CRUD over saved roadmaps.
type RoadmapService struct {
	repo ports.RoadmapRepository
	log  zerolog.Logger
}

func NewRoadmapService(repo ports.RoadmapRepository, log zerolog.Logger) *RoadmapService {
	return &RoadmapService{repo: repo, log: log}
}

func (s *RoadmapService) Save(ctx context.Context, input ports.SaveRoadmapInput) (*domain.Roadmap, error) {
	roadmap := &domain.Roadmap{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		Title:       input.Title,
		UserGoal:    input.UserGoal,
		SkillLevel:  input.SkillLevel,
		RoadmapData: input.RoadmapData,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, roadmap); err != nil {
		s.log.Error().Err(err).Str("user_id", input.UserID).Msg("failed to save roadmap")
		return nil, err
	}

	s.log.Info().Str("roadmap_id", roadmap.ID).Str("user_id", input.UserID).Msg("roadmap saved")
	return roadmap, nil
}

func (s *RoadmapService) ListByUser(ctx context.Context, userID string) ([]*domain.Roadmap, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get fetches one roadmap, distinguishing missing (404) from owned by
// someone else (403).
func (s *RoadmapService) Get(ctx context.Context, id, userID string) (*domain.Roadmap, error) {
	roadmap, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if roadmap.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return roadmap, nil
}

// Delete removes a roadmap owned by userID. A non-owner delete reports
// not-found and leaves the record in place.
func (s *RoadmapService) Delete(ctx context.Context, id, userID string) error {
	return s.repo.DeleteOwned(ctx, id, userID)
}
