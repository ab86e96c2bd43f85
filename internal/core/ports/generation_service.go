package ports

import (
	"context"

	"github.com/upskillai/roadmap-api/internal/core/domain"
)

// EmitFunc receives one stream chunk. Returning an error aborts emission;
// the transport layer uses this to stop when the caller disconnects.
type EmitFunc func(chunk string) error

// RoadmapGenerator wraps the external text-generation provider. A successful
// call emits the generated text as paced chunks; a provider failure is
// returned as an error before any content chunk, leaving fallback behaviour
// to the caller.
type RoadmapGenerator interface {
	StreamGeneration(ctx context.Context, userGoal, skillLevel string, emit EmitFunc) error
}

// GenerateInput carries a generation request into the gate controller.
type GenerateInput struct {
	UserGoal   string
	SkillLevel string
}

// GenerationService is the gate controller in front of RoadmapGenerator.
// Authorize performs all eligibility checks and charges one credit before
// any generation work; Stream relays the gateway output, substituting the
// fixed mock document in-band when the provider fails.
type GenerationService interface {
	Authorize(ctx context.Context, userID string) (*domain.Account, error)
	Stream(ctx context.Context, account *domain.Account, input GenerateInput, emit EmitFunc) error
}
