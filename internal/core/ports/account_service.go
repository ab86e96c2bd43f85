package ports

import (
	"context"

	"github.com/upskillai/roadmap-api/internal/core/domain"
)

// AccountAdminService exposes the admin-only account operations. ActorID is
// the admin performing the action; block and delete refuse to act on it.
type AccountAdminService interface {
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	BlockAccount(ctx context.Context, actorID, id string) error
	UnblockAccount(ctx context.Context, actorID, id string) error
	DeleteAccount(ctx context.Context, actorID, id string) error
}
