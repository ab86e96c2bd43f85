package ports

import (
	"context"

	"github.com/upskillai/roadmap-api/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	// SetBlocked flips the is_blocked flag on a single account document.
	SetBlocked(ctx context.Context, id string, blocked bool) error
	// DecrementCredit atomically decrements the credit balance when it is
	// strictly positive. It returns false when no matching document was
	// updated, i.e. the balance was already zero (or the account vanished).
	// Accounts with the unlimited sentinel must not be passed here.
	DecrementCredit(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}
