package ports

import (
	"context"

	"github.com/upskillai/roadmap-api/internal/core/domain"
)

// TokenClaims are the verified contents of a bearer token. They reflect the
// account state at issue time; callers needing live flags (blocked, credits)
// must re-fetch the account.
type TokenClaims struct {
	UserID  string
	Email   string
	IsAdmin bool
}

// AuthService implements signup, login and token handling.
type AuthService interface {
	Signup(ctx context.Context, email, password string) (string, *domain.Account, error)
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
	// CurrentUser re-fetches the account referenced by verified claims so
	// live status flags are honoured.
	CurrentUser(ctx context.Context, claims TokenClaims) (*domain.Account, error)
	// VerifyToken validates signature and expiry. Expired, malformed and
	// signature-mismatch tokens all yield domain.ErrInvalidToken.
	VerifyToken(token string) (TokenClaims, error)
	// EnsureAdmin creates the bootstrap admin account if no account with the
	// given email exists yet. Called once at startup.
	EnsureAdmin(ctx context.Context, email, password string) error
}
