package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/upskillai/roadmap-api/internal/core/domain"
	"github.com/upskillai/roadmap-api/internal/core/ports"
)

// AuthService implements signup, login and bearer-token handling.
type AuthService struct {
	repo      ports.AccountRepository
	jwtSecret string
	tokenTTL  time.Duration
	audit     AuditDispatcher
	log       zerolog.Logger
}

func NewAuthService(repo ports.AccountRepository, jwtSecret string, tokenTTL time.Duration, audit AuditDispatcher, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &AuthService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL, audit: audit, log: log}
}

// Signup creates a new account and returns a token for it immediately.
// New accounts start unblocked, agent-enabled and with unlimited credits.
func (s *AuthService) Signup(ctx context.Context, email, password string) (string, *domain.Account, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	account := &domain.Account{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   string(hash),
		IsAdmin:        false,
		IsBlocked:      false,
		IsAgentEnabled: true,
		Credits:        domain.UnlimitedCredits,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return "", nil, err
	}

	token, err := s.issueToken(account)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("user_id", account.ID).Str("email", account.Email).Msg("account created")
	if s.audit != nil {
		s.audit.Enqueue(domain.AuditEntry{
			AccountID: account.ID,
			Action:    domain.AuditSignup,
			ActorID:   account.ID,
			Timestamp: time.Now().UTC(),
		})
	}
	return token, account, nil
}

// Login authenticates by email and password. A blocked account is rejected
// before the password check so blocking takes effect immediately.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if account.IsBlocked {
		return "", nil, domain.ErrAccountBlocked
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(account)
	if err != nil {
		return "", nil, err
	}

	return token, account, nil
}

// CurrentUser resolves verified claims to the live account record.
func (s *AuthService) CurrentUser(ctx context.Context, claims ports.TokenClaims) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if account.IsBlocked {
		return nil, domain.ErrAccountBlocked
	}
	return account, nil
}

// VerifyToken validates signature and expiry. Every failure mode (expired,
// malformed, wrong signature, wrong algorithm) folds into ErrInvalidToken.
func (s *AuthService) VerifyToken(token string) (ports.TokenClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return ports.TokenClaims{}, domain.ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	isAdmin, _ := claims["is_admin"].(bool)
	if sub == "" {
		return ports.TokenClaims{}, domain.ErrInvalidToken
	}

	return ports.TokenClaims{UserID: sub, Email: email, IsAdmin: isAdmin}, nil
}

// EnsureAdmin creates the bootstrap admin account unless the email is
// already registered. Meant to run once from the startup sequence.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &domain.Account{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   string(hash),
		IsAdmin:        true,
		IsBlocked:      false,
		IsAgentEnabled: true,
		Credits:        domain.UnlimitedCredits,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, admin); err != nil {
		// Another instance may have won the race on the unique email index.
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil
		}
		return err
	}

	s.log.Info().Str("email", email).Msg("bootstrap admin created")
	return nil
}

func (s *AuthService) issueToken(account *domain.Account) (string, error) {
	claims := jwt.MapClaims{
		"sub":      account.ID,
		"email":    account.Email,
		"is_admin": account.IsAdmin,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
