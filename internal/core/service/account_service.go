package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/upskillai/roadmap-api/internal/core/domain"
	"github.com/upskillai/roadmap-api/internal/core/ports"
)

// AuditDispatcher is the interface services use to hand audit entries to the
// async pipeline. A nil dispatcher disables auditing (used in tests).
type AuditDispatcher interface {
	Enqueue(entry domain.AuditEntry)
}

// AccountService implements the admin-only account operations.
type AccountService struct {
	repo  ports.AccountRepository
	audit AuditDispatcher
	log   zerolog.Logger
}

func NewAccountService(repo ports.AccountRepository, audit AuditDispatcher, log zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, audit: audit, log: log}
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.repo.List(ctx)
}

// BlockAccount blocks the target account. An admin cannot block itself.
func (s *AccountService) BlockAccount(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return domain.ErrSelfAction
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.SetBlocked(ctx, id, true); err != nil {
		return err
	}

	s.log.Info().Str("user_id", id).Str("actor_id", actorID).Msg("account blocked")
	s.enqueueAudit(id, domain.AuditBlocked, actorID, "")
	return nil
}

// UnblockAccount lifts a block. Unblocking yourself is a no-op in practice
// (a blocked admin cannot authenticate), so no self check is applied.
func (s *AccountService) UnblockAccount(ctx context.Context, actorID, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.SetBlocked(ctx, id, false); err != nil {
		return err
	}

	s.log.Info().Str("user_id", id).Str("actor_id", actorID).Msg("account unblocked")
	s.enqueueAudit(id, domain.AuditUnblocked, actorID, "")
	return nil
}

// DeleteAccount removes the account permanently. An admin cannot delete itself.
func (s *AccountService) DeleteAccount(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return domain.ErrSelfAction
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("user_id", id).Str("actor_id", actorID).Msg("account deleted")
	s.enqueueAudit(id, domain.AuditDeleted, actorID, "")
	return nil
}

func (s *AccountService) enqueueAudit(accountID string, action domain.AuditAction, actorID, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(domain.AuditEntry{
		AccountID: accountID,
		Action:    action,
		ActorID:   actorID,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
}
