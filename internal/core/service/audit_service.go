package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/upskillai/roadmap-api/internal/core/domain"
	"github.com/upskillai/roadmap-api/internal/core/ports"
)

// AuditTrailService persists dispatched audit entries.
type AuditTrailService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

func NewAuditTrailService(repo ports.AuditRepository, log zerolog.Logger) *AuditTrailService {
	return &AuditTrailService{repo: repo, log: log}
}

func (s *AuditTrailService) Record(ctx context.Context, entry domain.AuditEntry) error {
	if err := s.repo.InsertEntry(ctx, &entry); err != nil {
		return err
	}
	s.log.Debug().
		Str("account_id", entry.AccountID).
		Str("action", string(entry.Action)).
		Msg("audit entry recorded")
	return nil
}
