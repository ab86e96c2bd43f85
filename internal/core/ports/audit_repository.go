package ports

import (
	"context"

	"github.com/upskillai/roadmap-api/internal/core/domain"
)

// AuditRepository persists account audit entries.
type AuditRepository interface {
	InsertEntry(ctx context.Context, entry *domain.AuditEntry) error
}

// AuditService processes audit entries delivered by the dispatcher.
type AuditService interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}
