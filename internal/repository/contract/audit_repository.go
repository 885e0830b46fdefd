package contract

import (
	"context"

	"ai-catalog-admin-be/internal/entity"
)

// AuditRepository records persisted catalog entries.
type AuditRepository interface {
	Create(ctx context.Context, log *entity.CatalogAuditLog) error
	FindRecent(ctx context.Context, limit int) ([]entity.CatalogAuditLog, error)
}
