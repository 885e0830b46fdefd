package implementation

import (
	"context"

	"ai-catalog-admin-be/internal/entity"

	"gorm.io/gorm"
)

// AuditRepository stores one row per persisted catalog entry.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, log *entity.CatalogAuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *AuditRepository) FindRecent(ctx context.Context, limit int) ([]entity.CatalogAuditLog, error) {
	var logs []entity.CatalogAuditLog
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
