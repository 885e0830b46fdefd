package entity

import (
	"time"

	"github.com/google/uuid"
)

// CatalogAuditLog records one persisted catalog entry for the dashboard.
type CatalogAuditLog struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId string    `gorm:"index"`
	ProductId int64
	Name      string
	Status    string
	Edited    bool
	CreatedAt time.Time
}

func (CatalogAuditLog) TableName() string {
	return "catalog_audit_logs"
}
