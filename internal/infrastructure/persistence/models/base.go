package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides common persistence fields for all models.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AuditModel adds the optimistic-lock version, actor bookkeeping and the
// soft-delete marker shared by every aggregate table.
type AuditModel struct {
	BaseModel
	Version   int            `gorm:"not null;default:1"`
	CreatedBy string         `gorm:"type:varchar(100)"`
	UpdatedBy string         `gorm:"type:varchar(100)"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	DeletedBy string         `gorm:"type:varchar(100)"`
}

// FromDomainAggregate populates the audit columns from a domain aggregate
func (m *AuditModel) FromDomainAggregate(a shared.BaseAggregateRoot) {
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Version = a.Version
	m.CreatedBy = a.CreatedBy
	m.UpdatedBy = a.UpdatedBy
	m.DeletedBy = a.DeletedBy
	m.DeletedAt = gorm.DeletedAt{}
	if a.DeletedAt != nil {
		m.DeletedAt = gorm.DeletedAt{Time: *a.DeletedAt, Valid: true}
	}
}

// ToDomainAggregate rebuilds the domain aggregate header
func (m *AuditModel) ToDomainAggregate() shared.BaseAggregateRoot {
	a := shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Audit: shared.Audit{
			CreatedBy: m.CreatedBy,
			UpdatedBy: m.UpdatedBy,
			DeletedBy: m.DeletedBy,
		},
		Version: m.Version,
	}
	if m.DeletedAt.Valid {
		at := m.DeletedAt.Time
		a.DeletedAt = &at
	}
	return a
}

// AuditColumns returns the mutable audit columns for an Updates map
func (m *AuditModel) AuditColumns() map[string]any {
	return map[string]any{
		"updated_at": m.UpdatedAt,
		"updated_by": m.UpdatedBy,
		"deleted_at": m.DeletedAt,
		"deleted_by": m.DeletedBy,
		"version":    m.Version,
	}
}
