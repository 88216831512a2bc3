package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// Touch bumps UpdatedAt
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Audit carries the actor bookkeeping shared by every soft-deletable record.
// Actor ids are opaque strings supplied by the caller.
type Audit struct {
	CreatedBy string
	UpdatedBy string
	DeletedAt *time.Time
	DeletedBy string
}

// IsDeleted reports whether the record has been soft-deleted
func (a *Audit) IsDeleted() bool {
	return a.DeletedAt != nil
}

// MarkDeleted soft-deletes the record on behalf of actor
func (a *Audit) MarkDeleted(actor string, at time.Time) {
	a.DeletedAt = &at
	a.DeletedBy = actor
	a.UpdatedBy = actor
}
