package persistence

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// errStaleVersion is returned when a versioned update matched no row
var errStaleVersion = shared.Conflict("Record was modified by another transaction, please reload and retry")

// lockForUpdate adds a row lock; sqlite ignores it and serializes writers instead
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// lockForShare keeps a referenced row from changing until commit
func lockForShare(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "SHARE"})
}

// saveVersioned writes cols to the row with the given id only when its
// version still equals expected. cols must carry the incremented version.
func saveVersioned(tx *gorm.DB, model any, id uuid.UUID, expected int, cols map[string]any) error {
	result := tx.Model(model).
		Where("id = ? AND version = ?", id, expected).
		Updates(cols)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errStaleVersion
	}
	return nil
}
