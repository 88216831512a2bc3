package persistence

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/lock"
	"gorm.io/gorm"
)

// Sequencer allocates identifiers and inserts the owning row in one
// transaction. The next ordinal is max(live ordinals in scope) + 1; the
// partial unique index on the identifier column settles races, and a
// colliding insert is re-minted up to retry more times.
type Sequencer struct {
	guard lock.Guard
	retry int
}

// NewSequencer creates a Sequencer. A nil guard means no cross-process guard.
func NewSequencer(guard lock.Guard, retry int) *Sequencer {
	if guard == nil {
		guard = lock.NopGuard{}
	}
	if retry < 0 {
		retry = 0
	}
	return &Sequencer{guard: guard, retry: retry}
}

// MintSpec describes one minted insert
type MintSpec struct {
	Class  sequence.Class
	Scope  string
	Model  any    // persistence model whose table holds the identifier
	Column string // identifier column
	// Assign receives the freshly rendered identifier before Insert runs
	Assign func(id string)
	// Insert writes the row (and anything that must commit with it) inside tx
	Insert func(tx *gorm.DB) error
}

// Mint allocates the next identifier in ms.Scope and runs ms.Insert
func (s *Sequencer) Mint(ctx context.Context, db *gorm.DB, ms MintSpec) error {
	release, err := s.guard.Lock(ctx, ms.Class.Name+":"+ms.Scope)
	if err != nil {
		return err
	}
	defer release()

	for attempt := 0; ; attempt++ {
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			existing, err := existingIdentifiers(tx, ms.Model, ms.Column, ms.Scope+ms.Class.Separator)
			if err != nil {
				return err
			}
			id, err := sequence.Mint(ms.Class, ms.Scope, existing)
			if err != nil {
				return err
			}
			ms.Assign(id)
			return ms.Insert(tx)
		})
		if err == nil || !isUniqueViolation(err) {
			return err
		}
		if attempt >= s.retry {
			return shared.Conflict(fmt.Sprintf("Could not allocate a unique %s identifier in %s, please retry", ms.Class.Name, ms.Scope))
		}
	}
}

// Next allocates an identifier inside an open transaction, for rows that are
// re-numbered rather than inserted. The guard slot stays held until release
// is called, which the caller does once tx has finished.
func (s *Sequencer) Next(ctx context.Context, tx *gorm.DB, class sequence.Class, scope string, model any, column string) (string, func(), error) {
	release, err := s.guard.Lock(ctx, class.Name+":"+scope)
	if err != nil {
		return "", nil, err
	}
	existing, err := existingIdentifiers(tx, model, column, scope+class.Separator)
	if err != nil {
		release()
		return "", nil, err
	}
	id, err := sequence.Mint(class, scope, existing)
	if err != nil {
		release()
		return "", nil, err
	}
	return id, release, nil
}

// existingIdentifiers lists live identifiers sharing prefix
func existingIdentifiers(tx *gorm.DB, model any, column, prefix string) ([]string, error) {
	var ids []string
	err := tx.Model(model).
		Where(column+" LIKE ?", prefix+"%").
		Pluck(column, &ids).Error
	return ids, err
}

// insertManual runs insert for a caller-supplied identifier, reporting a
// duplicate as conflict
func insertManual(ctx context.Context, db *gorm.DB, insert func(tx *gorm.DB) error, conflict string) error {
	err := db.WithContext(ctx).Transaction(insert)
	if isUniqueViolation(err) {
		return shared.Conflict(conflict)
	}
	return err
}
