package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func uomSpec(t *testing.T, u *catalog.Uom, insert func(tx *gorm.DB) error) MintSpec {
	t.Helper()
	return MintSpec{
		Class:  sequence.Uom,
		Scope:  sequence.UomScope,
		Model:  &models.UomModel{},
		Column: "uom_id",
		Assign: u.AssignUomID,
		Insert: insert,
	}
}

func TestSequencer_Mint(t *testing.T) {
	ctx := context.Background()

	t.Run("retries once after a unique violation", func(t *testing.T) {
		db := newSQLiteDB(t)
		u, err := catalog.NewUom(catalog.UomInput{Code: "pcs", Name: "Pieces"}, "tester")
		require.NoError(t, err)

		attempts := 0
		err = NewSequencer(nil, 1).Mint(ctx, db, uomSpec(t, u, func(tx *gorm.DB) error {
			attempts++
			if attempts == 1 {
				return gorm.ErrDuplicatedKey
			}
			return tx.Create(models.UomModelFromDomain(u)).Error
		}))
		require.NoError(t, err)
		assert.Equal(t, 2, attempts)
		assert.Equal(t, "UOM001", u.UomID)
	})

	t.Run("second collision is a conflict", func(t *testing.T) {
		db := newSQLiteDB(t)
		u, err := catalog.NewUom(catalog.UomInput{Code: "pcs", Name: "Pieces"}, "tester")
		require.NoError(t, err)

		attempts := 0
		err = NewSequencer(nil, 1).Mint(ctx, db, uomSpec(t, u, func(*gorm.DB) error {
			attempts++
			return &pgconn.PgError{Code: pgUniqueViolation}
		}))
		assert.ErrorIs(t, err, shared.ErrConflict)
		assert.Equal(t, 2, attempts)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		db := newSQLiteDB(t)
		u, err := catalog.NewUom(catalog.UomInput{Code: "pcs", Name: "Pieces"}, "tester")
		require.NoError(t, err)

		boom := errors.New("disk full")
		attempts := 0
		err = NewSequencer(nil, 3).Mint(ctx, db, uomSpec(t, u, func(*gorm.DB) error {
			attempts++
			return boom
		}))
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, attempts)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: uoms.uom_id")))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(nil))
}

func TestTranslate(t *testing.T) {
	err := translate(gorm.ErrRecordNotFound, "Item", "dup")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "Item not found", err.Error())

	err = translate(gorm.ErrDuplicatedKey, "Item", "SKU KMN-0001 already exists")
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.Equal(t, "SKU KMN-0001 already exists", err.Error())

	assert.NoError(t, translate(nil, "Item", ""))
}
