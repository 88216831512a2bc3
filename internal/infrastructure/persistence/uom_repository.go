package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const uomResource = "UOM"

// GormUomRepository implements catalog.UomRepository using GORM
type GormUomRepository struct {
	db  *gorm.DB
	seq *Sequencer
}

// NewGormUomRepository creates a new GormUomRepository
func NewGormUomRepository(db *gorm.DB, seq *Sequencer) *GormUomRepository {
	return &GormUomRepository{db: db, seq: seq}
}

// Create inserts u, minting its UomID when empty
func (r *GormUomRepository) Create(ctx context.Context, u *catalog.Uom) error {
	insert := func(tx *gorm.DB) error {
		return tx.Create(models.UomModelFromDomain(u)).Error
	}
	if u.UomID == "" {
		return r.seq.Mint(ctx, r.db, MintSpec{
			Class:  sequence.Uom,
			Scope:  sequence.UomScope,
			Model:  &models.UomModel{},
			Column: "uom_id",
			Assign: u.AssignUomID,
			Insert: insert,
		})
	}
	return insertManual(ctx, r.db, insert, fmt.Sprintf("UOM ID %s already exists", u.UomID))
}

// FindByID finds a live unit by its ID
func (r *GormUomRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Uom, error) {
	var m models.UomModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, uomResource)
	}
	return m.ToDomain(), nil
}

// FindByUomID finds a live unit by its human identifier
func (r *GormUomRepository) FindByUomID(ctx context.Context, uomID string) (*catalog.Uom, error) {
	var m models.UomModel
	if err := r.db.WithContext(ctx).First(&m, "uom_id = ?", sequence.Normalize(uomID)).Error; err != nil {
		return nil, notFound(err, uomResource)
	}
	return m.ToDomain(), nil
}

// FindAll lists live units matching filter
func (r *GormUomRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*catalog.Uom, error) {
	var rows []models.UomModel
	query := paginate(r.filtered(ctx, filter), filter, UomSortFields, models.UomModel{}.TableName())
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return uomsToDomain(rows), nil
}

// Count counts live units matching filter
func (r *GormUomRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

// FindActive lists usable units ordered by name
func (r *GormUomRepository) FindActive(ctx context.Context) ([]*catalog.Uom, error) {
	var rows []models.UomModel
	err := r.db.WithContext(ctx).
		Where("status = ?", catalog.UomStatusActive).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return uomsToDomain(rows), nil
}

// Update locks the unit, counts live Active items referencing it in the same
// transaction and hands both to fn
func (r *GormUomRepository) Update(ctx context.Context, id uuid.UUID, fn func(u *catalog.Uom, activeItems int64) error) (*catalog.Uom, error) {
	var out *catalog.Uom
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.UomModel
		if err := lockForUpdate(tx).First(&m, "id = ?", id).Error; err != nil {
			return notFound(err, uomResource)
		}
		var activeItems int64
		err := tx.Model(&models.ItemModel{}).
			Where("uom_id = ? AND status = ?", id, catalog.ItemStatusActive).
			Count(&activeItems).Error
		if err != nil {
			return err
		}

		u := m.ToDomain()
		if err := fn(u, activeItems); err != nil {
			return err
		}

		expected := u.Version
		u.IncrementVersion()
		saved := models.UomModelFromDomain(u)
		cols := saved.AuditColumns()
		cols["uom_id"] = saved.UomID
		cols["code"] = saved.Code
		cols["name"] = saved.Name
		cols["status"] = saved.Status
		if err := saveVersioned(tx, &models.UomModel{}, u.ID, expected, cols); err != nil {
			return translate(err, uomResource, fmt.Sprintf("UOM ID %s already exists", u.UomID))
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormUomRepository) filtered(ctx context.Context, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.UomModel{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		query = query.Where(
			"UPPER(uom_id) LIKE ? ESCAPE '\\' OR UPPER(code) LIKE ? ESCAPE '\\' OR UPPER(name) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern,
		)
	}
	if v := filterString(filter, catalog.FilterStatus); v != "" {
		query = query.Where("status = ?", v)
	}
	return query
}

func uomsToDomain(rows []models.UomModel) []*catalog.Uom {
	out := make([]*catalog.Uom, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}
