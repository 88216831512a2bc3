package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const itemResource = "Item"

// GormItemRepository implements catalog.ItemRepository using GORM
type GormItemRepository struct {
	db  *gorm.DB
	seq *Sequencer
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB, seq *Sequencer) *GormItemRepository {
	return &GormItemRepository{db: db, seq: seq}
}

// Create inserts item, deriving its SKU when empty
func (r *GormItemRepository) Create(ctx context.Context, item *catalog.Item) error {
	insert := func(tx *gorm.DB) error {
		if err := requireUsableUom(tx, item.UomID); err != nil {
			return err
		}
		return tx.Create(models.ItemModelFromDomain(item)).Error
	}
	if item.SKU == "" {
		return r.seq.Mint(ctx, r.db, MintSpec{
			Class:  sequence.SKU,
			Scope:  item.SequenceScope(),
			Model:  &models.ItemModel{},
			Column: "sku",
			Assign: item.AssignSKU,
			Insert: insert,
		})
	}
	return insertManual(ctx, r.db, insert, fmt.Sprintf("SKU %s already exists", item.SKU))
}

// FindByID finds a live item by its ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var m models.ItemModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, itemResource)
	}
	return m.ToDomain(), nil
}

// FindBySKU finds a live item by SKU
func (r *GormItemRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Item, error) {
	var m models.ItemModel
	if err := r.db.WithContext(ctx).First(&m, "sku = ?", sequence.Normalize(sku)).Error; err != nil {
		return nil, notFound(err, itemResource)
	}
	return m.ToDomain(), nil
}

// FindAll lists live items; Search matches name or SKU
func (r *GormItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*catalog.Item, error) {
	var rows []models.ItemModel
	query := paginate(r.filtered(ctx, filter), filter, ItemSortFields, models.ItemModel{}.TableName())
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.Item, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Count counts live items matching filter
func (r *GormItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

// ExistsBySKU reports whether a live item uses sku
func (r *GormItemRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ItemModel{}).
		Where("sku = ?", sequence.Normalize(sku)).
		Count(&count).Error
	return count > 0, err
}

// Update locks the item, applies fn and saves it. A changed unit must be usable.
func (r *GormItemRepository) Update(ctx context.Context, id uuid.UUID, fn func(*catalog.Item) error) (*catalog.Item, error) {
	var out *catalog.Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.ItemModel
		if err := lockForUpdate(tx).First(&m, "id = ?", id).Error; err != nil {
			return notFound(err, itemResource)
		}
		item := m.ToDomain()
		if err := fn(item); err != nil {
			return err
		}
		// a new unit, or an item coming back to Active, needs a usable unit
		reactivated := item.Status == catalog.ItemStatusActive && m.Status != catalog.ItemStatusActive
		if (item.UomID != m.UomID || reactivated) && !item.IsDeleted() {
			if err := requireUsableUom(tx, item.UomID); err != nil {
				return err
			}
		}

		expected := item.Version
		item.IncrementVersion()
		saved := models.ItemModelFromDomain(item)
		cols := saved.AuditColumns()
		cols["sku"] = saved.SKU
		cols["name"] = saved.Name
		cols["brand"] = saved.Brand
		cols["uom_id"] = saved.UomID
		cols["status"] = saved.Status
		if err := saveVersioned(tx, &models.ItemModel{}, item.ID, expected, cols); err != nil {
			return translate(err, itemResource, fmt.Sprintf("SKU %s already exists", item.SKU))
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormItemRepository) filtered(ctx context.Context, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.ItemModel{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		query = query.Where("UPPER(name) LIKE ? ESCAPE '\\' OR UPPER(sku) LIKE ? ESCAPE '\\'", pattern, pattern)
	}
	if v := filterString(filter, catalog.FilterStatus); v != "" {
		query = query.Where("status = ?", v)
	}
	if v := filterString(filter, catalog.FilterUomID); v != "" {
		query = query.Where("uom_id = ?", v)
	}
	return query
}

// requireUsableUom share-locks the unit and checks it is live and Active.
// The share lock conflicts with the deactivation path's row lock.
func requireUsableUom(tx *gorm.DB, uomID uuid.UUID) error {
	var m models.UomModel
	err := lockForShare(tx).First(&m, "id = ?", uomID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.Issues{{Path: "uomId", Message: "UOM not found"}}.Err()
	case err != nil:
		return err
	case m.Status != catalog.UomStatusActive:
		return shared.Issues{{Path: "uomId", Message: "UOM must be active"}}.Err()
	}
	return nil
}
