package catalog

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter keys understood by the catalog repositories' FindAll and Count
const (
	FilterStatus = "status"
	FilterUomID  = "uomId"
)

// UomRepository persists units of measure. Reads exclude soft-deleted units.
type UomRepository interface {
	// Create inserts u, minting UomID when empty
	Create(ctx context.Context, u *Uom) error
	FindByID(ctx context.Context, id uuid.UUID) (*Uom, error)
	FindByUomID(ctx context.Context, uomID string) (*Uom, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Uom, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// FindActive lists usable units ordered by name
	FindActive(ctx context.Context) ([]*Uom, error)
	// Update locks the unit and hands fn the number of live Active items that
	// reference it, counted in the same transaction.
	Update(ctx context.Context, id uuid.UUID, fn func(u *Uom, activeItems int64) error) (*Uom, error)
}

// ItemRepository persists items. Reads exclude soft-deleted items.
type ItemRepository interface {
	// Create inserts item, deriving the SKU when empty. The referenced unit
	// must be Active and live at commit time.
	Create(ctx context.Context, item *Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindBySKU(ctx context.Context, sku string) (*Item, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Item, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	// Update locks the item, applies fn and saves it
	Update(ctx context.Context, id uuid.UUID, fn func(*Item) error) (*Item, error)
}
