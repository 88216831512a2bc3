package procurement

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter keys understood by PurchaseOrderRepository.FindAll and Count
const (
	FilterStatus     = "status"
	FilterNodeID     = "nodeId"
	FilterSupplierID = "supplierId"
)

// PurchaseOrderRepository persists purchase orders with their line items.
// Reads exclude soft-deleted orders and every line item they own.
type PurchaseOrderRepository interface {
	// Create inserts the order and its items atomically, minting PoID when empty
	Create(ctx context.Context, po *PurchaseOrder) error
	// FindByID loads the order with its line items
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByPoID(ctx context.Context, poID string) (*PurchaseOrder, error)
	// FindAll lists order headers; Search matches poId or supplier name
	FindAll(ctx context.Context, filter shared.Filter) ([]*PurchaseOrder, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Update locks the header row, applies fn and saves the header under a version check
	Update(ctx context.Context, id uuid.UUID, fn func(*PurchaseOrder) error) (*PurchaseOrder, error)
	// UpdateItems locks the header row, applies fn and rewrites the line items
	// together with the recomputed header in one transaction
	UpdateItems(ctx context.Context, id uuid.UUID, fn func(*PurchaseOrder) error) (*PurchaseOrder, error)
	FindLineItems(ctx context.Context, poID uuid.UUID) ([]*LineItem, error)
	FindLineItem(ctx context.Context, lineID uuid.UUID) (*LineItem, error)
}
