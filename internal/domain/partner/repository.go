package partner

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// FilterStatus narrows SupplierRepository.FindAll and Count by status
const FilterStatus = "status"

// SupplierRepository persists suppliers. Reads exclude soft-deleted suppliers.
type SupplierRepository interface {
	// Create inserts s; a live supplier with the same SuppID is a conflict
	Create(ctx context.Context, s *Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindBySuppID(ctx context.Context, suppID string) (*Supplier, error)
	// FindAll searches suppId, name and picName, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]*Supplier, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*Supplier) error) (*Supplier, error)
}
