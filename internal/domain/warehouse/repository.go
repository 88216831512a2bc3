package warehouse

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter keys understood by NodeRepository.FindAll and Count
const (
	FilterNodeType = "nodeType"
	FilterStatus   = "status"
	FilterParentID = "parentId"
)

// NodeRepository persists warehouse nodes. Every read excludes soft-deleted nodes.
type NodeRepository interface {
	// Create inserts node, minting NodeID when empty. The parent, if any, must
	// resolve to a live node at commit time.
	Create(ctx context.Context, node *Node) error
	FindByID(ctx context.Context, id uuid.UUID) (*Node, error)
	FindByNodeID(ctx context.Context, nodeID string) (*Node, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Node, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// FindLive returns every live node, for tree assembly
	FindLive(ctx context.Context) ([]*Node, error)
	// Update locks the node, applies fn and saves it, rejecting a parent that
	// is missing, deleted or would introduce a cycle.
	Update(ctx context.Context, id uuid.UUID, fn func(*Node) error) (*Node, error)
	// SoftDelete marks only the given node deleted
	SoftDelete(ctx context.Context, id uuid.UUID, actor string) error
	// SoftDeleteSubtree marks the node and all live descendants deleted in one
	// transaction and returns how many nodes were affected.
	SoftDeleteSubtree(ctx context.Context, id uuid.UUID, actor string) (int, error)
}
