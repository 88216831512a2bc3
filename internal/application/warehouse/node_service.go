package warehouse

import (
	"context"

	"github.com/erp/backoffice/internal/application/oplog"
	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/warehouse"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NodeService manages the warehouse location tree
type NodeService struct {
	repo    warehouse.NodeRepository
	metrics *telemetry.BusinessMetrics
}

func NewNodeService(repo warehouse.NodeRepository) *NodeService {
	return &NodeService{repo: repo}
}

// SetBusinessMetrics enables identifier and rejection counters
func (s *NodeService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// Create validates the request and stores the node, minting nodeId when it
// is omitted.
func (s *NodeService) Create(ctx context.Context, req CreateNodeRequest, actor string) (resp *NodeResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "warehouse_node", "create", "node_type", req.NodeType)
	defer func() { telemetry.End(span, err) }()

	node, err := warehouse.NewNode(warehouse.NodeInput{
		NodeID:   req.NodeID,
		Name:     req.Name,
		NodeType: warehouse.NodeType(req.NodeType),
		ParentID: req.ParentID,
		Method:   warehouse.Method(req.Method),
		Address:  req.Address,
		Status:   warehouse.Status(req.Status),
	}, actor)
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "node.create", err)
	}
	minted := node.NodeID == ""
	if err := s.repo.Create(ctx, node); err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "node.create", err)
	}
	if minted {
		s.metrics.RecordMinted(ctx, sequence.Node.Name)
	}
	span.SetAttributes(telemetry.Attributes(telemetry.AttrNodeID, node.NodeID)...)

	logger.L(ctx).Info("Warehouse node created",
		zap.String("node_id", node.NodeID),
		zap.String("node_type", string(node.NodeType)),
		zap.Bool("minted", minted),
	)
	out := ToNodeResponse(node)
	return &out, nil
}

func (s *NodeService) GetByID(ctx context.Context, id uuid.UUID) (*NodeResponse, error) {
	node, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToNodeResponse(node)
	return &out, nil
}

// GetByNodeID looks a node up by its business identifier, case-insensitively
func (s *NodeService) GetByNodeID(ctx context.Context, nodeID string) (*NodeResponse, error) {
	node, err := s.repo.FindByNodeID(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	out := ToNodeResponse(node)
	return &out, nil
}

// List returns one page of live nodes. Search accepts loose identifiers
// such as "wh01".
func (s *NodeService) List(ctx context.Context, f NodeListFilter) ([]NodeResponse, int64, error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  map[string]any{},
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
		filter.OrderDir = "asc"
	}
	filter = filter.Normalize()
	if f.NodeType != "" {
		filter.Filters[warehouse.FilterNodeType] = f.NodeType
	}
	if f.Status != "" {
		filter.Filters[warehouse.FilterStatus] = f.Status
	}
	if f.ParentID != "" {
		filter.Filters[warehouse.FilterParentID] = f.ParentID
	}

	nodes, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToNodeResponses(nodes), total, nil
}

// ListTree returns the live forest. Orphans of a plain soft delete show up
// as extra roots.
func (s *NodeService) ListTree(ctx context.Context, f TreeFilter) ([]*TreeNodeResponse, error) {
	nodes, err := s.repo.FindLive(ctx)
	if err != nil {
		return nil, err
	}
	forest := warehouse.BuildForest(nodes, warehouse.TreeFilter{
		RootID:   f.RootID,
		RootType: warehouse.NodeType(f.RootType),
	})
	return toTreeResponse(forest), nil
}

// Update patches the node. A parent change must point at a live node and
// must not create a cycle.
func (s *NodeService) Update(ctx context.Context, id uuid.UUID, req UpdateNodeRequest, actor string) (resp *NodeResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "warehouse_node", "update", "id", id.String())
	defer func() { telemetry.End(span, err) }()

	patch := warehouse.NodePatch{
		Name:        req.Name,
		Address:     req.Address,
		ParentID:    req.ParentID,
		ClearParent: req.ClearParent,
	}
	if req.Method != nil {
		m := warehouse.Method(*req.Method)
		patch.Method = &m
	}
	if req.Status != nil {
		st := warehouse.Status(*req.Status)
		patch.Status = &st
	}

	node, err := s.repo.Update(ctx, id, func(n *warehouse.Node) error {
		return n.Apply(patch, actor)
	})
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "node.update", err)
	}
	logger.L(ctx).Info("Warehouse node updated",
		zap.String("node_id", node.NodeID),
		zap.Int("version", node.Version),
	)
	out := ToNodeResponse(node)
	return &out, nil
}

// Delete soft-deletes one node. Its children stay live and surface as roots.
func (s *NodeService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	if err := s.repo.SoftDelete(ctx, id, actor); err != nil {
		return oplog.Fail(ctx, s.metrics, "node.delete", err)
	}
	logger.L(ctx).Info("Warehouse node deleted", zap.String("id", id.String()))
	return nil
}

// DeleteSubtree soft-deletes the node with all live descendants and returns
// the number of nodes removed.
func (s *NodeService) DeleteSubtree(ctx context.Context, id uuid.UUID, actor string) (n int, err error) {
	ctx, span := telemetry.StartSpan(ctx, "warehouse_node", "delete_subtree", "id", id.String())
	defer func() { telemetry.End(span, err) }()

	n, err = s.repo.SoftDeleteSubtree(ctx, id, actor)
	if err != nil {
		return 0, oplog.Fail(ctx, s.metrics, "node.delete_subtree", err)
	}
	logger.L(ctx).Info("Warehouse subtree deleted",
		zap.String("id", id.String()),
		zap.Int("count", n),
	)
	return n, nil
}
