package procurement

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/application/oplog"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/procurement"
	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/warehouse"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseOrderService runs the purchase order lifecycle and its line-item ledger
type PurchaseOrderService struct {
	orders    procurement.PurchaseOrderRepository
	nodes     warehouse.NodeRepository
	suppliers partner.SupplierRepository
	items     catalog.ItemRepository
	metrics   *telemetry.BusinessMetrics
}

func NewPurchaseOrderService(
	orders procurement.PurchaseOrderRepository,
	nodes warehouse.NodeRepository,
	suppliers partner.SupplierRepository,
	items catalog.ItemRepository,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orders:    orders,
		nodes:     nodes,
		suppliers: suppliers,
		items:     items,
	}
}

// SetBusinessMetrics enables identifier, transition and rejection metrics
func (s *PurchaseOrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// Create validates and stores a DRAFT order with its items. The node,
// supplier and every item must exist.
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest, actor string) (resp *PurchaseOrderResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "purchase_order", "create",
		telemetry.AttrNodeID, req.NodeID,
		"payment_type", req.PaymentType,
		"items", len(req.Items),
	)
	defer func() { telemetry.End(span, err) }()

	po, err := procurement.NewPurchaseOrder(procurement.CreateInput{
		PoID:         req.PoID,
		NodeID:       req.NodeID,
		PoDate:       req.PoDate.Time,
		RequiredDate: req.RequiredDate.Time,
		SupplierID:   req.SupplierID,
		PaymentType:  procurement.PaymentType(req.PaymentType),
		PaidAmount:   req.PaidAmount,
		DPPercentage: req.DPPercentage,
		DPAmount:     req.DPAmount,
		Notes:        req.Notes,
		Items:        toInputs(req.Items),
	}, actor)
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "purchase_order.create", err)
	}

	var issues shared.Issues
	if err := s.checkNode(ctx, po.NodeID, &issues); err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, po.SupplierID, &issues); err != nil {
		return nil, err
	}
	if err := s.checkItems(ctx, req.Items, &issues); err != nil {
		return nil, err
	}
	if err := issues.Err(); err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "purchase_order.create", err)
	}

	minted := po.PoID == ""
	if err := s.orders.Create(ctx, po); err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "purchase_order.create", err)
	}
	if minted {
		s.metrics.RecordMinted(ctx, sequence.PurchaseOrder.Name)
	}
	s.metrics.RecordTransition(ctx, "", string(po.Status), string(po.PaymentType), po.GrandTotal)
	span.SetAttributes(telemetry.Attributes(telemetry.AttrPoID, po.PoID)...)

	logger.L(ctx).Info("Purchase order created",
		zap.String("po_id", po.PoID),
		zap.String("node_id", po.NodeID),
		zap.Int("items", len(po.Items)),
		zap.String("grand_total", po.GrandTotal.StringFixed(2)),
	)
	out := ToPurchaseOrderResponse(po)
	return &out, nil
}

func (s *PurchaseOrderService) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	po, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withSupplier(ctx, po), nil
}

func (s *PurchaseOrderService) GetByPoID(ctx context.Context, poID string) (*PurchaseOrderResponse, error) {
	po, err := s.orders.FindByPoID(ctx, poID)
	if err != nil {
		return nil, err
	}
	return s.withSupplier(ctx, po), nil
}

// List returns one page of order headers. Search matches poId or supplier
// name case-insensitively.
func (s *PurchaseOrderService) List(ctx context.Context, f ListFilter) ([]PurchaseOrderResponse, int64, error) {
	filter := f.toFilter()
	orders, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	names := s.supplierNames(ctx, orders)
	out := make([]PurchaseOrderResponse, len(orders))
	for i, po := range orders {
		out[i] = ToPurchaseOrderResponse(po)
		out[i].SupplierName = names[po.SupplierID]
	}
	return out, total, nil
}

// Update patches the order under a row lock. Outside DRAFT any change to a
// locked field is refused; status moves forward only.
func (s *PurchaseOrderService) Update(ctx context.Context, id uuid.UUID, req UpdatePurchaseOrderRequest, actor string) (resp *PurchaseOrderResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "purchase_order", "update", "id", id.String())
	defer func() { telemetry.End(span, err) }()

	var issues shared.Issues
	if req.NodeID != nil && sequence.Normalize(*req.NodeID) != "" {
		if err := s.checkNode(ctx, sequence.Normalize(*req.NodeID), &issues); err != nil {
			return nil, err
		}
	}
	if req.SupplierID != nil {
		if err := s.checkSupplier(ctx, *req.SupplierID, &issues); err != nil {
			return nil, err
		}
	}
	if err := issues.Err(); err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "purchase_order.update", err)
	}

	patch := req.toPatch()
	var from procurement.Status
	po, err := s.orders.Update(ctx, id, func(po *procurement.PurchaseOrder) error {
		from = po.Status
		return po.Apply(patch, actor)
	})
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "purchase_order.update", err)
	}
	span.SetAttributes(telemetry.Attributes(telemetry.AttrPoID, po.PoID, telemetry.AttrPoStatus, string(po.Status))...)

	if po.Status != from {
		s.metrics.RecordTransition(ctx, string(from), string(po.Status), string(po.PaymentType), po.GrandTotal)
		logger.L(ctx).Info("Purchase order status changed",
			zap.String("po_id", po.PoID),
			zap.String("from", string(from)),
			zap.String("to", string(po.Status)),
		)
	} else {
		logger.L(ctx).Info("Purchase order updated", zap.String("po_id", po.PoID), zap.Int("version", po.Version))
	}
	return s.withSupplier(ctx, po), nil
}

// Delete soft-deletes the order; its line items disappear with it
func (s *PurchaseOrderService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	po, err := s.orders.Update(ctx, id, func(po *procurement.PurchaseOrder) error {
		po.SoftDelete(actor)
		return nil
	})
	if err != nil {
		return oplog.Fail(ctx, s.metrics, "purchase_order.delete", err)
	}
	logger.L(ctx).Info("Purchase order deleted", zap.String("po_id", po.PoID))
	return nil
}

// ListLineItems returns the items of a live order in insertion order
func (s *PurchaseOrderService) ListLineItems(ctx context.Context, poID uuid.UUID) ([]LineItemResponse, error) {
	items, err := s.orders.FindLineItems(ctx, poID)
	if err != nil {
		return nil, err
	}
	return ToLineItemResponses(items), nil
}

// ReplaceItems swaps the whole line-item set and recomputes the grand total
// in one transaction
func (s *PurchaseOrderService) ReplaceItems(ctx context.Context, poID uuid.UUID, req ReplaceItemsRequest, actor string) (resp *PurchaseOrderResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "purchase_order", "replace_items", "id", poID.String(), "items", len(req.Items))
	defer func() { telemetry.End(span, err) }()

	var issues shared.Issues
	if err := s.checkItems(ctx, req.Items, &issues); err != nil {
		return nil, err
	}
	if err := issues.Err(); err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "purchase_order.replace_items", err)
	}
	inputs := toInputs(req.Items)
	po, err := s.orders.UpdateItems(ctx, poID, func(po *procurement.PurchaseOrder) error {
		return po.ReplaceItems(inputs, actor)
	})
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "purchase_order.replace_items", err)
	}
	s.logTotals(ctx, "Line items replaced", po)
	return s.withSupplier(ctx, po), nil
}

// AddLineItem appends one item to a DRAFT order
func (s *PurchaseOrderService) AddLineItem(ctx context.Context, poID uuid.UUID, req LineItemRequest, actor string) (*LineItemResponse, error) {
	var issues shared.Issues
	if err := s.checkItem(ctx, "itemId", req.ItemID, &issues); err != nil {
		return nil, err
	}
	if err := issues.Err(); err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "purchase_order.add_item", err)
	}

	var added *procurement.LineItem
	po, err := s.orders.UpdateItems(ctx, poID, func(po *procurement.PurchaseOrder) error {
		li, err := po.AddItem(req.toInput(), actor)
		added = li
		return err
	})
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "purchase_order.add_item", err)
	}
	s.logTotals(ctx, "Line item added", po)
	out := ToLineItemResponse(added)
	return &out, nil
}

// UpdateLineItem changes quantity and unit price of one item of a DRAFT order
func (s *PurchaseOrderService) UpdateLineItem(ctx context.Context, poID, lineID uuid.UUID, req UpdateLineItemRequest, actor string) (*LineItemResponse, error) {
	var updated *procurement.LineItem
	po, err := s.orders.UpdateItems(ctx, poID, func(po *procurement.PurchaseOrder) error {
		li, err := po.UpdateItem(lineID, req.Quantity, req.UnitPrice, actor)
		updated = li
		return err
	})
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "purchase_order.update_item", err)
	}
	s.logTotals(ctx, "Line item updated", po)
	out := ToLineItemResponse(updated)
	return &out, nil
}

// DeleteLineItem removes one item and recomputes the total from the rest.
// Removing the last item leaves a zero total on a DRAFT order.
func (s *PurchaseOrderService) DeleteLineItem(ctx context.Context, poID, lineID uuid.UUID, actor string) (*PurchaseOrderResponse, error) {
	po, err := s.orders.UpdateItems(ctx, poID, func(po *procurement.PurchaseOrder) error {
		return po.RemoveItem(lineID, actor)
	})
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "purchase_order.delete_item", err)
	}
	s.logTotals(ctx, "Line item deleted", po)
	return s.withSupplier(ctx, po), nil
}

func (s *PurchaseOrderService) logTotals(ctx context.Context, msg string, po *procurement.PurchaseOrder) {
	logger.L(ctx).Info(msg,
		zap.String("po_id", po.PoID),
		zap.Int("items", len(po.Items)),
		zap.String("grand_total", po.GrandTotal.StringFixed(2)),
	)
}

// checkNode adds an issue when nodeID does not name a live node
func (s *PurchaseOrderService) checkNode(ctx context.Context, nodeID string, issues *shared.Issues) error {
	if nodeID == "" || issues.HasPath("nodeId") {
		return nil
	}
	_, err := s.nodes.FindByNodeID(ctx, nodeID)
	return missingAsIssue(err, issues, "nodeId", fmt.Sprintf("Node %s not found", nodeID))
}

func (s *PurchaseOrderService) checkSupplier(ctx context.Context, id uuid.UUID, issues *shared.Issues) error {
	if id == uuid.Nil {
		return nil
	}
	_, err := s.suppliers.FindByID(ctx, id)
	return missingAsIssue(err, issues, "supplierId", "Supplier not found")
}

func (s *PurchaseOrderService) checkItems(ctx context.Context, reqs []LineItemRequest, issues *shared.Issues) error {
	seen := map[uuid.UUID]bool{}
	for i, r := range reqs {
		if r.ItemID == uuid.Nil || seen[r.ItemID] {
			continue
		}
		seen[r.ItemID] = true
		if err := s.checkItem(ctx, fmt.Sprintf("items[%d].itemId", i), r.ItemID, issues); err != nil {
			return err
		}
	}
	return nil
}

func (s *PurchaseOrderService) checkItem(ctx context.Context, path string, id uuid.UUID, issues *shared.Issues) error {
	if id == uuid.Nil {
		return nil
	}
	_, err := s.items.FindByID(ctx, id)
	return missingAsIssue(err, issues, path, "Item not found")
}

// missingAsIssue turns a NotFound lookup into a validation issue and passes
// any other error through
func missingAsIssue(err error, issues *shared.Issues, path, message string) error {
	if err == nil {
		return nil
	}
	if shared.CodeOf(err) == shared.CodeNotFound {
		issues.Add(path, message)
		return nil
	}
	return err
}

func (s *PurchaseOrderService) withSupplier(ctx context.Context, po *procurement.PurchaseOrder) *PurchaseOrderResponse {
	out := ToPurchaseOrderResponse(po)
	out.SupplierName = s.supplierNames(ctx, []*procurement.PurchaseOrder{po})[po.SupplierID]
	return &out
}

// supplierNames resolves each distinct supplier once. A supplier that has
// since been deleted resolves to "".
func (s *PurchaseOrderService) supplierNames(ctx context.Context, orders []*procurement.PurchaseOrder) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(orders))
	for _, po := range orders {
		if _, done := names[po.SupplierID]; done {
			continue
		}
		names[po.SupplierID] = ""
		sp, err := s.suppliers.FindByID(ctx, po.SupplierID)
		if err != nil {
			if shared.CodeOf(err) != shared.CodeNotFound {
				logger.L(ctx).Warn("Supplier lookup failed", zap.String("supplier_id", po.SupplierID.String()), zap.Error(err))
			}
			continue
		}
		names[po.SupplierID] = sp.Name
	}
	return names
}

func (f ListFilter) toFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
		filter.OrderDir = "desc"
	}
	filter = filter.Normalize()
	if f.Status != "" {
		filter.Filters[procurement.FilterStatus] = f.Status
	}
	if f.NodeID != "" {
		filter.Filters[procurement.FilterNodeID] = sequence.Normalize(f.NodeID)
	}
	if f.SupplierID != "" {
		filter.Filters[procurement.FilterSupplierID] = f.SupplierID
	}
	return filter
}
