package catalog

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/application/oplog"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ItemService manages stock-keeping items
type ItemService struct {
	repo    catalog.ItemRepository
	metrics *telemetry.BusinessMetrics
}

func NewItemService(repo catalog.ItemRepository) *ItemService {
	return &ItemService{repo: repo}
}

// SetBusinessMetrics enables identifier and rejection counters
func (s *ItemService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// Create stores a new item. A manual SKU must be unused; an omitted one is
// derived from the consonants of the name, e.g. KMJ-0001 for "Kemeja Flanel".
func (s *ItemService) Create(ctx context.Context, req CreateItemRequest, actor string) (resp *ItemResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "item", "create", "uom", req.UomID.String())
	defer func() { telemetry.End(span, err) }()

	item, err := catalog.NewItem(catalog.ItemInput{
		SKU:    req.SKU,
		Name:   req.Name,
		Brand:  req.Brand,
		UomID:  req.UomID,
		Status: catalog.ItemStatus(req.Status),
	}, actor)
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "item.create", err)
	}

	derived := item.SKU == ""
	if !derived {
		exists, err := s.repo.ExistsBySKU(ctx, item.SKU)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, oplog.Fail(ctx, s.metrics, "item.create", shared.Conflict(fmt.Sprintf("SKU %s already exists", item.SKU)))
		}
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "item.create", err)
	}
	if derived {
		s.metrics.RecordMinted(ctx, sequence.SKU.Name)
	}
	span.SetAttributes(telemetry.Attributes(telemetry.AttrSKU, item.SKU)...)

	logger.L(ctx).Info("Item created",
		zap.String("sku", item.SKU),
		zap.Bool("derived", derived),
	)
	out := ToItemResponse(item)
	return &out, nil
}

func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToItemResponse(item)
	return &out, nil
}

func (s *ItemService) GetBySKU(ctx context.Context, sku string) (*ItemResponse, error) {
	item, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	out := ToItemResponse(item)
	return &out, nil
}

func (s *ItemService) List(ctx context.Context, f ListFilter) ([]ItemResponse, int64, error) {
	filter := f.toFilter("name")
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToItemResponses(items), total, nil
}

func (s *ItemService) Update(ctx context.Context, id uuid.UUID, req UpdateItemRequest, actor string) (*ItemResponse, error) {
	patch := catalog.ItemPatch{
		SKU:   req.SKU,
		Name:  req.Name,
		Brand: req.Brand,
		UomID: req.UomID,
	}
	if req.Status != nil {
		st := catalog.ItemStatus(*req.Status)
		patch.Status = &st
	}
	item, err := s.repo.Update(ctx, id, func(i *catalog.Item) error {
		return i.Apply(patch, actor)
	})
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "item.update", err)
	}
	logger.L(ctx).Info("Item updated", zap.String("sku", item.SKU), zap.Int("version", item.Version))
	out := ToItemResponse(item)
	return &out, nil
}

// Delete soft-deletes the item. It stops counting toward its unit's usage.
func (s *ItemService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	item, err := s.repo.Update(ctx, id, func(i *catalog.Item) error {
		i.SoftDelete(actor)
		return nil
	})
	if err != nil {
		return oplog.Fail(ctx, s.metrics, "item.delete", err)
	}
	logger.L(ctx).Info("Item deleted", zap.String("sku", item.SKU))
	return nil
}
