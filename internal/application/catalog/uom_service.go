package catalog

import (
	"context"

	"github.com/erp/backoffice/internal/application/oplog"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UomService manages units of measure
type UomService struct {
	repo    catalog.UomRepository
	metrics *telemetry.BusinessMetrics
}

func NewUomService(repo catalog.UomRepository) *UomService {
	return &UomService{repo: repo}
}

// SetBusinessMetrics enables identifier and rejection counters
func (s *UomService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

func (s *UomService) Create(ctx context.Context, req CreateUomRequest, actor string) (resp *UomResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "uom", "create", "code", req.Code)
	defer func() { telemetry.End(span, err) }()

	u, err := catalog.NewUom(catalog.UomInput{
		UomID:  req.UomID,
		Code:   req.Code,
		Name:   req.Name,
		Status: catalog.UomStatus(req.Status),
	}, actor)
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "uom.create", err)
	}
	minted := u.UomID == ""
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "uom.create", err)
	}
	if minted {
		s.metrics.RecordMinted(ctx, sequence.Uom.Name)
	}
	span.SetAttributes(telemetry.Attributes(telemetry.AttrUomID, u.UomID)...)

	logger.L(ctx).Info("UOM created", zap.String("uom_id", u.UomID), zap.String("code", u.Code))
	out := ToUomResponse(u)
	return &out, nil
}

func (s *UomService) GetByID(ctx context.Context, id uuid.UUID) (*UomResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToUomResponse(u)
	return &out, nil
}

func (s *UomService) GetByUomID(ctx context.Context, uomID string) (*UomResponse, error) {
	u, err := s.repo.FindByUomID(ctx, uomID)
	if err != nil {
		return nil, err
	}
	out := ToUomResponse(u)
	return &out, nil
}

func (s *UomService) List(ctx context.Context, f ListFilter) ([]UomResponse, int64, error) {
	filter := f.toFilter("code")
	units, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToUomResponses(units), total, nil
}

// ListActive returns the units items may currently reference
func (s *UomService) ListActive(ctx context.Context) ([]UomResponse, error) {
	units, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	return ToUomResponses(units), nil
}

func (s *UomService) Update(ctx context.Context, id uuid.UUID, req UpdateUomRequest, actor string) (*UomResponse, error) {
	u, err := s.repo.Update(ctx, id, func(u *catalog.Uom, _ int64) error {
		return u.Apply(catalog.UomPatch{Code: req.Code, Name: req.Name}, actor)
	})
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "uom.update", err)
	}
	out := ToUomResponse(u)
	return &out, nil
}

// Deactivate marks the unit Inactive. It is refused while any live Active
// item still references the unit.
func (s *UomService) Deactivate(ctx context.Context, id uuid.UUID, actor string) (resp *UomResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "uom", "deactivate", "id", id.String())
	defer func() { telemetry.End(span, err) }()

	var blocking int64
	u, err := s.repo.Update(ctx, id, func(u *catalog.Uom, activeItems int64) error {
		blocking = activeItems
		return u.Deactivate(activeItems, actor)
	})
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "uom.deactivate", err)
	}
	logger.L(ctx).Info("UOM deactivated", zap.String("uom_id", u.UomID), zap.Int64("active_items", blocking))
	out := ToUomResponse(u)
	return &out, nil
}

func (s *UomService) Activate(ctx context.Context, id uuid.UUID, actor string) (*UomResponse, error) {
	u, err := s.repo.Update(ctx, id, func(u *catalog.Uom, _ int64) error {
		u.Activate(actor)
		return nil
	})
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "uom.activate", err)
	}
	logger.L(ctx).Info("UOM activated", zap.String("uom_id", u.UomID))
	out := ToUomResponse(u)
	return &out, nil
}

// Delete soft-deletes the unit under the same usage guard as Deactivate
func (s *UomService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	u, err := s.repo.Update(ctx, id, func(u *catalog.Uom, activeItems int64) error {
		return u.SoftDelete(activeItems, actor)
	})
	if err != nil {
		return oplog.Fail(ctx, s.metrics, "uom.delete", err)
	}
	logger.L(ctx).Info("UOM deleted", zap.String("uom_id", u.UomID))
	return nil
}
