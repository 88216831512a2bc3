package partner

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/application/oplog"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	metrics      *telemetry.BusinessMetrics
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo}
}

// SetBusinessMetrics enables rejection counters
func (s *SupplierService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest, actor string) (resp *SupplierResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "supplier", "create", telemetry.AttrSuppID, strings.ToUpper(req.SuppID))
	defer func() { telemetry.End(span, err) }()

	supplier, err := partner.NewSupplier(partner.SupplierInput{
		SuppID:  req.SuppID,
		Name:    req.Name,
		PICName: req.PICName,
		Address: req.Address,
		Phone:   req.Phone,
		Status:  partner.Status(req.Status),
	}, actor)
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "supplier.create", err)
	}

	// Check if supplier id already exists
	if _, err := s.supplierRepo.FindBySuppID(ctx, supplier.SuppID); err == nil {
		return nil, oplog.Fail(ctx, s.metrics, "supplier.create",
			shared.Conflict(fmt.Sprintf("Supplier ID %s already exists", supplier.SuppID)))
	} else if shared.CodeOf(err) != shared.CodeNotFound {
		return nil, err
	}

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "supplier.create", err)
	}
	logger.L(ctx).Info("Supplier created", zap.String("supp_id", supplier.SuppID))

	out := ToSupplierResponse(supplier)
	return &out, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToSupplierResponse(supplier)
	return &out, nil
}

// GetBySuppID retrieves a supplier by its business identifier
func (s *SupplierService) GetBySuppID(ctx context.Context, suppID string) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindBySuppID(ctx, suppID)
	if err != nil {
		return nil, err
	}
	out := ToSupplierResponse(supplier)
	return &out, nil
}

// List retrieves one page of suppliers, newest first unless ordered otherwise
func (s *SupplierService) List(ctx context.Context, f SupplierListFilter) ([]SupplierResponse, int64, error) {
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
		filter.Filters[partner.FilterStatus] = f.Status
	}

	suppliers, err := s.supplierRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.supplierRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToSupplierResponses(suppliers), total, nil
}

// Update updates a supplier
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest, actor string) (*SupplierResponse, error) {
	patch := partner.Patch{
		SuppID:  req.SuppID,
		Name:    req.Name,
		PICName: req.PICName,
		Address: req.Address,
		Phone:   req.Phone,
	}
	if req.Status != nil {
		st := partner.Status(*req.Status)
		patch.Status = &st
	}
	supplier, err := s.supplierRepo.Update(ctx, id, func(sp *partner.Supplier) error {
		return sp.Apply(patch, actor)
	})
	if err != nil {
		return nil, oplog.Fail(ctx, s.metrics, "supplier.update", err)
	}
	logger.L(ctx).Info("Supplier updated", zap.String("supp_id", supplier.SuppID))
	out := ToSupplierResponse(supplier)
	return &out, nil
}

// Delete soft-deletes a supplier. Purchase orders keep their reference.
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	supplier, err := s.supplierRepo.Update(ctx, id, func(sp *partner.Supplier) error {
		sp.SoftDelete(actor)
		return nil
	})
	if err != nil {
		return oplog.Fail(ctx, s.metrics, "supplier.delete", err)
	}
	logger.L(ctx).Info("Supplier deleted", zap.String("supp_id", supplier.SuppID))
	return nil
}
