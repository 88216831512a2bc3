package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const supplierResource = "Supplier"

// GormSupplierRepository implements partner.SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

func suppIDConflict(suppID string) string {
	return fmt.Sprintf("Supplier ID %s already exists", suppID)
}

// Create inserts s; a live supplier with the same SuppID is a conflict
func (r *GormSupplierRepository) Create(ctx context.Context, s *partner.Supplier) error {
	return insertManual(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Create(models.SupplierModelFromDomain(s)).Error
	}, suppIDConflict(s.SuppID))
}

// FindByID finds a live supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var m models.SupplierModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, supplierResource)
	}
	return m.ToDomain(), nil
}

// FindBySuppID finds a live supplier by its code
func (r *GormSupplierRepository) FindBySuppID(ctx context.Context, suppID string) (*partner.Supplier, error) {
	var m models.SupplierModel
	if err := r.db.WithContext(ctx).First(&m, "supp_id = ?", strings.ToUpper(strings.TrimSpace(suppID))).Error; err != nil {
		return nil, notFound(err, supplierResource)
	}
	return m.ToDomain(), nil
}

// FindAll searches suppId, name and picName, newest first by default
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*partner.Supplier, error) {
	var rows []models.SupplierModel
	query := paginate(r.filtered(ctx, filter), filter, SupplierSortFields, models.SupplierModel{}.TableName())
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*partner.Supplier, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Count counts live suppliers matching filter
func (r *GormSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

// Update locks the supplier, applies fn and saves it under a version check
func (r *GormSupplierRepository) Update(ctx context.Context, id uuid.UUID, fn func(*partner.Supplier) error) (*partner.Supplier, error) {
	var out *partner.Supplier
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.SupplierModel
		if err := lockForUpdate(tx).First(&m, "id = ?", id).Error; err != nil {
			return notFound(err, supplierResource)
		}
		s := m.ToDomain()
		if err := fn(s); err != nil {
			return err
		}

		expected := s.Version
		s.IncrementVersion()
		saved := models.SupplierModelFromDomain(s)
		cols := saved.AuditColumns()
		cols["supp_id"] = saved.SuppID
		cols["name"] = saved.Name
		cols["pic_name"] = saved.PICName
		cols["address"] = saved.Address
		cols["phone"] = saved.Phone
		cols["status"] = saved.Status
		if err := saveVersioned(tx, &models.SupplierModel{}, s.ID, expected, cols); err != nil {
			return translate(err, supplierResource, suppIDConflict(s.SuppID))
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormSupplierRepository) filtered(ctx context.Context, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.SupplierModel{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		query = query.Where(
			"UPPER(supp_id) LIKE ? ESCAPE '\\' OR UPPER(name) LIKE ? ESCAPE '\\' OR UPPER(pic_name) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern,
		)
	}
	if v := filterString(filter, partner.FilterStatus); v != "" {
		query = query.Where("status = ?", v)
	}
	return query
}
