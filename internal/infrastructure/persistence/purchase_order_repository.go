package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/domain/procurement"
	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	purchaseOrderResource = "Purchase order"
	lineItemResource      = "Line item"
)

// GormPurchaseOrderRepository implements procurement.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db  *gorm.DB
	seq *Sequencer
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB, seq *Sequencer) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db, seq: seq}
}

func poIDConflict(poID string) string {
	return fmt.Sprintf("PO ID %s already exists", poID)
}

// Create inserts the header and its line items in one transaction, minting
// PoID when empty
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, po *procurement.PurchaseOrder) error {
	insert := func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(models.PurchaseOrderModelFromDomain(po)).Error; err != nil {
			return err
		}
		return insertLineItems(tx, po)
	}
	if po.PoID == "" {
		return r.seq.Mint(ctx, r.db, MintSpec{
			Class:  sequence.PurchaseOrder,
			Scope:  po.SequenceScope(),
			Model:  &models.PurchaseOrderModel{},
			Column: "po_id",
			Assign: po.AssignPoID,
			Insert: insert,
		})
	}
	return insertManual(ctx, r.db, insert, poIDConflict(po.PoID))
}

// FindByID loads a live order with its line items
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var m models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).Preload("Items", orderLineItems).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, purchaseOrderResource)
	}
	return m.ToDomain(), nil
}

// FindByPoID loads a live order with its line items by its human identifier
func (r *GormPurchaseOrderRepository) FindByPoID(ctx context.Context, poID string) (*procurement.PurchaseOrder, error) {
	var m models.PurchaseOrderModel
	err := r.db.WithContext(ctx).
		Preload("Items", orderLineItems).
		First(&m, "po_id = ?", sequence.Normalize(poID)).Error
	if err != nil {
		return nil, notFound(err, purchaseOrderResource)
	}
	return m.ToDomain(), nil
}

// FindAll lists live order headers; Search matches poId or supplier name
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*procurement.PurchaseOrder, error) {
	var rows []models.PurchaseOrderModel
	query := paginate(r.filtered(ctx, filter), filter, PurchaseOrderSortFields, models.PurchaseOrderModel{}.TableName())
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*procurement.PurchaseOrder, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Count counts live orders matching filter
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

// Update locks the header row, applies fn and saves the header. The status
// fn sees is the one committed when the lock was taken.
func (r *GormPurchaseOrderRepository) Update(ctx context.Context, id uuid.UUID, fn func(*procurement.PurchaseOrder) error) (*procurement.PurchaseOrder, error) {
	return r.mutate(ctx, id, fn, false)
}

// UpdateItems locks the header row, applies fn, then replaces the stored line
// items and saves the recomputed header in the same transaction
func (r *GormPurchaseOrderRepository) UpdateItems(ctx context.Context, id uuid.UUID, fn func(*procurement.PurchaseOrder) error) (*procurement.PurchaseOrder, error) {
	return r.mutate(ctx, id, fn, true)
}

// FindLineItems lists the line items of a live order
func (r *GormPurchaseOrderRepository) FindLineItems(ctx context.Context, poID uuid.UUID) ([]*procurement.LineItem, error) {
	db := r.db.WithContext(ctx)
	var header models.PurchaseOrderModel
	if err := db.Select("id").First(&header, "id = ?", poID).Error; err != nil {
		return nil, notFound(err, purchaseOrderResource)
	}
	var rows []models.LineItemModel
	if err := orderLineItems(db.Where("purchase_order_id = ?", poID)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return lineItemsToDomain(rows), nil
}

// FindLineItem finds one line item whose order is live
func (r *GormPurchaseOrderRepository) FindLineItem(ctx context.Context, lineID uuid.UUID) (*procurement.LineItem, error) {
	var m models.LineItemModel
	err := r.db.WithContext(ctx).
		Joins("JOIN purchase_orders ON purchase_orders.id = purchase_order_line_items.purchase_order_id AND purchase_orders.deleted_at IS NULL").
		First(&m, "purchase_order_line_items.id = ?", lineID).Error
	if err != nil {
		return nil, notFound(err, lineItemResource)
	}
	return m.ToDomain(), nil
}

func (r *GormPurchaseOrderRepository) mutate(ctx context.Context, id uuid.UUID, fn func(*procurement.PurchaseOrder) error, rewriteItems bool) (*procurement.PurchaseOrder, error) {
	for attempt := 0; ; attempt++ {
		po, reminted, err := r.mutateOnce(ctx, id, fn, rewriteItems)
		if err == nil {
			return po, nil
		}
		if !reminted || !isUniqueViolation(err) {
			return nil, err
		}
		if attempt >= r.seq.retry {
			return nil, shared.Conflict("Could not allocate a unique PurchaseOrder identifier, please retry")
		}
	}
}

// mutateOnce runs fn against the locked order. An order whose node or month
// moved comes back without a PO number and is re-numbered in the new scope;
// reminted reports that so a colliding number can be retried.
func (r *GormPurchaseOrderRepository) mutateOnce(ctx context.Context, id uuid.UUID, fn func(*procurement.PurchaseOrder) error, rewriteItems bool) (out *procurement.PurchaseOrder, reminted bool, err error) {
	var release func()
	defer func() {
		if release != nil {
			release()
		}
	}()
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.PurchaseOrderModel
		if err := lockForUpdate(tx).First(&m, "id = ?", id).Error; err != nil {
			return notFound(err, purchaseOrderResource)
		}
		if err := orderLineItems(tx.Where("purchase_order_id = ?", id)).Find(&m.Items).Error; err != nil {
			return err
		}

		po := m.ToDomain()
		if err := fn(po); err != nil {
			return err
		}

		if po.NeedsPoID() {
			poID, rel, err := r.seq.Next(ctx, tx, sequence.PurchaseOrder, po.SequenceScope(), &models.PurchaseOrderModel{}, "po_id")
			if err != nil {
				return err
			}
			release = rel
			po.AssignPoID(poID)
			reminted = true
		}

		if rewriteItems {
			if err := tx.Where("purchase_order_id = ?", id).Delete(&models.LineItemModel{}).Error; err != nil {
				return err
			}
			if err := insertLineItems(tx, po); err != nil {
				return err
			}
		}

		expected := po.Version
		po.IncrementVersion()
		saved := models.PurchaseOrderModelFromDomain(po)
		if err := saveVersioned(tx, &models.PurchaseOrderModel{}, po.ID, expected, saved.HeaderColumns()); err != nil {
			if reminted && isUniqueViolation(err) {
				return err
			}
			return translate(err, purchaseOrderResource, poIDConflict(po.PoID))
		}
		out = po
		return nil
	})
	if err != nil {
		return nil, reminted, err
	}
	return out, reminted, nil
}

func (r *GormPurchaseOrderRepository) filtered(ctx context.Context, filter shared.Filter) *gorm.DB {
	db := r.db.WithContext(ctx)
	query := db.Model(&models.PurchaseOrderModel{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		suppliers := db.Unscoped().Model(&models.SupplierModel{}).
			Select("id").
			Where("UPPER(name) LIKE ? ESCAPE '\\'", pattern)
		query = query.Where("UPPER(po_id) LIKE ? ESCAPE '\\' OR supplier_id IN (?)", pattern, suppliers)
	}
	if v := filterString(filter, procurement.FilterStatus); v != "" {
		query = query.Where("status = ?", strings.ToUpper(v))
	}
	if v := filterString(filter, procurement.FilterNodeID); v != "" {
		query = query.Where("node_id = ?", sequence.Normalize(v))
	}
	if v := filterString(filter, procurement.FilterSupplierID); v != "" {
		query = query.Where("supplier_id = ?", v)
	}
	return query
}

func insertLineItems(tx *gorm.DB, po *procurement.PurchaseOrder) error {
	if len(po.Items) == 0 {
		return nil
	}
	rows := make([]*models.LineItemModel, len(po.Items))
	for i, li := range po.Items {
		li.PurchaseOrderID = po.ID
		rows[i] = models.LineItemModelFromDomain(li)
	}
	return tx.Create(rows).Error
}

func orderLineItems(db *gorm.DB) *gorm.DB {
	return db.Order("purchase_order_line_items.created_at ASC, purchase_order_line_items.id ASC")
}

func lineItemsToDomain(rows []models.LineItemModel) []*procurement.LineItem {
	out := make([]*procurement.LineItem, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}
