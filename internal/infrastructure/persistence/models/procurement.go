package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for procurement.PurchaseOrder
type PurchaseOrderModel struct {
	AuditModel
	PoID         string                  `gorm:"type:varchar(32);not null;uniqueIndex:idx_purchase_orders_po_id_live,where:deleted_at IS NULL"`
	NodeID       string                  `gorm:"type:varchar(10);not null;index"`
	PoDate       time.Time               `gorm:"type:date;not null"`
	RequiredDate time.Time               `gorm:"type:date;not null"`
	SupplierID   uuid.UUID               `gorm:"type:uuid;not null;index"`
	Status       procurement.Status      `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	PaymentType  procurement.PaymentType `gorm:"type:varchar(30);not null"`
	GrandTotal   decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	PaidAmount   decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	DPPercentage *decimal.Decimal        `gorm:"column:dp_percentage;type:decimal(5,2)"`
	DPAmount     *decimal.Decimal        `gorm:"column:dp_amount;type:decimal(18,2)"`
	Notes        string                  `gorm:"type:text"`
	Items        []LineItemModel         `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the model, with any loaded items, to a procurement.PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *procurement.PurchaseOrder {
	po := &procurement.PurchaseOrder{
		BaseAggregateRoot: m.ToDomainAggregate(),
		PoID:              m.PoID,
		NodeID:            m.NodeID,
		PoDate:            m.PoDate.UTC(),
		RequiredDate:      m.RequiredDate.UTC(),
		SupplierID:        m.SupplierID,
		Status:            m.Status,
		PaymentType:       m.PaymentType,
		GrandTotal:        m.GrandTotal,
		PaidAmount:        m.PaidAmount,
		DPPercentage:      m.DPPercentage,
		DPAmount:          m.DPAmount,
		Notes:             m.Notes,
		Items:             make([]*procurement.LineItem, len(m.Items)),
	}
	for i := range m.Items {
		po.Items[i] = m.Items[i].ToDomain()
	}
	return po
}

// PurchaseOrderModelFromDomain converts the header only; items are written separately
func PurchaseOrderModelFromDomain(po *procurement.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		PoID:         po.PoID,
		NodeID:       po.NodeID,
		PoDate:       po.PoDate,
		RequiredDate: po.RequiredDate,
		SupplierID:   po.SupplierID,
		Status:       po.Status,
		PaymentType:  po.PaymentType,
		GrandTotal:   po.GrandTotal,
		PaidAmount:   po.PaidAmount,
		DPPercentage: po.DPPercentage,
		DPAmount:     po.DPAmount,
		Notes:        po.Notes,
	}
	m.FromDomainAggregate(po.BaseAggregateRoot)
	return m
}

// HeaderColumns returns every mutable header column for an Updates map
func (m *PurchaseOrderModel) HeaderColumns() map[string]any {
	cols := m.AuditColumns()
	cols["po_id"] = m.PoID
	cols["node_id"] = m.NodeID
	cols["po_date"] = m.PoDate
	cols["required_date"] = m.RequiredDate
	cols["supplier_id"] = m.SupplierID
	cols["status"] = m.Status
	cols["payment_type"] = m.PaymentType
	cols["grand_total"] = m.GrandTotal
	cols["paid_amount"] = m.PaidAmount
	cols["dp_percentage"] = m.DPPercentage
	cols["dp_amount"] = m.DPAmount
	cols["notes"] = m.Notes
	return cols
}

// LineItemModel is the persistence model for procurement.LineItem
type LineItemModel struct {
	BaseModel
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "purchase_order_line_items"
}

// ToDomain converts the model to a procurement.LineItem
func (m *LineItemModel) ToDomain() *procurement.LineItem {
	return &procurement.LineItem{
		ID:              m.ID,
		PurchaseOrderID: m.PurchaseOrderID,
		ItemID:          m.ItemID,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		TotalAmount:     m.TotalAmount,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// LineItemModelFromDomain converts a procurement.LineItem to its model
func LineItemModelFromDomain(li *procurement.LineItem) *LineItemModel {
	return &LineItemModel{
		BaseModel: BaseModel{
			ID:        li.ID,
			CreatedAt: li.CreatedAt,
			UpdatedAt: li.UpdatedAt,
		},
		PurchaseOrderID: li.PurchaseOrderID,
		ItemID:          li.ItemID,
		Quantity:        li.Quantity,
		UnitPrice:       li.UnitPrice,
		TotalAmount:     li.TotalAmount,
	}
}

// All lists every model, in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&WarehouseNodeModel{},
		&UomModel{},
		&ItemModel{},
		&SupplierModel{},
		&PurchaseOrderModel{},
		&LineItemModel{},
	}
}
