package models

import (
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/google/uuid"
)

// UomModel is the persistence model for catalog.Uom
type UomModel struct {
	AuditModel
	UomID  string            `gorm:"type:varchar(20);not null;uniqueIndex:idx_uoms_uom_id_live,where:deleted_at IS NULL"`
	Code   string            `gorm:"type:varchar(20);not null"`
	Name   string            `gorm:"type:varchar(100);not null;index"`
	Status catalog.UomStatus `gorm:"type:varchar(20);not null;default:'Active'"`
}

// TableName returns the table name for GORM
func (UomModel) TableName() string {
	return "uoms"
}

// ToDomain converts the model to a catalog.Uom
func (m *UomModel) ToDomain() *catalog.Uom {
	return &catalog.Uom{
		BaseAggregateRoot: m.ToDomainAggregate(),
		UomID:             m.UomID,
		Code:              m.Code,
		Name:              m.Name,
		Status:            m.Status,
	}
}

// UomModelFromDomain converts a catalog.Uom to its model
func UomModelFromDomain(u *catalog.Uom) *UomModel {
	m := &UomModel{
		UomID:  u.UomID,
		Code:   u.Code,
		Name:   u.Name,
		Status: u.Status,
	}
	m.FromDomainAggregate(u.BaseAggregateRoot)
	return m
}

// ItemModel is the persistence model for catalog.Item
type ItemModel struct {
	AuditModel
	SKU    string             `gorm:"column:sku;type:varchar(8);not null;uniqueIndex:idx_items_sku_live,where:deleted_at IS NULL"`
	Name   string             `gorm:"type:varchar(200);not null"`
	Brand  string             `gorm:"type:varchar(100)"`
	UomID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	Status catalog.ItemStatus `gorm:"type:varchar(20);not null;default:'Active';index"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the model to a catalog.Item
func (m *ItemModel) ToDomain() *catalog.Item {
	return &catalog.Item{
		BaseAggregateRoot: m.ToDomainAggregate(),
		SKU:               m.SKU,
		Name:              m.Name,
		Brand:             m.Brand,
		UomID:             m.UomID,
		Status:            m.Status,
	}
}

// ItemModelFromDomain converts a catalog.Item to its model
func ItemModelFromDomain(i *catalog.Item) *ItemModel {
	m := &ItemModel{
		SKU:    i.SKU,
		Name:   i.Name,
		Brand:  i.Brand,
		UomID:  i.UomID,
		Status: i.Status,
	}
	m.FromDomainAggregate(i.BaseAggregateRoot)
	return m
}
