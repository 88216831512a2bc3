package models

import "github.com/erp/backoffice/internal/domain/partner"

// SupplierModel is the persistence model for partner.Supplier
type SupplierModel struct {
	AuditModel
	SuppID  string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_suppliers_supp_id_live,where:deleted_at IS NULL"`
	Name    string         `gorm:"type:varchar(200);not null"`
	PICName string         `gorm:"column:pic_name;type:varchar(100);not null"`
	Address string         `gorm:"type:text;not null"`
	Phone   string         `gorm:"type:varchar(50);not null"`
	Status  partner.Status `gorm:"type:varchar(20);not null;default:'Active'"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the model to a partner.Supplier
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.ToDomainAggregate(),
		SuppID:            m.SuppID,
		Name:              m.Name,
		PICName:           m.PICName,
		Address:           m.Address,
		Phone:             m.Phone,
		Status:            m.Status,
	}
}

// SupplierModelFromDomain converts a partner.Supplier to its model
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{
		SuppID:  s.SuppID,
		Name:    s.Name,
		PICName: s.PICName,
		Address: s.Address,
		Phone:   s.Phone,
		Status:  s.Status,
	}
	m.FromDomainAggregate(s.BaseAggregateRoot)
	return m
}
