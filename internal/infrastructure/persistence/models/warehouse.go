package models

import (
	"github.com/erp/backoffice/internal/domain/warehouse"
	"github.com/google/uuid"
)

// WarehouseNodeModel is the persistence model for warehouse.Node
type WarehouseNodeModel struct {
	AuditModel
	NodeID   string             `gorm:"type:varchar(10);not null;uniqueIndex:idx_warehouse_nodes_node_id_live,where:deleted_at IS NULL"`
	Name     string             `gorm:"type:varchar(100);not null"`
	NodeType warehouse.NodeType `gorm:"type:varchar(20);not null"`
	ParentID *uuid.UUID         `gorm:"type:uuid;index"`
	Method   warehouse.Method   `gorm:"type:varchar(10);not null;default:'FIFO'"`
	Address  string             `gorm:"type:text"`
	Status   warehouse.Status   `gorm:"type:varchar(20);not null;default:'Active'"`
}

// TableName returns the table name for GORM
func (WarehouseNodeModel) TableName() string {
	return "warehouse_nodes"
}

// ToDomain converts the model to a warehouse.Node
func (m *WarehouseNodeModel) ToDomain() *warehouse.Node {
	return &warehouse.Node{
		BaseAggregateRoot: m.ToDomainAggregate(),
		NodeID:            m.NodeID,
		Name:              m.Name,
		NodeType:          m.NodeType,
		ParentID:          m.ParentID,
		Method:            m.Method,
		Address:           m.Address,
		Status:            m.Status,
	}
}

// WarehouseNodeModelFromDomain converts a warehouse.Node to its model
func WarehouseNodeModelFromDomain(n *warehouse.Node) *WarehouseNodeModel {
	m := &WarehouseNodeModel{
		NodeID:   n.NodeID,
		Name:     n.Name,
		NodeType: n.NodeType,
		ParentID: n.ParentID,
		Method:   n.Method,
		Address:  n.Address,
		Status:   n.Status,
	}
	m.FromDomainAggregate(n.BaseAggregateRoot)
	return m
}
