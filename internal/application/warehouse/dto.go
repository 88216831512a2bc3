package warehouse

import (
	"time"

	"github.com/erp/backoffice/internal/domain/warehouse"
	"github.com/google/uuid"
)

// CreateNodeRequest creates a warehouse, aisle, rack or bin. An empty
// nodeId is minted from the node type prefix.
type CreateNodeRequest struct {
	NodeID   string     `json:"nodeId" binding:"omitempty,max=10"`
	Name     string     `json:"name" binding:"required,max=100"`
	NodeType string     `json:"nodeType" binding:"required"`
	ParentID *uuid.UUID `json:"parentId"`
	Method   string     `json:"method"`
	Address  string     `json:"address" binding:"max=500"`
	Status   string     `json:"status"`
}

// UpdateNodeRequest patches a node; absent fields are unchanged.
// clearParent detaches the node and wins over parentId.
type UpdateNodeRequest struct {
	Name        *string    `json:"name" binding:"omitempty,max=100"`
	Address     *string    `json:"address" binding:"omitempty,max=500"`
	Method      *string    `json:"method"`
	Status      *string    `json:"status"`
	ParentID    *uuid.UUID `json:"parentId"`
	ClearParent bool       `json:"clearParent"`
}

// NodeListFilter is bound from the list query string
type NodeListFilter struct {
	Search   string `form:"search"`
	NodeType string `form:"nodeType"`
	Status   string `form:"status"`
	ParentID string `form:"parentId" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TreeFilter narrows ListTree to one root or one root type
type TreeFilter struct {
	RootID   *uuid.UUID
	RootType string
}

type NodeResponse struct {
	ID        uuid.UUID  `json:"id"`
	NodeID    string     `json:"nodeId"`
	Name      string     `json:"name"`
	NodeType  string     `json:"nodeType"`
	ParentID  *uuid.UUID `json:"parentId"`
	Method    string     `json:"method"`
	Address   string     `json:"address"`
	Status    string     `json:"status"`
	Version   int        `json:"version"`
	CreatedBy string     `json:"createdBy"`
	UpdatedBy string     `json:"updatedBy"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type TreeNodeResponse struct {
	NodeResponse
	Children []*TreeNodeResponse `json:"children"`
}

func ToNodeResponse(n *warehouse.Node) NodeResponse {
	return NodeResponse{
		ID:        n.ID,
		NodeID:    n.NodeID,
		Name:      n.Name,
		NodeType:  string(n.NodeType),
		ParentID:  n.ParentID,
		Method:    string(n.Method),
		Address:   n.Address,
		Status:    string(n.Status),
		Version:   n.Version,
		CreatedBy: n.CreatedBy,
		UpdatedBy: n.UpdatedBy,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func ToNodeResponses(nodes []*warehouse.Node) []NodeResponse {
	out := make([]NodeResponse, len(nodes))
	for i, n := range nodes {
		out[i] = ToNodeResponse(n)
	}
	return out
}

func toTreeResponse(forest []*warehouse.TreeNode) []*TreeNodeResponse {
	out := make([]*TreeNodeResponse, len(forest))
	for i, tn := range forest {
		out[i] = &TreeNodeResponse{
			NodeResponse: ToNodeResponse(tn.Node),
			Children:     toTreeResponse(tn.Children),
		}
	}
	return out
}
