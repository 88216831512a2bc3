package warehouse

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// NodeType is the level of a node in the storage hierarchy
type NodeType string

const (
	NodeTypeWarehouse NodeType = "Warehouse"
	NodeTypeAisle     NodeType = "Aisle"
	NodeTypeRack      NodeType = "Rack"
	NodeTypeBin       NodeType = "Bin"
)

var nodeTypePrefixes = map[NodeType]string{
	NodeTypeWarehouse: "WH",
	NodeTypeAisle:     "AS",
	NodeTypeRack:      "RK",
	NodeTypeBin:       "BN",
}

// IsValid checks if the node type is recognised
func (t NodeType) IsValid() bool {
	_, ok := nodeTypePrefixes[t]
	return ok
}

// Prefix returns the identifier prefix minted node IDs of this type start with
func (t NodeType) Prefix() string {
	return nodeTypePrefixes[t]
}

// Method is the stock rotation policy of a node
type Method string

const (
	MethodFIFO Method = "FIFO"
	MethodLIFO Method = "LIFO"
	MethodFEFO Method = "FEFO"
)

// IsValid checks if the method is recognised
func (m Method) IsValid() bool {
	switch m {
	case MethodFIFO, MethodLIFO, MethodFEFO:
		return true
	}
	return false
}

// Status is the operational state of a node
type Status string

const (
	StatusActive      Status = "Active"
	StatusInactive    Status = "Inactive"
	StatusMaintenance Status = "Maintenance"
)

// IsValid checks if the status is recognised
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance:
		return true
	}
	return false
}

// Node is one storage location (warehouse, aisle, rack or bin). The
// hierarchy is expressed only through ParentID back-references.
type Node struct {
	shared.BaseAggregateRoot
	NodeID   string
	Name     string
	NodeType NodeType
	ParentID *uuid.UUID
	Method   Method
	Address  string
	Status   Status
}

// NodeInput carries the caller-supplied fields for a new node.
// An empty NodeID asks the store to mint one.
type NodeInput struct {
	NodeID   string
	Name     string
	NodeType NodeType
	ParentID *uuid.UUID
	Method   Method
	Address  string
	Status   Status
}

var nodeRules = []shared.Rule[*Node]{
	{
		Name: "name_required", Path: "name", Message: "Name is required",
		Valid: func(n *Node) bool { return n.Name != "" },
	},
	{
		Name: "name_length", Path: "name", Message: "Name cannot exceed 100 characters",
		Valid: func(n *Node) bool { return len(n.Name) <= 100 },
	},
	{
		Name: "node_type", Path: "nodeType", Message: "Node Type must be one of Warehouse, Aisle, Rack, Bin",
		Valid: func(n *Node) bool { return n.NodeType.IsValid() },
	},
	{
		Name: "method", Path: "method", Message: "Method must be one of FIFO, LIFO, FEFO",
		Valid: func(n *Node) bool { return n.Method.IsValid() },
	},
	{
		Name: "status", Path: "status", Message: "Status must be one of Active, Inactive, Maintenance",
		Valid: func(n *Node) bool { return n.Status.IsValid() },
	},
	{
		Name: "warehouse_address", Path: "address", Message: "Address is required",
		When:  func(n *Node) bool { return n.NodeType == NodeTypeWarehouse },
		Valid: func(n *Node) bool { return n.Address != "" },
	},
}

// NewNode validates input and builds a node. NodeID stays empty when it is to be minted.
func NewNode(in NodeInput, actor string) (*Node, error) {
	n := &Node{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(actor),
		NodeID:            sequence.Normalize(in.NodeID),
		Name:              strings.TrimSpace(in.Name),
		NodeType:          in.NodeType,
		ParentID:          in.ParentID,
		Method:            in.Method,
		Address:           strings.TrimSpace(in.Address),
		Status:            in.Status,
	}
	if n.Method == "" {
		n.Method = MethodFIFO
	}
	if n.Status == "" {
		n.Status = StatusActive
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Validate runs the node rule table plus identifier format checks
func (n *Node) Validate() error {
	issues := shared.Evaluate(n, nodeRules)
	if n.NodeID != "" {
		issues.Merge(sequence.ValidationIssues(sequence.Node, "nodeId", n.NodeID))
	}
	if n.ParentID != nil && *n.ParentID == n.ID {
		issues.Add("parentId", "Node cannot be its own parent")
	}
	return issues.Err()
}

// SequenceScope returns the prefix minted identifiers for this node use
func (n *Node) SequenceScope() string {
	return n.NodeType.Prefix()
}

// AssignNodeID sets a minted identifier
func (n *Node) AssignNodeID(id string) {
	n.NodeID = id
}

// NodePatch lists the mutable fields of a node; nil means unchanged
type NodePatch struct {
	Name        *string
	Address     *string
	Method      *Method
	Status      *Status
	ParentID    *uuid.UUID
	ClearParent bool
}

// Apply mutates the node and re-validates it. Cycle checks against the rest
// of the tree happen in the store, which can see ancestors.
func (n *Node) Apply(p NodePatch, actor string) error {
	if p.Name != nil {
		n.Name = strings.TrimSpace(*p.Name)
	}
	if p.Address != nil {
		n.Address = strings.TrimSpace(*p.Address)
	}
	if p.Method != nil {
		n.Method = *p.Method
	}
	if p.Status != nil {
		n.Status = *p.Status
	}
	if p.ClearParent {
		n.ParentID = nil
	} else if p.ParentID != nil {
		parent := *p.ParentID
		n.ParentID = &parent
	}
	if err := n.Validate(); err != nil {
		return err
	}
	n.UpdatedBy = actor
	n.Touch()
	return nil
}

// SoftDelete marks the node deleted
func (n *Node) SoftDelete(actor string) {
	n.MarkDeleted(actor, time.Now())
}
