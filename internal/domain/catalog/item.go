package catalog

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// ItemStatus is the lifecycle state of an item
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "Active"
	ItemStatusInactive ItemStatus = "Inactive"
	ItemStatusArchived ItemStatus = "Archived"
)

// IsValid checks if the status is recognised
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusActive, ItemStatusInactive, ItemStatusArchived:
		return true
	}
	return false
}

// Item is a stock-keeping unit
type Item struct {
	shared.BaseAggregateRoot
	SKU    string
	Name   string
	Brand  string
	UomID  uuid.UUID
	Status ItemStatus
}

// ItemInput carries the caller-supplied fields for a new item.
// An empty SKU is derived from the name and the SKU sequence.
type ItemInput struct {
	SKU    string
	Name   string
	Brand  string
	UomID  uuid.UUID
	Status ItemStatus
}

var itemRules = []shared.Rule[*Item]{
	{Name: "name_required", Path: "name", Message: "Name is required", Valid: func(i *Item) bool { return i.Name != "" }},
	{Name: "name_length", Path: "name", Message: "Name cannot exceed 200 characters", Valid: func(i *Item) bool { return len(i.Name) <= 200 }},
	{Name: "brand_length", Path: "brand", Message: "Brand cannot exceed 100 characters", Valid: func(i *Item) bool { return len(i.Brand) <= 100 }},
	{Name: "uom_required", Path: "uomId", Message: "UOM is required", Valid: func(i *Item) bool { return i.UomID != uuid.Nil }},
	{Name: "status", Path: "status", Message: "Status must be one of Active, Inactive, Archived", Valid: func(i *Item) bool { return i.Status.IsValid() }},
}

// NewItem validates input and builds an item
func NewItem(in ItemInput, actor string) (*Item, error) {
	i := &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(actor),
		SKU:               sequence.Normalize(in.SKU),
		Name:              strings.TrimSpace(in.Name),
		Brand:             strings.TrimSpace(in.Brand),
		UomID:             in.UomID,
		Status:            in.Status,
	}
	if i.Status == "" {
		i.Status = ItemStatusActive
	}
	if err := i.Validate(); err != nil {
		return nil, err
	}
	return i, nil
}

// Validate runs the rule table. A manual SKU only has to match the SKU format.
func (i *Item) Validate() error {
	issues := shared.Evaluate(i, itemRules)
	if i.SKU != "" {
		issues.Merge(sequence.ValidationIssues(sequence.SKU, "sku", i.SKU))
	}
	return issues.Err()
}

// SequenceScope returns the consonant prefix a derived SKU is minted under
func (i *Item) SequenceScope() string {
	return sequence.SKUScope(i.Name)
}

// AssignSKU sets a minted SKU
func (i *Item) AssignSKU(sku string) {
	i.SKU = sku
}

// IsActive reports whether the item counts toward UOM usage
func (i *Item) IsActive() bool {
	return !i.IsDeleted() && i.Status == ItemStatusActive
}

// ItemPatch lists the mutable fields of an item; nil means unchanged
type ItemPatch struct {
	SKU    *string
	Name   *string
	Brand  *string
	UomID  *uuid.UUID
	Status *ItemStatus
}

// Apply mutates the item and re-validates it
func (i *Item) Apply(p ItemPatch, actor string) error {
	if p.SKU != nil {
		i.SKU = sequence.Normalize(*p.SKU)
		if i.SKU == "" {
			var issues shared.Issues
			issues.Add("sku", "SKU is required")
			return issues.Err()
		}
	}
	if p.Name != nil {
		i.Name = strings.TrimSpace(*p.Name)
	}
	if p.Brand != nil {
		i.Brand = strings.TrimSpace(*p.Brand)
	}
	if p.UomID != nil {
		i.UomID = *p.UomID
	}
	if p.Status != nil {
		i.Status = *p.Status
	}
	if err := i.Validate(); err != nil {
		return err
	}
	i.UpdatedBy = actor
	i.Touch()
	return nil
}

// SoftDelete removes the item and marks it Inactive so it no longer blocks its UOM
func (i *Item) SoftDelete(actor string) {
	i.Status = ItemStatusInactive
	i.MarkDeleted(actor, time.Now())
}
