package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
)

// UomStatus is the availability of a unit of measure
type UomStatus string

const (
	UomStatusActive   UomStatus = "Active"
	UomStatusInactive UomStatus = "Inactive"
)

// IsValid checks if the status is recognised
func (s UomStatus) IsValid() bool {
	return s == UomStatusActive || s == UomStatusInactive
}

// Uom is a unit of measure items are stocked in
type Uom struct {
	shared.BaseAggregateRoot
	UomID  string
	Code   string
	Name   string
	Status UomStatus
}

// UomInput carries the caller-supplied fields for a new unit. An empty UomID is minted.
type UomInput struct {
	UomID  string
	Code   string
	Name   string
	Status UomStatus
}

var uomRules = []shared.Rule[*Uom]{
	{Name: "code_required", Path: "code", Message: "Code is required", Valid: func(u *Uom) bool { return u.Code != "" }},
	{Name: "code_length", Path: "code", Message: "Code cannot exceed 20 characters", Valid: func(u *Uom) bool { return len(u.Code) <= 20 }},
	{Name: "name_required", Path: "name", Message: "Name is required", Valid: func(u *Uom) bool { return u.Name != "" }},
	{Name: "name_length", Path: "name", Message: "Name cannot exceed 100 characters", Valid: func(u *Uom) bool { return len(u.Name) <= 100 }},
	{Name: "status", Path: "status", Message: "Status must be Active or Inactive", Valid: func(u *Uom) bool { return u.Status.IsValid() }},
}

// NewUom validates input and builds a unit of measure
func NewUom(in UomInput, actor string) (*Uom, error) {
	u := &Uom{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(actor),
		UomID:             sequence.Normalize(in.UomID),
		Code:              strings.ToUpper(strings.TrimSpace(in.Code)),
		Name:              strings.TrimSpace(in.Name),
		Status:            in.Status,
	}
	if u.Status == "" {
		u.Status = UomStatusActive
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate runs the rule table and identifier checks
func (u *Uom) Validate() error {
	issues := shared.Evaluate(u, uomRules)
	if u.UomID != "" {
		issues.Merge(sequence.ValidationIssues(sequence.Uom, "uomId", u.UomID))
	}
	return issues.Err()
}

// AssignUomID sets a minted identifier
func (u *Uom) AssignUomID(id string) {
	u.UomID = id
}

// IsUsable reports whether items may reference this unit
func (u *Uom) IsUsable() bool {
	return !u.IsDeleted() && u.Status == UomStatusActive
}

func blockedByItems(activeItems int64) error {
	if activeItems <= 0 {
		return nil
	}
	var issues shared.Issues
	issues.Add("status", fmt.Sprintf("Cannot deactivate UOM: Currently used by %d active item(s).", activeItems))
	return issues.Err()
}

// Deactivate marks the unit inactive. activeItems is the number of live
// Active items that still reference it; any such item blocks the change.
func (u *Uom) Deactivate(activeItems int64, actor string) error {
	if err := blockedByItems(activeItems); err != nil {
		return err
	}
	u.Status = UomStatusInactive
	u.UpdatedBy = actor
	u.Touch()
	return nil
}

// Activate marks the unit active again
func (u *Uom) Activate(actor string) {
	u.Status = UomStatusActive
	u.UpdatedBy = actor
	u.Touch()
}

// SoftDelete removes the unit, subject to the same usage guard as Deactivate
func (u *Uom) SoftDelete(activeItems int64, actor string) error {
	if err := blockedByItems(activeItems); err != nil {
		return err
	}
	u.Status = UomStatusInactive
	u.MarkDeleted(actor, time.Now())
	return nil
}

// UomPatch lists the mutable fields of a unit; nil means unchanged.
// Status changes go through Deactivate/Activate.
type UomPatch struct {
	Code *string
	Name *string
}

// Apply mutates the unit and re-validates it
func (u *Uom) Apply(p UomPatch, actor string) error {
	if p.Code != nil {
		u.Code = strings.ToUpper(strings.TrimSpace(*p.Code))
	}
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if err := u.Validate(); err != nil {
		return err
	}
	u.UpdatedBy = actor
	u.Touch()
	return nil
}
