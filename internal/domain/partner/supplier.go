package partner

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
)

// Status is the trading status of a supplier
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// IsValid checks if the status is recognised
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Supplier is a vendor purchase orders are raised against
type Supplier struct {
	shared.BaseAggregateRoot
	SuppID  string
	Name    string
	PICName string
	Address string
	Phone   string
	Status  Status
}

// SupplierInput carries the caller-supplied fields for a new supplier
type SupplierInput struct {
	SuppID  string
	Name    string
	PICName string
	Address string
	Phone   string
	Status  Status
}

var supplierRules = []shared.Rule[*Supplier]{
	{Name: "supp_id_required", Path: "suppId", Message: "Supplier ID is required", Valid: func(s *Supplier) bool { return s.SuppID != "" }},
	{Name: "supp_id_length", Path: "suppId", Message: "Supplier ID cannot exceed 50 characters", Valid: func(s *Supplier) bool { return len(s.SuppID) <= 50 }},
	{Name: "name_required", Path: "name", Message: "Supplier Name is required", Valid: func(s *Supplier) bool { return s.Name != "" }},
	{Name: "pic_required", Path: "picName", Message: "PIC Name is required", Valid: func(s *Supplier) bool { return s.PICName != "" }},
	{Name: "address_required", Path: "address", Message: "Address is required", Valid: func(s *Supplier) bool { return s.Address != "" }},
	{Name: "phone_required", Path: "phone", Message: "Phone number is required", Valid: func(s *Supplier) bool { return s.Phone != "" }},
	{Name: "status", Path: "status", Message: "Status must be Active or Inactive", Valid: func(s *Supplier) bool { return s.Status.IsValid() }},
}

// NewSupplier validates input and builds a supplier
func NewSupplier(in SupplierInput, actor string) (*Supplier, error) {
	s := &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(actor),
		SuppID:            strings.ToUpper(strings.TrimSpace(in.SuppID)),
		Name:              strings.TrimSpace(in.Name),
		PICName:           strings.TrimSpace(in.PICName),
		Address:           strings.TrimSpace(in.Address),
		Phone:             strings.TrimSpace(in.Phone),
		Status:            in.Status,
	}
	if s.Status == "" {
		s.Status = StatusActive
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate runs the rule table
func (s *Supplier) Validate() error {
	return shared.Evaluate(s, supplierRules).Err()
}

// Patch lists the mutable fields of a supplier; nil means unchanged
type Patch struct {
	SuppID  *string
	Name    *string
	PICName *string
	Address *string
	Phone   *string
	Status  *Status
}

// Apply mutates the supplier and re-validates it
func (s *Supplier) Apply(p Patch, actor string) error {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&s.SuppID, p.SuppID)
	s.SuppID = strings.ToUpper(s.SuppID)
	set(&s.Name, p.Name)
	set(&s.PICName, p.PICName)
	set(&s.Address, p.Address)
	set(&s.Phone, p.Phone)
	if p.Status != nil {
		s.Status = *p.Status
	}
	if err := s.Validate(); err != nil {
		return err
	}
	s.UpdatedBy = actor
	s.Touch()
	return nil
}

// SoftDelete removes the supplier from reads
func (s *Supplier) SoftDelete(actor string) {
	s.MarkDeleted(actor, time.Now())
}
