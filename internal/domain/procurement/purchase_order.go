package procurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a purchase order
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// transitions lists the forward moves allowed from each status.
// Nothing ever returns to DRAFT.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted, StatusPending, StatusCancelled},
	StatusSubmitted: {StatusPending, StatusApproved, StatusCancelled},
	StatusPending:   {StatusApproved, StatusCancelled},
	StatusApproved:  {StatusCompleted, StatusCancelled},
}

// IsValid checks if the status is recognised
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusPending, StatusApproved, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a permitted forward move
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PurchaseOrder is the aggregate root of a procurement request
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	PoID         string
	NodeID       string
	PoDate       time.Time
	RequiredDate time.Time
	SupplierID   uuid.UUID
	Status       Status
	PaymentType  PaymentType
	GrandTotal   decimal.Decimal
	PaidAmount   decimal.Decimal
	DPPercentage *decimal.Decimal
	DPAmount     *decimal.Decimal
	Notes        string
	Items        []*LineItem
}

// CreateInput carries the caller-supplied fields for a new purchase order.
// An empty PoID is minted from NodeID and PoDate.
type CreateInput struct {
	PoID         string
	NodeID       string
	PoDate       time.Time
	RequiredDate time.Time
	SupplierID   uuid.UUID
	PaymentType  PaymentType
	PaidAmount   decimal.Decimal
	DPPercentage *decimal.Decimal
	DPAmount     *decimal.Decimal
	Notes        string
	Items        []LineItemInput
}

// dateOnly drops the clock part so dates compare by calendar day
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return dateOnly(a).Equal(dateOnly(b))
}

var headerRules = []shared.Rule[*PurchaseOrder]{
	{Name: "node_required", Path: "nodeId", Message: "Node is required", Valid: func(po *PurchaseOrder) bool { return po.NodeID != "" }},
	{
		Name: "node_format", Path: "nodeId", Message: sequence.Node.FormatHint,
		When:  func(po *PurchaseOrder) bool { return po.NodeID != "" },
		Valid: func(po *PurchaseOrder) bool { return sequence.Valid(sequence.Node, po.NodeID) },
	},
	{Name: "po_date_required", Path: "poDate", Message: "PO Date is required", Valid: func(po *PurchaseOrder) bool { return !po.PoDate.IsZero() }},
	{Name: "required_date_required", Path: "requiredDate", Message: "Required Date is required", Valid: func(po *PurchaseOrder) bool { return !po.RequiredDate.IsZero() }},
	{
		Name: "required_after_po_date", Path: "requiredDate", Message: "Required Date cannot be earlier than PO Date",
		When: func(po *PurchaseOrder) bool { return !po.PoDate.IsZero() && !po.RequiredDate.IsZero() },
		Valid: func(po *PurchaseOrder) bool {
			return !dateOnly(po.RequiredDate).Before(dateOnly(po.PoDate))
		},
	},
	{Name: "supplier_required", Path: "supplierId", Message: "Supplier is required", Valid: func(po *PurchaseOrder) bool { return po.SupplierID != uuid.Nil }},
	{Name: "status", Path: "status", Message: "Invalid purchase order status", Valid: func(po *PurchaseOrder) bool { return po.Status.IsValid() }},
	{Name: "notes_length", Path: "notes", Message: "Notes cannot exceed 1000 characters", Valid: func(po *PurchaseOrder) bool { return len(po.Notes) <= 1000 }},
	{
		Name: "items_required", Path: "items", Message: "At least 1 item is required",
		When:  func(po *PurchaseOrder) bool { return po.Status != StatusDraft },
		Valid: func(po *PurchaseOrder) bool { return len(po.Items) > 0 },
	},
}

// NewPurchaseOrder validates input and builds a DRAFT purchase order with its line items
func NewPurchaseOrder(in CreateInput, actor string) (*PurchaseOrder, error) {
	po := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(actor),
		PoID:              sequence.Normalize(in.PoID),
		NodeID:            sequence.Normalize(in.NodeID),
		PoDate:            dateOnly(in.PoDate),
		RequiredDate:      dateOnly(in.RequiredDate),
		SupplierID:        in.SupplierID,
		Status:            StatusDraft,
		PaymentType:       in.PaymentType,
		PaidAmount:        in.PaidAmount,
		DPPercentage:      in.DPPercentage,
		DPAmount:          in.DPAmount,
		Notes:             strings.TrimSpace(in.Notes),
	}
	var issues shared.Issues
	if len(in.Items) == 0 {
		issues.Add("items", "At least 1 item is required")
	}
	issues.Merge(ValidateLineItems(in.Items))
	for _, li := range in.Items {
		po.Items = append(po.Items, newLineItem(po.ID, li))
	}
	po.GrandTotal = SumTotals(po.Items)

	issues.Merge(po.check())
	if err := issues.Err(); err != nil {
		return nil, err
	}
	return po, nil
}

// check runs header, identifier and payment rules and applies derived payment values
func (po *PurchaseOrder) check() shared.Issues {
	issues := shared.Evaluate(po, headerRules)
	if po.PoID != "" {
		issues.Merge(sequence.ValidationIssues(sequence.PurchaseOrder, "poId", po.PoID))
	}
	terms, paymentIssues := EvaluatePayment(po.PaymentTerms())
	issues.Merge(paymentIssues)
	if len(paymentIssues) == 0 {
		po.DPPercentage = terms.DPPercentage
		po.DPAmount = terms.DPAmount
	}
	return issues
}

// Validate re-runs every rule against the current state
func (po *PurchaseOrder) Validate() error {
	return po.check().Err()
}

// PaymentTerms projects the order onto the payment evaluator input
func (po *PurchaseOrder) PaymentTerms() PaymentTerms {
	return PaymentTerms{
		Type:         po.PaymentType,
		GrandTotal:   po.GrandTotal,
		PaidAmount:   po.PaidAmount,
		DPPercentage: po.DPPercentage,
		DPAmount:     po.DPAmount,
	}
}

// SequenceScope returns the partition the PO number is minted in
func (po *PurchaseOrder) SequenceScope() string {
	return sequence.POScope(po.NodeID, po.PoDate)
}

// ownsScopedID reports whether PoID was issued under the order's current scope
func (po *PurchaseOrder) ownsScopedID() bool {
	return po.PoID != "" && strings.HasPrefix(po.PoID, po.SequenceScope()+sequence.PurchaseOrder.Separator)
}

// NeedsPoID reports whether the store must mint a PO number before saving
func (po *PurchaseOrder) NeedsPoID() bool {
	return po.PoID == ""
}

// AssignPoID sets a minted PO number
func (po *PurchaseOrder) AssignPoID(id string) {
	po.PoID = id
}

// IsDraft reports whether submission-defining fields are still editable
func (po *PurchaseOrder) IsDraft() bool {
	return po.Status == StatusDraft
}

// Patch lists the fields a caller may change; nil means unchanged
type Patch struct {
	PoID         *string
	NodeID       *string
	PoDate       *time.Time
	RequiredDate *time.Time
	SupplierID   *uuid.UUID
	PaymentType  *PaymentType
	PaidAmount   *decimal.Decimal
	DPPercentage *decimal.Decimal
	DPAmount     *decimal.Decimal
	Status       *Status
	Notes        *string
}

func decimalPtrChanged(patch, current *decimal.Decimal) bool {
	if patch == nil {
		return false
	}
	return current == nil || !patch.Equal(*current)
}

// lockedFields are frozen once the order leaves DRAFT. A patch that repeats
// the current value does not count as a change.
var lockedFields = []struct {
	name    string
	changed func(p Patch, po *PurchaseOrder) bool
}{
	{"poId", func(p Patch, po *PurchaseOrder) bool { return p.PoID != nil && sequence.Normalize(*p.PoID) != po.PoID }},
	{"poDate", func(p Patch, po *PurchaseOrder) bool { return p.PoDate != nil && !sameDay(*p.PoDate, po.PoDate) }},
	{"requiredDate", func(p Patch, po *PurchaseOrder) bool {
		return p.RequiredDate != nil && !sameDay(*p.RequiredDate, po.RequiredDate)
	}},
	{"nodeId", func(p Patch, po *PurchaseOrder) bool { return p.NodeID != nil && sequence.Normalize(*p.NodeID) != po.NodeID }},
	{"supplierId", func(p Patch, po *PurchaseOrder) bool { return p.SupplierID != nil && *p.SupplierID != po.SupplierID }},
	{"paymentType", func(p Patch, po *PurchaseOrder) bool { return p.PaymentType != nil && *p.PaymentType != po.PaymentType }},
	{"paidAmount", func(p Patch, po *PurchaseOrder) bool { return p.PaidAmount != nil && !p.PaidAmount.Equal(po.PaidAmount) }},
	{"dpPercentage", func(p Patch, po *PurchaseOrder) bool { return decimalPtrChanged(p.DPPercentage, po.DPPercentage) }},
	{"dpAmount", func(p Patch, po *PurchaseOrder) bool { return decimalPtrChanged(p.DPAmount, po.DPAmount) }},
}

// Apply validates and applies a patch. Outside DRAFT a change to a locked
// field fails with *shared.ImmutableFieldError; rule violations fail with
// *shared.ValidationError. The order is left untouched on error.
func (po *PurchaseOrder) Apply(p Patch, actor string) error {
	if !po.IsDraft() {
		for _, f := range lockedFields {
			if f.changed(p, po) {
				return shared.NewImmutableFieldError(f.name)
			}
		}
	}

	next := *po
	if p.PoID != nil {
		next.PoID = sequence.Normalize(*p.PoID)
		if next.PoID == "" {
			return shared.Issues{{Path: "poId", Message: "PO ID is required"}}.Err()
		}
	}
	if p.NodeID != nil {
		next.NodeID = sequence.Normalize(*p.NodeID)
	}
	if p.PoDate != nil {
		next.PoDate = dateOnly(*p.PoDate)
	}
	if p.RequiredDate != nil {
		next.RequiredDate = dateOnly(*p.RequiredDate)
	}
	if p.SupplierID != nil {
		next.SupplierID = *p.SupplierID
	}
	if p.PaymentType != nil {
		next.PaymentType = *p.PaymentType
	}
	if p.PaidAmount != nil {
		next.PaidAmount = *p.PaidAmount
	}
	if p.DPPercentage != nil {
		next.DPPercentage = p.DPPercentage
		if p.DPAmount == nil {
			// let the evaluator re-derive the amount from the new percentage
			next.DPAmount = nil
		}
	}
	if p.DPAmount != nil {
		next.DPAmount = p.DPAmount
	}
	if p.Notes != nil {
		next.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.PoID == nil && po.ownsScopedID() && next.SequenceScope() != po.SequenceScope() {
		// the number no longer matches node and month; the store mints a new one
		next.PoID = ""
	}

	var issues shared.Issues
	if p.Status != nil && *p.Status != po.Status {
		if !po.Status.CanTransitionTo(*p.Status) {
			issues.Add("status", fmt.Sprintf("Cannot change status from %s to %s", po.Status, *p.Status))
		} else {
			next.Status = *p.Status
		}
	}
	issues.Merge(next.check())
	if err := issues.Err(); err != nil {
		return err
	}

	next.UpdatedBy = actor
	next.Touch()
	*po = next
	return nil
}

// SoftDelete hides the order and, through it, its line items
func (po *PurchaseOrder) SoftDelete(actor string) {
	po.MarkDeleted(actor, time.Now())
}

// ensureItemsEditable rejects line-item mutations outside DRAFT
func (po *PurchaseOrder) ensureItemsEditable() error {
	if !po.IsDraft() {
		return shared.NewImmutableFieldError("items")
	}
	return nil
}

// recalculate re-derives the grand total from the line items and re-runs the
// payment rules against it. An advance payment follows the new total and a
// percentage-based DP amount is derived again; a fixed DP amount is kept and
// must still fit.
func (po *PurchaseOrder) recalculate() error {
	po.GrandTotal = SumTotals(po.Items)
	if po.PaymentType == PaymentAdvance {
		po.PaidAmount = po.GrandTotal
	}
	terms := po.PaymentTerms()
	if po.PaymentType == PaymentDown && po.DPPercentage != nil {
		terms.DPAmount = nil
	}
	terms, issues := EvaluatePayment(terms)
	if err := issues.Err(); err != nil {
		return err
	}
	po.DPPercentage = terms.DPPercentage
	po.DPAmount = terms.DPAmount
	po.Touch()
	return nil
}

// mutateItems runs fn on a copy of the item list and commits it only when
// the recalculated totals are acceptable.
func (po *PurchaseOrder) mutateItems(actor string, fn func(items []*LineItem) ([]*LineItem, error)) error {
	if err := po.ensureItemsEditable(); err != nil {
		return err
	}
	snapshot := *po
	items := make([]*LineItem, len(po.Items))
	for i, li := range po.Items {
		c := *li
		items[i] = &c
	}
	items, err := fn(items)
	if err != nil {
		return err
	}
	po.Items = items
	if err := po.recalculate(); err != nil {
		*po = snapshot
		return err
	}
	po.UpdatedBy = actor
	return nil
}

// ReplaceItems swaps the whole line-item set
func (po *PurchaseOrder) ReplaceItems(inputs []LineItemInput, actor string) error {
	return po.mutateItems(actor, func([]*LineItem) ([]*LineItem, error) {
		if err := ValidateLineItems(inputs).Err(); err != nil {
			return nil, err
		}
		out := make([]*LineItem, 0, len(inputs))
		for _, in := range inputs {
			out = append(out, newLineItem(po.ID, in))
		}
		return out, nil
	})
}

// AddItem appends one line item and returns it
func (po *PurchaseOrder) AddItem(in LineItemInput, actor string) (*LineItem, error) {
	var added *LineItem
	err := po.mutateItems(actor, func(items []*LineItem) ([]*LineItem, error) {
		if err := validateLineItem("", in).Err(); err != nil {
			return nil, err
		}
		added = newLineItem(po.ID, in)
		return append(items, added), nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateItem changes quantity and unit price of one line item
func (po *PurchaseOrder) UpdateItem(lineID uuid.UUID, quantity, unitPrice decimal.Decimal, actor string) (*LineItem, error) {
	var updated *LineItem
	err := po.mutateItems(actor, func(items []*LineItem) ([]*LineItem, error) {
		for _, li := range items {
			if li.ID != lineID {
				continue
			}
			if err := validateLineItem("", LineItemInput{ItemID: li.ItemID, Quantity: quantity, UnitPrice: unitPrice}).Err(); err != nil {
				return nil, err
			}
			li.set(quantity, unitPrice, time.Now())
			updated = li
			return items, nil
		}
		return nil, shared.NotFound("Line item")
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveItem deletes one line item. Removing the last one leaves a zero
// total; the order then cannot leave DRAFT until an item is added.
func (po *PurchaseOrder) RemoveItem(lineID uuid.UUID, actor string) error {
	return po.mutateItems(actor, func(items []*LineItem) ([]*LineItem, error) {
		for i, li := range items {
			if li.ID == lineID {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, shared.NotFound("Line item")
	})
}

// FindItem returns the line item with the given id
func (po *PurchaseOrder) FindItem(lineID uuid.UUID) (*LineItem, bool) {
	for _, li := range po.Items {
		if li.ID == lineID {
			return li, true
		}
	}
	return nil, false
}
