package procurement

import (
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one ordered item on a purchase order. TotalAmount is
// Quantity x UnitPrice rounded to cents, the precision it is stored with.
type LineItem struct {
	ID              uuid.UUID
	PurchaseOrderID uuid.UUID
	ItemID          uuid.UUID
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	TotalAmount     decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LineItemInput carries the caller-supplied fields of a line item
type LineItemInput struct {
	ItemID    uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

var lineItemRules = []shared.Rule[LineItemInput]{
	{Name: "item_required", Path: "itemId", Message: "Item is required", Valid: func(in LineItemInput) bool { return in.ItemID != uuid.Nil }},
	{Name: "quantity_positive", Path: "quantity", Message: "Quantity must be greater than 0", Valid: func(in LineItemInput) bool { return in.Quantity.IsPositive() }},
	{Name: "quantity_scale", Path: "quantity", Message: "Quantity cannot have more than 4 decimal places", Valid: func(in LineItemInput) bool { return fitsScale(in.Quantity, quantityPlaces) }},
	{Name: "unit_price_non_negative", Path: "unitPrice", Message: "Unit Price cannot be negative", Valid: func(in LineItemInput) bool { return !in.UnitPrice.IsNegative() }},
	{Name: "unit_price_scale", Path: "unitPrice", Message: "Unit Price cannot have more than 2 decimal places", Valid: func(in LineItemInput) bool { return fitsScale(in.UnitPrice, moneyPlaces) }},
}

// column scales of the line item table
const (
	moneyPlaces    = 2
	quantityPlaces = 4
)

func fitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Round(places))
}

// validateLineItem checks one input, prefixing issue paths with prefix
func validateLineItem(prefix string, in LineItemInput) shared.Issues {
	issues := shared.Evaluate(in, lineItemRules)
	if prefix == "" {
		return issues
	}
	for i := range issues {
		issues[i].Path = prefix + "." + issues[i].Path
	}
	return issues
}

// ValidateLineItems checks every input; paths are indexed as items[i].field
func ValidateLineItems(inputs []LineItemInput) shared.Issues {
	var issues shared.Issues
	for i, in := range inputs {
		issues.Merge(validateLineItem(fmt.Sprintf("items[%d]", i), in))
	}
	return issues
}

func newLineItem(poID uuid.UUID, in LineItemInput) *LineItem {
	now := time.Now()
	li := &LineItem{
		ID:              uuid.New(),
		PurchaseOrderID: poID,
		ItemID:          in.ItemID,
		CreatedAt:       now,
	}
	li.set(in.Quantity, in.UnitPrice, now)
	return li
}

func (li *LineItem) set(quantity, unitPrice decimal.Decimal, at time.Time) {
	li.Quantity = quantity
	li.UnitPrice = unitPrice
	li.TotalAmount = quantity.Mul(unitPrice).Round(moneyPlaces)
	li.UpdatedAt = at
}

// SumTotals adds up the line totals. Each total is already at cent
// precision, so the sum equals the sum of the stored values.
func SumTotals(items []*LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, li := range items {
		sum = sum.Add(li.TotalAmount)
	}
	return sum
}
