package procurement

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentType is how a purchase order is settled
type PaymentType string

const (
	PaymentAdvance       PaymentType = "ADVANCE_PAYMENT"
	PaymentDown          PaymentType = "DOWN_PAYMENT"
	PaymentAfterDelivery PaymentType = "PAYMENT_AFTER_DELIVERY"
)

// IsValid checks if the payment type is recognised
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentAdvance, PaymentDown, PaymentAfterDelivery:
		return true
	}
	return false
}

// dpTolerance is the largest accepted gap between a DP amount and its percentage of the total
var dpTolerance = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// PaymentTerms is the input of the payment rule evaluator
type PaymentTerms struct {
	Type         PaymentType
	GrandTotal   decimal.Decimal
	PaidAmount   decimal.Decimal
	DPPercentage *decimal.Decimal
	DPAmount     *decimal.Decimal
}

func (t PaymentTerms) isDown() bool { return t.Type == PaymentDown }

func (t PaymentTerms) hasPercentage() bool { return t.isDown() && t.DPPercentage != nil }

func (t PaymentTerms) hasAmount() bool { return t.isDown() && t.DPAmount != nil }

// paymentRules are evaluated in order; every failing rule is reported.
var paymentRules = []shared.Rule[PaymentTerms]{
	{
		Name: "payment_type", Path: "paymentType",
		Message: "Payment type must be one of ADVANCE_PAYMENT, DOWN_PAYMENT, PAYMENT_AFTER_DELIVERY",
		Valid:   func(t PaymentTerms) bool { return t.Type.IsValid() },
	},
	{
		Name: "paid_non_negative", Path: "paidAmount", Message: "Paid amount cannot be negative",
		Valid: func(t PaymentTerms) bool { return !t.PaidAmount.IsNegative() },
	},
	{
		Name: "paid_scale", Path: "paidAmount", Message: "Paid Amount cannot have more than 2 decimal places",
		Valid: func(t PaymentTerms) bool { return fitsScale(t.PaidAmount, moneyPlaces) },
	},
	{
		Name: "grand_total_non_negative", Path: "grandTotal", Message: "Grand Total cannot be negative",
		Valid: func(t PaymentTerms) bool { return !t.GrandTotal.IsNegative() },
	},
	{
		Name: "paid_within_total", Path: "paidAmount", Message: "Paid Amount cannot exceed Grand Total",
		Valid: func(t PaymentTerms) bool { return t.PaidAmount.LessThanOrEqual(t.GrandTotal) },
	},
	{
		Name: "advance_paid_in_full", Path: "paidAmount", Message: "Paid Amount must equal Grand Total for Advance Payment",
		When:  func(t PaymentTerms) bool { return t.Type == PaymentAdvance },
		Valid: func(t PaymentTerms) bool { return t.PaidAmount.Equal(t.GrandTotal) },
	},
	{
		Name: "after_delivery_unpaid", Path: "paidAmount", Message: "Paid Amount must be 0 for Payment After Delivery",
		When:  func(t PaymentTerms) bool { return t.Type == PaymentAfterDelivery },
		Valid: func(t PaymentTerms) bool { return t.PaidAmount.IsZero() },
	},
	{
		Name: "dp_required", Path: "dpAmount", Message: "DP Amount or Percentage is required for Down Payment",
		When:  PaymentTerms.isDown,
		Valid: func(t PaymentTerms) bool { return t.DPPercentage != nil || t.DPAmount != nil },
	},
	{
		Name: "dp_percentage_range", Path: "dpPercentage", Message: "DP Percentage must be between 0-100",
		When: PaymentTerms.hasPercentage,
		Valid: func(t PaymentTerms) bool {
			return !t.DPPercentage.IsNegative() && t.DPPercentage.LessThanOrEqual(hundred)
		},
	},
	{
		Name: "dp_amount_non_negative", Path: "dpAmount", Message: "DP Amount cannot be negative",
		When:  PaymentTerms.hasAmount,
		Valid: func(t PaymentTerms) bool { return !t.DPAmount.IsNegative() },
	},
	{
		Name: "dp_amount_scale", Path: "dpAmount", Message: "DP Amount cannot have more than 2 decimal places",
		When:  PaymentTerms.hasAmount,
		Valid: func(t PaymentTerms) bool { return fitsScale(*t.DPAmount, moneyPlaces) },
	},
	{
		Name: "dp_amount_within_total", Path: "dpAmount", Message: "DP Amount cannot exceed Grand Total",
		When:  PaymentTerms.hasAmount,
		Valid: func(t PaymentTerms) bool { return t.DPAmount.LessThanOrEqual(t.GrandTotal) },
	},
	{
		Name: "dp_amount_matches_percentage", Path: "dpAmount", Message: "DP Amount does not match DP Percentage of Grand Total",
		When: func(t PaymentTerms) bool { return t.hasPercentage() && t.hasAmount() },
		Valid: func(t PaymentTerms) bool {
			return derivedDP(*t.DPPercentage, t.GrandTotal).Sub(*t.DPAmount).Abs().LessThanOrEqual(dpTolerance)
		},
	},
}

func derivedDP(percentage, grandTotal decimal.Decimal) decimal.Decimal {
	return percentage.Div(hundred).Mul(grandTotal).Round(moneyPlaces)
}

// EvaluatePayment runs the payment rules and returns the normalized terms.
// DP fields are dropped for payment types other than DOWN_PAYMENT, and a
// percentage given without an amount yields the derived amount.
func EvaluatePayment(t PaymentTerms) (PaymentTerms, shared.Issues) {
	if !t.isDown() {
		t.DPPercentage = nil
		t.DPAmount = nil
	}
	issues := shared.Evaluate(t, paymentRules)
	if len(issues) == 0 && t.hasPercentage() && t.DPAmount == nil {
		amount := derivedDP(*t.DPPercentage, t.GrandTotal)
		t.DPAmount = &amount
	}
	return t, issues
}
