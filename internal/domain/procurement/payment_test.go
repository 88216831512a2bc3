package procurement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func messages(terms PaymentTerms) []string {
	_, issues := EvaluatePayment(terms)
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Message
	}
	return out
}

func TestEvaluatePayment(t *testing.T) {
	tests := []struct {
		name  string
		terms PaymentTerms
		want  []string
	}{
		{
			name:  "advance paid in full",
			terms: PaymentTerms{Type: PaymentAdvance, GrandTotal: dec("1000"), PaidAmount: dec("1000")},
		},
		{
			name:  "advance underpaid",
			terms: PaymentTerms{Type: PaymentAdvance, GrandTotal: dec("1000"), PaidAmount: dec("999.99")},
			want:  []string{"Paid Amount must equal Grand Total for Advance Payment"},
		},
		{
			name:  "sub-cent amounts",
			terms: PaymentTerms{Type: PaymentDown, GrandTotal: dec("1000"), PaidAmount: dec("0.001"), DPAmount: decPtr("10.005")},
			want:  []string{"Paid Amount cannot have more than 2 decimal places", "DP Amount cannot have more than 2 decimal places"},
		},
		{
			name:  "after delivery unpaid",
			terms: PaymentTerms{Type: PaymentAfterDelivery, GrandTotal: dec("1000"), PaidAmount: decimal.Zero},
		},
		{
			name:  "after delivery with payment",
			terms: PaymentTerms{Type: PaymentAfterDelivery, GrandTotal: dec("1000"), PaidAmount: dec("1")},
			want:  []string{"Paid Amount must be 0 for Payment After Delivery"},
		},
		{
			name:  "overpaid collects every violation",
			terms: PaymentTerms{Type: PaymentAfterDelivery, GrandTotal: dec("10"), PaidAmount: dec("20")},
			want:  []string{"Paid Amount cannot exceed Grand Total", "Paid Amount must be 0 for Payment After Delivery"},
		},
		{
			name:  "negative amounts",
			terms: PaymentTerms{Type: PaymentDown, GrandTotal: dec("-1"), PaidAmount: dec("-2"), DPAmount: decPtr("0")},
			want:  []string{"Paid amount cannot be negative", "Grand Total cannot be negative", "DP Amount cannot exceed Grand Total"},
		},
		{
			name:  "unknown payment type",
			terms: PaymentTerms{Type: "CASH", GrandTotal: dec("10"), PaidAmount: dec("0")},
			want:  []string{"Payment type must be one of ADVANCE_PAYMENT, DOWN_PAYMENT, PAYMENT_AFTER_DELIVERY"},
		},
		{
			name:  "down payment needs a dp value",
			terms: PaymentTerms{Type: PaymentDown, GrandTotal: dec("1000"), PaidAmount: dec("300")},
			want:  []string{"DP Amount or Percentage is required for Down Payment"},
		},
		{
			name:  "down payment percentage out of range",
			terms: PaymentTerms{Type: PaymentDown, GrandTotal: dec("1000"), PaidAmount: dec("0"), DPPercentage: decPtr("101")},
			want:  []string{"DP Percentage must be between 0-100"},
		},
		{
			name:  "down payment amount above total",
			terms: PaymentTerms{Type: PaymentDown, GrandTotal: dec("1000"), PaidAmount: dec("0"), DPAmount: decPtr("1000.01")},
			want:  []string{"DP Amount cannot exceed Grand Total"},
		},
		{
			name:  "thirty percent of 1000 is 300",
			terms: PaymentTerms{Type: PaymentDown, GrandTotal: dec("1000"), PaidAmount: dec("300"), DPPercentage: decPtr("30"), DPAmount: decPtr("300")},
		},
		{
			name:  "within tolerance",
			terms: PaymentTerms{Type: PaymentDown, GrandTotal: dec("1000"), PaidAmount: dec("0"), DPPercentage: decPtr("30"), DPAmount: decPtr("300.01")},
		},
		{
			name:  "301 does not match thirty percent",
			terms: PaymentTerms{Type: PaymentDown, GrandTotal: dec("1000"), PaidAmount: dec("300"), DPPercentage: decPtr("30"), DPAmount: decPtr("301")},
			want:  []string{"DP Amount does not match DP Percentage of Grand Total"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := messages(tt.terms)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluatePayment_Derivation(t *testing.T) {
	t.Run("derives amount from percentage", func(t *testing.T) {
		out, issues := EvaluatePayment(PaymentTerms{
			Type: PaymentDown, GrandTotal: dec("1234.56"), PaidAmount: dec("0"), DPPercentage: decPtr("12.5"),
		})
		require.Empty(t, issues)
		require.NotNil(t, out.DPAmount)
		assert.Equal(t, "154.32", out.DPAmount.StringFixed(2))
	})

	t.Run("keeps explicit amount", func(t *testing.T) {
		out, issues := EvaluatePayment(PaymentTerms{
			Type: PaymentDown, GrandTotal: dec("1000"), PaidAmount: dec("0"), DPAmount: decPtr("250"),
		})
		require.Empty(t, issues)
		assert.True(t, out.DPAmount.Equal(dec("250")))
		assert.Nil(t, out.DPPercentage)
	})

	t.Run("drops dp fields for other payment types", func(t *testing.T) {
		out, issues := EvaluatePayment(PaymentTerms{
			Type: PaymentAdvance, GrandTotal: dec("10"), PaidAmount: dec("10"), DPPercentage: decPtr("150"), DPAmount: decPtr("99"),
		})
		require.Empty(t, issues)
		assert.Nil(t, out.DPPercentage)
		assert.Nil(t, out.DPAmount)
	})
}
