package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWritePORegister(t *testing.T) {
	dp := decimal.RequireFromString("300")
	rows := []RegisterRow{
		{
			PoID: "WH0001-PO-2601-0001", NodeID: "WH0001",
			PoDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), RequiredDate: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
			Supplier: "PT Sumber Makmur", Status: "SUBMITTED", PaymentType: "DOWN_PAYMENT", ItemCount: 2,
			GrandTotal: decimal.RequireFromString("1000"), PaidAmount: decimal.RequireFromString("300"), DPAmount: &dp,
		},
		{
			PoID: "WH0001-PO-2601-0002", NodeID: "WH0001",
			PoDate: time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), RequiredDate: time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
			Supplier: "CV Budi Jaya", Status: "DRAFT", PaymentType: "PAYMENT_AFTER_DELIVERY", ItemCount: 1,
			GrandTotal: decimal.RequireFromString("137.50"), PaidAmount: decimal.Zero,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePORegister(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{registerSheet}, f.GetSheetList())

	cell := func(ref string) string {
		v, err := f.GetCellValue(registerSheet, ref)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "PO ID", cell("A1"))
	assert.Equal(t, "Outstanding", cell("L1"))
	assert.Equal(t, "WH0001-PO-2601-0001", cell("A2"))
	assert.Equal(t, "PT Sumber Makmur", cell("E2"))
	assert.Equal(t, "", cell("K3"))
	assert.Equal(t, "TOTAL", cell("A4"))

	raw := func(ref string) string {
		v, err := f.GetCellValue(registerSheet, ref, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "300", raw("K2"))
	assert.Equal(t, "1137.5", raw("I4"))
	assert.Equal(t, "837.5", raw("L4"))
	assert.Equal(t, "2", raw("H4"))
}

func TestWritePORegister_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePORegister(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(registerSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL", v)
}
