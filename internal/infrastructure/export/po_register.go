// Package export renders report files.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const registerSheet = "PO Register"

// RegisterRow is one purchase order line of the register.
type RegisterRow struct {
	PoID         string
	NodeID       string
	PoDate       time.Time
	RequiredDate time.Time
	Supplier     string
	Status       string
	PaymentType  string
	ItemCount    int
	GrandTotal   decimal.Decimal
	PaidAmount   decimal.Decimal
	DPAmount     *decimal.Decimal
}

var registerHeadings = []any{
	"PO ID", "Node", "PO Date", "Required Date", "Supplier", "Status",
	"Payment Type", "Items", "Grand Total", "Paid Amount", "DP Amount", "Outstanding",
}

// WritePORegister writes rows as an XLSX workbook with a totals row at the
// bottom. Amounts are written as numbers with two decimals.
func WritePORegister(w io.Writer, rows []RegisterRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", registerSheet); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}
	date, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return err
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(registerSheet, "A1", &registerHeadings); err != nil {
		return err
	}
	if err := f.SetCellStyle(registerSheet, "A1", "L1", header); err != nil {
		return err
	}

	var grand, paid, outstanding decimal.Decimal
	for i, r := range rows {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{
			r.PoID, r.NodeID, r.PoDate, r.RequiredDate, r.Supplier, r.Status,
			r.PaymentType, r.ItemCount,
			r.GrandTotal.InexactFloat64(), r.PaidAmount.InexactFloat64(), nil,
			r.GrandTotal.Sub(r.PaidAmount).InexactFloat64(),
		}
		if r.DPAmount != nil {
			values[10] = r.DPAmount.InexactFloat64()
		}
		if err := f.SetSheetRow(registerSheet, cell, &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(registerSheet, fmt.Sprintf("C%d", row), fmt.Sprintf("D%d", row), date); err != nil {
			return err
		}
		if err := f.SetCellStyle(registerSheet, fmt.Sprintf("I%d", row), fmt.Sprintf("L%d", row), money); err != nil {
			return err
		}
		grand = grand.Add(r.GrandTotal)
		paid = paid.Add(r.PaidAmount)
		outstanding = outstanding.Add(r.GrandTotal.Sub(r.PaidAmount))
	}

	last := len(rows) + 2
	totals := []any{"TOTAL", nil, nil, nil, nil, nil, nil, len(rows),
		grand.InexactFloat64(), paid.InexactFloat64(), nil, outstanding.InexactFloat64()}
	if err := f.SetSheetRow(registerSheet, fmt.Sprintf("A%d", last), &totals); err != nil {
		return err
	}
	if err := f.SetCellStyle(registerSheet, fmt.Sprintf("A%d", last), fmt.Sprintf("L%d", last), totalStyle); err != nil {
		return err
	}

	if err := f.SetColWidth(registerSheet, "A", "A", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(registerSheet, "E", "E", 30); err != nil {
		return err
	}
	if err := f.SetPanes(registerSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
