package procurement

import (
	"context"
	"io"

	"github.com/erp/backoffice/internal/domain/procurement"
	"github.com/erp/backoffice/internal/infrastructure/export"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// maxRegisterRows bounds one export
const maxRegisterRows = 10000

// ExportRegister writes every order matching f as an XLSX register. Paging
// fields of f are ignored.
func (s *PurchaseOrderService) ExportRegister(ctx context.Context, w io.Writer, f ListFilter) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "purchase_order", "export_register")
	defer func() { telemetry.End(span, err) }()

	f.Page, f.PageSize = 1, 100
	filter := f.toFilter()

	var orders []*procurement.PurchaseOrder
	for len(orders) < maxRegisterRows {
		page, err := s.orders.FindAll(ctx, filter)
		if err != nil {
			return err
		}
		orders = append(orders, page...)
		if len(page) < filter.PageSize {
			break
		}
		filter.Page++
	}

	names := s.supplierNames(ctx, orders)
	rows := make([]export.RegisterRow, 0, len(orders))
	for _, po := range orders {
		items, err := s.orders.FindLineItems(ctx, po.ID)
		if err != nil {
			return err
		}
		rows = append(rows, export.RegisterRow{
			PoID:         po.PoID,
			NodeID:       po.NodeID,
			PoDate:       po.PoDate,
			RequiredDate: po.RequiredDate,
			Supplier:     names[po.SupplierID],
			Status:       string(po.Status),
			PaymentType:  string(po.PaymentType),
			ItemCount:    len(items),
			GrandTotal:   po.GrandTotal,
			PaidAmount:   po.PaidAmount,
			DPAmount:     po.DPAmount,
		})
	}
	span.SetAttributes(telemetry.Attributes("rows", len(rows))...)

	telemetry.WithProfilingLabels(ctx, "po_register_export", func(context.Context) {
		err = export.WritePORegister(w, rows)
	})
	if err != nil {
		return err
	}
	logger.L(ctx).Info("Purchase order register exported", zap.Int("rows", len(rows)))
	return nil
}
