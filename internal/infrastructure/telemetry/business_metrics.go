package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrClass  = attribute.Key("sequence.class")
	AttrFrom   = attribute.Key("po.status.from")
	AttrTo     = attribute.Key("po.status.to")
	AttrCode   = attribute.Key("error.code")
	AttrOp     = attribute.Key("operation")
	AttrPayTyp = attribute.Key("po.payment_type")
)

// BusinessMetrics records backoffice activity. A nil *BusinessMetrics is
// valid and records nothing, so services can run without a meter.
type BusinessMetrics struct {
	minted      metric.Int64Counter
	transitions metric.Int64Counter
	rejections  metric.Int64Counter
	poValue     metric.Float64Histogram
}

// NewBusinessMetrics creates the instruments on meter.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	minted, err := meter.Int64Counter("backoffice.identifiers.minted",
		metric.WithDescription("Identifiers allocated by the sequence minter"),
		metric.WithUnit("{identifier}"),
	)
	if err != nil {
		return nil, err
	}
	transitions, err := meter.Int64Counter("backoffice.purchase_order.transitions",
		metric.WithDescription("Purchase order status changes"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}
	rejections, err := meter.Int64Counter("backoffice.rejections",
		metric.WithDescription("Operations refused with a taxonomy error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}
	poValue, err := meter.Float64Histogram("backoffice.purchase_order.grand_total",
		metric.WithDescription("Grand total of submitted purchase orders"),
		metric.WithExplicitBucketBoundaries(100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000, 100_000_000),
	)
	if err != nil {
		return nil, err
	}
	return &BusinessMetrics{
		minted:      minted,
		transitions: transitions,
		rejections:  rejections,
		poValue:     poValue,
	}, nil
}

// RecordMinted counts one identifier of class (NODE, UOM, SKU, PO).
func (m *BusinessMetrics) RecordMinted(ctx context.Context, class string) {
	if m == nil {
		return
	}
	m.minted.Add(ctx, 1, metric.WithAttributes(AttrClass.String(class)))
}

// RecordTransition counts a status change; submissions also feed the
// grand-total histogram.
func (m *BusinessMetrics) RecordTransition(ctx context.Context, from, to, paymentType string, grandTotal decimal.Decimal) {
	if m == nil || from == to {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(AttrFrom.String(from), AttrTo.String(to)))
	if to == "SUBMITTED" {
		m.poValue.Record(ctx, grandTotal.InexactFloat64(), metric.WithAttributes(AttrPayTyp.String(paymentType)))
	}
}

// RecordRejection counts an operation refused with code.
func (m *BusinessMetrics) RecordRejection(ctx context.Context, op, code string) {
	if m == nil || code == "" {
		return
	}
	m.rejections.Add(ctx, 1, metric.WithAttributes(AttrOp.String(op), AttrCode.String(code)))
}
