package telemetry

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestBusinessMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	bm, err := NewBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)

	bm.RecordMinted(ctx, "PO")
	bm.RecordMinted(ctx, "PO")
	bm.RecordMinted(ctx, "SKU")
	bm.RecordTransition(ctx, "DRAFT", "SUBMITTED", "DOWN_PAYMENT", decimal.RequireFromString("1500.50"))
	bm.RecordTransition(ctx, "SUBMITTED", "SUBMITTED", "DOWN_PAYMENT", decimal.Zero)
	bm.RecordTransition(ctx, "SUBMITTED", "APPROVED", "DOWN_PAYMENT", decimal.Zero)
	bm.RecordRejection(ctx, "uom.deactivate", "VALIDATION_FAILED")
	bm.RecordRejection(ctx, "uom.deactivate", "")

	metrics := collect(t, reader)
	assert.Equal(t, int64(3), sumOf(t, metrics["backoffice.identifiers.minted"]))
	assert.Equal(t, int64(2), sumOf(t, metrics["backoffice.purchase_order.transitions"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["backoffice.rejections"]))

	hist, ok := metrics["backoffice.purchase_order.grand_total"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.InDelta(t, 1500.50, hist.DataPoints[0].Sum, 0.001)
}

func TestBusinessMetrics_NilIsSafe(t *testing.T) {
	var bm *BusinessMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		bm.RecordMinted(ctx, "NODE")
		bm.RecordTransition(ctx, "DRAFT", "SUBMITTED", "ADVANCE_PAYMENT", decimal.NewFromInt(1))
		bm.RecordRejection(ctx, "node.create", "CONFLICT")
	})
}
