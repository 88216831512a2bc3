package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
)

// RegisterPoolMetrics publishes sql.DB pool statistics as observable gauges.
// The gauges are read on every export, so no collector goroutine is needed.
func RegisterPoolMetrics(meter metric.Meter, db *gorm.DB) (metric.Registration, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	maxOpen, err := meter.Int64ObservableGauge("db.client.connections.max",
		metric.WithDescription("Maximum number of open connections allowed"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}
	usage, err := meter.Int64ObservableGauge("db.client.connections.usage",
		metric.WithDescription("Connections by state"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64ObservableCounter("db.client.connections.wait_count",
		metric.WithDescription("Total number of connections waited for"),
		metric.WithUnit("{wait}"),
	)
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := sqlDB.Stats()
		o.ObserveInt64(maxOpen, int64(s.MaxOpenConnections))
		o.ObserveInt64(usage, int64(s.Idle), metric.WithAttributes(attribute.String("state", "idle")))
		o.ObserveInt64(usage, int64(s.InUse), metric.WithAttributes(attribute.String("state", "used")))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, maxOpen, usage, waits)
}
