package telemetry

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of application spans.
const TracerName = "erp-backoffice"

// Span attribute keys shared by the application services.
const (
	AttrNodeID   = "warehouse.node_id"
	AttrUomID    = "catalog.uom_id"
	AttrSKU      = "catalog.sku"
	AttrSuppID   = "partner.supp_id"
	AttrPoID     = "procurement.po_id"
	AttrPoStatus = "procurement.po_status"
	AttrErrCode  = "error.code"
)

// StartSpan opens an internal span named "{service}.{method}" on the
// global tracer provider. kv is a flat list of string keys and values.
//
//	ctx, span := telemetry.StartSpan(ctx, "purchase_order", "create", telemetry.AttrNodeID, nodeID)
//	defer func() { telemetry.End(span, err) }()
func StartSpan(ctx context.Context, service, method string, kv ...any) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(Attributes(kv...)...),
	)
}

// End closes span. Domain rejections are tagged with their error code but
// leave the span status unset; anything else marks the span as failed.
func End(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		return
	}
	if code := shared.CodeOf(err); code != "" {
		span.SetAttributes(attribute.String(AttrErrCode, code))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Attributes converts alternating keys and values; a non-string key or a
// trailing key without a value is skipped.
func Attributes(kv ...any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, toAttribute(key, kv[i+1]))
	}
	return attrs
}

// TraceID returns the hex trace id of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	id := trace.SpanContextFromContext(ctx).TraceID()
	if !id.IsValid() {
		return ""
	}
	return id.String()
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
