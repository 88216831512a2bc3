// Package middleware provides the gin middleware chain of the HTTP API.
package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig returns the otelgin server-span middleware.
// The span name follows "HTTP METHOD route", e.g. "HTTP GET /api/v1/purchase-orders/:id".
// otelgin marks 5xx responses with an error status.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName,
		otelgin.WithSpanNameFormatter(func(c *gin.Context) string {
			route := c.FullPath()
			if route == "" {
				route = c.Request.URL.Path
			}
			return "HTTP " + c.Request.Method + " " + route
		}),
	)
}

// TracingAttributeInjector tags the server span with request_id and actor_id.
// Place it after TracingWithConfig, RequestID and Actor.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			span.SetAttributes(
				attribute.String("request_id", GetRequestID(c)),
				attribute.String("actor_id", GetActor(c)),
			)
		}
		c.Next()
	}
}
