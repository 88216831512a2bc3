package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(t.Context())
	})
	return sr
}

func tracedRouter() *gin.Engine {
	router := gin.New()
	router.Use(
		RequestID(),
		Actor(),
		TracingWithConfig(TracingConfig{ServiceName: "backoffice-test", Enabled: true}),
		TracingAttributeInjector(),
	)
	router.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return router
}

func TestTracing_SpanNameAndAttributes(t *testing.T) {
	sr := recordSpans(t)
	router := tracedRouter()

	req := httptest.NewRequest(http.MethodGet, "/orders/42", nil)
	req.Header.Set(HeaderRequestID, "req-9")
	req.Header.Set(HeaderActorID, "buyer-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "HTTP GET /orders/:id", spans[0].Name())

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "req-9", attrs["request_id"])
	assert.Equal(t, "buyer-1", attrs["actor_id"])
}

func TestTracing_ServerErrorStatus(t *testing.T) {
	sr := recordSpans(t)
	router := tracedRouter()

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestTracing_Disabled(t *testing.T) {
	sr := recordSpans(t)
	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}), TracingAttributeInjector())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}
