package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benvon/goal-insights/internal/cache"
	"github.com/benvon/goal-insights/internal/engine"
	"github.com/benvon/goal-insights/internal/models"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTracedRouter(t *testing.T) (*mux.Router, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	now := func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	eng := engine.New(cache.NewMemoryStore(now), now, nil)
	eng.SetTracerProvider(tp)

	r := mux.NewRouter()
	r.Use(RouterMiddleware("insights-api", tp))
	r.HandleFunc("/api/v1/goals/{id}/insights", func(w http.ResponseWriter, r *http.Request) {
		goal := &models.Goal{ID: 1, Name: "Launch"}
		_, _, err := eng.Compute(r.Context(), engine.Request{
			EntityID:  engine.GoalEntityID(goal.ID),
			Timeframe: "week",
			Goal:      goal,
		})
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r, exporter
}

// TestTraceContextPropagation verifies that engine spans join the request trace
func TestTraceContextPropagation(t *testing.T) {
	tests := []struct {
		name        string
		traceParent string
	}{
		{name: "without existing trace ID"},
		{name: "with existing trace ID", traceParent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, exporter := newTracedRouter(t)

			req := httptest.NewRequest("GET", "/api/v1/goals/1/insights", nil)
			if tt.traceParent != "" {
				req.Header.Set("traceparent", tt.traceParent)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			spans := exporter.GetSpans()
			if len(spans) != 2 {
				t.Fatalf("Expected 2 spans, got %d", len(spans))
			}

			var server, compute tracetest.SpanStub
			for _, s := range spans {
				switch s.SpanKind {
				case trace.SpanKindServer:
					server = s
				case trace.SpanKindInternal:
					compute = s
				}
			}

			if server.Name != "/api/v1/goals/{id}/insights" {
				t.Errorf("Expected server span named after route template, got %q", server.Name)
			}
			if compute.Name != "engine.Compute" {
				t.Errorf("Expected engine.Compute span, got %q", compute.Name)
			}
			if compute.Parent.SpanID() != server.SpanContext.SpanID() {
				t.Error("engine.Compute span should be a child of the HTTP span")
			}
			if compute.SpanContext.TraceID() != server.SpanContext.TraceID() {
				t.Error("engine.Compute span should share the request trace")
			}

			if tt.traceParent != "" {
				expectedTraceID := "4bf92f3577b34da6a3ce929d0e0e4736"
				if got := server.SpanContext.TraceID().String(); got != expectedTraceID {
					t.Errorf("Expected trace ID %s, got %s", expectedTraceID, got)
				}
			}
		})
	}
}

func TestRouterMiddleware_SkipsHealthz(t *testing.T) {
	r, exporter := newTracedRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("Expected no spans for /healthz, got %d", n)
	}
}
