package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewGeneratesIDs(t *testing.T) {
	tc := New()
	if len(tc.TraceID) != 32 {
		t.Errorf("TraceID length = %d, want 32", len(tc.TraceID))
	}
	if len(tc.SpanID) != 16 {
		t.Errorf("SpanID length = %d, want 16", len(tc.SpanID))
	}
}

func TestNewChildKeepsTraceID(t *testing.T) {
	parent := New()
	child := NewChild(parent)

	if child.TraceID != parent.TraceID {
		t.Error("child should inherit trace ID")
	}
	if child.SpanID == parent.SpanID {
		t.Error("child should get a fresh span ID")
	}
	if child.ParentSpanID != parent.SpanID {
		t.Error("child parent span should be parent's span ID")
	}
}

func TestContextRoundTrip(t *testing.T) {
	tc := New()
	ctx := WithContext(context.Background(), tc)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("FromContext() should find injected context")
	}
	if got.TraceID != tc.TraceID {
		t.Errorf("TraceID = %q, want %q", got.TraceID, tc.TraceID)
	}
}

func TestEnsureContextCreatesWhenMissing(t *testing.T) {
	ctx, tc := EnsureContext(context.Background())
	if tc.TraceID == "" {
		t.Error("EnsureContext should create a trace ID")
	}

	_, tc2 := EnsureContext(ctx)
	if tc2.TraceID != tc.TraceID {
		t.Error("EnsureContext should reuse existing context")
	}
}

func TestStartSpanChildOfExisting(t *testing.T) {
	ctx := WithContext(context.Background(), New())
	parent, _ := FromContext(ctx)

	_, span := StartSpan(ctx, "test_op")
	if span.Ctx.TraceID != parent.TraceID {
		t.Error("span should inherit trace ID")
	}
	if span.Name != "test_op" {
		t.Errorf("Name = %q, want test_op", span.Name)
	}

	span.End()
	if span.Duration() < 0 {
		t.Error("Duration should be non-negative")
	}
}

func TestMiddlewarePropagatesHeaders(t *testing.T) {
	var got Context
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(TraceIDKey, "abc123")
	req.Header.Set(SpanIDKey, "def456")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got.TraceID != "abc123" {
		t.Errorf("TraceID = %q, want abc123", got.TraceID)
	}
	if got.ParentSpanID != "def456" {
		t.Errorf("ParentSpanID = %q, want def456", got.ParentSpanID)
	}
}

func TestMiddlewareCreatesTraceWhenAbsent(t *testing.T) {
	var got Context
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if got.TraceID == "" {
		t.Error("middleware should create a trace ID when headers are absent")
	}
}
