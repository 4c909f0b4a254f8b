package observe

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware_PassThrough(t *testing.T) {
	obs, err := New(context.Background(), Config{ServiceName: "collabd"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	var buf bytes.Buffer
	mw, err := NewMiddleware(obs, NewLogger("info", &buf))
	if err != nil {
		t.Fatalf("NewMiddleware() error = %v", err)
	}

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"status":418`)) {
		t.Errorf("completion log missing status: %s", buf.String())
	}
}

func TestStatusWriter_DefaultsTo200(t *testing.T) {
	obs, err := New(context.Background(), Config{ServiceName: "collabd"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	var buf bytes.Buffer
	mw, err := NewMiddleware(obs, NewLogger("info", &buf))
	if err != nil {
		t.Fatalf("NewMiddleware() error = %v", err)
	}

	// Handler writes a body without an explicit WriteHeader.
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !bytes.Contains(buf.Bytes(), []byte(`"status":200`)) {
		t.Errorf("implicit 200 not recorded: %s", buf.String())
	}
}
