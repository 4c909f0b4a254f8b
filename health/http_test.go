package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   int
	}{
		{name: "healthy", result: Healthy("ok"), want: http.StatusOK},
		{name: "degraded still ready", result: Result{Status: StatusDegraded}, want: http.StatusOK},
		{name: "unhealthy", result: Unhealthy("down", errors.New("down")), want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator()
			agg.Register(NewCheckerFunc("dep", func(context.Context) Result {
				return tt.result
			}))

			rec := httptest.NewRecorder()
			ReadinessHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestDetailedHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register(NewCheckerFunc("postgres", func(context.Context) Result {
		return Healthy("connected")
	}))
	agg.Register(NewCheckerFunc("redis", func(context.Context) Result {
		return Result{Status: StatusDegraded, Message: "slow", Error: errors.New("timeout")}
	}))

	rec := httptest.NewRecorder()
	DetailedHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("overall status = %q, want degraded", resp.Status)
	}
	if resp.Checks["postgres"].Status != "healthy" {
		t.Errorf("postgres status = %q, want healthy", resp.Checks["postgres"].Status)
	}
	if resp.Checks["redis"].Error != "timeout" {
		t.Errorf("redis error = %q, want timeout", resp.Checks["redis"].Error)
	}
}
