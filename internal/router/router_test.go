package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/actuallystonmai/canteen-recommendation/internal/domain"
	"github.com/actuallystonmai/canteen-recommendation/internal/handler"
	"github.com/actuallystonmai/canteen-recommendation/internal/metrics"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type stubRecommender struct{}

func (stubRecommender) RecommendForMenu(context.Context, int64, *int64) (int64, error) { return 1, nil }
func (stubRecommender) RecommendForDate(context.Context, time.Time, *int64) (int64, error) {
	return 2, nil
}
func (stubRecommender) RecommendForMenus(context.Context, []int64, *int64) (int64, error) {
	return 3, nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeTotals(context.Context, int64) (domain.NutritionTotals, error) {
	return domain.NutritionTotals{Calories: 1}, nil
}
func (stubAnalyzer) AssessHealth(_ context.Context, id int64) (domain.NutritionAssessment, error) {
	return domain.NutritionAssessment{MenuID: id, Reasoning: "ok"}, nil
}

func newTestRouter(checks map[string]Pinger) (http.Handler, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	h := handler.NewHandler(stubRecommender{}, stubAnalyzer{}, zap.NewNop())
	return Setup(h, Options{RequestTimeout: 5 * time.Second, Gatherer: reg, Checks: checks}), m
}

func serve(r http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	r, _ := newTestRouter(nil)

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodPost, "/recommendation/menu/5", http.StatusOK},
		{http.MethodPost, "/recommendation/date/2026-10-15", http.StatusOK},
		{http.MethodGet, "/nutrition/analyze/menu/5", http.StatusOK},
		{http.MethodGet, "/nutrition/assess/menu/5", http.StatusOK},
		{http.MethodGet, "/recommendation/menu/5", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nutrition/analyze/5", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, serve(r, tt.method, tt.target).Code)
		})
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(map[string]Pinger{
		"postgres": pingFunc(func(context.Context) error { return nil }),
		"redis":    pingFunc(func(context.Context) error { return nil }),
	})

	rec := serve(r, http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"postgres":"ok","redis":"ok"}}`, rec.Body.String())
}

func TestHealthDegraded(t *testing.T) {
	r, _ := newTestRouter(map[string]Pinger{
		"postgres": pingFunc(func(context.Context) error { return nil }),
		"redis":    pingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})

	rec := serve(r, http.MethodGet, "/health")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["redis"])
	assert.Equal(t, "ok", resp.Checks["postgres"])
}

func TestMetricsEndpoint(t *testing.T) {
	r, m := newTestRouter(nil)
	m.Fallback("recommend", "auth")

	rec := serve(r, http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `canteen_fallbacks_total{operation="recommend",reason="auth"} 1`)
}
