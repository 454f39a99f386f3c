package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/service"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/tax"
)

func newTestServer(t *testing.T, debug bool) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Stage:    config.StageDev,
		Tax:      tax.DefaultParams(),
		Features: config.FeatureFlags{EnableDebugEndpoint: debug},
	}
	reg := prometheus.NewRegistry()
	svc := service.NewTaxService(cfg.Tax, zap.NewNop(), service.WithMetrics(metrics.New(reg)))
	h := handlers.NewHandlers(svc, cfg, zap.NewNop())
	return New(h, cfg, reg, zap.NewNop())
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t, false)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api/v1/tax/slabs", http.StatusOK},
		{http.MethodGet, "/api/v1/tax/calculate?salary=300000", http.StatusOK},
		{http.MethodGet, "/debug", http.StatusNotFound},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.status, w.Code, "%s %s", tt.method, tt.path)
	}
}

func TestServer_DebugEnabled(t *testing.T) {
	srv := newTestServer(t, true)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t, false)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/tax/calculate",
		strings.NewReader(`{"gross_salary": 300000}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `tax_calculations_total{outcome="computed"} 1`)
}
