package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	pkgserver "github.com/DjordjeVuckovic/agreement-lab/pkg/server"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name: "defaults",
			env:  map[string]string{"PORT": "", "USE_HTTP2": "", "CORS_ORIGINS": ""},
			want: &Config{Port: "8080", CorsOrigins: []string{"*"}},
		},
		{
			name: "explicit",
			env:  map[string]string{"PORT": "9090", "USE_HTTP2": "true", "CORS_ORIGINS": " http://a.test , ,http://b.test"},
			want: &Config{Port: "9090", UseHttp2: true, CorsOrigins: []string{"http://a.test", "http://b.test"}},
		},
		{
			name:    "port not a number",
			env:     map[string]string{"PORT": "http"},
			wantErr: true,
		},
		{
			name:    "port out of range",
			env:     map[string]string{"PORT": "70000"},
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			cfg, err := LoadConfig()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg)
		})
	}
}

func TestServer_HealthAndMetrics(t *testing.T) {
	healthy := true
	hc := pkgserver.HealthCheckerFunc(func(context.Context) bool { return healthy })

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "requests_seen_total", Help: "requests seen"})
	reg.MustRegister(counter)
	counter.Inc()

	s := New(&Config{Port: "8080", CorsOrigins: []string{"*"}}, hc).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health").
		SetupMetrics("/metrics", reg)
	s.Echo.GET("/fail", func(c echo.Context) error {
		return apperr.NewNotFound("run", "x")
	})

	serve := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		s.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := serve("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	healthy = false
	rec = serve("/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "requests_seen_total 1")

	rec = serve("/fail")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
