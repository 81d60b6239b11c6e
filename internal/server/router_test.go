// ABOUTME: Tests for router wiring: health, metrics exposition, gateway mounting
// ABOUTME: Uses a stub gateway handler to isolate routing from proxying

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atrium-labs/atrium-gateway/internal/metrics"
)

// stubGateway records the paths it was invoked with.
type stubGateway struct {
	paths []string
}

func (s *stubGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.paths = append(s.paths, r.URL.Path)
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"ok":true}`))
}

func TestRouter_Healthz(t *testing.T) {
	router := BuildRouter(Deps{Gateway: &stubGateway{}}, Options{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_GatewayMount(t *testing.T) {
	gw := &stubGateway{}
	router := BuildRouter(Deps{Gateway: gw}, Options{})

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, "/api/admin/billing/tenants", nil))
		assert.Equal(t, http.StatusOK, rec.Code, "method %s should reach the gateway", method)
	}

	// The gateway sees the full original path; it strips the prefix itself.
	assert.Contains(t, gw.paths, "/api/admin/billing/tenants")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "bare prefix is forwarded too")
}

func TestRouter_MetricsDisabledByDefault(t *testing.T) {
	router := BuildRouter(Deps{Gateway: &stubGateway{}, Metrics: metrics.New()}, Options{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_MetricsEnabled(t *testing.T) {
	m := metrics.New()
	m.ObserveRequest("tenant", 200)
	router := BuildRouter(Deps{Gateway: &stubGateway{}, Metrics: m}, Options{
		MetricsEnabled: true,
		MetricsPath:    "/metrics",
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gateway_requests_total")
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := BuildRouter(Deps{Gateway: &stubGateway{}}, Options{EnableCORS: true})

	req := httptest.NewRequest(http.MethodOptions, "/api/admin/inbox", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}
