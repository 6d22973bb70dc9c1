package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestAuthOperation(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	m.AuthOperation("login", "success")
	m.AuthOperation("login", "success")
	m.AuthOperation("login", "authentication")

	expected := `
# HELP gatekeeper_auth_operations_total Auth operations by outcome
# TYPE gatekeeper_auth_operations_total counter
gatekeeper_auth_operations_total{operation="login",outcome="authentication"} 1
gatekeeper_auth_operations_total{operation="login",outcome="success"} 2
`
	require.NoError(t, testutil.CollectAndCompare(m.AuthOperationsTotal, strings.NewReader(expected)))
}

func TestIdentityResolution(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	m.IdentityResolution("session", "success")
	m.IdentityResolution("token", "invalid")

	require.Equal(t, 2, testutil.CollectAndCount(m.IdentityResolutionsTotal))
	require.InDelta(t, 1, testutil.ToFloat64(m.IdentityResolutionsTotal.WithLabelValues("token", "invalid")), 0)
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := m.Middleware(mux)

	for _, path := range []string{"/users/1", "/users/2", "/nope"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.InDelta(t, 2, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "GET /users/{id}", "418")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")), 0)
}

func TestHandlerServesText(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	m.AuthOperation("register", "success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `gatekeeper_auth_operations_total{operation="register",outcome="success"} 1`)
	require.Contains(t, string(body), "go_goroutines")
}
