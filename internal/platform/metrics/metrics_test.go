package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("/users/{id}", http.MethodGet, "418"))
	assert.Equal(t, float64(2), got)
}

func TestObserveAuth_AndHandler(t *testing.T) {
	m := New()
	m.ObserveAuth("login", "ok")
	m.ObserveAuth("login", "Mismatch")
	m.ObserveAuth("login", "Mismatch")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.authOutcomes.WithLabelValues("login", "Mismatch")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `auth_operations_total{operation="login",outcome="ok"} 1`)

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveAuth("login", "ok") })
}
