package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/snacks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/snacks/1", "/snacks/2"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusTeapot, rr.Code)
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/snacks/{id}", "418"))
	assert.Equal(t, 2.0, got)
}

func TestCounters(t *testing.T) {
	m := New()
	m.RatingRecomputed("create")
	m.RatingRecomputed("create")
	m.RateLimited("auth")
	m.NearbyCandidates(12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ratingRecomputes.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited.WithLabelValues("auth")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.RatingRecomputed("delete") })
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.RateLimited("global")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "snackspot_http_rate_limited_total")
}
