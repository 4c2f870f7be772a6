package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "/pets/{petID}", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/pets/{petID}", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/pets/{petID}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestObserveResolution(t *testing.T) {
	m := New()

	m.ObserveResolution("trait", "created")
	m.ObserveResolution("trait", "found")
	m.ObserveResolution("trait", "found")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.resolutions.WithLabelValues("trait", "found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("trait", "created")))
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()

	a.ObserveResolution("group", "created")

	assert.Equal(t, 0.0, testutil.ToFloat64(b.resolutions.WithLabelValues("group", "created")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveResolution("group", "raced")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `pets_name_resolutions_total{entity="group",outcome="raced"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
