package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	m.CacheHit("mint")
	m.CacheHit("mint")
	m.CacheMiss("mint")
	m.ObserveUpstream("dexscreener", "ok", 0.2)
	m.IncThrottled("rpc")
	m.TokenScored("SAFE")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("mint", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("mint", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("dexscreener", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Throttled.WithLabelValues("rpc")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokensScored.WithLabelValues("SAFE")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheHit("x")
		m.CacheMiss("x")
		m.ObserveUpstream("x", "ok", 1)
		m.IncThrottled("x")
		m.TokenScored("LOW")
		m.ObserveDetect(1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New("test", prometheus.NewRegistry())
	m.CacheHit("market")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "test_cache_lookups_total"))
}
