package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservers(t *testing.T) {
	m := New(nil)

	m.ObserveModelCall(10*time.Millisecond, nil)
	m.ObserveModelCall(20*time.Millisecond, errors.New("boom"))
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveRun("ok", time.Second)
	m.FetchFailed("yahoo")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ModelCalls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModelErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisRuns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchErrors.WithLabelValues("yahoo")))
}

func TestHandler(t *testing.T) {
	m := New(nil)
	m.ObserveRun("error", time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `stock_oracle_analysis_runs_total{status="error"} 1`)
}
