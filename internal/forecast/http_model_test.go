package forecast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPModel_PredictBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/models/lstm:predict", r.URL.Path)

		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		preds := make([][]float64, len(req.Instances))
		for i, inst := range req.Instances {
			preds[i] = []float64{inst[len(inst)-1][0] + 0.5}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"predictions": preds})
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL+"/", "lstm", 5*time.Second)
	ys, err := m.PredictBatch(context.Background(), [][][]float64{
		{{0.1}, {0.2}},
		{{0.3}, {0.4}},
	})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.7, 0.9}, ys, 1e-12)

	y, err := m.Predict(context.Background(), [][]float64{{0.0}, {0.25}})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, y, 1e-12)
}

func TestHTTPModel_ScalarPredictions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions": [0.42]}`))
	}))
	defer srv.Close()

	y, err := NewHTTPModel(srv.URL, "m", time.Second).Predict(context.Background(), [][]float64{{1}})
	require.NoError(t, err)
	assert.Equal(t, 0.42, y)
}

func TestHTTPModel_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "Servable not found"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPModel(srv.URL, "missing", time.Second).Predict(context.Background(), [][]float64{{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Servable not found")
}

func TestHTTPModel_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions": []}`))
	}))
	defer srv.Close()

	_, err := NewHTTPModel(srv.URL, "m", time.Second).Predict(context.Background(), [][]float64{{1}})
	assert.Error(t, err)
}
