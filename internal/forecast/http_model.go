package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPModel calls a model hosted behind the TensorFlow Serving REST API:
//
//	POST {Endpoint}/v1/models/{Name}:predict  {"instances": [window, ...]}
//	-> {"predictions": [[y], ...]}
type HTTPModel struct {
	Endpoint string
	Name     string
	Client   *http.Client
}

// NewHTTPModel creates a model client with the given request timeout.
func NewHTTPModel(endpoint, name string, timeout time.Duration) *HTTPModel {
	return &HTTPModel{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Name:     name,
		Client:   &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Instances [][][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions []json.RawMessage `json:"predictions"`
	Error       string            `json:"error"`
}

func (m *HTTPModel) Predict(ctx context.Context, window [][]float64) (float64, error) {
	ys, err := m.PredictBatch(ctx, [][][]float64{window})
	if err != nil {
		return 0, err
	}
	return ys[0], nil
}

func (m *HTTPModel) PredictBatch(ctx context.Context, windows [][][]float64) ([]float64, error) {
	body, err := json.Marshal(predictRequest{Instances: windows})
	if err != nil {
		return nil, fmt.Errorf("encode instances: %w", err)
	}
	u := fmt.Sprintf("%s/v1/models/%s:predict", m.Endpoint, url.PathEscape(m.Name))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", m.Name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("model %s read body: %w", m.Name, err)
	}
	var out predictResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(raw, &out) == nil && out.Error != "" {
			return nil, fmt.Errorf("model %s: status %d: %s", m.Name, resp.StatusCode, out.Error)
		}
		return nil, fmt.Errorf("model %s: status %d", m.Name, resp.StatusCode)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("model %s decode: %w", m.Name, err)
	}
	if len(out.Predictions) != len(windows) {
		return nil, fmt.Errorf("model %s: %d predictions for %d instances", m.Name, len(out.Predictions), len(windows))
	}

	ys := make([]float64, len(out.Predictions))
	for i, p := range out.Predictions {
		y, err := firstValue(p)
		if err != nil {
			return nil, fmt.Errorf("model %s prediction %d: %w", m.Name, i, err)
		}
		ys[i] = y
	}
	return ys, nil
}

// firstValue accepts either a scalar or a one-element output vector.
func firstValue(raw json.RawMessage) (float64, error) {
	var vec []float64
	if err := json.Unmarshal(raw, &vec); err == nil {
		if len(vec) == 0 {
			return 0, fmt.Errorf("empty output vector")
		}
		return vec[0], nil
	}
	var y float64
	if err := json.Unmarshal(raw, &y); err != nil {
		return 0, fmt.Errorf("unexpected output %s", string(raw))
	}
	return y, nil
}
