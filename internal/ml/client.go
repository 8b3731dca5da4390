// Copyright (c) 2026 MindMeld. All rights reserved.

package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient talks to the inference service over JSON/HTTP.
//
// The standard library client is used directly: the protocol is three plain
// POST endpoints and the per-request timeout is the only tuning we need.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient constructs the real inference client.
//
// # Parameters
//   - baseURL: Root of the inference service (e.g. http://localhost:5001).
//   - timeout: Per-request deadline. Inference must never stall API traffic.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Classify implements [Client] against POST /api/classify.
func (client *HTTPClient) Classify(context context.Context, input ClassifyInput) (*Classification, error) {
	result := &Classification{}
	if err := client.post(context, "/api/classify", input, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Recommend implements [Client] against POST /api/recommend.
func (client *HTTPClient) Recommend(context context.Context, input RecommendInput) (*Recommendation, error) {
	result := &Recommendation{}
	if err := client.post(context, "/api/recommend", input, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Predict implements [Client] against POST /api/predict.
func (client *HTTPClient) Predict(context context.Context, input PredictInput) (*Prediction, error) {
	result := &Prediction{}
	if err := client.post(context, "/api/predict", input, result); err != nil {
		return nil, err
	}
	return result, nil
}

// post executes a JSON round-trip against the inference service.
func (client *HTTPClient) post(context context.Context, path string, payload any, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ml_client_marshal_failed: %w", err)
	}

	request, err := http.NewRequestWithContext(context, http.MethodPost, client.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ml_client_request_failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("ml_client_call_failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, 4096))
		return fmt.Errorf("ml_client_unexpected_status: %d from %s", response.StatusCode, path)
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("ml_client_decode_failed: %w", err)
	}

	return nil
}
