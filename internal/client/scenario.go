package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lingualife/backend/internal/model/scenario"
)

// ScenarioFetcher loads a user's custom scenarios from the persistence
// collaborator.
type ScenarioFetcher interface {
	FetchScenarios(ctx context.Context, uid string) ([]scenario.Scenario, error)
}

// ErrMalformedScenarios marks a 2xx response whose models field is missing
// or not an array. Callers keep their existing scenario set in that case.
var ErrMalformedScenarios = fmt.Errorf("scenario response missing models array")

// HTTPScenarioClient talks to POST {base}/fetch.
type HTTPScenarioClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPScenarioClient builds a scenario-fetch client with the given timeout.
func NewHTTPScenarioClient(baseURL string, timeout time.Duration) *HTTPScenarioClient {
	return &HTTPScenarioClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchScenarios posts the uid and returns the stored custom scenarios.
func (c *HTTPScenarioClient) FetchScenarios(ctx context.Context, uid string) ([]scenario.Scenario, error) {
	body, err := json.Marshal(map[string]string{"uid": uid})
	if err != nil {
		return nil, fmt.Errorf("marshal fetch request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/fetch", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("scenario server error: %d", resp.StatusCode)
	}

	var parsed struct {
		Models []scenario.Scenario `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, ErrMalformedScenarios
	}
	if parsed.Models == nil {
		return nil, ErrMalformedScenarios
	}
	return parsed.Models, nil
}
