package mind

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteConfig holds the settings for a remote collaborator service.
type RemoteConfig struct {
	// BaseURL is the root of the collaborator HTTP API.
	BaseURL string

	// Timeout bounds each HTTP call.
	Timeout time.Duration

	// RetryAttempts is how many times a failed call is retried.
	RetryAttempts int
}

// RemoteProvider is an HTTP JSON client for an external reasoning service.
// It posts plan, purpose, and help requests to the configured endpoints and
// retries transient failures with exponential backoff.
type RemoteProvider struct {
	config     RemoteConfig
	httpClient *http.Client
	retry      *Retry
}

type purposeRequest struct {
	Purpose string `json:"purpose"`
}

type purposeResponse struct {
	Guidance string `json:"guidance"`
	Error    string `json:"error,omitempty"`
}

type planResponse struct {
	Path      []string `json:"path"`
	Rationale string   `json:"rationale"`
	Error     string   `json:"error,omitempty"`
}

type helpResponse struct {
	RelevantExpertise []string `json:"relevant_expertise"`
	Rationale         string   `json:"rationale"`
	Error             string   `json:"error,omitempty"`
}

// NewRemoteProvider creates a remote collaborator client.
func NewRemoteProvider(config RemoteConfig) *RemoteProvider {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RetryAttempts < 1 {
		config.RetryAttempts = 3
	}

	return &RemoteProvider{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		retry: NewRetry(config.RetryAttempts,
			NewExponentialBackoff(100*time.Millisecond, 2*time.Second, 2.0)),
	}
}

// Name returns the name of this provider.
func (p *RemoteProvider) Name() string {
	return ProviderRemote
}

// IsConfigured returns true if a base URL is set.
func (p *RemoteProvider) IsConfigured() bool {
	return p.config.BaseURL != ""
}

// PlanRoute asks the remote service for a preferred path.
func (p *RemoteProvider) PlanRoute(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	var resp planResponse
	if err := p.post(ctx, "/plan", req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("remote planner error: %s", resp.Error)
	}

	return &PlanResult{
		Path:      resp.Path,
		Rationale: resp.Rationale,
	}, nil
}

// InterpretPurpose asks the remote service for initialization guidance.
func (p *RemoteProvider) InterpretPurpose(ctx context.Context, purpose string) (string, error) {
	var resp purposeResponse
	if err := p.post(ctx, "/purpose", purposeRequest{Purpose: purpose}, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("remote interpreter error: %s", resp.Error)
	}

	return resp.Guidance, nil
}

// InterpretHelp asks the remote service which expertise is relevant.
func (p *RemoteProvider) InterpretHelp(ctx context.Context, req HelpRequest) (*HelpResult, error) {
	var resp helpResponse
	if err := p.post(ctx, "/help", req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("remote interpreter error: %s", resp.Error)
	}

	return &HelpResult{
		RelevantExpertise: resp.RelevantExpertise,
		Rationale:         resp.Rationale,
	}, nil
}

// post sends a JSON request and decodes the JSON response, with retries.
func (p *RemoteProvider) post(ctx context.Context, path string, payload, out interface{}) error {
	if !p.IsConfigured() {
		return fmt.Errorf("remote provider has no base URL configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	return p.retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			p.config.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(data))
		}

		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}

		return nil
	})
}
