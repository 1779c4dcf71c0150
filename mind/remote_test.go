package mind

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteProviderIsConfigured(t *testing.T) {
	assert.False(t, NewRemoteProvider(RemoteConfig{}).IsConfigured())
	assert.True(t, NewRemoteProvider(RemoteConfig{BaseURL: "http://localhost:1234"}).IsConfigured())
}

func TestRemoteProviderPlanRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/plan", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req PlanRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "cell-a", req.SourceID)

		json.NewEncoder(w).Encode(planResponse{
			Path:      []string{"cell-a", "cell-b"},
			Rationale: "remote plan",
		})
	}))
	defer srv.Close()

	p := NewRemoteProvider(RemoteConfig{BaseURL: srv.URL, RetryAttempts: 1})

	result, err := p.PlanRoute(context.Background(), PlanRequest{
		SourceID: "cell-a",
		TargetID: "cell-b",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cell-a", "cell-b"}, result.Path)
	assert.Equal(t, "remote plan", result.Rationale)
}

func TestRemoteProviderSurfacesServiceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(planResponse{Error: "model overloaded"})
	}))
	defer srv.Close()

	p := NewRemoteProvider(RemoteConfig{BaseURL: srv.URL, RetryAttempts: 1})

	_, err := p.PlanRoute(context.Background(), PlanRequest{SourceID: "cell-a", TargetID: "cell-b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestRemoteProviderRetriesFailedCalls(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(purposeResponse{Guidance: "seed sensors first"})
	}))
	defer srv.Close()

	p := NewRemoteProvider(RemoteConfig{BaseURL: srv.URL, RetryAttempts: 3})
	p.retry = NewRetry(3, NewExponentialBackoff(1, 1, 1.0))

	guidance, err := p.InterpretPurpose(context.Background(), "watch the field")
	require.NoError(t, err)
	assert.Equal(t, "seed sensors first", guidance)
	assert.Equal(t, 2, calls)
}

func TestRemoteProviderInterpretHelp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/help", r.URL.Path)
		json.NewEncoder(w).Encode(helpResponse{
			RelevantExpertise: []string{"EnvironmentSensor"},
			Rationale:         "sensing request",
		})
	}))
	defer srv.Close()

	p := NewRemoteProvider(RemoteConfig{BaseURL: srv.URL, RetryAttempts: 1})

	result, err := p.InterpretHelp(context.Background(), HelpRequest{Request: "need readings"})
	require.NoError(t, err)
	assert.Equal(t, []string{"EnvironmentSensor"}, result.RelevantExpertise)
}

func TestRemoteProviderWithoutBaseURLFailsFast(t *testing.T) {
	p := NewRemoteProvider(RemoteConfig{})

	_, err := p.PlanRoute(context.Background(), PlanRequest{SourceID: "cell-a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no base URL")
}
