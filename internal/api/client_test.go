package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emas-project/emascope/internal/config"
	"github.com/emas-project/emascope/internal/domain"
	"github.com/emas-project/emascope/internal/logging"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := config.Defaults().Server
	cfg.URL = ts.URL
	cfg.Token = "test-token"
	return New(cfg, logging.New(nil, "silent"))
}

func TestListAgents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/agents", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"agents": []domain.Agent{
				{ID: "a1", Name: "code-analysis", Status: domain.AgentIdle},
				{ID: "a2", Name: "documentation", Status: domain.AgentBusy},
			},
		})
	})
	c := testClient(t, mux)

	agents, err := c.ListAgents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "a1", agents[0].ID)
	assert.Equal(t, domain.AgentBusy, agents[1].Status)
}

func TestGetAgent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/agents/a1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.Agent{ID: "a1", Name: "code-analysis", Version: "2.1.0"})
	})
	c := testClient(t, mux)

	agent, err := c.GetAgent(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", agent.Version)
}

func TestListProjects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"projects": []domain.Project{
				{ID: "p1", Status: domain.ProjectActive, CompletedTasks: 1, PendingTasks: 1, TotalTasks: 2},
			},
		})
	})
	c := testClient(t, mux)

	projects, err := c.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.InDelta(t, 50.0, projects[0].Progress(), 0.001)
}

func TestHealth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":       "degraded",
			"services":     map[string]string{"database": "healthy", "message_bus": "unhealthy"},
			"activeAgents": 3,
		})
	})
	c := testClient(t, mux)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "unhealthy", health.Services["message_bus"])
	assert.Equal(t, 3, health.ActiveAgents)
}

func TestStartStopAgent(t *testing.T) {
	var started, stopped bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/agents/a1/start", func(w http.ResponseWriter, r *http.Request) {
		started = true
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("POST /api/v1/agents/a1/stop", func(w http.ResponseWriter, r *http.Request) {
		stopped = true
		w.WriteHeader(http.StatusAccepted)
	})
	c := testClient(t, mux)

	require.NoError(t, c.StartAgent(context.Background(), "a1"))
	require.NoError(t, c.StopAgent(context.Background(), "a1"))
	assert.True(t, started)
	assert.True(t, stopped)
}

func TestErrorResponseCarriesStatusAndBody(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"agent not found"}`, http.StatusNotFound)
	}))

	_, err := c.GetAgent(context.Background(), "ghost")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, apiErr.Body, "agent not found")
}

func TestContextCancellation(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListAgents(ctx)
	assert.Error(t, err)
}
