// Package api implements the REST client for the EMAS backend. It is the
// pull side of the dashboard contract; the push side is internal/channel.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/emas-project/emascope/internal/config"
	"github.com/emas-project/emascope/internal/domain"
	"github.com/emas-project/emascope/internal/logging"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Body)
}

// Client talks to the backend's REST surface.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logging.Logger
}

// New creates a backend client from server configuration.
func New(cfg config.ServerConfig, log *logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.RequestTimeout()},
		log:     log.Sub("api"),
	}
}

// Health fetches the backend's aggregate health snapshot.
func (c *Client) Health(ctx context.Context) (domain.SystemHealth, error) {
	var health domain.SystemHealth
	err := c.do(ctx, http.MethodGet, "/health", nil, &health)
	return health, err
}

type agentsResponse struct {
	Agents []domain.Agent `json:"agents"`
}

// ListAgents fetches all registered agents.
func (c *Client) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	var resp agentsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/agents", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Agents, nil
}

// GetAgent fetches a single agent by ID.
func (c *Client) GetAgent(ctx context.Context, id string) (domain.Agent, error) {
	var agent domain.Agent
	err := c.do(ctx, http.MethodGet, "/api/v1/agents/"+id, nil, &agent)
	return agent, err
}

// StartAgent asks the backend registry to start a stopped agent.
func (c *Client) StartAgent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/agents/"+id+"/start", nil, nil)
}

// StopAgent asks the backend registry to stop a running agent.
func (c *Client) StopAgent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/agents/"+id+"/stop", nil, nil)
}

type projectsResponse struct {
	Projects []domain.Project `json:"projects"`
}

// ListProjects fetches all tracked projects.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var resp projectsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// do issues one request and decodes the JSON response into out (skipped
// when out is nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("backend returned error")
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
