package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Server.URL == "" {
		issues = append(issues, ValidationIssue{
			Path:    "server.url",
			Message: "url is required",
		})
	} else if !strings.HasPrefix(cfg.Server.URL, "http://") && !strings.HasPrefix(cfg.Server.URL, "https://") {
		issues = append(issues, ValidationIssue{
			Path:    "server.url",
			Message: fmt.Sprintf("must start with http:// or https://, got %q", cfg.Server.URL),
		})
	}

	if cfg.Server.SocketURL != "" &&
		!strings.HasPrefix(cfg.Server.SocketURL, "ws://") &&
		!strings.HasPrefix(cfg.Server.SocketURL, "wss://") {
		issues = append(issues, ValidationIssue{
			Path:    "server.socketUrl",
			Message: fmt.Sprintf("must start with ws:// or wss://, got %q", cfg.Server.SocketURL),
		})
	}

	if cfg.Server.ConnectTimeoutMs < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "server.connectTimeoutMs",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Server.ConnectTimeoutMs),
		})
	}
	if cfg.Server.RequestTimeoutMs < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "server.requestTimeoutMs",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Server.RequestTimeoutMs),
		})
	}

	if cfg.Channel.ReconnectDelayMs < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "channel.reconnectDelayMs",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Channel.ReconnectDelayMs),
		})
	}
	if cfg.Channel.MaxReconnectAttempts < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "channel.maxReconnectAttempts",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Channel.MaxReconnectAttempts),
		})
	}

	if cfg.History.AgentUpdates < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "history.agentUpdates",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.History.AgentUpdates),
		})
	}
	if cfg.History.TaskCompletions < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "history.taskCompletions",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.History.TaskCompletions),
		})
	}

	if cfg.Console.RefreshIntervalMs < 100 {
		issues = append(issues, ValidationIssue{
			Path:    "console.refreshIntervalMs",
			Message: fmt.Sprintf("must be at least 100, got %d", cfg.Console.RefreshIntervalMs),
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	return issues
}
