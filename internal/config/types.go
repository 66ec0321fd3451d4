package config

import (
	"strings"
	"time"
)

// Config is the root configuration for emascope.
type Config struct {
	Server  ServerConfig  `yaml:"server,omitempty"`
	Channel ChannelConfig `yaml:"channel,omitempty"`
	History HistoryConfig `yaml:"history,omitempty"`
	Console ConsoleConfig `yaml:"console,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// ServerConfig points at the EMAS backend.
type ServerConfig struct {
	URL              string `yaml:"url,omitempty"`              // REST base URL
	SocketURL        string `yaml:"socketUrl,omitempty"`        // WebSocket URL; derived from URL when empty
	Token            string `yaml:"token,omitempty"`            // bearer token, supports ${ENV_VAR}
	ConnectTimeoutMs int    `yaml:"connectTimeoutMs,omitempty"` // WebSocket handshake timeout
	RequestTimeoutMs int    `yaml:"requestTimeoutMs,omitempty"` // REST request timeout
}

// ConnectTimeout returns the WebSocket handshake timeout as a duration.
func (s ServerConfig) ConnectTimeout() time.Duration {
	return time.Duration(s.ConnectTimeoutMs) * time.Millisecond
}

// RequestTimeout returns the REST request timeout as a duration.
func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutMs) * time.Millisecond
}

// ResolveSocketURL returns the explicit socket URL, or one derived from the
// REST base URL ("http://host" → "ws://host/ws").
func (s ServerConfig) ResolveSocketURL() string {
	if s.SocketURL != "" {
		return s.SocketURL
	}
	u := s.URL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return strings.TrimSuffix(u, "/") + "/ws"
}

// ChannelConfig controls the real-time channel's reconnection policy.
type ChannelConfig struct {
	ReconnectDelayMs     int `yaml:"reconnectDelayMs,omitempty"`
	MaxReconnectAttempts int `yaml:"maxReconnectAttempts,omitempty"`
}

// ReconnectDelay returns the fixed delay between reconnect attempts.
func (c ChannelConfig) ReconnectDelay() time.Duration {
	return time.Duration(c.ReconnectDelayMs) * time.Millisecond
}

// HistoryConfig sets the bounded history caps.
type HistoryConfig struct {
	AgentUpdates    int `yaml:"agentUpdates,omitempty"`
	TaskCompletions int `yaml:"taskCompletions,omitempty"`
}

// ConsoleConfig controls the terminal console.
type ConsoleConfig struct {
	RefreshIntervalMs int `yaml:"refreshIntervalMs,omitempty"`
}

// RefreshInterval returns the console redraw interval.
func (c ConsoleConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMs) * time.Millisecond
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}
