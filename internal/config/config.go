package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied. The backend
// defaults to the local loopback address used by a development EMAS
// deployment.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			URL:              "http://127.0.0.1:8000",
			ConnectTimeoutMs: 10000,
			RequestTimeoutMs: 15000,
		},
		Channel: ChannelConfig{
			ReconnectDelayMs:     3000,
			MaxReconnectAttempts: 10,
		},
		History: HistoryConfig{
			AgentUpdates:    100,
			TaskCompletions: 50,
		},
		Console: ConsoleConfig{
			RefreshIntervalMs: 2000,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}
