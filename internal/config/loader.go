package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so tokens can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Server.Token = expandEnvVars(cfg.Server.Token)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.URL == "" {
		cfg.Server.URL = "http://127.0.0.1:8000"
	}
	if cfg.Server.ConnectTimeoutMs == 0 {
		cfg.Server.ConnectTimeoutMs = 10000
	}
	if cfg.Server.RequestTimeoutMs == 0 {
		cfg.Server.RequestTimeoutMs = 15000
	}
	if cfg.Channel.ReconnectDelayMs == 0 {
		cfg.Channel.ReconnectDelayMs = 3000
	}
	if cfg.Channel.MaxReconnectAttempts == 0 {
		cfg.Channel.MaxReconnectAttempts = 10
	}
	if cfg.History.AgentUpdates == 0 {
		cfg.History.AgentUpdates = 100
	}
	if cfg.History.TaskCompletions == 0 {
		cfg.History.TaskCompletions = 50
	}
	if cfg.Console.RefreshIntervalMs == 0 {
		cfg.Console.RefreshIntervalMs = 2000
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// applyEnvOverrides reads EMASCOPE_* environment variables and overrides
// config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EMASCOPE_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("EMASCOPE_SOCKET_URL"); v != "" {
		cfg.Server.SocketURL = v
	}
	if v := os.Getenv("EMASCOPE_SERVER_TOKEN"); v != "" {
		cfg.Server.Token = v
	}
	if v := os.Getenv("EMASCOPE_RECONNECT_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Channel.MaxReconnectAttempts = n
		}
	}
	if v := os.Getenv("EMASCOPE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}
