// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pandanoir/popviz/internal/validation"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Upstream UpstreamConfig
	Client   ClientConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `validate:"required,oneof=development staging production"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `validate:"required,oneof=debug info warn error"`
}

// ServerConfig holds proxy server configuration.
type ServerConfig struct {
	Port         string        `validate:"required,numeric"`
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// UpstreamConfig holds the upstream population statistics API configuration.
type UpstreamConfig struct {
	// BaseURL is the upstream API origin, e.g. https://yumemi.example.com.
	BaseURL string `validate:"required,url"`
	// APIKey is the server-held credential attached to every upstream call.
	// It never reaches a client.
	APIKey string `validate:"required"`
}

// ClientConfig holds terminal client configuration.
type ClientConfig struct {
	// ProxyURL is the origin the client fetches through, e.g.
	// http://localhost:8080. The client never talks to the upstream host
	// directly and never holds the API key.
	ProxyURL string `validate:"required,url"`
}

// Flags carries parsed command-line values into LoadConfig so callers own
// flag registration and main stays testable.
type Flags struct {
	Env      string
	LogLevel string
	Port     string
	Upstream string
	APIKey   string
	ProxyURL string
	EnvFile  string
}

// LoadConfig loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(flags Flags) (*Config, error) {
	envFile := flags.EnvFile
	if envFile == "" {
		envFile = ".env"
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(flags.Env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: strings.ToLower(getConfigValue(flags.LogLevel, "LOG_LEVEL", "info")),
		},
		Server: ServerConfig{
			Port: getConfigValue(flags.Port, "SERVER_PORT", "8080"),
		},
		Upstream: UpstreamConfig{
			BaseURL: getConfigValue(flags.Upstream, "UPSTREAM_BASE_URL", ""),
			APIKey:  getConfigValue(flags.APIKey, "UPSTREAM_API_KEY", ""),
		},
		Client: ClientConfig{
			ProxyURL: getConfigValue(flags.ProxyURL, "PROXY_URL", "http://localhost:8080"),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue("SERVER_READ_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue("SERVER_WRITE_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue("SERVER_IDLE_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadClientConfig loads only the pieces the terminal client needs. The
// upstream credential is deliberately not required here.
func LoadClientConfig(flags Flags) (*Config, error) {
	envFile := flags.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	_ = loadEnvFile(envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(flags.Env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: strings.ToLower(getConfigValue(flags.LogLevel, "LOG_LEVEL", "warn")),
		},
		Client: ClientConfig{
			ProxyURL: getConfigValue(flags.ProxyURL, "PROXY_URL", "http://localhost:8080"),
		},
	}

	v := validation.New()
	if err := v.Validate(cfg.App); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := v.Validate(cfg.Client); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	v := validation.New()
	for _, section := range []any{c.App, c.Logger, c.Server, c.Upstream} {
		if err := v.Validate(section); err != nil {
			return err
		}
	}
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getDurationConfigValue returns a duration from an env var or default.
func getDurationConfigValue(envKey string, defaultValue time.Duration) (time.Duration, error) {
	strValue := os.Getenv(envKey)
	if strValue == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
