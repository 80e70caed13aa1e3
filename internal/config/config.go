package config

import (
	"fmt"
	"time"
)

type Config struct {
	API       APIConfig
	Dashboard DashboardConfig
	Storage   StorageConfig
}

type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type DashboardConfig struct {
	PollIntervalSeconds int
}

type StorageConfig struct {
	DataDir string
}

func defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "http://localhost:5000",
			TimeoutSeconds: 30,
		},
		Dashboard: DashboardConfig{
			PollIntervalSeconds: 5,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/finvix/config.json with FINVIX_* environment
// variables overriding backend values.
//
// A missing or blank API base URL is a startup error: every command
// talks to the backend, so there is nothing useful to do without one.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.API.BaseURL == "" {
		return Config{}, fmt.Errorf("missing required config: API base URL. Set api.base_url or the FINVIX_API_BASE_URL environment variable")
	}
	if cfg.API.TimeoutSeconds <= 0 {
		return Config{}, fmt.Errorf("api.timeout must be positive, got %d", cfg.API.TimeoutSeconds)
	}
	if cfg.Dashboard.PollIntervalSeconds <= 0 {
		return Config{}, fmt.Errorf("dashboard.poll_interval must be positive, got %d", cfg.Dashboard.PollIntervalSeconds)
	}

	return cfg, nil
}

// Timeout returns the request deadline applied to every API call.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// PollInterval returns the delay between dashboard refreshes.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Dashboard.PollIntervalSeconds) * time.Second
}
