// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

// Package config loads and validates service configuration from
// layered sources: built-in defaults, an optional YAML file, and
// environment variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Model   ModelConfig   `koanf:"model"`
	API     APIConfig     `koanf:"api"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// ModelConfig holds recommendation model settings.
type ModelConfig struct {
	// Path is the directory where trained models are persisted.
	Path string `koanf:"path"`

	// DatasetPath is the CSV interactions file used for training.
	DatasetPath string `koanf:"dataset_path"`

	// NeighborUsers is the number of similar users retained per user.
	NeighborUsers int `koanf:"neighbor_users"`

	// DefaultK is the number of recommendations when the request
	// does not specify one.
	DefaultK int `koanf:"default_k"`

	// Workers is the number of goroutines used during index fitting.
	Workers int `koanf:"workers"`

	// TrainOnStartup fits the model from DatasetPath at startup when
	// no persisted model is found.
	TrainOnStartup bool `koanf:"train_on_startup"`

	// MaxUserID is the exclusive upper bound on accepted user ids.
	// Requests above it are answered as user-not-found.
	MaxUserID int64 `koanf:"max_user_id"`
}

// APIConfig holds API behavior settings.
type APIConfig struct {
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	if c.Model.NeighborUsers < 1 {
		return fmt.Errorf("model.neighbor_users must be at least 1, got %d", c.Model.NeighborUsers)
	}
	if c.Model.DefaultK < 1 {
		return fmt.Errorf("model.default_k must be at least 1, got %d", c.Model.DefaultK)
	}
	if c.Model.Workers < 1 {
		return fmt.Errorf("model.workers must be at least 1, got %d", c.Model.Workers)
	}
	if c.Model.MaxUserID < 1 {
		return fmt.Errorf("model.max_user_id must be positive, got %d", c.Model.MaxUserID)
	}
	if c.API.RateLimitReqs < 1 {
		return fmt.Errorf("api.rate_limit_reqs must be at least 1, got %d", c.API.RateLimitReqs)
	}
	if c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("api.rate_limit_window must be positive, got %v", c.API.RateLimitWindow)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
