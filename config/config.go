// DIM Station - decentralized instant-messaging relay
// Copyright (C) 2025 dimchat
//
// This file is part of DIM Station.
//
// DIM Station is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DIM Station is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with DIM Station. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the station's top-level configuration
type Config struct {
	Environment string           `yaml:"environment" json:"environment"`
	BaseDir     string           `yaml:"base_dir" json:"base_dir"`
	Station     StationConfig    `yaml:"station" json:"station"`
	Neighbors   []NeighborConfig `yaml:"neighbors" json:"neighbors"`
	ANS         map[string]string `yaml:"ans_reserved_records" json:"ans_reserved_records"`
	Spool       SpoolConfig      `yaml:"spool" json:"spool"`
	Push        PushConfig       `yaml:"push" json:"push"`
	Storage     StorageConfig    `yaml:"storage" json:"storage"`
	Policy      PolicyConfig     `yaml:"policy" json:"policy"`
	Logging     *LoggingConfig   `yaml:"logging" json:"logging"`
	Metrics     *MetricsConfig   `yaml:"metrics" json:"metrics"`
	Health      *HealthConfig    `yaml:"health" json:"health"`
	Recommended []string         `yaml:"recommended_users" json:"recommended_users"`
}

// StationConfig holds the station's own listening configuration
type StationConfig struct {
	Host                string        `yaml:"host" json:"host"`
	Port                int           `yaml:"port" json:"port"`
	WebSocketPort       int           `yaml:"websocket_port" json:"websocket_port"`
	HeartbeatIntervalS  int           `yaml:"heartbeat_interval_s" json:"heartbeat_interval_s"`
	HandshakeTimeout    time.Duration `yaml:"handshake_timeout" json:"handshake_timeout"`
}

// NeighborConfig describes a single neighbor station for the octopus bridge
type NeighborConfig struct {
	ID   string `yaml:"id" json:"id"`
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// SpoolConfig controls the offline message spool
type SpoolConfig struct {
	Driver    string `yaml:"driver" json:"driver"` // file, memory
	Directory string `yaml:"directory" json:"directory"`
	BatchSize int    `yaml:"batch_size" json:"batch_size"`
}

// PushConfig selects the push notification backend
type PushConfig struct {
	Backend    string `yaml:"backend" json:"backend"` // log, webhook
	WebhookURL string `yaml:"webhook_url" json:"webhook_url"`
}

// StorageConfig selects the meta/profile/login/group-key storage backend
type StorageConfig struct {
	Driver string `yaml:"driver" json:"driver"` // memory, postgres
	DSN    string `yaml:"dsn" json:"dsn"`
}

// PolicyConfig tunes the per-sender rate limiter and the block/mute
// cache the policy filter keeps in front of the storage layer.
type PolicyConfig struct {
	RateLimitPerSecond float64       `yaml:"rate_limit_per_second" json:"rate_limit_per_second"`
	RateLimitBurst     float64       `yaml:"rate_limit_burst" json:"rate_limit_burst"`
	CacheTTL           time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Port    int    `yaml:"port" json:"port"`
	Path    string `yaml:"path" json:"path"`
}

// HealthConfig represents health check configuration
type HealthConfig struct {
	Enabled bool     `yaml:"enabled" json:"enabled"`
	Port    int      `yaml:"port" json:"port"`
	Path    string   `yaml:"path" json:"path"`
	Checks  []string `yaml:"checks" json:"checks"`
}

// LoadFromFile loads configuration from a file, trying YAML then JSON
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON): %w", err)
		}
	}

	setDefaults(cfg)

	return cfg, nil
}

// SaveToFile saves configuration to a file, choosing format by extension
func SaveToFile(cfg *Config, path string) error {
	var data []byte
	var err error

	if len(path) > 5 && path[len(path)-5:] == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setDefaults fills in defaults for fields left unset after parsing
func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = ".station"
	}

	if cfg.Station.Port == 0 {
		cfg.Station.Port = 9394
	}
	if cfg.Station.HeartbeatIntervalS == 0 {
		cfg.Station.HeartbeatIntervalS = 30
	}
	if cfg.Station.HandshakeTimeout == 0 {
		cfg.Station.HandshakeTimeout = 30 * time.Second
	}

	if cfg.Spool.Driver == "" {
		cfg.Spool.Driver = "file"
	}
	if cfg.Spool.Directory == "" {
		cfg.Spool.Directory = cfg.BaseDir + "/spool"
	}
	if cfg.Spool.BatchSize == 0 {
		cfg.Spool.BatchSize = 16
	}

	if cfg.Push.Backend == "" {
		cfg.Push.Backend = "log"
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "memory"
	}

	if cfg.Policy.RateLimitPerSecond == 0 {
		cfg.Policy.RateLimitPerSecond = 10
	}
	if cfg.Policy.RateLimitBurst == 0 {
		cfg.Policy.RateLimitBurst = 20
	}
	if cfg.Policy.CacheTTL == 0 {
		cfg.Policy.CacheTTL = 30 * time.Second
	}

	if cfg.ANS == nil {
		cfg.ANS = make(map[string]string)
	}

	if cfg.Logging == nil {
		cfg.Logging = &LoggingConfig{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics == nil {
		cfg.Metrics = &MetricsConfig{}
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9000
	}

	if cfg.Health == nil {
		cfg.Health = &HealthConfig{}
	}
	if cfg.Health.Path == "" {
		cfg.Health.Path = "/healthz"
	}
	if cfg.Health.Port == 0 {
		cfg.Health.Port = 9001
	}
}
