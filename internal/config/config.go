// Package config loads oncostrike process configuration: the listen
// address, the ruleset document path, and the collaborator endpoints.
// Values layer as defaults, then the YAML file, then ONCOSTRIKE_*
// environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all oncostrike configuration.
type Config struct {
	// Server settings
	Server ServerConfig `yaml:"server" envPrefix:"ONCOSTRIKE_"`

	// Path to the ruleset document; empty means embedded defaults.
	RulesetPath string `yaml:"ruleset_path" env:"ONCOSTRIKE_RULESET_PATH"`

	// Path to the interception audit trail; empty disables recording.
	AuditLogPath string `yaml:"audit_log_path" env:"ONCOSTRIKE_AUDIT_LOG_PATH"`

	// Pipeline execution settings
	Pipeline PipelineConfig `yaml:"pipeline" envPrefix:"ONCOSTRIKE_"`

	// Collaborator endpoints
	Collaborators CollaboratorsConfig `yaml:"collaborators"`

	// Logging
	Logging LoggingConfig `yaml:"logging" envPrefix:"ONCOSTRIKE_"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	ListenAddr     string `yaml:"listen_addr" env:"LISTEN_ADDR"`
	RequestTimeout string `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	ShutdownGrace  string `yaml:"shutdown_grace"`
}

// PipelineConfig configures pipeline execution.
type PipelineConfig struct {
	// GeneConcurrency bounds how many genes are signal-scored at once
	// during target lock.
	GeneConcurrency int `yaml:"gene_concurrency" env:"GENE_CONCURRENCY"`

	// WatchRuleset enables the fsnotify hot-reload watcher in serve mode.
	WatchRuleset bool `yaml:"watch_ruleset" env:"WATCH_RULESET"`
}

// CollaboratorsConfig configures the eight external services.
type CollaboratorsConfig struct {
	Functionality Endpoint          `yaml:"functionality" envPrefix:"ONCOSTRIKE_FUNCTIONALITY_"`
	Essentiality  Endpoint          `yaml:"essentiality" envPrefix:"ONCOSTRIKE_ESSENTIALITY_"`
	Regulatory    Endpoint          `yaml:"regulatory" envPrefix:"ONCOSTRIKE_REGULATORY_"`
	Chromatin     ChromatinEndpoint `yaml:"chromatin" envPrefix:"ONCOSTRIKE_CHROMATIN_"`
	Reference     Endpoint          `yaml:"reference" envPrefix:"ONCOSTRIKE_REFERENCE_"`
	GuideDesign   Endpoint          `yaml:"guide_design" envPrefix:"ONCOSTRIKE_GUIDE_DESIGN_"`
	OffTarget     Endpoint          `yaml:"off_target" envPrefix:"ONCOSTRIKE_OFF_TARGET_"`
	Efficacy      Endpoint          `yaml:"efficacy" envPrefix:"ONCOSTRIKE_EFFICACY_"`
}

// Endpoint configures one collaborator service.
type Endpoint struct {
	BaseURL string `yaml:"base_url" env:"URL"`
	ModelID string `yaml:"model_id" env:"MODEL"`
	Timeout string `yaml:"timeout" env:"TIMEOUT"`
}

// ChromatinEndpoint adds the accessibility query radius.
type ChromatinEndpoint struct {
	Endpoint `yaml:",inline"`
	Radius   int `yaml:"radius" env:"RADIUS"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"LOG_FORMAT"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:     ":8080",
			RequestTimeout: "120s",
			ShutdownGrace:  "10s",
		},

		Pipeline: PipelineConfig{
			GeneConcurrency: 4,
			WatchRuleset:    true,
		},

		Collaborators: CollaboratorsConfig{
			Functionality: Endpoint{
				BaseURL: "http://localhost:9101",
				ModelID: "protfunc-2026.1",
				Timeout: "45s",
			},
			Essentiality: Endpoint{
				BaseURL: "http://localhost:9102",
				ModelID: "ess-gnn-v3",
				Timeout: "45s",
			},
			Regulatory: Endpoint{
				BaseURL: "http://localhost:9103",
				ModelID: "reg-lstm-v2",
				Timeout: "60s",
			},
			Chromatin: ChromatinEndpoint{
				Endpoint: Endpoint{
					BaseURL: "http://localhost:9104",
					Timeout: "45s",
				},
				Radius: 500,
			},
			Reference: Endpoint{
				BaseURL: "http://localhost:9105",
				Timeout: "30s",
			},
			GuideDesign: Endpoint{
				BaseURL: "http://localhost:9106",
				ModelID: "guidegen-v2",
				Timeout: "45s",
			},
			OffTarget: Endpoint{
				BaseURL: "http://localhost:9107",
				Timeout: "45s",
			},
			Efficacy: Endpoint{
				BaseURL: "http://localhost:9108",
				ModelID: "spacer-ml-v1",
				Timeout: "60s",
			},
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file, then applies environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.Pipeline.GeneConcurrency < 1 {
		cfg.Pipeline.GeneConcurrency = DefaultConfig().Pipeline.GeneConcurrency
	}

	return cfg, nil
}

// Duration parses the endpoint timeout, falling back when unset or
// malformed.
func (e Endpoint) Duration(fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(e.Timeout)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetRequestTimeout returns the per-request server timeout as a duration.
func (c *Config) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.RequestTimeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// GetShutdownGrace returns the graceful-shutdown window as a duration.
func (c *Config) GetShutdownGrace() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownGrace)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}
