package io

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elecmate/mmgen/internal/model"
)

// ConfigYAMLRepository loads the server configuration from YAML files.
type ConfigYAMLRepository struct {
	fs fs.FS
}

// NewConfigYAMLRepository creates a new YAML config repository.
func NewConfigYAMLRepository(filesystem fs.FS) *ConfigYAMLRepository {
	return &ConfigYAMLRepository{fs: filesystem}
}

// GetServerConfig loads a server configuration from a YAML file and returns a validated domain model.
// Fields missing on the file are left at their zero value so the caller can apply its defaults.
func (r *ConfigYAMLRepository) GetServerConfig(ctx context.Context, path string) (model.ServerConfig, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.ServerConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.ServerConfig{}, ctx.Err()
	}

	var cfg ServerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.ServerConfig{}, fmt.Errorf("parsing YAML: %w", err)
	}

	m, err := cfg.toModel()
	if err != nil {
		return model.ServerConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := m.Validate(); err != nil {
		return model.ServerConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return m, nil
}

// ServerConfig represents the YAML structure for the server configuration.
type ServerConfig struct {
	ListenAddress     string          `yaml:"listen_address"`
	PublicURL         string          `yaml:"public_url"`
	DownloadsDir      string          `yaml:"downloads_dir"`
	Workers           int             `yaml:"workers"`
	PollInterval      string          `yaml:"poll_interval"`
	GenerationTimeout string          `yaml:"generation_timeout"`
	Generator         GeneratorConfig `yaml:"generator"`
}

// GeneratorConfig represents the YAML structure for the generator configuration.
type GeneratorConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

func (c ServerConfig) toModel() (model.ServerConfig, error) {
	poll, err := parseOptionalDuration(c.PollInterval)
	if err != nil {
		return model.ServerConfig{}, fmt.Errorf("poll_interval: %w", err)
	}
	timeout, err := parseOptionalDuration(c.GenerationTimeout)
	if err != nil {
		return model.ServerConfig{}, fmt.Errorf("generation_timeout: %w", err)
	}

	return model.ServerConfig{
		ListenAddress:     c.ListenAddress,
		PublicURL:         c.PublicURL,
		DownloadsDir:      c.DownloadsDir,
		Workers:           c.Workers,
		PollInterval:      poll,
		GenerationTimeout: timeout,
		Generator: model.GeneratorConfig{
			Provider:  model.GeneratorProvider(c.Generator.Provider),
			Model:     c.Generator.Model,
			BaseURL:   c.Generator.BaseURL,
			APIKeyEnv: c.Generator.APIKeyEnv,
		},
	}, nil
}

func parseOptionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", err, model.ErrNotValid)
	}
	return d, nil
}
