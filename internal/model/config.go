package model

import (
	"fmt"
	"time"
)

// GeneratorProvider selects the method generator backend.
type GeneratorProvider string

const (
	GeneratorProviderKnowledge GeneratorProvider = "knowledge"
	GeneratorProviderOpenAI    GeneratorProvider = "openai"
)

// ServerConfig is the configuration of the job service.
type ServerConfig struct {
	ListenAddress     string
	PublicURL         string
	DownloadsDir      string
	Workers           int
	PollInterval      time.Duration
	GenerationTimeout time.Duration
	Generator         GeneratorConfig
}

// GeneratorConfig configures the method generator.
type GeneratorConfig struct {
	Provider  GeneratorProvider
	Model     string
	BaseURL   string
	APIKeyEnv string
}

// Validate validates the server configuration.
func (c ServerConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers can't be negative: %w", ErrNotValid)
	}
	if c.PollInterval < 0 || c.GenerationTimeout < 0 {
		return fmt.Errorf("durations can't be negative: %w", ErrNotValid)
	}
	switch c.Generator.Provider {
	case "", GeneratorProviderKnowledge:
	case GeneratorProviderOpenAI:
		if c.Generator.Model == "" {
			return fmt.Errorf("openai generator requires a model: %w", ErrNotValid)
		}
	default:
		return fmt.Errorf("unknown generator provider %q: %w", c.Generator.Provider, ErrNotValid)
	}
	return nil
}
