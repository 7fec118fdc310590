// Package chat is the boundary to the external chat-completion service.
//
// The refinement loop only needs one capability, Client.Complete. Concrete
// backends talk to a local Ollama daemon, to OpenRouter, or to any
// OpenAI-compatible endpoint; all of them report failures as *ServiceError.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderOllama     = "ollama"
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
)

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 120 * time.Second

// Client returns a completion for prompt from the named model.
type Client interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// ModelLister is implemented by backends that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Checker is implemented by backends that can report whether they answer.
type Checker interface {
	IsAvailable(ctx context.Context) error
}

// Config selects and configures a backend.
type Config struct {
	Provider string        `mapstructure:"provider" json:"provider"`
	BaseURL  string        `mapstructure:"base_url" json:"base_url"`
	APIKey   string        `mapstructure:"api_key" json:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout" json:"timeout"`
}

// New builds the Client for cfg.Provider. An empty provider means Ollama.
func New(cfg Config) (Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOllama:
		return NewOllamaClient(cfg.BaseURL, cfg.Timeout), nil
	case ProviderOpenRouter:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openrouter requires an API key")
		}
		return NewOpenRouterClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout), nil
	case ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown chat provider: %s", cfg.Provider)
	}
}
