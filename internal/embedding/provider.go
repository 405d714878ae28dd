package embedding

import (
	"context"
	"fmt"
	"time"
)

// Provider names accepted by NewProvider.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Provider generates embeddings from text.
type Provider interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) (Embedding, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}

// Checker is implemented by providers that can verify their backend is reachable.
type Checker interface {
	IsAvailable(ctx context.Context) error
}

// Settings selects and configures a provider.
type Settings struct {
	Provider          string
	Model             string
	Dimensions        int
	OllamaURL         string
	OpenAIBaseURL     string
	OpenAIAPIKey      string
	Timeout           time.Duration
	RequestsPerSecond float64
	// MaxInputChars caps OpenAI inputs; Ollama truncates server-side.
	MaxInputChars int
}

// NewProvider builds the provider named in s, wrapped in a rate limiter when
// s.RequestsPerSecond is positive.
func NewProvider(s Settings) (Provider, error) {
	var p Provider

	switch s.Provider {
	case "", ProviderOllama:
		opts := []OllamaOption{}
		if s.OllamaURL != "" {
			opts = append(opts, WithBaseURL(s.OllamaURL))
		}
		if s.Model != "" {
			opts = append(opts, WithModel(s.Model))
		}
		if s.Dimensions > 0 {
			opts = append(opts, WithDimensions(s.Dimensions))
		}
		if s.Timeout > 0 {
			opts = append(opts, WithTimeout(s.Timeout))
		}
		p = NewOllamaProvider(opts...)

	case ProviderOpenAI:
		if s.OpenAIAPIKey == "" && s.OpenAIBaseURL == "" {
			return nil, fmt.Errorf("openai provider requires an API key or a base URL")
		}
		p = NewOpenAIProvider(OpenAIConfig{
			APIKey:        s.OpenAIAPIKey,
			BaseURL:       s.OpenAIBaseURL,
			Model:         s.Model,
			Dimensions:    s.Dimensions,
			MaxInputChars: s.MaxInputChars,
			Timeout:       s.Timeout,
		})

	default:
		return nil, fmt.Errorf("unknown embedding provider %q (valid: %s, %s)", s.Provider, ProviderOllama, ProviderOpenAI)
	}

	if s.RequestsPerSecond > 0 {
		p = NewRateLimited(p, s.RequestsPerSecond)
	}
	return p, nil
}
