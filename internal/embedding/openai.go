package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultOpenAIModel is used when no model is configured for the OpenAI provider.
	DefaultOpenAIModel = "text-embedding-3-small"

	// DefaultOpenAIMaxInputChars keeps a single input under the 8191-token
	// limit of the text-embedding-3 models even for token-dense PDF text.
	DefaultOpenAIMaxInputChars = 16000
)

// OpenAIConfig holds the settings for an OpenAI-compatible embeddings endpoint.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // empty means api.openai.com
	Model      string
	Dimensions int // 0 accepts whatever the model returns
	// MaxInputChars truncates longer inputs; 0 means DefaultOpenAIMaxInputChars.
	MaxInputChars int
	// Timeout bounds one request; 0 means DefaultTimeout.
	Timeout time.Duration
}

// OpenAIProvider generates embeddings using an OpenAI-compatible API.
type OpenAIProvider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	maxChars   int
}

// NewOpenAIProvider creates an OpenAI-compatible embedding provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	maxChars := cfg.MaxInputChars
	if maxChars <= 0 {
		maxChars = DefaultOpenAIMaxInputChars
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(model),
		dimensions: cfg.Dimensions,
		maxChars:   maxChars,
	}
}

// Embed generates an embedding for the given text. Text beyond the
// provider's character limit is dropped, since the API rejects rather
// than truncates oversized inputs.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{TruncateRunes(text, p.maxChars)},
		Model:          p.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if p.dimensions > 0 {
		req.Dimensions = p.dimensions
	}

	resp, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return Embedding{}, parseAPIError(err)
	}
	if len(resp.Data) == 0 {
		return Embedding{}, fmt.Errorf("empty embedding response from %s", p.model)
	}

	vec := resp.Data[0].Embedding
	if err := checkDimensions(vec, p.dimensions); err != nil {
		return Embedding{}, err
	}
	return Embedding{Vector: vec}, nil
}

// ModelName returns the name of the embedding model.
func (p *OpenAIProvider) ModelName() string {
	return string(p.model)
}

// Dimensions returns the requested vector dimensions, or 0 if unconstrained.
func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}

// IsAvailable verifies the endpoint answers a model listing.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("embedding API is not reachable: %w", parseAPIError(err))
	}
	return nil
}

// parseAPIError extracts a readable message from go-openai errors.
func parseAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("embedding API error %d: %s", reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	return fmt.Errorf("embedding request failed: %w", err)
}
