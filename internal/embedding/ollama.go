package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultOllamaURL is the default Ollama API endpoint.
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultModel is the default embedding model, the Ollama build of all-MiniLM-L6-v2.
	DefaultModel = "all-minilm:l6-v2"

	// DefaultDimensions is the output size of DefaultModel.
	DefaultDimensions = 384

	// DefaultTimeout bounds one embedding request. A full paper is a much
	// larger input than a search query.
	DefaultTimeout = 60 * time.Second

	apiPathTags  = "/api/tags"
	apiPathEmbed = "/api/embed"

	// maxErrorBody caps how much of an error response is quoted back.
	maxErrorBody = 512
)

// OllamaProvider embeds paper texts with a local or remote Ollama server.
// Inputs longer than the model's context are truncated by the server.
type OllamaProvider struct {
	baseURL    string
	model      string
	dimensions int
	client     *http.Client
}

// OllamaOption configures an OllamaProvider.
type OllamaOption func(*OllamaProvider)

// WithBaseURL sets the Ollama API base URL.
func WithBaseURL(url string) OllamaOption {
	return func(p *OllamaProvider) {
		p.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel sets the embedding model.
func WithModel(model string) OllamaOption {
	return func(p *OllamaProvider) {
		p.model = model
	}
}

// WithDimensions sets the expected vector dimensions. 0 accepts any size.
func WithDimensions(dims int) OllamaOption {
	return func(p *OllamaProvider) {
		p.dimensions = dims
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) OllamaOption {
	return func(p *OllamaProvider) {
		p.client.Timeout = timeout
	}
}

// NewOllamaProvider creates an Ollama embedding provider.
func NewOllamaProvider(opts ...OllamaOption) *OllamaProvider {
	p := &OllamaProvider{
		baseURL:    DefaultOllamaURL,
		model:      DefaultModel,
		dimensions: DefaultDimensions,
		client:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Embed embeds text, letting the server truncate it to the model context.
func (p *OllamaProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	req := ollamaEmbedRequest{
		Model:    p.model,
		Input:    text,
		Truncate: true,
	}

	var resp ollamaEmbedResponse
	if err := p.call(ctx, http.MethodPost, apiPathEmbed, req, &resp); err != nil {
		return Embedding{}, fmt.Errorf("embedding with %s: %w", p.model, err)
	}
	if len(resp.Embeddings) == 0 {
		return Embedding{}, fmt.Errorf("embedding with %s: empty response", p.model)
	}

	vec := resp.Embeddings[0]
	if err := checkDimensions(vec, p.dimensions); err != nil {
		return Embedding{}, err
	}
	return Embedding{Vector: vec}, nil
}

// ModelName returns the name of the embedding model.
func (p *OllamaProvider) ModelName() string {
	return p.model
}

// Dimensions returns the expected vector dimensions.
func (p *OllamaProvider) Dimensions() int {
	return p.dimensions
}

// IsAvailable checks if Ollama is running and accessible.
func (p *OllamaProvider) IsAvailable(ctx context.Context) error {
	if _, err := p.models(ctx); err != nil {
		return fmt.Errorf("ollama is not running: %w", err)
	}
	return nil
}

// HasModel checks if the configured model has been pulled. A model named
// without a tag matches its ":latest" build.
func (p *OllamaProvider) HasModel(ctx context.Context) (bool, error) {
	models, err := p.models(ctx)
	if err != nil {
		return false, fmt.Errorf("checking models: %w", err)
	}

	want := p.model
	if !strings.Contains(want, ":") {
		want += ":latest"
	}
	for _, m := range models {
		if m.Name == p.model || m.Name == want {
			return true, nil
		}
	}
	return false, nil
}

func (p *OllamaProvider) models(ctx context.Context) ([]ollamaModel, error) {
	var resp ollamaTagsResponse
	if err := p.call(ctx, http.MethodGet, apiPathTags, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

// call sends in (if non-nil) as JSON and decodes a 200 response into out.
func (p *OllamaProvider) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, errorMessage(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// errorMessage extracts Ollama's {"error": "..."} message, falling back to
// the start of the raw body.
func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return fmt.Sprintf("(failed to read response body: %v)", err)
	}

	var e ollamaError
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(data))
}

type ollamaEmbedRequest struct {
	Model    string `json:"model"`
	Input    string `json:"input"`
	Truncate bool   `json:"truncate"`
}

type ollamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

type ollamaError struct {
	Error string `json:"error"`
}

type ollamaTagsResponse struct {
	Models []ollamaModel `json:"models"`
}

type ollamaModel struct {
	Name string `json:"name"`
}
