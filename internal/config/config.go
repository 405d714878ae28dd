// Package config handles revrec configuration: a YAML file under the user's
// config directory, overridden by environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/revrec/revrec/internal/embedding"
	"github.com/revrec/revrec/internal/profile"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "revrec"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"

	// DefaultDatasetDir holds one sub-directory of PDFs per candidate author.
	DefaultDatasetDir = "dataset"
	// DefaultCachePath is the SQLite build cache.
	DefaultCachePath = "profiles/cache.db"
)

// Environment variables that override the config file.
const (
	EnvProvider      = "REVREC_PROVIDER"
	EnvModel         = "REVREC_MODEL"
	EnvTable         = "REVREC_TABLE"
	EnvDataset       = "REVREC_DATASET"
	EnvCache         = "REVREC_CACHE"
	EnvOllamaHost    = "OLLAMA_HOST"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
)

// Config represents configuration stored in ~/.config/revrec/config.yml.
type Config struct {
	Provider          string  `yaml:"provider,omitempty"`
	Model             string  `yaml:"model,omitempty"`
	Dimensions        int     `yaml:"dimensions,omitempty"`
	OllamaURL         string  `yaml:"ollama_url,omitempty"`
	OpenAIBaseURL     string  `yaml:"openai_base_url,omitempty"`
	OpenAIAPIKey      string  `yaml:"openai_api_key,omitempty"`
	TablePath         string  `yaml:"table_path,omitempty"`
	DatasetDir        string  `yaml:"dataset_dir,omitempty"`
	CachePath         string  `yaml:"cache_path,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
	TimeoutSeconds    int     `yaml:"timeout_seconds,omitempty"`
	MaxInputChars     int     `yaml:"max_input_chars,omitempty"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"provider", "model", "dimensions", "ollama-url", "openai-base-url", "openai-api-key",
	"table-path", "dataset-dir", "cache-path", "requests-per-second", "timeout-seconds", "max-input-chars",
}

// Path returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/revrec/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// LoadFile reads the config file only.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadFile() (*Config, error) {
	path := Path()
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config file, applies environment overrides and fills defaults.
func Load() (*Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv overrides fields from non-empty environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Provider, EnvProvider)
	set(&c.Model, EnvModel)
	set(&c.TablePath, EnvTable)
	set(&c.DatasetDir, EnvDataset)
	set(&c.CachePath, EnvCache)
	set(&c.OpenAIAPIKey, EnvOpenAIKey)
	set(&c.OpenAIBaseURL, EnvOpenAIBaseURL)
	if v := getenv(EnvOllamaHost); v != "" {
		c.OllamaURL = normalizeHost(v)
	}
}

func (c *Config) applyDefaults() {
	if c.Provider == "" {
		c.Provider = embedding.ProviderOllama
	}
	if c.TablePath == "" {
		c.TablePath = profile.DefaultTablePath
	}
	if c.DatasetDir == "" {
		c.DatasetDir = DefaultDatasetDir
	}
	if c.CachePath == "" {
		c.CachePath = DefaultCachePath
	}
	c.TablePath = ExpandPath(c.TablePath)
	c.DatasetDir = ExpandPath(c.DatasetDir)
	c.CachePath = ExpandPath(c.CachePath)
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Provider {
	case "", embedding.ProviderOllama, embedding.ProviderOpenAI:
	default:
		return fmt.Errorf("invalid provider: %s (valid: %s, %s)", c.Provider, embedding.ProviderOllama, embedding.ProviderOpenAI)
	}
	if c.Dimensions < 0 {
		return fmt.Errorf("dimensions must not be negative: %d", c.Dimensions)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative: %v", c.RequestsPerSecond)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative: %d", c.TimeoutSeconds)
	}
	if c.MaxInputChars < 0 {
		return fmt.Errorf("max_input_chars must not be negative: %d", c.MaxInputChars)
	}
	return nil
}

// EmbeddingSettings returns the provider settings for this config.
func (c *Config) EmbeddingSettings() embedding.Settings {
	return embedding.Settings{
		Provider:          c.Provider,
		Model:             c.Model,
		Dimensions:        c.Dimensions,
		OllamaURL:         c.OllamaURL,
		OpenAIBaseURL:     c.OpenAIBaseURL,
		OpenAIAPIKey:      c.OpenAIAPIKey,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.RequestsPerSecond,
		MaxInputChars:     c.MaxInputChars,
	}
}

// Save writes the config file, creating its directory if needed.
func (c *Config) Save() error {
	path := Path()
	if path == "" {
		return fmt.Errorf("cannot determine config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	// The file may hold an API key.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// NormalizeKey converts key formats (table-path, table_path, TABLE_PATH) to kebab case.
func NormalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "_", "-")
}

// Get returns the string form of a config value.
func (c *Config) Get(key string) (string, error) {
	switch NormalizeKey(key) {
	case "provider":
		return c.Provider, nil
	case "model":
		return c.Model, nil
	case "dimensions":
		return formatInt(c.Dimensions), nil
	case "ollama-url":
		return c.OllamaURL, nil
	case "openai-base-url":
		return c.OpenAIBaseURL, nil
	case "openai-api-key":
		return c.OpenAIAPIKey, nil
	case "table-path":
		return c.TablePath, nil
	case "dataset-dir":
		return c.DatasetDir, nil
	case "cache-path":
		return c.CachePath, nil
	case "requests-per-second":
		if c.RequestsPerSecond == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.RequestsPerSecond, 'g', -1, 64), nil
	case "timeout-seconds":
		return formatInt(c.TimeoutSeconds), nil
	case "max-input-chars":
		return formatInt(c.MaxInputChars), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// Set parses and assigns a config value, then validates the result.
func (c *Config) Set(key, value string) error {
	switch NormalizeKey(key) {
	case "provider":
		c.Provider = value
	case "model":
		c.Model = value
	case "dimensions":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("dimensions must be an integer: %w", err)
		}
		c.Dimensions = n
	case "ollama-url":
		c.OllamaURL = normalizeHost(value)
	case "openai-base-url":
		c.OpenAIBaseURL = value
	case "openai-api-key":
		c.OpenAIAPIKey = value
	case "table-path":
		c.TablePath = value
	case "dataset-dir":
		c.DatasetDir = value
	case "cache-path":
		c.CachePath = value
	case "requests-per-second":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("requests-per-second must be a number: %w", err)
		}
		c.RequestsPerSecond = f
	case "timeout-seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeout-seconds must be an integer: %w", err)
		}
		c.TimeoutSeconds = n
	case "max-input-chars":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max-input-chars must be an integer: %w", err)
		}
		c.MaxInputChars = n
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return c.Validate()
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}

// normalizeHost adds an http scheme to bare host:port values such as
// OLLAMA_HOST=127.0.0.1:11434.
func normalizeHost(host string) string {
	if host == "" || strings.Contains(host, "://") {
		return strings.TrimRight(host, "/")
	}
	return "http://" + strings.TrimRight(host, "/")
}

func formatInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
