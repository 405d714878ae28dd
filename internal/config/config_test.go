package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/revrec/revrec/internal/embedding"
	"github.com/revrec/revrec/internal/profile"
)

// withConfigHome points XDG_CONFIG_HOME at a temp dir and clears overrides.
func withConfigHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	for _, key := range []string{EnvProvider, EnvModel, EnvTable, EnvDataset, EnvCache, EnvOllamaHost, EnvOpenAIKey, EnvOpenAIBaseURL} {
		t.Setenv(key, "")
	}
	return tmpDir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, ConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPath(t *testing.T) {
	tmpDir := withConfigHome(t)

	want := filepath.Join(tmpDir, "revrec", "config.yml")
	if got := Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestLoad_NoFile(t *testing.T) {
	withConfigHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Provider != embedding.ProviderOllama {
		t.Errorf("Provider = %q, want %q", cfg.Provider, embedding.ProviderOllama)
	}
	if cfg.TablePath != profile.DefaultTablePath {
		t.Errorf("TablePath = %q, want %q", cfg.TablePath, profile.DefaultTablePath)
	}
	if cfg.DatasetDir != DefaultDatasetDir {
		t.Errorf("DatasetDir = %q, want %q", cfg.DatasetDir, DefaultDatasetDir)
	}
	if cfg.CachePath != DefaultCachePath {
		t.Errorf("CachePath = %q, want %q", cfg.CachePath, DefaultCachePath)
	}
}

func TestLoad_File(t *testing.T) {
	tmpDir := withConfigHome(t)
	writeConfig(t, tmpDir, `provider: openai
model: text-embedding-3-large
dimensions: 256
table_path: /data/reviewers.gob
requests_per_second: 2.5
timeout_seconds: 30
max_input_chars: 12000
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q", cfg.Provider)
	}
	if cfg.Model != "text-embedding-3-large" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.Dimensions != 256 {
		t.Errorf("Dimensions = %d", cfg.Dimensions)
	}
	if cfg.TablePath != "/data/reviewers.gob" {
		t.Errorf("TablePath = %q", cfg.TablePath)
	}

	s := cfg.EmbeddingSettings()
	if s.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v", s.RequestsPerSecond)
	}
	if s.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", s.Timeout)
	}
	if s.MaxInputChars != 12000 {
		t.Errorf("MaxInputChars = %d", s.MaxInputChars)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := withConfigHome(t)
	writeConfig(t, tmpDir, "provider: [unclosed")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_InvalidProvider(t *testing.T) {
	tmpDir := withConfigHome(t)
	writeConfig(t, tmpDir, "provider: cohere\n")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "invalid provider") {
		t.Errorf("expected invalid provider error, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmpDir := withConfigHome(t)
	writeConfig(t, tmpDir, "provider: ollama\nmodel: from-file\n")

	t.Setenv(EnvModel, "from-env")
	t.Setenv(EnvOllamaHost, "127.0.0.1:11434")
	t.Setenv(EnvTable, "/tmp/t.gob")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Model != "from-env" {
		t.Errorf("Model = %q, want from-env", cfg.Model)
	}
	if cfg.OllamaURL != "http://127.0.0.1:11434" {
		t.Errorf("OllamaURL = %q", cfg.OllamaURL)
	}
	if cfg.TablePath != "/tmp/t.gob" {
		t.Errorf("TablePath = %q", cfg.TablePath)
	}
}

func TestSaveAndReload(t *testing.T) {
	withConfigHome(t)

	cfg := &Config{}
	if err := cfg.Set("provider", "openai"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Set("OPENAI_API_KEY", "sk-test"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	info, err := os.Stat(Path())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config permissions = %o, want 600", perm)
	}

	loaded, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if loaded.Provider != "openai" || loaded.OpenAIAPIKey != "sk-test" {
		t.Errorf("reloaded config = %+v", loaded)
	}
	// Defaults are not written back.
	if loaded.TablePath != "" {
		t.Errorf("TablePath = %q, want empty", loaded.TablePath)
	}
}

func TestGetSet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{"model", "nomic-embed-text", "nomic-embed-text", false},
		{"dimensions", "768", "768", false},
		{"dimensions", "many", "", true},
		{"dimensions", "-1", "", true},
		{"requests_per_second", "0.5", "0.5", false},
		{"requests-per-second", "fast", "", true},
		{"max_input_chars", "8000", "8000", false},
		{"max-input-chars", "-5", "", true},
		{"ollama-url", "gpu-box:11434/", "http://gpu-box:11434", false},
		{"provider", "openai", "openai", false},
		{"provider", "bogus", "", true},
		{"colour", "blue", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := &Config{}
			err := cfg.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestKeysAreGettable(t *testing.T) {
	cfg := &Config{}
	for _, key := range Keys {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) failed: %v", key, err)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	tests := []struct {
		path string
		want string
	}{
		{"~/profiles/reviewers.gob", filepath.Join(home, "profiles/reviewers.gob")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ExpandPath(tt.path); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
