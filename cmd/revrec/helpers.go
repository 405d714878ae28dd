package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/revrec/revrec/internal/config"
	"github.com/revrec/revrec/internal/embedding"
	"github.com/revrec/revrec/internal/profile"
)

// mustLoadConfig loads the global config or exits with ExitConfigError.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v\n\nFix it with 'revrec config <key> <value>' or edit %s", err, config.Path())
	}
	logger.Debug("config loaded",
		zap.String("path", config.Path()),
		zap.String("provider", cfg.Provider),
		zap.String("table", cfg.TablePath))
	return cfg
}

// mustProvider builds the configured embedding provider and checks that it
// is reachable. Ollama providers are also checked for the model.
func mustProvider(ctx context.Context, cfg *config.Config) embedding.Provider {
	provider, err := embedding.NewProvider(cfg.EmbeddingSettings())
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if checker, ok := provider.(embedding.Checker); ok {
		if err := checker.IsAvailable(ctx); err != nil {
			exitWithError(ExitProviderUnavailable, "%s provider is not available: %v%s", cfg.Provider, err, providerHint(cfg.Provider))
		}
	}

	inner := provider
	if rl, ok := provider.(*embedding.RateLimited); ok {
		inner = rl.Unwrap()
	}
	if ollama, ok := inner.(*embedding.OllamaProvider); ok {
		hasModel, err := ollama.HasModel(ctx)
		if err != nil {
			exitWithError(ExitError, "checking model availability: %v", err)
		}
		if !hasModel {
			exitWithError(ExitModelNotFound, "Embedding model '%s' not found\n\nRun 'ollama pull %s' to download it.", ollama.ModelName(), ollama.ModelName())
		}
	}

	logger.Debug("embedding provider ready",
		zap.String("provider", cfg.Provider),
		zap.String("model", provider.ModelName()))
	return provider
}

func providerHint(provider string) string {
	if provider == embedding.ProviderOpenAI {
		return "\n\nCheck OPENAI_API_KEY and OPENAI_BASE_URL."
	}
	return "\n\nStart Ollama with 'ollama serve' or install from https://ollama.ai"
}

// mustLoadTable loads the reviewer table or exits.
func mustLoadTable(path string) *profile.Table {
	table, err := profile.Load(path)
	if err != nil {
		if errors.Is(err, profile.ErrTableNotFound) {
			exitWithError(ExitConfigError, "Reviewer table not found at %s\n\nRun 'revrec build' to create it.", path)
		}
		if errors.Is(err, profile.ErrUnsupportedVersion) {
			exitWithError(ExitTableStale, "%v", err)
		}
		exitWithError(ExitError, "loading table: %v", err)
	}
	logger.Debug("table loaded",
		zap.String("path", path),
		zap.Int("records", table.Len()),
		zap.String("model", table.ModelName))
	return table
}

// checkTableModel returns an error when the table was embedded with a
// different model than provider, since their vectors are not comparable.
func checkTableModel(table *profile.Table, provider embedding.Provider) error {
	if table.ModelName != provider.ModelName() {
		return fmt.Errorf("table was built with model %q but the provider uses %q\n\nRebuild with 'revrec build' or run 'revrec config model %s'",
			table.ModelName, provider.ModelName(), table.ModelName)
	}
	return nil
}
