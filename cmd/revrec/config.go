package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/revrec/revrec/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set values in the global config file
($XDG_CONFIG_HOME/revrec/config.yml).

Usage:
  revrec config                          # Show all config
  revrec config model                    # Get specific value
  revrec config model nomic-embed-text   # Set value

Keys:
  provider             Embedding provider (ollama, openai)
  model                Embedding model name
  dimensions           Expected embedding dimensions (0 to accept any)
  ollama-url           Ollama server URL
  openai-base-url      OpenAI-compatible API base URL
  openai-api-key       OpenAI API key
  table-path           Reviewer table file
  dataset-dir          Dataset directory (one folder of PDFs per author)
  cache-path           Build cache database
  requests-per-second  Embedding request rate limit (0 for none)
  timeout-seconds      Embedding request timeout
  max-input-chars      Truncate OpenAI inputs to this many characters

Environment variables REVREC_PROVIDER, REVREC_MODEL, REVREC_TABLE,
REVREC_DATASET, REVREC_CACHE, OLLAMA_HOST, OPENAI_API_KEY and
OPENAI_BASE_URL override the file. A .env file in the working directory
is loaded first.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	// No args: show the effective config
	if len(args) == 0 {
		cfg := mustLoadConfig()
		values := configValues(cfg)
		if humanOutput {
			for _, key := range config.Keys {
				fmt.Printf("%-20s %s\n", key+":", values[key])
			}
		} else {
			outputJSON(values)
		}
		return nil
	}

	key := config.NormalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		cfg := mustLoadConfig()
		value, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if key == "openai-api-key" {
			value = maskSecret(value)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): value})
		}
		return nil
	}

	// Two args: set value in the file only, so env overrides are not persisted
	cfg, err := config.LoadFile()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	value := args[1]
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := cfg.Save(); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	stored, _ := cfg.Get(key)
	if key == "openai-api-key" {
		stored = maskSecret(stored)
	}
	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, stored)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    key,
			Value:  stored,
		})
	}
	return nil
}

// configValues returns every key of cfg with secrets masked.
func configValues(cfg *config.Config) map[string]string {
	values := make(map[string]string, len(config.Keys))
	for _, key := range config.Keys {
		v, _ := cfg.Get(key)
		if key == "openai-api-key" {
			v = maskSecret(v)
		}
		values[key] = v
	}
	return values
}

// maskSecret keeps the last four characters of a secret.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
