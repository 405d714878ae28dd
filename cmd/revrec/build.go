package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/revrec/revrec/internal/config"
	"github.com/revrec/revrec/internal/profile"
	"github.com/revrec/revrec/internal/storage"
)

var (
	buildDataset    string
	buildOut        string
	buildNoCache    bool
	buildNoProgress bool
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildDataset, "dataset", "", "Dataset directory with one folder of PDFs per author (default from config)")
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "Output table path (default from config)")
	buildCmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "Re-extract and re-embed every paper")
	buildCmd.Flags().BoolVar(&buildNoProgress, "no-progress", false, "Suppress progress output")
}

// BuildResult is the response for the build command.
type BuildResult struct {
	Status          string  `json:"status"`
	PapersIndexed   int     `json:"papers_indexed"`
	PapersWithBest  int     `json:"papers_with_best_text"`
	PapersNoText    int     `json:"papers_without_text"`
	CacheHits       int     `json:"cache_hits"`
	Authors         int     `json:"authors"`
	DurationSeconds float64 `json:"duration_seconds"`
	Model           string  `json:"model"`
	Dimensions      int     `json:"dimensions"`
	TablePath       string  `json:"table_path"`
	TableSizeBytes  int64   `json:"table_size_bytes"`
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the reviewer table from the dataset",
	Long: `Build or rebuild the reviewer table.

The dataset is a directory holding one sub-directory per candidate author,
each containing that author's papers as PDF files:

  dataset/
    Ada Lovelace/
      notes.pdf
    Alan Turing/
      computable.pdf

Every paper is embedded twice (abstract and introduction, then full text)
with the configured provider. Embeddings are cached by file content, so
rebuilding after adding papers only embeds the new ones.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := mustLoadConfig()
	datasetDir := cfg.DatasetDir
	if buildDataset != "" {
		datasetDir = config.ExpandPath(buildDataset)
	}
	tablePath := cfg.TablePath
	if buildOut != "" {
		tablePath = config.ExpandPath(buildOut)
	}

	provider := mustProvider(ctx, cfg)

	var cache *storage.DB
	if !buildNoCache {
		cache = mustOpenCache(cfg.CachePath)
		defer cache.Close()
	}

	builder := profile.NewBuilder(provider, cache)
	builder.SetLogger(logger)

	showProgress := humanOutput && !buildNoProgress
	if showProgress {
		builder.SetProgressReporter(profile.ProgressFunc(printProgress))
		fmt.Fprintf(os.Stderr, "Building reviewer table from %s...\n", datasetDir)
	}

	table, stats, err := builder.Build(ctx, datasetDir)
	if showProgress {
		clearProgress()
	}
	if err != nil {
		if errors.Is(err, profile.ErrNoPapers) || errors.Is(err, os.ErrNotExist) {
			exitWithError(ExitConfigError, "%v\n\nExpected PDFs at %s", err, filepath.Join(datasetDir, "<author>", "*.pdf"))
		}
		exitWithError(ExitError, "building table: %v", err)
	}

	if err := table.Save(tablePath); err != nil {
		exitWithError(ExitError, "saving table: %v", err)
	}

	size, err := profile.Size(tablePath)
	if err != nil {
		size = 0 // Non-fatal
	}
	stats.TableSizeBytes = size

	logger.Info("table built",
		zap.String("path", tablePath),
		zap.Int("papers", stats.PapersIndexed),
		zap.Int("cache_hits", stats.CacheHits),
		zap.Duration("duration", stats.Duration))

	if humanOutput {
		fmt.Printf("\nBuild complete:\n")
		fmt.Printf("  Papers indexed: %d (%d authors)\n", stats.PapersIndexed, stats.Authors)
		fmt.Printf("  With abstract/introduction: %d\n", stats.PapersWithBest)
		fmt.Printf("  Without any text: %d\n", stats.PapersNoText)
		fmt.Printf("  Cache hits: %d\n", stats.CacheHits)
		fmt.Printf("  Time elapsed: %s\n", formatDuration(stats.Duration))
		fmt.Printf("  Table: %s (%s)\n", tablePath, formatBytes(stats.TableSizeBytes))
		fmt.Printf("  Model: %s (%d dimensions)\n", table.ModelName, table.Dimensions)
	} else {
		outputJSON(BuildResult{
			Status:          "complete",
			PapersIndexed:   stats.PapersIndexed,
			PapersWithBest:  stats.PapersWithBest,
			PapersNoText:    stats.PapersNoText,
			CacheHits:       stats.CacheHits,
			Authors:         stats.Authors,
			DurationSeconds: stats.Duration.Seconds(),
			Model:           table.ModelName,
			Dimensions:      table.Dimensions,
			TablePath:       tablePath,
			TableSizeBytes:  stats.TableSizeBytes,
		})
	}

	return nil
}

// mustOpenCache opens the build cache, creating its directory if needed.
func mustOpenCache(path string) *storage.DB {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	cache, err := storage.OpenDB(path)
	if err != nil {
		exitWithError(ExitError, "opening cache: %v", err)
	}
	return cache
}
