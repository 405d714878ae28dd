package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/revrec/revrec/internal/profile"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

// InfoResult is the response for the info command.
type InfoResult struct {
	TablePath      string             `json:"table_path"`
	TableSizeBytes int64              `json:"table_size_bytes"`
	Model          string             `json:"model"`
	Dimensions     int                `json:"dimensions"`
	CreatedAt      string             `json:"created_at"`
	DatasetDir     string             `json:"dataset_dir,omitempty"`
	Authors        int                `json:"authors"`
	Summary        profile.Summary    `json:"summary"`
	Build          profile.BuildStats `json:"build"`
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show reviewer table metadata",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	table := mustLoadTable(cfg.TablePath)

	size, err := profile.Size(cfg.TablePath)
	if err != nil {
		size = 0 // Non-fatal
	}

	summary := table.Summarize()
	result := InfoResult{
		TablePath:      cfg.TablePath,
		TableSizeBytes: size,
		Model:          table.ModelName,
		Dimensions:     table.Dimensions,
		CreatedAt:      table.CreatedAt.Format(time.RFC3339),
		DatasetDir:     table.DatasetDir,
		Authors:        len(summary.PapersByAuthor),
		Summary:        summary,
		Build:          table.Stats,
	}
	result.Build.TableSizeBytes = size

	if !humanOutput {
		outputJSON(result)
		return nil
	}

	fmt.Printf("Table: %s (%s)\n", result.TablePath, formatBytes(result.TableSizeBytes))
	fmt.Printf("Model: %s (%d dimensions)\n", result.Model, result.Dimensions)
	fmt.Printf("Built: %s from %s in %s\n", result.CreatedAt, result.DatasetDir,
		formatDuration(table.Stats.Duration))
	fmt.Printf("Last build: %d papers indexed, %d cache hits, %d without text\n",
		table.Stats.PapersIndexed, table.Stats.CacheHits, table.Stats.PapersNoText)
	fmt.Printf("Papers: %d (%d with abstract/introduction, %d with full text, %d without text)\n",
		summary.Records, summary.WithBest, summary.WithFull, summary.Empty)
	fmt.Printf("Authors: %d\n", result.Authors)

	authors := make([]string, 0, len(summary.PapersByAuthor))
	for a := range summary.PapersByAuthor {
		authors = append(authors, a)
	}
	sort.Strings(authors)
	for _, a := range authors {
		fmt.Printf("  %-30s %d\n", a, summary.PapersByAuthor[a])
	}
	return nil
}
