package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/revrec/revrec/internal/pdf"
)

var extractFull bool

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(&extractFull, "full", false, "Print complete texts instead of a preview")
}

// ExtractResult is the response for the extract command.
type ExtractResult struct {
	File      string `json:"file"`
	DOI       string `json:"doi,omitempty"`
	BestWords int    `json:"best_words"`
	FullWords int    `json:"full_words"`
	Best      string `json:"best_text"`
	Full      string `json:"full_text"`
	Warning   string `json:"warning,omitempty"`
}

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf>",
	Short: "Show the texts that would be embedded for a PDF",
	Long: `Show the abstract-and-introduction text and the full text (without
references) extracted from a PDF. Useful for checking why a manuscript
ranks the way it does.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]

	texts, err := pdf.ExtractFile(path)
	if err != nil {
		if errors.Is(err, pdf.ErrNoText) {
			exitWithError(ExitNoText, "No text could be extracted from %s", path)
		}
		exitWithError(ExitError, "reading PDF: %v", err)
	}

	result := newExtractResult(path, texts, extractFull)

	if humanOutput {
		if result.DOI != "" {
			fmt.Printf("DOI: %s\n\n", result.DOI)
		}
		fmt.Printf("Abstract + introduction (%d words):\n", result.BestWords)
		if result.Warning != "" {
			fmt.Printf("  (%s)\n", result.Warning)
		} else {
			fmt.Printf("  %s\n", result.Best)
		}
		fmt.Printf("\nFull text (%d words):\n  %s\n", result.FullWords, result.Full)
		return nil
	}

	outputJSON(result)
	return nil
}

// newExtractResult summarizes texts, shortening them unless full is set.
func newExtractResult(path string, texts pdf.Texts, full bool) ExtractResult {
	result := ExtractResult{
		File:      path,
		DOI:       texts.DOI,
		BestWords: len(strings.Fields(texts.Best)),
		FullWords: len(strings.Fields(texts.Full)),
		Best:      texts.Best,
		Full:      texts.Full,
	}
	if !texts.HasBest() {
		result.Warning = warnNoBestText
	}
	if !full {
		result.Best = truncateString(collapseWhitespace(result.Best), PreviewMaxLen)
		result.Full = truncateString(collapseWhitespace(result.Full), PreviewMaxLen)
	}
	return result
}
