package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/revrec/revrec/internal/author"
	"github.com/revrec/revrec/internal/embedding"
	"github.com/revrec/revrec/internal/pdf"
	"github.com/revrec/revrec/internal/profile"
	"github.com/revrec/revrec/internal/rank"
)

// Result grouping for ranking output.
const (
	ByPaper  = "paper"
	ByAuthor = "author"
)

// warnNoBestText is reported when a manuscript has no detectable abstract or introduction.
const warnNoBestText = "no abstract or introduction found; ranking on full text only"

var (
	rankTopK    int
	rankBy      string
	rankMethod  string
	rankExclude []string
)

func init() {
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(queryCmd)

	for _, cmd := range []*cobra.Command{rankCmd, queryCmd} {
		cmd.Flags().IntVarP(&rankTopK, "top-k", "k", DefaultTopK, "Number of results to show (0 for all)")
		cmd.Flags().StringVar(&rankBy, "by", ByPaper, "Group results by paper or author")
		cmd.Flags().StringVar(&rankMethod, "method", string(rank.MethodMax), "Author ordering when --by author (max, mean)")
		cmd.Flags().StringArrayVarP(&rankExclude, "exclude", "x", nil, "Candidate authors to leave out, e.g. the manuscript's own authors (repeatable)")
	}
}

// RankResponse is the response for the rank and query commands.
type RankResponse struct {
	Query    string              `json:"query"`
	Model    string              `json:"model"`
	By       string              `json:"by"`
	Method   string              `json:"method,omitempty"`
	Warning  string              `json:"warning,omitempty"`
	Excluded int                 `json:"excluded,omitempty"`
	Total    int                 `json:"total"`
	Papers   []rank.Result       `json:"papers,omitempty"`
	Authors  []rank.AuthorResult `json:"authors,omitempty"`
}

var rankCmd = &cobra.Command{
	Use:   "rank <manuscript.pdf>",
	Short: "Rank candidate reviewers for a manuscript",
	Long: `Rank candidate reviewers for a manuscript PDF.

The manuscript's abstract and introduction are compared with the same
section of every paper in the table, and its full text with their full
text. Each paper scores the larger of the two similarities.

If no abstract or introduction can be found, only the full-text search
contributes and a warning is reported.

Requires the reviewer table to be built first with 'revrec build'.`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Rank candidate reviewers for free text",
	Long: `Rank candidate reviewers for a piece of text such as an abstract.

The text is embedded once and used for both the best-text and the
full-text search.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	method := mustRankOptions()
	path := args[0]

	texts, err := pdf.ExtractFile(path)
	if err != nil {
		if errors.Is(err, pdf.ErrNoText) {
			exitWithError(ExitNoText, "No text could be extracted from %s\n\nThe PDF may be scanned images or encrypted.", path)
		}
		exitWithError(ExitError, "reading manuscript: %v", err)
	}

	var warning string
	if !texts.HasBest() {
		warning = warnNoBestText
		logger.Warn(warning, zap.String("file", path))
	}

	cfg := mustLoadConfig()
	table := mustLoadTable(cfg.TablePath)
	provider := mustProvider(ctx, cfg)
	if err := checkTableModel(table, provider); err != nil {
		exitWithError(ExitTableStale, "%v", err)
	}

	var q rank.Query
	if q.Best, err = embedding.EmbedText(ctx, provider, texts.Best); err != nil {
		exitWithError(ExitError, "embedding abstract and introduction: %v", err)
	}
	if q.Full, err = embedding.EmbedText(ctx, provider, texts.Full); err != nil {
		exitWithError(ExitError, "embedding full text: %v", err)
	}

	displayRanking(q, table.Records, table.Dimensions, RankResponse{
		Query:   path,
		Model:   table.ModelName,
		Warning: warning,
	}, method)
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	method := mustRankOptions()
	text := strings.TrimSpace(args[0])

	if text == "" {
		exitWithError(ExitError, "Query text cannot be empty")
	}

	cfg := mustLoadConfig()
	table := mustLoadTable(cfg.TablePath)
	provider := mustProvider(ctx, cfg)
	if err := checkTableModel(table, provider); err != nil {
		exitWithError(ExitTableStale, "%v", err)
	}

	vec, err := embedding.EmbedText(ctx, provider, text)
	if err != nil {
		exitWithError(ExitError, "embedding query: %v", err)
	}

	displayRanking(rank.Query{Best: vec, Full: vec}, table.Records, table.Dimensions, RankResponse{
		Query: text,
		Model: table.ModelName,
	}, method)
	return nil
}

// mustRankOptions validates --by and --method.
func mustRankOptions() rank.Method {
	if rankBy != ByPaper && rankBy != ByAuthor {
		exitWithError(ExitError, "invalid --by value %q (valid: %s, %s)", rankBy, ByPaper, ByAuthor)
	}
	method, err := rank.ParseMethod(rankMethod)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return method
}

// displayRanking ranks records against q and prints the response.
func displayRanking(q rank.Query, records []profile.Record, dims int, resp RankResponse, method rank.Method) {
	if err := q.Validate(dims); err != nil {
		exitWithError(ExitTableStale, "%v\n\nRebuild the table with 'revrec build'.", err)
	}

	results := rank.Rank(q, records)
	if excluder := author.NewExcluder(rankExclude); excluder.Len() > 0 {
		kept := rank.Exclude(results, excluder.Excludes)
		resp.Excluded = len(results) - len(kept)
		results = kept
		logger.Debug("excluded candidate papers", zap.Strings("authors", rankExclude), zap.Int("papers", resp.Excluded))
	}
	resp = buildRankResponse(resp, results, rankBy, method, rankTopK)

	if humanOutput {
		if resp.Warning != "" {
			fmt.Fprintf(os.Stderr, "warning: %s\n", resp.Warning)
		}
		printRankingHuman(resp)
		return
	}
	outputJSON(resp)
}

// buildRankResponse fills resp with the top k paper or author rows.
func buildRankResponse(resp RankResponse, results []rank.Result, by string, method rank.Method, k int) RankResponse {
	resp.By = by
	if by == ByAuthor {
		resp.Method = string(method)
		authors := rank.ByAuthor(results, method)
		resp.Total = len(authors)
		resp.Authors = rank.Top(authors, k)
		return resp
	}
	resp.Total = len(results)
	resp.Papers = rank.Top(results, k)
	return resp
}

// printRankingHuman prints ranked rows in human-readable format.
func printRankingHuman(resp RankResponse) {
	if len(resp.Papers) == 0 && len(resp.Authors) == 0 {
		fmt.Println("No candidate reviewers in table.")
		return
	}

	for i, r := range resp.Papers {
		fmt.Printf("%d. [%.3f] %s\n", i+1, r.Score, r.Author)
		fmt.Printf("   %s\n", truncateString(r.Paper, PaperNameMaxLen))
		fmt.Printf("   abstract+intro %.3f, full text %.3f\n\n", r.BestScore, r.FullScore)
	}
	for i, a := range resp.Authors {
		score := a.Max
		if resp.Method == string(rank.MethodMean) {
			score = a.Mean
		}
		fmt.Printf("%d. [%.3f] %s\n", i+1, score, a.Author)
		fmt.Printf("   max %.3f, mean %.3f over %d papers\n", a.Max, a.Mean, a.Count)
		fmt.Printf("   best match: %s\n\n", truncateString(a.BestPaper, PaperNameMaxLen))
	}
	fmt.Printf("Showing %d of %d (model %s)\n", len(resp.Papers)+len(resp.Authors), resp.Total, resp.Model)
	if resp.Excluded > 0 {
		fmt.Printf("%d papers by excluded authors left out\n", resp.Excluded)
	}
}
