// Package rank scores reviewer records against a query document using the
// best-of-two-searches fallback: each record's score is the larger of its
// best-text and full-text cosine similarities.
package rank

import (
	"fmt"
	"math"
	"sort"

	"github.com/revrec/revrec/internal/embedding"
	"github.com/revrec/revrec/internal/profile"
)

// Query holds the two embeddings of the uploaded document. Either may be
// nil, in which case that search contributes a zero score.
type Query struct {
	Best []float32
	Full []float32
}

// Result is the score of one table record.
type Result struct {
	Author    string  `json:"author"`
	Paper     string  `json:"paper"`
	Index     int     `json:"-"` // position in the table
	BestScore float64 `json:"best_score"`
	FullScore float64 `json:"full_score"`
	Score     float64 `json:"score"`
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Empty, mismatched or zero-norm vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0
	}

	return dot / denominator
}

// Validate checks that the non-empty query vectors have the table's
// dimensions. Mismatches wrap embedding.ErrDimensionMismatch.
func (q Query) Validate(dimensions int) error {
	if dimensions == 0 {
		return nil
	}
	for _, v := range [][]float32{q.Best, q.Full} {
		if len(v) != 0 && len(v) != dimensions {
			return fmt.Errorf("query does not match table: %w: got %d, want %d", embedding.ErrDimensionMismatch, len(v), dimensions)
		}
	}
	return nil
}

// Rank scores every record and returns results sorted by descending
// score. Equal scores keep table order.
func Rank(q Query, records []profile.Record) []Result {
	results := make([]Result, len(records))
	for i, r := range records {
		best := CosineSimilarity(q.Best, r.Best)
		full := CosineSimilarity(q.Full, r.Full)
		results[i] = Result{
			Author:    r.Author,
			Paper:     r.Paper,
			Index:     i,
			BestScore: best,
			FullScore: full,
			Score:     math.Max(best, full),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// Top returns at most k leading items. k <= 0 returns all of them.
func Top[T any](items []T, k int) []T {
	if k > 0 && len(items) > k {
		return items[:k]
	}
	return items
}

// Exclude drops the results whose author satisfies drop, keeping order.
func Exclude(results []Result, drop func(author string) bool) []Result {
	kept := results[:0:0]
	for _, r := range results {
		if !drop(r.Author) {
			kept = append(kept, r)
		}
	}
	return kept
}
