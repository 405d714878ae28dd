package rank

import (
	"fmt"
	"sort"
)

// Method selects how author scores are ordered.
type Method string

const (
	// MethodMax orders authors by their single best-matching paper.
	MethodMax Method = "max"
	// MethodMean orders authors by the average score of all their papers.
	MethodMean Method = "mean"
)

// ParseMethod validates a ranking method name. Empty means MethodMax.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", MethodMax:
		return MethodMax, nil
	case MethodMean:
		return MethodMean, nil
	default:
		return "", fmt.Errorf("invalid ranking method %q (valid: %s, %s)", s, MethodMax, MethodMean)
	}
}

// AuthorResult aggregates the paper scores of one author.
type AuthorResult struct {
	Author    string  `json:"author"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
	Count     int     `json:"count"`
	BestPaper string  `json:"best_paper"`

	first int // lowest table index among the author's papers
}

// ByAuthor groups paper results by author and orders the groups by method,
// descending. Ties are broken by the author's first position in the table.
func ByAuthor(results []Result, method Method) []AuthorResult {
	index := make(map[string]int)
	var authors []AuthorResult
	var sums []float64

	for _, r := range results {
		i, ok := index[r.Author]
		if !ok {
			i = len(authors)
			index[r.Author] = i
			authors = append(authors, AuthorResult{Author: r.Author, Max: r.Score, BestPaper: r.Paper, first: r.Index})
			sums = append(sums, 0)
		}
		a := &authors[i]
		a.Count++
		sums[i] += r.Score
		a.first = min(a.first, r.Index)
		if r.Score > a.Max {
			a.Max = r.Score
			a.BestPaper = r.Paper
		}
	}

	for i := range authors {
		authors[i].Mean = sums[i] / float64(authors[i].Count)
	}

	key := func(a AuthorResult) float64 { return a.Max }
	if method == MethodMean {
		key = func(a AuthorResult) float64 { return a.Mean }
	}
	sort.Slice(authors, func(i, j int) bool {
		ki, kj := key(authors[i]), key(authors[j])
		if ki != kj {
			return ki > kj
		}
		return authors[i].first < authors[j].first
	})

	return authors
}
