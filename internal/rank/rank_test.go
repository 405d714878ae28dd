package rank

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/revrec/revrec/internal/embedding"
	"github.com/revrec/revrec/internal/profile"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{name: "identical vectors", a: []float32{1, 0, 0}, b: []float32{1, 0, 0}, expected: 1.0},
		{name: "orthogonal vectors", a: []float32{1, 0}, b: []float32{0, 1}, expected: 0.0},
		{name: "opposite vectors", a: []float32{1, 0}, b: []float32{-1, 0}, expected: -1.0},
		{name: "similar vectors", a: []float32{1, 1}, b: []float32{1, 0}, expected: 0.7071067},
		{name: "empty vectors", a: []float32{}, b: []float32{}, expected: 0.0},
		{name: "nil vector", a: nil, b: []float32{1, 0}, expected: 0.0},
		{name: "different lengths", a: []float32{1, 0}, b: []float32{1, 0, 0}, expected: 0.0},
		{name: "zero vector a", a: []float32{0, 0, 0}, b: []float32{1, 0, 0}, expected: 0.0},
		{name: "zero vector b", a: []float32{1, 0, 0}, b: []float32{0, 0, 0}, expected: 0.0},
		{name: "scaled vectors", a: []float32{0.6, 0.8}, b: []float32{3, 4}, expected: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 0.0001 {
				t.Errorf("CosineSimilarity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestCosineSimilarity_Commutative(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}

	if ab, ba := CosineSimilarity(a, b), CosineSimilarity(b, a); math.Abs(ab-ba) > 1e-12 {
		t.Errorf("CosineSimilarity is not commutative: %v vs %v", ab, ba)
	}
}

// randomRecords builds n records with random vectors; roughly a third lack a best vector.
func randomRecords(rng *rand.Rand, n, dims int) []profile.Record {
	vec := func() []float32 {
		v := make([]float32, dims)
		for i := range v {
			v[i] = float32(rng.NormFloat64())
		}
		return v
	}
	records := make([]profile.Record, n)
	for i := range records {
		records[i] = profile.Record{Author: string(rune('a' + i%5)), Paper: string(rune('A' + i)), Full: vec()}
		if i%3 != 0 {
			records[i].Best = vec()
		}
	}
	return records
}

func TestRank_ScoreIsMaxOfSearches(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	records := randomRecords(rng, 40, 8)
	q := Query{Best: randomRecords(rng, 1, 8)[0].Full, Full: randomRecords(rng, 1, 8)[0].Full}

	for _, r := range Rank(q, records) {
		rec := records[r.Index]
		wantBest := CosineSimilarity(q.Best, rec.Best)
		wantFull := CosineSimilarity(q.Full, rec.Full)
		if r.BestScore != wantBest || r.FullScore != wantFull {
			t.Errorf("%s: component scores %v/%v, want %v/%v", r.Paper, r.BestScore, r.FullScore, wantBest, wantFull)
		}
		if r.Score != math.Max(r.BestScore, r.FullScore) {
			t.Errorf("%s: score %v is not max(%v, %v)", r.Paper, r.Score, r.BestScore, r.FullScore)
		}
		if !rec.HasBest() && r.BestScore != 0 {
			t.Errorf("%s: missing best vector should score 0, got %v", r.Paper, r.BestScore)
		}
	}
}

func TestRank_SortedDescending(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	records := randomRecords(rng, 50, 4)
	q := Query{Best: records[7].Full, Full: records[11].Full}

	results := Rank(q, records)
	if len(results) != len(records) {
		t.Fatalf("expected %d results, got %d", len(records), len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted at %d: %v > %v", i, results[i].Score, results[i-1].Score)
		}
	}
}

func TestRank_TiesKeepTableOrder(t *testing.T) {
	same := []float32{1, 0}
	records := []profile.Record{
		{Author: "c", Paper: "c1", Full: []float32{0, 1}},
		{Author: "b", Paper: "b1", Full: same},
		{Author: "a", Paper: "a1", Full: same},
		{Author: "d", Paper: "d1"},
		{Author: "e", Paper: "e1", Full: same},
	}

	results := Rank(Query{Full: []float32{1, 0}}, records)

	wantOrder := []string{"b1", "a1", "e1", "c1", "d1"}
	for i, want := range wantOrder {
		if results[i].Paper != want {
			t.Errorf("position %d = %s, want %s", i, results[i].Paper, want)
		}
	}
}

func TestRank_IdenticalDocumentRanksFirst(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	records := randomRecords(rng, 30, 16)
	target := records[13]
	if !target.HasBest() {
		t.Fatal("test fixture should have a best vector")
	}

	results := Rank(Query{Best: target.Best, Full: target.Full}, records)

	if results[0].Paper != target.Paper {
		t.Errorf("expected %s ranked first, got %s", target.Paper, results[0].Paper)
	}
	if math.Abs(results[0].Score-1) > 1e-6 {
		t.Errorf("expected score ~1, got %v", results[0].Score)
	}
}

func TestRank_FullTextFallback(t *testing.T) {
	records := []profile.Record{
		{Author: "with-best", Paper: "p1", Best: []float32{0, 1}, Full: []float32{0, 1}},
		{Author: "full-only", Paper: "p2", Full: []float32{1, 0}},
	}

	// Query without a best text: only the full-text search contributes.
	results := Rank(Query{Full: []float32{1, 0}}, records)

	if results[0].Author != "full-only" {
		t.Errorf("expected full-only paper first, got %s", results[0].Author)
	}
	if results[0].BestScore != 0 || results[0].Score != results[0].FullScore {
		t.Errorf("unexpected scores: %+v", results[0])
	}
}

func TestRank_Empty(t *testing.T) {
	if got := Rank(Query{Full: []float32{1}}, nil); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Query
		dims    int
		wantErr bool
	}{
		{name: "matching", q: Query{Best: make([]float32, 3), Full: make([]float32, 3)}, dims: 3},
		{name: "missing best", q: Query{Full: make([]float32, 3)}, dims: 3},
		{name: "unknown table dimensions", q: Query{Full: make([]float32, 5)}, dims: 0},
		{name: "mismatch", q: Query{Full: make([]float32, 4)}, dims: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate(tt.dims)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, embedding.ErrDimensionMismatch) {
				t.Errorf("expected ErrDimensionMismatch, got %v", err)
			}
		})
	}
}

func TestTop(t *testing.T) {
	items := []int{5, 4, 3, 2, 1}

	tests := []struct {
		k    int
		want int
	}{
		{k: 0, want: 5},
		{k: -1, want: 5},
		{k: 2, want: 2},
		{k: 10, want: 5},
	}
	for _, tt := range tests {
		if got := Top(items, tt.k); len(got) != tt.want {
			t.Errorf("Top(k=%d) returned %d items, want %d", tt.k, len(got), tt.want)
		}
	}
}

func TestExclude(t *testing.T) {
	results := []Result{
		{Author: "a", Paper: "a1", Score: 0.9},
		{Author: "b", Paper: "b1", Score: 0.8},
		{Author: "a", Paper: "a2", Score: 0.7},
		{Author: "c", Paper: "c1", Score: 0.6},
	}

	got := Exclude(results, func(author string) bool { return author == "a" })
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Paper != "b1" || got[1].Paper != "c1" {
		t.Errorf("unexpected order: %s, %s", got[0].Paper, got[1].Paper)
	}
	if results[0].Paper != "a1" {
		t.Error("Exclude must not modify its input")
	}
}
