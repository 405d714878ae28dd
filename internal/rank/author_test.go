package rank

import (
	"math"
	"testing"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{in: "", want: MethodMax},
		{in: "max", want: MethodMax},
		{in: "mean", want: MethodMean},
		{in: "median", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMethod(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMethod(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestByAuthor(t *testing.T) {
	results := []Result{
		{Author: "niche", Paper: "niche__1.pdf", Index: 3, Score: 0.9},
		{Author: "broad", Paper: "broad__1.pdf", Index: 0, Score: 0.7},
		{Author: "broad", Paper: "broad__2.pdf", Index: 1, Score: 0.6},
		{Author: "niche", Paper: "niche__2.pdf", Index: 4, Score: 0.1},
		{Author: "other", Paper: "other__1.pdf", Index: 2, Score: 0.2},
	}

	t.Run("max", func(t *testing.T) {
		authors := ByAuthor(results, MethodMax)
		if len(authors) != 3 {
			t.Fatalf("expected 3 authors, got %d", len(authors))
		}
		if authors[0].Author != "niche" || authors[1].Author != "broad" || authors[2].Author != "other" {
			t.Errorf("unexpected order: %v", authors)
		}
		niche := authors[0]
		if niche.Count != 2 || niche.Max != 0.9 || niche.BestPaper != "niche__1.pdf" {
			t.Errorf("unexpected niche aggregate: %+v", niche)
		}
		if math.Abs(niche.Mean-0.5) > 1e-9 {
			t.Errorf("niche mean = %v, want 0.5", niche.Mean)
		}
	})

	t.Run("mean", func(t *testing.T) {
		authors := ByAuthor(results, MethodMean)
		if authors[0].Author != "broad" {
			t.Errorf("expected broad first by mean, got %s", authors[0].Author)
		}
		if math.Abs(authors[0].Mean-0.65) > 1e-9 {
			t.Errorf("broad mean = %v, want 0.65", authors[0].Mean)
		}
	})

	t.Run("ties use table order", func(t *testing.T) {
		tied := []Result{
			{Author: "late", Paper: "late__1.pdf", Index: 5, Score: 0.5},
			{Author: "early", Paper: "early__1.pdf", Index: 1, Score: 0.5},
		}
		authors := ByAuthor(tied, MethodMax)
		if authors[0].Author != "early" {
			t.Errorf("expected table order on ties, got %v", authors)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := ByAuthor(nil, MethodMax); len(got) != 0 {
			t.Errorf("expected no authors, got %d", len(got))
		}
	})
}
