// Package embedding turns document text into vectors for similarity ranking.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrDimensionMismatch is returned when a provider yields a vector of unexpected size.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Embedding represents a vector embedding of text.
type Embedding struct {
	Vector []float32 // e.g. 384 dimensions for all-minilm
}

// Dimensions returns the dimensionality of the embedding.
func (e Embedding) Dimensions() int {
	return len(e.Vector)
}

// IsZero reports whether the embedding has no vector.
func (e Embedding) IsZero() bool {
	return len(e.Vector) == 0
}

// EmbedText embeds text, returning a nil vector for blank text so that
// absent sections score as zero instead of matching each other.
func EmbedText(ctx context.Context, p Provider, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	emb, err := p.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return emb.Vector, nil
}

// checkDimensions validates a returned vector against the expected size.
// A non-positive want disables the check.
func checkDimensions(got []float32, want int) error {
	if want > 0 && len(got) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(got), want)
	}
	return nil
}

// TruncateRunes returns the first n runes of text. n <= 0 leaves text unchanged.
func TruncateRunes(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
