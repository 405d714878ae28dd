// Package author provides author name parsing and matching, used to keep a
// manuscript's own authors out of its reviewer recommendations.
package author

import (
	"strings"
)

// Name is a parsed author name.
type Name struct {
	First string // First name (may be empty for last-name-only input)
	Last  string // Last name
}

// Parse parses an author name. Underscores count as spaces, so dataset
// directories like "Timothy_Yu" parse the same as "Timothy Yu".
//
// Supported formats:
//   - "Yu"           → last="Yu" (single word = last name only)
//   - "Timothy Yu"   → first="Timothy", last="Yu" (space-separated = First Last)
//   - "Yu, Timothy"  → first="Timothy", last="Yu" (comma = Last, First)
//
// Names are trimmed but case is preserved (matching is case-insensitive).
func Parse(input string) Name {
	input = strings.TrimSpace(strings.ReplaceAll(input, "_", " "))
	if input == "" {
		return Name{}
	}

	// Check for comma format: "Last, First"
	if idx := strings.Index(input, ","); idx > 0 {
		last := strings.TrimSpace(input[:idx])
		first := strings.Join(strings.Fields(input[idx+1:]), " ")
		return Name{First: first, Last: last}
	}

	parts := strings.Fields(input)
	if len(parts) == 1 {
		return Name{Last: parts[0]}
	}

	// Multiple words: last word is last name, rest is first name
	// e.g., "Timothy C Yu" → first="Timothy C", last="Yu"
	last := parts[len(parts)-1]
	first := strings.Join(parts[:len(parts)-1], " ")
	return Name{First: first, Last: last}
}

// Matches checks if the query name q matches a candidate name.
//
// Matching rules:
//   - Last name: case-insensitive exact match (required)
//   - First name: case-insensitive prefix match (if q has a first name
//     and the candidate does too)
//
// This lets "Tim Yu" match "Timothy C Yu" while "Yu" never matches "Yujia".
func (q Name) Matches(candidate Name) bool {
	if q.Last == "" || !strings.EqualFold(q.Last, candidate.Last) {
		return false
	}

	if q.First == "" || candidate.First == "" {
		return true
	}

	return strings.HasPrefix(
		strings.ToLower(candidate.First),
		strings.ToLower(q.First),
	)
}

// Excluder reports whether candidate authors match any of a set of names.
type Excluder struct {
	names []Name
}

// NewExcluder parses each entry of names. Blank entries are ignored.
func NewExcluder(names []string) *Excluder {
	e := &Excluder{}
	for _, n := range names {
		if parsed := Parse(n); parsed.Last != "" {
			e.names = append(e.names, parsed)
		}
	}
	return e
}

// Len returns the number of names to exclude.
func (e *Excluder) Len() int {
	return len(e.names)
}

// Excludes reports whether candidate matches any excluded name.
func (e *Excluder) Excludes(candidate string) bool {
	c := Parse(candidate)
	for _, n := range e.names {
		if n.Matches(c) {
			return true
		}
	}
	return false
}
