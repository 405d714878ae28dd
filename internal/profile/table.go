package profile

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/revrec/revrec/internal/embedding"
)

// Errors returned by table operations.
var (
	ErrTableNotFound      = errors.New("reviewer table not found")
	ErrUnsupportedVersion = errors.New("unsupported table version")
)

const (
	// DefaultTablePath is where the table is written when no path is configured.
	DefaultTablePath = "profiles/reviewers.gob"

	// CurrentVersion is the format version for compatibility checking.
	// Increment this when making breaking changes to the table format.
	CurrentVersion = 2
)

// NewTable creates an empty table. A zero dimensions value is fixed by the
// first vector added.
func NewTable(modelName string, dimensions int) *Table {
	return &Table{
		Version:    CurrentVersion,
		ModelName:  modelName,
		Dimensions: dimensions,
		CreatedAt:  time.Now(),
	}
}

// Add appends a record, validating any vectors it carries.
func (t *Table) Add(rec Record) error {
	for _, vec := range [][]float32{rec.Best, rec.Full} {
		if len(vec) == 0 {
			continue
		}
		if t.Dimensions == 0 {
			t.Dimensions = len(vec)
		}
		if len(vec) != t.Dimensions {
			return fmt.Errorf("%w for %s: got %d, want %d", embedding.ErrDimensionMismatch, rec.Paper, len(vec), t.Dimensions)
		}
	}
	t.Records = append(t.Records, rec)
	return nil
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Summarize counts records by embedding coverage and author.
func (t *Table) Summarize() Summary {
	s := Summary{
		Records:        len(t.Records),
		PapersByAuthor: make(map[string]int),
	}
	for _, r := range t.Records {
		if r.HasBest() {
			s.WithBest++
		}
		if r.HasFull() {
			s.WithFull++
		}
		if !r.HasBest() && !r.HasFull() {
			s.Empty++
		}
		s.PapersByAuthor[r.Author]++
	}
	return s
}

// Authors returns distinct author names in first-appearance order.
func (t *Table) Authors() []string {
	seen := make(map[string]bool)
	var authors []string
	for _, r := range t.Records {
		if !seen[r.Author] {
			seen[r.Author] = true
			authors = append(authors, r.Author)
		}
	}
	return authors
}

// Save persists the table to path using GOB encoding.
func (t *Table) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating table directory: %w", err)
	}

	// Write to a temp file first, then rename for atomicity
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(t); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding table: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// Load reads the table at path into memory.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("opening table file: %w", err)
	}
	defer f.Close()

	var t Table
	if err := gob.NewDecoder(f).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding table: %w", err)
	}

	if t.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: got %d, want %d (rebuild with 'revrec build')",
			ErrUnsupportedVersion, t.Version, CurrentVersion)
	}

	return &t, nil
}

// Size returns the size of the table file in bytes.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrTableNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}

// Exists checks if a table file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
