// Package profile holds the precomputed reviewer table: one record of
// best-text and full-text embeddings per prior paper of each candidate author.
package profile

import "time"

// Record is the stored profile of one paper by a candidate reviewer.
// Best or Full is nil when the corresponding text could not be extracted;
// such vectors score zero during ranking.
type Record struct {
	Author      string    `json:"author"`
	Paper       string    `json:"paper"` // "<author>__<file stem>.pdf"
	DOI         string    `json:"doi,omitempty"`
	ContentHash string    `json:"content_hash"`
	Best        []float32 `json:"-"`
	Full        []float32 `json:"-"`
}

// HasBest reports whether the record carries a best-text embedding.
func (r Record) HasBest() bool {
	return len(r.Best) > 0
}

// HasFull reports whether the record carries a full-text embedding.
func (r Record) HasFull() bool {
	return len(r.Full) > 0
}

// Table is the serialized reviewer table. Records keep dataset order,
// which is the tie-break order for ranking.
type Table struct {
	// Version is the format version for compatibility checking.
	Version int `json:"version"`

	ModelName  string    `json:"model_name"`
	Dimensions int       `json:"dimensions"`
	CreatedAt  time.Time `json:"created_at"`
	DatasetDir string    `json:"dataset_dir,omitempty"`

	// Stats records how the table was built. TableSizeBytes is only known
	// after saving and is left zero here.
	Stats BuildStats `json:"stats"`

	Records []Record `json:"-"`
}

// BuildStats contains statistics from table building.
type BuildStats struct {
	PapersIndexed  int           `json:"papers_indexed"`
	PapersWithBest int           `json:"papers_with_best_text"`
	PapersNoText   int           `json:"papers_without_text"`
	CacheHits      int           `json:"cache_hits"`
	Authors        int           `json:"authors"`
	Duration       time.Duration `json:"duration"`
	TableSizeBytes int64         `json:"table_size_bytes"`
}

// Summary describes a loaded table.
type Summary struct {
	Records        int            `json:"records"`
	WithBest       int            `json:"with_best_text"`
	WithFull       int            `json:"with_full_text"`
	Empty          int            `json:"without_text"`
	PapersByAuthor map[string]int `json:"papers_by_author"`
}
