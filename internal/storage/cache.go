// Package storage persists the build cache for the reviewer table in SQLite.
package storage

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// CachedPaper is the extraction and embedding result for one PDF, keyed by
// its content hash and the embedding model that produced the vectors.
type CachedPaper struct {
	ContentHash string
	ModelName   string
	DOI         string
	BestWords   int
	FullWords   int
	Best        []float32
	Full        []float32
	IndexedAt   int64 // Unix timestamp
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS paper_cache (
			content_hash TEXT NOT NULL,
			model_name TEXT NOT NULL,
			doi TEXT,
			best_words INTEGER NOT NULL DEFAULT 0,
			full_words INTEGER NOT NULL DEFAULT 0,
			best_vec BLOB,
			full_vec BLOB,
			indexed_at INTEGER NOT NULL,
			PRIMARY KEY (content_hash, model_name)
		);
	`
	_, err := db.Exec(schema)
	return err
}

// SavePaper saves or replaces a cache entry.
func (d *DB) SavePaper(p CachedPaper) error {
	_, err := d.db.Exec(`
		INSERT OR REPLACE INTO paper_cache
			(content_hash, model_name, doi, best_words, full_words, best_vec, full_vec, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ContentHash, p.ModelName, p.DOI, p.BestWords, p.FullWords,
		encodeVector(p.Best), encodeVector(p.Full), p.IndexedAt)
	if err != nil {
		return fmt.Errorf("saving cache entry %s: %w", p.ContentHash, err)
	}
	return nil
}

// GetPaper returns the cache entry for a hash and model, or nil if absent.
func (d *DB) GetPaper(contentHash, modelName string) (*CachedPaper, error) {
	var (
		p                CachedPaper
		doi              sql.NullString
		bestVec, fullVec []byte
	)
	err := d.db.QueryRow(`
		SELECT content_hash, model_name, doi, best_words, full_words, best_vec, full_vec, indexed_at
		FROM paper_cache
		WHERE content_hash = ? AND model_name = ?
	`, contentHash, modelName).Scan(&p.ContentHash, &p.ModelName, &doi, &p.BestWords, &p.FullWords,
		&bestVec, &fullVec, &p.IndexedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache entry %s: %w", contentHash, err)
	}

	p.DOI = doi.String
	if p.Best, err = decodeVector(bestVec); err != nil {
		return nil, fmt.Errorf("best vector for %s: %w", contentHash, err)
	}
	if p.Full, err = decodeVector(fullVec); err != nil {
		return nil, fmt.Errorf("full vector for %s: %w", contentHash, err)
	}
	return &p, nil
}

// CountPapers returns the number of cache entries, optionally for one model.
func (d *DB) CountPapers(modelName string) (int, error) {
	var count int
	var err error
	if modelName == "" {
		err = d.db.QueryRow("SELECT COUNT(*) FROM paper_cache").Scan(&count)
	} else {
		err = d.db.QueryRow("SELECT COUNT(*) FROM paper_cache WHERE model_name = ?", modelName).Scan(&count)
	}
	return count, err
}

// Clear removes all cache entries.
func (d *DB) Clear() error {
	_, err := d.db.Exec("DELETE FROM paper_cache")
	return err
}

// encodeVector packs a vector as little-endian float32 values. A nil
// vector is stored as NULL.
func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("corrupt vector blob of %d bytes", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
