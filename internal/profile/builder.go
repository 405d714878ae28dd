package profile

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/revrec/revrec/internal/embedding"
	"github.com/revrec/revrec/internal/pdf"
	"github.com/revrec/revrec/internal/storage"
)

// ErrNoPapers is returned when the dataset directory holds no PDFs.
var ErrNoPapers = errors.New("no PDF files found in dataset")

// ProgressReporter receives progress updates during table building.
type ProgressReporter interface {
	// OnProgress is called with the current progress.
	OnProgress(current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(current, total int) {
	f(current, total)
}

// ExtractFunc turns raw PDF bytes into the texts to embed.
type ExtractFunc func(data []byte) (pdf.Texts, error)

// Paper is a dataset PDF attributed to an author by its parent directory.
type Paper struct {
	Author string
	Path   string
}

// Name returns the record identifier "<author>__<stem>.pdf".
func (p Paper) Name() string {
	stem := strings.TrimSuffix(filepath.Base(p.Path), filepath.Ext(p.Path))
	return fmt.Sprintf("%s__%s.pdf", p.Author, stem)
}

// FindPapers lists <datasetDir>/<author>/*.pdf in sorted path order.
func FindPapers(datasetDir string) ([]Paper, error) {
	info, err := os.Stat(datasetDir)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset is not a directory: %s", datasetDir)
	}

	matches, err := filepath.Glob(filepath.Join(datasetDir, "*", "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("listing dataset: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPapers, datasetDir)
	}
	sort.Strings(matches)

	papers := make([]Paper, 0, len(matches))
	for _, m := range matches {
		papers = append(papers, Paper{
			Author: filepath.Base(filepath.Dir(m)),
			Path:   m,
		})
	}
	return papers, nil
}

// Builder constructs a reviewer table from a dataset of author PDFs.
type Builder struct {
	provider embedding.Provider
	cache    *storage.DB
	extract  ExtractFunc
	progress ProgressReporter
	logger   *zap.Logger
}

// NewBuilder creates a new table builder. cache may be nil.
func NewBuilder(provider embedding.Provider, cache *storage.DB) *Builder {
	return &Builder{
		provider: provider,
		cache:    cache,
		extract:  pdf.ExtractBytes,
		logger:   zap.NewNop(),
	}
}

// SetProgressReporter sets the progress reporter for the builder.
func (b *Builder) SetProgressReporter(reporter ProgressReporter) {
	b.progress = reporter
}

// SetLogger sets the logger used for per-paper diagnostics.
func (b *Builder) SetLogger(logger *zap.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// SetExtractor replaces the PDF text extractor.
func (b *Builder) SetExtractor(fn ExtractFunc) {
	b.extract = fn
}

// Build extracts, embeds and records every paper under datasetDir.
// A PDF that cannot be parsed is kept as a record without vectors; an
// embedding failure aborts the build.
func (b *Builder) Build(ctx context.Context, datasetDir string) (*Table, *BuildStats, error) {
	startTime := time.Now()

	papers, err := FindPapers(datasetDir)
	if err != nil {
		return nil, nil, err
	}

	table := NewTable(b.provider.ModelName(), b.provider.Dimensions())
	table.DatasetDir = datasetDir
	stats := &BuildStats{}

	for i, paper := range papers {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		if b.progress != nil {
			b.progress.OnProgress(i+1, len(papers))
		}

		rec, hit, err := b.buildRecord(ctx, paper)
		if err != nil {
			return nil, nil, err
		}

		if err := table.Add(rec); err != nil {
			return nil, nil, err
		}

		stats.PapersIndexed++
		if hit {
			stats.CacheHits++
		}
		if rec.HasBest() {
			stats.PapersWithBest++
		}
		if !rec.HasBest() && !rec.HasFull() {
			stats.PapersNoText++
		}
	}

	stats.Authors = len(table.Authors())
	stats.Duration = time.Since(startTime)
	table.Stats = *stats

	return table, stats, nil
}

// buildRecord produces the record for one paper, consulting the cache first.
// The boolean result reports a cache hit.
func (b *Builder) buildRecord(ctx context.Context, paper Paper) (Record, bool, error) {
	data, err := os.ReadFile(paper.Path)
	if err != nil {
		return Record{}, false, fmt.Errorf("reading %s: %w", paper.Path, err)
	}

	rec := Record{
		Author:      paper.Author,
		Paper:       paper.Name(),
		ContentHash: hashContent(data),
	}
	model := b.provider.ModelName()

	if b.cache != nil {
		cached, err := b.cache.GetPaper(rec.ContentHash, model)
		if err != nil {
			return Record{}, false, err
		}
		if cached != nil {
			rec.DOI = cached.DOI
			rec.Best = cached.Best
			rec.Full = cached.Full
			return rec, true, nil
		}
	}

	texts, err := b.extract(data)
	if err != nil {
		b.logger.Warn("could not extract text, keeping paper without embeddings",
			zap.String("paper", rec.Paper),
			zap.Error(err))
		return rec, false, nil
	}
	if !texts.HasBest() {
		b.logger.Debug("no abstract or introduction found", zap.String("paper", rec.Paper))
	}

	rec.DOI = texts.DOI
	if rec.Best, err = embedding.EmbedText(ctx, b.provider, texts.Best); err != nil {
		return Record{}, false, fmt.Errorf("embedding best text of %s: %w", rec.Paper, err)
	}
	if rec.Full, err = embedding.EmbedText(ctx, b.provider, texts.Full); err != nil {
		return Record{}, false, fmt.Errorf("embedding full text of %s: %w", rec.Paper, err)
	}

	if b.cache != nil {
		entry := storage.CachedPaper{
			ContentHash: rec.ContentHash,
			ModelName:   model,
			DOI:         rec.DOI,
			BestWords:   len(strings.Fields(texts.Best)),
			FullWords:   len(strings.Fields(texts.Full)),
			Best:        rec.Best,
			Full:        rec.Full,
			IndexedAt:   time.Now().Unix(),
		}
		if err := b.cache.SavePaper(entry); err != nil {
			return Record{}, false, err
		}
	}

	return rec, false, nil
}

// hashContent computes a SHA256 hash of the PDF bytes.
func hashContent(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
