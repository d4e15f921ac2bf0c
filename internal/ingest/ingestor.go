// Package ingest walks a decompressed invoice archive and turns every
// candidate document into an extracted record or an unextracted file name.
// Extraction is embarrassingly parallel: documents share no state, so a
// bounded worker pool sized to the CPU count drives the OCR-heavy work.
package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/validanfse/validanfse/constants"
	"github.com/validanfse/validanfse/internal/archive"
	"github.com/validanfse/validanfse/internal/invoice"
)

// TextAcquirer is stage 1: document -> best-effort text.
type TextAcquirer interface {
	Acquire(ctx context.Context, path string) string
}

// FieldExtractor is stage 2: text -> typed record.
type FieldExtractor interface {
	Extract(fileName, text string) (invoice.Record, error)
}

type Config struct {
	ScratchDir string
	Workers    int           // 0 -> runtime.NumCPU()
	DocTimeout time.Duration // per-document; expiry routes to unextracted
}

// Batch is one run's extraction output. Every candidate file appears in
// exactly one of Records (by source file) or Unextracted.
type Batch struct {
	Records     []invoice.Record
	Unextracted []string
	Stats       Stats
}

type Stats struct {
	Scanned     uint32
	Candidates  uint32
	Extracted   uint32
	Unextracted uint32
	Duration    time.Duration
}

type Ingestor struct {
	cfg       Config
	acquirer  TextAcquirer
	extractor FieldExtractor
	archive   *archive.Extractor
	logger    *slog.Logger
}

func NewIngestor(cfg Config, acq TextAcquirer, ext FieldExtractor, arc *archive.Extractor, logger *slog.Logger) *Ingestor {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.DocTimeout <= 0 {
		cfg.DocTimeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{cfg: cfg, acquirer: acq, extractor: ext, archive: arc, logger: logger}
}

// IngestArchive decompresses the bundle into a run-private subdirectory of
// the scratch root and extracts every candidate document. Each run owns its
// own subdirectory, keyed by run ID, so concurrent runs cannot wipe each
// other's files; the subdirectory is removed when the run finishes.
// Archive-level failures propagate; per-document failures become
// unextracted list membership.
func (g *Ingestor) IngestArchive(ctx context.Context, runID, archivePath string) (Batch, error) {
	runDir := filepath.Join(g.cfg.ScratchDir, runID)
	if err := archive.RecreateDir(runDir); err != nil {
		return Batch{}, err
	}
	defer func() {
		if err := archive.RemoveDir(runDir); err != nil {
			g.logger.Warn("scratch cleanup failed", "run_id", runID, "dir", runDir, "error", err)
		}
	}()

	if err := g.archive.Decompress(ctx, archivePath, runDir); err != nil {
		return Batch{}, err
	}
	return g.IngestDir(ctx, runDir)
}

// IngestDir extracts every eligible PDF under root on the worker pool.
func (g *Ingestor) IngestDir(ctx context.Context, root string) (Batch, error) {
	start := time.Now()

	var batch Batch
	candidates := g.collectCandidates(root, &batch.Stats)
	batch.Stats.Candidates = uint32(len(candidates))

	jobs := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < g.cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for path := range jobs {
				rec, err := g.processDocument(ctx, path)
				mu.Lock()
				if err != nil {
					batch.Unextracted = append(batch.Unextracted, filepath.Base(path))
					batch.Stats.Unextracted++
				} else {
					batch.Records = append(batch.Records, rec)
					batch.Stats.Extracted++
				}
				mu.Unlock()
				if err != nil {
					g.logger.Info("document unextracted", "worker_id", workerID, "file", filepath.Base(path), "reason", err)
				}
			}
		}(i + 1)
	}

	for _, path := range candidates {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	sort.Slice(batch.Records, func(i, j int) bool {
		return batch.Records[i].SourceFile < batch.Records[j].SourceFile
	})
	sort.Strings(batch.Unextracted)

	batch.Stats.Duration = time.Since(start)
	g.logger.Info("archive ingested",
		"scanned", batch.Stats.Scanned,
		"candidates", batch.Stats.Candidates,
		"extracted", batch.Stats.Extracted,
		"unextracted", batch.Stats.Unextracted,
		"duration_ms", batch.Stats.Duration.Milliseconds(),
	)
	return batch, nil
}

// collectCandidates walks the scratch tree and keeps the PDF files that
// pass the cheap name pre-filter. Walk errors on individual entries do not
// abort the walk.
func (g *Ingestor) collectCandidates(root string, stats *Stats) []string {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			g.logger.Warn("walk error", "path", path, "error", walkErr)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := constants.CandidateExtensions[ext]; !ok {
			return nil
		}
		if !invoice.EligibleName(filepath.Base(path)) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		g.logger.Warn("walk aborted", "root", root, "error", err)
	}
	return out
}

// processDocument runs classify -> acquire -> extract for one file under
// the per-document timeout. Any failure, including timeout expiry, is a
// per-document extraction failure, never a batch abort.
func (g *Ingestor) processDocument(ctx context.Context, path string) (invoice.Record, error) {
	docCtx, cancel := context.WithTimeout(ctx, g.cfg.DocTimeout)
	defer cancel()

	name := filepath.Base(path)
	text := g.acquirer.Acquire(docCtx, path)

	if err := docCtx.Err(); errors.Is(err, context.DeadlineExceeded) {
		return invoice.Record{}, &invoice.UnextractedError{File: name, Reason: "extraction timed out"}
	}
	if text == "" {
		return invoice.Record{}, &invoice.UnextractedError{File: name, Reason: "no text acquired"}
	}
	if !invoice.Eligible(name, text) {
		return invoice.Record{}, &invoice.UnextractedError{File: name, Reason: "not a service invoice"}
	}
	return g.extractor.Extract(name, text)
}
