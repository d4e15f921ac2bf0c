// Package pipeline coordinates one reconciliation run end to end: ledger
// extraction, archive ingestion, classification and report assembly.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/validanfse/validanfse/internal/ingest"
	"github.com/validanfse/validanfse/internal/ledger"
	"github.com/validanfse/validanfse/internal/reconcile"
	"github.com/validanfse/validanfse/internal/report"
)

type Processor struct {
	Logger   *slog.Logger
	Ingestor *ingest.Ingestor
	Ledger   *ledger.Extractor
	Report   *report.Builder
}

func NewProcessor(logger *slog.Logger, ing *ingest.Ingestor, led *ledger.Extractor, rep *report.Builder) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Ingestor: ing, Ledger: led, Report: rep}
}

// Run reconciles one archive of invoices against one ledger report and
// assembles the validation workbook. The run ID is minted here, up front:
// it tags every log line and keys the run's private scratch subdirectory,
// so concurrent runs stay isolated. Ledger and archive failures abort the
// run; per-document failures only shape the unextracted list. The ledger is
// parsed first so a structurally broken report fails before OCR work
// starts.
func (p *Processor) Run(ctx context.Context, archivePath, ledgerPath string) (reconcile.RunResult, []byte, error) {
	runID := uuid.NewString()

	entries, err := p.Ledger.Extract(ledgerPath)
	if err != nil {
		p.Logger.Error("pipeline.ledger.failed", "run_id", runID, "ledger", ledgerPath, "err", err)
		return reconcile.RunResult{}, nil, err
	}
	p.Logger.Info("pipeline.ledger.ok", "run_id", runID, "entries", len(entries))

	batch, err := p.Ingestor.IngestArchive(ctx, runID, archivePath)
	if err != nil {
		p.Logger.Error("pipeline.ingest.failed", "run_id", runID, "archive", archivePath, "err", err)
		return reconcile.RunResult{}, nil, err
	}
	p.Logger.Info("pipeline.ingest.ok",
		"run_id", runID,
		"records", len(batch.Records),
		"unextracted", len(batch.Unextracted),
	)

	res := reconcile.Reconcile(runID, batch.Records, entries, batch.Unextracted)
	p.Logger.Info("pipeline.reconcile.ok",
		"run_id", res.RunID,
		"matched", len(res.Matched),
		"divergent", len(res.Divergent),
		"unmatched", len(res.Unmatched),
		"unextracted", len(res.Unextracted),
	)

	workbook, err := p.Report.Build(res)
	if err != nil {
		p.Logger.Error("pipeline.report.failed", "run_id", res.RunID, "err", err)
		return res, nil, err
	}
	return res, workbook, nil
}
