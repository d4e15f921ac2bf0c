package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/validanfse/validanfse/internal/archive"
	"github.com/validanfse/validanfse/internal/common"
	"github.com/validanfse/validanfse/internal/ingest"
	"github.com/validanfse/validanfse/internal/invoice"
	"github.com/validanfse/validanfse/internal/ledger"
	"github.com/validanfse/validanfse/internal/pipeline"
	"github.com/validanfse/validanfse/internal/report"
	"github.com/validanfse/validanfse/internal/textacq"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		archivePath = flag.String("archive", "", "invoice archive (.rar/.zip) to reconcile (required)")
		ledgerPath  = flag.String("ledger", "", "ledger report PDF (required)")
		out         = flag.String("out", "", "output XLSX path (defaults next to the archive)")
		workers     = flag.Int("workers", 0, "extraction workers (0 = CPU count)")
		timeout     = flag.Duration("timeout", 0, "per-document timeout (0 = configured default)")
	)
	flag.Parse()

	if *archivePath == "" || *ledgerPath == "" {
		printError("Error: --archive and --ledger are required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*archivePath), "relatorio_validacao.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *workers > 0 {
		cfg.Run.Workers = *workers
	}
	if *timeout > 0 {
		cfg.Run.DocTimeout = *timeout
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	proc := buildProcessor(cfg, logger)

	start := time.Now()
	res, workbook, err := proc.Run(context.Background(), *archivePath, *ledgerPath)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, workbook, 0o644); err != nil {
		logger.Error("write report", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("run complete",
		"run_id", res.RunID,
		"matched", len(res.Matched),
		"divergent", len(res.Divergent),
		"unmatched", len(res.Unmatched),
		"unextracted", len(res.Unextracted),
		"report", *out,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func buildProcessor(cfg *common.Config, logger *slog.Logger) *pipeline.Processor {
	acq := textacq.NewAcquirer(textacq.Config{
		Pdftoppm:    cfg.Tools.Pdftoppm,
		Tesseract:   cfg.Tools.Tesseract,
		TessdataDir: cfg.Tools.TessdataDir,
		Language:    cfg.Extract.Language,
		DPI:         cfg.Extract.DPI,
	}, nil, logger)

	ext := invoice.NewExtractor(invoice.Config{
		MinYear:            cfg.Extract.MinYear,
		DropPartialRecords: cfg.Extract.DropPartialRecords,
	}, logger)

	arc := archive.NewExtractor(archive.Config{
		Unrar:    cfg.Tools.Unrar,
		SevenZip: cfg.Tools.SevenZip,
	}, nil, logger)

	ing := ingest.NewIngestor(ingest.Config{
		ScratchDir: cfg.Run.ScratchDir,
		Workers:    cfg.Run.Workers,
		DocTimeout: cfg.Run.DocTimeout,
	}, acq, ext, arc, logger)

	return pipeline.NewProcessor(logger, ing, ledger.NewExtractor(logger), report.NewBuilder(logger))
}
