package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/validanfse/validanfse/internal/archive"
	"github.com/validanfse/validanfse/internal/common"
	"github.com/validanfse/validanfse/internal/ingest"
	"github.com/validanfse/validanfse/internal/invoice"
	"github.com/validanfse/validanfse/internal/ledger"
	"github.com/validanfse/validanfse/internal/pipeline"
	"github.com/validanfse/validanfse/internal/report"
	"github.com/validanfse/validanfse/internal/server"
	"github.com/validanfse/validanfse/internal/textacq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

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

	proc := pipeline.NewProcessor(logger, ing, ledger.NewExtractor(logger), report.NewBuilder(logger))

	r := gin.Default()
	server.NewHandler(proc, cfg.Server.UploadDir, logger).Register(r)

	logger.Info("reconciled listening", "addr", cfg.Server.Addr)
	if err := r.Run(cfg.Server.Addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
