// Package textacq turns an invoice PDF into best-effort text. Each page's
// native text layer is read first; pages with an empty or thin layer are
// rasterized and OCRed. Native and OCR output are concatenated rather than
// picked exclusively: mixed-quality scans often have a partially-correct
// native layer plus a more complete OCR pass, and the downstream field
// extractor is built to score away the extra false candidates.
package textacq

import (
	"context"
	"log/slog"
	"strings"

	"github.com/validanfse/validanfse/internal/runner"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TessdataDir string
	Language    string // default "por"
	DPI         int    // rasterization DPI, default 300
	MaxPages    int    // 0 = no limit

	// NativeThreshold is the minimum number of non-blank characters a page's
	// native layer must have before OCR is skipped for that page.
	NativeThreshold int
}

type Acquirer struct {
	cfg    Config
	runner runner.Runner
	logger *slog.Logger
}

func NewAcquirer(cfg Config, r runner.Runner, logger *slog.Logger) *Acquirer {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "por"
	}
	if cfg.DPI < 300 {
		cfg.DPI = 300
	}
	if cfg.NativeThreshold <= 0 {
		cfg.NativeThreshold = 32
	}
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		r = runner.Exec{Logger: logger}
	}
	return &Acquirer{cfg: cfg, runner: r, logger: logger}
}

// Acquire returns the document's combined native+OCR text. It never fails:
// an encrypted or unreadable document yields an empty string and the caller
// downgrades the file to unextracted.
func (a *Acquirer) Acquire(ctx context.Context, path string) string {
	pages := a.nativePages(path)

	native := strings.Join(pages, "\n")
	needOCR := make([]int, 0, len(pages))
	if len(pages) == 0 {
		needOCR = append(needOCR, -1) // unknown page count: OCR everything
	} else {
		for i, p := range pages {
			if len(strings.TrimSpace(p)) < a.cfg.NativeThreshold {
				needOCR = append(needOCR, i+1)
			}
		}
	}

	var ocr string
	if len(needOCR) > 0 {
		ocr = a.ocrPages(ctx, path, needOCR)
	}

	if native == "" && ocr == "" {
		a.logger.Warn("no text acquired", "path", path)
		return ""
	}
	return native + "\n\n" + ocr
}
