// Package archive decompresses the uploaded invoice bundle into the run's
// scratch directory. RAR archives go through an external tool (unrar or 7z,
// whichever is configured); ZIP archives are handled in-process.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/validanfse/validanfse/constants"
	"github.com/validanfse/validanfse/internal/common"
	"github.com/validanfse/validanfse/internal/runner"
)

type Config struct {
	Unrar    string // binary name or absolute path; if empty -> "unrar"
	SevenZip string // optional; preferred over unrar when set
}

type Extractor struct {
	cfg    Config
	runner runner.Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, r runner.Runner, logger *slog.Logger) *Extractor {
	if cfg.Unrar == "" {
		cfg.Unrar = "unrar"
	}
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		r = runner.Exec{Logger: logger}
	}
	return &Extractor{cfg: cfg, runner: r, logger: logger}
}

// Decompress populates dest with the archive's full file tree, nested
// folders included. Failures here are environment failures: the run cannot
// produce partial results from an unreadable bundle.
func (e *Extractor) Decompress(ctx context.Context, archivePath, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return common.NewAppError("ARCHIVE_DEST", "could not create destination", err)
	}

	ext := constants.NormalizeExt(filepath.Ext(archivePath))
	var err error
	switch ext {
	case "zip":
		err = e.unzip(archivePath, dest)
	default:
		err = e.extractWithTool(ctx, archivePath, dest)
	}
	if err != nil {
		return common.NewAppError("ARCHIVE_OPEN", fmt.Sprintf("could not decompress %q", filepath.Base(archivePath)), common.WrapError(err, common.ErrEnvironment.Error()))
	}

	e.logger.Info("archive decompressed", "archive", filepath.Base(archivePath), "dest", dest)
	return nil
}

func (e *Extractor) extractWithTool(ctx context.Context, archivePath, dest string) error {
	if e.cfg.SevenZip != "" {
		// 7z x -y -o<dest> <archive>
		_, errb, err := e.runner.Run(ctx, e.cfg.SevenZip, "x", "-y", "-o"+dest, archivePath)
		if err != nil {
			return fmt.Errorf("7z: %w: %s", err, truncateErr(errb))
		}
		return nil
	}
	// unrar x -o+ -y <archive> <dest>/
	_, errb, err := e.runner.Run(ctx, e.cfg.Unrar, "x", "-o+", "-y", archivePath, dest+string(os.PathSeparator))
	if err != nil {
		return fmt.Errorf("unrar: %w: %s", err, truncateErr(errb))
	}
	return nil
}

func (e *Extractor) unzip(archivePath, dest string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := zr.Close(); cerr != nil {
			e.logger.Warn("close zip reader", "error", cerr)
		}
	}()

	for _, f := range zr.File {
		name := filepath.Clean(f.Name)
		if strings.HasPrefix(name, "..") {
			continue
		}
		target := filepath.Join(dest, name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := copyZipEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

func copyZipEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, rc)
	return err
}

func truncateErr(b []byte) string {
	s := string(b)
	if len(s) > 512 {
		return s[:512]
	}
	return s
}
