package textacq

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// digitsWhitelist keeps tesseract focused on the characters that make up
// numbers, dates and amounts on numeric-heavy regions.
const digitsWhitelist = "tessedit_char_whitelist=0123456789,./R$ "

// ocrPages rasterizes the requested pages (all of them when pageNums is
// [-1]), binarizes each image and OCRs it twice: a digits-constrained pass
// for numbers, dates and amounts, and an unconstrained pass so anchor
// labels on a scanned page stay visible to the amount matcher even when the
// rest of the document has a native layer.
func (a *Acquirer) ocrPages(ctx context.Context, path string, pageNums []int) string {
	tmpDir, err := os.MkdirTemp("", "vn-pp-*")
	if err != nil {
		a.logger.Warn("ocr temp dir", "error", err)
		return ""
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			a.logger.Warn("remove ocr temp dir", "path", tmpDir, "error", rerr)
		}
	}()

	images := a.rasterize(ctx, path, tmpDir, pageNums)
	if len(images) == 0 {
		return ""
	}

	var b strings.Builder
	for _, img := range images {
		bin, err := binarize(img)
		if err != nil {
			a.logger.Warn("binarize failed", "image", img, "error", err)
			bin = img
		}
		txt, err := a.tesseract(ctx, bin, true)
		if err != nil {
			a.logger.Warn("tesseract digits pass failed", "image", img, "error", err)
		}
		plain, err := a.tesseract(ctx, bin, false)
		if err != nil {
			a.logger.Warn("tesseract plain pass failed", "image", img, "error", err)
		}
		txt = txt + "\n" + plain
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
	}
	return b.String()
}

// rasterize renders pages to PNG via pdftoppm and returns the image paths
// for the pages in pageNums ([-1] selects every rendered page).
func (a *Acquirer) rasterize(ctx context.Context, path, tmpDir string, pageNums []int) []string {
	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png -gray <in.pdf> <tmp/page>
	_, errb, err := a.runner.Run(ctx, a.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", a.cfg.DPI), "-png", "-gray", path, prefix)
	if err != nil {
		a.logger.Warn("pdftoppm failed", "path", path, "stderr", string(errb))
		return nil
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if a.cfg.MaxPages > 0 && len(matches) > a.cfg.MaxPages {
		matches = matches[:a.cfg.MaxPages]
	}
	if len(pageNums) == 1 && pageNums[0] == -1 {
		return matches
	}

	want := make(map[int]struct{}, len(pageNums))
	for _, n := range pageNums {
		want[n] = struct{}{}
	}
	var out []string
	for i, m := range matches {
		if _, ok := want[i+1]; ok {
			out = append(out, m)
		}
	}
	return out
}

func (a *Acquirer) tesseract(ctx context.Context, image string, digitsOnly bool) (string, error) {
	args := []string{image, "stdout", "-l", a.cfg.Language, "--oem", "3", "--psm", "6"}
	if digitsOnly {
		args = append(args, "-c", digitsWhitelist)
	}
	if a.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", a.cfg.TessdataDir)
	}

	out, errb, err := a.runner.Run(ctx, a.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, string(errb))
	}
	return string(out), nil
}
