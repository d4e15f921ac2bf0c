package textacq

import (
	"github.com/ledongthuc/pdf"
)

// nativePages reads the native text layer page by page. ledongthuc/pdf
// panics on some malformed xref tables, so the whole read is fenced; any
// failure degrades to "no native layer" and lets OCR take over.
func (a *Acquirer) nativePages(path string) (pages []string) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("native text layer unreadable", "path", path, "panic", r)
			pages = nil
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		a.logger.Debug("pdf open failed", "path", path, "error", err)
		return nil
	}
	defer func() { _ = f.Close() }()

	total := r.NumPage()
	if a.cfg.MaxPages > 0 && total > a.cfg.MaxPages {
		total = a.cfg.MaxPages
	}
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, txt)
	}
	return pages
}
