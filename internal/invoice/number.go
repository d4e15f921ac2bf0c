package invoice

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	reDigitRun = regexp.MustCompile(`\d+`)
	reZeroRun  = regexp.MustCompile(`0{4,}`)
)

// NumberFromFileName derives the invoice number from the file name, which
// the issuing institution assigns and is more reliable than on-page
// serials. The first digit run is taken; a run of four or more zeros inside
// it separates an institutional prefix (branch/series) from the serial, so
// only the suffix after the last such run is kept. Returns "" when no
// usable number exists.
func NumberFromFileName(fileName string) string {
	raw := reDigitRun.FindString(filepath.Base(fileName))
	if raw == "" {
		return ""
	}
	parts := reZeroRun.Split(raw, -1)
	if len(parts) > 1 && parts[len(parts)-1] != "" {
		return strings.TrimLeft(parts[len(parts)-1], "0")
	}
	return strings.TrimLeft(raw, "0")
}
