package invoice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reDate = regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{2,4})\b`)

	// Label-anchored forms, value within a bounded span after the label.
	reIssueDate   = regexp.MustCompile(`(?i)data\s+(?:d[ae]\s+)?emiss[ãa]o\D{0,40}?(\d{2}/\d{2}/\d{2,4})`)
	reServiceDate = regexp.MustCompile(`(?i)data\s+(?:d[ae]\s+)?(?:presta[çc][ãa]o|execu[çc][ãa]o|compet[êe]ncia|servi[çc]o)\D{0,40}?(\d{2}/\d{2}/\d{2,4})`)

	reTimeOfDay = regexp.MustCompile(`\d{1,2}:\d{2}`)
	reDateRange = regexp.MustCompile(`\d{2}/\d{2}/\d{2,4}\s*(?:a|à|at[ée]|[-–—])\s*\d{2}/\d{2}/\d{2,4}`)

	// Dates inside these windows are printing dates, due dates, installment
	// schedules, validity/franchise spans or incorporation dates, never the
	// issue date.
	reBannedDateContext = regexp.MustCompile(`(?i)impress|venc|parcel|valid|franquia|constitui`)

	// The breakdown-of-services section ends the header region.
	reBreakdown = regexp.MustCompile(`(?i)discrimina[çc][ãa]o|detalhamento\s+dos\s+(?:servi[çc]os|tributos)`)
)

const dateContextWindow = 30

// extractDate walks the priority chain: explicit issue-date label, then
// service/execution label, then the latest plausible date in the header
// region, then the latest plausible date anywhere. Each step runs only when
// the previous one yielded nothing. Returns "" when no plausible date
// survives; a missing date is not fatal for the record.
func (e *Extractor) extractDate(text string) string {
	for _, m := range reIssueDate.FindAllStringSubmatch(text, -1) {
		if d, ok := e.canonDate(m[1]); ok {
			return d
		}
	}

	for _, line := range strings.Split(text, "\n") {
		m := reServiceDate.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if reTimeOfDay.MatchString(line) || reDateRange.MatchString(line) {
			continue
		}
		if d, ok := e.canonDate(m[1]); ok {
			return d
		}
	}

	header := text
	if loc := reBreakdown.FindStringIndex(text); loc != nil {
		header = text[:loc[0]]
	}
	if d := e.latestPlausibleDate(header); d != "" {
		return d
	}
	return e.latestPlausibleDate(text)
}

// latestPlausibleDate scans every date in scope, drops those in banned
// contexts or on range lines, and keeps the calendrically latest one.
func (e *Extractor) latestPlausibleDate(scope string) string {
	var best string
	var bestT time.Time

	ranges := reDateRange.FindAllStringIndex(scope, -1)
	for _, loc := range reDate.FindAllStringIndex(scope, -1) {
		lo := loc[0] - dateContextWindow
		if lo < 0 {
			lo = 0
		}
		hi := loc[1] + dateContextWindow
		if hi > len(scope) {
			hi = len(scope)
		}
		if reBannedDateContext.MatchString(scope[lo:hi]) {
			continue
		}
		if insideAny(loc, ranges) {
			continue
		}
		d, ok := e.canonDate(scope[loc[0]:loc[1]])
		if !ok {
			continue
		}
		t, _ := time.Parse("02/01/2006", d)
		if best == "" || t.After(bestT) {
			best, bestT = d, t
		}
	}
	return best
}

func insideAny(loc []int, ranges [][]int) bool {
	for _, r := range ranges {
		if loc[0] >= r[0] && loc[1] <= r[1] {
			return true
		}
	}
	return false
}

// canonDate canonicalizes DD/MM/YY(YY) to a validated DD/MM/YYYY. Two-digit
// years fold to 20xx for 00..49 and 19xx otherwise. Dates below the
// configured minimum year are rejected: documents predating system adoption
// are extraction failures for the date, not for the whole record.
func (e *Extractor) canonDate(s string) (string, bool) {
	m := reDate.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	year := m[3]
	if len(year) == 2 {
		yy, _ := strconv.Atoi(year)
		if yy <= 49 {
			year = fmt.Sprintf("20%02d", yy)
		} else {
			year = fmt.Sprintf("19%02d", yy)
		}
	}
	out := fmt.Sprintf("%s/%s/%s", m[1], m[2], year)
	t, err := time.Parse("02/01/2006", out)
	if err != nil {
		return "", false
	}
	if t.Year() < e.cfg.MinYear {
		return "", false
	}
	return out, true
}
