package ledger

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/ledongthuc/pdf"
	"github.com/schollz/closestmatch"
	"github.com/shopspring/decimal"

	"github.com/validanfse/validanfse/constants"
	"github.com/validanfse/validanfse/internal/common"
)

// Header keyword fragments per required column, matched by containment
// against normalized header cells first, fuzzily second.
var columnKeywords = map[string][]string{
	"number":  {"docum", "numero", "número"},
	"species": {"espécie", "especie"},
	"date":    {"entrada", "movimento"},
	"amount":  {"valor"},
}

// fuzzyCutoff is the minimum levenshtein similarity for a fuzzy header
// resolution to be trusted.
const fuzzyCutoff = 0.5

// headerScanRows bounds how deep into the page the header may sit. Report
// title and period lines cluster into rows above the table, so the header
// is rarely row 0 but always near the top.
const headerScanRows = 8

type columns struct {
	number  int
	species int
	date    int
	amount  int
}

type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract parses every page's table rows, resolves the header, filters to
// the service-invoice species and returns the typed rows in page-then-row
// order. Header resolution failure is structural and fatal, unless the
// block-scan fallback still recovers rows.
func (e *Extractor) Extract(path string) ([]Entry, error) {
	rows, err := e.collectRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, common.NewAppError("LEDGER_EMPTY", "no table rows extracted from ledger report", common.ErrStructural)
	}

	cols, headerIdx, err := locateHeader(rows)
	if err != nil {
		e.logger.Warn("header resolution failed, trying block fallback", "error", err)
		if entries := fallbackRows(rows); len(entries) > 0 {
			return entries, nil
		}
		return nil, err
	}

	entries := e.entriesFromRows(rows[headerIdx+1:], cols)
	e.logger.Info("ledger extracted", "header_row", headerIdx, "rows", len(rows)-headerIdx-1, "entries", len(entries))
	return entries, nil
}

// locateHeader finds the table header among the leading rows: the first row
// where all four required columns resolve. Title and period lines sit above
// the header on most reports, so row 0 alone cannot be trusted. When no row
// qualifies, the error from the widest scanned row is returned, since the
// table header is normally the widest row near the top.
func locateHeader(rows [][]string) (columns, int, error) {
	var bestErr error
	bestWidth := -1
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		header := normalizeCells(rows[i])
		cols, err := resolveColumns(header)
		if err == nil {
			return cols, i, nil
		}
		if len(header) > bestWidth {
			bestWidth, bestErr = len(header), err
		}
	}
	return columns{}, -1, bestErr
}

func (e *Extractor) collectRows(path string) (_ [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = common.NewAppError("LEDGER_READ", fmt.Sprintf("ledger report unreadable: %v", r), common.ErrStructural)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, common.NewAppError("LEDGER_OPEN", "could not open ledger report", common.WrapError(err, common.ErrEnvironment.Error()))
	}
	defer func() { _ = f.Close() }()

	var rows [][]string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, row := range pageRows(p) {
			if !blankRow(row) {
				rows = append(rows, row)
			}
		}
	}
	return rows, nil
}

// resolveColumns maps the four required columns onto header cells:
// containment match against known keyword fragments first, then a fuzzy
// match over the observed cells with a similarity cutoff. An unresolved
// column fails the run; silent misalignment is worse than an error.
func resolveColumns(header []string) (columns, error) {
	find := func(category string) (int, error) {
		for i, cell := range header {
			for _, kw := range columnKeywords[category] {
				if strings.Contains(cell, kw) {
					return i, nil
				}
			}
		}
		if len(header) > 0 {
			cm := closestmatch.New(header, []int{2, 3})
			for _, kw := range columnKeywords[category] {
				best := cm.Closest(kw)
				if best != "" && levenshtein.Match(kw, best, nil) >= fuzzyCutoff {
					for i, cell := range header {
						if cell == best {
							return i, nil
						}
					}
				}
			}
		}
		return 0, common.NewAppError("LEDGER_HEADER",
			fmt.Sprintf("could not resolve %s column in header %v", category, header), common.ErrStructural)
	}

	var c columns
	var err error
	if c.number, err = find("number"); err != nil {
		return c, err
	}
	if c.species, err = find("species"); err != nil {
		return c, err
	}
	if c.date, err = find("date"); err != nil {
		return c, err
	}
	if c.amount, err = find("amount"); err != nil {
		return c, err
	}
	return c, nil
}

// entriesFromRows filters to the service-invoice species and parses the
// amount; rows with unparseable amounts are dropped, never kept as zero.
func (e *Extractor) entriesFromRows(rows [][]string, cols columns) []Entry {
	var entries []Entry
	for _, row := range rows {
		species := strings.ToUpper(strings.TrimSpace(cell(row, cols.species)))
		if species == constants.SpeciesGoods {
			continue
		}
		if !strings.HasPrefix(species, constants.SpeciesServicePrefix) {
			continue
		}

		amount, err := ParseAmount(cell(row, cols.amount))
		if err != nil {
			e.logger.Debug("dropping ledger row with unparseable amount", "row", row, "error", err)
			continue
		}

		entries = append(entries, Entry{
			Number:  strings.TrimSpace(cell(row, cols.number)),
			Date:    strings.TrimSpace(cell(row, cols.date)),
			Amount:  amount,
			Species: species,
		})
	}
	return entries
}

// ParseAmount parses a ledger amount cell: `.` thousands separator, `,`
// decimal separator, normalized to two fractional digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return v.Round(2), nil
}

func normalizeCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.ToLower(strings.Join(strings.Fields(c), " "))
	}
	return out
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
