package invoice

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// Monetary token, R$ optional, tolerant of OCR-mangled thousands
	// separators and a stray space before the decimal pair.
	reMoney = regexp.MustCompile(`(R\$\s*)?(\d{1,3}(?:[.\s]\d{3})+|\d+),\s?(\d{2})\b`)

	// Accepted total/value phrases that anchor the authoritative amount.
	reAnchorLabel = regexp.MustCompile(`(?i)` +
		`valor\s+total\s+da\s+nfs[–—-]?e|` +
		`valor\s+total\s+do\s+rps|` +
		`valor\s+bruto\s+da\s+nota|` +
		`valor\s+l[íi]quido(?:\s+da\s+nfs[–—-]?e)?|` +
		`valor\s+(?:total\s+)?dos?\s+servi[çc]os?|` +
		`valor\s+da\s+nota|` +
		`valor\s+a\s+pagar|` +
		`total\s+da\s+nota|` +
		`total\s+geral`)

	// Tax names (with fuzzy OCR variants of ISS), rates, retentions,
	// deductions, discounts, calculation bases, installments, due dates,
	// quantities, descriptions and tax-ID patterns. A number living next to
	// one of these is a decoy, not the total.
	reBannedAmountContext = regexp.MustCompile(`(?i)` +
		`\b(?:iss|1ss|is5|i5s)\b|issqn|pis|cofins|csll|inss|irrf|` +
		`al[íi]quota|reten[çc]|dedu[çc]|desconto|base\s+de\s+c[áa]lculo|` +
		`parcel|venc|quantidade|descri[çc][ãa]o|` +
		`\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}|\d{3}\.\d{3}\.\d{3}-\d{2}`)

	reTaxToken = regexp.MustCompile(`(?i)\b(?:iss|1ss|is5|i5s)\b|issqn|pis|cofins|csll|inss|irrf`)
)

const (
	// Forward window scanned after each accepted anchor.
	anchorWindow = 300
	// Backward window checked for decoy markers right before a label.
	anchorContext = 25
	// Below this fraction of the window's largest candidate, a value is
	// treated as a quantity or unit count sitting near the total label.
	smallValueRatio = 0.15
	// Plausibility bounds for the global fallback scan.
	fallbackFloor   = "0.01"
	fallbackCeiling = "50000000"
	// Totals below this are suspicious; used only to break score ties.
	plausibilityFloor = "1.00"
)

type amountCandidate struct {
	value decimal.Decimal
	score float64
}

// extractAmount runs the anchored scoring chain: for every accepted total
// label, monetary tokens in a bounded forward window are scored (lower is
// better) and the best-scoring candidate over all anchors wins. When no
// anchored candidate exists anywhere, a global scan of plausible monetary
// tokens outside banned contexts picks the maximum. Returns nil when the
// document yields nothing.
func extractAmount(text string) *decimal.Decimal {
	var candidates []amountCandidate
	for _, loc := range reAnchorLabel.FindAllStringIndex(text, -1) {
		// a banned token immediately before the label means the label
		// itself is a decoy ("Base de Cálculo ... valor")
		lo := loc[0] - anchorContext
		if lo < 0 {
			lo = 0
		}
		if reBannedAmountContext.MatchString(text[lo:loc[1]]) {
			continue
		}
		candidates = append(candidates, scoreWindow(text, loc[1])...)
	}

	if best := pickBest(candidates); best != nil {
		return best
	}
	return fallbackScan(text)
}

// scoreWindow scores every monetary token in the window following an
// anchor. Same line beats a following line, a currency marker beats its
// absence, closer beats farther; values dwarfed by the window's largest are
// penalized, and values sharing the window with a tax token are penalized
// heavily unless they dominate it.
func scoreWindow(text string, anchorEnd int) []amountCandidate {
	end := anchorEnd + anchorWindow
	if end > len(text) {
		end = len(text)
	}
	window := text[anchorEnd:end]

	type token struct {
		idx   []int
		value decimal.Decimal
	}
	var tokens []token
	max := decimal.Zero
	for _, idx := range reMoney.FindAllStringSubmatchIndex(window, -1) {
		v, ok := parseMoney(window[idx[0]:idx[1]])
		if !ok {
			continue
		}
		tokens = append(tokens, token{idx: idx, value: v})
		if v.GreaterThan(max) {
			max = v
		}
	}
	if len(tokens) == 0 {
		return nil
	}

	taxInWindow := reTaxToken.MatchString(window)
	smallCutoff := max.Mul(decimal.NewFromFloat(smallValueRatio))

	var out []amountCandidate
	for _, t := range tokens {
		tok, v := t.idx, t.value

		score := 0.0
		lineOffset := strings.Count(window[:tok[0]], "\n")
		score += 2.0 * float64(lineOffset)
		if tok[2] < 0 { // no R$ marker captured
			score += 1.0
		}
		score += float64(tok[0]) / 100.0
		if max.IsPositive() && v.LessThanOrEqual(smallCutoff) && v.LessThan(max) {
			score += 8.0
		}
		if taxInWindow && v.LessThan(max) {
			score += 12.0
		}
		out = append(out, amountCandidate{value: v, score: score})
	}
	return out
}

// pickBest takes the lowest-score candidate; ties prefer the larger amount
// and amounts at or above the plausibility floor.
func pickBest(candidates []amountCandidate) *decimal.Decimal {
	if len(candidates) == 0 {
		return nil
	}
	floor := decimal.RequireFromString(plausibilityFloor)
	best := candidates[0]
	for _, c := range candidates[1:] {
		switch {
		case c.score < best.score:
			best = c
		case c.score == best.score:
			cPlausible := c.value.GreaterThanOrEqual(floor)
			bestPlausible := best.value.GreaterThanOrEqual(floor)
			if cPlausible && !bestPlausible {
				best = c
			} else if cPlausible == bestPlausible && c.value.GreaterThan(best.value) {
				best = c
			}
		}
	}
	v := best.value.Round(2)
	return &v
}

// fallbackScan is the last resort: the maximum monetary token of plausible
// magnitude whose line carries no banned context.
func fallbackScan(text string) *decimal.Decimal {
	lo := decimal.RequireFromString(fallbackFloor)
	hi := decimal.RequireFromString(fallbackCeiling)

	var best *decimal.Decimal
	for _, line := range strings.Split(text, "\n") {
		if reBannedAmountContext.MatchString(line) {
			continue
		}
		for _, m := range reMoney.FindAllString(line, -1) {
			v, ok := parseMoney(m)
			if !ok || v.LessThan(lo) || v.GreaterThan(hi) {
				continue
			}
			if best == nil || v.GreaterThan(*best) {
				vv := v
				best = &vv
			}
		}
	}
	if best != nil {
		v := best.Round(2)
		return &v
	}
	return nil
}

// parseMoney normalizes "R$ 1.234,50" (and OCR-mangled variants) into a
// decimal value.
func parseMoney(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "R$"), "r$")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}
