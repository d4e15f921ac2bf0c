package ledger

import (
	"regexp"
	"strings"
)

var (
	reRowDate   = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	reRowAmount = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})*,\d{2}$`)
	reRowDigits = regexp.MustCompile(`^\d+$`)
)

// fallbackRows recovers entries when no header could be resolved: any row
// carrying an NFSE species cell together with a number, a date and an
// amount cell is taken as a ledger row. Duplicates are collapsed.
func fallbackRows(rows [][]string) []Entry {
	var entries []Entry
	seen := make(map[string]struct{})

	for _, row := range rows {
		var isNFSE bool
		var number, date, amount string
		for _, c := range row {
			c = strings.TrimSpace(c)
			switch {
			case strings.ToUpper(c) == "NFSE" || strings.ToUpper(c) == "NFS-E":
				isNFSE = true
			case number == "" && reRowDigits.MatchString(c):
				number = c
			case date == "" && reRowDate.MatchString(c):
				date = c
			case amount == "" && reRowAmount.MatchString(c):
				amount = c
			}
		}
		if !isNFSE || number == "" || date == "" || amount == "" {
			continue
		}

		v, err := ParseAmount(amount)
		if err != nil {
			continue
		}
		e := Entry{
			Number:  strings.TrimLeft(number, "0"),
			Date:    date,
			Amount:  v,
			Species: "NFSE",
		}
		key := e.Number + "|" + e.Date + "|" + e.Amount.StringFixed(2)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, e)
	}
	return entries
}
