// Package reconcile classifies extracted invoices against the ledger
// index. It is a pure, single-pass function over already-materialized
// inputs; no concurrency is needed or beneficial here.
package reconcile

import (
	"sort"
	"strconv"
	"strings"

	"github.com/validanfse/validanfse/internal/invoice"
	"github.com/validanfse/validanfse/internal/ledger"
)

// Item is an invoice record with, when classified divergent, the ledger
// entry it was expected to match. Both sides carry {number, date, amount}
// so the renderer never re-derives anything.
type Item struct {
	invoice.Record
	Expected *ledger.Entry `json:"esperado,omitempty"`
}

// RunResult partitions one run's candidate documents. Every candidate file
// appears in exactly one of the four lists; the full invoice and ledger
// lists ride along for the renderer, all sorted ascending by integer
// number.
type RunResult struct {
	RunID string `json:"run_id"`

	Matched     []Item   `json:"encontradas"`
	Divergent   []Item   `json:"divergentes"`
	Unmatched   []Item   `json:"nao_encontradas"`
	Unextracted []string `json:"sem_dados"`

	Invoices []invoice.Record `json:"notas"`
	Ledger   []ledger.Entry   `json:"relatorio"`
}

// Reconcile classifies each invoice record against the ledger. Per record:
//
//   - no integer number, nil amount, or no ledger entry with the number ->
//     UNMATCHED
//   - exactly one entry: equal amount and (equal date or nil invoice date)
//     -> MATCHED; equal amount, differing non-nil dates -> DIVERGENT with
//     the entry attached; unequal amount -> UNMATCHED
//   - several entries: an exact amount+date pair -> MATCHED; else the first
//     amount-only match in ledger extraction order -> DIVERGENT; else
//     UNMATCHED
//
// Ledger extraction order (page order, then row order) is the documented
// tie-break, which keeps runs over identical inputs byte-identical. The run
// ID is minted by the caller at run start, where it also keys the run's
// scratch space.
func Reconcile(runID string, records []invoice.Record, entries []ledger.Entry, unextracted []string) RunResult {
	idx := make(map[int64][]*ledger.Entry)
	for i := range entries {
		n, err := strconv.ParseInt(strings.TrimSpace(entries[i].Number), 10, 64)
		if err != nil {
			continue
		}
		idx[n] = append(idx[n], &entries[i])
	}

	res := RunResult{
		RunID:       runID,
		Unextracted: append([]string(nil), unextracted...),
		Invoices:    append([]invoice.Record(nil), records...),
		Ledger:      append([]ledger.Entry(nil), entries...),
	}

	for _, rec := range records {
		res.classify(rec, idx)
	}

	sortItems(res.Matched)
	sortItems(res.Divergent)
	sortItems(res.Unmatched)
	sort.Strings(res.Unextracted)
	sort.SliceStable(res.Invoices, func(i, j int) bool {
		return numberOf(res.Invoices[i].Number) < numberOf(res.Invoices[j].Number)
	})
	sort.SliceStable(res.Ledger, func(i, j int) bool {
		return numberOf(res.Ledger[i].Number) < numberOf(res.Ledger[j].Number)
	})
	return res
}

func (res *RunResult) classify(rec invoice.Record, idx map[int64][]*ledger.Entry) {
	num, err := strconv.ParseInt(rec.Number, 10, 64)
	if err != nil {
		res.Unmatched = append(res.Unmatched, Item{Record: rec})
		return
	}
	matches := idx[num]
	if len(matches) == 0 || rec.Amount == nil {
		// A record kept with a missing-amount sentinel can never satisfy
		// amount equality; its UNMATCHED entry is informational.
		res.Unmatched = append(res.Unmatched, Item{Record: rec})
		return
	}

	if len(matches) > 1 {
		for _, m := range matches {
			if m.Amount.Equal(*rec.Amount) && sameDate(m.Date, rec.Date) {
				res.Matched = append(res.Matched, Item{Record: rec})
				return
			}
		}
		for _, m := range matches {
			if m.Amount.Equal(*rec.Amount) {
				res.Divergent = append(res.Divergent, Item{Record: rec, Expected: m})
				return
			}
		}
		res.Unmatched = append(res.Unmatched, Item{Record: rec})
		return
	}

	m := matches[0]
	if !m.Amount.Equal(*rec.Amount) {
		res.Unmatched = append(res.Unmatched, Item{Record: rec})
		return
	}
	// nil invoice date is a wildcard: amount agreement alone matches
	if rec.Date == "" || sameDate(m.Date, rec.Date) {
		res.Matched = append(res.Matched, Item{Record: rec})
		return
	}
	res.Divergent = append(res.Divergent, Item{Record: rec, Expected: m})
}

func sameDate(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b) && strings.TrimSpace(a) != ""
}

func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return numberOf(items[i].Number) < numberOf(items[j].Number)
	})
}

func numberOf(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return -1
	}
	return n
}
