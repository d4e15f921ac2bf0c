package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/validanfse/validanfse/internal/invoice"
	"github.com/validanfse/validanfse/internal/ledger"
)

func amt(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func rec(number, date, amount, file string) invoice.Record {
	r := invoice.Record{Number: number, Date: date, SourceFile: file}
	if amount != "" {
		r.Amount = amt(amount)
	}
	return r
}

func entry(number, date, amount string) ledger.Entry {
	return ledger.Entry{
		Number:  number,
		Date:    date,
		Amount:  decimal.RequireFromString(amount),
		Species: "NFSE",
	}
}

func TestReconcileSingleExactMatch(t *testing.T) {
	res := Reconcile(
		"run",
		[]invoice.Record{rec("42", "15/03/2024", "100.00", "NF_42.pdf")},
		[]ledger.Entry{entry("42", "15/03/2024", "100.00")},
		nil,
	)

	require.Len(t, res.Matched, 1)
	assert.Empty(t, res.Divergent)
	assert.Empty(t, res.Unmatched)
	assert.Equal(t, "42", res.Matched[0].Number)
	assert.Nil(t, res.Matched[0].Expected)
}

func TestReconcileDateMismatchIsDivergent(t *testing.T) {
	res := Reconcile(
		"run",
		[]invoice.Record{rec("42", "15/03/2024", "100.00", "NF_42.pdf")},
		[]ledger.Entry{entry("42", "16/03/2024", "100.00")},
		nil,
	)

	require.Len(t, res.Divergent, 1)
	assert.Empty(t, res.Matched)
	require.NotNil(t, res.Divergent[0].Expected)
	assert.Equal(t, "16/03/2024", res.Divergent[0].Expected.Date)
}

func TestReconcileAmountMismatchIsUnmatched(t *testing.T) {
	res := Reconcile(
		"run",
		[]invoice.Record{rec("42", "15/03/2024", "100.00", "NF_42.pdf")},
		[]ledger.Entry{entry("42", "15/03/2024", "99.00")},
		nil,
	)

	require.Len(t, res.Unmatched, 1)
	assert.Empty(t, res.Matched)
	assert.Empty(t, res.Divergent)
}

func TestReconcileMissingDateIsWildcard(t *testing.T) {
	res := Reconcile(
		"run",
		[]invoice.Record{rec("42", "", "100.00", "NF_42.pdf")},
		[]ledger.Entry{entry("42", "15/03/2024", "100.00")},
		nil,
	)

	require.Len(t, res.Matched, 1)
}

func TestReconcileMissingAmountIsUnmatched(t *testing.T) {
	res := Reconcile(
		"run",
		[]invoice.Record{rec("42", "15/03/2024", "", "NF_42.pdf")},
		[]ledger.Entry{entry("42", "15/03/2024", "100.00")},
		nil,
	)

	require.Len(t, res.Unmatched, 1)
	assert.Nil(t, res.Unmatched[0].Amount)
}

func TestReconcileAbsentNumberIsUnmatched(t *testing.T) {
	res := Reconcile(
		"run",
		[]invoice.Record{rec("42", "15/03/2024", "100.00", "NF_42.pdf")},
		[]ledger.Entry{entry("7", "15/03/2024", "100.00")},
		nil,
	)

	require.Len(t, res.Unmatched, 1)
}

func TestReconcileMultipleCandidatesExactPairWins(t *testing.T) {
	res := Reconcile(
		"run",
		[]invoice.Record{rec("42", "16/03/2024", "200.00", "NF_42.pdf")},
		[]ledger.Entry{
			entry("42", "15/03/2024", "100.00"),
			entry("42", "16/03/2024", "200.00"),
		},
		nil,
	)

	require.Len(t, res.Matched, 1)
	assert.Empty(t, res.Divergent)
}

func TestReconcileMultipleCandidatesAmountOnlyFirstOccurrence(t *testing.T) {
	res := Reconcile(
		"run",
		[]invoice.Record{rec("42", "20/03/2024", "100.00", "NF_42.pdf")},
		[]ledger.Entry{
			entry("42", "15/03/2024", "100.00"),
			entry("42", "16/03/2024", "100.00"),
		},
		nil,
	)

	require.Len(t, res.Divergent, 1)
	require.NotNil(t, res.Divergent[0].Expected)
	assert.Equal(t, "15/03/2024", res.Divergent[0].Expected.Date)
}

func TestReconcileMultipleCandidatesNoAmountMatch(t *testing.T) {
	res := Reconcile(
		"run",
		[]invoice.Record{rec("42", "15/03/2024", "300.00", "NF_42.pdf")},
		[]ledger.Entry{
			entry("42", "15/03/2024", "100.00"),
			entry("42", "16/03/2024", "200.00"),
		},
		nil,
	)

	require.Len(t, res.Unmatched, 1)
}

func TestReconcileEquivalentDecimalRepresentationsMatch(t *testing.T) {
	res := Reconcile(
		"run",
		[]invoice.Record{rec("42", "15/03/2024", "100.5", "NF_42.pdf")},
		[]ledger.Entry{entry("42", "15/03/2024", "100.50")},
		nil,
	)

	require.Len(t, res.Matched, 1)
}

func TestReconcilePartition(t *testing.T) {
	records := []invoice.Record{
		rec("1", "10/01/2024", "10.00", "NF_1.pdf"),
		rec("2", "11/01/2024", "20.00", "NF_2.pdf"),
		rec("3", "12/01/2024", "30.00", "NF_3.pdf"),
		rec("4", "", "", "NF_4.pdf"),
	}
	entries := []ledger.Entry{
		entry("1", "10/01/2024", "10.00"),
		entry("2", "99/99/9999", "20.00"),
	}

	res := Reconcile("run", records, entries, []string{"ilegivel.pdf"})

	total := len(res.Matched) + len(res.Divergent) + len(res.Unmatched) + len(res.Unextracted)
	assert.Equal(t, len(records)+1, total)
	assert.Len(t, res.Matched, 1)
	assert.Len(t, res.Divergent, 1)
	assert.Len(t, res.Unmatched, 2)
	assert.Equal(t, []string{"ilegivel.pdf"}, res.Unextracted)
}

func TestReconcileSortsAscendingByIntegerNumber(t *testing.T) {
	records := []invoice.Record{
		rec("100", "10/01/2024", "1.00", "a.pdf"),
		rec("9", "10/01/2024", "1.00", "b.pdf"),
		rec("27", "10/01/2024", "1.00", "c.pdf"),
	}

	res := Reconcile("run", records, nil, nil)

	require.Len(t, res.Unmatched, 3)
	assert.Equal(t, "9", res.Unmatched[0].Number)
	assert.Equal(t, "27", res.Unmatched[1].Number)
	assert.Equal(t, "100", res.Unmatched[2].Number)

	require.Len(t, res.Invoices, 3)
	assert.Equal(t, "9", res.Invoices[0].Number)
}

func TestReconcileDeterministicAcrossRuns(t *testing.T) {
	records := []invoice.Record{
		rec("42", "20/03/2024", "100.00", "NF_42.pdf"),
		rec("7", "01/02/2024", "55.00", "NF_7.pdf"),
	}
	entries := []ledger.Entry{
		entry("42", "15/03/2024", "100.00"),
		entry("42", "16/03/2024", "100.00"),
		entry("7", "01/02/2024", "55.00"),
	}

	a := Reconcile("run", records, entries, []string{"x.pdf"})
	b := Reconcile("run", records, entries, []string{"x.pdf"})

	assert.Equal(t, a, b)
}
