package report

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/validanfse/validanfse/internal/invoice"
	"github.com/validanfse/validanfse/internal/ledger"
	"github.com/validanfse/validanfse/internal/reconcile"
)

func sampleResult() reconcile.RunResult {
	amount := decimal.RequireFromString("100.00")
	expected := ledger.Entry{Number: "000042", Date: "16/03/2024", Amount: amount, Species: "NFSE"}
	return reconcile.RunResult{
		RunID: "test-run",
		Matched: []reconcile.Item{{
			Record: invoice.Record{Number: "7", Date: "10/01/2024", Amount: &amount, SourceFile: "NF_7.pdf"},
		}},
		Divergent: []reconcile.Item{{
			Record:   invoice.Record{Number: "42", Date: "15/03/2024", Amount: &amount, SourceFile: "NF_42.pdf"},
			Expected: &expected,
		}},
		Unmatched: []reconcile.Item{{
			Record: invoice.Record{Number: "9", SourceFile: "NF_9.pdf"},
		}},
		Unextracted: []string{"ilegivel.pdf"},
	}
}

func flatten(rows [][]string) []string {
	var out []string
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}

func TestBuildWorkbook(t *testing.T) {
	wb, err := NewBuilder(nil).Build(sampleResult())
	require.NoError(t, err)
	require.NotEmpty(t, wb)

	f, err := excelize.OpenReader(bytes.NewReader(wb))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{sheet}, f.GetSheetList())

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	cells := flatten(rows)

	assert.Contains(t, cells, "Relatório de Validação de NFS-e")
	assert.Contains(t, cells, "Divergentes (1)")
	assert.Contains(t, cells, "NF_42.pdf")
	// both sides of the divergence are spelled out
	assert.Contains(t, cells, "000042")
	assert.Contains(t, cells, "16/03/2024")
	// missing values render as the explicit sentinel, never blank
	assert.Contains(t, cells, "—")
	assert.Contains(t, cells, "ilegivel.pdf")
}

func TestBuildWorkbookEmptyRun(t *testing.T) {
	wb, err := NewBuilder(nil).Build(reconcile.RunResult{RunID: "empty"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(wb))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Contains(t, flatten(rows), "Nenhum item.")
}
