package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/validanfse/validanfse/internal/common"
)

func TestResolveColumnsContainment(t *testing.T) {
	header := normalizeCells([]string{"Documento", "Espécie", "Data de Entrada", "Valor Contábil"})

	cols, err := resolveColumns(header)
	require.NoError(t, err)

	assert.Equal(t, 0, cols.number)
	assert.Equal(t, 1, cols.species)
	assert.Equal(t, 2, cols.date)
	assert.Equal(t, 3, cols.amount)
}

func TestResolveColumnsFuzzyHeader(t *testing.T) {
	// OCR-mangled header cells still close enough to the known keywords
	header := normalizeCells([]string{"Documen1o", "Espécle", "Entrբda", "Va1or"})

	cols, err := resolveColumns(header)
	require.NoError(t, err)

	assert.Equal(t, 0, cols.number)
	assert.Equal(t, 1, cols.species)
	assert.Equal(t, 2, cols.date)
	assert.Equal(t, 3, cols.amount)
}

func TestResolveColumnsUnresolvableIsStructural(t *testing.T) {
	header := normalizeCells([]string{"Coluna A", "Coluna B"})

	_, err := resolveColumns(header)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStructural)
}

func TestLocateHeaderSkipsTitleRows(t *testing.T) {
	// title and period lines cluster into rows above the real header
	rows := [][]string{
		{"Relatório de Entradas - Janeiro/2024"},
		{"Empresa Exemplo LTDA", "CNPJ 00.000.000/0001-00"},
		{"Período:", "01/01/2024 a 31/01/2024"},
		{"Documento", "Espécie", "Entrada", "Valor Contábil"},
		{"000123", "NFSE", "15/01/2024", "1.234,50"},
	}

	cols, idx, err := locateHeader(rows)
	require.NoError(t, err)

	assert.Equal(t, 3, idx)
	assert.Equal(t, 0, cols.number)
	assert.Equal(t, 3, cols.amount)
}

func TestLocateHeaderNoQualifyingRow(t *testing.T) {
	rows := [][]string{
		{"Relatório de Entradas"},
		{"Coluna A", "Coluna B", "Coluna C", "Coluna D"},
	}

	_, idx, err := locateHeader(rows)
	require.Error(t, err)
	assert.Equal(t, -1, idx)
	assert.ErrorIs(t, err, common.ErrStructural)
}

func TestEntriesFromRowsSpeciesFilter(t *testing.T) {
	e := NewExtractor(nil)
	cols := columns{number: 0, species: 1, date: 2, amount: 3}
	rows := [][]string{
		{"000123", "NFSE", "15/03/2024", "1.234,50"},
		{"000124", "NFE", "15/03/2024", "10,00"},
		{"000125", "CTE", "15/03/2024", "20,00"},
		{"000126", "NFS-E", "16/03/2024", "30,00"},
	}

	entries := e.entriesFromRows(rows, cols)

	require.Len(t, entries, 2)
	assert.Equal(t, "000123", entries[0].Number)
	assert.Equal(t, "1234.50", entries[0].Amount.StringFixed(2))
	assert.Equal(t, "000126", entries[1].Number)
}

func TestEntriesFromRowsDropsUnparseableAmount(t *testing.T) {
	e := NewExtractor(nil)
	cols := columns{number: 0, species: 1, date: 2, amount: 3}
	rows := [][]string{
		{"1", "NFSE", "15/03/2024", "sem valor"},
		{"2", "NFSE", "15/03/2024", "50,00"},
	}

	entries := e.entriesFromRows(rows, cols)

	require.Len(t, entries, 1)
	assert.Equal(t, "2", entries[0].Number)
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.234,50", "1234.50"},
		{"50,00", "50.00"},
		{" 1 234,50 ", "1234.50"},
		{"0,09", "0.09"},
	}
	for _, tc := range cases {
		v, err := ParseAmount(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, v.StringFixed(2), tc.in)
	}

	_, err := ParseAmount("abc")
	assert.Error(t, err)
}

func TestFallbackRows(t *testing.T) {
	rows := [][]string{
		{"Relatório de Entradas"},
		{"000123", "NFSE", "15/03/2024", "1.234,50"},
		{"000123", "NFSE", "15/03/2024", "1.234,50"}, // duplicate band
		{"000124", "NFE", "15/03/2024", "10,00"},
		{"000125", "NFSE", "16/03/2024"}, // no amount cell
	}

	entries := fallbackRows(rows)

	require.Len(t, entries, 1)
	assert.Equal(t, "123", entries[0].Number)
	assert.Equal(t, "15/03/2024", entries[0].Date)
	assert.Equal(t, "1234.50", entries[0].Amount.StringFixed(2))
	assert.Equal(t, "NFSE", entries[0].Species)
}

func TestExtractMissingFileIsError(t *testing.T) {
	e := NewExtractor(nil)

	_, err := e.Extract("/nonexistent/relatorio.pdf")
	require.Error(t, err)
}
