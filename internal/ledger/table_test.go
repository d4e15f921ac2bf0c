package ledger

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
)

func frag(s string, x, y, w float64) pdf.Text {
	return pdf.Text{S: s, X: x, Y: y, W: w}
}

func TestRowCellsGapSplitting(t *testing.T) {
	row := []pdf.Text{
		frag("000", 10, 700, 15),
		frag("123", 25, 700, 15), // touching: same word
		frag("NFSE", 60, 700, 25),
		frag("15/03/", 120, 700, 28),
		frag("2024", 148.5, 700, 20), // hairline gap: same word
		frag("1.234,50", 200, 700, 40),
	}

	cells := rowCells(row)

	assert.Equal(t, []string{"000123", "NFSE", "15/03/2024", "1.234,50"}, cells)
}

func TestRowCellsWordGapInsertsSpace(t *testing.T) {
	row := []pdf.Text{
		frag("Data", 10, 700, 20),
		frag("de", 33, 700, 10), // narrow gap: same cell, new word
		frag("Entrada", 46, 700, 35),
	}

	assert.Equal(t, []string{"Data de Entrada"}, rowCells(row))
}

func TestRowCellsEmpty(t *testing.T) {
	assert.Empty(t, rowCells(nil))
}
