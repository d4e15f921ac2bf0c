package ledger

import (
	"sort"

	"github.com/ledongthuc/pdf"
)

// Geometry thresholds for clustering positioned text into rows and cells,
// in PDF points.
const (
	rowTolerance = 3.0
	cellGap      = 8.0
	wordGap      = 1.5
)

// pageRows reconstructs a page's table rows from its positioned text:
// fragments are grouped into rows by Y, ordered by X, and split into cells
// wherever the horizontal gap is wide enough to be a column boundary.
func pageRows(p pdf.Page) [][]string {
	content := p.Content()
	if len(content.Text) == 0 {
		return nil
	}

	frags := make([]pdf.Text, len(content.Text))
	copy(frags, content.Text)
	sort.SliceStable(frags, func(i, j int) bool {
		if frags[i].Y != frags[j].Y {
			return frags[i].Y > frags[j].Y // PDF Y grows upward
		}
		return frags[i].X < frags[j].X
	})

	var rows [][]pdf.Text
	for _, f := range frags {
		if f.S == "" {
			continue
		}
		if n := len(rows); n > 0 && abs(rows[n-1][0].Y-f.Y) <= rowTolerance {
			rows[n-1] = append(rows[n-1], f)
			continue
		}
		rows = append(rows, []pdf.Text{f})
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		out = append(out, rowCells(row))
	}
	return out
}

// rowCells merges a row's fragments left to right: a wide gap starts a new
// cell, a narrow one continues the current word or inserts a space.
func rowCells(row []pdf.Text) []string {
	var cells []string
	var cur string
	var curEnd float64

	for i, f := range row {
		if i == 0 {
			cur = f.S
			curEnd = f.X + f.W
			continue
		}
		gap := f.X - curEnd
		switch {
		case gap > cellGap:
			cells = append(cells, cur)
			cur = f.S
		case gap > wordGap:
			cur += " " + f.S
		default:
			cur += f.S
		}
		curEnd = f.X + f.W
	}
	if cur != "" {
		cells = append(cells, cur)
	}
	return cells
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
