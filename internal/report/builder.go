// Package report renders a reconciliation run as an XLSX workbook. Content
// only: each section lists both sides of every divergence and spells out
// missing values with an explicit sentinel.
package report

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/validanfse/validanfse/constants"
	"github.com/validanfse/validanfse/internal/reconcile"
)

const sheet = "Validação"

type Builder struct {
	logger *slog.Logger
}

func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build returns the validation report workbook as bytes.
func (b *Builder) Build(res reconcile.RunResult) ([]byte, error) {
	f := excelize.NewFile()
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defIdx, _ := f.GetSheetIndex("Sheet1"); defIdx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	row := 1
	write := func(col int, v any) {
		name, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, name, v)
	}

	write(1, "Relatório de Validação de NFS-e")
	row += 2

	write(1, "Resumo")
	row++
	for _, s := range []struct {
		label string
		n     int
	}{
		{"Encontradas e correspondentes", len(res.Matched)},
		{"Divergentes (data ou valor)", len(res.Divergent)},
		{"Não encontradas no relatório", len(res.Unmatched)},
		{"Sem dados extraídos", len(res.Unextracted)},
	} {
		write(1, s.label)
		write(2, s.n)
		row++
	}
	row++

	writeSection := func(title string, items []reconcile.Item) {
		write(1, title)
		row++
		if len(items) == 0 {
			write(1, "Nenhum item.")
			row += 2
			return
		}
		for i, h := range []string{"Número", "Data", "Valor (R$)", "Arquivo", "Esperado: Número", "Esperado: Data", "Esperado: Valor (R$)"} {
			write(i+1, h)
		}
		row++
		for _, it := range items {
			write(1, it.Number)
			write(2, it.DateDisplay())
			write(3, it.AmountDisplay())
			write(4, it.SourceFile)
			if it.Expected != nil {
				write(5, it.Expected.Number)
				write(6, orSentinel(it.Expected.Date))
				write(7, it.Expected.Amount.StringFixed(2))
			}
			row++
		}
		row++
	}

	writeSection(fmt.Sprintf("Encontradas e correspondentes (%d)", len(res.Matched)), res.Matched)
	writeSection(fmt.Sprintf("Divergentes (%d)", len(res.Divergent)), res.Divergent)
	writeSection(fmt.Sprintf("Não encontradas no relatório (%d)", len(res.Unmatched)), res.Unmatched)

	write(1, fmt.Sprintf("Sem dados extraídos (%d)", len(res.Unextracted)))
	row++
	if len(res.Unextracted) == 0 {
		write(1, "Nenhum item.")
		row++
	}
	for _, name := range res.Unextracted {
		write(1, name)
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	b.logger.Info("report assembled", "run_id", res.RunID, "bytes", buf.Len())
	return buf.Bytes(), nil
}

func orSentinel(s string) string {
	if s == "" {
		return constants.MissingValue
	}
	return s
}
