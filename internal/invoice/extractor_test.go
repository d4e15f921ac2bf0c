package invoice

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/validanfse/validanfse/internal/common"
)

const fullInvoiceText = "NFS-e\nData de Emissão: 15/03/2024\nValor Total da NFS-e: R$ 1.234,50"

func TestExtractFullRecord(t *testing.T) {
	e := NewExtractor(Config{MinYear: 2020}, slog.Default())

	rec, err := e.Extract("NF_0000123045.pdf", fullInvoiceText)
	require.NoError(t, err)

	assert.Equal(t, "123045", rec.Number)
	assert.Equal(t, "15/03/2024", rec.Date)
	require.NotNil(t, rec.Amount)
	assert.Equal(t, "1234.50", rec.Amount.StringFixed(2))
	assert.Equal(t, "NF_0000123045.pdf", rec.SourceFile)
}

func TestExtractNoNumberInFileName(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	_, err := e.Extract("nota_fiscal.pdf", fullInvoiceText)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnextracted)

	var uerr *UnextractedError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "nota_fiscal.pdf", uerr.File)
}

func TestExtractNeitherDateNorAmount(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	_, err := e.Extract("NF_42.pdf", "NFS-e sem campos legíveis")
	assert.ErrorIs(t, err, common.ErrUnextracted)
}

func TestExtractPartialRecordKeptByDefault(t *testing.T) {
	e := NewExtractor(Config{MinYear: 2020}, nil)

	rec, err := e.Extract("NF_42.pdf", "NFS-e\nData de Emissão: 15/03/2024")
	require.NoError(t, err)
	assert.Equal(t, "42", rec.Number)
	assert.Equal(t, "15/03/2024", rec.Date)
	assert.Nil(t, rec.Amount)
	assert.Equal(t, "—", rec.AmountDisplay())
}

func TestExtractPartialRecordDropped(t *testing.T) {
	e := NewExtractor(Config{MinYear: 2020, DropPartialRecords: true}, nil)

	_, err := e.Extract("NF_42.pdf", "NFS-e\nData de Emissão: 15/03/2024")
	assert.ErrorIs(t, err, common.ErrUnextracted)
}

func TestExtractMissingDateKept(t *testing.T) {
	e := NewExtractor(Config{MinYear: 2020}, nil)

	rec, err := e.Extract("NF_42.pdf", "NFS-e\nValor Total da NFS-e: R$ 10,00")
	require.NoError(t, err)
	assert.Empty(t, rec.Date)
	assert.Equal(t, "—", rec.DateDisplay())
	require.NotNil(t, rec.Amount)
	assert.Equal(t, "10.00", rec.Amount.StringFixed(2))
}
