// Package invoice holds the invoice record model and the heuristic field
// extractor that recovers {number, date, amount} from acquired PDF text.
package invoice

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/validanfse/validanfse/constants"
	"github.com/validanfse/validanfse/internal/common"
)

// Record is one extracted invoice. Number is always present; Date and
// Amount may be missing and are then rendered with an explicit sentinel.
// Records are immutable once produced.
type Record struct {
	Number     string           `json:"numero"`
	Date       string           `json:"data,omitempty"`  // DD/MM/YYYY
	Amount     *decimal.Decimal `json:"valor,omitempty"` // 2 fractional digits
	SourceFile string           `json:"arquivo"`
}

// DateDisplay returns the issue date or the missing-value sentinel.
func (r Record) DateDisplay() string {
	if r.Date == "" {
		return constants.MissingValue
	}
	return r.Date
}

// AmountDisplay returns the amount with two decimals or the sentinel.
func (r Record) AmountDisplay() string {
	if r.Amount == nil {
		return constants.MissingValue
	}
	return r.Amount.StringFixed(2)
}

// UnextractedError reports a per-document extraction failure. It unwraps to
// common.ErrUnextracted so callers can route the file instead of aborting.
type UnextractedError struct {
	File   string
	Reason string
}

func (e *UnextractedError) Error() string {
	return fmt.Sprintf("unextracted %q: %s", e.File, e.Reason)
}

func (e *UnextractedError) Unwrap() error { return common.ErrUnextracted }
