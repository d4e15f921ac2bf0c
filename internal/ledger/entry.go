// Package ledger parses the tabular report PDF that invoices are
// reconciled against.
package ledger

import (
	"github.com/shopspring/decimal"
)

// Entry is one qualifying row of the ledger report. Date is kept as the
// raw cell text: the report and the invoices share the DD/MM/YYYY form and
// equality over it is the contract. Entries are immutable and live for one
// reconciliation run.
type Entry struct {
	Number  string          `json:"numero"`
	Date    string          `json:"data"`
	Amount  decimal.Decimal `json:"valor"`
	Species string          `json:"especie"`
}
