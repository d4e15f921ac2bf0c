package constants

// MatchStatus is the terminal classification of an invoice against the ledger.
type MatchStatus string

const (
	StatusMatched     MatchStatus = "MATCHED"     // number + amount (+ date) agree
	StatusDivergent   MatchStatus = "DIVERGENT"   // amount agrees, date does not
	StatusUnmatched   MatchStatus = "UNMATCHED"   // no ledger entry agrees on amount
	StatusUnextracted MatchStatus = "UNEXTRACTED" // no usable record from document
)
