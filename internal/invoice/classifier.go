package invoice

import (
	"regexp"
	"strings"
)

// Accepts any NFS-e spelling (hyphen optional) or the literal phrase
// "Nota Fiscal".
var reServiceMarker = regexp.MustCompile(`(?i)NFS[–—-]?E|Nota\s+Fiscal\b`)

// Standalone goods-invoice token. NFe and NFS-e share a numbering scheme
// but are legally distinct documents.
var reGoodsMarker = regexp.MustCompile(`(?i)\bNFE\b`)

// EligibleName is the cheap pre-filter that runs before text acquisition.
// Files carrying the "fatura" marker are payment-slip attachments bundled
// alongside the invoice, never the invoice itself.
func EligibleName(fileName string) bool {
	return !strings.Contains(strings.ToLower(fileName), "fatura")
}

// Eligible is the authoritative filter over the acquired text: a document
// mentioning NFE without any service-invoice marker is a goods invoice, and
// a document with no Nota Fiscal marker at all is not an invoice.
func Eligible(fileName, text string) bool {
	if !EligibleName(fileName) {
		return false
	}
	if reGoodsMarker.MatchString(text) && !reServiceMarker.MatchString(text) {
		return false
	}
	return reServiceMarker.MatchString(text)
}
