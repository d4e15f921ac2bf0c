package constants

// Species codes used by the ledger report to distinguish document types.
// Service invoices carry an NFS-prefixed species; goods invoices carry NFE.
const (
	SpeciesServicePrefix = "NFS"
	SpeciesGoods         = "NFE"
)

// MissingValue is the sentinel rendered wherever a date or amount could not
// be extracted. Never an empty string: readers must see the absence.
const MissingValue = "—"
