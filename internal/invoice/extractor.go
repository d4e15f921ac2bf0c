package invoice

import (
	"log/slog"
)

type Config struct {
	MinYear int // issue dates before this year are extraction failures

	// DropPartialRecords discards records whose amount could not be
	// extracted instead of keeping them with a missing-value sentinel.
	DropPartialRecords bool
}

// Extractor recovers {number, date, amount} from a document's acquired
// text and file name. It is pure: safe for concurrent use.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if cfg.MinYear <= 0 {
		cfg.MinYear = 2020
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// Extract returns the invoice record, or an *UnextractedError when no
// number can be derived or when both date and amount are unobtainable. A
// record with a number but a missing date or amount is still constructed;
// the missing field is rendered later with an explicit sentinel.
func (e *Extractor) Extract(fileName, text string) (Record, error) {
	number := NumberFromFileName(fileName)
	if number == "" {
		return Record{}, &UnextractedError{File: fileName, Reason: "no document number in file name"}
	}

	date := e.extractDate(text)
	amount := extractAmount(text)

	if date == "" && amount == nil {
		return Record{}, &UnextractedError{File: fileName, Reason: "neither date nor amount found"}
	}
	if amount == nil && e.cfg.DropPartialRecords {
		return Record{}, &UnextractedError{File: fileName, Reason: "amount not found"}
	}

	rec := Record{Number: number, Date: date, Amount: amount, SourceFile: fileName}
	e.logger.Debug("invoice extracted",
		"file", fileName,
		"numero", rec.Number,
		"data", rec.DateDisplay(),
		"valor", rec.AmountDisplay(),
	)
	return rec, nil
}
