package labeling

import "time"

// LabelDocument is one composed, printable document holding a label
// block per record. It is built fresh for every print call and handed
// to the render target once.
type LabelDocument struct {
	Title       string
	HTML        string
	PrintedAt   time.Time
	RecordIDs   []string
	PaperSize   PaperSize
	Orientation Orientation
	Margins     Margins
	// LookupMisses lists records whose codes were missing at composition
	LookupMisses []string
}

// BlockCount returns the number of label blocks in the document
func (d *LabelDocument) BlockCount() int {
	return len(d.RecordIDs)
}
