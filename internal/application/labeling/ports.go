package labeling

import (
	"context"

	"github.com/pexcode/qds-print-sdk/internal/domain/labeling"
)

// SymbolEncoder turns payloads into embeddable image references.
// EncodeQR may block and must honour ctx; EncodeLinear is synchronous.
type SymbolEncoder interface {
	EncodeQR(ctx context.Context, text string) (string, error)
	EncodeLinear(text string, symbology labeling.Symbology) (string, error)
}

// RenderTarget is the print surface a finished document is handed to.
//
// Load writes the document and returns a channel that receives exactly one
// value: nil once the document is ready, or the load failure. Print must
// not be called before that notification arrives.
type RenderTarget interface {
	Load(ctx context.Context, doc *labeling.LabelDocument) (<-chan error, error)
	Print(ctx context.Context) error
}

// Composer builds the printable document for a batch
type Composer interface {
	Compose(records []labeling.ShipmentRecord, codes labeling.CodeSet) (*labeling.LabelDocument, error)
}

// ReportSink receives the outcome of every non-empty print call
type ReportSink interface {
	Report(ctx context.Context, result *BatchResult) error
}
