package labeling

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pexcode/qds-print-sdk/internal/domain/labeling"
	"github.com/pexcode/qds-print-sdk/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrUnsupportedSymbology is wrapped in an EncodingError when the generator
// is asked for a symbology it has no payload for.
var ErrUnsupportedSymbology = errors.New("unsupported symbology")

// GeneratorConfig controls which codes are produced per record
type GeneratorConfig struct {
	// TrackURL is the tracking page the QR code points at
	TrackURL string
	// Symbologies lists the codes produced per record. Empty means QR and CODE39.
	Symbologies []labeling.Symbology
	// MaxConcurrency bounds in-flight records; zero or less means unbounded
	MaxConcurrency int
}

// CodeGenerator encodes the codes of a batch concurrently
type CodeGenerator struct {
	encoder SymbolEncoder
	config  GeneratorConfig
	metrics *telemetry.LabelMetrics
	logger  *zap.Logger
}

// NewCodeGenerator creates a new CodeGenerator
func NewCodeGenerator(encoder SymbolEncoder, config GeneratorConfig, metrics *telemetry.LabelMetrics, logger *zap.Logger) *CodeGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(config.Symbologies) == 0 {
		config.Symbologies = labeling.AllSymbologies()
	}
	return &CodeGenerator{
		encoder: encoder,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// Generate encodes every record and returns the codes keyed by record id.
//
// It is all-or-nothing: the first encode failure cancels the remaining
// work, Generate waits for every outstanding encode to return, and then
// reports that first failure as an *labeling.EncodingError with no partial
// mapping. The mapping is assembled in input order once all work has
// settled, so a duplicated id keeps its last record's codes.
func (g *CodeGenerator) Generate(ctx context.Context, records []labeling.ShipmentRecord) (labeling.CodeSet, error) {
	if len(records) == 0 {
		return labeling.CodeSet{}, nil
	}

	artifacts := make([]labeling.CodeArtifact, len(records))

	group, gctx := errgroup.WithContext(ctx)
	if g.config.MaxConcurrency > 0 {
		group.SetLimit(g.config.MaxConcurrency)
	}

	for i := range records {
		group.Go(func() error {
			artifact, err := g.encodeRecord(gctx, records[i])
			if err != nil {
				return err
			}
			artifacts[i] = artifact
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	codes := make(labeling.CodeSet, len(records))
	for _, a := range artifacts {
		codes[a.RecordID] = a
	}
	return codes, nil
}

func (g *CodeGenerator) encodeRecord(ctx context.Context, record labeling.ShipmentRecord) (labeling.CodeArtifact, error) {
	artifact := labeling.CodeArtifact{RecordID: record.ID}

	for _, sym := range g.config.Symbologies {
		// Another record already failed; do not start new encodes.
		if err := ctx.Err(); err != nil {
			return artifact, err
		}

		var err error
		switch sym {
		case labeling.SymbologyQR:
			artifact.Track, err = g.encoder.EncodeQR(ctx, g.TrackPayload(record))
		case labeling.SymbologyCode39:
			artifact.Barcode, err = g.encoder.EncodeLinear(record.ID, sym)
		default:
			err = fmt.Errorf("%w: %s", ErrUnsupportedSymbology, sym)
		}
		if err == nil {
			continue
		}

		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return artifact, err
		}
		g.metrics.RecordEncodeFailure(ctx, sym.String())
		g.logger.Warn("symbol encoding failed",
			zap.String("record_id", record.ID),
			zap.String("symbology", sym.String()),
			zap.Error(err))
		return artifact, &labeling.EncodingError{RecordID: record.ID, Symbology: sym, Cause: err}
	}

	return artifact, nil
}

// TrackPayload returns the QR payload of a record: the tracking URL with
// the tracking id (or the record id when it has none) as the uuid parameter.
func (g *CodeGenerator) TrackPayload(record labeling.ShipmentRecord) string {
	id := record.TrackingID
	if id == "" {
		id = record.ID
	}
	sep := "?"
	if strings.Contains(g.config.TrackURL, "?") {
		sep = "&"
	}
	return g.config.TrackURL + sep + "uuid=" + url.QueryEscape(id)
}
