package printing

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/pexcode/qds-print-sdk/internal/domain/labeling"
	"go.uber.org/zap"
)

//go:embed templates/label.html
var templateFS embed.FS

const (
	defaultTitle = "QuickDeliverySystem - Label"
	defaultBrand = "quickdeliverysystem.com"
)

// ComposerConfig contains the fixed presentation settings of a label document
type ComposerConfig struct {
	Title string
	// Brand is printed in the header after "Printed at"
	Brand string
	// Locale selects the date layout (fr, en, de)
	Locale string
	// TimeZone is the IANA zone dates are printed in; empty means UTC
	TimeZone    string
	PaperSize   labeling.PaperSize
	Orientation labeling.Orientation
	// Margins defaults to labeling.DefaultMarginsFor(PaperSize)
	Margins *labeling.Margins
	// Clock supplies the "printed at" timestamp; defaults to time.Now
	Clock  func() time.Time
	Logger *zap.Logger
}

// LabelComposer renders a batch into one printable document. Apart from
// the "printed at" timestamp its output depends only on its input.
type LabelComposer struct {
	tmpl        *template.Template
	dates       *DateFormatter
	title       string
	brand       string
	paperSize   labeling.PaperSize
	orientation labeling.Orientation
	margins     labeling.Margins
	clock       func() time.Time
	logger      *zap.Logger
}

// NewLabelComposer parses the embedded label template and resolves the locale
func NewLabelComposer(cfg *ComposerConfig) (*LabelComposer, error) {
	if cfg == nil {
		cfg = &ComposerConfig{}
	}

	dates, err := NewDateFormatter(cfg.Locale, cfg.TimeZone)
	if err != nil {
		return nil, err
	}

	paperSize := cfg.PaperSize
	if paperSize == "" {
		paperSize = labeling.PaperSizeLabel4x6
	}
	if !paperSize.IsValid() {
		return nil, NewRenderError(ErrCodeInvalidPaperSize, "invalid paper size: "+string(paperSize), nil)
	}
	orientation := cfg.Orientation
	if orientation == "" {
		orientation = labeling.OrientationPortrait
	}
	margins := labeling.DefaultMarginsFor(paperSize)
	if cfg.Margins != nil {
		margins = *cfg.Margins
	}

	tmpl, err := template.ParseFS(templateFS, "templates/label.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse label template", err)
	}

	c := &LabelComposer{
		tmpl:        tmpl,
		dates:       dates,
		title:       valueOr(cfg.Title, defaultTitle),
		brand:       valueOr(cfg.Brand, defaultBrand),
		paperSize:   paperSize,
		orientation: orientation,
		margins:     margins,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

type labelPage struct {
	Lang         string
	Title        string
	Brand        string
	PrintedAt    string
	PageWidthMM  int
	PageHeightMM int
	Margins      labeling.Margins
	Labels       []labelBlock
}

type labelBlock struct {
	RecordID       string
	DestName       string
	DestAddress    string
	TrackImage     template.URL
	SenderName     string
	SenderAddress  string
	CreatedAt      string
	ProcessName    string
	ProcessAddress string
	ProcessID      string
	BarcodeImage   template.URL
}

// Compose emits one label block per record in input order. A record with
// no entry in codes gets empty image sources and is listed in
// LookupMisses; it never fails the composition.
func (c *LabelComposer) Compose(records []labeling.ShipmentRecord, codes labeling.CodeSet) (*labeling.LabelDocument, error) {
	printedAt := c.clock()

	width, height := c.paperSize.Dimensions()
	if c.orientation == labeling.OrientationLandscape {
		width, height = height, width
	}

	page := labelPage{
		Lang:         c.dates.Locale().String(),
		Title:        c.title,
		Brand:        c.brand,
		PrintedAt:    c.dates.Format(printedAt),
		PageWidthMM:  width,
		PageHeightMM: height,
		Margins:      c.margins,
		Labels:       make([]labelBlock, 0, len(records)),
	}

	var misses []string
	for _, r := range records {
		artifact, ok := codes.Lookup(r.ID)
		if !ok {
			misses = append(misses, r.ID)
		}
		page.Labels = append(page.Labels, labelBlock{
			RecordID:       r.ID,
			DestName:       r.DestName,
			DestAddress:    r.DestAddress,
			TrackImage:     c.imageSource(r.ID, artifact.Track),
			SenderName:     r.SenderName,
			SenderAddress:  r.SenderAddress,
			CreatedAt:      c.dates.Format(r.CreatedAt),
			ProcessName:    r.Process.Name,
			ProcessAddress: r.Process.Address,
			ProcessID:      r.Process.ID,
			BarcodeImage:   c.imageSource(r.ID, artifact.Barcode),
		})
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, page); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to execute label template", err)
	}

	if len(misses) > 0 {
		c.logger.Debug("composed labels without codes", zap.Strings("record_ids", misses))
	}

	return &labeling.LabelDocument{
		Title:        c.title,
		HTML:         buf.String(),
		PrintedAt:    printedAt,
		RecordIDs:    labeling.RecordIDs(records),
		PaperSize:    c.paperSize,
		Orientation:  c.orientation,
		Margins:      c.margins,
		LookupMisses: misses,
	}, nil
}

// imageSource trusts image data URLs and http(s) links. Anything
// else is dropped so the block renders an empty placeholder.
func (c *LabelComposer) imageSource(recordID, src string) template.URL {
	switch {
	case src == "":
		return ""
	case strings.HasPrefix(src, "data:image/"),
		strings.HasPrefix(src, "https://"),
		strings.HasPrefix(src, "http://"):
		return template.URL(src)
	default:
		c.logger.Warn("dropping unsupported image source", zap.String("record_id", recordID))
		return ""
	}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
