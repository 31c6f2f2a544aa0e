package symbology

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/qr"
	"github.com/pexcode/qds-print-sdk/internal/domain/labeling"
	"go.uber.org/zap"
)

var (
	// ErrEmptyPayload is returned when asked to encode an empty string
	ErrEmptyPayload = errors.New("payload is empty")
	// ErrUnsupportedSymbology is returned for symbologies the encoder cannot produce
	ErrUnsupportedSymbology = errors.New("unsupported symbology")
)

// Config contains the image parameters for generated codes
type Config struct {
	// QRLevel is the QR error correction level (L, M, Q, H)
	QRLevel string
	// QRSize is the minimum edge length of the QR image in pixels
	QRSize int
	// BarcodeWidth and BarcodeHeight are the minimum linear barcode size in pixels
	BarcodeWidth  int
	BarcodeHeight int
	// Code39Checksum appends the modulo 43 check character
	Code39Checksum bool
	// Code39FullASCII enables the extended character set (lowercase, punctuation)
	Code39FullASCII bool
	Logger          *zap.Logger
}

// DefaultConfig returns the sizes used by the label layout
func DefaultConfig() *Config {
	return &Config{
		QRLevel:         "M",
		QRSize:          160,
		BarcodeWidth:    250,
		BarcodeHeight:   90,
		Code39FullASCII: true,
	}
}

// BarcodeEncoder turns payloads into PNG data URLs
type BarcodeEncoder struct {
	config  *Config
	qrLevel qr.ErrorCorrectionLevel
	logger  *zap.Logger
}

// NewBarcodeEncoder creates an encoder, filling unset sizes from DefaultConfig
func NewBarcodeEncoder(config *Config) *BarcodeEncoder {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	if config.QRSize <= 0 {
		config.QRSize = defaults.QRSize
	}
	if config.BarcodeWidth <= 0 {
		config.BarcodeWidth = defaults.BarcodeWidth
	}
	if config.BarcodeHeight <= 0 {
		config.BarcodeHeight = defaults.BarcodeHeight
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BarcodeEncoder{
		config:  config,
		qrLevel: parseQRLevel(config.QRLevel),
		logger:  logger,
	}
}

// EncodeQR encodes text as a QR code. It honours ctx cancellation so that a
// failed batch does not keep encoding.
func (e *BarcodeEncoder) EncodeQR(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrEmptyPayload
	}

	code, err := qr.Encode(text, e.qrLevel, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("qr encode: %w", err)
	}

	size := max(e.config.QRSize, code.Bounds().Dx())
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return "", fmt.Errorf("qr scale: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return EncodeDataURL(scaled)
}

// EncodeLinear encodes text as a one-dimensional barcode
func (e *BarcodeEncoder) EncodeLinear(text string, symbology labeling.Symbology) (string, error) {
	if !symbology.IsLinear() {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedSymbology, symbology)
	}
	if text == "" {
		return "", ErrEmptyPayload
	}

	code, err := code39.Encode(text, e.config.Code39Checksum, e.config.Code39FullASCII)
	if err != nil {
		return "", fmt.Errorf("code39 encode: %w", err)
	}

	width := max(e.config.BarcodeWidth, code.Bounds().Dx())
	scaled, err := barcode.Scale(code, width, e.config.BarcodeHeight)
	if err != nil {
		return "", fmt.Errorf("code39 scale: %w", err)
	}

	return EncodeDataURL(scaled)
}

func parseQRLevel(level string) qr.ErrorCorrectionLevel {
	switch strings.ToUpper(level) {
	case "L":
		return qr.L
	case "Q":
		return qr.Q
	case "H":
		return qr.H
	default:
		return qr.M
	}
}
