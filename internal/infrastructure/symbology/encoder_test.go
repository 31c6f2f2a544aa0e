package symbology

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/pexcode/qds-print-sdk/internal/domain/labeling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePNG(t *testing.T, dataURL string) (int, int) {
	t.Helper()
	raw, err := DecodeDataURL(dataURL)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestNewBarcodeEncoder_Defaults(t *testing.T) {
	enc := NewBarcodeEncoder(&Config{})

	assert.Equal(t, 160, enc.config.QRSize)
	assert.Equal(t, 250, enc.config.BarcodeWidth)
	assert.Equal(t, 90, enc.config.BarcodeHeight)
	assert.NotNil(t, enc.logger)

	assert.NotNil(t, NewBarcodeEncoder(nil))
}

func TestBarcodeEncoder_EncodeQR(t *testing.T) {
	enc := NewBarcodeEncoder(DefaultConfig())

	url, err := enc.EncodeQR(context.Background(), "https://example.com?uuid=0b6f3c1e")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	w, h := decodePNG(t, url)
	assert.Equal(t, 160, w)
	assert.Equal(t, 160, h)
}

func TestBarcodeEncoder_EncodeQR_Errors(t *testing.T) {
	enc := NewBarcodeEncoder(DefaultConfig())

	t.Run("empty payload", func(t *testing.T) {
		_, err := enc.EncodeQR(context.Background(), "")
		assert.ErrorIs(t, err, ErrEmptyPayload)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := enc.EncodeQR(ctx, "payload")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("payload too large for any QR version", func(t *testing.T) {
		_, err := enc.EncodeQR(context.Background(), strings.Repeat("x", 8000))
		assert.Error(t, err)
	})
}

func TestBarcodeEncoder_EncodeLinear(t *testing.T) {
	enc := NewBarcodeEncoder(DefaultConfig())

	url, err := enc.EncodeLinear("SHP-0001", labeling.SymbologyCode39)
	require.NoError(t, err)

	w, h := decodePNG(t, url)
	assert.GreaterOrEqual(t, w, 250)
	assert.Equal(t, 90, h)
}

func TestBarcodeEncoder_EncodeLinear_WidensLongPayloads(t *testing.T) {
	enc := NewBarcodeEncoder(&Config{BarcodeWidth: 10, BarcodeHeight: 20, Code39FullASCII: true})

	url, err := enc.EncodeLinear("a-rather-long-shipment-identifier", labeling.SymbologyCode39)
	require.NoError(t, err)

	w, _ := decodePNG(t, url)
	assert.Greater(t, w, 10)
}

func TestBarcodeEncoder_EncodeLinear_Errors(t *testing.T) {
	enc := NewBarcodeEncoder(DefaultConfig())

	_, err := enc.EncodeLinear("", labeling.SymbologyCode39)
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = enc.EncodeLinear("ABC", labeling.SymbologyQR)
	assert.ErrorIs(t, err, ErrUnsupportedSymbology)

	strict := NewBarcodeEncoder(&Config{Code39FullASCII: false})
	_, err = strict.EncodeLinear("lowercase~", labeling.SymbologyCode39)
	assert.Error(t, err)
}

func TestParseQRLevel(t *testing.T) {
	assert.NotPanics(t, func() {
		for _, l := range []string{"l", "M", "q", "H", "", "bogus"} {
			_ = parseQRLevel(l)
		}
	})
}

func TestDecodeDataURL(t *testing.T) {
	raw, err := DecodeDataURL("data:text/plain;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(raw))

	_, err = DecodeDataURL("not a data url")
	assert.Error(t, err)
	_, err = DecodeDataURL("data:image/png;base64")
	assert.Error(t, err)
}
