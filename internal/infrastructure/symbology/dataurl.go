package symbology

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"
)

const pngDataURLPrefix = "data:image/png;base64,"

// EncodeDataURL renders img as a base64 PNG data URL
func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("png encode: %w", err)
	}
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURL converts a data URL back to its raw bytes
func DecodeDataURL(dataURL string) ([]byte, error) {
	// Format: data:image/png;base64,iVBORw0KGgo...
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, fmt.Errorf("invalid data URL format")
	}
	idx := strings.Index(dataURL, ",")
	if idx == -1 {
		return nil, fmt.Errorf("invalid data URL format")
	}
	return base64.StdEncoding.DecodeString(dataURL[idx+1:])
}
