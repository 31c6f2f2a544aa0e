// Package symbology encodes text payloads into scannable images.
//
// BarcodeEncoder produces QR codes and Code 39 linear barcodes using
// github.com/boombuler/barcode and returns them as PNG data URLs that can
// be embedded directly into a label document.
//
//	enc := symbology.NewBarcodeEncoder(symbology.DefaultConfig())
//	track, err := enc.EncodeQR(ctx, "https://example.com?uuid=42")
//	bars, err := enc.EncodeLinear("SHP-42", labeling.SymbologyCode39)
package symbology
