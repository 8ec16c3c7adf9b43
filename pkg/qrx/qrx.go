// Package qrx renders pairing codes as QR images. The HTTP surface hands
// these out as data URLs so browser clients can drop them straight into an
// <img> tag.
package qrx

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// DefaultSize is the rendered edge length in pixels. Big enough for phone
// cameras at typical screen DPI.
const DefaultSize = 256

// Image encodes content as a QR code scaled to size x size pixels.
func Image(content string, size int) (image.Image, error) {
	if content == "" {
		return nil, fmt.Errorf("qrx: empty content")
	}
	if size <= 0 {
		size = DefaultSize
	}

	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qrx: encode: %w", err)
	}

	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("qrx: scale: %w", err)
	}

	return scaled, nil
}

// PNG renders content as a PNG-encoded QR code.
func PNG(content string, size int) ([]byte, error) {
	img, err := Image(content, size)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("qrx: png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL renders content as a base64 PNG data URL.
func DataURL(content string, size int) (string, error) {
	raw, err := PNG(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw), nil
}
