package analyzer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/heic"
)

var (
	// ErrDecodeFailed means the input could not be parsed as an image
	ErrDecodeFailed = errors.New("image could not be decoded")
	// ErrDegenerateImage means the image has no interior pixels to analyze
	ErrDegenerateImage = errors.New("image is too small to analyze")
)

// minDimension is the smallest side that still leaves an interior pixel for 3x3 kernels
const minDimension = 3

// pixelDecoder implements ImageDecoder
type pixelDecoder struct{}

// NewPixelDecoder creates a decoder for JPEG, PNG, GIF, BMP, TIFF and HEIC captures
func NewPixelDecoder() ImageDecoder {
	return &pixelDecoder{}
}

// Decode parses an encoded image. EXIF orientation is applied so portrait
// receipts shot with a rotated phone stay portrait.
func (d *pixelDecoder) Decode(data []byte) (*PixelBuffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecodeFailed)
	}

	var img image.Image
	var err error
	if isHEIC(data) {
		img, err = heic.Decode(bytes.NewReader(data))
	} else {
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	return NewPixelBuffer(img)
}

// DecodeBase64 decodes a base64 payload, with or without a data URI header
func (d *pixelDecoder) DecodeBase64(encoded string) (*PixelBuffer, error) {
	data, err := DecodePayload(encoded)
	if err != nil {
		return nil, err
	}
	return d.Decode(data)
}

// DecodePayload returns the raw bytes of a base64 capture, with or without a
// data URI header. Standard, URL-safe and unpadded alphabets are accepted.
func DecodePayload(encoded string) ([]byte, error) {
	return decodeBase64(StripDataURI(encoded))
}

// NewPixelBuffer copies an image into a fresh RGBA buffer
func NewPixelBuffer(img image.Image) (*PixelBuffer, error) {
	bounds := img.Bounds()
	if bounds.Dx() < minDimension || bounds.Dy() < minDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrDegenerateImage, bounds.Dx(), bounds.Dy())
	}

	// Clone always yields a tightly packed buffer anchored at (0,0)
	nrgba := imaging.Clone(img)
	return &PixelBuffer{
		Width:  nrgba.Rect.Dx(),
		Height: nrgba.Rect.Dy(),
		Pix:    nrgba.Pix,
	}, nil
}

// StripDataURI removes a "data:<mime>;base64," header if present
func StripDataURI(encoded string) string {
	encoded = strings.TrimSpace(encoded)
	if !strings.HasPrefix(encoded, "data:") {
		return encoded
	}
	if i := strings.IndexByte(encoded, ','); i >= 0 {
		return encoded[i+1:]
	}
	return encoded
}

func decodeBase64(encoded string) ([]byte, error) {
	encoded = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty base64 payload", ErrDecodeFailed)
	}

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		if data, err := enc.DecodeString(encoded); err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid base64 payload", ErrDecodeFailed)
}

// isHEIC sniffs the ISO-BMFF ftyp box for HEIC/HEIF brands
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}
