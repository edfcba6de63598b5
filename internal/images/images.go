// Package images handles the self-describing image blobs submitted with a
// registration: data-URL parsing, decoding, and downscaling before they are
// embedded into the generated document.
package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
)

var (
	ErrNotDataURL  = errors.New("not an image data URL")
	ErrBadEncoding = errors.New("malformed base64 payload")
)

const dataURLPrefix = "data:image/"

// ParseDataURL splits a "data:image/<subtype>;base64,<payload>" string into
// its declared subtype and decoded bytes.
func ParseDataURL(s string) (subtype string, data []byte, err error) {
	if !strings.HasPrefix(s, dataURLPrefix) {
		return "", nil, ErrNotDataURL
	}
	rest := s[len(dataURLPrefix):]

	marker := ";base64,"
	idx := strings.Index(rest, marker)
	if idx < 0 {
		return "", nil, ErrNotDataURL
	}

	subtype = rest[:idx]
	payload := rest[idx+len(marker):]
	if payload == "" {
		return "", nil, ErrBadEncoding
	}

	data, decErr := base64.StdEncoding.DecodeString(payload)
	if decErr != nil {
		return "", nil, ErrBadEncoding
	}
	return subtype, data, nil
}

// DecodedSize reports the decoded byte length of a data URL without keeping
// the bytes around. Used by validation to enforce per-field ceilings.
func DecodedSize(s string) (int, error) {
	_, data, err := ParseDataURL(s)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// Decode turns raw image bytes into an image.Image, accepting JPEG and PNG.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unsupported or invalid image format: %w", err)
	}
	return img, nil
}

// ResizeToFit downscales img so it fits within maxW x maxH pixels while
// keeping its aspect ratio. Images already inside the box are returned
// unchanged; this never upscales.
func ResizeToFit(img image.Image, maxW, maxH int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxW && h <= maxH {
		return img
	}

	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}

	dstW := int(float64(w) * scale)
	dstH := int(float64(h) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

// EncodeJPEG re-encodes an image as JPEG for embedding.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
