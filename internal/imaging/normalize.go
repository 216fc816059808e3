// Package imaging normalizes uploaded photos before they are sent upstream
// and stored.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	MaxUploadBytes = 10 << 20
	MaxEdge        = 1024
	Quality        = 85
	// MaxPixels caps width*height before any frame is allocated (16383^2).
	MaxPixels = 0x3FFF * 0x3FFF

	OutputMIMEType = "image/jpeg"
)

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrUndecodableImage     = errors.New("image could not be decoded")
	ErrImageTooLarge        = errors.New("image dimensions too large")
)

// IsImageType reports whether a declared MIME type is acceptable for upload.
func IsImageType(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

// Normalize re-encodes data as a JPEG whose longest edge is at most MaxEdge.
// Smaller images keep their dimensions.
func Normalize(data []byte, mimeType string) ([]byte, error) {
	if !IsImageType(mimeType) {
		return nil, ErrUnsupportedMediaType
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrPayloadTooLarge
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrUndecodableImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}

	bounds := src.Bounds()
	w, h := FitWithin(bounds.Dx(), bounds.Dy(), MaxEdge)

	// JPEG has no alpha channel; flatten onto white.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == bounds.Dx() && h == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg failed: %w", err)
	}
	return buf.Bytes(), nil
}

// FitWithin scales (w, h) down so that neither edge exceeds maxEdge, keeping
// the aspect ratio. It never scales up.
func FitWithin(w, h, maxEdge int) (int, int) {
	if w <= maxEdge && h <= maxEdge {
		return w, h
	}
	if w >= h {
		nh := int(float64(h)*float64(maxEdge)/float64(w) + 0.5)
		return maxEdge, max(nh, 1)
	}
	nw := int(float64(w)*float64(maxEdge)/float64(h) + 0.5)
	return max(nw, 1), maxEdge
}
