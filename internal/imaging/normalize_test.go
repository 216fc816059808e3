package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestNormalizeDownscalesLongestEdge(t *testing.T) {
	out, err := Normalize(encodePNG(t, 2048, 1024), "image/png")
	require.NoError(t, err)

	w, h := decodedSize(t, out)
	assert.Equal(t, 1024, w)
	assert.Equal(t, 512, h)
}

func TestNormalizePortrait(t *testing.T) {
	out, err := Normalize(encodePNG(t, 600, 1800), "image/png")
	require.NoError(t, err)

	w, h := decodedSize(t, out)
	assert.Equal(t, 341, w)
	assert.Equal(t, 1024, h)
}

func TestNormalizeNeverUpscales(t *testing.T) {
	out, err := Normalize(encodePNG(t, 320, 200), "image/png")
	require.NoError(t, err)

	w, h := decodedSize(t, out)
	assert.Equal(t, 320, w)
	assert.Equal(t, 200, h)
}

func TestNormalizeRejectsNonImageType(t *testing.T) {
	_, err := Normalize(encodePNG(t, 10, 10), "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)
}

func TestNormalizeRejectsOversize(t *testing.T) {
	_, err := Normalize(make([]byte, MaxUploadBytes+1), "image/jpeg")
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize([]byte("definitely not an image"), "image/jpeg")
	assert.ErrorIs(t, err, ErrUndecodableImage)
}

func TestFitWithin(t *testing.T) {
	cases := []struct {
		w, h, wantW, wantH int
	}{
		{1024, 1024, 1024, 1024},
		{4000, 3000, 1024, 768},
		{3000, 4000, 768, 1024},
		{5000, 2, 1024, 1},
		{100, 50, 100, 50},
	}
	for _, tc := range cases {
		w, h := FitWithin(tc.w, tc.h, MaxEdge)
		assert.Equal(t, tc.wantW, w, "%dx%d", tc.w, tc.h)
		assert.Equal(t, tc.wantH, h, "%dx%d", tc.w, tc.h)
	}
}

// pngHeader returns a PNG that declares w x h but carries no pixel data.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth; color type 0 (gray), no interlace

	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestNormalizeRejectsHugeDimensions(t *testing.T) {
	data := pngHeader(17000, 17000)
	require.Less(t, len(data), 100)

	_, err := Normalize(data, "image/png")
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.NotErrorIs(t, err, ErrUndecodableImage)
}

func TestNormalizePixelLimitBoundary(t *testing.T) {
	// at the limit the header passes; decoding then fails on the missing data
	_, err := Normalize(pngHeader(0x3FFF, 0x3FFF), "image/png")
	assert.ErrorIs(t, err, ErrUndecodableImage)

	_, err = Normalize(pngHeader(0x3FFF, 0x4000), "image/png")
	assert.ErrorIs(t, err, ErrImageTooLarge)
}
