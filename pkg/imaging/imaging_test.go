package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
)

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf
}

func TestCover(t *testing.T) {
	out, err := Cover(pngOf(t, 300, 100), CoverWidth, CoverHeight)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(out)
	require.NoError(t, err)
	assert.Equal(t, CoverWidth, cfg.Width)
	assert.Equal(t, CoverHeight, cfg.Height)
}

func TestCover_Square(t *testing.T) {
	out, err := Cover(pngOf(t, 40, 90), AvatarSize, AvatarSize)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(out)
	require.NoError(t, err)
	assert.Equal(t, AvatarSize, cfg.Width)
	assert.Equal(t, AvatarSize, cfg.Height)
}

func TestCover_NotAnImage(t *testing.T) {
	_, err := Cover(strings.NewReader("plain text"), CoverWidth, CoverHeight)
	assert.ErrorIs(t, err, app_errors.ErrNotImage)
}

// withDimensions rewrites the IHDR chunk of a PNG to declare w x h pixels.
func withDimensions(t *testing.T, src *bytes.Buffer, w, h uint32) *bytes.Reader {
	t.Helper()
	data := bytes.Clone(src.Bytes())
	require.Equal(t, "IHDR", string(data[12:16]))
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return bytes.NewReader(data)
}

func TestCover_RejectsOversizedImages(t *testing.T) {
	small := pngOf(t, 2, 2)

	tests := []struct {
		name string
		w, h uint32
	}{
		{"too many pixels", 9000, 9000},
		{"side too long", 12000, 10},
		{"huge square", 12000, 12000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Cover(withDimensions(t, small, tt.w, tt.h), CoverWidth, CoverHeight)
			assert.ErrorIs(t, err, app_errors.ErrNotImage)
		})
	}
}

func TestWithDimensions_KeepsHeaderValid(t *testing.T) {
	cfg, err := png.DecodeConfig(withDimensions(t, pngOf(t, 2, 2), MaxSide, 10))
	require.NoError(t, err)
	assert.Equal(t, MaxSide, cfg.Width)
}

func TestCropToAspect(t *testing.T) {
	assert.Equal(t, image.Rect(25, 0, 75, 100), cropToAspect(image.Rect(0, 0, 100, 100), 1, 2))
	assert.Equal(t, image.Rect(0, 25, 100, 75), cropToAspect(image.Rect(0, 0, 100, 100), 2, 1))
}
