// Package imaging turns uploaded pictures into fixed-size JPEGs.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
)

const (
	CoverWidth  = 1200
	CoverHeight = 675
	AvatarSize  = 256

	ContentType = "image/jpeg"

	jpegQuality = 85

	// Declared dimensions above these are rejected before decoding.
	MaxSide   = 10000
	MaxPixels = 40_000_000
)

// Cover fills a width x height frame with the decoded image, cropping the
// overflow around the center, and encodes the result as JPEG.
func Cover(r io.Reader, width, height int) (*bytes.Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", app_errors.ErrNotImage, err)
	}
	if cfg.Width > MaxSide || cfg.Height > MaxSide || cfg.Width*cfg.Height > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds the size limit", app_errors.ErrNotImage, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", app_errors.ErrNotImage, err)
	}

	src := cropToAspect(img.Bounds(), width, height)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)

	out := &bytes.Buffer{}
	if err := jpeg.Encode(out, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return out, nil
}

// cropToAspect returns the largest centered rectangle of b with the aspect
// ratio width:height.
func cropToAspect(b image.Rectangle, width, height int) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return b
	}
	if w*height > h*width {
		cw := h * width / height
		x0 := b.Min.X + (w-cw)/2
		return image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	}
	ch := w * height / width
	y0 := b.Min.Y + (h-ch)/2
	return image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
}
