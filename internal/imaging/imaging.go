// Package imaging decodes uploaded pictures, shrinks them to fit a bounding
// box and re-encodes them as JPEG.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// OutputMIME is the content type of every processed image.
const OutputMIME = "image/jpeg"

// Options bounds the output image.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// Result contains the processed image data.
type Result struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Process decodes data (JPEG, PNG or WebP), downscales it to fit inside
// MaxWidth x MaxHeight without upscaling and re-encodes it as JPEG.
func Process(data []byte, opts Options) (*Result, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = Fit(img, opts.MaxWidth, opts.MaxHeight)

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	bounds := img.Bounds()
	return &Result{
		Data:   buf.Bytes(),
		MIME:   OutputMIME,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// Fit scales img down, keeping its aspect ratio, so that it fits within
// maxW x maxH. Images already inside the box are returned unchanged. A
// non-positive bound leaves that axis unconstrained.
func Fit(img image.Image, maxW, maxH int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return img
	}

	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = float64(maxW) / float64(w)
	}
	if maxH > 0 && h > maxH {
		if s := float64(maxH) / float64(h); s < scale {
			scale = s
		}
	}
	if scale >= 1 {
		return img
	}

	newW := max(1, int(float64(w)*scale))
	newH := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
