package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// Crop extracts a rectangular area from an image.
//
// The rectangle is clipped to the image bounds first. A rectangle that does not
// overlap the image, or has no area, is an error. The result has bounds
// starting at (0,0).
func Crop(img image.Image, r image.Rectangle) (image.Image, error) {
	bounds := img.Bounds()
	clipped := r.Intersect(bounds)
	if clipped.Empty() {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	if g, ok := img.(*image.Gray); ok {
		// Keep single-channel crops single-channel.
		return Grayscale(g.SubImage(clipped)), nil
	}
	return imaging.Crop(img, clipped), nil
}

// EncodePNG encodes an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
