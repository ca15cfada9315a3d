package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// DefaultBinarizeThreshold is the global cutoff used by Normalize when
// binarization is requested.
const DefaultBinarizeThreshold uint8 = 128

// Normalize reduces an upright image to single-channel grayscale and, when
// binarize is true, to a strictly two-valued image.
//
// Binarization applies a fixed global threshold (DefaultBinarizeThreshold):
// light pixels become 255 and dark pixels become 0. Use NormalizeWithThreshold
// to pick a different cutoff.
//
// The input is never modified. The result always has bounds starting at (0,0).
func Normalize(img image.Image, binarize bool) *image.Gray {
	return NormalizeWithThreshold(img, binarize, DefaultBinarizeThreshold)
}

// NormalizeWithThreshold is Normalize with an explicit binarization cutoff.
func NormalizeWithThreshold(img image.Image, binarize bool, threshold uint8) *image.Gray {
	gray := Grayscale(img)
	if !binarize {
		return gray
	}
	return Binarize(gray, threshold)
}

// Grayscale converts an image to 8-bit luminance.
//
// Images that are already *image.Gray are copied sample for sample. Everything
// else goes through bild's weighted reduction with Rec. 601 luma weights
// (0.299R + 0.587G + 0.114B).
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	if bounds.Empty() {
		return image.NewGray(image.Rect(0, 0, 0, 0))
	}

	if g, ok := img.(*image.Gray); ok {
		out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		for y := 0; y < bounds.Dy(); y++ {
			src := g.Pix[g.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			copy(out.Pix[y*out.Stride:y*out.Stride+bounds.Dx()], src[:bounds.Dx()])
		}
		return out
	}

	if o, ok := img.(interface{ Opaque() bool }); ok && !o.Opaque() {
		img = flatten(img)
	} else if bounds.Min != (image.Point{}) {
		// imaging.Clone rebases to (0,0).
		img = imaging.Clone(img)
	}
	return grayFromRGBA(effect.GrayscaleWithWeights(img, lumaR, lumaG, lumaB))
}

// Rec. 601 luma weights.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// grayFromRGBA copies the red channel of an RGBA image whose channels all hold
// the same luminance.
func grayFromRGBA(src *image.RGBA) *image.Gray {
	bounds := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		row := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			dst[x] = row[x*4]
		}
	}
	return out
}

// flatten composites an image with transparency onto a white page so that
// transparent areas read as background rather than ink.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	page := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(page, imaging.Clone(img), image.Pt(0, 0), 1.0)
}

// Binarize maps samples brighter than threshold to 255 and darker ones to 0.
// The comparison is bild's segment.Threshold, which ranks luminance in floating
// point, so a sample exactly equal to threshold may land on either side.
func Binarize(gray *image.Gray, threshold uint8) *image.Gray {
	if gray.Bounds().Empty() {
		return image.NewGray(image.Rect(0, 0, 0, 0))
	}
	return segment.Threshold(gray, threshold)
}
