package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	apperrors "github.com/ironsheep/tategaki-ocr/internal/errors"
)

// ImageInfo describes a decoded image.
type ImageInfo struct {
	// Width is the upright image width in pixels.
	Width int `json:"width"`

	// Height is the upright image height in pixels.
	Height int `json:"height"`

	// Format is the name reported by the registered decoder: "png", "jpeg",
	// "gif", "bmp", "tiff" or "webp".
	Format string `json:"format"`
}

// Decode decodes raw image bytes and applies EXIF orientation.
//
// Parameters:
//   - data: The encoded image.
//   - maxPixels: Upper bound on width*height checked against the header before
//     the pixel data is decoded. Zero or negative disables the check.
//
// Returns:
//   - image.Image: The upright image. For orientations 5-8 the width and height
//     are swapped relative to the stored header.
//   - *ImageInfo: Dimensions of the returned image and the detected format.
//   - error: An IMAGE_DECODE_FAILED error when the bytes are empty, are not a
//     known format, exceed maxPixels, or fail to decode.
func Decode(data []byte, maxPixels int) (image.Image, *ImageInfo, error) {
	if len(data) == 0 {
		return nil, nil, apperrors.NewImageDecodeError(fmt.Errorf("empty image data"))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil, apperrors.NewImageDecodeError(err)
	}
	if maxPixels > 0 && cfg.Width*cfg.Height > maxPixels {
		return nil, nil, apperrors.NewImageDecodeError(
			fmt.Errorf("image is %dx%d, exceeds limit of %d pixels", cfg.Width, cfg.Height, maxPixels))
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, apperrors.NewImageDecodeError(err)
	}

	bounds := img.Bounds()
	return img, &ImageInfo{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}, nil
}
