// Package imaging prepares uploaded images for text detection and recognition.
//
// This package decodes raw image bytes, applies stored orientation metadata, and
// reduces the result to a single-channel grayscale image that the detection
// package can analyse. It also provides the cropping, encoding, and overlay
// helpers used when per-region crops are handed to the recognition engine or to
// a debug sink.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Rectangles are image.Rectangle values: Min is inclusive, Max is exclusive
//
// Normalize always returns an image whose bounds start at (0,0), so region
// coordinates produced downstream can be used directly as pixel indices.
//
// # Supported Formats
//
// Decode understands PNG, JPEG, GIF, BMP, TIFF, and WebP. EXIF orientation tags
// (JPEG only) are applied before any other processing, so a photo taken with the
// camera rotated comes out upright.
//
// # Thread Safety
//
// Every function here is stateless and side-effect-free on its input. Images
// returned are freshly allocated and owned by the caller.
//
// # Error Handling
//
// Decode is the only fallible step that depends on caller input; its failures
// are reported as IMAGE_DECODE_FAILED errors from the internal errors package.
// Crop and encoding errors are wrapped with fmt.Errorf.
package imaging
