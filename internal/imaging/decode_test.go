package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	apperrors "github.com/ironsheep/tategaki-ocr/internal/errors"
)

// createInMemoryImage creates a solid-colour RGBA image.
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// jpegWithOrientation encodes img as JPEG and splices an EXIF APP1 segment
// carrying the given orientation tag right after the SOI marker.
func jpegWithOrientation(t *testing.T, img image.Image, orientation byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	raw := buf.Bytes()

	app1 := []byte{
		0xFF, 0xE1, 0x00, 0x22, // APP1, length 34
		'E', 'x', 'i', 'f', 0x00, 0x00,
		'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08, // big-endian TIFF header, IFD at 8
		0x00, 0x01, // one entry
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, orientation, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}

	out := make([]byte, 0, len(raw)+len(app1))
	out = append(out, raw[:2]...)
	out = append(out, app1...)
	out = append(out, raw[2:]...)
	return out
}

func TestDecode_PNG(t *testing.T) {
	data := encodePNG(t, createInMemoryImage(40, 20, color.White))

	img, info, err := Decode(data, 0)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if info.Width != 40 || info.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 40x20", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Errorf("image bounds: got %v", img.Bounds())
	}
}

func TestDecode_AppliesOrientation(t *testing.T) {
	src := createInMemoryImage(40, 20, color.Gray{200})

	tests := []struct {
		name        string
		orientation byte
		wantW       int
		wantH       int
	}{
		{"upright", 1, 40, 20},
		{"rotated 180", 3, 40, 20},
		{"rotated 90 cw", 6, 20, 40},
		{"rotated 90 ccw", 8, 20, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, info, err := Decode(jpegWithOrientation(t, src, tt.orientation), 0)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if img.Bounds().Dx() != tt.wantW || img.Bounds().Dy() != tt.wantH {
				t.Errorf("bounds: got %dx%d, want %dx%d",
					img.Bounds().Dx(), img.Bounds().Dy(), tt.wantW, tt.wantH)
			}
			if info.Format != "jpeg" {
				t.Errorf("Format: got %s, want jpeg", info.Format)
			}
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("definitely not an image")},
		{"truncated png", encodePNG(t, createInMemoryImage(10, 10, color.Black))[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.data, 0)
			if err == nil {
				t.Fatal("Decode should fail")
			}
			if apperrors.CodeOf(err) != apperrors.CodeImageDecode {
				t.Errorf("code: got %q, want %q", apperrors.CodeOf(err), apperrors.CodeImageDecode)
			}
		})
	}
}

func TestDecode_MaxPixels(t *testing.T) {
	data := encodePNG(t, createInMemoryImage(100, 100, color.White))

	if _, _, err := Decode(data, 100*100); err != nil {
		t.Errorf("image at the limit should decode: %v", err)
	}
	_, _, err := Decode(data, 100*99)
	if !apperrors.Is(err, apperrors.CodeImageDecode) {
		t.Errorf("oversized image: got %v, want IMAGE_DECODE_FAILED", err)
	}
}
