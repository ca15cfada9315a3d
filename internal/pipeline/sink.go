package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"

	"github.com/ironsheep/tategaki-ocr/internal/imaging"
)

// Sink receives intermediate images for diagnostics. Implementations must be
// safe for concurrent use; their errors are logged by the orchestrator and
// otherwise ignored.
type Sink interface {
	Snapshot(ctx context.Context, requestID, name string, img image.Image) error
}

// NopSink discards every snapshot.
type NopSink struct{}

// Snapshot does nothing.
func (NopSink) Snapshot(context.Context, string, string, image.Image) error { return nil }

// DirSink writes each snapshot as <Dir>/<requestID>/<name>.png.
type DirSink struct {
	Dir string
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Snapshot encodes img as PNG and writes it below Dir.
func (s DirSink) Snapshot(ctx context.Context, requestID, name string, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if requestID == "" {
		requestID = "unknown"
	}

	dir := filepath.Join(s.Dir, unsafeName.ReplaceAllString(requestID, "_"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, unsafeName.ReplaceAllString(name, "_")+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
