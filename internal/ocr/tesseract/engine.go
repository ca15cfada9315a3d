// Package tesseract implements ocr.Engine on top of the Tesseract library via
// gosseract. Building it requires cgo and libtesseract.
package tesseract

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/otiai10/gosseract/v2"

	apperrors "github.com/ironsheep/tategaki-ocr/internal/errors"
	"github.com/ironsheep/tategaki-ocr/internal/imaging"
	"github.com/ironsheep/tategaki-ocr/internal/ocr"
)

// Backend is the name reported in ocr.Info.
const Backend = "gosseract"

// Config selects the model an Engine loads.
type Config struct {
	// Language is a Tesseract language code such as "jpn" or "jpn_vert".
	Language string
	// TessdataPrefix is the directory holding <Language>.traineddata. Empty
	// means the library default (TESSDATA_PREFIX or the compiled-in path).
	TessdataPrefix string
	// PageSegMode is a Tesseract page segmentation mode (0-13).
	PageSegMode int
}

// Engine wraps one gosseract client. Tesseract clients are not reentrant, so
// calls are serialized on mu; use ocr.Pool to run several engines in
// parallel.
type Engine struct {
	cfg Config

	mu     sync.Mutex
	client *gosseract.Client
}

var _ ocr.Engine = (*Engine)(nil)

// New creates an Engine for cfg.
func New(cfg Config) (*Engine, error) {
	if cfg.Language == "" {
		return nil, fmt.Errorf("tesseract: language is required")
	}
	if cfg.PageSegMode < 0 || cfg.PageSegMode > 13 {
		return nil, fmt.Errorf("tesseract: page segmentation mode %d out of range", cfg.PageSegMode)
	}
	if cfg.TessdataPrefix != "" {
		model := filepath.Join(cfg.TessdataPrefix, cfg.Language+".traineddata")
		if _, err := os.Stat(model); err != nil {
			return nil, fmt.Errorf("tesseract: language data for %q: %w", cfg.Language, err)
		}
	}

	client := gosseract.NewClient()
	if cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("tesseract: failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(cfg.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("tesseract: failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
		client.Close()
		return nil, fmt.Errorf("tesseract: failed to set page segmentation mode: %w", err)
	}

	return &Engine{cfg: cfg, client: client}, nil
}

// Recognize encodes img as PNG, hands it to Tesseract and returns the
// non-blank lines of the result.
func (e *Engine) Recognize(ctx context.Context, img image.Image) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, apperrors.NewRecognitionEngineError(err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		return nil, apperrors.NewRecognitionEngineError(fmt.Errorf("engine closed"))
	}
	if err := e.client.SetImageFromBytes(data); err != nil {
		return nil, apperrors.NewRecognitionEngineError(fmt.Errorf("failed to set image: %w", err))
	}

	text, err := e.client.Text()
	if err != nil {
		return nil, apperrors.NewRecognitionEngineError(fmt.Errorf("OCR failed: %w", err))
	}
	return ocr.SplitLines(text), nil
}

// Version returns the linked Tesseract version.
func (e *Engine) Version() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return ""
	}
	return e.client.Version()
}

// Info describes the engine.
func (e *Engine) Info() ocr.Info {
	return ocr.Info{
		Available:    true,
		Backend:      Backend,
		Version:      e.Version(),
		Language:     e.cfg.Language,
		TessdataPath: e.cfg.TessdataPrefix,
	}
}

// Close releases the native client. Recognize fails afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
