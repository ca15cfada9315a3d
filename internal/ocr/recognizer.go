package ocr

import (
	"context"
	"image"
	"strings"
)

// Recognizer turns an image of text into lines of text.
//
// The returned lines are used as given. Engines that can produce blank lines
// should drop them themselves, as SplitLines does.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]string, error)
}

// Engine is a Recognizer that owns native resources.
type Engine interface {
	Recognizer
	Info() Info
	Close() error
}

// Info describes a recognition backend.
type Info struct {
	Available    bool   `json:"available"`
	Backend      string `json:"backend"`
	Version      string `json:"version,omitempty"`
	Language     string `json:"language"`
	TessdataPath string `json:"tessdata_path,omitempty"`
	PoolSize     int    `json:"pool_size,omitempty"`
	Error        string `json:"error,omitempty"`
}

// SplitLines splits raw engine output into trimmed, non-blank lines.
func SplitLines(text string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
