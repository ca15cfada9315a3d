package pipeline

import (
	"fmt"
	"strings"

	apperrors "github.com/ironsheep/tategaki-ocr/internal/errors"
)

// Orientation is the text direction of a page.
type Orientation string

const (
	// Horizontal pages go straight to the recognizer.
	Horizontal Orientation = "horizontal"
	// Vertical pages are segmented into regions first.
	Vertical Orientation = "vertical"
)

// ParseOrientation accepts "horizontal" or "vertical" in any case. An empty
// string means Horizontal.
func ParseOrientation(s string) (Orientation, error) {
	switch Orientation(strings.ToLower(strings.TrimSpace(s))) {
	case "", Horizontal:
		return Horizontal, nil
	case Vertical:
		return Vertical, nil
	}
	return "", apperrors.NewInvalidRequestError(fmt.Sprintf("unsupported orientation %q", s))
}
