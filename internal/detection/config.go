package detection

import "fmt"

// ReadingOrder selects how detected regions are sequenced.
type ReadingOrder string

const (
	// ReadingOrderTopDown sorts regions by ascending top coordinate.
	ReadingOrderTopDown ReadingOrder = "top-down"
	// ReadingOrderColumnsRTL groups regions into vertical columns, orders the
	// columns right to left and each column top to bottom.
	ReadingOrderColumnsRTL ReadingOrder = "columns-rtl"
)

// Config holds the tunables of the vertical segmentation pipeline.
type Config struct {
	// Region detection
	BlockSize       int          // adaptive threshold window edge in pixels, odd and >= 3
	Bias            int          // subtracted from the window mean before comparing
	MinRegionWidth  int          // boxes with width <= this are noise
	MinRegionHeight int          // boxes with height <= this are noise
	ReadingOrder    ReadingOrder // ordering of detected regions

	// Region splitting
	MinCharWidth  int // sub-regions narrower than this are dropped
	SplitMinWidth int // only regions wider than this are considered for splitting

	// Padding
	BaselineRatio  float64 // size-proportional padding as a fraction of min(width, height)
	StripThickness int     // thickness of the sampled strips outside each edge
	DensityFactor  float64 // padding for a strip that is fully black
}

// DefaultConfig returns the tunables the pipeline was calibrated with.
func DefaultConfig() Config {
	return Config{
		BlockSize:       11,
		Bias:            2,
		MinRegionWidth:  5,
		MinRegionHeight: 10,
		ReadingOrder:    ReadingOrderTopDown,
		MinCharWidth:    10,
		SplitMinWidth:   40,
		BaselineRatio:   0.2,
		StripThickness:  5,
		DensityFactor:   10,
	}
}

// Validate reports the first tunable that cannot work.
func (c Config) Validate() error {
	if c.BlockSize < 3 || c.BlockSize%2 == 0 {
		return fmt.Errorf("block size must be an odd number >= 3, got %d", c.BlockSize)
	}
	if c.MinRegionWidth < 0 || c.MinRegionHeight < 0 {
		return fmt.Errorf("minimum region size must be non-negative, got %dx%d", c.MinRegionWidth, c.MinRegionHeight)
	}
	if c.MinCharWidth < 1 {
		return fmt.Errorf("minimum character width must be positive, got %d", c.MinCharWidth)
	}
	if c.SplitMinWidth < 0 {
		return fmt.Errorf("split minimum width must be non-negative, got %d", c.SplitMinWidth)
	}
	if c.BaselineRatio < 0 {
		return fmt.Errorf("baseline ratio must be non-negative, got %g", c.BaselineRatio)
	}
	if c.StripThickness < 1 {
		return fmt.Errorf("strip thickness must be positive, got %d", c.StripThickness)
	}
	if c.DensityFactor < 0 {
		return fmt.Errorf("density factor must be non-negative, got %g", c.DensityFactor)
	}
	switch c.ReadingOrder {
	case ReadingOrderTopDown, ReadingOrderColumnsRTL:
	default:
		return fmt.Errorf("unknown reading order %q", c.ReadingOrder)
	}
	return nil
}
