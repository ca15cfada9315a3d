package detection

import "image"

// Splitter separates regions that merged several adjacent glyphs or columns
// into one bounding box.
type Splitter struct {
	cfg Config
}

// NewSplitter creates a Splitter.
func NewSplitter(cfg Config) *Splitter {
	return &Splitter{cfg: cfg}
}

// ShouldSplit reports whether a region is wide enough to be considered for
// splitting.
func (s *Splitter) ShouldSplit(r Region) bool {
	return r.Width > s.cfg.SplitMinWidth
}

// Split cuts a region at the blank gaps of its vertical projection profile.
//
// The profile is the column-wise sum of mask samples inside the region, so
// mask must be an ink mask (ink non-zero, background 0) such as the one
// returned by Detector.Mask. Walking left to right, a column whose sum is zero
// after a column with ink is a split point; the next sub-region starts at the
// first column where ink resumes, so gap columns belong to neither neighbour.
// Each sub-region keeps the full height of r.
//
// Sub-regions narrower than MinCharWidth are dropped. When the profile has no
// interior gap the region comes back unchanged, provided it is at least
// MinCharWidth wide; otherwise the result is empty. Split never returns a
// region wider than r.
func (s *Splitter) Split(mask *image.Gray, r Region) []Region {
	r = r.Clamp(mask.Bounds().Max.X, mask.Bounds().Max.Y)
	if r.Empty() {
		return []Region{}
	}

	profile := verticalProfile(mask, r)
	runs := inkRuns(profile)

	if len(runs) <= 1 {
		if r.Width >= s.cfg.MinCharWidth {
			return []Region{r}
		}
		return []Region{}
	}

	out := make([]Region, 0, len(runs))
	for _, run := range runs {
		width := run[1] - run[0]
		if width < s.cfg.MinCharWidth {
			continue
		}
		out = append(out, Region{X: r.X + run[0], Y: r.Y, Width: width, Height: r.Height})
	}
	return out
}

// verticalProfile sums mask samples per column of r.
func verticalProfile(mask *image.Gray, r Region) []int {
	profile := make([]int, r.Width)
	for y := r.Y; y < r.Bottom(); y++ {
		row := mask.Pix[mask.PixOffset(r.X, y):]
		for x := 0; x < r.Width; x++ {
			profile[x] += int(row[x])
		}
	}
	return profile
}

// inkRuns returns the [start, end) column ranges of consecutive non-zero
// profile entries. A run ends at a split point: the first zero column after
// a non-zero one.
func inkRuns(profile []int) [][2]int {
	runs := make([][2]int, 0)
	start := -1
	for x, v := range profile {
		switch {
		case v != 0 && start < 0:
			start = x
		case v == 0 && start >= 0:
			runs = append(runs, [2]int{start, x})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, [2]int{start, len(profile)})
	}
	return runs
}
