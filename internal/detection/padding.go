package detection

import (
	"image"
	"math"
)

// PaddingEstimator decides how much context to keep around a region before it
// is cropped for recognition.
type PaddingEstimator struct {
	cfg Config
}

// NewPaddingEstimator creates a PaddingEstimator.
func NewPaddingEstimator(cfg Config) *PaddingEstimator {
	return &PaddingEstimator{cfg: cfg}
}

// Estimate returns the margin, in pixels, to add on every side of r.
//
// Two margins are computed and the larger wins:
//
//   - baseline: floor(BaselineRatio × min(width, height))
//   - density: four strips StripThickness pixels thick are sampled just
//     outside the top, bottom, left and right edges (clamped to the image).
//     The darkest strip mean m gives round(DensityFactor × (255 − m) / 255).
//     A strip that falls entirely outside the image counts as white.
//
// gray is the normalized page, not the ink mask: the density term measures how
// much ink sits next to the region. The result is never negative.
func (p *PaddingEstimator) Estimate(gray *image.Gray, r Region) int {
	baseline := int(math.Floor(p.cfg.BaselineRatio * float64(minInt(r.Width, r.Height))))
	density := p.densityPadding(gray, r)
	return maxInt(0, maxInt(baseline, density))
}

// Pad expands r by Estimate(gray, r) on every side and clamps the result to
// the image bounds.
func (p *PaddingEstimator) Pad(gray *image.Gray, r Region) Region {
	b := gray.Bounds()
	return r.Expand(p.Estimate(gray, r)).Clamp(b.Max.X, b.Max.Y)
}

func (p *PaddingEstimator) densityPadding(gray *image.Gray, r Region) int {
	t := p.cfg.StripThickness
	strips := []Region{
		{X: r.X, Y: r.Y - t, Width: r.Width, Height: t},   // top
		{X: r.X, Y: r.Bottom(), Width: r.Width, Height: t}, // bottom
		{X: r.X - t, Y: r.Y, Width: t, Height: r.Height},   // left
		{X: r.Right(), Y: r.Y, Width: t, Height: r.Height}, // right
	}

	b := gray.Bounds()
	darkest := 255.0
	for _, s := range strips {
		if m := meanIntensity(gray, s.Clamp(b.Max.X, b.Max.Y)); m < darkest {
			darkest = m
		}
	}

	pad := int(math.Round(p.cfg.DensityFactor * (255 - darkest) / 255))
	return maxInt(0, pad)
}

// meanIntensity averages the samples of gray inside s. An empty strip is
// white.
func meanIntensity(gray *image.Gray, s Region) float64 {
	if s.Empty() {
		return 255
	}
	var sum int
	for y := s.Y; y < s.Bottom(); y++ {
		row := gray.Pix[gray.PixOffset(s.X, y):]
		for x := 0; x < s.Width; x++ {
			sum += int(row[x])
		}
	}
	return float64(sum) / float64(s.Width*s.Height)
}
