package detection

import (
	"image"
	"math/rand"
	"testing"
)

func TestEstimate_CleanBackground(t *testing.T) {
	page := createPage(100, 100, 255)
	r := Region{X: 10, Y: 10, Width: 50, Height: 50}

	p := NewPaddingEstimator(DefaultConfig())

	if got := p.Estimate(page, r); got != 10 {
		t.Errorf("Estimate: got %d, want 10", got)
	}
	if got, want := p.Pad(page, r), (Region{X: 0, Y: 0, Width: 70, Height: 70}); got != want {
		t.Errorf("Pad: got %+v, want %+v", got, want)
	}
}

func TestEstimate_ClampedAtImageEdge(t *testing.T) {
	page := createPage(100, 100, 255)
	r := Region{X: 60, Y: 60, Width: 40, Height: 40}

	p := NewPaddingEstimator(DefaultConfig())

	if got := p.Estimate(page, r); got != 8 {
		t.Errorf("Estimate: got %d, want 8", got)
	}
	if got, want := p.Pad(page, r), (Region{X: 52, Y: 52, Width: 48, Height: 48}); got != want {
		t.Errorf("Pad: got %+v, want %+v", got, want)
	}
}

func TestEstimate_DenseNeighbourhood(t *testing.T) {
	tests := []struct {
		name  string
		paint func(page *image.Gray)
		want  int
	}{
		{
			name:  "black strip on the left",
			paint: func(pg *image.Gray) { fillRect(pg, 35, 40, 40, 60, 0) },
			want:  10,
		},
		{
			name:  "mid-gray strip above",
			paint: func(pg *image.Gray) { fillRect(pg, 40, 35, 60, 40, 128) },
			want:  5,
		},
		{
			name:  "ink inside the region is ignored",
			paint: func(pg *image.Gray) { fillRect(pg, 40, 40, 60, 60, 0) },
			want:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := createPage(100, 100, 255)
			tt.paint(page)

			got := NewPaddingEstimator(DefaultConfig()).Estimate(page, Region{X: 40, Y: 40, Width: 20, Height: 20})
			if got != tt.want {
				t.Errorf("Estimate: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEstimate_UniformBackgroundUsesBaseline(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	page := createPage(200, 150, 255)
	p := NewPaddingEstimator(DefaultConfig())

	for trial := 0; trial < 100; trial++ {
		r := Region{
			X:      rng.Intn(180),
			Y:      rng.Intn(130),
			Width:  1 + rng.Intn(80),
			Height: 1 + rng.Intn(80),
		}
		want := minInt(r.Width, r.Height) / 5
		if got := p.Estimate(page, r); got != want {
			t.Fatalf("region %+v: got %d, want baseline %d", r, got, want)
		}

		padded := p.Pad(page, r)
		if padded.X < 0 || padded.Y < 0 || padded.Right() > 200 || padded.Bottom() > 150 {
			t.Fatalf("region %+v padded to %+v, outside the page", r, padded)
		}
	}
}

func TestEstimate_NeverNegative(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaselineRatio = 0
	cfg.DensityFactor = 0

	got := NewPaddingEstimator(cfg).Estimate(createPage(50, 50, 0), Region{X: 10, Y: 10, Width: 20, Height: 20})
	if got != 0 {
		t.Errorf("Estimate: got %d, want 0", got)
	}
}
