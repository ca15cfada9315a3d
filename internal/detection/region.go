package detection

import "image"

// Region is an axis-aligned rectangle in the coordinate space of the image it
// was detected in. Regions are values; operations return new Regions.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RegionFromRect converts an image.Rectangle.
func RegionFromRect(r image.Rectangle) Region {
	r = r.Canon()
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Right returns the exclusive right edge.
func (r Region) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Region) Bottom() int { return r.Y + r.Height }

// Empty reports whether the region has no area.
func (r Region) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Expand grows the region by pad pixels on every side.
func (r Region) Expand(pad int) Region {
	return Region{
		X:      r.X - pad,
		Y:      r.Y - pad,
		Width:  r.Width + 2*pad,
		Height: r.Height + 2*pad,
	}
}

// Clamp intersects the region with [0,width)×[0,height). The result is the
// zero Region when nothing is left.
func (r Region) Clamp(width, height int) Region {
	x0, y0 := maxInt(r.X, 0), maxInt(r.Y, 0)
	x1, y1 := minInt(r.Right(), width), minInt(r.Bottom(), height)
	if x1 <= x0 || y1 <= y0 {
		return Region{}
	}
	return Region{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Contains reports whether o lies entirely inside r.
func (r Region) Contains(o Region) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Rects converts a RegionSet for APIs that take image.Rectangle values.
func Rects(regions []Region) []image.Rectangle {
	out := make([]image.Rectangle, len(regions))
	for i, r := range regions {
		out[i] = r.Rect()
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
