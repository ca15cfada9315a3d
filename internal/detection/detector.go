package detection

import (
	"image"
	"sort"

	"github.com/anthonynsimon/bild/blur"
)

// Ink is the mask value of a foreground pixel. Background pixels are 0.
const Ink uint8 = 255

// Detector finds candidate text regions on a grayscale page.
type Detector struct {
	cfg Config
}

// NewDetector creates a Detector. The config is not validated here; callers
// that accept user-supplied tunables should call Config.Validate first.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect runs Mask followed by Regions.
//
// An empty image, or one without any component large enough to count as
// text, yields an empty (non-nil) RegionSet.
func (d *Detector) Detect(gray *image.Gray) []Region {
	return d.Regions(d.Mask(gray))
}

// Mask binarizes a grayscale page with adaptive mean thresholding.
//
// For every pixel the mean of the BlockSize×BlockSize window centred on it is
// computed with bild's box blur. The pixel is marked Ink when
//
//	value <= mean - Bias
//
// and 0 otherwise. Dark text therefore becomes Ink and paper becomes 0,
// regardless of how bright the paper is in that part of the page. Large solid
// dark areas come out hollow, since their interior matches its own mean; their
// outline still yields the correct bounding box.
func (d *Detector) Mask(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	mask := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if bounds.Empty() {
		return mask
	}

	radius := float64(d.cfg.BlockSize-1) / 2
	mean := blur.Box(gray, radius)

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			v := int(gray.Pix[gray.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)])
			// Box returns an RGBA copy; gray input puts the mean in every channel.
			m := int(mean.Pix[mean.PixOffset(mean.Bounds().Min.X+x, mean.Bounds().Min.Y+y)])
			if v <= m-d.cfg.Bias {
				mask.Pix[y*mask.Stride+x] = Ink
			}
		}
	}
	return mask
}

// Regions extracts text regions from an ink mask.
//
// Connected Ink components (8-connected) are reduced to bounding boxes. Only
// components with an external boundary are kept: a component lying inside a
// hole of another component (background not reachable from the image border)
// is discarded, while one sitting in an open concavity stays. Boxes no wider
// than MinRegionWidth or no taller than MinRegionHeight are then dropped. The
// survivors are ordered according to ReadingOrder.
func (d *Detector) Regions(mask *image.Gray) []Region {
	components := connectedComponents(mask)

	kept := make([]Region, 0, len(components))
	for _, c := range components {
		if !c.external {
			continue
		}
		b := c.box
		if b.Width <= d.cfg.MinRegionWidth || b.Height <= d.cfg.MinRegionHeight {
			continue
		}
		kept = append(kept, b)
	}

	switch d.cfg.ReadingOrder {
	case ReadingOrderColumnsRTL:
		return orderColumnsRTL(kept)
	default:
		sortTopDown(kept)
		return kept
	}
}

// component is one connected Ink component.
type component struct {
	box Region
	// external is false when the component sits inside a hole of another one.
	external bool
}

// connectedComponents labels 8-connected Ink components and returns them in
// scan order.
//
// Uses an explicit stack rather than recursion so large components cannot
// overflow the goroutine stack.
func connectedComponents(mask *image.Gray) []component {
	bounds := mask.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	visited := make([]bool, width*height)
	outside := outerBackground(mask)
	components := make([]component, 0)

	ink := func(x, y int) bool {
		return mask.Pix[mask.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)] != 0
	}
	// touchesOutside reports whether (x, y) lies on the image border or
	// next to background connected to it.
	touchesOutside := func(x, y int) bool {
		if x == 0 || y == 0 || x == width-1 || y == height-1 {
			return true
		}
		return outside[y*width+x-1] || outside[y*width+x+1] ||
			outside[(y-1)*width+x] || outside[(y+1)*width+x]
	}

	stack := make([]image.Point, 0, 64)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[y*width+x] || !ink(x, y) {
				continue
			}

			minX, minY, maxX, maxY := x, y, x, y
			external := false
			visited[y*width+x] = true
			stack = append(stack[:0], image.Point{X: x, Y: y})

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				minX, maxX = minInt(minX, p.X), maxInt(maxX, p.X)
				minY, maxY = minInt(minY, p.Y), maxInt(maxY, p.Y)
				if !external && touchesOutside(p.X, p.Y) {
					external = true
				}

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || nx >= width || ny < 0 || ny >= height {
							continue
						}
						if visited[ny*width+nx] || !ink(nx, ny) {
							continue
						}
						visited[ny*width+nx] = true
						stack = append(stack, image.Point{X: nx, Y: ny})
					}
				}
			}

			components = append(components, component{
				box: Region{
					X:      minX,
					Y:      minY,
					Width:  maxX - minX + 1,
					Height: maxY - minY + 1,
				},
				external: external,
			})
		}
	}
	return components
}

// outerBackground marks the background pixels 4-connected to the image
// border. Background not marked lies in a hole enclosed by ink.
func outerBackground(mask *image.Gray) []bool {
	bounds := mask.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	outside := make([]bool, width*height)

	stack := make([]image.Point, 0, 64)
	push := func(x, y int) {
		if outside[y*width+x] || mask.Pix[mask.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)] != 0 {
			return
		}
		outside[y*width+x] = true
		stack = append(stack, image.Point{X: x, Y: y})
	}

	for x := 0; x < width; x++ {
		push(x, 0)
		push(x, height-1)
	}
	for y := 0; y < height; y++ {
		push(0, y)
		push(width-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.X > 0 {
			push(p.X-1, p.Y)
		}
		if p.X < width-1 {
			push(p.X+1, p.Y)
		}
		if p.Y > 0 {
			push(p.X, p.Y-1)
		}
		if p.Y < height-1 {
			push(p.X, p.Y+1)
		}
	}
	return outside
}

// sortTopDown orders regions by top edge, then left edge.
func sortTopDown(regions []Region) {
	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Y != regions[j].Y {
			return regions[i].Y < regions[j].Y
		}
		return regions[i].X < regions[j].X
	})
}

// orderColumnsRTL groups regions into columns by horizontal overlap and
// returns them column by column, rightmost column first, each column top to
// bottom.
//
// A region joins a column when it overlaps the column's horizontal span by at
// least half of the narrower of the two.
func orderColumnsRTL(regions []Region) []Region {
	type column struct {
		x0, x1  int
		members []Region
	}

	byRight := append([]Region(nil), regions...)
	sort.SliceStable(byRight, func(i, j int) bool {
		return byRight[i].Right() > byRight[j].Right()
	})

	columns := make([]*column, 0)
	for _, r := range byRight {
		var target *column
		for _, c := range columns {
			overlap := minInt(c.x1, r.Right()) - maxInt(c.x0, r.X)
			narrower := minInt(c.x1-c.x0, r.Width)
			if overlap > 0 && 2*overlap >= narrower {
				target = c
				break
			}
		}
		if target == nil {
			target = &column{x0: r.X, x1: r.Right()}
			columns = append(columns, target)
		}
		target.members = append(target.members, r)
		target.x0 = minInt(target.x0, r.X)
		target.x1 = maxInt(target.x1, r.Right())
	}

	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i].x1 > columns[j].x1
	})

	out := make([]Region, 0, len(regions))
	for _, c := range columns {
		sortTopDown(c.members)
		out = append(out, c.members...)
	}
	return out
}
