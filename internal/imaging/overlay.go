package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RegionOverlay draws the outline of each rectangle on a copy of img and labels
// it with its 1-based position in boxes.
//
// Box colours step around the hue wheel by the golden angle, so neighbouring
// boxes stay distinguishable however many there are. The source image is not
// modified.
func RegionOverlay(img image.Image, boxes []image.Rectangle) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	labelColor := color.RGBA{255, 255, 255, 255}
	for i, box := range boxes {
		c := boxColor(i)
		drawOutline(result, box, c)
		drawLabel(result, box.Min.X+2, box.Min.Y+2, strconv.Itoa(i+1), labelColor, c)
	}
	return result
}

// boxColor returns the i-th overlay colour.
func boxColor(i int) color.RGBA {
	hue := float64(i) * 137.508
	for hue >= 360 {
		hue -= 360
	}
	r, g, b := colorful.Hsv(hue, 0.85, 0.9).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// drawOutline draws a 1-pixel rectangle border clipped to the image.
func drawOutline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

// drawLabel draws a short run of digits at the given position on a filled
// background, using a 3x5 pixel font.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight-1; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			if (image.Point{X: x + dx, Y: y + dy}).In(bounds) {
				img.SetRGBA(x+dx, y+dy, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				if (image.Point{X: cx + col, Y: y + row}).In(bounds) {
					img.SetRGBA(cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
