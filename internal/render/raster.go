// internal/render/raster.go
//
// Draws a Scene into an RGBA image: cells first, then the current path as a
// solid polyline, then the counterfactual path dashed on top, then the two
// markers over everything.

package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/kingrea/whybot/internal/grid"
)

const (
	// DefaultCellSize is the pixel edge of one cell.
	DefaultCellSize = 24
	// StrokeWidth is the path line width in pixels.
	StrokeWidth = 3

	dashOn  = 6.0
	dashOff = 4.0
	// minDashStep keeps the dash walk moving when float error leaves a
	// vanishing remainder at a dash boundary.
	minDashStep = 1e-3

	captionPad  = 6
	joinSegment = 12
)

// Options controls raster output.
type Options struct {
	CellSize int
	// Caption lines are drawn in a band under the board.
	Caption []string
}

func (o *Options) normalize() {
	if o.CellSize < 4 {
		o.CellSize = DefaultCellSize
	}
}

// Size returns the image dimensions for the options.
func (o Options) Size() (int, int) {
	o.normalize()
	w := grid.Width * o.CellSize
	h := grid.Height * o.CellSize
	if len(o.Caption) > 0 {
		h += captionHeight(len(o.Caption))
	}
	return w, h
}

// Render draws s into a new image. Empty paths draw nothing.
func Render(s Scene, opts Options) *image.RGBA {
	opts.normalize()
	w, h := opts.Size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(ColorGutter), image.Point{}, draw.Src)

	cs := opts.CellSize
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			fillCell(img, cs, x, y, CellColor(s.Grid.At(x, y)))
		}
	}

	strokePath(img, cs, s.Current, ColorCurrent, false)
	strokePath(img, cs, s.Counterfactual, ColorCounterfactual, true)

	fillCell(img, cs, s.Grid.Start.X, s.Grid.Start.Y, ColorStart)
	fillCell(img, cs, s.Grid.Goal.X, s.Grid.Goal.Y, ColorGoal)

	if len(opts.Caption) > 0 {
		drawCaption(img, grid.Height*cs, opts.Caption)
	}
	return img
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// CellRect returns the pixel rectangle painted for (x,y), leaving a one
// pixel gutter on the right and bottom edges.
func CellRect(cellSize, x, y int) image.Rectangle {
	return image.Rect(x*cellSize, y*cellSize, (x+1)*cellSize-1, (y+1)*cellSize-1)
}

// CellCenter returns the pixel center of (x,y).
func CellCenter(cellSize int, p grid.Position) (float32, float32) {
	half := float32(cellSize) / 2
	return float32(p.X*cellSize) + half, float32(p.Y*cellSize) + half
}

func fillCell(img *image.RGBA, cs, x, y int, c color.RGBA) {
	if !grid.InBounds(x, y) {
		return
	}
	draw.Draw(img, CellRect(cs, x, y), image.NewUniform(c), image.Point{}, draw.Src)
}

type point struct{ x, y float32 }

func strokePath(img *image.RGBA, cs int, path grid.Path, c color.RGBA, dashed bool) {
	if len(path) == 0 {
		return
	}
	pts := make([]point, len(path))
	for i, v := range path {
		x, y := CellCenter(cs, v)
		pts[i] = point{x, y}
	}
	src := image.NewUniform(c)
	radius := float32(StrokeWidth) / 2
	if len(pts) == 1 {
		fillDisc(img, pts[0], radius, src)
		return
	}
	if !dashed {
		for i := 1; i < len(pts); i++ {
			fillSegment(img, pts[i-1], pts[i], radius, src)
		}
		for i := 1; i < len(pts)-1; i++ {
			fillDisc(img, pts[i], radius, src)
		}
		return
	}
	// The dash pattern runs continuously along the whole polyline.
	var travelled float64
	period := dashOn + dashOff
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		length := math.Hypot(float64(b.x-a.x), float64(b.y-a.y))
		if length == 0 {
			continue
		}
		if i > 1 && math.Mod(travelled, period) < dashOn {
			fillDisc(img, a, radius, src)
		}
		pos := 0.0
		for pos < length {
			phase := math.Mod(travelled+pos, period)
			on := phase < dashOn
			step := period - phase
			if on {
				step = dashOn - phase
			}
			end := math.Min(length, pos+math.Max(step, minDashStep))
			if on {
				fillSegment(img, lerp(a, b, pos/length), lerp(a, b, end/length), radius, src)
			}
			pos = end
		}
		travelled += length
	}
}

func lerp(a, b point, t float64) point {
	return point{
		x: a.x + float32(t)*(b.x-a.x),
		y: a.y + float32(t)*(b.y-a.y),
	}
}

func fillSegment(img *image.RGBA, a, b point, radius float32, src image.Image) {
	dx, dy := float64(b.x-a.x), float64(b.y-a.y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx := float32(-dy/length) * radius
	ny := float32(dx/length) * radius
	fillPolygon(img, []point{
		{a.x + nx, a.y + ny},
		{b.x + nx, b.y + ny},
		{b.x - nx, b.y - ny},
		{a.x - nx, a.y - ny},
	}, src)
}

func fillDisc(img *image.RGBA, center point, radius float32, src image.Image) {
	pts := make([]point, joinSegment)
	for i := range pts {
		angle := 2 * math.Pi * float64(i) / joinSegment
		pts[i] = point{
			x: center.x + radius*float32(math.Cos(angle)),
			y: center.y + radius*float32(math.Sin(angle)),
		}
	}
	fillPolygon(img, pts, src)
}

// fillPolygon rasterizes one convex shape in its own pass so overlapping
// shapes never cancel each other's coverage.
func fillPolygon(img *image.RGBA, pts []point, src image.Image) {
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	for _, p := range pts {
		minX, minY = min(minX, p.x), min(minY, p.y)
		maxX, maxY = max(maxX, p.x), max(maxY, p.y)
	}
	box := image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	).Intersect(img.Bounds())
	if box.Empty() {
		return
	}
	ox, oy := float32(box.Min.X), float32(box.Min.Y)
	z := vector.NewRasterizer(box.Dx(), box.Dy())
	z.DrawOp = draw.Over
	z.MoveTo(pts[0].x-ox, pts[0].y-oy)
	for _, p := range pts[1:] {
		z.LineTo(p.x-ox, p.y-oy)
	}
	z.ClosePath()
	z.Draw(img, box, src, image.Point{})
}

func captionHeight(lines int) int {
	return lines*basicfont.Face7x13.Metrics().Height.Ceil() + 2*captionPad
}

func drawCaption(img *image.RGBA, top int, lines []string) {
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil()
	d := &font.Drawer{Dst: img, Src: image.NewUniform(ColorCaption), Face: face}
	for i, line := range lines {
		baseline := top + captionPad + (i+1)*lineHeight - face.Metrics().Descent.Ceil()
		d.Dot = fixed.Point26_6{X: fixed.I(captionPad), Y: fixed.I(baseline)}
		d.DrawString(line)
	}
}
