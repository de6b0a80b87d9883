package render

import (
	"image/color"

	"github.com/kingrea/whybot/internal/grid"
)

// Scene is everything the renderer draws. Callers build it from read-only
// snapshots; rendering never mutates it.
type Scene struct {
	Grid           grid.Snapshot
	Current        grid.Path
	Counterfactual grid.Path
}

// Palette colors, shared by the raster and terminal surfaces.
var (
	ColorEmpty          = color.RGBA{R: 0x12, G: 0x14, B: 0x1c, A: 0xff}
	ColorObstacle       = color.RGBA{R: 0x5b, G: 0x62, B: 0x75, A: 0xff}
	ColorHazard         = color.RGBA{R: 0xcc, G: 0x7a, B: 0x00, A: 0xff}
	ColorCurrent        = color.RGBA{R: 0x7a, G: 0xa2, B: 0xff, A: 0xff}
	ColorCounterfactual = color.RGBA{R: 0xff, G: 0x9e, B: 0x64, A: 0xff}
	ColorStart          = color.RGBA{R: 0x4b, G: 0xd3, B: 0x8a, A: 0xff}
	ColorGoal           = color.RGBA{R: 0xff, G: 0x6b, B: 0x6b, A: 0xff}
	ColorGutter         = color.RGBA{R: 0x0b, G: 0x0c, B: 0x11, A: 0xff}
	ColorCaption        = color.RGBA{R: 0xd0, G: 0xd4, B: 0xde, A: 0xff}
)

// CellColor maps a cell state to its fill.
func CellColor(c grid.Cell) color.RGBA {
	switch c {
	case grid.Obstacle:
		return ColorObstacle
	case grid.HazardMemory:
		return ColorHazard
	default:
		return ColorEmpty
	}
}

// Layer is the topmost thing drawn over a cell, in paint order.
type Layer int

const (
	LayerCell Layer = iota
	LayerCurrent
	LayerCounterfactual
	LayerStart
	LayerGoal
)

// TopLayer reports which layer ends up visible at (x,y): cell fill, then the
// current path, then the counterfactual path, then the markers. Surfaces that
// work in whole cells (the terminal) use it instead of stroking lines.
func TopLayer(s Scene, x, y int) Layer {
	p := grid.Pos(x, y)
	switch {
	case p == s.Grid.Goal:
		return LayerGoal
	case p == s.Grid.Start:
		return LayerStart
	case s.Counterfactual.Contains(p):
		return LayerCounterfactual
	case s.Current.Contains(p):
		return LayerCurrent
	default:
		return LayerCell
	}
}
