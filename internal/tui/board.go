// internal/tui/board.go
//
// Terminal rendering of the board. Each cell is two columns wide so the grid
// looks roughly square; what shows in a cell follows the same layer order as
// the PNG renderer.

package tui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/whybot/internal/grid"
	"github.com/kingrea/whybot/internal/render"
	"github.com/kingrea/whybot/internal/weights"
)

const (
	cellColumns = 2

	// Board content origin on screen: the header line plus its margin, then
	// the rounded border and one column of padding.
	boardOriginX = 2
	boardOriginY = 3
)

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}

type cellKey struct {
	layer render.Layer
	cell  grid.Cell
}

// cellStyles caches one style per (layer, cell) pair.
var cellStyles = map[cellKey]lipgloss.Style{}

func cellStyle(layer render.Layer, cell grid.Cell) lipgloss.Style {
	k := cellKey{layer, cell}
	if st, ok := cellStyles[k]; ok {
		return st
	}
	bg := hexColor(render.CellColor(cell))
	st := lipgloss.NewStyle().Background(bg)
	switch layer {
	case render.LayerCurrent:
		st = st.Foreground(hexColor(render.ColorCurrent)).Bold(true)
	case render.LayerCounterfactual:
		st = st.Foreground(hexColor(render.ColorCounterfactual)).Bold(true)
	case render.LayerStart:
		st = st.Background(hexColor(render.ColorStart)).Foreground(lipgloss.Color("#12141C")).Bold(true)
	case render.LayerGoal:
		st = st.Background(hexColor(render.ColorGoal)).Foreground(lipgloss.Color("#12141C")).Bold(true)
	}
	cellStyles[k] = st
	return st
}

func cellGlyph(layer render.Layer) string {
	switch layer {
	case render.LayerCurrent:
		return "██"
	case render.LayerCounterfactual:
		return "╍╍"
	case render.LayerStart:
		return "S "
	case render.LayerGoal:
		return "G "
	default:
		return "  "
	}
}

// renderBoard draws the scene as terminal cells.
func renderBoard(s render.Scene) string {
	var b strings.Builder
	for y := 0; y < grid.Height; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < grid.Width; x++ {
			layer := render.TopLayer(s, x, y)
			b.WriteString(cellStyle(layer, s.Grid.At(x, y)).Render(cellGlyph(layer)))
		}
	}
	return b.String()
}

// cellAt maps a terminal position to a board cell.
func cellAt(col, row int) (int, int, bool) {
	dx := col - boardOriginX
	dy := row - boardOriginY
	if dx < 0 || dy < 0 {
		return 0, 0, false
	}
	x, y := dx/cellColumns, dy
	if !grid.InBounds(x, y) {
		return 0, 0, false
	}
	return x, y, true
}

const sliderCells = 20

// renderSliders draws the five weight sliders, marking the focused one.
func renderSliders(p *weights.Panel) string {
	rows := make([]string, 0, len(weights.Criteria)+1)
	rows = append(rows, lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("WEIGHTS"))
	for _, c := range weights.Criteria {
		filled := int(p.Fraction(c)*sliderCells + 0.5)
		filled = min(sliderCells, max(0, filled))
		track := strings.Repeat("━", filled) + "●" + strings.Repeat("─", sliderCells-filled)
		cursor := "  "
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
		if c == p.Selected() {
			cursor = "▸ "
			style = style.Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-11s %s %s", cursor, c.String(), track, p.Label(c))))
	}
	return strings.Join(rows, "\n")
}

// renderLegend explains the board glyphs.
func renderLegend() string {
	swatch := func(layer render.Layer, cell grid.Cell, label string) string {
		return cellStyle(layer, cell).Render(cellGlyph(layer)) + " " + label
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render(strings.Join([]string{
		swatch(render.LayerCell, grid.Obstacle, "obstacle"),
		swatch(render.LayerCell, grid.HazardMemory, "hazard"),
		swatch(render.LayerCurrent, grid.Empty, "current"),
		swatch(render.LayerCounterfactual, grid.Empty, "counterfactual"),
	}, "  "))
}
