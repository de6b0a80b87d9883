// internal/grid/grid.go
//
// The editable planning map: a fixed 32x24 board of cells plus the start and
// goal markers. Everything the planner sees about the world comes from here.

package grid

import "fmt"

const (
	// Width is the number of columns on the board.
	Width = 32
	// Height is the number of rows on the board.
	Height = 24
)

// Cell is the occupancy category of a single board square.
type Cell uint8

const (
	Empty Cell = iota
	Obstacle
	HazardMemory

	cellKinds = 3
)

// String returns a human-readable name for the cell state
func (c Cell) String() string {
	switch c {
	case Empty:
		return "Empty"
	case Obstacle:
		return "Obstacle"
	case HazardMemory:
		return "Hazard Memory"
	default:
		return "Unknown"
	}
}

// Next returns the state a click advances the cell to.
func (c Cell) Next() Cell {
	return (c + 1) % cellKinds
}

// Position is a board coordinate. It doubles as a path vertex.
type Position struct {
	X int
	Y int
}

// Pos is shorthand for Position{X: x, Y: y}.
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

// In reports whether the position addresses a cell on the board.
func (p Position) In() bool {
	return InBounds(p.X, p.Y)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// InBounds reports whether (x,y) lies within [0,Width)x[0,Height).
func InBounds(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}

// DefaultStart and DefaultGoal are the marker positions after a reset.
var (
	DefaultStart = Position{X: 1, Y: 1}
	DefaultGoal  = Position{X: Width - 2, Y: Height - 2}
)

// Grid owns the cells and the two markers. The zero value is not ready for
// use; call New.
type Grid struct {
	cells [Height][Width]Cell
	start Position
	goal  Position
}

// New returns an all-empty grid with markers at their default positions.
func New() *Grid {
	g := &Grid{}
	g.Reset()
	return g
}

// Reset empties every cell and moves the markers back to their defaults.
func (g *Grid) Reset() {
	g.cells = [Height][Width]Cell{}
	g.start = DefaultStart
	g.goal = DefaultGoal
}

// At returns the state of (x,y). Out-of-bounds coordinates read as Empty.
func (g *Grid) At(x, y int) Cell {
	if !InBounds(x, y) {
		return Empty
	}
	return g.cells[y][x]
}

// Set writes a cell state directly. It reports false for out-of-bounds
// coordinates and leaves the grid untouched.
func (g *Grid) Set(x, y int, c Cell) bool {
	if !InBounds(x, y) || c >= cellKinds {
		return false
	}
	g.cells[y][x] = c
	return true
}

// CycleCell advances (x,y) Empty -> Obstacle -> HazardMemory -> Empty.
// Out-of-bounds coordinates are ignored and reported as false.
func (g *Grid) CycleCell(x, y int) bool {
	if !InBounds(x, y) {
		return false
	}
	g.cells[y][x] = g.cells[y][x].Next()
	return true
}

// Start returns the start marker.
func (g *Grid) Start() Position { return g.start }

// Goal returns the goal marker.
func (g *Grid) Goal() Position { return g.goal }

// SetStart moves the start marker. Markers may sit on obstacles; the planner
// answers "not found" for those.
func (g *Grid) SetStart(p Position) bool {
	if !p.In() {
		return false
	}
	g.start = p
	return true
}

// SetGoal moves the goal marker with the same rules as SetStart.
func (g *Grid) SetGoal(p Position) bool {
	if !p.In() {
		return false
	}
	g.goal = p
	return true
}

// Obstacles lists obstacle coordinates in row-major order.
func (g *Grid) Obstacles() []Position {
	return g.collect(Obstacle)
}

// Hazards lists hazard-memory coordinates in row-major order.
func (g *Grid) Hazards() []Position {
	return g.collect(HazardMemory)
}

// Count returns how many cells hold the given state.
func (g *Grid) Count(c Cell) int {
	n := 0
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if g.cells[y][x] == c {
				n++
			}
		}
	}
	return n
}

func (g *Grid) collect(c Cell) []Position {
	var out []Position
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if g.cells[y][x] == c {
				out = append(out, Position{X: x, Y: y})
			}
		}
	}
	return out
}

// Snapshot is a read-only copy of the board handed to renderers and request
// builders. It is a value type, so later edits never leak into it.
type Snapshot struct {
	Cells [Height][Width]Cell
	Start Position
	Goal  Position
}

// Snapshot copies the current board state.
func (g *Grid) Snapshot() Snapshot {
	return Snapshot{Cells: g.cells, Start: g.start, Goal: g.goal}
}

// At returns the state of (x,y) in the snapshot.
func (s Snapshot) At(x, y int) Cell {
	if !InBounds(x, y) {
		return Empty
	}
	return s.Cells[y][x]
}

// Obstacles lists obstacle coordinates in row-major order.
func (s Snapshot) Obstacles() []Position {
	g := Grid{cells: s.Cells}
	return g.Obstacles()
}

// Hazards lists hazard-memory coordinates in row-major order.
func (s Snapshot) Hazards() []Position {
	g := Grid{cells: s.Cells}
	return g.Hazards()
}
