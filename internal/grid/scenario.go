package grid

import (
	"math/rand"
	"time"
)

// interiorObstacleRatio is the share of board cells drawn as random walls.
// Draws may land on the same cell twice, so the real density is a bit lower.
const interiorObstacleRatio = 0.12

// fixed hazard spots placed by RandomWalls.
var randomWallHazards = []Position{{X: 7, Y: 6}, {X: 18, Y: 15}}

// RandSource is the subset of *rand.Rand the regenerators need.
type RandSource interface {
	Intn(n int) int
}

// NewRandSource returns a time-seeded source for interactive use.
func NewRandSource() RandSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// SeededSource returns a reproducible source.
func SeededSource(seed int64) RandSource {
	return rand.New(rand.NewSource(seed))
}

// RandomWalls resets the board, walls in the border, scatters obstacles over
// the interior and drops two hazard-memory spots. A nil source falls back to
// a time-seeded one.
func (g *Grid) RandomWalls(rng RandSource) {
	if rng == nil {
		rng = NewRandSource()
	}
	g.Reset()
	g.drawBorder()
	ratio := interiorObstacleRatio
	draws := int(float64(Width*Height) * ratio)
	for i := 0; i < draws; i++ {
		x := 1 + rng.Intn(Width-2)
		y := 1 + rng.Intn(Height-2)
		g.cells[y][x] = Obstacle
	}
	for _, p := range randomWallHazards {
		g.cells[p.Y][p.X] = HazardMemory
	}
}

// DemoScenario builds a deterministic two-corridor map: a wall splits the
// board with a short gate near the top (next to a hazard cluster) and a long
// way round through a gate near the bottom.
func (g *Grid) DemoScenario() {
	g.Reset()
	g.drawBorder()
	wall := Width / 2
	for y := 1; y < Height-1; y++ {
		g.cells[y][wall] = Obstacle
	}
	g.cells[3][wall] = Empty
	g.cells[Height-4][wall] = Empty
	for y := 2; y <= 5; y++ {
		g.cells[y][wall-1] = HazardMemory
		g.cells[y][wall-2] = HazardMemory
	}
	g.start = Position{X: 2, Y: Height / 2}
	g.goal = Position{X: Width - 3, Y: Height / 2}
}

func (g *Grid) drawBorder() {
	for x := 0; x < Width; x++ {
		g.cells[0][x] = Obstacle
		g.cells[Height-1][x] = Obstacle
	}
	for y := 0; y < Height; y++ {
		g.cells[y][0] = Obstacle
		g.cells[y][Width-1] = Obstacle
	}
}
