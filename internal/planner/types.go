package planner

import (
	"encoding/json"
	"fmt"

	"github.com/kingrea/whybot/internal/grid"
	"github.com/kingrea/whybot/internal/weights"
)

// Coord is a position in wire form: a two-element [x, y] array.
type Coord [2]int

// CoordOf converts a board position to wire form.
func CoordOf(p grid.Position) Coord {
	return Coord{p.X, p.Y}
}

// Position converts back to a board position.
func (c Coord) Position() grid.Position {
	return grid.Position{X: c[0], Y: c[1]}
}

// Request is the planner's input. The board travels as two sparse coordinate
// lists rather than a dense array.
type Request struct {
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Start     Coord          `json:"start"`
	Goal      Coord          `json:"goal"`
	Obstacles []Coord        `json:"obstacles"`
	Hazards   []Coord        `json:"hazards"`
	Weights   weights.Vector `json:"weights"`
}

// BuildRequest serialises a board snapshot and a weight vector. The snapshot
// is copied, so the request is safe to hand to another goroutine.
func BuildRequest(snap grid.Snapshot, w weights.Vector) Request {
	return Request{
		Width:     grid.Width,
		Height:    grid.Height,
		Start:     CoordOf(snap.Start),
		Goal:      CoordOf(snap.Goal),
		Obstacles: coords(snap.Obstacles()),
		Hazards:   coords(snap.Hazards()),
		Weights:   w,
	}
}

func coords(ps []grid.Position) []Coord {
	out := make([]Coord, 0, len(ps))
	for _, p := range ps {
		out = append(out, CoordOf(p))
	}
	return out
}

// Breakdown holds the absolute per-term cost sums along the chosen path.
type Breakdown struct {
	Time        float64 `json:"time"`
	Risk        float64 `json:"risk"`
	Energy      float64 `json:"energy"`
	Uncertainty float64 `json:"uncertainty"`
	Memory      float64 `json:"memory"`
}

// Result is one planning outcome. When Found is false the path is empty and
// the cost fields carry no comparable meaning.
type Result struct {
	Found       bool               `json:"found"`
	Path        []Coord            `json:"path"`
	Steps       int                `json:"steps"`
	TotalCost   float64            `json:"total_cost"`
	Percentages map[string]float64 `json:"percentages"`
	Breakdown   *Breakdown         `json:"breakdown,omitempty"`
	Explanation string             `json:"explanation"`
}

// Route returns the path as board positions. Unfound results have no route.
func (r Result) Route() grid.Path {
	if !r.Found || len(r.Path) == 0 {
		return nil
	}
	out := make(grid.Path, len(r.Path))
	for i, c := range r.Path {
		out[i] = c.Position()
	}
	return out
}

// Percentage returns the share of criterion c in the total cost, 0 if absent.
func (r Result) Percentage(c weights.Criterion) float64 {
	if r.Percentages == nil {
		return 0
	}
	return r.Percentages[c.Key()]
}

// decodeResult parses a response body and checks the parts the workflow
// relies on.
func decodeResult(body []byte) (Result, error) {
	var res Result
	if err := json.Unmarshal(body, &res); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !res.Found {
		res.Path = nil
		return res, nil
	}
	if len(res.Path) == 0 {
		return Result{}, fmt.Errorf("%w: found=true without a path", ErrMalformed)
	}
	for i, c := range res.Path {
		if !c.Position().In() {
			return Result{}, fmt.Errorf("%w: path[%d] %v outside the board", ErrMalformed, i, c)
		}
	}
	return res, nil
}
