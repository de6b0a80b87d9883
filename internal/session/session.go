// internal/session/session.go
//
// The session controller is the single owner of everything the user edits:
// the board, the weight sliders, the plan workflow, the pending marker
// placement and the last explained result. The TUI and the headless commands
// drive it; the renderer and explain panel only ever see snapshots.

package session

import (
	"context"

	"github.com/kingrea/whybot/internal/explain"
	"github.com/kingrea/whybot/internal/grid"
	"github.com/kingrea/whybot/internal/planner"
	"github.com/kingrea/whybot/internal/render"
	"github.com/kingrea/whybot/internal/weights"
	"github.com/kingrea/whybot/internal/workflow"
)

// Mode is the pending marker placement, cleared after one click.
type Mode int

const (
	ModeNone Mode = iota
	ModeSettingStart
	ModeSettingGoal
)

// String returns a human-readable name for the mode
func (m Mode) String() string {
	switch m {
	case ModeSettingStart:
		return "Setting Start"
	case ModeSettingGoal:
		return "Setting Goal"
	default:
		return "Editing"
	}
}

// Layout picks the board a session boots with.
type Layout int

const (
	LayoutRandomWalls Layout = iota
	LayoutDemo
	LayoutEmpty
)

// ParseLayout maps a flag value to a layout.
func ParseLayout(name string) (Layout, bool) {
	switch name {
	case "random", "walls", "":
		return LayoutRandomWalls, true
	case "demo":
		return LayoutDemo, true
	case "empty", "clear":
		return LayoutEmpty, true
	}
	return 0, false
}

// Logger receives one line per state-changing action.
type Logger interface {
	Printf(format string, args ...any)
}

// Option customizes a Controller.
type Option func(*Controller)

// WithRandSource fixes the source used by RandomWalls.
func WithRandSource(rng grid.RandSource) Option {
	return func(c *Controller) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// WithLogger routes action logs to l.
func WithLogger(l Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithWeights sets the slider range and starting values.
func WithWeights(rng weights.Range, initial weights.Vector) Option {
	return func(c *Controller) {
		c.panel = weights.NewPanel(rng, initial)
	}
}

// WithLayout picks the boot board. The default is random walls.
func WithLayout(l Layout) Option {
	return func(c *Controller) {
		c.layout = l
	}
}

// Pending is a planning request that has been committed to but not yet
// answered. Request is a private copy; it is safe to send from any goroutine.
type Pending struct {
	Transition workflow.Transition
	Request    planner.Request
}

type explained struct {
	result   planner.Result
	baseline *planner.Result
	same     bool
}

// Controller owns the session state. Like the workflow it wraps, it is driven
// from one event loop and is not safe for concurrent use.
type Controller struct {
	grid   *grid.Grid
	panel  *weights.Panel
	flow   *workflow.Workflow
	mode   Mode
	layout Layout
	rng    grid.RandSource
	logger Logger

	last   *explained
	notice *Notice
}

// New builds a controller and lays out its boot board.
func New(opts ...Option) *Controller {
	c := &Controller{
		grid:   grid.New(),
		panel:  weights.NewPanel(weights.DefaultRange(), weights.Defaults()),
		flow:   workflow.New(),
		logger: nopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	switch c.layout {
	case LayoutDemo:
		c.DemoScenario()
	case LayoutEmpty:
		c.Clear()
	default:
		c.RandomWalls()
	}
	return c
}

// Grid returns a snapshot of the board.
func (c *Controller) Grid() grid.Snapshot { return c.grid.Snapshot() }

// Weights exposes the slider panel for direct edits.
func (c *Controller) Weights() *weights.Panel { return c.panel }

// Mode returns the pending marker placement.
func (c *Controller) Mode() Mode { return c.mode }

// State returns a copy of the path state.
func (c *Controller) State() workflow.State { return c.flow.State() }

// Phase reports the comparison workflow phase.
func (c *Controller) Phase() workflow.Phase { return c.flow.Phase() }

// Busy reports whether a planning request is in flight.
func (c *Controller) Busy() bool { return c.flow.Busy() }

// ArmStart makes the next board click move the start marker.
func (c *Controller) ArmStart() { c.mode = ModeSettingStart }

// ArmGoal makes the next board click move the goal marker.
func (c *Controller) ArmGoal() { c.mode = ModeSettingGoal }

// Disarm cancels a pending marker placement.
func (c *Controller) Disarm() { c.mode = ModeNone }

// Click applies a board click at (x,y): it places the armed marker, or
// cycles the cell when nothing is armed. Clicks off the board are ignored
// and leave the mode armed. It reports whether anything changed.
func (c *Controller) Click(x, y int) bool {
	if !grid.InBounds(x, y) {
		return false
	}
	p := grid.Pos(x, y)
	switch c.mode {
	case ModeSettingStart:
		c.mode = ModeNone
		return c.grid.SetStart(p)
	case ModeSettingGoal:
		c.mode = ModeNone
		return c.grid.SetGoal(p)
	default:
		return c.grid.CycleCell(x, y)
	}
}

// Clear empties the board, resets the markers and drops all path state.
func (c *Controller) Clear() {
	c.grid.Reset()
	c.resetPaths()
	c.logger.Printf("board cleared")
}

// RandomWalls lays out a fresh random board.
func (c *Controller) RandomWalls() {
	c.grid.RandomWalls(c.rng)
	c.resetPaths()
	c.logger.Printf("random walls: %d obstacles", c.grid.Count(grid.Obstacle))
}

// DemoScenario lays out the two-corridor demo board.
func (c *Controller) DemoScenario() {
	c.grid.DemoScenario()
	c.resetPaths()
	c.logger.Printf("demo scenario loaded")
}

func (c *Controller) resetPaths() {
	c.flow.Reset()
	c.mode = ModeNone
	c.last = nil
}

// Begin commits to action and snapshots the board and weights for the
// request. It fails with workflow.ErrBusy while another request is pending.
func (c *Controller) Begin(action workflow.Action) (Pending, error) {
	t, err := c.flow.Begin(action)
	if err != nil {
		return Pending{}, err
	}
	req := planner.BuildRequest(c.grid.Snapshot(), c.panel.Weights())
	if t.Bootstrap {
		c.logger.Printf("%s: no baseline yet, storing one from %s", action, req.Weights)
	} else {
		c.logger.Printf("%s requested with %s", action, req.Weights)
	}
	return Pending{Transition: t, Request: req}, nil
}

// Finish applies the planner's answer for t, updates the explain panel and
// raises the matching notice.
func (c *Controller) Finish(t workflow.Transition, res planner.Result, err error) workflow.Outcome {
	out := c.flow.Resolve(t, res, err)
	if out.Explained() && out.Result != nil {
		c.last = &explained{result: *out.Result, baseline: out.Baseline, same: out.Same}
	}
	if n, ok := noticeFor(out); ok {
		c.notice = &n
	}
	switch {
	case out.Kind == workflow.OutcomeBaselineLost:
		c.logger.Printf("%s answer dropped: board was reset", t.Action)
	case out.Err != nil:
		c.logger.Printf("%s failed: %v", t.Action, out.Err)
	case out.Result != nil:
		c.logger.Printf("%s -> %s (steps=%d cost=%.2f)", t.Action, out.Kind, out.Result.Steps, out.Result.TotalCost)
	}
	return out
}

// Run performs action synchronously against p.
func (c *Controller) Run(ctx context.Context, p workflow.Planner, action workflow.Action) (workflow.Outcome, error) {
	pending, err := c.Begin(action)
	if err != nil {
		return workflow.Outcome{}, err
	}
	res, perr := p.Plan(ctx, pending.Request)
	return c.Finish(pending.Transition, res, perr), nil
}

// Notice returns the notice awaiting acknowledgement, if any.
func (c *Controller) Notice() (Notice, bool) {
	if c.notice == nil {
		return Notice{}, false
	}
	return *c.notice, true
}

// DismissNotice acknowledges the pending notice.
func (c *Controller) DismissNotice() { c.notice = nil }

// Scene snapshots what the renderer draws.
func (c *Controller) Scene() render.Scene {
	st := c.flow.State()
	return render.Scene{
		Grid:           c.grid.Snapshot(),
		Current:        st.Current,
		Counterfactual: st.Counterfactual,
	}
}

// Explain builds the explain panel for the last explained result.
func (c *Controller) Explain() explain.Panel {
	if c.last == nil {
		return explain.Build(nil, nil, false)
	}
	res := c.last.result
	return explain.Build(&res, c.last.baseline, c.last.same)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
