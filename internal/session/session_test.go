package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/whybot/internal/grid"
	"github.com/kingrea/whybot/internal/planner"
	"github.com/kingrea/whybot/internal/weights"
	"github.com/kingrea/whybot/internal/workflow"
)

type fakePlanner struct {
	replies []planner.Result
	errs    []error
	reqs    []planner.Request
}

func (f *fakePlanner) Plan(_ context.Context, req planner.Request) (planner.Result, error) {
	f.reqs = append(f.reqs, req)
	if len(f.replies) == 0 {
		return planner.Result{}, fmt.Errorf("%w: nothing scripted", planner.ErrTransport)
	}
	res, err := f.replies[0], f.errs[0]
	f.replies, f.errs = f.replies[1:], f.errs[1:]
	return res, err
}

func (f *fakePlanner) then(res planner.Result, err error) *fakePlanner {
	f.replies = append(f.replies, res)
	f.errs = append(f.errs, err)
	return f
}

func route(steps int, cost float64, coords ...planner.Coord) planner.Result {
	return planner.Result{
		Found:       true,
		Path:        coords,
		Steps:       steps,
		TotalCost:   cost,
		Percentages: map[string]float64{"time": 60, "risk": 40},
		Explanation: "fine",
	}
}

var (
	short = route(2, 2.0, planner.Coord{1, 1}, planner.Coord{2, 1}, planner.Coord{3, 1})
	long  = route(4, 2.6, planner.Coord{1, 1}, planner.Coord{1, 2}, planner.Coord{2, 2}, planner.Coord{3, 2}, planner.Coord{3, 1})
)

type recordingLogger struct{ lines []string }

func (r *recordingLogger) Printf(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func newEmpty(t *testing.T, opts ...Option) *Controller {
	t.Helper()
	return New(append([]Option{WithLayout(LayoutEmpty)}, opts...)...)
}

func mustRun(t *testing.T, c *Controller, p workflow.Planner, a workflow.Action) workflow.Outcome {
	t.Helper()
	out, err := c.Run(context.Background(), p, a)
	require.NoError(t, err)
	return out
}

func TestBootsWithRandomWalls(t *testing.T) {
	a := New(WithRandSource(grid.SeededSource(3)))
	b := New(WithRandSource(grid.SeededSource(3)))
	assert.Equal(t, a.Grid(), b.Grid())
	assert.Equal(t, grid.Obstacle, a.Grid().At(0, 0))
	assert.Equal(t, grid.HazardMemory, a.Grid().At(7, 6))
}

func TestBootLayouts(t *testing.T) {
	demo := New(WithLayout(LayoutDemo))
	assert.Equal(t, grid.Pos(2, 12), demo.Grid().Start)

	empty := newEmpty(t)
	assert.Empty(t, empty.Grid().Obstacles())

	l, ok := ParseLayout("demo")
	assert.True(t, ok)
	assert.Equal(t, LayoutDemo, l)
	_, ok = ParseLayout("maze")
	assert.False(t, ok)
}

func TestClickCyclesCell(t *testing.T) {
	c := newEmpty(t)
	require.True(t, c.Click(5, 5))
	assert.Equal(t, grid.Obstacle, c.Grid().At(5, 5))
	c.Click(5, 5)
	c.Click(5, 5)
	assert.Equal(t, grid.Empty, c.Grid().At(5, 5))
}

func TestArmedClickPlacesMarkerOnce(t *testing.T) {
	c := newEmpty(t)
	c.ArmStart()
	assert.Equal(t, ModeSettingStart, c.Mode())
	require.True(t, c.Click(4, 9))
	assert.Equal(t, grid.Pos(4, 9), c.Grid().Start)
	assert.Equal(t, ModeNone, c.Mode())
	assert.Equal(t, grid.Empty, c.Grid().At(4, 9))

	// The next click edits again.
	c.Click(4, 9)
	assert.Equal(t, grid.Obstacle, c.Grid().At(4, 9))

	c.ArmGoal()
	c.Click(20, 3)
	assert.Equal(t, grid.Pos(20, 3), c.Grid().Goal)
}

func TestOffBoardClickIgnored(t *testing.T) {
	c := newEmpty(t)
	c.ArmGoal()
	before := c.Grid()
	assert.False(t, c.Click(-1, 3))
	assert.False(t, c.Click(grid.Width, 0))
	assert.Equal(t, before, c.Grid())
	assert.Equal(t, ModeSettingGoal, c.Mode())
}

func TestClearResetsBoardAndPaths(t *testing.T) {
	c := New(WithRandSource(grid.SeededSource(1)))
	p := (&fakePlanner{}).then(short, nil).then(long, nil)
	mustRun(t, c, p, workflow.ActionPlan)
	mustRun(t, c, p, workflow.ActionCounterfactual)
	c.ArmStart()

	c.Clear()
	snap := c.Grid()
	assert.Empty(t, snap.Obstacles())
	assert.Empty(t, snap.Hazards())
	assert.Equal(t, grid.DefaultStart, snap.Start)
	assert.Equal(t, grid.DefaultGoal, snap.Goal)
	st := c.State()
	assert.Nil(t, st.Baseline)
	assert.Empty(t, st.Current)
	assert.Empty(t, st.Counterfactual)
	assert.Equal(t, ModeNone, c.Mode())
	assert.True(t, c.Explain().Empty)
}

func TestRegeneratorsResetPaths(t *testing.T) {
	c := newEmpty(t)
	p := (&fakePlanner{}).then(short, nil)
	mustRun(t, c, p, workflow.ActionPlan)
	c.DemoScenario()
	assert.Nil(t, c.State().Baseline)
	assert.Empty(t, c.Scene().Current)

	mustRun(t, c, p.then(short, nil), workflow.ActionPlan)
	c.RandomWalls()
	assert.Equal(t, workflow.PhaseNoBaseline, c.Phase())
}

func TestBeginSnapshotsRequest(t *testing.T) {
	c := newEmpty(t)
	c.Weights().Set(weights.Risk, 3)
	c.Click(3, 3)
	pending, err := c.Begin(workflow.ActionPlan)
	require.NoError(t, err)

	// Edits while in flight do not touch the request already built.
	c.Click(4, 4)
	c.Weights().Set(weights.Risk, 0.2)
	assert.Equal(t, []planner.Coord{{3, 3}}, pending.Request.Obstacles)
	assert.Equal(t, 3.0, pending.Request.Weights.Risk)

	_, err = c.Begin(workflow.ActionCounterfactual)
	assert.ErrorIs(t, err, workflow.ErrBusy)
	assert.True(t, c.Busy())

	c.Finish(pending.Transition, short, nil)
	assert.False(t, c.Busy())
}

func TestPlanSetsExplainWithoutNotice(t *testing.T) {
	c := newEmpty(t)
	out := mustRun(t, c, (&fakePlanner{}).then(short, nil), workflow.ActionPlan)
	assert.Equal(t, workflow.OutcomeBaselineAutoStored, out.Kind)
	_, ok := c.Notice()
	assert.False(t, ok)
	panel := c.Explain()
	assert.Equal(t, "fine", panel.Text)
	assert.Equal(t, "Steps: 2 · Total Cost: 2.00", panel.Summary)
	assert.Equal(t, short.Route(), c.Scene().Current)
}

func TestPlanNotFoundScenario(t *testing.T) {
	c := newEmpty(t)
	p := (&fakePlanner{}).then(short, nil).then(long, nil).then(planner.Result{Found: false}, nil)
	mustRun(t, c, p, workflow.ActionPlan)
	mustRun(t, c, p, workflow.ActionCounterfactual)

	out := mustRun(t, c, p, workflow.ActionPlan)
	assert.Equal(t, workflow.OutcomePlanNotFound, out.Kind)
	st := c.State()
	assert.Empty(t, st.Current)
	assert.Empty(t, st.Counterfactual)
	require.NotNil(t, st.Baseline)
	assert.Equal(t, short.Path, st.Baseline.Path)

	n, ok := c.Notice()
	require.True(t, ok)
	assert.Equal(t, NoticeWarn, n.Level)
	assert.Contains(t, n.Message, "No path found")
	assert.Equal(t, "No path found. Try removing obstacles or moving start/goal.", c.Explain().Text)
}

func TestNotFoundWordingIsPerAction(t *testing.T) {
	messages := map[string]bool{}
	for _, action := range []workflow.Action{workflow.ActionPlan, workflow.ActionStoreBaseline, workflow.ActionCounterfactual} {
		c := newEmpty(t)
		mustRun(t, c, (&fakePlanner{}).then(planner.Result{Found: false}, nil), action)
		n, ok := c.Notice()
		require.True(t, ok, action.String())
		messages[n.Message] = true
	}
	assert.Len(t, messages, 3)

	c := newEmpty(t)
	p := (&fakePlanner{}).then(short, nil).then(planner.Result{Found: false}, nil)
	mustRun(t, c, p, workflow.ActionStoreBaseline)
	mustRun(t, c, p, workflow.ActionCounterfactual)
	n, _ := c.Notice()
	assert.Equal(t, "No counterfactual path found.", n.Message)
}

func TestStoreNotFoundKeepsExplain(t *testing.T) {
	c := newEmpty(t)
	p := (&fakePlanner{}).then(short, nil).then(planner.Result{Found: false, Explanation: "blocked"}, nil)
	mustRun(t, c, p, workflow.ActionPlan)
	mustRun(t, c, p, workflow.ActionStoreBaseline)
	assert.Equal(t, "fine", c.Explain().Text)
	n, _ := c.Notice()
	assert.Equal(t, "No path to store as baseline.", n.Message)
}

func TestCounterfactualBootstrapNotice(t *testing.T) {
	c := newEmpty(t)
	out := mustRun(t, c, (&fakePlanner{}).then(short, nil), workflow.ActionCounterfactual)
	assert.Equal(t, workflow.OutcomeBaselineBootstrapped, out.Kind)
	assert.Empty(t, c.State().Counterfactual)
	n, ok := c.Notice()
	require.True(t, ok)
	assert.Equal(t, NoticeInfo, n.Level)
	assert.Contains(t, n.Message, "Baseline set from current weights")
}

func TestUnchangedWeightsRaiseEqualityNotice(t *testing.T) {
	c := newEmpty(t)
	p := (&fakePlanner{}).then(short, nil).then(short, nil)
	mustRun(t, c, p, workflow.ActionStoreBaseline)
	out := mustRun(t, c, p, workflow.ActionCounterfactual)

	assert.Equal(t, workflow.OutcomeCounterfactualEqual, out.Kind)
	st := c.State()
	assert.Equal(t, st.Baseline.Route(), st.Counterfactual)
	n, ok := c.Notice()
	require.True(t, ok)
	assert.Equal(t, "Counterfactual equals the baseline.", n.Message)
	assert.Len(t, n.Tips, 3)
	assert.True(t, strings.HasSuffix(c.Explain().Summary, "(Counterfactual = Baseline)"))

	c.DismissNotice()
	_, ok = c.Notice()
	assert.False(t, ok)
}

func TestEndToEndComparison(t *testing.T) {
	c := newEmpty(t)
	c.Weights().SetAll(weights.Uniform(1))
	p := (&fakePlanner{}).then(short, nil).then(long, nil)

	mustRun(t, c, p, workflow.ActionPlan)
	require.NotNil(t, c.State().Baseline)
	assert.Equal(t, short.Path, c.State().Baseline.Path)

	c.Weights().Set(weights.Time, 0.3)
	c.Weights().Set(weights.Risk, 3.0)
	out := mustRun(t, c, p, workflow.ActionCounterfactual)
	assert.Equal(t, workflow.OutcomeCounterfactual, out.Kind)
	_, ok := c.Notice()
	assert.False(t, ok, "a differing counterfactual raises no notice")

	assert.Equal(t, 0.3, p.reqs[1].Weights.Time)
	assert.Equal(t, 3.0, p.reqs[1].Weights.Risk)

	panel := c.Explain()
	require.NotNil(t, panel.Delta)
	assert.Equal(t, long.Steps-short.Steps, panel.Delta.Steps)
	assert.InDelta(t, long.TotalCost-short.TotalCost, panel.Delta.Cost, 1e-9)
	assert.Equal(t, "Steps: 4 · Total Cost: 2.60 | Δ Steps ▲ 2 · Δ Cost ▲ 0.60", panel.Summary)

	scene := c.Scene()
	assert.Equal(t, short.Route(), scene.Current)
	assert.Equal(t, long.Route(), scene.Counterfactual)
}

func TestPlannerFailureIsDistinct(t *testing.T) {
	c := newEmpty(t)
	p := (&fakePlanner{}).then(short, nil).then(planner.Result{}, fmt.Errorf("%w: connection refused", planner.ErrTransport))
	mustRun(t, c, p, workflow.ActionPlan)
	out := mustRun(t, c, p, workflow.ActionCounterfactual)

	assert.Equal(t, workflow.OutcomeFailed, out.Kind)
	assert.True(t, errors.Is(out.Err, planner.ErrTransport))
	n, ok := c.Notice()
	require.True(t, ok)
	assert.Equal(t, NoticeError, n.Level)
	assert.True(t, strings.HasPrefix(n.Message, "Planner unavailable: "))
	assert.Equal(t, "fine", c.Explain().Text)
	assert.Equal(t, short.Route(), c.State().Current)
}

func TestClearWhileCounterfactualInFlight(t *testing.T) {
	c := newEmpty(t)
	mustRun(t, c, (&fakePlanner{}).then(short, nil), workflow.ActionPlan)
	pending, err := c.Begin(workflow.ActionCounterfactual)
	require.NoError(t, err)
	c.Clear()
	out := c.Finish(pending.Transition, long, nil)
	assert.Equal(t, workflow.OutcomeBaselineLost, out.Kind)
	assert.Empty(t, c.Scene().Counterfactual)
	n, _ := c.Notice()
	assert.Equal(t, NoticeWarn, n.Level)
}

func TestBoardResetDropsInFlightAnswers(t *testing.T) {
	cases := []struct {
		name   string
		action workflow.Action
		reset  func(c *Controller)
	}{
		{"plan then clear", workflow.ActionPlan, (*Controller).Clear},
		{"store baseline then demo", workflow.ActionStoreBaseline, (*Controller).DemoScenario},
		{"bootstrap then random walls", workflow.ActionCounterfactual, (*Controller).RandomWalls},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log := &recordingLogger{}
			c := newEmpty(t, WithLogger(log))
			pending, err := c.Begin(tc.action)
			require.NoError(t, err)
			tc.reset(c)

			out := c.Finish(pending.Transition, short, nil)
			assert.Equal(t, workflow.OutcomeBaselineLost, out.Kind)
			assert.Nil(t, c.State().Baseline)
			assert.Empty(t, c.Scene().Current)
			assert.Equal(t, workflow.PhaseNoBaseline, c.Phase())
			assert.True(t, c.Explain().Empty)
			n, ok := c.Notice()
			require.True(t, ok)
			assert.Equal(t, NoticeWarn, n.Level)
			assert.Contains(t, strings.Join(log.lines, "\n"), "answer dropped")
		})
	}
}

func TestClearDropsLateCounterfactualNotFound(t *testing.T) {
	c := newEmpty(t)
	mustRun(t, c, (&fakePlanner{}).then(short, nil), workflow.ActionPlan)
	pending, err := c.Begin(workflow.ActionCounterfactual)
	require.NoError(t, err)
	c.Clear()
	out := c.Finish(pending.Transition, planner.Result{Found: false}, nil)
	assert.Equal(t, workflow.OutcomeBaselineLost, out.Kind)
	n, _ := c.Notice()
	assert.NotEqual(t, "No counterfactual path found.", n.Message)
}

func TestActionsAreLogged(t *testing.T) {
	log := &recordingLogger{}
	c := newEmpty(t, WithLogger(log))
	mustRun(t, c, (&fakePlanner{}).then(short, nil), workflow.ActionPlan)
	joined := strings.Join(log.lines, "\n")
	assert.Contains(t, joined, "board cleared")
	assert.Contains(t, joined, "Plan requested")
	assert.Contains(t, joined, "baseline-auto-stored")
}

func TestNoticeText(t *testing.T) {
	n := Notice{Message: "Counterfactual equals the baseline.", Tips: []string{"a", "b"}}
	assert.Equal(t, "Counterfactual equals the baseline.\n\nTips:\n• a\n• b", n.Text())
}
