package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/whybot/internal/grid"
	"github.com/kingrea/whybot/internal/logbook"
	"github.com/kingrea/whybot/internal/planner"
	"github.com/kingrea/whybot/internal/session"
	"github.com/kingrea/whybot/internal/weights"
	"github.com/kingrea/whybot/internal/workflow"
)

type stubPlanner struct {
	replies   []planner.Result
	err       error
	healthErr error
	calls     int
}

func (s *stubPlanner) Plan(_ context.Context, _ planner.Request) (planner.Result, error) {
	s.calls++
	if s.err != nil {
		return planner.Result{}, s.err
	}
	if len(s.replies) == 0 {
		return planner.Result{Found: false}, nil
	}
	next := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return next, nil
}

func (s *stubPlanner) Health(context.Context) error { return s.healthErr }

var straight = planner.Result{
	Found:       true,
	Path:        []planner.Coord{{1, 1}, {2, 1}, {3, 1}},
	Steps:       2,
	TotalCost:   2,
	Percentages: map[string]float64{"time": 100},
	Explanation: "Straight along the top.",
}

func newTestApp(t *testing.T, p *stubPlanner, opts ...AppOption) *App {
	t.Helper()
	s := session.New(session.WithLayout(session.LayoutEmpty))
	return NewApp(s, p, opts...)
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{
		X:      boardOriginX + x*cellColumns,
		Y:      boardOriginY + y,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	}
}

// runCommands executes cmd and feeds every resulting message except spinner
// ticks back into the app, one level deep.
func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("expected *App model, got %T", model)
	}
	if cmd == nil {
		return app
	}
	var msgs []tea.Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, sub := range msg {
			if sub != nil {
				msgs = append(msgs, sub())
			}
		}
	default:
		msgs = append(msgs, msg)
	}
	for _, msg := range msgs {
		switch msg.(type) {
		case planFinishedMsg, exportFinishedMsg, healthMsg:
			next, _ := app.Update(msg)
			app = next.(*App)
		}
	}
	return app
}

func press(t *testing.T, app *App, k string) *App {
	t.Helper()
	model, cmd := app.Update(keyPress(k))
	return runCommands(t, model, cmd)
}

func TestCellAtMapsTwoColumnCells(t *testing.T) {
	x, y, ok := cellAt(boardOriginX+7, boardOriginY+4)
	if !ok || x != 3 || y != 4 {
		t.Fatalf("cellAt = %d,%d,%v; want 3,4,true", x, y, ok)
	}
	for _, pos := range [][2]int{{0, boardOriginY}, {boardOriginX, 1}, {boardOriginX + grid.Width*cellColumns, boardOriginY}, {boardOriginX, boardOriginY + grid.Height}} {
		if _, _, ok := cellAt(pos[0], pos[1]); ok {
			t.Fatalf("cellAt(%d,%d) should be off the board", pos[0], pos[1])
		}
	}
}

func TestMouseClickCyclesCell(t *testing.T) {
	app := newTestApp(t, &stubPlanner{})
	app.Update(click(5, 4))
	if got := app.session.Grid().At(5, 4); got != grid.Obstacle {
		t.Fatalf("cell after click = %s, want obstacle", got)
	}
	app.Update(tea.MouseMsg{X: boardOriginX + 12, Y: boardOriginY + 2, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if got := app.session.Grid().At(6, 2); got != grid.Empty {
		t.Fatalf("release events must not edit, got %s", got)
	}
}

func TestSetStartThenClick(t *testing.T) {
	app := newTestApp(t, &stubPlanner{})
	app = press(t, app, "s")
	if app.session.Mode() != session.ModeSettingStart {
		t.Fatalf("expected start placement armed")
	}
	app.Update(click(9, 9))
	if got := app.session.Grid().Start; got != grid.Pos(9, 9) {
		t.Fatalf("start = %s, want (9,9)", got)
	}
	if app.session.Mode() != session.ModeNone {
		t.Fatalf("placement should disarm after one click")
	}
}

func TestPlanRoundTrip(t *testing.T) {
	p := &stubPlanner{replies: []planner.Result{straight}}
	app := newTestApp(t, p)
	app = press(t, app, "p")
	if p.calls != 1 {
		t.Fatalf("planner calls = %d, want 1", p.calls)
	}
	if app.session.Busy() {
		t.Fatalf("request should be resolved")
	}
	st := app.session.State()
	if st.Baseline == nil || len(st.Current) != 3 {
		t.Fatalf("plan did not set baseline and current path: %+v", st)
	}
	if app.plannerState != "ok" {
		t.Fatalf("planner state = %q", app.plannerState)
	}
	if !strings.Contains(app.View(), "Straight along the top.") {
		t.Fatalf("explain panel missing from view")
	}
}

func TestSecondRequestWhileBusyIsRejected(t *testing.T) {
	p := &stubPlanner{replies: []planner.Result{straight}}
	app := newTestApp(t, p)
	_, first := app.Update(keyPress("p"))
	if first == nil {
		t.Fatalf("expected a planning command")
	}
	_, second := app.Update(keyPress("c"))
	if second != nil {
		t.Fatalf("second request should not start while busy")
	}
	if !strings.Contains(app.statusMsg, "already running") {
		t.Fatalf("status = %q", app.statusMsg)
	}
	// Editing stays legal while the request is in flight.
	app.Update(click(10, 10))
	if app.session.Grid().At(10, 10) != grid.Obstacle {
		t.Fatalf("grid edit during flight was dropped")
	}
	runCommands(t, app, first)
	if app.session.Busy() {
		t.Fatalf("first request should resolve")
	}
}

func TestNoticeBlocksUntilDismissed(t *testing.T) {
	p := &stubPlanner{replies: []planner.Result{straight}}
	app := newTestApp(t, p)
	app = press(t, app, "b")
	app = press(t, app, "c")
	n, ok := app.session.Notice()
	if !ok || n.Message != "Counterfactual equals the baseline." {
		t.Fatalf("expected equality notice, got %+v (ok=%v)", n, ok)
	}
	if !strings.Contains(app.View(), "Move sliders more") {
		t.Fatalf("notice tips missing from view")
	}

	app = press(t, app, "x")
	if app.session.State().Baseline == nil {
		t.Fatalf("keys other than dismiss must be ignored while a notice is up")
	}
	app = press(t, app, "enter")
	if _, ok := app.session.Notice(); ok {
		t.Fatalf("enter should dismiss the notice")
	}
	app = press(t, app, "x")
	if app.session.State().Baseline != nil {
		t.Fatalf("clear should work after dismissing")
	}
}

func TestPlannerFailureShowsErrorNotice(t *testing.T) {
	p := &stubPlanner{err: fmt.Errorf("%w: connection refused", planner.ErrTransport)}
	app := newTestApp(t, p)
	app = press(t, app, "p")
	n, ok := app.session.Notice()
	if !ok || n.Level != session.NoticeError {
		t.Fatalf("expected error notice, got %+v", n)
	}
	if !strings.HasPrefix(n.Message, "Planner unavailable:") {
		t.Fatalf("message = %q", n.Message)
	}
	if app.plannerState != "unreachable" {
		t.Fatalf("planner state = %q", app.plannerState)
	}
}

func TestLocalPlannerErrorIsNotReportedAsUnreachable(t *testing.T) {
	app := newTestApp(t, &stubPlanner{err: errors.New("request cancelled")})
	app = press(t, app, "p")
	if _, ok := app.session.Notice(); !ok {
		t.Fatalf("expected an error notice")
	}
	if app.plannerState != "error" {
		t.Fatalf("planner state = %q, want error", app.plannerState)
	}
}

func TestSliderKeys(t *testing.T) {
	app := newTestApp(t, &stubPlanner{})
	app = press(t, app, "tab")
	if got := app.session.Weights().Selected(); got != weights.Risk {
		t.Fatalf("selected = %s, want Risk", got)
	}
	app = press(t, app, "right")
	app = press(t, app, "right")
	if got := app.session.Weights().Value(weights.Risk); got != 1.2 {
		t.Fatalf("risk = %v, want 1.2", got)
	}
	app = press(t, app, "-")
	if got := app.session.Weights().Value(weights.Risk); got != 1.1 {
		t.Fatalf("risk = %v, want 1.1", got)
	}
}

func TestHealthCheckOnInit(t *testing.T) {
	app := newTestApp(t, &stubPlanner{healthErr: errors.New("down")})
	app = runCommands(t, app, app.Init())
	if app.plannerState != "unreachable" {
		t.Fatalf("planner state = %q", app.plannerState)
	}
}

func TestExportWritesPNG(t *testing.T) {
	dir := t.TempDir()
	app := newTestApp(t, &stubPlanner{replies: []planner.Result{straight}}, WithExportDir(dir))
	app = press(t, app, "p")
	app = press(t, app, "e")
	if !strings.HasPrefix(app.statusMsg, "Saved ") {
		t.Fatalf("status = %q", app.statusMsg)
	}
	matches, err := filepath.Glob(filepath.Join(dir, "whybot-*.png"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one png, got %v (err=%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "\x89PNG") {
		t.Fatalf("export is not a png")
	}
}

func TestLogPanelToggle(t *testing.T) {
	lb, err := logbook.New(filepath.Join(t.TempDir(), "session.log"))
	if err != nil {
		t.Fatal(err)
	}
	app := newTestApp(t, &stubPlanner{replies: []planner.Result{straight}}, WithLogbook(lb))
	app = press(t, app, "p")
	if strings.Contains(app.View(), "LOG · session.log") {
		t.Fatalf("log panel should start hidden")
	}
	app = press(t, app, "L")
	view := app.View()
	if !strings.Contains(view, "LOG · session.log") {
		t.Fatalf("log panel missing after toggle")
	}
	if !strings.Contains(view, workflow.OutcomeBaselineAutoStored.String()) {
		t.Fatalf("log panel should show the plan outcome")
	}
}

func TestQuit(t *testing.T) {
	app := newTestApp(t, &stubPlanner{})
	_, cmd := app.Update(keyPress("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
