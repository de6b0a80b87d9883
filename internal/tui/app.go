// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for whybot.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen
//
// Planning calls are the only slow thing here. Update reserves the request
// with the session, a tea.Cmd performs the HTTP round trip off the event
// loop, and the answer comes back as a planFinishedMsg that Update applies.

package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/whybot/internal/config"
	"github.com/kingrea/whybot/internal/logbook"
	"github.com/kingrea/whybot/internal/planner"
	"github.com/kingrea/whybot/internal/render"
	"github.com/kingrea/whybot/internal/session"
	"github.com/kingrea/whybot/internal/workflow"
)

const logPanelLines = 8

// HealthChecker is implemented by planners that can report readiness.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type planFinishedMsg struct {
	transition workflow.Transition
	result     planner.Result
	err        error
}

type exportFinishedMsg struct {
	path string
	err  error
}

type healthMsg struct {
	err error
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithContext sets the context planning calls run under.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

// WithLogbook attaches the session log shown in the log panel.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// WithConfig lets the app persist slider defaults and pick export settings.
func WithConfig(cfg *config.Config) AppOption {
	return func(a *App) {
		if cfg == nil {
			return
		}
		a.config = cfg
		a.exportDir = cfg.ExportsDir()
		a.cellSize = cfg.CellSize()
	}
}

// WithExportDir overrides where PNG snapshots go.
func WithExportDir(dir string) AppOption {
	return func(a *App) {
		if dir != "" {
			a.exportDir = dir
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	ctx     context.Context
	session *session.Controller
	planner workflow.Planner
	config  *config.Config
	logbook *logbook.Logbook

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	statusMsg    string
	plannerState string
	showLog      bool
	exportDir    string
	cellSize     int

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp creates a new App instance around a session and a planner.
func NewApp(s *session.Controller, p workflow.Planner, opts ...AppOption) *App {
	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))

	app := &App{
		ctx:          context.Background(),
		session:      s,
		planner:      p,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		spinner:      spin,
		plannerState: "checking…",
		exportDir:    filepath.Join(config.WhybotDir, "exports"),
		cellSize:     render.DefaultCellSize,
		statusMsg:    "Click cells to cycle obstacle → hazard → empty. p plans, c compares.",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.logInfo("Session opened · %s", s.Phase())
	return app
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.checkHealth()
}

func (a *App) checkHealth() tea.Cmd {
	hc, ok := a.planner.(HealthChecker)
	if !ok {
		return nil
	}
	ctx := a.ctx
	return func() tea.Msg {
		return healthMsg{err: hc.Health(ctx)}
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case healthMsg:
		if msg.err != nil {
			a.plannerState = "unreachable"
			a.logWarn("Planner health check failed: %v", msg.err)
		} else {
			a.plannerState = "ok"
		}
		return a, nil

	case planFinishedMsg:
		return a, a.finishPlan(msg)

	case exportFinishedMsg:
		if msg.err != nil {
			a.statusMsg = fmt.Sprintf("Export failed: %v", msg.err)
			a.logError("PNG export failed: %v", msg.err)
		} else {
			a.statusMsg = fmt.Sprintf("Saved %s", msg.path)
			a.logInfo("Exported %s", msg.path)
		}
		return a, nil

	case spinner.TickMsg:
		if !a.session.Busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.MouseMsg:
		return a, a.handleMouse(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if _, blocked := a.session.Notice(); blocked {
		return nil
	}
	x, y, ok := cellAt(msg.X, msg.Y)
	if !ok {
		return nil
	}
	mode := a.session.Mode()
	if a.session.Click(x, y) {
		switch mode {
		case session.ModeSettingStart:
			a.statusMsg = fmt.Sprintf("Start moved to %s", a.session.Grid().Start)
		case session.ModeSettingGoal:
			a.statusMsg = fmt.Sprintf("Goal moved to %s", a.session.Grid().Goal)
		default:
			a.statusMsg = fmt.Sprintf("Cell (%d,%d) is now %s", x, y, a.session.Grid().At(x, y))
		}
	}
	return nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A pending notice blocks everything but acknowledging it and quitting.
	if _, blocked := a.session.Notice(); blocked {
		switch {
		case key.Matches(msg, a.keys.Dismiss):
			a.session.DismissNotice()
		case msg.String() == "ctrl+c":
			return a, tea.Quit
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.logInfo("Session closed")
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	case key.Matches(msg, a.keys.Dismiss):
		if a.session.Mode() != session.ModeNone {
			a.session.Disarm()
			a.statusMsg = "Placement cancelled."
		}
	case key.Matches(msg, a.keys.ToggleLog):
		a.showLog = !a.showLog

	case key.Matches(msg, a.keys.SetStart):
		a.session.ArmStart()
		a.statusMsg = "Click a cell to place the start."
	case key.Matches(msg, a.keys.SetGoal):
		a.session.ArmGoal()
		a.statusMsg = "Click a cell to place the goal."
	case key.Matches(msg, a.keys.Clear):
		a.session.Clear()
		a.statusMsg = "Board cleared."
	case key.Matches(msg, a.keys.Walls):
		a.session.RandomWalls()
		a.statusMsg = "Random walls generated."
	case key.Matches(msg, a.keys.Demo):
		a.session.DemoScenario()
		a.statusMsg = "Demo scenario loaded: a short risky gate and a long safe one."

	case key.Matches(msg, a.keys.Plan):
		return a, a.beginPlan(workflow.ActionPlan)
	case key.Matches(msg, a.keys.StoreBaseline):
		return a, a.beginPlan(workflow.ActionStoreBaseline)
	case key.Matches(msg, a.keys.Counterfactual):
		return a, a.beginPlan(workflow.ActionCounterfactual)

	case key.Matches(msg, a.keys.NextSlider):
		a.session.Weights().SelectNext()
	case key.Matches(msg, a.keys.PrevSlider):
		a.session.Weights().SelectPrev()
	case key.Matches(msg, a.keys.Increase):
		a.nudge(1)
	case key.Matches(msg, a.keys.Decrease):
		a.nudge(-1)
	case key.Matches(msg, a.keys.SaveWeights):
		a.saveWeights()

	case key.Matches(msg, a.keys.Export):
		return a, a.export()
	}
	return a, nil
}

func (a *App) nudge(steps int) {
	p := a.session.Weights()
	c := p.Selected()
	p.Nudge(c, steps)
	a.statusMsg = fmt.Sprintf("%s weight %s", c, p.Label(c))
}

func (a *App) saveWeights() {
	if a.config == nil {
		a.statusMsg = "No config file to save weights to."
		return
	}
	w := a.session.Weights().Weights()
	if err := a.config.SaveDefaultWeights(w); err != nil {
		a.statusMsg = fmt.Sprintf("Could not save weights: %v", err)
		a.logError("Saving weights failed: %v", err)
		return
	}
	a.statusMsg = "Weights saved as defaults."
	a.logInfo("Default weights saved: %s", w)
}

// beginPlan reserves the request and returns the command that performs it.
func (a *App) beginPlan(action workflow.Action) tea.Cmd {
	pending, err := a.session.Begin(action)
	if err != nil {
		if errors.Is(err, workflow.ErrBusy) {
			a.statusMsg = "A plan request is already running."
		} else {
			a.statusMsg = err.Error()
		}
		return nil
	}
	a.statusMsg = fmt.Sprintf("%s: asking the planner…", action)
	return tea.Batch(a.spinner.Tick, planCmd(a.ctx, a.planner, pending))
}

func planCmd(ctx context.Context, p workflow.Planner, pending session.Pending) tea.Cmd {
	return func() tea.Msg {
		res, err := p.Plan(ctx, pending.Request)
		return planFinishedMsg{transition: pending.Transition, result: res, err: err}
	}
}

func (a *App) finishPlan(msg planFinishedMsg) tea.Cmd {
	out := a.session.Finish(msg.transition, msg.result, msg.err)
	switch out.Kind {
	case workflow.OutcomeFailed:
		a.plannerState = "error"
		if planner.IsFailure(out.Err) {
			a.plannerState = "unreachable"
		}
		a.logError("%s failed: %v", msg.transition.Action, out.Err)
		a.statusMsg = "Planner call failed."
	default:
		a.plannerState = "ok"
		a.logInfo("%s → %s", msg.transition.Action, out.Kind)
		a.statusMsg = statusFor(out)
	}
	return nil
}

func statusFor(out workflow.Outcome) string {
	switch out.Kind {
	case workflow.OutcomeBaselineAutoStored:
		return "Path planned and kept as the baseline."
	case workflow.OutcomeBaselineStored:
		return "Baseline stored."
	case workflow.OutcomeCounterfactual:
		return "Counterfactual differs from the baseline."
	case workflow.OutcomeCounterfactualEqual:
		return "Counterfactual retraced the baseline."
	default:
		return out.Kind.String()
	}
}

func (a *App) export() tea.Cmd {
	scene := a.session.Scene()
	caption := a.session.Explain().Lines()
	dir := a.exportDir
	cellSize := a.cellSize
	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportFinishedMsg{err: err}
		}
		path := filepath.Join(dir, fmt.Sprintf("whybot-%s.png", time.Now().Format("20060102-150405")))
		f, err := os.Create(path)
		if err != nil {
			return exportFinishedMsg{err: err}
		}
		img := render.Render(scene, render.Options{CellSize: cellSize, Caption: caption})
		if err := render.WritePNG(f, img); err != nil {
			_ = f.Close()
			return exportFinishedMsg{err: err}
		}
		return exportFinishedMsg{path: path, err: f.Close()}
	}
}

// View renders the current state to a string.
func (a *App) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ WHYBOT")

	board := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(renderBoard(a.session.Scene()))

	sideWidth := 44
	if a.width > 0 {
		sideWidth = max(30, a.width-lipgloss.Width(board)-2)
	}
	side := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(sideWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			a.renderStatusPanel(),
			"",
			renderSliders(a.session.Weights()),
			"",
			a.session.Explain().View(sideWidth-4),
		))

	body := lipgloss.JoinHorizontal(lipgloss.Top, board, side)
	sections := []string{header + "\n" + body, renderLegend()}
	if n, ok := a.session.Notice(); ok {
		sections = append(sections, renderNotice(n))
	}
	if a.showLog {
		if logPanel := a.renderLogPanel(); logPanel != "" {
			sections = append(sections, logPanel)
		}
	}
	status := a.statusMsg
	if a.session.Busy() {
		status = a.spinner.View() + " " + status
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render(status)
	sections = append(sections, footer, a.help.View(a.keys))
	return strings.Join(sections, "\n")
}

func (a *App) renderStatusPanel() string {
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	lines := []string{
		label.Render("Phase   ") + value.Render(a.session.Phase().String()),
		label.Render("Mode    ") + value.Render(a.session.Mode().String()),
		label.Render("Planner ") + value.Render(a.plannerState),
	}
	return strings.Join(lines, "\n")
}

func renderNotice(n session.Notice) string {
	border := lipgloss.Color("#5B8DEF")
	switch n.Level {
	case session.NoticeWarn:
		border = lipgloss.Color("#CC7A00")
	case session.NoticeError:
		border = lipgloss.Color("#FF6B6B")
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(border).Render(n.Title)
	hint := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("enter/esc to dismiss")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, n.Text(), "", hint))
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(logPanelLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s · %d entries", fileName, total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
	return box
}
