// internal/explain/explain.go
//
// The explain panel turns one planning result, and optionally the baseline it
// is compared against, into display text. Build is pure; View styles it for
// the terminal.

package explain

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/whybot/internal/planner"
	"github.com/kingrea/whybot/internal/weights"
)

// NoPathText is shown when the planner found nothing and sent no explanation.
const NoPathText = "No path found. Try removing obstacles or moving start/goal."

// SameAnnotation marks a counterfactual that retraced the baseline.
const SameAnnotation = "(Counterfactual = Baseline)"

// Bar is one criterion's share of the total cost.
type Bar struct {
	Criterion weights.Criterion
	Percent   float64
}

// Label formats the share with one decimal, e.g. "42.0%".
func (b Bar) Label() string {
	return fmt.Sprintf("%.1f%%", b.Percent)
}

// Delta is the signed difference between a result and its baseline.
type Delta struct {
	Steps int
	Cost  float64
}

// Panel is the explain panel content for one result.
type Panel struct {
	Empty bool
	Text  string
	Bars  []Bar
	// Delta is set only when a found baseline was supplied.
	Delta   *Delta
	Same    bool
	Summary string
}

// Build assembles the panel for res. baseline is ignored unless it was found;
// same marks a counterfactual whose path equals the baseline path.
func Build(res *planner.Result, baseline *planner.Result, same bool) Panel {
	if res == nil {
		return Panel{Empty: true, Bars: bars(planner.Result{})}
	}
	p := Panel{
		Text: res.Explanation,
		Bars: bars(*res),
	}
	if !res.Found && strings.TrimSpace(p.Text) == "" {
		p.Text = NoPathText
	}
	summary := fmt.Sprintf("Steps: %d · Total Cost: %.2f", res.Steps, res.TotalCost)
	if baseline != nil && baseline.Found {
		d := Delta{Steps: res.Steps - baseline.Steps, Cost: roundCents(res.TotalCost - baseline.TotalCost)}
		p.Delta = &d
		p.Same = same
		summary += fmt.Sprintf(" | Δ Steps %s %d · Δ Cost %s %.2f",
			Arrow(float64(d.Steps)), d.Steps, Arrow(d.Cost), d.Cost)
		if same {
			summary += " · " + SameAnnotation
		}
	}
	p.Summary = summary
	return p
}

// Arrow is the three-way indicator for a signed delta.
func Arrow(v float64) string {
	switch {
	case v > 0:
		return "▲"
	case v < 0:
		return "▼"
	default:
		return "="
	}
}

// roundCents rounds to the two decimals the summary prints, so the arrow
// always agrees with the number. Negative zero comes back as zero.
func roundCents(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}

func bars(res planner.Result) []Bar {
	out := make([]Bar, 0, len(weights.Criteria))
	for _, c := range weights.Criteria {
		out = append(out, Bar{Criterion: c, Percent: res.Percentage(c)})
	}
	return out
}

// Lines returns the panel as plain text lines, used for headless output and
// image captions.
func (p Panel) Lines() []string {
	if p.Empty {
		return nil
	}
	lines := []string{}
	if p.Text != "" {
		lines = append(lines, p.Text)
	}
	parts := make([]string, 0, len(p.Bars))
	for _, b := range p.Bars {
		parts = append(parts, fmt.Sprintf("%s %s", b.Criterion.Key(), b.Label()))
	}
	lines = append(lines, strings.Join(parts, "  "))
	lines = append(lines, p.Summary)
	return lines
}

const barCells = 20

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7AA2FF"))
	summaryStyle = lipgloss.NewStyle().
			Bold(true)
)

// View renders the panel at the given width.
func (p Panel) View(width int) string {
	width = max(24, width)
	title := titleStyle.Render("WHY THIS PATH")
	if p.Empty {
		note := mutedStyle.Render("Plan a route to see how its cost breaks down.")
		return lipgloss.JoinVertical(lipgloss.Left, title, note)
	}
	text := textStyle.Width(width).Render(p.Text)

	nameWidth := 0
	for _, b := range p.Bars {
		nameWidth = max(nameWidth, len(b.Criterion.Key()))
	}
	rows := make([]string, 0, len(p.Bars))
	for _, b := range p.Bars {
		filled := int(math.Round(math.Min(100, math.Max(0, b.Percent)) / 100 * barCells))
		bar := barStyle.Render(strings.Repeat("█", filled)) +
			mutedStyle.Render(strings.Repeat("░", barCells-filled))
		rows = append(rows, fmt.Sprintf("%-*s %s %6s", nameWidth, b.Criterion.Key(), bar, b.Label()))
	}
	summary := summaryStyle.Width(width).Render(p.Summary)
	return lipgloss.JoinVertical(lipgloss.Left, title, text, "", strings.Join(rows, "\n"), "", summary)
}
