package session

import (
	"fmt"
	"strings"

	"github.com/kingrea/whybot/internal/workflow"
)

// NoticeLevel grades a blocking notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarn
	NoticeError
)

// String returns a human-readable name for the level
func (l NoticeLevel) String() string {
	switch l {
	case NoticeInfo:
		return "info"
	case NoticeWarn:
		return "warn"
	case NoticeError:
		return "error"
	default:
		return "unknown"
	}
}

// Notice is a message the user must acknowledge before carrying on.
type Notice struct {
	Level   NoticeLevel
	Title   string
	Message string
	Tips    []string
}

// Text flattens the notice for plain output.
func (n Notice) Text() string {
	var b strings.Builder
	b.WriteString(n.Message)
	if len(n.Tips) > 0 {
		b.WriteString("\n\nTips:")
		for _, tip := range n.Tips {
			b.WriteString("\n• ")
			b.WriteString(tip)
		}
	}
	return b.String()
}

var equalTips = []string{
	"Move sliders more (e.g., Risk=3.0, Time=0.3)",
	"Run the demo scenario",
	"Add hazard memory near one corridor",
}

// noticeFor maps an outcome to the notice it raises. Outcomes that only
// update the board and the explain panel raise none.
func noticeFor(out workflow.Outcome) (Notice, bool) {
	switch out.Kind {
	case workflow.OutcomePlanNotFound:
		return Notice{
			Level:   NoticeWarn,
			Title:   "No path",
			Message: "No path found for the current map. Try removing obstacles or moving start/goal.",
		}, true
	case workflow.OutcomeStoreNotFound:
		return Notice{
			Level:   NoticeWarn,
			Title:   "Store Baseline",
			Message: "No path to store as baseline.",
		}, true
	case workflow.OutcomeBootstrapNotFound:
		return Notice{
			Level:   NoticeWarn,
			Title:   "Counterfactual",
			Message: "No path available to set a baseline. Adjust the map.",
		}, true
	case workflow.OutcomeBaselineBootstrapped:
		return Notice{
			Level:   NoticeInfo,
			Title:   "Baseline set",
			Message: "Baseline set from current weights. Now move the sliders and run Counterfactual again.",
		}, true
	case workflow.OutcomeCounterfactualEqual:
		return Notice{
			Level:   NoticeInfo,
			Title:   "Same path",
			Message: "Counterfactual equals the baseline.",
			Tips:    equalTips,
		}, true
	case workflow.OutcomeCounterfactualNotFound:
		return Notice{
			Level:   NoticeWarn,
			Title:   "Counterfactual",
			Message: "No counterfactual path found.",
		}, true
	case workflow.OutcomeBaselineLost:
		return Notice{
			Level:   NoticeWarn,
			Title:   "Counterfactual",
			Message: "The board was reset while the planner was working, so its answer was dropped.",
		}, true
	case workflow.OutcomeFailed:
		return Notice{
			Level:   NoticeError,
			Title:   "Planner unavailable",
			Message: fmt.Sprintf("Planner unavailable: %v", out.Err),
		}, true
	}
	return Notice{}, false
}
