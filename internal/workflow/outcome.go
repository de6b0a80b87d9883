package workflow

import "github.com/kingrea/whybot/internal/planner"

// OutcomeKind names the result of resolving a transition. Each kind maps to
// exactly one user-facing notice (or none).
type OutcomeKind int

const (
	// OutcomeBaselineAutoStored: Plan succeeded and its result became the
	// baseline as well as the current path.
	OutcomeBaselineAutoStored OutcomeKind = iota + 1
	// OutcomePlanNotFound: Plan found no path; current and counterfactual
	// paths were cleared, the baseline kept.
	OutcomePlanNotFound
	// OutcomeBaselineStored: StoreBaseline succeeded.
	OutcomeBaselineStored
	// OutcomeStoreNotFound: StoreBaseline found no path; nothing changed.
	OutcomeStoreNotFound
	// OutcomeBaselineBootstrapped: Counterfactual had no baseline, so one was
	// stored from the current weights. No counterfactual was computed.
	OutcomeBaselineBootstrapped
	// OutcomeBootstrapNotFound: the implicit baseline request found no path.
	OutcomeBootstrapNotFound
	// OutcomeCounterfactual: a counterfactual path differing from the
	// baseline was stored.
	OutcomeCounterfactual
	// OutcomeCounterfactualEqual: the counterfactual path is identical to the
	// baseline path.
	OutcomeCounterfactualEqual
	// OutcomeCounterfactualNotFound: no counterfactual path; the previous one
	// stays on screen.
	OutcomeCounterfactualNotFound
	// OutcomeBaselineLost: the board was reset while the request was in
	// flight; the answer was dropped and nothing changed.
	OutcomeBaselineLost
	// OutcomeFailed: the planner could not be reached or answered garbage.
	OutcomeFailed
)

// String returns a short identifier used in logs
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeBaselineAutoStored:
		return "baseline-auto-stored"
	case OutcomePlanNotFound:
		return "plan-not-found"
	case OutcomeBaselineStored:
		return "baseline-stored"
	case OutcomeStoreNotFound:
		return "store-not-found"
	case OutcomeBaselineBootstrapped:
		return "baseline-bootstrapped"
	case OutcomeBootstrapNotFound:
		return "bootstrap-not-found"
	case OutcomeCounterfactual:
		return "counterfactual"
	case OutcomeCounterfactualEqual:
		return "counterfactual-equal"
	case OutcomeCounterfactualNotFound:
		return "counterfactual-not-found"
	case OutcomeBaselineLost:
		return "baseline-lost"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is what Resolve reports back to the caller.
type Outcome struct {
	Kind       OutcomeKind
	Transition Transition
	// Result is the planner's answer; nil when the call failed.
	Result *planner.Result
	// Baseline is the comparison reference for counterfactual outcomes.
	Baseline *planner.Result
	// Same is set when a counterfactual path equals the baseline path.
	Same bool
	Err  error
}

// Succeeded reports whether the planner returned a usable path.
func (o Outcome) Succeeded() bool {
	switch o.Kind {
	case OutcomeBaselineAutoStored, OutcomeBaselineStored, OutcomeBaselineBootstrapped,
		OutcomeCounterfactual, OutcomeCounterfactualEqual:
		return true
	}
	return false
}

// Explained reports whether the outcome carries a result worth showing in
// the explain panel. Plan shows its answer even when nothing was found.
func (o Outcome) Explained() bool {
	return o.Succeeded() || o.Kind == OutcomePlanNotFound
}
