// internal/workflow/workflow.go
//
// The plan/baseline/counterfactual state machine. Every planning action is
// split into Begin (decide what the request means, reserve the single
// in-flight slot) and Resolve (apply the planner's answer), so the network
// call can run anywhere while state only changes on the caller's side.

package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/kingrea/whybot/internal/grid"
	"github.com/kingrea/whybot/internal/planner"
)

// ErrBusy is returned by Begin while another request is in flight.
var ErrBusy = errors.New("workflow: a planning request is already in flight")

// Planner is the external planning service as the workflow sees it.
type Planner interface {
	Plan(ctx context.Context, req planner.Request) (planner.Result, error)
}

// Action is a user-triggered planning action.
type Action int

const (
	ActionPlan Action = iota
	ActionStoreBaseline
	ActionCounterfactual
)

// String returns a human-readable name for the action
func (a Action) String() string {
	switch a {
	case ActionPlan:
		return "Plan"
	case ActionStoreBaseline:
		return "Store Baseline"
	case ActionCounterfactual:
		return "Counterfactual"
	default:
		return "Unknown"
	}
}

// Transition is what a Begin call committed to doing. A Counterfactual with
// no baseline becomes an implicit StoreBaseline, marked by Bootstrap.
type Transition struct {
	Action    Action
	Bootstrap bool
	// Generation is the board generation the request was built against.
	Generation uint64
}

// Phase summarises where the comparison workflow stands.
type Phase int

const (
	PhaseNoBaseline Phase = iota
	PhaseHasBaseline
	PhaseHasCounterfactual
)

// String returns a human-readable name for the phase
func (p Phase) String() string {
	switch p {
	case PhaseNoBaseline:
		return "No Baseline"
	case PhaseHasBaseline:
		return "Baseline Stored"
	case PhaseHasCounterfactual:
		return "Counterfactual Ready"
	default:
		return "Unknown"
	}
}

// State is the path state the renderer and explain panel read.
type State struct {
	Current        grid.Path
	Counterfactual grid.Path
	Baseline       *planner.Result
}

// Workflow owns State. It is not safe for concurrent use; one event loop
// drives it.
type Workflow struct {
	state      State
	inFlight   *Transition
	generation uint64
}

// New returns an empty workflow.
func New() *Workflow {
	return &Workflow{}
}

// State returns a copy of the current path state.
func (w *Workflow) State() State {
	s := State{
		Current:        w.state.Current.Clone(),
		Counterfactual: w.state.Counterfactual.Clone(),
	}
	if w.state.Baseline != nil {
		b := *w.state.Baseline
		s.Baseline = &b
	}
	return s
}

// Baseline returns the stored baseline, or nil.
func (w *Workflow) Baseline() *planner.Result {
	return w.State().Baseline
}

// Phase reports the workflow phase derived from the state.
func (w *Workflow) Phase() Phase {
	switch {
	case w.state.Baseline == nil:
		return PhaseNoBaseline
	case len(w.state.Counterfactual) > 0:
		return PhaseHasCounterfactual
	default:
		return PhaseHasBaseline
	}
}

// Busy reports whether a request is in flight.
func (w *Workflow) Busy() bool {
	return w.inFlight != nil
}

// Pending returns the in-flight transition, if any.
func (w *Workflow) Pending() (Transition, bool) {
	if w.inFlight == nil {
		return Transition{}, false
	}
	return *w.inFlight, true
}

// Reset drops the baseline and both paths and starts a new board generation.
// Only grid-clearing actions call it. An in-flight request stays reserved
// until its answer arrives, but that answer is dropped.
func (w *Workflow) Reset() {
	w.state = State{}
	w.generation++
}

// Begin reserves the in-flight slot for action and decides how its answer
// will be applied.
func (w *Workflow) Begin(action Action) (Transition, error) {
	if w.inFlight != nil {
		return Transition{}, ErrBusy
	}
	switch action {
	case ActionPlan, ActionStoreBaseline, ActionCounterfactual:
	default:
		return Transition{}, fmt.Errorf("workflow: unknown action %d", action)
	}
	t := Transition{Action: action, Generation: w.generation}
	if action == ActionCounterfactual && w.state.Baseline == nil {
		t.Bootstrap = true
	}
	w.inFlight = &t
	return t, nil
}

// Resolve applies the planner's answer for t and releases the in-flight slot.
// A non-nil err is a transport, status or decoding failure; it is handled
// like "not found" for state but reported as OutcomeFailed.
func (w *Workflow) Resolve(t Transition, res planner.Result, err error) Outcome {
	w.inFlight = nil
	out := Outcome{Transition: t, Err: err}
	if t.Generation != w.generation {
		out.Kind = OutcomeBaselineLost
		return out
	}
	ok := err == nil && res.Found
	if err == nil {
		r := res
		out.Result = &r
	}

	switch {
	case t.Action == ActionPlan:
		if !ok {
			w.state.Current = nil
			w.state.Counterfactual = nil
			out.Kind = failedOr(err, OutcomePlanNotFound)
			break
		}
		w.establishBaseline(res)
		out.Kind = OutcomeBaselineAutoStored

	case t.Action == ActionStoreBaseline:
		if !ok {
			out.Kind = failedOr(err, OutcomeStoreNotFound)
			break
		}
		w.establishBaseline(res)
		out.Kind = OutcomeBaselineStored

	case t.Action == ActionCounterfactual && t.Bootstrap:
		if !ok {
			out.Kind = failedOr(err, OutcomeBootstrapNotFound)
			break
		}
		w.establishBaseline(res)
		out.Kind = OutcomeBaselineBootstrapped

	case t.Action == ActionCounterfactual:
		if !ok {
			out.Kind = failedOr(err, OutcomeCounterfactualNotFound)
			break
		}
		route := res.Route()
		w.state.Counterfactual = route
		out.Same = route.Equal(baselineRoute(w.state.Baseline))
		if out.Same {
			out.Kind = OutcomeCounterfactualEqual
		} else {
			out.Kind = OutcomeCounterfactual
		}
		b := *w.state.Baseline
		out.Baseline = &b
	}
	return out
}

// Run performs action synchronously against p with req.
func (w *Workflow) Run(ctx context.Context, p Planner, action Action, req planner.Request) (Outcome, error) {
	t, err := w.Begin(action)
	if err != nil {
		return Outcome{}, err
	}
	res, perr := p.Plan(ctx, req)
	return w.Resolve(t, res, perr), nil
}

func (w *Workflow) establishBaseline(res planner.Result) {
	b := res
	b.Path = append([]planner.Coord(nil), res.Path...)
	w.state.Baseline = &b
	w.state.Current = res.Route()
	w.state.Counterfactual = nil
}

func baselineRoute(b *planner.Result) grid.Path {
	if b == nil {
		return nil
	}
	return b.Route()
}

func failedOr(err error, kind OutcomeKind) OutcomeKind {
	if err != nil {
		return OutcomeFailed
	}
	return kind
}
