package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keyboard bindings for the TUI.
type KeyMap struct {
	// Global keys
	Quit      key.Binding
	Help      key.Binding
	Dismiss   key.Binding
	ToggleLog key.Binding

	// Board editing
	SetStart key.Binding
	SetGoal  key.Binding
	Clear    key.Binding
	Walls    key.Binding
	Demo     key.Binding

	// Planning actions
	Plan           key.Binding
	StoreBaseline  key.Binding
	Counterfactual key.Binding

	// Sliders
	NextSlider  key.Binding
	PrevSlider  key.Binding
	Increase    key.Binding
	Decrease    key.Binding
	SaveWeights key.Binding

	Export key.Binding
}

// DefaultKeyMap returns a KeyMap with default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("enter", "esc"),
			key.WithHelp("enter/esc", "dismiss"),
		),
		ToggleLog: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "session log"),
		),

		SetStart: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "set start"),
		),
		SetGoal: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "set goal"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear"),
		),
		Walls: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "random walls"),
		),
		Demo: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "demo scenario"),
		),

		Plan: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "plan"),
		),
		StoreBaseline: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "store baseline"),
		),
		Counterfactual: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "counterfactual"),
		),

		NextSlider: key.NewBinding(
			key.WithKeys("tab", "down", "j"),
			key.WithHelp("tab/↓", "next weight"),
		),
		PrevSlider: key.NewBinding(
			key.WithKeys("shift+tab", "up", "k"),
			key.WithHelp("shift+tab/↑", "prev weight"),
		),
		Increase: key.NewBinding(
			key.WithKeys("right", "l", "+"),
			key.WithHelp("→", "raise"),
		),
		Decrease: key.NewBinding(
			key.WithKeys("left", "h", "-"),
			key.WithHelp("←", "lower"),
		),
		SaveWeights: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save weights as defaults"),
		),

		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export png"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Plan, k.StoreBaseline, k.Counterfactual, k.SetStart, k.SetGoal, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Plan, k.StoreBaseline, k.Counterfactual, k.Export},
		{k.SetStart, k.SetGoal, k.Clear, k.Walls, k.Demo},
		{k.NextSlider, k.PrevSlider, k.Increase, k.Decrease, k.SaveWeights},
		{k.Dismiss, k.ToggleLog, k.Help, k.Quit},
	}
}
