package weights

import "fmt"

const (
	// DefaultMin is the lower bound of every slider.
	DefaultMin = 0.0
	// DefaultMax is the upper bound of every slider.
	DefaultMax = 5.0
	// DefaultStep is the increment of one slider nudge.
	DefaultStep = 0.1
)

// Range bounds a slider.
type Range struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// DefaultRange is the slider range used when nothing else is configured.
func DefaultRange() Range {
	return Range{Min: DefaultMin, Max: DefaultMax, Step: DefaultStep}
}

func (r *Range) normalize() {
	if r.Step <= 0 {
		r.Step = DefaultStep
	}
	if r.Max <= r.Min {
		r.Min, r.Max = DefaultMin, DefaultMax
	}
}

// Validate reports whether the range is usable as-is.
func (r Range) Validate() error {
	if r.Step <= 0 {
		return fmt.Errorf("step must be > 0")
	}
	if r.Max <= r.Min {
		return fmt.Errorf("max (%.1f) must exceed min (%.1f)", r.Max, r.Min)
	}
	return nil
}

// Clamp rounds value to the display precision and then bounds it to the
// range, so a result never falls outside [Min, Max].
func (r Range) Clamp(value float64) float64 {
	value = roundTenth(value)
	if value < r.Min {
		value = r.Min
	}
	if value > r.Max {
		value = r.Max
	}
	return value
}

// Panel holds the five sliders and which one has focus. Changing a slider
// only changes its label; it never asks for a new plan.
type Panel struct {
	rng      Range
	values   Vector
	selected Criterion
}

// NewPanel builds a panel starting at initial, clamped into rng.
func NewPanel(rng Range, initial Vector) *Panel {
	rng.normalize()
	p := &Panel{rng: rng}
	for _, c := range Criteria {
		p.values = p.values.With(c, rng.Clamp(initial.Get(c)))
	}
	return p
}

// Range returns the slider bounds.
func (p *Panel) Range() Range { return p.rng }

// Weights snapshots the current slider values.
func (p *Panel) Weights() Vector { return p.values }

// Value returns one slider value.
func (p *Panel) Value(c Criterion) float64 { return p.values.Get(c) }

// Label returns the slider's display text.
func (p *Panel) Label(c Criterion) string { return FormatValue(p.values.Get(c)) }

// Set moves a slider, clamping into range. It returns the stored value.
func (p *Panel) Set(c Criterion, value float64) float64 {
	v := p.rng.Clamp(value)
	p.values = p.values.With(c, v)
	return v
}

// SetAll replaces every slider value.
func (p *Panel) SetAll(v Vector) {
	for _, c := range Criteria {
		p.Set(c, v.Get(c))
	}
}

// Nudge moves a slider by steps increments (negative moves down).
func (p *Panel) Nudge(c Criterion, steps int) float64 {
	return p.Set(c, p.values.Get(c)+float64(steps)*p.rng.Step)
}

// Selected returns the focused slider.
func (p *Panel) Selected() Criterion { return p.selected }

// Select focuses a slider; unknown criteria are ignored.
func (p *Panel) Select(c Criterion) {
	if c < Time || c > Memory {
		return
	}
	p.selected = c
}

// SelectNext moves focus down, wrapping at the end.
func (p *Panel) SelectNext() {
	p.selected = Criteria[(int(p.selected)+1)%len(Criteria)]
}

// SelectPrev moves focus up, wrapping at the start.
func (p *Panel) SelectPrev() {
	p.selected = Criteria[(int(p.selected)+len(Criteria)-1)%len(Criteria)]
}

// Fraction returns where the slider sits in its range, 0..1, for drawing.
func (p *Panel) Fraction(c Criterion) float64 {
	span := p.rng.Max - p.rng.Min
	if span <= 0 {
		return 0
	}
	return (p.values.Get(c) - p.rng.Min) / span
}
