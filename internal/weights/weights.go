package weights

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Criterion names one of the five cost terms the planner trades off.
type Criterion int

const (
	Time Criterion = iota
	Risk
	Energy
	Uncertainty
	Memory
)

// Criteria lists every criterion in display order.
var Criteria = []Criterion{Time, Risk, Energy, Uncertainty, Memory}

// Key returns the wire/JSON name of the criterion.
func (c Criterion) Key() string {
	switch c {
	case Time:
		return "time"
	case Risk:
		return "risk"
	case Energy:
		return "energy"
	case Uncertainty:
		return "uncertainty"
	case Memory:
		return "memory"
	default:
		return "unknown"
	}
}

// String returns the display name.
func (c Criterion) String() string {
	k := c.Key()
	return strings.ToUpper(k[:1]) + k[1:]
}

// ParseCriterion maps a wire name back to its criterion.
func ParseCriterion(name string) (Criterion, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range Criteria {
		if c.Key() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("weights: unknown criterion %q", name)
}

// Vector is a snapshot of the five weights. The fields are independent; they
// need not sum to anything in particular.
type Vector struct {
	Time        float64 `json:"time" yaml:"time"`
	Risk        float64 `json:"risk" yaml:"risk"`
	Energy      float64 `json:"energy" yaml:"energy"`
	Uncertainty float64 `json:"uncertainty" yaml:"uncertainty"`
	Memory      float64 `json:"memory" yaml:"memory"`
}

// Defaults mirrors the planner service's own defaults.
func Defaults() Vector {
	return Vector{Time: 1.0, Risk: 1.0, Energy: 0.5, Uncertainty: 0.3, Memory: 1.0}
}

// Uniform returns a vector with every weight set to v.
func Uniform(v float64) Vector {
	return Vector{Time: v, Risk: v, Energy: v, Uncertainty: v, Memory: v}
}

// Get returns the weight for c.
func (v Vector) Get(c Criterion) float64 {
	switch c {
	case Time:
		return v.Time
	case Risk:
		return v.Risk
	case Energy:
		return v.Energy
	case Uncertainty:
		return v.Uncertainty
	case Memory:
		return v.Memory
	}
	return 0
}

// With returns a copy of v with c set to value.
func (v Vector) With(c Criterion, value float64) Vector {
	switch c {
	case Time:
		v.Time = value
	case Risk:
		v.Risk = value
	case Energy:
		v.Energy = value
	case Uncertainty:
		v.Uncertainty = value
	case Memory:
		v.Memory = value
	}
	return v
}

// ParseAssignments applies "name=value" pairs separated by commas or spaces
// on top of base, e.g. "risk=3, time=0.3".
func ParseAssignments(list string, base Vector) (Vector, error) {
	fields := strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ' ' })
	for _, field := range fields {
		name, raw, ok := strings.Cut(field, "=")
		if !ok {
			return base, fmt.Errorf("weights: %q is not name=value", field)
		}
		c, err := ParseCriterion(name)
		if err != nil {
			return base, err
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return base, fmt.Errorf("weights: %s: %w", c.Key(), err)
		}
		base = base.With(c, value)
	}
	return base, nil
}

// String renders the vector as "time=1.0 risk=1.0 ...".
func (v Vector) String() string {
	parts := make([]string, 0, len(Criteria))
	for _, c := range Criteria {
		parts = append(parts, fmt.Sprintf("%s=%s", c.Key(), FormatValue(v.Get(c))))
	}
	return strings.Join(parts, " ")
}

// FormatValue renders a weight with the one-decimal display precision.
func FormatValue(value float64) string {
	return fmt.Sprintf("%.1f", value)
}

func roundTenth(value float64) float64 {
	return math.Round(value*10) / 10
}
