package region

import (
	"fmt"
	"math"
	"strings"
)

// FadeCurve shapes a fade. The zero value is Linear.
type FadeCurve int

const (
	Linear FadeCurve = iota
	Exponential
	Logarithmic
	SCurve
)

var fadeCurveNames = [...]string{"linear", "exponential", "logarithmic", "s-curve"}

func (c FadeCurve) String() string {
	if c.Valid() {
		return fadeCurveNames[c]
	}
	return fmt.Sprintf("FadeCurve(%d)", int(c))
}

// Valid reports whether c is a known curve.
func (c FadeCurve) Valid() bool {
	return c >= Linear && c <= SCurve
}

// GainAt returns the fade gain at progress p, clamped to [0, 1].
func (c FadeCurve) GainAt(p float64) float64 {
	p = clamp(p, 0, 1)
	switch c {
	case Exponential:
		return p * p
	case Logarithmic:
		return math.Sqrt(p)
	case SCurve:
		return p * p * (3 - 2*p)
	default:
		return p
	}
}

// ParseFadeCurve accepts the names produced by String.
func ParseFadeCurve(s string) (FadeCurve, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Linear, nil
	}
	for i, name := range fadeCurveNames {
		if s == name {
			return FadeCurve(i), nil
		}
	}
	return Linear, invalidArgument("parse_fade_curve", "curve", s)
}

// MarshalYAML writes the curve name.
func (c FadeCurve) MarshalYAML() (any, error) {
	return c.String(), nil
}

// UnmarshalYAML reads a curve name.
func (c *FadeCurve) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseFadeCurve(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
