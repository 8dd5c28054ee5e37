package keyframe

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Interpolation selects how a curve moves from a control point to the next.
type Interpolation int

const (
	// Linear moves in a straight line to the next point.
	Linear Interpolation = iota
	// Constant holds the value until the next point.
	Constant
	// Smooth follows a monotone cubic through the neighbouring points.
	Smooth
)

var interpolationNames = [...]string{
	Linear:   "linear",
	Constant: "constant",
	Smooth:   "smooth",
}

func (i Interpolation) String() string {
	if i < 0 || int(i) >= len(interpolationNames) {
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
	return interpolationNames[i]
}

// ParseInterpolation parses an interpolation name, ignoring case.
func ParseInterpolation(s string) (Interpolation, error) {
	for i, name := range interpolationNames {
		if strings.EqualFold(name, s) {
			return Interpolation(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownInterpolation, s)
}

// MarshalYAML encodes the interpolation by name.
func (i Interpolation) MarshalYAML() (any, error) {
	return i.String(), nil
}

// UnmarshalYAML decodes an interpolation name. An empty value is Linear.
func (i *Interpolation) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*i = Linear
		return nil
	}
	parsed, err := ParseInterpolation(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*i = parsed
	return nil
}
