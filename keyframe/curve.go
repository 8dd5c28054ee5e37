// Package keyframe evaluates animation curves and answers the frame
// mapping queries a clip asks of its time curve.
package keyframe

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/interp"
)

var (
	// ErrUnknownInterpolation is returned when parsing an unknown name.
	ErrUnknownInterpolation = errors.New("unknown interpolation")

	// ErrInvalidPoint is returned for control points with non-finite
	// coordinates.
	ErrInvalidPoint = errors.New("invalid control point")
)

// Point is one control point of a curve.
type Point struct {
	X             float64       `yaml:"x"`
	Y             float64       `yaml:"y"`
	Interpolation Interpolation `yaml:"interpolation,omitempty"`
}

// Curve is a piecewise function through ordered control points. Each
// segment uses the interpolation of its left point. Outside the control
// points the curve holds the first and last values.
//
// A Curve is immutable and safe for concurrent use.
type Curve struct {
	points []Point
	xs     []float64

	linear interp.PiecewiseLinear
	smooth interp.FritschButland
}

// NewCurve builds a curve from points in any order. When two points share
// an X the later one wins.
func NewCurve(points ...Point) (*Curve, error) {
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return nil, fmt.Errorf("%w: (%g, %g)", ErrInvalidPoint, p.X, p.Y)
		}
	}

	sorted := slices.Clone(points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	c := &Curve{}
	for _, p := range sorted {
		if n := len(c.points); n > 0 && c.points[n-1].X == p.X {
			c.points[n-1] = p
			continue
		}
		c.points = append(c.points, p)
	}

	c.xs = make([]float64, len(c.points))
	ys := make([]float64, len(c.points))
	for i, p := range c.points {
		c.xs[i], ys[i] = p.X, p.Y
	}
	if len(c.points) >= 2 {
		if err := c.linear.Fit(c.xs, ys); err != nil {
			return nil, fmt.Errorf("fitting linear segments: %w", err)
		}
		if err := c.smooth.Fit(c.xs, ys); err != nil {
			return nil, fmt.Errorf("fitting smooth segments: %w", err)
		}
	}

	return c, nil
}

// MustCurve is like NewCurve but panics on invalid points. It is meant for
// literal curves in code and tests.
func MustCurve(points ...Point) *Curve {
	c, err := NewCurve(points...)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of control points.
func (c *Curve) Len() int {
	return len(c.points)
}

// Points returns a copy of the control points in X order.
func (c *Curve) Points() []Point {
	return slices.Clone(c.points)
}

// Value evaluates the curve at x. A curve without points is zero.
func (c *Curve) Value(x float64) float64 {
	switch n := len(c.points); {
	case n == 0:
		return 0
	case n == 1 || x <= c.points[0].X:
		return c.points[0].Y
	case x >= c.points[n-1].X:
		return c.points[n-1].Y
	}

	// Left point of the segment holding x.
	i := sort.SearchFloat64s(c.xs, x)
	if c.xs[i] != x {
		i--
	}

	switch c.points[i].Interpolation {
	case Constant:
		return c.points[i].Y
	case Smooth:
		return c.smooth.Predict(x)
	default:
		return c.linear.Predict(x)
	}
}

// IntValue returns the value at x rounded to the nearest integer.
func (c *Curve) IntValue(x float64) int {
	return int(math.Round(c.Value(x)))
}

// LastX returns the X of the last control point, or zero without points.
func (c *Curve) LastX() float64 {
	if len(c.points) == 0 {
		return 0
	}
	return c.points[len(c.points)-1].X
}
