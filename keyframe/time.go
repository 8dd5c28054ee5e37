package keyframe

import "math"

// Repeat is the position of an output frame within a run of consecutive
// output frames that map to the same source frame. Den is the run length,
// Num the 1-based position. Den == 1 means the frame is not repeated.
type Repeat struct {
	Num int
	Den int
}

// Fraction returns Num/Den.
func (r Repeat) Fraction() float64 {
	return float64(r.Num) / float64(r.Den)
}

// IsFirst reports whether this is the first frame of its run.
func (r Repeat) IsFirst() bool {
	return r.Num == 1
}

// IsLast reports whether this is the last frame of its run.
func (r Repeat) IsLast() bool {
	return r.Num == r.Den
}

// TimeCurve maps output frame numbers of a clip to source frame numbers.
// Both are 1-based.
type TimeCurve struct {
	curve *Curve
}

// NewTimeCurve wraps a curve. A nil curve behaves like an identity mapping.
func NewTimeCurve(c *Curve) *TimeCurve {
	if c == nil {
		c = MustCurve()
	}
	return &TimeCurve{curve: c}
}

// Curve returns the underlying curve.
func (t *TimeCurve) Curve() *Curve {
	return t.curve
}

// IsIdentity reports whether the curve has at most one control point.
// Such a curve does not remap time at all.
func (t *TimeCurve) IsIdentity() bool {
	return t.curve.Len() <= 1
}

// Length returns the number of output frames covered by the control points.
func (t *TimeCurve) Length() int {
	return max(int(math.Round(t.curve.LastX())), 0)
}

// MappedFrame returns the source frame for output frame n, never below 1.
func (t *TimeCurve) MappedFrame(n int) int {
	return max(t.curve.IntValue(float64(n)), 1)
}

// Delta returns MappedFrame(n) - MappedFrame(n-1).
func (t *TimeCurve) Delta(n int) int {
	return t.MappedFrame(n) - t.MappedFrame(n-1)
}

// RepeatFraction locates n within the run of neighbouring output frames
// mapped to the same source frame. The run does not extend below frame 1
// nor past the last control point. Frames past the last control point are
// never repeats.
func (t *TimeCurve) RepeatFraction(n int) Repeat {
	last := t.Length()
	if n > last {
		return Repeat{Num: 1, Den: 1}
	}
	current := t.MappedFrame(n)

	before := 0
	for k := n - 1; k >= 1 && t.MappedFrame(k) == current; k-- {
		before++
	}

	after := 0
	for k := n + 1; k <= last && t.MappedFrame(k) == current; k++ {
		after++
	}

	return Repeat{Num: before + 1, Den: before + after + 1}
}

// IsIncreasing reports whether the mapping advances through the source at
// n. Inside a run of repeated frames the direction is taken from the next
// frame that differs, then from the previous one. A flat curve counts as
// increasing.
func (t *TimeCurve) IsIncreasing(n int) bool {
	current := t.MappedFrame(n)

	for k := n + 1; k <= t.Length(); k++ {
		if next := t.MappedFrame(k); next != current {
			return next > current
		}
	}
	for k := n - 1; k >= 1; k-- {
		if prev := t.MappedFrame(k); prev != current {
			return prev < current
		}
	}
	return true
}
