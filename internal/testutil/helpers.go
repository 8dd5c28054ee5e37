// Package testutil provides reusable test helpers for the clip engine tests.
package testutil

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	SampleTolerance  = 1e-9
)

// AssertSymmetric verifies that a slice is symmetric (s[i] == s[n-1-i]).
func AssertSymmetric(t *testing.T, s []float64, tolerance float64) bool {
	t.Helper()
	n := len(s)
	for i := 0; i < n/2; i++ {
		j := n - 1 - i
		if !assert.InDelta(t, s[i], s[j], tolerance,
			"slice not symmetric at i=%d: s[%d]=%f != s[%d]=%f", i, i, s[i], j, s[j]) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertSlicesInDelta verifies element-wise closeness of two equally long slices.
func AssertSlicesInDelta(t *testing.T, expected, actual []float64, delta float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if math.Abs(expected[i]-actual[i]) > delta {
			return assert.Fail(t, "slices differ",
				"index %d: expected %f, got %f (delta %g)", i, expected[i], actual[i], delta)
		}
	}
	return true
}

// Tone returns n samples of a unit sine at freq Hz sampled at rate Hz,
// starting at sample offset.
func Tone(freq, rate float64, offset, n int) []float64 {
	s := make([]float64, n)
	omega := 2 * math.Pi * freq / rate
	for i := range s {
		s[i] = math.Sin(omega * float64(offset+i))
	}
	return s
}

// Ramp returns n samples start, start+step, ...
func Ramp(start, step float64, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = start + step*float64(i)
	}
	return s
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// bin of the signal's spectrum.
func DominantFrequency(signal []float64, rate float64) float64 {
	fft := fourier.NewFFT(len(signal))
	coeffs := fft.Coefficients(nil, signal)

	best, bestMag := 0, 0.0
	for i := 1; i < len(coeffs); i++ {
		if mag := cmplx.Abs(coeffs[i]); mag > bestMag {
			best, bestMag = i, mag
		}
	}

	return fft.Freq(best) * rate
}
