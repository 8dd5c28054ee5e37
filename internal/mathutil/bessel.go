// Package mathutil provides the numeric helpers shared by the filter design
// and sample accounting code.
package mathutil

import "math"

// BesselI0 computes the modified Bessel function of the first kind, order
// zero, by summing its power series
//
//	I₀(x) = Σ ((x/2)^k / k!)²
//
// The series converges for every x; for the Kaiser beta values used by the
// resampler (below 15) it needs fewer than 40 terms.
func BesselI0(x float64) float64 {
	half := x / 2
	sum := 1.0
	term := 1.0

	for k := 1; k < besselMaxTerms; k++ {
		f := half / float64(k)
		term *= f * f
		sum += term
		if term < sum*besselEpsilon {
			break
		}
	}

	return sum
}

// KaiserBeta returns the Kaiser window β that yields the given stopband
// attenuation in dB.
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff * (attenuation - kaiserBetaHighShift)
	case attenuation >= kaiserAttMedium:
		d := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(d, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*d
	default:
		return 0
	}
}

// RoundDiv returns num/den rounded to the nearest integer, halves away from
// zero, using exact integer arithmetic. den must be positive.
func RoundDiv(num, den int64) int64 {
	if num >= 0 {
		return (2*num + den) / (2 * den)
	}
	return -((-2*num + den) / (2 * den))
}
