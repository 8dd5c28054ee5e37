package mathutil

// Bessel series constants.
const (
	// besselMaxTerms bounds the power series; beta values used for audio
	// windows stay well below the point where this matters.
	besselMaxTerms = 500

	// besselEpsilon stops the series once a term no longer moves the sum.
	besselEpsilon = 1e-17
)

// Kaiser window formula constants
// From Kaiser & Schafer's empirical formulas
const (
	kaiserAttHigh   = 50.0 // High attenuation threshold (dB)
	kaiserAttMedium = 21.0 // Medium attenuation threshold (dB)

	kaiserBetaHighCoeff = 0.1102
	kaiserBetaHighShift = 8.7

	kaiserBetaMediumCoeff1 = 0.5842
	kaiserBetaMediumPower  = 0.4
	kaiserBetaMediumCoeff2 = 0.07886
)
