package engine

// Cubic (Hermite) interpolation constants
const (
	// Hermite interpolation coefficients for smooth C1 continuity
	// Formula: y = ((a*x + b)*x + c)*x + d
	// coefA := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	hermiteCoeff0_5 = 0.5
	hermiteCoeff1_5 = 1.5
	hermiteCoeff2_5 = 2.5
)

// Windowed sinc constants
const (
	sincPhases = 256 // Fractional positions tabulated per input sample

	highZeroCrossings     = 16
	highAttenuation       = 80.0
	veryHighZeroCrossings = 32
	veryHighAttenuation   = 120.0

	// Anti-aliasing cutoff margin applied when compressing.
	compressCutoffScale = 0.95

	// Cap on the kernel half width in input samples.
	maxHalfTaps = 1024

	// Cutoffs closer than this share a kernel table.
	cutoffQuantum = 1e-6

	// Tables kept before the cache is reset.
	maxCachedTables = 32
)

// Resampling limits. Stretching has no ratio limit of its own; the output
// length bounds it instead.
const (
	MaxRatio         = 256.0
	MaxOutputSamples = 1 << 28
)
