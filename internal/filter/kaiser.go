// Package filter designs the Kaiser-windowed sinc kernels used by the
// band-limited resampling path.
package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-clip-timemap/internal/mathutil"
	"github.com/tphakala/simd/f64"
)

const (
	// Table limits
	minZeroCrossings = 2
	minPhases        = 1

	// Window normalization
	windowNormalizationFactor = 2.0

	// Sinc function constants
	sincZeroThreshold = 1e-10
)

// ErrInvalidTable is returned for kernel parameters that cannot produce a
// usable interpolation table.
var ErrInvalidTable = errors.New("invalid sinc table parameters")

// KaiserWindow generates a symmetric Kaiser window of the given length.
//
//	w[n] = I₀(β·sqrt(1 - ((n - α)/α)²)) / I₀(β),  α = (N-1)/2
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}
	window := make([]float64, length)
	if length == 1 {
		window[0] = 1
		return window
	}

	alpha := float64(length-1) / windowNormalizationFactor
	i0Beta := mathutil.BesselI0(beta)
	for n := range window {
		window[n] = kaiserAt((float64(n)-alpha)/alpha, beta, i0Beta)
	}
	return window
}

// kaiserAt evaluates the Kaiser window at a normalized position x in [-1, 1].
func kaiserAt(x, beta, i0Beta float64) float64 {
	if x <= -1 || x >= 1 {
		if math.Abs(x) == 1 {
			return 1 / i0Beta
		}
		return 0
	}
	return mathutil.BesselI0(beta*math.Sqrt(1-x*x)) / i0Beta
}

// TableParams configures a SincTable.
type TableParams struct {
	// ZeroCrossings is the number of sinc lobes kept on each side of the
	// centre tap at full bandwidth.
	ZeroCrossings int

	// Cutoff is the normalized cutoff relative to the input Nyquist (0, 1].
	// Values below 1 widen the kernel to low-pass before decimation.
	Cutoff float64

	// Attenuation is the stopband attenuation in dB used to derive β.
	Attenuation float64

	// Phases is the number of fractional positions tabulated between two
	// input samples.
	Phases int

	// MaxHalfTaps caps the kernel half width in input samples. Zero means
	// no cap.
	MaxHalfTaps int
}

// Validate checks if the table parameters are usable.
func (p *TableParams) Validate() error {
	if p.ZeroCrossings < minZeroCrossings {
		return fmt.Errorf("%w: %d zero crossings (minimum %d)", ErrInvalidTable, p.ZeroCrossings, minZeroCrossings)
	}
	if p.Cutoff <= 0 || p.Cutoff > 1 || math.IsNaN(p.Cutoff) {
		return fmt.Errorf("%w: cutoff %f must be in (0, 1]", ErrInvalidTable, p.Cutoff)
	}
	if p.Attenuation < 0 {
		return fmt.Errorf("%w: attenuation %f dB must be positive", ErrInvalidTable, p.Attenuation)
	}
	if p.Phases < minPhases {
		return fmt.Errorf("%w: %d phases (minimum %d)", ErrInvalidTable, p.Phases, minPhases)
	}
	return nil
}

// SincTable is a windowed sinc kernel sampled at Phases+1 fractional
// offsets. Row p holds the taps for an output position p/Phases of a
// sample past an input sample, ordered from the oldest input sample to the
// newest.
type SincTable struct {
	phases   int
	halfTaps int
	rows     [][]float64
}

// NewSincTable designs the kernel. Every row is normalized to unity DC gain.
func NewSincTable(p TableParams) (*SincTable, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	halfTaps := int(math.Ceil(float64(p.ZeroCrossings) / p.Cutoff))
	if p.MaxHalfTaps > 0 {
		halfTaps = min(halfTaps, p.MaxHalfTaps)
	}

	beta := mathutil.KaiserBeta(p.Attenuation)
	i0Beta := mathutil.BesselI0(beta)
	width := float64(halfTaps)

	rows := make([][]float64, p.Phases+1)
	for phase := range rows {
		frac := float64(phase) / float64(p.Phases)
		row := make([]float64, 2*halfTaps)

		for j := range row {
			// Input sample k = j - halfTaps + 1 relative to the floor position.
			dist := float64(j-halfTaps+1) - frac
			row[j] = p.Cutoff * sinc(p.Cutoff*dist) * kaiserAt(dist/width, beta, i0Beta)
		}

		if sum := f64.Sum(row); math.Abs(sum) > sincZeroThreshold {
			f64.Scale(row, row, 1/sum)
		}
		rows[phase] = row
	}

	return &SincTable{phases: p.Phases, halfTaps: halfTaps, rows: rows}, nil
}

// HalfTaps returns the number of taps on each side of the interpolation
// point.
func (s *SincTable) HalfTaps() int {
	return s.halfTaps
}

// Taps returns the kernel length.
func (s *SincTable) Taps() int {
	return 2 * s.halfTaps
}

// Row returns the taps nearest to the fractional offset frac in [0, 1].
func (s *SincTable) Row(frac float64) []float64 {
	phase := int(math.Round(frac * float64(s.phases)))
	phase = min(max(phase, 0), s.phases)
	return s.rows[phase]
}

// sinc is the normalized sinc function sin(πx)/(πx).
func sinc(x float64) float64 {
	if math.Abs(x) < sincZeroThreshold {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}
