package engine

import "fmt"

// Quality selects the interpolation kernel.
type Quality int

const (
	// QualityQuick interpolates linearly between neighbouring samples.
	QualityQuick Quality = iota
	// QualityMedium uses 4-point cubic Hermite interpolation.
	QualityMedium
	// QualityHigh uses a Kaiser windowed sinc with 16 zero crossings (80 dB).
	QualityHigh
	// QualityVeryHigh uses a Kaiser windowed sinc with 32 zero crossings (120 dB).
	QualityVeryHigh
)

// String returns the preset name.
func (q Quality) String() string {
	switch q {
	case QualityQuick:
		return "quick"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	case QualityVeryHigh:
		return "veryhigh"
	default:
		return fmt.Sprintf("Quality(%d)", int(q))
	}
}

// ParseQuality converts a preset name back to a Quality.
func ParseQuality(s string) (Quality, error) {
	for q := QualityQuick; q <= QualityVeryHigh; q++ {
		if q.String() == s {
			return q, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown quality %q", ErrInvalidQuality, s)
}

// Valid reports whether q names a preset.
func (q Quality) Valid() bool {
	return q >= QualityQuick && q <= QualityVeryHigh
}

// sincParams returns zero crossings and stopband attenuation for sinc presets.
func (q Quality) sincParams() (zeroCrossings int, attenuation float64, ok bool) {
	switch q {
	case QualityHigh:
		return highZeroCrossings, highAttenuation, true
	case QualityVeryHigh:
		return veryHighZeroCrossings, veryHighAttenuation, true
	default:
		return 0, 0, false
	}
}
