package timemap

import (
	"fmt"

	"github.com/tphakala/go-clip-timemap/buffer"
	"github.com/tphakala/go-clip-timemap/internal/engine"
)

// Resampler changes the length of a buffer.
//
// ratio is input length over output length, the playback speed: 1/3
// stretches a buffer to three times its length, 2 halves it. The output
// holds round(inputLength / ratio) samples. Implementations must not keep
// state between calls that affects later output, and must not modify in.
type Resampler interface {
	Resample(in *buffer.Buffer, ratio float64) (*buffer.Buffer, error)
}

// NewResampler returns the built-in resampler for a quality preset.
func NewResampler(quality ResampleQuality, parallel bool) (Resampler, error) {
	if !quality.valid() {
		return nil, fmt.Errorf("%w: unknown quality %d", ErrInvalidConfig, int(quality))
	}
	r, err := engine.NewResampler(quality.engineQuality(), parallel)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Stretch resamples in so that it lasts factor times as long, using a
// one-off resampler of the given quality.
func Stretch(in *buffer.Buffer, factor float64, quality ResampleQuality) (*buffer.Buffer, error) {
	r, err := NewResampler(quality, false)
	if err != nil {
		return nil, err
	}
	if factor <= 0 {
		return nil, fmt.Errorf("%w: stretch factor must be positive", ErrInvalidConfig)
	}
	return r.Resample(in, 1/factor)
}
