// Package engine implements the interpolation kernels behind the clip
// resampler: linear, cubic Hermite and Kaiser windowed sinc.
//
// Every call is stateless. A buffer is stretched or compressed as a whole,
// which is what the clip engine needs when it resamples the audio of one
// or more source frames into a new duration.
package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/tphakala/go-clip-timemap/buffer"
)

var (
	// ErrEmptyInput is returned when there are no samples to resample.
	ErrEmptyInput = errors.New("empty resampler input")

	// ErrInvalidRatio is returned for ratios that are not positive and
	// finite, or above MaxRatio.
	ErrInvalidRatio = errors.New("invalid resampling ratio")

	// ErrOutputTooLong is returned when the output would exceed
	// MaxOutputSamples per channel.
	ErrOutputTooLong = errors.New("resampler output too long")

	// ErrInvalidQuality is returned for unknown quality presets.
	ErrInvalidQuality = errors.New("invalid quality preset")
)

// Resampler converts whole buffers to a new length.
//
// ratio is input length over output length: 0.5 doubles the duration, 2
// halves it. The output holds round(inputLength / ratio) samples, at least
// one. A Resampler is safe for concurrent use.
type Resampler struct {
	quality  Quality
	parallel bool
	tables   *tableCache
}

// NewResampler creates a resampler for the given quality preset. With
// parallel set, channels are processed in separate goroutines.
func NewResampler(quality Quality, parallel bool) (*Resampler, error) {
	if !quality.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuality, int(quality))
	}
	return &Resampler{
		quality:  quality,
		parallel: parallel,
		tables:   newTableCache(),
	}, nil
}

// Quality returns the configured preset.
func (r *Resampler) Quality() Quality {
	return r.quality
}

// OutputLength returns the number of samples produced for inLen input
// samples at the given ratio.
func OutputLength(inLen int, ratio float64) int {
	return max(int(math.Round(float64(inLen)/ratio)), 1)
}

// ValidateRatio checks that ratio is positive, finite and at most
// MaxRatio.
func ValidateRatio(ratio float64) error {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio <= 0 || ratio > MaxRatio {
		return fmt.Errorf("%w: %g (must be in (0, %g])", ErrInvalidRatio, ratio, MaxRatio)
	}
	return nil
}

// validateOutput checks the output length of a stretch before anything
// is allocated.
func validateOutput(inLen int, ratio float64) error {
	if n := float64(inLen) / ratio; n > MaxOutputSamples {
		return fmt.Errorf("%w: %.0f samples (limit %d)", ErrOutputTooLong, n, MaxOutputSamples)
	}
	return nil
}

// Resample returns a new buffer holding in resampled by ratio. The input
// buffer is not modified.
func (r *Resampler) Resample(in *buffer.Buffer, ratio float64) (*buffer.Buffer, error) {
	if in == nil || in.Len() == 0 || in.Channels() == 0 {
		return nil, ErrEmptyInput
	}
	if err := ValidateRatio(ratio); err != nil {
		return nil, err
	}
	if err := validateOutput(in.Len(), ratio); err != nil {
		return nil, err
	}

	k, err := r.kernel(ratio)
	if err != nil {
		return nil, err
	}

	outLen := OutputLength(in.Len(), ratio)
	// The effective step spans the input exactly, so rounding of the
	// output length never drifts the read position.
	step := float64(in.Len()) / float64(outLen)

	output := make([][]float64, in.Channels())
	for ch := range output {
		output[ch] = make([]float64, outLen)
	}

	if !r.parallel || in.Channels() == 1 {
		for ch := range output {
			k.stretch(output[ch], in.Channel(ch), step)
		}
		return buffer.FromChannels(output), nil
	}

	var wg sync.WaitGroup
	for ch := range output {
		wg.Add(1)
		go func(channel int) {
			defer wg.Done()
			k.stretch(output[channel], in.Channel(channel), step)
		}(ch)
	}
	wg.Wait()

	return buffer.FromChannels(output), nil
}

func (r *Resampler) kernel(ratio float64) (kernel, error) {
	switch r.quality {
	case QualityQuick:
		return linearKernel{}, nil
	case QualityMedium:
		return cubicKernel{}, nil
	default:
		table, err := r.tables.get(r.quality, ratio)
		if err != nil {
			return nil, fmt.Errorf("designing sinc kernel: %w", err)
		}
		return sincKernel{table: table}, nil
	}
}
