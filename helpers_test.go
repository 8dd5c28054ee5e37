package timemap

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-clip-timemap/buffer"
	"github.com/tphakala/go-clip-timemap/internal/testutil"
	"github.com/tphakala/go-clip-timemap/keyframe"
	"github.com/tphakala/go-clip-timemap/media"
)

var (
	fps24   = media.Fraction{Num: 24, Den: 1}
	fpsNTSC = media.Fraction{Num: 30000, Den: 1001}
)

// toneReader serves frames of two tones, 4x4 pictures shaded by frame
// number.
func toneReader(fps media.Fraction, rate, length int) *media.MemoryReader {
	info := media.Info{
		FPS:        fps,
		SampleRate: rate,
		Channels:   2,
		Length:     length,
		Width:      4,
		Height:     4,
		HasAudio:   true,
		HasVideo:   true,
	}
	frames := media.GenerateFrames(info, func(ch, offset, count int) []float64 {
		return testutil.Tone(440*float64(ch+1), float64(rate), offset, count)
	})
	return media.NewMemoryReader(info, frames)
}

// slowCurve holds source frame 4 for output frames 5, 6 and 7.
func slowCurve() *keyframe.Curve {
	return keyframe.MustCurve(
		keyframe.Point{X: 1, Y: 1},
		keyframe.Point{X: 3, Y: 3, Interpolation: keyframe.Constant},
		keyframe.Point{X: 5, Y: 4, Interpolation: keyframe.Constant},
		keyframe.Point{X: 8, Y: 5},
		keyframe.Point{X: 20, Y: 17},
	)
}

// reverseSlowCurve holds source frame 17 for output frames 5, 6 and 7
// while playing backwards.
func reverseSlowCurve() *keyframe.Curve {
	return keyframe.MustCurve(
		keyframe.Point{X: 1, Y: 20},
		keyframe.Point{X: 3, Y: 18, Interpolation: keyframe.Constant},
		keyframe.Point{X: 5, Y: 17, Interpolation: keyframe.Constant},
		keyframe.Point{X: 8, Y: 16},
		keyframe.Point{X: 20, Y: 4},
	)
}

func linearCurve(x0, y0, x1, y1 float64) *keyframe.Curve {
	return keyframe.MustCurve(keyframe.Point{X: x0, Y: y0}, keyframe.Point{X: x1, Y: y1})
}

func newClip(t *testing.T, r media.Reader, mutate func(*Config)) *Clip {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	if r != nil {
		c.SetReader(r)
	}
	return c
}

// recordingResampler remembers every call before delegating.
type recordingResampler struct {
	mu     sync.Mutex
	inner  Resampler
	inputs []*buffer.Buffer
	ratios []float64
}

func newRecordingResampler(t *testing.T) *recordingResampler {
	t.Helper()
	inner, err := NewResampler(QualityMedium, false)
	require.NoError(t, err)
	return &recordingResampler{inner: inner}
}

func (r *recordingResampler) Resample(in *buffer.Buffer, ratio float64) (*buffer.Buffer, error) {
	r.mu.Lock()
	r.inputs = append(r.inputs, in.Clone())
	r.ratios = append(r.ratios, ratio)
	r.mu.Unlock()
	return r.inner.Resample(in, ratio)
}

func (r *recordingResampler) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inputs)
}

var errBoom = errors.New("boom")

type failingResampler struct{}

func (failingResampler) Resample(*buffer.Buffer, float64) (*buffer.Buffer, error) {
	return nil, errBoom
}

// concat joins buffers end to end.
func concat(t *testing.T, parts ...*buffer.Buffer) *buffer.Buffer {
	t.Helper()
	total := 0
	for _, p := range parts {
		total += p.Len()
	}
	out := buffer.New(parts[0].Channels(), total)
	for _, p := range parts {
		require.NoError(t, out.Append(p))
	}
	return out
}
