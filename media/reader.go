package media

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tphakala/go-clip-timemap/buffer"
)

var (
	// ErrInvalidFrame is returned for frame numbers outside [1, Length].
	ErrInvalidFrame = errors.New("frame out of range")

	// ErrClosed is returned by a reader after Close.
	ErrClosed = errors.New("reader closed")
)

// Info describes a source.
type Info struct {
	FPS        Fraction
	SampleRate int
	Channels   int
	Length     int // frames
	Width      int
	Height     int
	HasAudio   bool
	HasVideo   bool
}

// Duration returns the source length in seconds.
func (i Info) Duration() float64 {
	if i.FPS.Num <= 0 || i.FPS.Den <= 0 {
		return 0
	}
	return float64(i.Length) / i.FPS.Float()
}

// Reader decodes source frames. Frame numbers are 1-based; GetFrame must
// fail with ErrInvalidFrame outside [1, Info().Length]. Callers must not
// modify returned frames.
type Reader interface {
	Info() Info
	GetFrame(ctx context.Context, n int) (*Frame, error)
	Close() error
}

// CheckFrame returns ErrInvalidFrame when n is outside the source.
func CheckFrame(n int, info Info) error {
	if n < 1 || n > info.Length {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidFrame, n, info.Length)
	}
	return nil
}

// MemoryReader serves frames held in memory.
type MemoryReader struct {
	mu     sync.RWMutex
	info   Info
	frames []*Frame
	closed bool
}

// NewMemoryReader creates a reader over frames, frame n at index n-1.
// info.Length is set to len(frames).
func NewMemoryReader(info Info, frames []*Frame) *MemoryReader {
	info.Length = len(frames)
	return &MemoryReader{info: info, frames: frames}
}

// Info returns the source description.
func (r *MemoryReader) Info() Info {
	return r.info
}

// GetFrame returns frame n.
func (r *MemoryReader) GetFrame(ctx context.Context, n int) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, ErrClosed
	}
	if err := CheckFrame(n, r.info); err != nil {
		return nil, err
	}
	return r.frames[n-1], nil
}

// Close releases the frames.
func (r *MemoryReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.frames = nil
	return nil
}

// SampleFunc returns count samples of channel ch starting at the absolute
// sample offset of the source.
type SampleFunc func(ch, offset, count int) []float64

// GenerateFrames builds info.Length frames whose audio comes from samples,
// sliced with SamplesForFrame, and whose images are solid grey levels that
// identify the frame number. A nil samples yields silence.
func GenerateFrames(info Info, samples SampleFunc) []*Frame {
	frames := make([]*Frame, info.Length)
	for i := range frames {
		n := i + 1
		f := &Frame{Number: n, SampleRate: info.SampleRate}

		if info.Width > 0 && info.Height > 0 {
			f.Image = BlankImage(info.Width, info.Height)
			shade := FrameShade(n)
			for p := 0; p < len(f.Image.Pix); p += 4 {
				f.Image.Pix[p], f.Image.Pix[p+1], f.Image.Pix[p+2] = shade, shade, shade
			}
		}

		count := SamplesForFrame(n, info.FPS, info.SampleRate)
		offset := FrameOffset(n, info.FPS, info.SampleRate)
		channels := make([][]float64, info.Channels)
		for ch := range channels {
			if samples != nil {
				channels[ch] = samples(ch, offset, count)
			} else {
				channels[ch] = make([]float64, count)
			}
		}
		f.Audio = buffer.FromChannels(channels)

		frames[i] = f
	}
	return frames
}

// FrameShade is the grey level GenerateFrames paints frame n with.
func FrameShade(n int) uint8 {
	return uint8(n * 7 % 256)
}
