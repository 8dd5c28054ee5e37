package timemap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/tphakala/go-clip-timemap/buffer"
	"github.com/tphakala/go-clip-timemap/keyframe"
	"github.com/tphakala/go-clip-timemap/media"
)

// Clip renders output frames from a source reader through a time curve.
// A Clip is safe for concurrent use if its reader is.
type Clip struct {
	id        uuid.UUID
	cfg       Config
	time      *keyframe.TimeCurve
	resampler Resampler
	logger    *slog.Logger
	cache     *audioCache

	mu     sync.RWMutex
	reader media.Reader
}

// New creates a clip. A nil config uses DefaultConfig.
func New(config *Config) (*Clip, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Clip{
		id:    config.ID,
		cfg:   *config,
		time:  keyframe.NewTimeCurve(config.Time),
		cache: newAudioCache(config.CacheGroups),
	}
	if c.id == uuid.Nil {
		c.id = uuid.New()
	}

	c.resampler = config.Resampler
	if c.resampler == nil {
		r, err := NewResampler(config.Quality, config.EnableParallel)
		if err != nil {
			return nil, err
		}
		c.resampler = r
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c.logger = logger.With("clip", c.id.String())

	return c, nil
}

// ID returns the clip identifier.
func (c *Clip) ID() uuid.UUID {
	return c.id
}

// TimeCurve returns the clip's time mapping.
func (c *Clip) TimeCurve() *keyframe.TimeCurve {
	return c.time
}

// SetReader attaches a source, dropping any cached audio of the previous
// one.
func (c *Clip) SetReader(r media.Reader) {
	c.mu.Lock()
	c.reader = r
	c.mu.Unlock()

	c.cache.reset()
}

// Reader returns the attached source, or nil.
func (c *Clip) Reader() media.Reader {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.reader
}

// Close closes the attached reader and drops cached audio.
func (c *Clip) Close() error {
	c.mu.Lock()
	r := c.reader
	c.reader = nil
	c.mu.Unlock()

	c.cache.reset()
	if r == nil {
		return nil
	}
	return r.Close()
}

// CachedGroups returns the number of slow-motion groups holding audio.
func (c *Clip) CachedGroups() int {
	return c.cache.size()
}

// End returns the clip duration in seconds: the length of the time curve
// when it remaps time, otherwise the length of the source.
func (c *Clip) End() (float64, error) {
	r := c.Reader()
	if r == nil {
		return 0, ErrReaderUnavailable
	}

	info := r.Info()
	if c.time.IsIdentity() {
		return info.Duration(), nil
	}
	if err := info.FPS.Validate(); err != nil {
		return 0, fmt.Errorf("source frame rate: %w", err)
	}
	return float64(c.time.Length()) / info.FPS.Float(), nil
}

// Length returns the number of output frames of the clip.
func (c *Clip) Length() (int, error) {
	r := c.Reader()
	if r == nil {
		return 0, ErrReaderUnavailable
	}
	if c.time.IsIdentity() {
		return r.Info().Length, nil
	}
	return c.time.Length(), nil
}

// GetFrame renders output frame n. Frames below 1 render frame 1.
func (c *Clip) GetFrame(ctx context.Context, n int) (*media.Frame, error) {
	n = ClampFrame(n)

	r := c.Reader()
	if r == nil {
		return nil, ErrReaderUnavailable
	}

	plan := c.Plan(n)
	c.logger.Debug("rendering frame",
		"frame", n,
		"source", plan.Source,
		"path", plan.Path.String(),
		"repeat", fmt.Sprintf("%d/%d", plan.Repeat.Num, plan.Repeat.Den),
		"delta", plan.Delta)

	if plan.Path == PathPassthrough {
		frame, err := fetch(ctx, r, n)
		if err != nil {
			return nil, err
		}
		if angle := c.rotation(n); angle != 0 {
			frame = frame.Clone()
			frame.Rotate(angle)
		}
		return frame, nil
	}

	info := r.Info()
	if err := info.FPS.Validate(); err != nil {
		return nil, fmt.Errorf("source frame rate: %w", err)
	}

	base, err := fetch(ctx, r, plan.Source)
	if err != nil {
		return nil, err
	}

	out := &media.Frame{
		Number:     n,
		Image:      media.CloneImage(base.Image),
		SampleRate: base.SampleRate,
	}

	if err := c.blendNext(ctx, r, plan, out); err != nil {
		return nil, err
	}

	switch plan.Path {
	case PathSlowMotion:
		out.Audio, err = c.slowMotionAudio(info, plan, base)
	case PathSpeedChange:
		out.Audio, err = c.speedChangeAudio(ctx, r, plan, base)
	default:
		out.Audio = directAudio(plan, base, c.cfg.ReverseOnlyBackwards)
	}
	if err != nil {
		return nil, err
	}

	if angle := c.rotation(n); angle != 0 {
		out.Rotate(angle)
	}

	return out, nil
}

// Render calls fn for every frame in [first, last], in order.
func (c *Clip) Render(ctx context.Context, first, last int, fn func(*media.Frame) error) error {
	for n := ClampFrame(first); n <= last; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame, err := c.GetFrame(ctx, n)
		if err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}
		if err := fn(frame); err != nil {
			return err
		}
	}
	return nil
}

// RenderAudio renders [first, last] and returns the concatenated audio.
func (c *Clip) RenderAudio(ctx context.Context, first, last int) (*buffer.Buffer, error) {
	var chunks []*buffer.Buffer
	total, channels := 0, 0

	err := c.Render(ctx, first, last, func(f *media.Frame) error {
		if f.Audio == nil {
			return nil
		}
		chunks = append(chunks, f.Audio)
		total += f.Audio.Len()
		channels = max(channels, f.Audio.Channels())
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := buffer.New(channels, total)
	for _, chunk := range chunks {
		if err := out.Append(chunk); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Clip) rotation(n int) float64 {
	if c.cfg.Rotation == nil {
		return 0
	}
	return c.cfg.Rotation.Value(float64(n))
}

// fetch reads a source frame, reporting out of range frames as
// ErrInvalidSourceFrame.
func fetch(ctx context.Context, r media.Reader, n int) (*media.Frame, error) {
	frame, err := r.GetFrame(ctx, n)
	if errors.Is(err, media.ErrInvalidFrame) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSourceFrame, err)
	}
	if err != nil {
		return nil, fmt.Errorf("reading source frame %d: %w", n, err)
	}
	return frame, nil
}
