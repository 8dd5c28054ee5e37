package timemap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tphakala/go-clip-timemap/buffer"
	"github.com/tphakala/go-clip-timemap/keyframe"
	"github.com/tphakala/go-clip-timemap/media"
)

// Path is the way an output frame is synthesized.
type Path int

const (
	// PathPassthrough returns the source frame unchanged.
	PathPassthrough Path = iota
	// PathSlowMotion stretches one source frame over a repeat group.
	PathSlowMotion
	// PathSpeedChange compresses several source frames into one.
	PathSpeedChange
	// PathDirect copies one source frame with its audio reversed.
	PathDirect
)

func (p Path) String() string {
	switch p {
	case PathPassthrough:
		return "passthrough"
	case PathSlowMotion:
		return "slow-motion"
	case PathSpeedChange:
		return "speed-change"
	case PathDirect:
		return "direct"
	default:
		return fmt.Sprintf("Path(%d)", int(p))
	}
}

// FramePlan describes how an output frame is built.
type FramePlan struct {
	Frame      int // requested output frame, clamped
	Source     int // mapped source frame
	Delta      int
	Repeat     keyframe.Repeat
	Increasing bool
	Path       Path

	// NextUnique is the first source frame after the repeat group, blended
	// over slow-motion frames. Zero when there is none.
	NextUnique int
}

// Plan classifies output frame n without reading any media.
func (c *Clip) Plan(n int) FramePlan {
	n = ClampFrame(n)

	if c.time.IsIdentity() {
		return FramePlan{
			Frame:      n,
			Source:     n,
			Delta:      1,
			Repeat:     keyframe.Repeat{Num: 1, Den: 1},
			Increasing: true,
			Path:       PathPassthrough,
		}
	}

	p := FramePlan{
		Frame:      n,
		Source:     c.time.MappedFrame(n),
		Delta:      c.time.Delta(n),
		Repeat:     c.time.RepeatFraction(n),
		Increasing: c.time.IsIncreasing(n),
	}

	switch delta := abs(p.Delta); {
	case p.Repeat.Den > 1:
		p.Path = PathSlowMotion
		next := c.time.MappedFrame(n + (p.Repeat.Den - p.Repeat.Num) + 1)
		if next != p.Source {
			p.NextUnique = next
		}
	case delta > 1 && delta < c.cfg.MaxSpeedDelta:
		p.Path = PathSpeedChange
	default:
		p.Path = PathDirect
	}

	return p
}

// blendNext fades the next source frame over a slow-motion frame.
func (c *Clip) blendNext(ctx context.Context, r media.Reader, plan FramePlan, out *media.Frame) error {
	if plan.Path != PathSlowMotion || plan.NextUnique == 0 || out.Image == nil {
		return nil
	}
	if c.cfg.SlowMotionBlend == BlendFinalFraction && !plan.Repeat.IsLast() {
		return nil
	}

	next, err := r.GetFrame(ctx, plan.NextUnique)
	if errors.Is(err, media.ErrInvalidFrame) {
		// The group is the last of the source; nothing to fade to.
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading next source frame %d: %w", plan.NextUnique, err)
	}
	if next.Image != nil {
		out.BlendImage(next.Image, plan.Repeat.Fraction())
	}
	return nil
}

// slowMotionAudio returns this frame's window of the group's stretched
// audio, stretching it on the first frame of the group.
func (c *Clip) slowMotionAudio(info media.Info, plan FramePlan, base *media.Frame) (*buffer.Buffer, error) {
	rep := plan.Repeat
	key := groupKey{
		start:    plan.Frame - (rep.Num - 1),
		source:   plan.Source,
		den:      rep.Den,
		reversed: !plan.Increasing,
	}
	if rep.IsLast() {
		defer func() {
			c.cache.expire(key)
			c.logger.Debug("slow-motion group expired", "start", key.start, "source", key.source)
		}()
	}

	if base.SampleCount() == 0 {
		return buffer.New(base.Channels(), 0), nil
	}

	stretched, created, ok := c.cache.get(key)
	switch {
	case ok && !rep.IsFirst():
		c.logger.Debug("slow-motion cache hit", "start", key.start, "fraction", rep.Num, "age", time.Since(created))
	default:
		if !rep.IsFirst() {
			if c.cfg.Ordering == OrderStrict {
				return nil, fmt.Errorf("%w: frame %d is %d/%d of the group starting at %d",
					ErrGroupOrder, plan.Frame, rep.Num, rep.Den, key.start)
			}
			c.logger.Debug("slow-motion cache miss, recomputing", "start", key.start, "fraction", rep.Num)
		}

		src := base.Audio.Clone()
		if !plan.Increasing {
			src.Reverse()
		}

		var err error
		if stretched, err = c.resample(src, 1/float64(rep.Den)); err != nil {
			return nil, err
		}

		if !rep.IsLast() {
			if evicted, did := c.cache.put(key, stretched); did {
				c.logger.Debug("slow-motion group evicted", "start", evicted.start, "source", evicted.source)
			}
			c.logger.Debug("slow-motion group stored", "start", key.start, "source", key.source, "den", key.den)
		}
	}

	start := base.SampleCount() * (rep.Num - 1)
	if rep.Num > 1 {
		start = max(start-c.cfg.SeamBackoff, 0)
	}

	rate := info.SampleRate
	if rate <= 0 {
		rate = base.SampleRate
	}
	count := media.SamplesForFrame(plan.Frame, info.FPS, rate)

	return stretched.Window(start, count), nil
}

// speedChangeAudio gathers the |delta| source frames the curve skipped
// over and compresses them into one frame.
func (c *Clip) speedChangeAudio(ctx context.Context, r media.Reader, plan FramePlan, base *media.Frame) (*buffer.Buffer, error) {
	k := abs(plan.Delta)
	step := 1
	first := plan.Source - (k - 1)
	if plan.Delta < 0 {
		step = -1
		first = plan.Source + (k - 1)
	}

	frames := make([]*buffer.Buffer, 0, k)
	total, channels := 0, base.Channels()
	for i := range k {
		n := first + i*step

		frame := base
		if n != plan.Source {
			var err error
			if frame, err = fetch(ctx, r, n); err != nil {
				return nil, err
			}
		}
		if frame.Audio == nil {
			continue
		}

		audio := frame.Audio
		if !plan.Increasing {
			audio = buffer.Reverse(audio.Clone())
		}
		frames = append(frames, audio)
		total += audio.Len()
	}

	gathered := buffer.New(channels, total)
	for _, audio := range frames {
		if err := gathered.Append(audio); err != nil {
			return nil, fmt.Errorf("gathering source audio: %w", err)
		}
	}

	if gathered.Len() == 0 || base.SampleCount() == 0 {
		return buffer.New(channels, 0), nil
	}

	return c.resample(gathered, float64(gathered.Len())/float64(base.SampleCount()))
}

// directAudio copies the source audio reversed. With onlyBackwards set,
// frames where the curve runs forwards keep their order.
func directAudio(plan FramePlan, base *media.Frame, onlyBackwards bool) *buffer.Buffer {
	if base.Audio == nil {
		return buffer.New(0, 0)
	}
	audio := base.Audio.Clone()
	if !onlyBackwards || !plan.Increasing {
		audio.Reverse()
	}
	return audio
}

func (c *Clip) resample(in *buffer.Buffer, ratio float64) (*buffer.Buffer, error) {
	out, err := c.resampler.Resample(in, ratio)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResamplerFailure, err)
	}
	return out, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
