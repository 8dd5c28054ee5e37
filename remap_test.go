package timemap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-clip-timemap/buffer"
	"github.com/tphakala/go-clip-timemap/keyframe"
	"github.com/tphakala/go-clip-timemap/media"
)

func TestPath_String(t *testing.T) {
	assert.Equal(t, "passthrough", PathPassthrough.String())
	assert.Equal(t, "slow-motion", PathSlowMotion.String())
	assert.Equal(t, "speed-change", PathSpeedChange.String())
	assert.Equal(t, "direct", PathDirect.String())
	assert.Equal(t, "Path(9)", Path(9).String())
}

func TestPlan(t *testing.T) {
	c := newClip(t, nil, func(cfg *Config) { cfg.Time = slowCurve() })

	tests := []struct {
		frame int
		want  FramePlan
	}{
		{1, FramePlan{Frame: 1, Source: 1, Delta: 0, Repeat: keyframe.Repeat{Num: 1, Den: 1}, Increasing: true, Path: PathDirect}},
		{2, FramePlan{Frame: 2, Source: 2, Delta: 1, Repeat: keyframe.Repeat{Num: 1, Den: 1}, Increasing: true, Path: PathDirect}},
		{3, FramePlan{Frame: 3, Source: 3, Delta: 1, Repeat: keyframe.Repeat{Num: 1, Den: 2}, Increasing: true, Path: PathSlowMotion, NextUnique: 4}},
		{5, FramePlan{Frame: 5, Source: 4, Delta: 1, Repeat: keyframe.Repeat{Num: 1, Den: 3}, Increasing: true, Path: PathSlowMotion, NextUnique: 5}},
		{6, FramePlan{Frame: 6, Source: 4, Delta: 0, Repeat: keyframe.Repeat{Num: 2, Den: 3}, Increasing: true, Path: PathSlowMotion, NextUnique: 5}},
		{7, FramePlan{Frame: 7, Source: 4, Delta: 0, Repeat: keyframe.Repeat{Num: 3, Den: 3}, Increasing: true, Path: PathSlowMotion, NextUnique: 5}},
		{8, FramePlan{Frame: 8, Source: 5, Delta: 1, Repeat: keyframe.Repeat{Num: 1, Den: 1}, Increasing: true, Path: PathDirect}},
		{10, FramePlan{Frame: 10, Source: 7, Delta: 1, Repeat: keyframe.Repeat{Num: 1, Den: 1}, Increasing: true, Path: PathDirect}},
		{20, FramePlan{Frame: 20, Source: 17, Delta: 1, Repeat: keyframe.Repeat{Num: 1, Den: 1}, Increasing: true, Path: PathDirect}},
		// Past the last control point the source frame holds but never
		// forms a repeat group.
		{21, FramePlan{Frame: 21, Source: 17, Delta: 0, Repeat: keyframe.Repeat{Num: 1, Den: 1}, Increasing: true, Path: PathDirect}},
		{25, FramePlan{Frame: 25, Source: 17, Delta: 0, Repeat: keyframe.Repeat{Num: 1, Den: 1}, Increasing: true, Path: PathDirect}},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, c.Plan(tc.frame), "frame %d", tc.frame)
	}
}

func TestPlan_SpeedChangeBounds(t *testing.T) {
	tests := []struct {
		name     string
		curve    *keyframe.Curve
		maxDelta int
		want     Path
		delta    int
	}{
		{"double speed", linearCurve(1, 1, 50, 99), defaultMaxSpeedDelta, PathSpeedChange, 2},
		{"double speed backwards", linearCurve(1, 99, 50, 1), defaultMaxSpeedDelta, PathSpeedChange, -2},
		{"jump at the limit", linearCurve(1, 1, 50, 148), 3, PathDirect, 3},
		{"jump below the limit", linearCurve(1, 1, 50, 148), 4, PathSpeedChange, 3},
		{"backwards at unit speed", linearCurve(1, 50, 50, 1), defaultMaxSpeedDelta, PathDirect, -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newClip(t, nil, func(cfg *Config) {
				cfg.Time = tc.curve
				cfg.MaxSpeedDelta = tc.maxDelta
			})
			p := c.Plan(10)
			assert.Equal(t, tc.want, p.Path)
			assert.Equal(t, tc.delta, p.Delta)
			assert.Equal(t, tc.delta > 0, p.Increasing)
		})
	}
}

// renderAudio renders the given frames in order and returns their audio.
func renderAudio(t *testing.T, c *Clip, frames ...int) []*buffer.Buffer {
	t.Helper()
	out := make([]*buffer.Buffer, 0, len(frames))
	for _, n := range frames {
		f, err := c.GetFrame(context.Background(), n)
		require.NoError(t, err, "frame %d", n)
		require.Equal(t, n, f.Number)
		out = append(out, f.Audio)
	}
	return out
}

func sourceAudio(t *testing.T, r media.Reader, n int) *buffer.Buffer {
	t.Helper()
	f, err := r.GetFrame(context.Background(), n)
	require.NoError(t, err)
	return f.Audio
}

func TestSlowMotion_WindowsConcatenateToStretchedFrame(t *testing.T) {
	src := toneReader(fps24, 48000, 20)
	c := newClip(t, src, func(cfg *Config) {
		cfg.Time = slowCurve()
		cfg.SeamBackoff = 0
	})

	stretched, err := c.resampler.Resample(sourceAudio(t, src, 4), 1.0/3)
	require.NoError(t, err)
	require.Equal(t, 6000, stretched.Len())

	parts := renderAudio(t, c, 5)
	assert.Equal(t, 1, c.CachedGroups())
	parts = append(parts, renderAudio(t, c, 6)...)
	assert.Equal(t, 1, c.CachedGroups())
	parts = append(parts, renderAudio(t, c, 7)...)
	assert.Zero(t, c.CachedGroups(), "the group expires after its last frame")

	for _, p := range parts {
		assert.Equal(t, 2000, p.Len())
	}
	assert.True(t, concat(t, parts...).EqualApprox(stretched, 0))
}

func TestSlowMotion_SeamBackoff(t *testing.T) {
	src := toneReader(fps24, 48000, 20)

	tests := []struct {
		name    string
		backoff int
		starts  []int
	}{
		{"none", 0, []int{0, 2000, 4000}},
		{"default", defaultSeamBackoff, []int{0, 1999, 3999}},
		{"several samples", 3, []int{0, 1997, 3997}},
		{"one frame", 2000, []int{0, 0, 2000}},
		{"longer than the group", 5000, []int{0, 0, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newClip(t, src, func(cfg *Config) {
				cfg.Time = slowCurve()
				cfg.SeamBackoff = tc.backoff
			})

			stretched, err := c.resampler.Resample(sourceAudio(t, src, 4), 1.0/3)
			require.NoError(t, err)

			parts := renderAudio(t, c, 5, 6, 7)
			for i, start := range tc.starts {
				require.Equal(t, 2000, parts[i].Len())
				assert.True(t, parts[i].EqualApprox(stretched.Window(start, 2000), 0), "window %d starts at %d", i+1, start)
			}
		})
	}
}

func TestSlowMotion_LongFreeze(t *testing.T) {
	// Source frame 1 held for 399 output frames.
	freeze := keyframe.MustCurve(
		keyframe.Point{X: 1, Y: 1, Interpolation: keyframe.Constant},
		keyframe.Point{X: 400, Y: 2},
	)
	src := toneReader(fps24, 48000, 4)
	c := newClip(t, src, func(cfg *Config) {
		cfg.Time = freeze
		cfg.Quality = QualityMedium
	})

	plan := c.Plan(5)
	require.Equal(t, PathSlowMotion, plan.Path)
	require.Equal(t, keyframe.Repeat{Num: 5, Den: 399}, plan.Repeat)

	stretched, err := c.resampler.Resample(sourceAudio(t, src, 1), 1.0/399)
	require.NoError(t, err)
	require.Equal(t, 399*2000, stretched.Len())

	f, err := c.GetFrame(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 2000, f.SampleCount())
	assert.True(t, f.Audio.EqualApprox(stretched.Window(4*2000-defaultSeamBackoff, 2000), 0))
	assert.Equal(t, 1, c.CachedGroups())

	parts := renderAudio(t, c, 6, 398, 399)
	assert.True(t, parts[0].EqualApprox(stretched.Window(5*2000-defaultSeamBackoff, 2000), 0))
	assert.True(t, parts[2].EqualApprox(stretched.Window(398*2000-defaultSeamBackoff, 2000), 0))
	assert.Zero(t, c.CachedGroups(), "the last frame of the group expires it")

	f, err = c.GetFrame(context.Background(), 400)
	require.NoError(t, err)
	assert.Equal(t, PathDirect, c.Plan(400).Path)
	assert.Equal(t, 2000, f.SampleCount())
}

func TestSlowMotion_Reversed(t *testing.T) {
	src := toneReader(fps24, 48000, 20)
	c := newClip(t, src, func(cfg *Config) {
		cfg.Time = reverseSlowCurve()
		cfg.SeamBackoff = 0
	})

	plan := c.Plan(6)
	require.Equal(t, PathSlowMotion, plan.Path)
	require.Equal(t, 17, plan.Source)
	require.False(t, plan.Increasing)

	reversed := buffer.Reverse(sourceAudio(t, src, 17).Clone())
	stretched, err := c.resampler.Resample(reversed, 1.0/3)
	require.NoError(t, err)

	parts := renderAudio(t, c, 5, 6, 7)
	assert.True(t, concat(t, parts...).EqualApprox(stretched, 0))
}

func TestSlowMotion_OutOfOrder(t *testing.T) {
	src := toneReader(fps24, 48000, 20)

	t.Run("recompute", func(t *testing.T) {
		sequential := newClip(t, src, func(cfg *Config) { cfg.Time = slowCurve() })
		want := renderAudio(t, sequential, 5, 6, 7)

		c := newClip(t, src, func(cfg *Config) { cfg.Time = slowCurve() })
		got := renderAudio(t, c, 6, 7, 5, 7)

		assert.True(t, got[0].EqualApprox(want[1], 0))
		assert.True(t, got[1].EqualApprox(want[2], 0))
		assert.True(t, got[2].EqualApprox(want[0], 0))
		assert.True(t, got[3].EqualApprox(want[2], 0))
		assert.Zero(t, c.CachedGroups())
	})

	t.Run("strict", func(t *testing.T) {
		c := newClip(t, src, func(cfg *Config) {
			cfg.Time = slowCurve()
			cfg.Ordering = OrderStrict
		})

		_, err := c.GetFrame(context.Background(), 6)
		require.ErrorIs(t, err, ErrGroupOrder)

		renderAudio(t, c, 5, 6, 7)

		_, err = c.GetFrame(context.Background(), 7)
		require.ErrorIs(t, err, ErrGroupOrder, "an expired group cannot be served again")
	})
}

func TestSlowMotion_UnevenFrameSizes(t *testing.T) {
	src := toneReader(fpsNTSC, 44100, 20)
	c := newClip(t, src, func(cfg *Config) { cfg.Time = slowCurve() })

	for _, n := range []int{3, 4, 5, 6, 7} {
		f, err := c.GetFrame(context.Background(), n)
		require.NoError(t, err)
		assert.Equal(t, media.SamplesForFrame(n, fpsNTSC, 44100), f.SampleCount(), "frame %d", n)
	}
}

func TestSlowMotion_CacheEviction(t *testing.T) {
	src := toneReader(fps24, 48000, 20)
	c := newClip(t, src, func(cfg *Config) {
		cfg.Time = slowCurve()
		cfg.CacheGroups = 1
	})

	want := renderAudio(t, newClip(t, src, func(cfg *Config) { cfg.Time = slowCurve() }), 6)

	renderAudio(t, c, 5)
	renderAudio(t, c, 3)
	assert.Equal(t, 1, c.CachedGroups())

	got := renderAudio(t, c, 6)
	assert.True(t, got[0].EqualApprox(want[0], 0), "an evicted group is recomputed")
	assert.Equal(t, 1, c.CachedGroups())
}

func TestSlowMotion_SetReaderDropsCache(t *testing.T) {
	src := toneReader(fps24, 48000, 20)
	c := newClip(t, src, func(cfg *Config) { cfg.Time = slowCurve() })

	renderAudio(t, c, 5)
	require.Equal(t, 1, c.CachedGroups())

	c.SetReader(toneReader(fps24, 48000, 20))
	assert.Zero(t, c.CachedGroups())
}

func pixel(t *testing.T, f *media.Frame) int {
	t.Helper()
	require.NotNil(t, f.Image)
	return int(f.Image.RGBAAt(1, 1).R)
}

func TestSlowMotion_Blend(t *testing.T) {
	src := toneReader(fps24, 48000, 20)
	shade4, shade5 := float64(media.FrameShade(4)), float64(media.FrameShade(5))
	fade := func(opacity float64) int {
		return int(shade4 + (shade5-shade4)*opacity + 0.5)
	}

	t.Run("final fraction by default", func(t *testing.T) {
		c := newClip(t, src, func(cfg *Config) { cfg.Time = slowCurve() })
		require.Equal(t, BlendFinalFraction, c.cfg.SlowMotionBlend)

		for _, n := range []int{5, 6} {
			f, err := c.GetFrame(context.Background(), n)
			require.NoError(t, err)
			assert.Equal(t, int(shade4), pixel(t, f), "frame %d", n)
		}
		f, err := c.GetFrame(context.Background(), 7)
		require.NoError(t, err)
		assert.InDelta(t, int(shade5), pixel(t, f), 1)
	})

	t.Run("every fraction", func(t *testing.T) {
		c := newClip(t, src, func(cfg *Config) {
			cfg.Time = slowCurve()
			cfg.SlowMotionBlend = BlendEveryFraction
		})
		for i, n := range []int{5, 6, 7} {
			f, err := c.GetFrame(context.Background(), n)
			require.NoError(t, err)
			assert.InDelta(t, fade(float64(i+1)/3), pixel(t, f), 1, "frame %d", n)
		}
	})

	t.Run("next frame past the source", func(t *testing.T) {
		short := toneReader(fps24, 48000, 4)
		c := newClip(t, short, func(cfg *Config) { cfg.Time = slowCurve() })
		f, err := c.GetFrame(context.Background(), 6)
		require.NoError(t, err)
		assert.Equal(t, int(shade4), pixel(t, f))
		assert.Equal(t, 2000, f.SampleCount())
	})
}

func TestSpeedChange_ResamplesGatheredFrames(t *testing.T) {
	tests := []struct {
		name    string
		curve   *keyframe.Curve
		source  int
		gather  []int
		reverse bool
	}{
		{"forwards", linearCurve(1, 1, 50, 99), 19, []int{18, 19}, false},
		{"backwards", linearCurve(1, 99, 50, 1), 81, []int{82, 81}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := toneReader(fps24, 48000, 100)
			rec := newRecordingResampler(t)
			c := newClip(t, src, func(cfg *Config) {
				cfg.Time = tc.curve
				cfg.Resampler = rec
			})

			f, err := c.GetFrame(context.Background(), 10)
			require.NoError(t, err)
			require.Equal(t, tc.source, c.Plan(10).Source)

			parts := make([]*buffer.Buffer, 0, len(tc.gather))
			for _, n := range tc.gather {
				a := sourceAudio(t, src, n).Clone()
				if tc.reverse {
					a.Reverse()
				}
				parts = append(parts, a)
			}
			gathered := concat(t, parts...)

			require.Equal(t, 1, rec.calls())
			assert.True(t, rec.inputs[0].EqualApprox(gathered, 0))
			assert.InDelta(t, 2.0, rec.ratios[0], 1e-12)

			want, err := rec.inner.Resample(gathered, 2)
			require.NoError(t, err)
			assert.Equal(t, 2000, f.SampleCount())
			assert.True(t, f.Audio.EqualApprox(want, 0))
		})
	}
}

func TestSpeedChange_UnevenFrameSizes(t *testing.T) {
	src := toneReader(fpsNTSC, 44100, 100)
	rec := newRecordingResampler(t)
	c := newClip(t, src, func(cfg *Config) {
		cfg.Time = linearCurve(1, 1, 50, 99)
		cfg.Resampler = rec
	})

	f, err := c.GetFrame(context.Background(), 10)
	require.NoError(t, err)

	c18 := media.SamplesForFrame(18, fpsNTSC, 44100)
	c19 := media.SamplesForFrame(19, fpsNTSC, 44100)
	assert.Equal(t, c19, f.SampleCount())
	require.Equal(t, 1, rec.calls())
	assert.Equal(t, c18+c19, rec.inputs[0].Len())
	assert.InDelta(t, float64(c18+c19)/float64(c19), rec.ratios[0], 1e-12)
}

func TestSpeedChange_MissingSourceFrame(t *testing.T) {
	src := toneReader(fps24, 48000, 18)
	c := newClip(t, src, func(cfg *Config) { cfg.Time = linearCurve(1, 1, 50, 99) })

	// Frame 10 needs source frames 18 and 19.
	_, err := c.GetFrame(context.Background(), 10)
	require.ErrorIs(t, err, ErrInvalidSourceFrame)
}

func TestDirect(t *testing.T) {
	src := toneReader(fps24, 48000, 160)

	t.Run("backwards", func(t *testing.T) {
		rec := newRecordingResampler(t)
		c := newClip(t, src, func(cfg *Config) {
			cfg.Time = linearCurve(1, 50, 50, 1)
			cfg.Resampler = rec
		})

		f, err := c.GetFrame(context.Background(), 10)
		require.NoError(t, err)

		want := buffer.Reverse(sourceAudio(t, src, 41).Clone())
		assert.True(t, f.Audio.EqualApprox(want, 0))
		assert.Zero(t, rec.calls(), "the direct path does not resample")
	})

	t.Run("forwards at unit speed", func(t *testing.T) {
		rec := newRecordingResampler(t)
		c := newClip(t, src, func(cfg *Config) {
			cfg.Time = linearCurve(1, 1, 50, 50)
			cfg.Resampler = rec
		})
		require.Equal(t, PathDirect, c.Plan(10).Path)
		require.True(t, c.Plan(10).Increasing)

		f, err := c.GetFrame(context.Background(), 10)
		require.NoError(t, err)

		want := buffer.Reverse(sourceAudio(t, src, 10).Clone())
		assert.True(t, f.Audio.EqualApprox(want, 0), "direct audio is reversed regardless of direction")
		assert.False(t, f.Audio.EqualApprox(sourceAudio(t, src, 10), 0))
		assert.Zero(t, rec.calls())
	})

	t.Run("forwards with reversal limited to backwards", func(t *testing.T) {
		c := newClip(t, src, func(cfg *Config) {
			cfg.Time = linearCurve(1, 1, 50, 50)
			cfg.ReverseOnlyBackwards = true
		})

		f, err := c.GetFrame(context.Background(), 10)
		require.NoError(t, err)
		assert.True(t, f.Audio.EqualApprox(sourceAudio(t, src, 10), 0))
	})

	t.Run("backwards with reversal limited to backwards", func(t *testing.T) {
		c := newClip(t, src, func(cfg *Config) {
			cfg.Time = linearCurve(1, 50, 50, 1)
			cfg.ReverseOnlyBackwards = true
		})

		f, err := c.GetFrame(context.Background(), 10)
		require.NoError(t, err)
		assert.True(t, f.Audio.EqualApprox(buffer.Reverse(sourceAudio(t, src, 41).Clone()), 0))
	})

	t.Run("oversized jump", func(t *testing.T) {
		c := newClip(t, src, func(cfg *Config) {
			cfg.Time = linearCurve(1, 1, 50, 148)
			cfg.MaxSpeedDelta = 3
		})

		f, err := c.GetFrame(context.Background(), 10)
		require.NoError(t, err)
		assert.True(t, f.Audio.EqualApprox(buffer.Reverse(sourceAudio(t, src, 28).Clone()), 0))
		assert.Equal(t, int(media.FrameShade(28)), pixel(t, f))
	})

	t.Run("past the last control point", func(t *testing.T) {
		c := newClip(t, toneReader(fps24, 48000, 20), func(cfg *Config) { cfg.Time = slowCurve() })

		f, err := c.GetFrame(context.Background(), 25)
		require.NoError(t, err)
		assert.Equal(t, 25, f.Number)
		assert.Equal(t, int(media.FrameShade(17)), pixel(t, f))
		assert.Zero(t, c.CachedGroups())
	})
}

func TestGetFrame_InvalidFrameRate(t *testing.T) {
	info := media.Info{
		FPS:        fps24,
		SampleRate: 48000,
		Channels:   2,
		Width:      4,
		Height:     4,
		HasAudio:   true,
		HasVideo:   true,
		Length:     20,
	}
	frames := media.GenerateFrames(info, func(_, _, count int) []float64 {
		return make([]float64, count)
	})
	info.FPS = media.Fraction{Num: 0, Den: 1}
	src := media.NewMemoryReader(info, frames)

	for _, n := range []int{5, 8} {
		c := newClip(t, src, func(cfg *Config) { cfg.Time = slowCurve() })
		f, err := c.GetFrame(context.Background(), n)
		require.ErrorIs(t, err, media.ErrInvalidFraction, "frame %d", n)
		assert.Nil(t, f)
	}
}
