package timemap

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tphakala/go-clip-timemap/internal/engine"
	"github.com/tphakala/go-clip-timemap/keyframe"
)

// Config holds clip configuration. Start from [DefaultConfig]; a zero
// Config does not validate.
type Config struct {
	// ID identifies the clip in logs. A zero ID is replaced by a random one.
	ID uuid.UUID

	// Time maps output frames to source frames. Nil or a single control
	// point means the clip plays its source unchanged.
	Time *keyframe.Curve

	// Rotation gives a clockwise rotation in degrees per output frame.
	// Nil disables rotation.
	Rotation *keyframe.Curve

	// Quality selects the resampling kernel of the default resampler.
	Quality ResampleQuality

	// SeamBackoff is the number of samples a slow-motion window after the
	// first starts early, overlapping the previous window.
	SeamBackoff int

	// MaxSpeedDelta bounds the frame skip that is still resampled. Skips
	// of this size or more play the mapped frame's audio directly.
	MaxSpeedDelta int

	// CacheGroups is the number of slow-motion repeat groups kept at once.
	CacheGroups int

	// Ordering decides what happens when a repeat group is entered past
	// its first frame.
	Ordering OrderPolicy

	// SlowMotionBlend selects which frames of a repeat group blend in the
	// next source frame.
	SlowMotionBlend BlendMode

	// ReverseOnlyBackwards limits the reversal of directly copied audio to
	// frames where the curve runs backwards. By default direct frames are
	// always reversed.
	ReverseOnlyBackwards bool

	// EnableParallel resamples channels concurrently.
	EnableParallel bool

	// Logger receives debug records. Nil discards them.
	Logger *slog.Logger

	// Resampler overrides the resampler built from Quality.
	Resampler Resampler
}

// DefaultConfig returns the default configuration: identity time curve,
// high quality resampling, a one sample seam backoff, blending on the last
// frame of a repeat group, and recomputation of repeat groups entered out
// of order.
func DefaultConfig() *Config {
	return &Config{
		Quality:         QualityHigh,
		SeamBackoff:     defaultSeamBackoff,
		MaxSpeedDelta:   defaultMaxSpeedDelta,
		CacheGroups:     defaultCacheGroups,
		Ordering:        OrderRecompute,
		SlowMotionBlend: BlendFinalFraction,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !c.Quality.valid() {
		return fmt.Errorf("%w: unknown quality %d", ErrInvalidConfig, int(c.Quality))
	}

	if c.SeamBackoff < 0 {
		return fmt.Errorf("%w: seam backoff must not be negative", ErrInvalidConfig)
	}

	if c.MaxSpeedDelta < minSpeedDelta || c.MaxSpeedDelta > maxSpeedDelta {
		return fmt.Errorf("%w: max speed delta must be in [%d, %d]", ErrInvalidConfig, minSpeedDelta, maxSpeedDelta)
	}

	if c.CacheGroups < minCacheGroups {
		return fmt.Errorf("%w: cache must hold at least %d group", ErrInvalidConfig, minCacheGroups)
	}

	if c.Ordering != OrderRecompute && c.Ordering != OrderStrict {
		return fmt.Errorf("%w: unknown ordering policy %d", ErrInvalidConfig, int(c.Ordering))
	}

	if c.SlowMotionBlend != BlendEveryFraction && c.SlowMotionBlend != BlendFinalFraction {
		return fmt.Errorf("%w: unknown blend mode %d", ErrInvalidConfig, int(c.SlowMotionBlend))
	}

	return nil
}

// ResampleQuality enumerates the resampling kernels.
type ResampleQuality int

const (
	// QualityQuick uses linear interpolation. Fastest, audible aliasing.
	QualityQuick ResampleQuality = iota

	// QualityMedium uses cubic Hermite interpolation.
	QualityMedium

	// QualityHigh uses a Kaiser windowed sinc with 16 zero crossings and
	// 80 dB stopband attenuation.
	QualityHigh

	// QualityVeryHigh uses a Kaiser windowed sinc with 32 zero crossings
	// and 120 dB stopband attenuation.
	QualityVeryHigh
)

func (q ResampleQuality) valid() bool {
	return q >= QualityQuick && q <= QualityVeryHigh
}

func (q ResampleQuality) engineQuality() engine.Quality {
	switch q {
	case QualityQuick:
		return engine.QualityQuick
	case QualityMedium:
		return engine.QualityMedium
	case QualityVeryHigh:
		return engine.QualityVeryHigh
	default:
		return engine.QualityHigh
	}
}

func (q ResampleQuality) String() string {
	if !q.valid() {
		return fmt.Sprintf("ResampleQuality(%d)", int(q))
	}
	return q.engineQuality().String()
}

// ParseQuality parses a quality name: quick, medium, high or veryhigh.
func ParseQuality(s string) (ResampleQuality, error) {
	for q := QualityQuick; q <= QualityVeryHigh; q++ {
		if strings.EqualFold(q.String(), s) {
			return q, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown quality %q", ErrInvalidConfig, s)
}

// OrderPolicy decides how a slow-motion frame is served when its repeat
// group has no cached audio, which happens when a group is entered past
// its first frame.
type OrderPolicy int

const (
	// OrderRecompute stretches the group's audio again. Output matches a
	// sequential render.
	OrderRecompute OrderPolicy = iota

	// OrderStrict fails with ErrGroupOrder.
	OrderStrict
)

func (o OrderPolicy) String() string {
	switch o {
	case OrderRecompute:
		return "recompute"
	case OrderStrict:
		return "strict"
	default:
		return fmt.Sprintf("OrderPolicy(%d)", int(o))
	}
}

// ParseOrderPolicy parses "recompute" or "strict".
func ParseOrderPolicy(s string) (OrderPolicy, error) {
	for _, o := range []OrderPolicy{OrderRecompute, OrderStrict} {
		if strings.EqualFold(o.String(), s) {
			return o, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown ordering %q", ErrInvalidConfig, s)
}

// BlendMode selects the slow-motion frames that blend in the next source
// frame at opacity num/den.
type BlendMode int

const (
	// BlendFinalFraction blends only on the last frame of the group.
	BlendFinalFraction BlendMode = iota

	// BlendEveryFraction blends on every frame of the group, fading the
	// next source frame in.
	BlendEveryFraction
)

func (b BlendMode) String() string {
	switch b {
	case BlendFinalFraction:
		return "final"
	case BlendEveryFraction:
		return "every"
	default:
		return fmt.Sprintf("BlendMode(%d)", int(b))
	}
}

// ParseBlendMode parses "final" or "every".
func ParseBlendMode(s string) (BlendMode, error) {
	for _, b := range []BlendMode{BlendFinalFraction, BlendEveryFraction} {
		if strings.EqualFold(b.String(), s) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown blend mode %q", ErrInvalidConfig, s)
}
