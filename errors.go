package timemap

import "errors"

// Common errors returned by a clip.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid clip configuration")

	// ErrReaderUnavailable indicates that no reader is attached to the clip.
	ErrReaderUnavailable = errors.New("no reader attached to clip")

	// ErrInvalidSourceFrame indicates that the time curve mapped a frame
	// outside the reader's range.
	ErrInvalidSourceFrame = errors.New("source frame out of range")

	// ErrResamplerFailure wraps errors reported by the resampler.
	ErrResamplerFailure = errors.New("resampler failure")

	// ErrGroupOrder indicates a slow-motion frame requested before the
	// first frame of its repeat group under OrderStrict.
	ErrGroupOrder = errors.New("repeat group requested out of order")
)
