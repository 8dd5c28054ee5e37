// Package buffer provides a fixed-capacity, multi-channel float64 sample
// buffer used to move audio between frames, the resampler and the cache.
package buffer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/floats"
)

const stereoChannels = 2

var (
	// ErrCapacityExceeded is returned when a write would grow a channel past
	// the buffer capacity.
	ErrCapacityExceeded = errors.New("buffer capacity exceeded")

	// ErrChannelMismatch is returned when two buffers or a channel index do
	// not agree on the channel layout.
	ErrChannelMismatch = errors.New("channel mismatch")
)

// Buffer holds planar audio: one slice per channel, all of equal length.
// The capacity is fixed at construction; writes never reallocate.
type Buffer struct {
	data     [][]float64
	length   int
	capacity int
}

// New returns an empty buffer with the given channel count and per-channel
// capacity.
func New(channels, capacity int) *Buffer {
	if channels < 0 {
		channels = 0
	}
	if capacity < 0 {
		capacity = 0
	}

	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, capacity)
	}

	return &Buffer{data: data, capacity: capacity}
}

// FromChannels copies planar data into a new buffer whose length and
// capacity equal the longest channel. Shorter channels are zero padded.
func FromChannels(channels [][]float64) *Buffer {
	n := 0
	for _, ch := range channels {
		n = max(n, len(ch))
	}

	b := New(len(channels), n)
	for ch, src := range channels {
		copy(b.data[ch], src)
	}
	b.length = n

	return b
}

// Channels returns the number of channels.
func (b *Buffer) Channels() int {
	return len(b.data)
}

// Len returns the number of samples per channel.
func (b *Buffer) Len() int {
	return b.length
}

// Cap returns the per-channel capacity.
func (b *Buffer) Cap() int {
	return b.capacity
}

// Channel returns a view of the samples of one channel. The slice aliases
// the buffer and is only valid until the next mutation.
func (b *Buffer) Channel(ch int) []float64 {
	return b.data[ch][:b.length]
}

// Data returns views of all channels.
func (b *Buffer) Data() [][]float64 {
	out := make([][]float64, len(b.data))
	for ch := range b.data {
		out[ch] = b.data[ch][:b.length]
	}
	return out
}

// Write copies src into channel ch starting at offset. The buffer length
// grows to cover the written range; newly covered samples of other channels
// are zero.
func (b *Buffer) Write(ch, offset int, src []float64) error {
	if ch < 0 || ch >= len(b.data) {
		return fmt.Errorf("%w: channel %d of %d", ErrChannelMismatch, ch, len(b.data))
	}
	end := offset + len(src)
	if offset < 0 || end > b.capacity {
		return fmt.Errorf("%w: write [%d, %d) with capacity %d", ErrCapacityExceeded, offset, end, b.capacity)
	}

	copy(b.data[ch][offset:end], src)
	b.length = max(b.length, end)

	return nil
}

// Append copies all samples of other after the current end of b.
func (b *Buffer) Append(other *Buffer) error {
	if other.Channels() != b.Channels() {
		return fmt.Errorf("%w: appending %d channels to %d", ErrChannelMismatch, other.Channels(), b.Channels())
	}
	if b.length+other.length > b.capacity {
		return fmt.Errorf("%w: need %d, have %d", ErrCapacityExceeded, b.length+other.length, b.capacity)
	}

	for ch := range b.data {
		copy(b.data[ch][b.length:], other.Channel(ch))
	}
	b.length += other.length

	return nil
}

// Clear zeroes the buffer and resets its length. Capacity is kept.
func (b *Buffer) Clear() {
	for ch := range b.data {
		clear(b.data[ch])
	}
	b.length = 0
}

// Window returns a copy of n samples per channel starting at offset.
// Positions outside [0, Len) read as silence.
func (b *Buffer) Window(offset, n int) *Buffer {
	if n < 0 {
		n = 0
	}

	w := New(len(b.data), n)
	w.length = n

	lo := max(offset, 0)
	hi := min(offset+n, b.length)
	if lo < hi {
		for ch := range b.data {
			copy(w.data[ch][lo-offset:], b.data[ch][lo:hi])
		}
	}

	return w
}

// Clone returns a deep copy with capacity trimmed to the length.
func (b *Buffer) Clone() *Buffer {
	return FromChannels(b.Data())
}

// Reverse reverses every channel in place. Applying it twice restores the
// original contents.
func (b *Buffer) Reverse() {
	for ch := range b.data {
		slices.Reverse(b.data[ch][:b.length])
	}
}

// Reverse reverses b in place and returns it.
func Reverse(b *Buffer) *Buffer {
	b.Reverse()
	return b
}

// Scale multiplies every sample by gain.
func (b *Buffer) Scale(gain float64) {
	for ch := range b.data {
		s := b.data[ch][:b.length]
		f64.Scale(s, s, gain)
	}
}

// EqualApprox reports whether both buffers have the same layout and all
// samples are within tol of each other.
func (b *Buffer) EqualApprox(other *Buffer, tol float64) bool {
	if other == nil || b.Channels() != other.Channels() || b.length != other.length {
		return false
	}
	for ch := range b.data {
		if !floats.EqualApprox(b.Channel(ch), other.Channel(ch), tol) {
			return false
		}
	}
	return true
}

// Interleave returns the samples in frame-major order (L R L R ...).
func (b *Buffer) Interleave() []float64 {
	channels := len(b.data)
	out := make([]float64, b.length*channels)

	if channels == stereoChannels {
		f64.Interleave2(out, b.Channel(0), b.Channel(1))
		return out
	}

	for ch := range channels {
		for i, v := range b.Channel(ch) {
			out[i*channels+ch] = v
		}
	}
	return out
}
