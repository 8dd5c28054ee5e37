package reader

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/go-audio/wav"
	"github.com/tphakala/go-clip-timemap/buffer"
	"github.com/tphakala/go-clip-timemap/media"
)

// ErrInvalidWAV is returned for files the WAV decoder rejects.
var ErrInvalidWAV = errors.New("invalid WAV file")

const (
	bitsPerSample8  = 8
	unsigned8Offset = 128
)

// WAVReader serves a PCM WAV file sliced into frames. The file is decoded
// into memory when the reader is created.
type WAVReader struct {
	info  media.Info
	audio *buffer.Buffer
	image *image.RGBA
}

// NewWAVReader decodes r. Frames are cut at opts.FPS; each carries a
// blank picture of opts.Width x opts.Height when both are set.
func NewWAVReader(r io.ReadSeeker, opts Options) (*WAVReader, error) {
	opts = opts.withDefaults()

	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding PCM: %w", err)
	}

	channels := int(decoder.NumChans)
	rate := int(decoder.SampleRate)
	audio := deinterleave(pcm.Data, channels, int(decoder.BitDepth))

	info := media.Info{
		FPS:        opts.FPS,
		SampleRate: rate,
		Channels:   channels,
		Length:     framesFor(audio.Len(), opts.FPS, rate),
		Width:      opts.Width,
		Height:     opts.Height,
		HasAudio:   true,
	}

	w := &WAVReader{info: info, audio: audio}
	if opts.Width > 0 && opts.Height > 0 {
		w.image = media.BlankImage(opts.Width, opts.Height)
	}
	return w, nil
}

// Info returns the source description.
func (w *WAVReader) Info() media.Info {
	return w.info
}

// GetFrame returns the audio of frame n. The last frame is zero padded.
func (w *WAVReader) GetFrame(ctx context.Context, n int) (*media.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := media.CheckFrame(n, w.info); err != nil {
		return nil, err
	}

	offset := media.FrameOffset(n, w.info.FPS, w.info.SampleRate)
	count := media.SamplesForFrame(n, w.info.FPS, w.info.SampleRate)

	return &media.Frame{
		Number:     n,
		Image:      w.image,
		Audio:      w.audio.Window(offset, count),
		SampleRate: w.info.SampleRate,
	}, nil
}

// Close is a no-op; the file is closed once decoded.
func (w *WAVReader) Close() error {
	return nil
}

// framesFor returns the smallest frame count whose audio covers samples.
func framesFor(samples int, fps media.Fraction, rate int) int {
	if samples == 0 || rate <= 0 {
		return 0
	}
	n := int(int64(samples) * int64(fps.Num) / (int64(rate) * int64(fps.Den)))
	for media.TotalSamples(n, fps, rate) < samples {
		n++
	}
	return max(n, 1)
}

// deinterleave converts interleaved integer PCM to planar samples in
// [-1, 1).
func deinterleave(data []int, channels, bitDepth int) *buffer.Buffer {
	frames := len(data) / channels
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	offset := 0
	if bitDepth == bitsPerSample8 {
		offset = unsigned8Offset
	}

	planar := make([][]float64, channels)
	for ch := range planar {
		s := make([]float64, frames)
		for i := range s {
			s[i] = float64(data[i*channels+ch]-offset) * scale
		}
		planar[ch] = s
	}
	return buffer.FromChannels(planar)
}
