package main

import (
	"errors"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/go-clip-timemap/buffer"
	"github.com/tphakala/go-clip-timemap/media"
)

const (
	bitsPerSample8  = 8
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt8  = 127.0
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// 8-bit WAV is unsigned.
	unsigned8Offset = 128

	wavFormatPCM     = 1
	progressInterval = 10
	percentScale     = 100
)

var errBadRange = errors.New("invalid frame range")

func validBitDepth(bits int) bool {
	switch bits {
	case bitsPerSample8, bitsPerSample16, bitsPerSample24, bitsPerSample32:
		return true
	default:
		return false
	}
}

// getMaxValue returns the maximum sample value for the given bit depth.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample8:
		return maxInt8
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// toPCM converts interleaved samples in [-1, 1] to integer PCM, clamping
// out of range values.
func toPCM(samples []float64, bitDepth int) []int {
	maxVal := getMaxValue(bitDepth)
	out := make([]int, len(samples))
	for i, s := range samples {
		s = min(max(s, -1), 1)
		out[i] = int(s * maxVal)
		if bitDepth == bitsPerSample8 {
			out[i] += unsigned8Offset
		}
	}
	return out
}

// parseRange parses "first:last". Either side may be empty; an empty
// string selects [1, length].
func parseRange(s string, length int) (first, last int, err error) {
	first, last = 1, length
	if s == "" {
		return first, last, nil
	}

	lo, hi, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, fmt.Errorf("%w: %q, want first:last", errBadRange, s)
	}
	if lo != "" {
		if first, err = strconv.Atoi(lo); err != nil {
			return 0, 0, fmt.Errorf("%w: %q", errBadRange, s)
		}
	}
	if hi != "" {
		if last, err = strconv.Atoi(hi); err != nil {
			return 0, 0, fmt.Errorf("%w: %q", errBadRange, s)
		}
	}
	if first < 1 || last < first {
		return 0, 0, fmt.Errorf("%w: %q", errBadRange, s)
	}
	return first, last, nil
}

// wavOutput streams rendered audio into a WAV file.
type wavOutput struct {
	file     *os.File
	encoder  *wav.Encoder
	format   *audio.Format
	bitDepth int
}

func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutput, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &wavOutput{
		file:     f,
		encoder:  wav.NewEncoder(f, sampleRate, bitDepth, channels, wavFormatPCM),
		format:   &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		bitDepth: bitDepth,
	}, nil
}

// WriteBuffer appends one frame of audio.
func (w *wavOutput) WriteBuffer(b *buffer.Buffer) error {
	if b.Len() == 0 {
		return nil
	}
	if b.Channels() != w.format.NumChannels {
		return fmt.Errorf("frame has %d channels, output has %d", b.Channels(), w.format.NumChannels)
	}

	err := w.encoder.Write(&audio.IntBuffer{
		Format:         w.format,
		Data:           toPCM(b.Interleave(), w.bitDepth),
		SourceBitDepth: w.bitDepth,
	})
	if err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	return nil
}

// Close finalizes the header and closes the file.
func (w *wavOutput) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return w.file.Close()
}

// framePath names the picture of frame n.
func framePath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%06d.png", n))
}

func writePNG(dir string, f *media.Frame) error {
	file, err := os.Create(framePath(dir, f.Number))
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	if err := png.Encode(file, f.Image); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to encode frame %d: %w", f.Number, err)
	}
	return file.Close()
}

// progressTracker handles progress reporting.
type progressTracker struct {
	total        int
	lastProgress int
	verbose      bool
}

func newProgressTracker(total int, verbose bool) *progressTracker {
	return &progressTracker{total: total, verbose: verbose}
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(done int) {
	if !p.verbose || p.total <= 0 {
		return
	}

	progress := done * percentScale / p.total
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}
