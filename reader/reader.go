// Package reader opens media files as clip sources. The format is chosen
// by sniffing the file header, never by extension.
package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tphakala/go-clip-timemap/media"
)

// Kind is the capability class of a source.
type Kind int

const (
	// KindUnknown is an unrecognized header.
	KindUnknown Kind = iota
	// KindAudio is a PCM audio file without pictures.
	KindAudio
	// KindImage is a still image repeated for every frame.
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// ErrUnsupportedFormat is returned when no reader recognizes the header.
var ErrUnsupportedFormat = errors.New("unsupported media format")

const (
	sniffLen      = 12
	defaultFPS    = 24
	defaultLength = 1
	riffTagEnd    = 4
	riffKindStart = 8
)

var (
	magicRIFF = []byte("RIFF")
	magicWAVE = []byte("WAVE")
	magicWEBP = []byte("WEBP")
	magicPNG  = []byte("\x89PNG\r\n\x1a\n")
	magicJPEG = []byte{0xff, 0xd8, 0xff}
	magicGIF  = []byte("GIF8")
	magicBMP  = []byte("BM")
	magicTIFL = []byte("II*\x00")
	magicTIFB = []byte("MM\x00*")
)

// Sniff classifies a file from its first bytes.
func Sniff(header []byte) Kind {
	if bytes.HasPrefix(header, magicRIFF) && len(header) >= sniffLen {
		switch kind := header[riffKindStart:sniffLen]; {
		case bytes.Equal(kind, magicWAVE):
			return KindAudio
		case bytes.Equal(kind, magicWEBP):
			return KindImage
		}
		return KindUnknown
	}

	for _, magic := range [][]byte{magicPNG, magicJPEG, magicGIF, magicBMP, magicTIFL, magicTIFB} {
		if bytes.HasPrefix(header, magic) {
			return KindImage
		}
	}
	return KindUnknown
}

// Options fills in what a file cannot describe itself.
type Options struct {
	// FPS is the frame rate used to slice audio and to pace stills.
	// Defaults to 24/1.
	FPS media.Fraction

	// Width and Height size the blank pictures of audio sources.
	Width  int
	Height int

	// Length is the number of frames a still image lasts. Defaults to 1.
	Length int

	// SampleRate and Channels describe the silent audio attached to
	// stills. A zero SampleRate means stills carry no audio.
	SampleRate int
	Channels   int
}

func (o Options) withDefaults() Options {
	if o.FPS.Num <= 0 || o.FPS.Den <= 0 {
		o.FPS = media.Fraction{Num: defaultFPS, Den: 1}
	}
	if o.Length <= 0 {
		o.Length = defaultLength
	}
	return o
}

// Open sniffs path and returns the matching reader.
func Open(path string, opts Options) (media.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding %s: %w", path, err)
	}

	opts = opts.withDefaults()
	switch Sniff(header[:n]) {
	case KindAudio:
		return NewWAVReader(f, opts)
	case KindImage:
		return NewImageReader(f, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// KindOf reports the capability class of a reader opened by this package.
func KindOf(r media.Reader) Kind {
	switch r.(type) {
	case *WAVReader:
		return KindAudio
	case *ImageReader:
		return KindImage
	default:
		return KindUnknown
	}
}
