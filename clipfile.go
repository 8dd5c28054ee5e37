package timemap

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tphakala/go-clip-timemap/keyframe"
	"github.com/tphakala/go-clip-timemap/media"
	"github.com/tphakala/go-clip-timemap/reader"
	"gopkg.in/yaml.v3"
)

// ClipFile is the YAML description of a clip:
//
//	id: 3f0c9a52-8d1e-4d7e-9a59-0c8f6a2f1b11
//	source: interview.wav
//	fps: 30000/1001
//	quality: high
//	seam_backoff: 1
//	time:
//	  - {x: 1, y: 1}
//	  - {x: 90, y: 30}
//	rotation:
//	  - {x: 1, y: 0}
//	  - {x: 90, y: 15, interpolation: smooth}
type ClipFile struct {
	ID     string `yaml:"id,omitempty"`
	Source string `yaml:"source"`

	// FPS paces audio-only sources and stills, as "num/den" or an integer.
	FPS string `yaml:"fps,omitempty"`

	// Picture size for audio-only sources.
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`

	// Length, SampleRate and Channels describe still image sources.
	Length     int `yaml:"length,omitempty"`
	SampleRate int `yaml:"sample_rate,omitempty"`
	Channels   int `yaml:"channels,omitempty"`

	Quality              string `yaml:"quality,omitempty"`
	SeamBackoff          *int   `yaml:"seam_backoff,omitempty"`
	MaxSpeedDelta        int    `yaml:"max_speed_delta,omitempty"`
	CacheGroups          int    `yaml:"cache_groups,omitempty"`
	Ordering             string `yaml:"ordering,omitempty"`
	Blend                string `yaml:"blend,omitempty"`
	ReverseOnlyBackwards bool   `yaml:"reverse_only_backwards,omitempty"`
	Parallel             bool   `yaml:"parallel,omitempty"`

	Time     []keyframe.Point `yaml:"time,omitempty"`
	Rotation []keyframe.Point `yaml:"rotation,omitempty"`

	dir string
}

// LoadClipFile reads a clip description. A relative source path is
// resolved against the directory of the file.
func LoadClipFile(path string) (*ClipFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading clip file: %w", err)
	}

	cf, err := ParseClipFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cf.dir = filepath.Dir(path)
	return cf, nil
}

// ParseClipFile decodes a clip description. Unknown fields are rejected.
func ParseClipFile(data []byte) (*ClipFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cf ClipFile
	if err := dec.Decode(&cf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &cf, nil
}

// SourcePath returns the source path, resolved against the clip file.
func (f *ClipFile) SourcePath() string {
	if f.Source == "" || filepath.IsAbs(f.Source) || f.dir == "" {
		return f.Source
	}
	return filepath.Join(f.dir, f.Source)
}

// Config converts the description into a validated clip configuration.
func (f *ClipFile) Config() (*Config, error) {
	cfg := DefaultConfig()

	if f.ID != "" {
		id, err := uuid.Parse(f.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: clip id: %w", ErrInvalidConfig, err)
		}
		cfg.ID = id
	}

	var err error
	if f.Quality != "" {
		if cfg.Quality, err = ParseQuality(f.Quality); err != nil {
			return nil, err
		}
	}
	if f.Ordering != "" {
		if cfg.Ordering, err = ParseOrderPolicy(f.Ordering); err != nil {
			return nil, err
		}
	}
	if f.Blend != "" {
		if cfg.SlowMotionBlend, err = ParseBlendMode(f.Blend); err != nil {
			return nil, err
		}
	}
	if f.SeamBackoff != nil {
		cfg.SeamBackoff = *f.SeamBackoff
	}
	if f.MaxSpeedDelta != 0 {
		cfg.MaxSpeedDelta = f.MaxSpeedDelta
	}
	if f.CacheGroups != 0 {
		cfg.CacheGroups = f.CacheGroups
	}
	cfg.ReverseOnlyBackwards = f.ReverseOnlyBackwards
	cfg.EnableParallel = f.Parallel

	if len(f.Time) > 0 {
		if cfg.Time, err = keyframe.NewCurve(f.Time...); err != nil {
			return nil, fmt.Errorf("%w: time curve: %w", ErrInvalidConfig, err)
		}
	}
	if len(f.Rotation) > 0 {
		if cfg.Rotation, err = keyframe.NewCurve(f.Rotation...); err != nil {
			return nil, fmt.Errorf("%w: rotation curve: %w", ErrInvalidConfig, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReaderOptions returns the options for opening the source.
func (f *ClipFile) ReaderOptions() (reader.Options, error) {
	opts := reader.Options{
		Width:      f.Width,
		Height:     f.Height,
		Length:     f.Length,
		SampleRate: f.SampleRate,
		Channels:   f.Channels,
	}
	if f.FPS != "" {
		fps, err := media.ParseFraction(f.FPS)
		if err != nil {
			return reader.Options{}, fmt.Errorf("%w: fps: %w", ErrInvalidConfig, err)
		}
		opts.FPS = fps
	}
	return opts, nil
}

// Open builds the clip and attaches its source. logger may be nil.
func (f *ClipFile) Open(logger *slog.Logger) (*Clip, error) {
	cfg, err := f.Config()
	if err != nil {
		return nil, err
	}
	cfg.Logger = logger

	opts, err := f.ReaderOptions()
	if err != nil {
		return nil, err
	}

	src, err := reader.Open(f.SourcePath(), opts)
	if err != nil {
		return nil, err
	}

	clip, err := New(cfg)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	clip.SetReader(src)
	return clip, nil
}
