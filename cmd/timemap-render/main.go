// Command timemap-render renders a clip description to a WAV file and,
// optionally, one PNG per output frame.
//
// Usage:
//
//	timemap-render -o out.wav clip.yaml
//	timemap-render -o out.wav -range 10:48 -bits 24 clip.yaml
//	timemap-render -frames ./png -v clip.yaml     # pictures only, debug logging
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"time"

	timemap "github.com/tphakala/go-clip-timemap"
	"github.com/tphakala/go-clip-timemap/media"
)

const (
	defaultBitDepth = 16
	minRequiredArgs = 1
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	output := flag.String("o", "", "Output WAV file")
	framesDir := flag.String("frames", "", "Directory for PNG frames")
	frameRange := flag.String("range", "", "Frames to render as first:last (default: whole clip)")
	bitDepth := flag.Int("bits", defaultBitDepth, "Output bit depth: 8, 16, 24 or 32")
	quality := flag.String("quality", "", "Override the clip quality: quick, medium, high, veryhigh")
	parallel := flag.Bool("parallel", false, "Resample channels concurrently, overriding the clip")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs || (*output == "" && *framesDir == "") {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] clip.yaml\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nAt least one of -o and -frames is required.\n")
		return errors.New("insufficient arguments")
	}
	if !validBitDepth(*bitDepth) {
		return fmt.Errorf("unsupported bit depth %d", *bitDepth)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	cf, err := timemap.LoadClipFile(args[0])
	if err != nil {
		return err
	}
	if *quality != "" {
		cf.Quality = *quality
	}
	if *parallel {
		cf.Parallel = true
	}

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		log.Printf("Clip: %s", args[0])
		log.Printf("Source: %s", cf.SourcePath())
	}

	clip, err := cf.Open(logger)
	if err != nil {
		return err
	}
	defer func() { _ = clip.Close() }()

	length, err := clip.Length()
	if err != nil {
		return err
	}
	first, last, err := parseRange(*frameRange, length)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	stats, err := render(ctx, clip, renderOptions{
		first:     first,
		last:      last,
		output:    *output,
		framesDir: *framesDir,
		bitDepth:  *bitDepth,
		verbose:   *verbose,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	info := clip.Reader().Info()
	fmt.Printf("Rendered %s frames %d-%d\n", filepath.Base(args[0]), first, last)
	fmt.Printf("  %d frames at %s fps", stats.frames, info.FPS)
	if stats.samples > 0 {
		fmt.Printf(", %d samples at %d Hz (%d channels, %d-bit)", stats.samples, info.SampleRate, stats.channels, *bitDepth)
	}
	fmt.Println()
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(), float64(stats.frames)/info.FPS.Float()/elapsed.Seconds())

	return nil
}

type renderOptions struct {
	first, last int
	output      string
	framesDir   string
	bitDepth    int
	verbose     bool
}

type renderStats struct {
	frames   int
	samples  int64
	channels int
}

// render streams frames [first, last] of clip into the requested outputs.
func render(ctx context.Context, clip *timemap.Clip, opts renderOptions) (stats *renderStats, err error) {
	info := clip.Reader().Info()
	stats = &renderStats{channels: info.Channels}

	var out *wavOutput
	if opts.output != "" && info.HasAudio && info.Channels > 0 {
		out, err = createWAVOutput(opts.output, info.SampleRate, opts.bitDepth, info.Channels)
		if err != nil {
			return nil, err
		}
		// The encoder writes the final sizes into the header on Close.
		defer func() {
			if closeErr := out.Close(); err == nil {
				err = closeErr
			}
		}()
	} else if opts.output != "" {
		log.Printf("Source has no audio, skipping %s", opts.output)
	}

	if opts.framesDir != "" {
		if err := os.MkdirAll(opts.framesDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating frame directory: %w", err)
		}
	}

	progress := newProgressTracker(opts.last-opts.first+1, opts.verbose)

	err = clip.Render(ctx, opts.first, opts.last, func(f *media.Frame) error {
		if out != nil && f.Audio != nil {
			if err := out.WriteBuffer(f.Audio); err != nil {
				return err
			}
			stats.samples += int64(f.Audio.Len())
		}
		if opts.framesDir != "" && f.Image != nil {
			if err := writePNG(opts.framesDir, f); err != nil {
				return err
			}
		}
		stats.frames++
		progress.reportIfNeeded(stats.frames)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}
