// Command timemap-inspect prints how each output frame of a clip is
// synthesized, without rendering anything.
//
// Usage:
//
//	timemap-inspect clip.yaml
//	timemap-inspect -range 1:48 clip.yaml
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	timemap "github.com/tphakala/go-clip-timemap"
	"github.com/tphakala/go-clip-timemap/media"
)

const (
	minRequiredArgs = 1
	tabPadding      = 2
)

func main() {
	var (
		frameRange = flag.String("range", "", "Frames to inspect as first:last (default: whole clip)")
		noSource   = flag.Bool("no-source", false, "Do not open the source; sample counts are omitted")
	)
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] clip.yaml\n\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := inspect(os.Stdout, args[0], *frameRange, !*noSource); err != nil {
		log.Fatal(err)
	}
}

func inspect(w io.Writer, path, frameRange string, withSource bool) error {
	cf, err := timemap.LoadClipFile(path)
	if err != nil {
		return err
	}

	var (
		clip *timemap.Clip
		info media.Info
	)
	if withSource {
		if clip, err = cf.Open(nil); err != nil {
			return err
		}
		defer func() { _ = clip.Close() }()
		info = clip.Reader().Info()
	} else {
		cfg, err := cf.Config()
		if err != nil {
			return err
		}
		if clip, err = timemap.New(cfg); err != nil {
			return err
		}
	}

	length := clip.TimeCurve().Length()
	if withSource {
		if length, err = clip.Length(); err != nil {
			return err
		}
	}
	first, last, err := parseRange(frameRange, length)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Clip %s: %d frames", clip.ID(), length)
	if withSource {
		fmt.Fprintf(w, " at %s fps, %d Hz", info.FPS, info.SampleRate)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "frame\tsource\tdelta\trepeat\tdirection\tpath\tnext\tsamples")
	for n := first; n <= last; n++ {
		p := clip.Plan(n)
		fmt.Fprintf(tw, "%d\t%d\t%+d\t%d/%d\t%s\t%s\t%s\t%s\n",
			p.Frame, p.Source, p.Delta, p.Repeat.Num, p.Repeat.Den,
			direction(p.Increasing), p.Path, optional(p.NextUnique), samples(withSource, n, info))
	}
	return tw.Flush()
}

func direction(increasing bool) string {
	if increasing {
		return "fwd"
	}
	return "rev"
}

func optional(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func samples(withSource bool, n int, info media.Info) string {
	if !withSource || info.SampleRate <= 0 {
		return "-"
	}
	return strconv.Itoa(media.SamplesForFrame(n, info.FPS, info.SampleRate))
}

var errBadRange = errors.New("invalid frame range")

// parseRange parses "first:last"; an empty string selects [1, length].
func parseRange(s string, length int) (first, last int, err error) {
	if s == "" {
		return 1, max(length, 1), nil
	}
	lo, hi, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, fmt.Errorf("%w: %q", errBadRange, s)
	}
	if first, err = strconv.Atoi(lo); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", errBadRange, s)
	}
	if last, err = strconv.Atoi(hi); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", errBadRange, s)
	}
	if first < 1 || last < first {
		return 0, 0, fmt.Errorf("%w: %q", errBadRange, s)
	}
	return first, last, nil
}
