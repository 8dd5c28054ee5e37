package reader

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"

	"github.com/tphakala/go-clip-timemap/buffer"
	"github.com/tphakala/go-clip-timemap/media"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

const defaultStillChannels = 2

// ImageReader serves one still picture for a fixed number of frames.
type ImageReader struct {
	info  media.Info
	image *image.RGBA
}

// NewImageReader decodes a still. It lasts opts.Length frames and carries
// silence when opts.SampleRate is set.
func NewImageReader(r io.Reader, opts Options) (*ImageReader, error) {
	opts = opts.withDefaults()

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	rgba := media.ToRGBA(img)

	info := media.Info{
		FPS:      opts.FPS,
		Length:   opts.Length,
		Width:    rgba.Bounds().Dx(),
		Height:   rgba.Bounds().Dy(),
		HasVideo: true,
	}
	if opts.SampleRate > 0 {
		info.SampleRate = opts.SampleRate
		info.Channels = opts.Channels
		if info.Channels <= 0 {
			info.Channels = defaultStillChannels
		}
		info.HasAudio = true
	}

	return &ImageReader{info: info, image: rgba}, nil
}

// Info returns the source description.
func (r *ImageReader) Info() media.Info {
	return r.info
}

// GetFrame returns the still with the silence owed to frame n.
func (r *ImageReader) GetFrame(ctx context.Context, n int) (*media.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := media.CheckFrame(n, r.info); err != nil {
		return nil, err
	}

	count := media.SamplesForFrame(n, r.info.FPS, r.info.SampleRate)
	silence := make([][]float64, r.info.Channels)
	for ch := range silence {
		silence[ch] = make([]float64, count)
	}

	return &media.Frame{
		Number:     n,
		Image:      r.image,
		Audio:      buffer.FromChannels(silence),
		SampleRate: r.info.SampleRate,
	}, nil
}

// Close is a no-op; the picture is decoded up front.
func (r *ImageReader) Close() error {
	return nil
}
