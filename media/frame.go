// Package media defines the frames a clip produces and the Reader
// interface its sources implement.
package media

import (
	"image"
	"image/color"
	"math"

	"github.com/tphakala/go-clip-timemap/buffer"
	"golang.org/x/image/draw"
	xmath "golang.org/x/image/math/f64"
)

const (
	opaque        = 0xff
	degreesToRads = math.Pi / 180
	halfDivisor   = 2
)

// Frame is one frame of a clip: an image and the audio that plays while it
// is shown. Audio is planar; SampleRate is its nominal rate.
type Frame struct {
	Number     int
	Image      *image.RGBA
	Audio      *buffer.Buffer
	SampleRate int
}

// BlankImage returns an opaque black image.
func BlankImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)
	return img
}

// ToRGBA converts any image to an RGBA copy anchored at the origin.
func ToRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// CloneImage returns a copy of img, or nil.
func CloneImage(img *image.RGBA) *image.RGBA {
	if img == nil {
		return nil
	}
	return &image.RGBA{
		Pix:    append([]uint8(nil), img.Pix...),
		Stride: img.Stride,
		Rect:   img.Rect,
	}
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := &Frame{Number: f.Number, SampleRate: f.SampleRate, Image: CloneImage(f.Image)}
	if f.Audio != nil {
		c.Audio = f.Audio.Clone()
	}
	return c
}

// SampleCount returns the number of audio samples per channel.
func (f *Frame) SampleCount() int {
	if f.Audio == nil {
		return 0
	}
	return f.Audio.Len()
}

// Channels returns the number of audio channels.
func (f *Frame) Channels() int {
	if f.Audio == nil {
		return 0
	}
	return f.Audio.Channels()
}

// BlendImage draws src over the frame image at the given opacity in [0, 1].
func (f *Frame) BlendImage(src image.Image, opacity float64) {
	if f.Image == nil || src == nil || opacity <= 0 {
		return
	}
	alpha := uint8(math.Round(min(opacity, 1) * opaque))
	mask := image.NewUniform(color.Alpha{A: alpha})
	draw.DrawMask(f.Image, f.Image.Bounds(), src, src.Bounds().Min, mask, image.Point{}, draw.Over)
}

// Rotate rotates the image clockwise by degrees about its centre. The size
// is kept; uncovered corners become transparent.
func (f *Frame) Rotate(degrees float64) {
	if f.Image == nil || degrees == 0 {
		return
	}

	src := f.Image
	b := src.Bounds()
	dst := image.NewRGBA(b)

	sin, cos := math.Sincos(degrees * degreesToRads)
	cx := float64(b.Min.X) + float64(b.Dx())/halfDivisor
	cy := float64(b.Min.Y) + float64(b.Dy())/halfDivisor

	// Maps source to destination: p' = R(p - c) + c.
	s2d := xmath.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
	draw.BiLinear.Transform(dst, s2d, src, b, draw.Src, nil)

	f.Image = dst
}
