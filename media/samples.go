package media

import "github.com/tphakala/go-clip-timemap/internal/mathutil"

// TotalSamples returns the number of audio samples that elapse during the
// first k frames: round(sampleRate * k / fps), computed exactly.
func TotalSamples(k int, fps Fraction, sampleRate int) int {
	if k <= 0 || fps.Num <= 0 || fps.Den <= 0 || sampleRate <= 0 {
		return 0
	}
	return int(mathutil.RoundDiv(int64(sampleRate)*int64(k)*int64(fps.Den), int64(fps.Num)))
}

// SamplesForFrame returns the number of audio samples owed to frame n.
// Counts of neighbouring frames differ by at most one when the sample rate
// is not a multiple of the frame rate, but any run of frames sums to
// TotalSamples(last) - TotalSamples(first-1). Frames below 1 count as 1.
func SamplesForFrame(n int, fps Fraction, sampleRate int) int {
	n = max(n, 1)
	return TotalSamples(n, fps, sampleRate) - TotalSamples(n-1, fps, sampleRate)
}

// FrameOffset returns the index of the first sample of frame n.
func FrameOffset(n int, fps Fraction, sampleRate int) int {
	return TotalSamples(max(n, 1)-1, fps, sampleRate)
}
