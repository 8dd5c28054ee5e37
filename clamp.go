package timemap

// ClampFrame normalizes a requested frame number. Frames are 1-based;
// anything below 1 becomes 1.
func ClampFrame(n int) int {
	if n < firstFrame {
		return firstFrame
	}
	return n
}
