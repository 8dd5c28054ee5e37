package timemap

// Defaults
const (
	defaultSeamBackoff   = 1   // Samples stepped back when reading a later slow-motion window
	defaultMaxSpeedDelta = 100 // Frame skips at or beyond this are not resampled
	defaultCacheGroups   = 4   // Slow-motion groups kept in the cache
)

// Limits
const (
	minSpeedDelta  = 2
	maxSpeedDelta  = 256 // Keeps speed-change ratios within the resampler's range
	minCacheGroups = 1
	firstFrame     = 1
)
