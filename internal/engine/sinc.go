package engine

import (
	"math"
	"sync"

	"github.com/tphakala/go-clip-timemap/internal/filter"
	"github.com/tphakala/simd/f64"
)

// sincKernel convolves with a tabulated Kaiser windowed sinc.
type sincKernel struct {
	table *filter.SincTable
}

func (k sincKernel) stretch(dst, src []float64, step float64) {
	half := k.table.HalfTaps()
	window := make([]float64, k.table.Taps())

	for i := range dst {
		pos := float64(i) * step
		i0 := int(math.Floor(pos))
		row := k.table.Row(pos - float64(i0))

		first := i0 - half + 1
		if first >= 0 && first+len(window) <= len(src) {
			dst[i] = f64.DotProduct(row, src[first:first+len(window)])
			continue
		}
		for j := range window {
			window[j] = at(src, first+j)
		}
		dst[i] = f64.DotProduct(row, window)
	}
}

// tableKey identifies a kernel design.
type tableKey struct {
	quality Quality
	cutoff  int64
}

// tableCache shares kernel tables between calls. Designing a wide table is
// far more expensive than applying it.
type tableCache struct {
	mu     sync.Mutex
	tables map[tableKey]*filter.SincTable
}

func newTableCache() *tableCache {
	return &tableCache{tables: make(map[tableKey]*filter.SincTable)}
}

// get returns the table for the quality preset and ratio, designing it on
// first use.
func (c *tableCache) get(q Quality, ratio float64) (*filter.SincTable, error) {
	zeroCrossings, attenuation, _ := q.sincParams()

	cutoff := 1.0
	if ratio > 1 {
		cutoff = compressCutoffScale / ratio
	}
	key := tableKey{quality: q, cutoff: int64(math.Round(cutoff / cutoffQuantum))}

	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.tables[key]; ok {
		return t, nil
	}

	t, err := filter.NewSincTable(filter.TableParams{
		ZeroCrossings: zeroCrossings,
		Cutoff:        cutoff,
		Attenuation:   attenuation,
		Phases:        sincPhases,
		MaxHalfTaps:   maxHalfTaps,
	})
	if err != nil {
		return nil, err
	}
	if len(c.tables) >= maxCachedTables {
		clear(c.tables)
	}
	c.tables[key] = t
	return t, nil
}
