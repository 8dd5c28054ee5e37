package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/go-clip-timemap/internal/testutil"
)

// TestBesselI0 tests BesselI0 against known values.
func TestBesselI0(t *testing.T) {
	tests := []struct {
		name      string
		x         float64
		expected  float64
		tolerance float64
	}{
		{"Zero", 0.0, 1.0, 1e-15},
		{"Small positive", 0.5, 1.0634833707, 1e-9},
		{"One", 1.0, 1.2660658778, 1e-9},
		{"Two", 2.0, 2.2795853023, 1e-9},
		{"Five", 5.0, 27.2398718236, 1e-9},
		{"Ten", 10.0, 2815.7166284663, 1e-9},
		{"Negative one", -1.0, 1.2660658778, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertRelativeError(t, tt.expected, BesselI0(tt.x), tt.tolerance)
		})
	}
}

func TestBesselI0_Monotonic(t *testing.T) {
	prev := BesselI0(0)
	for x := 0.25; x <= 20; x += 0.25 {
		v := BesselI0(x)
		assert.Greater(t, v, prev, "I0 must increase at x=%f", x)
		prev = v
	}
}

func TestKaiserBeta(t *testing.T) {
	assert.InDelta(t, 0.0, KaiserBeta(10), 0)
	assert.InDelta(t, 0.5842*math.Pow(9, 0.4)+0.07886*9, KaiserBeta(30), 1e-12)
	assert.InDelta(t, 0.1102*(80-8.7), KaiserBeta(80), 1e-12)
}

func TestKaiserBeta_Monotonic(t *testing.T) {
	prev := KaiserBeta(21)
	for att := 22.0; att <= 150; att++ {
		b := KaiserBeta(att)
		assert.GreaterOrEqual(t, b, prev, "beta must not decrease at %f dB", att)
		prev = b
	}
}

func TestRoundDiv(t *testing.T) {
	tests := []struct {
		num, den, want int64
	}{
		{0, 3, 0},
		{4, 2, 2},
		{5, 2, 3},   // 2.5 rounds away from zero
		{-5, 2, -3}, // -2.5 rounds away from zero
		{7, 3, 2},
		{8, 3, 3},
		{-7, 3, -2},
		{1470, 1, 1470},
		{48000 * 1001, 30000, 1602},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, RoundDiv(tc.num, tc.den), "%d/%d", tc.num, tc.den)
		assert.InDelta(t, math.Round(float64(tc.num)/float64(tc.den)), float64(RoundDiv(tc.num, tc.den)), 0)
	}
}
