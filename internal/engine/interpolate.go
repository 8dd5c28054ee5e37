package engine

import "math"

// kernel writes len(dst) samples read from src at positions i*step.
type kernel interface {
	stretch(dst, src []float64, step float64)
}

// at returns src[i] with the edge samples held outside the slice.
func at(src []float64, i int) float64 {
	if i < 0 {
		return src[0]
	}
	if i >= len(src) {
		return src[len(src)-1]
	}
	return src[i]
}

// linearKernel implements linear (2-point, 1st order) interpolation.
type linearKernel struct{}

func (linearKernel) stretch(dst, src []float64, step float64) {
	for i := range dst {
		pos := float64(i) * step
		i0 := int(math.Floor(pos))
		x := pos - float64(i0)

		// y = (1-x)*y0 + x*y1
		y0 := at(src, i0)
		dst[i] = y0 + x*(at(src, i0+1)-y0)
	}
}

// cubicKernel implements cubic (4-point, 3rd order) Hermite interpolation.
type cubicKernel struct{}

func (cubicKernel) stretch(dst, src []float64, step float64) {
	for i := range dst {
		pos := float64(i) * step
		i0 := int(math.Floor(pos))
		dst[i] = hermite(at(src, i0-1), at(src, i0), at(src, i0+1), at(src, i0+2), pos-float64(i0))
	}
}

// hermite evaluates the Catmull-Rom spline through y1..y2 at x in [0, 1).
func hermite(y0, y1, y2, y3, x float64) float64 {
	coefA := -hermiteCoeff0_5*y0 + hermiteCoeff1_5*y1 - hermiteCoeff1_5*y2 + hermiteCoeff0_5*y3
	coefB := y0 - hermiteCoeff2_5*y1 + 2*y2 - hermiteCoeff0_5*y3
	coefC := -hermiteCoeff0_5*y0 + hermiteCoeff0_5*y2
	coefD := y1

	return ((coefA*x+coefB)*x+coefC)*x + coefD
}
