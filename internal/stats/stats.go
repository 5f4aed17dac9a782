// Package stats implements the target-plane statistics behind the loss
// layers: gram matrices, batch-norm moments, histogram-matching descriptors
// and kernel mean discrepancies. Everything operates on plain float64
// values (gonum mat/stat/floats), keeping captured targets outside the
// differentiable tensor plane.
package stats

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// eps stabilizes denominators that can collapse to zero (constant channels
// in histogram normalization).
const eps = 1e-5

// MSE returns the mean squared difference between two equal-length slices.
func MSE(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("stats: MSE length mismatch %d vs %d", len(a), len(b)))
	}
	if len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum / float64(len(a))
}

// MSEMat returns the mean squared difference between two equal-shape
// matrices.
func MSEMat(a, b *mat.Dense) float64 {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		panic(fmt.Sprintf("stats: MSE shape mismatch %dx%d vs %dx%d", ar, ac, br, bc))
	}
	var sum float64
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			d := a.At(i, j) - b.At(i, j)
			sum += d * d
		}
	}
	return sum / float64(ar*ac)
}

// Interp evaluates the piecewise-linear function defined by the knots
// (xp, fp) at every x, clamping to the end values outside the table. xp
// must be sorted ascending.
func Interp(x, xp, fp []float64) []float64 {
	if len(xp) != len(fp) {
		panic(fmt.Sprintf("stats: interp table lengths %d vs %d", len(xp), len(fp)))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = interpOne(v, xp, fp)
	}
	return out
}

func interpOne(v float64, xp, fp []float64) float64 {
	n := len(xp)
	if v <= xp[0] {
		return fp[0]
	}
	if v >= xp[n-1] {
		return fp[n-1]
	}
	// First knot at or above v; exact hits take the first match.
	j := sort.SearchFloat64s(xp, v)
	if xp[j] == v {
		return fp[j]
	}
	t := (v - xp[j-1]) / (xp[j] - xp[j-1])
	return fp[j-1] + t*(fp[j]-fp[j-1])
}

// FromF32 widens a float32 slice to float64.
func FromF32(src []float32) []float64 {
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}
	return out
}

// ToF32 narrows a float64 slice to float32.
func ToF32(src []float64) []float32 {
	out := make([]float32, len(src))
	for i, v := range src {
		out[i] = float32(v)
	}
	return out
}
