package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestGramKnownValues(t *testing.T) {
	// (C=2, N=2): m·mᵀ = [[5,11],[11,25]], divisor C·N = 4.
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	g := Gram(m)

	r, c := g.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 2, c)
	assert.InDelta(t, 1.25, g.At(0, 0), 1e-12)
	assert.InDelta(t, 2.75, g.At(0, 1), 1e-12)
	assert.InDelta(t, 2.75, g.At(1, 0), 1e-12)
	assert.InDelta(t, 6.25, g.At(1, 1), 1e-12)
}

func TestGramSymmetric(t *testing.T) {
	m := mat.NewDense(3, 5, []float64{
		1, -2, 3, 0, 1,
		4, 0, -1, 2, 2,
		0, 1, 1, -3, 5,
	})
	g := Gram(m)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, g.At(j, i), g.At(i, j), 1e-12)
		}
	}
}

func TestMeanStdRows(t *testing.T) {
	m := mat.NewDense(2, 4, []float64{
		1, 2, 3, 4,
		5, 5, 5, 5,
	})
	means, stds := MeanStdRows(m)

	require.Len(t, means, 2)
	assert.InDelta(t, 2.5, means[0], 1e-12)
	assert.InDelta(t, 5.0, means[1], 1e-12)
	// Unbiased: var = 5/3.
	assert.InDelta(t, 1.2909944487358056, stds[0], 1e-12)
	assert.InDelta(t, 0.0, stds[1], 1e-12)
}

func TestMeanStdRowsSingleColumn(t *testing.T) {
	m := mat.NewDense(2, 1, []float64{3, 7})
	means, stds := MeanStdRows(m)

	assert.Equal(t, []float64{3, 7}, means)
	// One sample per row: std pinned to 0, not NaN.
	assert.Equal(t, []float64{0, 0}, stds)
}

func TestMSE(t *testing.T) {
	assert.InDelta(t, 4.0/3.0, MSE([]float64{1, 2, 3}, []float64{1, 2, 5}), 1e-12)
	assert.Equal(t, 0.0, MSE([]float64{1, 2}, []float64{1, 2}))
	assert.Equal(t, 0.0, MSE(nil, nil))
}

func TestMSELengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		MSE([]float64{1}, []float64{1, 2})
	})
}

func TestMSEMat(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	b := mat.NewDense(2, 2, []float64{1, 2, 3, 0})
	assert.InDelta(t, 4.0, MSEMat(a, b), 1e-12)

	assert.Panics(t, func() {
		MSEMat(a, mat.NewDense(2, 3, nil))
	})
}

func TestInterp(t *testing.T) {
	xp := []float64{0, 1}
	fp := []float64{10, 20}

	got := Interp([]float64{-1, 0, 0.5, 1, 2}, xp, fp)
	want := []float64{10, 10, 15, 20, 20}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12, "point %d", i)
	}
}

func TestInterpExactKnot(t *testing.T) {
	got := Interp([]float64{0.5}, []float64{0, 0.5, 1}, []float64{0, 5, 20})
	assert.Equal(t, 5.0, got[0])
}

func TestInterpTableMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		Interp([]float64{0}, []float64{0, 1}, []float64{1})
	})
}

func TestF32Conversions(t *testing.T) {
	f64 := FromF32([]float32{1.5, -2.25, 0})
	assert.Equal(t, []float64{1.5, -2.25, 0}, f64)

	f32 := ToF32(f64)
	assert.Equal(t, []float32{1.5, -2.25, 0}, f32)
}
