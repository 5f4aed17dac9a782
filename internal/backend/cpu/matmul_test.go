package cpu

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patina-ml/patina/internal/tensor"
)

func TestMatMulFloat32(t *testing.T) {
	backend := New()
	a := rawFromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := rawFromFloat32(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	c := backend.MatMul(a, b)

	require.True(t, c.Shape().Equal(tensor.Shape{2, 2}))
	// [[1,2,3],[4,5,6]] @ [[7,8],[9,10],[11,12]] = [[58,64],[139,154]]
	assert.InDeltaSlice(t, []float32{58, 64, 139, 154}, c.AsFloat32(), 1e-4)
}

func TestMatMulFloat64Identity(t *testing.T) {
	backend := New()
	a := rawFromFloat64(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	eye := rawFromFloat64(t, []float64{1, 0, 0, 1}, tensor.Shape{2, 2})

	c := backend.MatMul(a, eye)

	assert.InDeltaSlice(t, []float64{1, 2, 3, 4}, c.AsFloat64(), 1e-12)
}

// The BLAS path must agree with a plain triple loop.
func TestMatMulAgainstNaive(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(7))

	m, k, n := 17, 9, 23
	aData := make([]float64, m*k)
	bData := make([]float64, k*n)
	for i := range aData {
		aData[i] = rng.NormFloat64()
	}
	for i := range bData {
		bData[i] = rng.NormFloat64()
	}

	a := rawFromFloat64(t, aData, tensor.Shape{m, k})
	b := rawFromFloat64(t, bData, tensor.Shape{k, n})

	got := backend.MatMul(a, b).AsFloat64()

	want := make([]float64, m*n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			sum := 0.0
			for kk := 0; kk < k; kk++ {
				sum += aData[i*k+kk] * bData[kk*n+j]
			}
			want[i*n+j] = sum
		}
	}

	assert.InDeltaSlice(t, want, got, 1e-9)
}

func TestMatMulShapeMismatchPanics(t *testing.T) {
	backend := New()
	a := rawFromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := rawFromFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	assert.Panics(t, func() { backend.MatMul(a, b) })
}

func TestMatMulNon2DPanics(t *testing.T) {
	backend := New()
	a := rawFromFloat32(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 2, 2})
	b := rawFromFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	assert.Panics(t, func() { backend.MatMul(a, b) })
}
