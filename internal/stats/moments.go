package stats

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Gram returns m · mᵀ / (C·N) for a (C,N) flattened feature matrix: the
// C×C matrix of pairwise channel inner products, normalized by the total
// element count.
func Gram(m *mat.Dense) *mat.Dense {
	c, n := m.Dims()
	var g mat.Dense
	g.Mul(m, m.T())
	g.Scale(1/float64(c*n), &g)
	return &g
}

// MeanStdRows returns the per-row mean and unbiased standard deviation of
// a (C,N) matrix. Rows with fewer than two samples get std 0.
func MeanStdRows(m *mat.Dense) (means, stds []float64) {
	c, n := m.Dims()
	means = make([]float64, c)
	stds = make([]float64, c)
	row := make([]float64, n)
	for i := 0; i < c; i++ {
		mean, std := stat.MeanStdDev(mat.Row(row, i, m), nil)
		means[i] = mean
		if n >= 2 {
			stds[i] = std
		}
	}
	return means, stds
}
