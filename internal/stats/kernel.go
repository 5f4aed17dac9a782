package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// KernelKind names a positive-definite kernel evaluated between channel
// row vectors of a (C,N) feature matrix.
type KernelKind string

const (
	// KernelLinear is the inner product x·y.
	KernelLinear KernelKind = "linear"
	// KernelPoly is the degree-2 polynomial kernel (x·y)².
	KernelPoly KernelKind = "poly"
	// KernelRBF is the Gaussian kernel exp(-p·‖x-y‖²).
	KernelRBF KernelKind = "rbf"
)

func crossGram(x, y *mat.Dense) *mat.Dense {
	var g mat.Dense
	g.Mul(x, y.T())
	return &g
}

func rowSqNorms(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, m)
		out[i] = floats.Dot(row, row)
	}
	return out
}

// MeanPairwiseSq returns the mean over all row pairs (i, j) of the squared
// distance ‖xᵢ-yⱼ‖². Its inverse is the rbf bandwidth, recomputed on every
// call because it depends on both operands.
func MeanPairwiseSq(x, y *mat.Dense) float64 {
	xr, xc := x.Dims()
	yr, yc := y.Dims()
	if xc != yc {
		panic(fmt.Sprintf("stats: pairwise distance over %d vs %d columns", xc, yc))
	}

	g := crossGram(x, y)
	xn := rowSqNorms(x)
	yn := rowSqNorms(y)

	var sum float64
	for i := 0; i < xr; i++ {
		for j := 0; j < yr; j++ {
			sum += xn[i] + yn[j] - 2*g.At(i, j)
		}
	}
	return sum / float64(xr*yr)
}

// KernelSum returns the sum of k(xᵢ, yⱼ) over all row pairs, computed from
// the cross-gram x·yᵀ. p is the rbf bandwidth; linear and poly ignore it.
func KernelSum(k KernelKind, x, y *mat.Dense, p float64) float64 {
	xr, xc := x.Dims()
	yr, yc := y.Dims()
	if xc != yc {
		panic(fmt.Sprintf("stats: kernel sum over %d vs %d columns", xc, yc))
	}

	g := crossGram(x, y)
	var sum float64

	switch k {
	case KernelLinear:
		for i := 0; i < xr; i++ {
			for j := 0; j < yr; j++ {
				sum += g.At(i, j)
			}
		}
	case KernelPoly:
		for i := 0; i < xr; i++ {
			for j := 0; j < yr; j++ {
				v := g.At(i, j)
				sum += v * v
			}
		}
	case KernelRBF:
		xn := rowSqNorms(x)
		yn := rowSqNorms(y)
		for i := 0; i < xr; i++ {
			for j := 0; j < yr; j++ {
				d2 := xn[i] + yn[j] - 2*g.At(i, j)
				sum += math.Exp(-p * d2)
			}
		}
	default:
		panic(fmt.Sprintf("stats: unknown kernel kind %q", k))
	}
	return sum
}

// MMD returns the kernel mean-discrepancy statistic between two (C,N)
// matrices, normalized by C²:
//
//	(Σ k(xᵢ,xⱼ) - 2·Σ k(xᵢ,yⱼ) + Σ k(yᵢ,yⱼ)) / C²
//
// For the rbf kernel the bandwidth is 1/MeanPairwiseSq(x, y), derived per
// call. A zero mean square distance degenerates to the uniform kernel,
// which the combination cancels to an exact zero.
func MMD(k KernelKind, x, y *mat.Dense) float64 {
	xr, xc := x.Dims()
	yr, yc := y.Dims()
	if xr != yr || xc != yc {
		panic(fmt.Sprintf("stats: MMD operands %dx%d vs %dx%d", xr, xc, yr, yc))
	}

	var p float64
	if k == KernelRBF {
		if msd := MeanPairwiseSq(x, y); msd > 0 {
			p = 1 / msd
		}
	}

	c := float64(xr)
	return (KernelSum(k, x, x, p) - 2*KernelSum(k, x, y, p) + KernelSum(k, y, y, p)) / (c * c)
}
