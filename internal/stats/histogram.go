package stats

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Normalize maps v into [0,1] by its min/max with an eps-stabilized
// denominator. A constant slice maps to all zeros.
func Normalize(v []float64) []float64 {
	lo, hi := floats.Min(v), floats.Max(v)
	den := eps + hi - lo
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = (x - lo) / den
	}
	return out
}

// NormalizeRows applies Normalize to each row of a (C,N) matrix
// independently, so every channel lands in [0,1] on its own scale.
func NormalizeRows(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		out.SetRow(i, Normalize(mat.Row(row, i, m)))
	}
	return out
}

// SortedUnique returns the ascending unique values of v and their counts.
func SortedUnique(v []float64) (values []float64, counts []int) {
	sorted := make([]float64, len(v))
	copy(sorted, v)
	sort.Float64s(sorted)
	for i, x := range sorted {
		if i == 0 || x != sorted[i-1] {
			values = append(values, x)
			counts = append(counts, 1)
		} else {
			counts[len(counts)-1]++
		}
	}
	return values, counts
}

// Quantiles converts unique-value counts into cumulative fractions. The
// last entry is exactly 1.
func Quantiles(counts []int) []float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	out := make([]float64, len(counts))
	run := 0
	for i, c := range counts {
		run += c
		out[i] = float64(run) / float64(total)
	}
	return out
}

// ChannelHistogram is the histogram-matching target for one channel: the
// ascending unique values of the normalized channel and their cumulative
// quantiles.
type ChannelHistogram struct {
	Values    []float64
	Quantiles []float64
}

// BuildHistograms builds one ChannelHistogram per row of an
// already-normalized (C,N) matrix.
func BuildHistograms(m *mat.Dense) []ChannelHistogram {
	r, c := m.Dims()
	out := make([]ChannelHistogram, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		values, counts := SortedUnique(mat.Row(row, i, m))
		out[i] = ChannelHistogram{Values: values, Quantiles: Quantiles(counts)}
	}
	return out
}

// MatchChannel remaps normalized channel values onto a target distribution:
// each value moves to the target value whose cumulative quantile matches
// the value's own quantile (the classical inverse-CDF histogram-matching
// transform).
func MatchChannel(normalized []float64, h ChannelHistogram) []float64 {
	n := len(normalized)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return normalized[order[a]] < normalized[order[b]]
	})

	// Unique values in sorted order, their counts, and each sample's
	// unique rank for the scatter back.
	var values []float64
	var counts []int
	rank := make([]int, n)
	for k, pos := range order {
		v := normalized[pos]
		if k == 0 || v != normalized[order[k-1]] {
			values = append(values, v)
			counts = append(counts, 1)
		} else {
			counts[len(counts)-1]++
		}
		rank[pos] = len(values) - 1
	}

	matched := Interp(Quantiles(counts), h.Quantiles, h.Values)

	out := make([]float64, n)
	for i, r := range rank {
		out[i] = matched[r]
	}
	return out
}

// HistogramLoss is the mean squared distance between a normalized (C,N)
// matrix and its histogram-matched remap onto the per-channel descriptors.
func HistogramLoss(normalized *mat.Dense, desc []ChannelHistogram) float64 {
	r, c := normalized.Dims()
	if len(desc) != r {
		panic(fmt.Sprintf("stats: %d histogram descriptors for %d channels", len(desc), r))
	}
	row := make([]float64, c)
	var sum float64
	for i := 0; i < r; i++ {
		mat.Row(row, i, normalized)
		matched := MatchChannel(row, desc[i])
		for j := range row {
			d := row[j] - matched[j]
			sum += d * d
		}
	}
	return sum / float64(r*c)
}
