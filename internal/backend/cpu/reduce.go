package cpu

import (
	"fmt"

	"github.com/patina-ml/patina/internal/tensor"
)

// Sum computes the total sum of all elements in the tensor (scalar result).
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(tensor.Shape{}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sum: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		var sum float32
		for _, v := range x.AsFloat32() {
			sum += v
		}
		result.AsFloat32()[0] = sum
	case tensor.Float64:
		var sum float64
		for _, v := range x.AsFloat64() {
			sum += v
		}
		result.AsFloat64()[0] = sum
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}

	return result
}

// SumDim sums tensor elements along the specified dimension.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
//
// Example:
//
//	y := backend.SumDim(x, -1, true)   // [2, 3, 4] -> [2, 3, 1]
//	z := backend.SumDim(x, -1, false)  // [2, 3, 4] -> [2, 3]
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDim("sumdim", dim, len(shape))

	result, err := tensor.NewRaw(reduceShape(shape, dim, keepDim), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sumdim: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		sumDimFloat32(x.AsFloat32(), result.AsFloat32(), shape, dim)
	case tensor.Float64:
		sumDimFloat64(x.AsFloat64(), result.AsFloat64(), shape, dim)
	default:
		panic(fmt.Sprintf("sumdim: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}

	return result
}

// MeanDim computes the mean of tensor elements along the specified dimension.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	result := cpu.SumDim(x, dim, keepDim)

	shape := x.Shape()
	divisor := float64(shape[normalizeDim("meandim", dim, len(shape))])

	switch result.DType() {
	case tensor.Float32:
		data := result.AsFloat32()
		d := float32(divisor)
		for i := range data {
			data[i] /= d
		}
	case tensor.Float64:
		data := result.AsFloat64()
		for i := range data {
			data[i] /= divisor
		}
	default:
		panic(fmt.Sprintf("meandim: unsupported dtype %s (only float32/float64 supported)", result.DType()))
	}

	return result
}

// VarDim computes the variance of tensor elements along the specified
// dimension. With unbiased the divisor is n-1; reducing a single-element
// dimension with unbiased set yields zero rather than NaN, so degenerate
// feature planes produce a zero spread instead of poisoning downstream sums.
func (cpu *CPUBackend) VarDim(x *tensor.RawTensor, dim int, unbiased, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDim("vardim", dim, len(shape))
	n := shape[dim]

	result, err := tensor.NewRaw(reduceShape(shape, dim, keepDim), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("vardim: %v", err))
	}

	if unbiased && n < 2 {
		return result // zero-initialized
	}

	divisor := float64(n)
	if unbiased {
		divisor = float64(n - 1)
	}

	// Mean with the same keepDim has the same flat layout as result.
	mean := cpu.MeanDim(x, dim, keepDim)

	switch x.DType() {
	case tensor.Float32:
		varDimFloat32(x.AsFloat32(), mean.AsFloat32(), result.AsFloat32(), shape, dim, float32(divisor))
	case tensor.Float64:
		varDimFloat64(x.AsFloat64(), mean.AsFloat64(), result.AsFloat64(), shape, dim, divisor)
	default:
		panic(fmt.Sprintf("vardim: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}

	return result
}

// normalizeDim resolves negative dimensions and bounds-checks.
func normalizeDim(op string, dim, ndim int) int {
	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("%s: dimension %d out of range for %dD tensor", op, dim, ndim))
	}
	return dim
}

// reduceShape drops dim from shape, or keeps it with size 1.
func reduceShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			out = append(out, d)
		}
	}
	return out
}

// reduceWalk iterates the input flat index space and hands each element's
// output slot to visit. The layout is outer x n x inner around dim.
func reduceWalk(shape tensor.Shape, dim int, visit func(outIdx, inIdx int)) {
	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	n := shape[dim]

	for o := 0; o < outer; o++ {
		for k := 0; k < n; k++ {
			base := o*n*inner + k*inner
			outBase := o * inner
			for in := 0; in < inner; in++ {
				visit(outBase+in, base+in)
			}
		}
	}
}

func sumDimFloat32(data, result []float32, shape tensor.Shape, dim int) {
	reduceWalk(shape, dim, func(outIdx, inIdx int) {
		result[outIdx] += data[inIdx]
	})
}

func sumDimFloat64(data, result []float64, shape tensor.Shape, dim int) {
	reduceWalk(shape, dim, func(outIdx, inIdx int) {
		result[outIdx] += data[inIdx]
	})
}

func varDimFloat32(data, mean, result []float32, shape tensor.Shape, dim int, divisor float32) {
	reduceWalk(shape, dim, func(outIdx, inIdx int) {
		d := data[inIdx] - mean[outIdx]
		result[outIdx] += d * d
	})
	for i := range result {
		result[i] /= divisor
	}
}

func varDimFloat64(data, mean, result []float64, shape tensor.Shape, dim int, divisor float64) {
	reduceWalk(shape, dim, func(outIdx, inIdx int) {
		d := data[inIdx] - mean[outIdx]
		result[outIdx] += d * d
	})
	for i := range result {
		result[i] /= divisor
	}
}
