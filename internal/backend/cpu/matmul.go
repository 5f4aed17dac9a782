package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/patina-ml/patina/internal/tensor"
)

// MatMul performs matrix multiplication.
// For 2D tensors: (M, K) @ (K, N) -> (M, N).
// Delegates to gonum BLAS (Sgemm/Dgemm) over the tensors' flat storage;
// row-major layout maps directly onto General with Stride = Cols.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]

	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	result, err := tensor.NewRaw(tensor.Shape{m, n}, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("matmul: failed to create result tensor: %v", err))
	}

	switch a.DType() {
	case tensor.Float32:
		am := blas32.General{Rows: m, Cols: k, Stride: k, Data: a.AsFloat32()}
		bm := blas32.General{Rows: k, Cols: n, Stride: n, Data: b.AsFloat32()}
		cm := blas32.General{Rows: m, Cols: n, Stride: n, Data: result.AsFloat32()}
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, am, bm, 0, cm)
	case tensor.Float64:
		am := blas64.General{Rows: m, Cols: k, Stride: k, Data: a.AsFloat64()}
		bm := blas64.General{Rows: k, Cols: n, Stride: n, Data: b.AsFloat64()}
		cm := blas64.General{Rows: m, Cols: n, Stride: n, Data: result.AsFloat64()}
		blas64.Gemm(blas.NoTrans, blas.NoTrans, 1, am, bm, 0, cm)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}

	return result
}
