package cpu

import (
	"github.com/patina-ml/patina/internal/tensor"
)

// Float32 kernels. The op switch sits outside the loops so each case runs a
// tight slice loop the compiler can bounds-check-eliminate.

func vecBinaryFloat32(op binOp, dst, a, b []float32) {
	switch op {
	case opAdd:
		for i := range a {
			dst[i] = a[i] + b[i]
		}
	case opSub:
		for i := range a {
			dst[i] = a[i] - b[i]
		}
	case opMul:
		for i := range a {
			dst[i] = a[i] * b[i]
		}
	case opDiv:
		for i := range a {
			dst[i] = a[i] / b[i]
		}
	}
}

func broadcastBinaryFloat32(op binOp, dst, a, b []float32, aShape, bShape, outShape tensor.Shape) {
	outStrides := outShape.ComputeStrides()
	aStrides := broadcastStrides(aShape, outShape)
	bStrides := broadcastStrides(bShape, outShape)
	n := outShape.NumElements()

	switch op {
	case opAdd:
		for i := 0; i < n; i++ {
			dst[i] = a[flatIndex(i, outStrides, aStrides)] + b[flatIndex(i, outStrides, bStrides)]
		}
	case opSub:
		for i := 0; i < n; i++ {
			dst[i] = a[flatIndex(i, outStrides, aStrides)] - b[flatIndex(i, outStrides, bStrides)]
		}
	case opMul:
		for i := 0; i < n; i++ {
			dst[i] = a[flatIndex(i, outStrides, aStrides)] * b[flatIndex(i, outStrides, bStrides)]
		}
	case opDiv:
		for i := 0; i < n; i++ {
			dst[i] = a[flatIndex(i, outStrides, aStrides)] / b[flatIndex(i, outStrides, bStrides)]
		}
	}
}

func scalarBinaryFloat32(op binOp, dst, src []float32, s float32) {
	switch op {
	case opAdd:
		for i := range src {
			dst[i] = src[i] + s
		}
	case opSub:
		for i := range src {
			dst[i] = src[i] - s
		}
	case opMul:
		for i := range src {
			dst[i] = src[i] * s
		}
	case opDiv:
		for i := range src {
			dst[i] = src[i] / s
		}
	}
}

func transposeFloat32(dst, src []float32, shape tensor.Shape, axes []int) {
	ndim := len(shape)
	srcStrides := shape.ComputeStrides()

	dstShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		dstShape[i] = shape[ax]
	}
	dstStrides := dstShape.ComputeStrides()

	coords := make([]int, ndim)
	n := shape.NumElements()
	for i := 0; i < n; i++ {
		idx := i
		for dim := 0; dim < ndim; dim++ {
			coords[dim] = idx / srcStrides[dim]
			idx %= srcStrides[dim]
		}

		dstIdx := 0
		for dstDim, srcDim := range axes {
			dstIdx += coords[srcDim] * dstStrides[dstDim]
		}

		dst[dstIdx] = src[i]
	}
}
