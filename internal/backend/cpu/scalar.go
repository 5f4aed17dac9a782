package cpu

import (
	"fmt"

	"github.com/patina-ml/patina/internal/parallel"
	"github.com/patina-ml/patina/internal/tensor"
)

// Scalar operations: element-wise arithmetic with a scalar value.

// MulScalar multiplies each element of the tensor by a scalar value.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.scalarBinary(opMul, x, scalar)
}

// AddScalar adds a scalar value to each element of the tensor.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.scalarBinary(opAdd, x, scalar)
}

func (cpu *CPUBackend) scalarBinary(op binOp, x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%sscalar: failed to create result tensor: %v", op, err))
	}

	s := scalarValue(scalar)
	n := x.NumElements()

	switch x.DType() {
	case tensor.Float32:
		dst, src := result.AsFloat32(), x.AsFloat32()
		sf := float32(s)
		parallel.ForRange(n, func(start, end int) {
			scalarBinaryFloat32(op, dst[start:end], src[start:end], sf)
		}, cpu.par)
	case tensor.Float64:
		dst, src := result.AsFloat64(), x.AsFloat64()
		parallel.ForRange(n, func(start, end int) {
			scalarBinaryFloat64(op, dst[start:end], src[start:end], s)
		}, cpu.par)
	default:
		panic(fmt.Sprintf("%sscalar: unsupported dtype %s", op, x.DType()))
	}

	return result
}

// scalarValue widens a scalar argument of any supported numeric type.
func scalarValue(scalar any) float64 {
	switch s := scalar.(type) {
	case float32:
		return float64(s)
	case float64:
		return s
	case int:
		return float64(s)
	default:
		panic(fmt.Sprintf("unsupported scalar type %T", scalar))
	}
}
