// Copyright 2025 Patina ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/patina-ml/patina/internal/tensor"

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Operations panic on invalid inputs (shape or dtype mismatches): those
// are programmer errors, caught by the layer APIs before tensors reach a
// backend.
//
// Implementations:
//   - backend/cpu: pure Go loops with gonum BLAS matrix products
//
// Example:
//
//	import (
//	    "github.com/patina-ml/patina/tensor"
//	    "github.com/patina-ml/patina/backend/cpu"
//	)
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{3, 64, 64}, backend)
//	y := tensor.Ones[float32](tensor.Shape{3, 64, 64}, backend)
//	z := x.Add(y)  // Uses backend.Add under the hood
type Backend interface {
	// Element-wise binary operations (with broadcasting).
	Add(a, b *RawTensor) *RawTensor // Element-wise addition.
	Sub(a, b *RawTensor) *RawTensor // Element-wise subtraction.
	Mul(a, b *RawTensor) *RawTensor // Element-wise multiplication.
	Div(a, b *RawTensor) *RawTensor // Element-wise division.

	// Matrix operations.
	MatMul(a, b *RawTensor) *RawTensor // Matrix multiplication.

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor // Reshape tensor.
	Transpose(t *RawTensor, axes ...int) *RawTensor  // Transpose dimensions.

	// Scalar operations (element-wise with scalar).
	MulScalar(x *RawTensor, scalar any) *RawTensor // Multiply by scalar.
	AddScalar(x *RawTensor, scalar any) *RawTensor // Add scalar.

	// Math operations (element-wise).
	Sqrt(x *RawTensor) *RawTensor // Square root.

	// Reduction operations.
	Sum(x *RawTensor) *RawTensor                                     // Total sum (scalar result).
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor           // Sum along dimension.
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor          // Mean along dimension.
	VarDim(x *RawTensor, dim int, unbiased, keepDim bool) *RawTensor // Variance along dimension.

	// Metadata.
	Name() string   // Backend name (e.g., "CPU").
	Device() Device // Device type.
}

// Compile-time check that the internal Backend matches the public one.
var _ Backend = tensor.Backend(nil)
