package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Operations panic on invalid inputs (shape or dtype mismatches): those are
// programmer errors, caught by the layer APIs before tensors reach a backend.
//
// Implementations:
//   - cpu.CPUBackend: pure Go loops with gonum BLAS matrix products
//   - MockBackend: naive float64 reference used by tests
type Backend interface {
	// Element-wise binary operations (with broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Scalar operations (element-wise with scalar)
	MulScalar(x *RawTensor, scalar any) *RawTensor
	AddScalar(x *RawTensor, scalar any) *RawTensor

	// Math operations (element-wise)
	Sqrt(x *RawTensor) *RawTensor

	// Reduction operations
	Sum(x *RawTensor) *RawTensor                                     // total sum (scalar result)
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor           // sum along dimension
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor          // mean along dimension
	VarDim(x *RawTensor, dim int, unbiased, keepDim bool) *RawTensor // variance along dimension

	// Metadata
	Name() string
	Device() Device
}
