// Copyright 2025 Patina ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/patina-ml/patina/internal/backend/cpu"
	"github.com/patina-ml/patina/tensor"
)

// Backend represents the CPU backend implementation.
//
// The CPU backend provides pure Go implementations of all tensor
// operations, with gonum BLAS behind the matrix products.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/patina-ml/patina/backend/cpu"
//	    "github.com/patina-ml/patina/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{3, 64, 64}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}
