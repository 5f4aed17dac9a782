// Copyright 2025 Patina ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - gonum BLAS matrix products
//   - Float32 and Float64 support
//   - NumPy-compatible broadcasting
//   - Chunked parallel loops for large feature maps
//
// # Basic Usage
//
//	import (
//	    "github.com/patina-ml/patina/backend/cpu"
//	    "github.com/patina-ml/patina/tensor"
//	    "github.com/patina-ml/patina/nn"
//	)
//
//	func main() {
//	    // Create CPU backend
//	    backend := cpu.New()
//
//	    // Use with tensors
//	    x := tensor.Zeros[float32](tensor.Shape{3, 64, 64}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{3, 64, 64}, backend)
//	    z := x.Add(y)
//
//	    // Use with loss layers
//	    layer, err := nn.NewContentLoss(z)
//	    _ = layer
//	    _ = err
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation is
// isolated and does not share mutable state.
package cpu
