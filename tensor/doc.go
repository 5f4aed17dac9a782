// Copyright 2025 Patina ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensor operations for the Patina
// loss library.
//
// # Overview
//
// Tensors carry the feature maps Patina's loss layers consume. This
// package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcasting
//   - A backend abstraction so layers stay device-agnostic
//
// # Basic Usage
//
//	import (
//	    "github.com/patina-ml/patina/tensor"
//	    "github.com/patina-ml/patina/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    // Create tensors
//	    x := tensor.Zeros[float32](tensor.Shape{3, 64, 64}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{3, 64, 64}, backend)
//
//	    // Tensor operations
//	    z := x.Add(y)
//	    stds := z.StdDim(0, true, false)
//	}
//
// # Supported Data Types
//
// The DType constraint admits float32 and float64. Loss layers run their
// tensor arithmetic in float32 and reduce statistics in float64.
//
// # Broadcasting
//
// Element-wise operations follow NumPy broadcasting rules:
//
//	a := tensor.Zeros[float32](tensor.Shape{3, 1}, backend)  // (3, 1)
//	b := tensor.Ones[float32](tensor.Shape{3, 4}, backend)   // (3, 4)
//	c := a.Add(b)                                            // (3, 4)
//
// # Memory Management
//
// Data() returns a live view of a tensor's buffer; Detach() and Clone()
// produce deep copies. Loss layers detach every target they capture, so
// mutating a source tensor after construction never drifts a target.
package tensor
