// Copyright 2025 Patina ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/patina-ml/patina/internal/nn"
	"github.com/patina-ml/patina/internal/serialization"
	"github.com/patina-ml/patina/tensor"
)

// Layer is the interface every loss layer implements.
//
// Forward passes the input through unchanged (loss layers are transparent
// taps on a feature pipeline) and reports raw, unweighted loss values
// keyed by statistic name. Weighting belongs to the caller; see
// Losses.WeightedSum.
//
// Type parameter B must satisfy the tensor.Backend interface.
type Layer[B tensor.Backend] interface {
	// Name identifies the layer in pipeline loss keys and error messages.
	Name() string

	// Forward evaluates the layer on a feature map.
	//
	// The returned tensor is the input (loss layers never transform it),
	// so layers chain freely inside a Pipeline. The Losses map carries
	// one entry per statistic the layer computes.
	Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], Losses, error)
}

// Note: internal implementations of Layer automatically satisfy this
// interface because they have the same method signatures.

// Losses maps statistic names to raw loss values.
//
// Pipelines prefix keys with "<index>.<layer name>." so the same layer
// kind can appear at several positions without collisions.
type Losses = nn.Losses

// TargetBundle is an ordered, named set of captured target statistics,
// the in-memory form of a .ptna file.
type TargetBundle = serialization.Bundle

// TargetLayer is implemented by layers whose captured targets can be
// snapshotted and restored. All loss layers and Pipeline implement it;
// MaskCapture does not (its state is a runtime capture, not a target).
type TargetLayer = nn.TargetLayer

// SaveTargets snapshots the captured targets of the given layers to a
// .ptna file. Entries are keyed "<index>.<layer name>.…", matching the
// loss keys a Pipeline built from the same layers would report; layers
// without targets are skipped.
//
// Example:
//
//	err := nn.SaveTargets("style.ptna", content, style, moment)
func SaveTargets[B tensor.Backend](path string, layers ...Layer[B]) error {
	bundle, err := nn.BuildTargetBundle(toInternal(layers)...)
	if err != nil {
		return err
	}
	return serialization.WriteFile(path, bundle)
}

// LoadTargets restores captured targets from a .ptna file into
// already-constructed layers. The layers must be arranged as they were
// when the file was saved.
//
// Example:
//
//	err := nn.LoadTargets("style.ptna", content, style, moment)
func LoadTargets[B tensor.Backend](path string, layers ...Layer[B]) error {
	bundle, err := serialization.ReadFile(path)
	if err != nil {
		return err
	}
	return nn.ApplyTargetBundle(bundle, toInternal(layers)...)
}

// BuildTargetBundle snapshots captured targets into an in-memory bundle
// without touching the filesystem.
func BuildTargetBundle[B tensor.Backend](layers ...Layer[B]) (*TargetBundle, error) {
	return nn.BuildTargetBundle(toInternal(layers)...)
}

// ApplyTargetBundle restores captured targets from an in-memory bundle.
func ApplyTargetBundle[B tensor.Backend](bundle *TargetBundle, layers ...Layer[B]) error {
	return nn.ApplyTargetBundle(bundle, toInternal(layers)...)
}

func toInternal[B tensor.Backend](layers []Layer[B]) []nn.Layer[B] {
	out := make([]nn.Layer[B], len(layers))
	for i, l := range layers {
		out[i] = l
	}
	return out
}
