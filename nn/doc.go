// Copyright 2025 Patina ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides differentiable-style loss layers for neural style
// transfer and texture synthesis.
//
// # Overview
//
// This package contains:
//   - Loss layers: ContentLoss, StyleLoss, MomentLoss, BandAmplifyLoss
//   - Utilities: MaskCapture, Pipeline, Losses
//   - Target persistence: SaveTargets, LoadTargets (.ptna bundles)
//
// Layers capture reference statistics ("targets") from style or content
// feature maps at construction, then report the distance between those
// targets and whatever feature map passes through them. Layers never
// weight their own results: every Forward returns raw loss values keyed
// by statistic name, and callers combine them with Losses.WeightedSum.
//
// # Basic Usage
//
//	import (
//	    "github.com/patina-ml/patina/nn"
//	    "github.com/patina-ml/patina/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    // Capture targets from reference feature maps
//	    content, _ := nn.NewContentLoss(contentFeatures)
//	    style, _ := nn.NewStyleLoss(nn.StyleConfig{
//	        Kinds: map[nn.LossKind]float64{nn.Gram: 1e4, nn.BNST: 10},
//	    }, styleFeatures, nil)
//
//	    pipe := nn.NewPipeline(content, style)
//
//	    // Evaluate a synthesized feature map
//	    _, losses, _ := pipe.Forward(input)
//	    total := losses.WeightedSum(map[string]float64{
//	        "0.content.content": 1,
//	        "1.style.gram":      1e4,
//	        "1.style.bnst":      10,
//	    })
//	    _ = total
//	}
//
// # Style statistics
//
// StyleLoss evaluates any subset of seven statistics per forward pass:
// gram matrices, batch-norm moments (bnst), per-axis standard deviations
// (morest), histogram quantile matching (histo), and linear, polynomial
// and RBF kernel MMD. Frequency-domain variants band-filter the captured
// targets at construction (StyleConfig.FFTLevel); forward inputs are
// never filtered.
//
// # Masked regions
//
// A MaskCapture layer records a spatial mask pushed through the probe
// network; StyleLoss layers built with Masking weight their inputs by
// the capture before taking statistics, so separate style targets can
// drive separate image regions.
//
// # Target persistence
//
// SaveTargets snapshots the captured targets of a set of layers to a
// .ptna file; LoadTargets restores them into freshly constructed layers,
// so an edit session can resume without re-running the probe network:
//
//	err := nn.SaveTargets("style.ptna", content, style)
//	err = nn.LoadTargets("style.ptna", content2, style2)
package nn
