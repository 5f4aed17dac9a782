// Copyright 2025 Patina ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/patina-ml/patina/internal/nn"
	"github.com/patina-ml/patina/internal/signal"
	"github.com/patina-ml/patina/internal/tensor"
)

// LossKind names one style statistic.
type LossKind = nn.LossKind

// Style statistic kinds.
const (
	Gram   LossKind = nn.Gram   // C×C channel co-activation matrices
	BNST   LossKind = nn.BNST   // per-channel mean and std vectors
	Morest LossKind = nn.Morest // std along each volume axis
	Histo  LossKind = nn.Histo  // per-channel quantile matching
	Linear LossKind = nn.Linear // linear kernel MMD
	Poly   LossKind = nn.Poly   // polynomial kernel MMD
	RBF    LossKind = nn.RBF    // RBF kernel MMD
)

// Band is a frequency interval used by the FFT-filtered target variants.
// The zero value is the open band, which keeps every frequency.
type Band = signal.Band

// NewBand creates a band keeping frequencies in [lower, upper].
// Frequencies are normalized: 0.5 is Nyquist.
func NewBand(lower, upper float64) Band {
	return signal.NewBand(lower, upper)
}

// LowPass creates a band keeping frequencies in [0, upper].
func LowPass(upper float64) Band {
	return signal.LowPass(upper)
}

// HighPass creates a band keeping frequencies at or above lower.
func HighPass(lower float64) Band {
	return signal.HighPass(lower)
}

// Configuration types

// StyleConfig selects the statistics a StyleLoss computes, and optionally
// a band filter applied to the captured targets (FFTLevel 1-4).
type StyleConfig = nn.StyleConfig

// MomentConfig shapes the band-composed BN-statistic targets of a
// MomentLoss.
type MomentConfig = nn.MomentConfig

// AmplifyConfig shapes a BandAmplifyLoss.
type AmplifyConfig = nn.AmplifyConfig

// Affine rescales a target statistic vector elementwise: coef·x + bias.
type Affine = nn.Affine

// Layers

// ContentLoss penalizes the distance between a forward feature map and a
// content feature map captured at construction time.
type ContentLoss[B tensor.Backend] = nn.ContentLoss[B]

// NewContentLoss captures a detached copy of the content feature map.
//
// Example:
//
//	layer, err := nn.NewContentLoss(contentFeatures)
func NewContentLoss[B tensor.Backend](target *tensor.Tensor[float32, B]) (*ContentLoss[B], error) {
	return nn.NewContentLoss(target)
}

// MaskCapture records a detached copy of whatever tensor passes through
// it, for style layers built with masking.
type MaskCapture[B tensor.Backend] = nn.MaskCapture[B]

// NewMaskCapture creates a capture layer with an empty register.
func NewMaskCapture[B tensor.Backend]() *MaskCapture[B] {
	return nn.NewMaskCapture[B]()
}

// StyleLoss computes configured style statistics of a forward feature map
// against targets captured from a style feature map at construction.
type StyleLoss[B tensor.Backend] = nn.StyleLoss[B]

// NewStyleLoss captures style targets for every kind enabled in cfg.
// mask may be nil unless cfg.Masking is set.
//
// Example:
//
//	layer, err := nn.NewStyleLoss(nn.StyleConfig{
//	    Kinds: map[nn.LossKind]float64{nn.Gram: 1, nn.RBF: 1},
//	}, styleFeatures, nil)
func NewStyleLoss[B tensor.Backend](cfg StyleConfig, style *tensor.Tensor[float32, B], mask *MaskCapture[B]) (*StyleLoss[B], error) {
	return nn.NewStyleLoss(cfg, style, mask)
}

// MomentLoss compares per-channel mean and std vectors against targets
// whose frequency content and scale were shaped at construction time.
type MomentLoss[B tensor.Backend] = nn.MomentLoss[B]

// NewMomentLoss captures shaped BN-statistic targets from a style feature
// map.
func NewMomentLoss[B tensor.Backend](cfg MomentConfig, style *tensor.Tensor[float32, B]) (*MomentLoss[B], error) {
	return nn.NewMomentLoss(cfg, style)
}

// BandAmplifyLoss is the BN-statistic loss with an extra band-limited std
// term.
type BandAmplifyLoss[B tensor.Backend] = nn.BandAmplifyLoss[B]

// NewBandAmplifyLoss captures BN statistics and their band-limited std
// from a style feature map.
func NewBandAmplifyLoss[B tensor.Backend](cfg AmplifyConfig, style *tensor.Tensor[float32, B]) (*BandAmplifyLoss[B], error) {
	return nn.NewBandAmplifyLoss(cfg, style)
}

// Pipeline chains layers, threading the feature tensor through each and
// collecting their losses under "<index>.<name>."-prefixed keys.
type Pipeline[B tensor.Backend] = nn.Pipeline[B]

// NewPipeline creates a pipeline over the given layers.
//
// Example:
//
//	pipe := nn.NewPipeline[*cpu.Backend](maskLayer, contentLayer, styleLayer)
func NewPipeline[B tensor.Backend](layers ...Layer[B]) *Pipeline[B] {
	return nn.NewPipeline(toInternal(layers)...)
}

// Errors

// ErrMaskEmpty is returned by masked style layers when the mask capture
// layer has not seen a forward pass yet.
var ErrMaskEmpty = nn.ErrMaskEmpty

// ShapeError reports a feature map whose shape disagrees with a layer's
// captured targets.
type ShapeError = nn.ShapeError

// ConfigError reports an invalid layer configuration.
type ConfigError = nn.ConfigError
