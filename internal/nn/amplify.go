package nn

import (
	"fmt"
	"log/slog"

	"github.com/patina-ml/patina/internal/signal"
	"github.com/patina-ml/patina/internal/stats"
	"github.com/patina-ml/patina/internal/tensor"
)

// AmplifyConfig shapes a BandAmplifyLoss.
//
// Band selects the channel-frequency range whose standard-deviation
// content is emphasized with AmplifyWeight on top of the plain BN loss.
// An open band (both bounds nil) is the explicit no-op configuration: it
// derives an all-false keep mask and forces the amplify weight to zero,
// reducing the layer to the plain BN statistics.
//
// RawInputStd compares the raw input std vector against the filtered
// target; the zero value filters the input std through the same keep mask
// as the target first.
type AmplifyConfig struct {
	Band          signal.Band
	AmplifyWeight float64
	RawInputStd   bool
}

// BandAmplifyLoss is the BN-statistic loss with an extra band-limited std
// term. It is the one layer that runs a filter on forward inputs: the
// input std vector passes through the precomputed keep mask before the
// amplified comparison (unless RawInputStd).
type BandAmplifyLoss[B tensor.Backend] struct {
	c        int
	keep     []bool
	weight   float64
	rawInput bool
	mean     []float64
	std      []float64
	stdBand  []float64
}

// NewBandAmplifyLoss captures BN statistics and their band-limited std
// from a style feature map.
func NewBandAmplifyLoss[B tensor.Backend](cfg AmplifyConfig, style *tensor.Tensor[float32, B]) (*BandAmplifyLoss[B], error) {
	if style == nil {
		return nil, &ConfigError{Field: "style", Reason: "style tensor must not be nil"}
	}
	if err := cfg.Band.Validate(); err != nil {
		return nil, &ConfigError{Field: "band", Reason: err.Error()}
	}
	c, h, w, err := featureDims("amplify target", style.Shape())
	if err != nil {
		return nil, err
	}

	mean, std := stats.MeanStdRows(flatten(style, c, h*w))

	keep := make([]bool, c/2+1)
	weight := 0.0
	if !cfg.Band.Open() {
		keep = signal.RealKeepMask(c, cfg.Band)
		weight = cfg.AmplifyWeight
	}

	slog.Debug("captured amplify targets", "channels", c, "amplify_weight", weight, "raw_input_std", cfg.RawInputStd)
	return &BandAmplifyLoss[B]{
		c:        c,
		keep:     keep,
		weight:   weight,
		rawInput: cfg.RawInputStd,
		mean:     mean,
		std:      std,
		stdBand:  signal.FilterVecMask(std, keep),
	}, nil
}

func (l *BandAmplifyLoss[B]) Name() string { return "amplify" }

// Forward reports "mean" as the plain mean MSE and "std" as the raw std
// MSE plus the weighted band-limited std MSE.
func (l *BandAmplifyLoss[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], Losses, error) {
	c, h, w, err := featureDims("amplify forward", input.Shape())
	if err != nil {
		return nil, nil, err
	}
	if c != l.c {
		return nil, nil, &ShapeError{Op: "amplify forward", Want: fmt.Sprintf("%d channels", l.c), Got: fmt.Sprintf("%d channels", c)}
	}

	mean, std := stats.MeanStdRows(flatten(input, c, h*w))

	bandIn := std
	if !l.rawInput {
		bandIn = signal.FilterVecMask(std, l.keep)
	}
	losses := Losses{
		"mean": stats.MSE(mean, l.mean),
		"std":  stats.MSE(std, l.std) + l.weight*stats.MSE(bandIn, l.stdBand),
	}
	return input, losses, nil
}
