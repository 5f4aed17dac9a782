package nn

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/floats"

	"github.com/patina-ml/patina/internal/signal"
	"github.com/patina-ml/patina/internal/stats"
	"github.com/patina-ml/patina/internal/tensor"
)

// Affine rescales a target statistic vector elementwise: coef·x + bias.
type Affine struct {
	Coef float64
	Bias float64
}

// MomentConfig shapes the band-composed BN-statistic targets of a
// MomentLoss.
//
// MeanBands and StdBands select the frequency content of their target
// vector independently: the filtered target is the sum of the raw vector
// filtered through every listed band, so overlapping bands compose
// additively. An empty list keeps the raw vector. The affines apply after
// filtering; nil means identity. Channels restricts the compared entries
// to a subset of channel indices (empty = all channels).
type MomentConfig struct {
	MeanBands  []signal.Band
	StdBands   []signal.Band
	MeanAffine *Affine
	StdAffine  *Affine
	Channels   []int
}

// MomentLoss compares per-channel mean and std vectors against targets
// whose frequency content and scale were shaped at construction time.
// The two statistics are reported separately, under "mean" and "std", so
// callers can weight them independently.
type MomentLoss[B tensor.Backend] struct {
	c        int
	channels []int
	mean     []float64
	std      []float64
}

// NewMomentLoss captures shaped BN-statistic targets from a style feature
// map.
func NewMomentLoss[B tensor.Backend](cfg MomentConfig, style *tensor.Tensor[float32, B]) (*MomentLoss[B], error) {
	if style == nil {
		return nil, &ConfigError{Field: "style", Reason: "style tensor must not be nil"}
	}
	for _, b := range cfg.MeanBands {
		if err := b.Validate(); err != nil {
			return nil, &ConfigError{Field: "mean bands", Reason: err.Error()}
		}
	}
	for _, b := range cfg.StdBands {
		if err := b.Validate(); err != nil {
			return nil, &ConfigError{Field: "std bands", Reason: err.Error()}
		}
	}
	c, h, w, err := featureDims("moment target", style.Shape())
	if err != nil {
		return nil, err
	}
	if err := validChannels(cfg.Channels, c); err != nil {
		return nil, err
	}

	mean, std := stats.MeanStdRows(flatten(style, c, h*w))
	mean = sumFiltered(mean, cfg.MeanBands)
	std = sumFiltered(std, cfg.StdBands)
	applyAffine(mean, cfg.MeanAffine)
	applyAffine(std, cfg.StdAffine)

	slog.Debug("captured moment targets", "channels", c, "mean_bands", len(cfg.MeanBands), "std_bands", len(cfg.StdBands), "subset", len(cfg.Channels))
	return &MomentLoss[B]{
		c:        c,
		channels: append([]int(nil), cfg.Channels...),
		mean:     mean,
		std:      std,
	}, nil
}

// sumFiltered composes the band-filtered copies of v; an empty band list
// keeps the raw vector.
func sumFiltered(v []float64, bands []signal.Band) []float64 {
	if len(bands) == 0 {
		return append([]float64(nil), v...)
	}
	out := make([]float64, len(v))
	for _, b := range bands {
		floats.Add(out, signal.FilterVec(v, b))
	}
	return out
}

func applyAffine(v []float64, a *Affine) {
	if a == nil {
		return
	}
	floats.Scale(a.Coef, v)
	floats.AddConst(a.Bias, v)
}

func validChannels(channels []int, c int) error {
	seen := make(map[int]bool, len(channels))
	for _, ch := range channels {
		if ch < 0 || ch >= c {
			return &ConfigError{Field: "channels", Reason: fmt.Sprintf("index %d outside 0..%d", ch, c-1)}
		}
		if seen[ch] {
			return &ConfigError{Field: "channels", Reason: fmt.Sprintf("index %d repeated", ch)}
		}
		seen[ch] = true
	}
	return nil
}

func (l *MomentLoss[B]) Name() string { return "moment" }

// Forward compares the input's BN statistics against the shaped targets,
// restricted to the configured channel subset.
func (l *MomentLoss[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], Losses, error) {
	c, h, w, err := featureDims("moment forward", input.Shape())
	if err != nil {
		return nil, nil, err
	}
	if c != l.c {
		return nil, nil, &ShapeError{Op: "moment forward", Want: fmt.Sprintf("%d channels", l.c), Got: fmt.Sprintf("%d channels", c)}
	}

	mean, std := stats.MeanStdRows(flatten(input, c, h*w))
	losses := Losses{
		"mean": stats.MSE(l.subset(mean), l.subset(l.mean)),
		"std":  stats.MSE(l.subset(std), l.subset(l.std)),
	}
	return input, losses, nil
}

// subset picks the configured channel entries; with no subset the full
// vector is compared.
func (l *MomentLoss[B]) subset(v []float64) []float64 {
	if len(l.channels) == 0 {
		return v
	}
	out := make([]float64, len(l.channels))
	for i, ch := range l.channels {
		out[i] = v[ch]
	}
	return out
}
