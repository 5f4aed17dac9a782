package nn

import (
	"fmt"
	"log/slog"

	"github.com/patina-ml/patina/internal/signal"
	"github.com/patina-ml/patina/internal/tensor"
)

// LossKind names one style statistic.
type LossKind string

const (
	// Gram compares C×C channel co-activation matrices.
	Gram LossKind = "gram"
	// BNST compares per-channel mean and standard deviation vectors.
	BNST LossKind = "bnst"
	// Morest compares standard deviations along each volume axis.
	Morest LossKind = "morest"
	// Histo compares per-channel value distributions by quantile matching.
	Histo LossKind = "histo"
	// Linear, Poly and RBF compare channel rows by kernel MMD.
	Linear LossKind = "linear"
	Poly   LossKind = "poly"
	RBF    LossKind = "rbf"
)

// kindOrder fixes the term construction and evaluation order.
var kindOrder = []LossKind{Gram, BNST, Morest, Histo, Linear, Poly, RBF}

var validKinds = map[LossKind]bool{
	Gram: true, BNST: true, Morest: true, Histo: true,
	Linear: true, Poly: true, RBF: true,
}

// StyleConfig selects the statistics a StyleLoss computes.
//
// Kinds mirrors the name→weight dictionaries style-transfer scripts pass
// around; the layer reads only the key set and reports raw values, so the
// same map can be handed to Losses.WeightedSum afterwards.
//
// FFTLevel selects which target representation is band-filtered at
// construction (forward inputs are never filtered):
//
//	0  none
//	1  the (C,H,W) volume, per channel plane in 2-D, before flattening
//	2  the flattened (C, H·W) matrix as a single 2-D plane
//	3  the C×C gram target in 2-D
//	4  the length-C mean/std target vectors in 1-D
type StyleConfig struct {
	Kinds    map[LossKind]float64
	Masking  bool
	FFTLevel int
	Band     signal.Band
}

// StyleLoss computes the configured style statistics of a forward feature
// map against targets captured from a style feature map at construction.
//
// The style tensor is reduced to plain float64 descriptors (gram matrix,
// moment vectors, histogram descriptors, the flattened style matrix) when
// the layer is built; no live tensor reference survives construction.
type StyleLoss[B tensor.Backend] struct {
	c       int
	masking bool
	mask    *MaskCapture[B]
	terms   []styleTerm[B]
}

// NewStyleLoss captures style targets for every kind enabled in cfg.
// With cfg.Masking the layer multiplies forward inputs by the mask
// layer's current capture; the style targets themselves are never masked.
func NewStyleLoss[B tensor.Backend](cfg StyleConfig, style *tensor.Tensor[float32, B], mask *MaskCapture[B]) (*StyleLoss[B], error) {
	if style == nil {
		return nil, &ConfigError{Field: "style", Reason: "style tensor must not be nil"}
	}
	if len(cfg.Kinds) == 0 {
		return nil, &ConfigError{Field: "kinds", Reason: "at least one loss kind must be enabled"}
	}
	for k := range cfg.Kinds {
		if !validKinds[k] {
			return nil, &ConfigError{Field: "kinds", Reason: fmt.Sprintf("unknown loss kind %q", string(k))}
		}
	}
	if cfg.Masking && mask == nil {
		return nil, &ConfigError{Field: "masking", Reason: "masking requires a mask capture layer"}
	}
	if cfg.FFTLevel < 0 || cfg.FFTLevel > 4 {
		return nil, &ConfigError{Field: "fft level", Reason: fmt.Sprintf("level %d outside 0..4", cfg.FFTLevel)}
	}
	if err := cfg.Band.Validate(); err != nil {
		return nil, &ConfigError{Field: "band", Reason: err.Error()}
	}

	c, h, w, err := featureDims("style target", style.Shape())
	if err != nil {
		return nil, err
	}

	vol := style.Detach()
	if len(vol.Shape()) == 4 {
		vol = vol.Reshape(c, h, w)
	}
	if cfg.FFTLevel == 1 {
		vol, err = filterVolume(vol, c, h, w, cfg.Band)
		if err != nil {
			return nil, err
		}
	}
	flat := flatten(vol, c, h*w)
	if cfg.FFTLevel == 2 {
		flat = signal.FilterMatrix(flat, cfg.Band)
	}

	ref := &styleReference[B]{c: c, h: h, w: w, flat: flat, vol: vol, level: cfg.FFTLevel, band: cfg.Band}

	l := &StyleLoss[B]{c: c, masking: cfg.Masking, terms: make([]styleTerm[B], 0, len(cfg.Kinds))}
	if cfg.Masking {
		l.mask = mask
	}
	kinds := make([]string, 0, len(cfg.Kinds))
	for _, k := range kindOrder {
		if _, ok := cfg.Kinds[k]; !ok {
			continue
		}
		l.terms = append(l.terms, newTerm(k, ref))
		kinds = append(kinds, string(k))
	}
	slog.Debug("captured style targets", "channels", c, "kinds", kinds, "fft_level", cfg.FFTLevel, "masking", cfg.Masking)
	return l, nil
}

func newTerm[B tensor.Backend](k LossKind, ref *styleReference[B]) styleTerm[B] {
	switch k {
	case Gram:
		return newGramTerm(ref)
	case BNST:
		return newBNSTTerm(ref)
	case Morest:
		return newMorestTerm(ref)
	case Histo:
		return newHistoTerm(ref)
	default:
		return newKernelTerm(k, ref)
	}
}

func (l *StyleLoss[B]) Name() string { return "style" }

// Forward evaluates every enabled term against input, keyed by kind name.
// The input comes back unchanged even when masking is on; the mask only
// weights the values the statistics see.
func (l *StyleLoss[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], Losses, error) {
	c, h, w, err := featureDims("style forward", input.Shape())
	if err != nil {
		return nil, nil, err
	}
	if c != l.c {
		return nil, nil, &ShapeError{Op: "style forward", Want: fmt.Sprintf("%d channels", l.c), Got: fmt.Sprintf("%d channels", c)}
	}

	work := input
	if l.masking {
		m, ok := l.mask.Mask()
		if !ok {
			return nil, nil, ErrMaskEmpty
		}
		broadcast, _, err := tensor.BroadcastShapes(input.Shape(), m.Shape())
		if err != nil || !broadcast.Equal(input.Shape()) {
			return nil, nil, &ShapeError{
				Op:   "style mask",
				Want: fmt.Sprintf("mask broadcastable to %s", input.Shape()),
				Got:  m.Shape().String(),
			}
		}
		work = input.Mul(m)
	}
	if len(work.Shape()) == 4 {
		work = work.Reshape(c, h, w)
	}

	in := &featureInput[B]{c: c, h: h, w: w, flat: flatten(work, c, h*w), vol: work}

	losses := make(Losses, len(l.terms))
	for _, term := range l.terms {
		v, err := term.compute(in)
		if err != nil {
			return nil, nil, err
		}
		losses[string(term.kind())] = v
	}
	return input, losses, nil
}
