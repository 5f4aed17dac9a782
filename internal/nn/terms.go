package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/patina-ml/patina/internal/signal"
	"github.com/patina-ml/patina/internal/stats"
	"github.com/patina-ml/patina/internal/tensor"
)

// styleReference bundles the construction-time views of the style tensor
// a term builds its target from. vol already reflects level-1 filtering
// and flat level-2; levels 3 and 4 are applied by the terms owning those
// statistics.
type styleReference[B tensor.Backend] struct {
	c, h, w int
	flat    *mat.Dense
	vol     *tensor.Tensor[float32, B]
	level   int
	band    signal.Band
}

// featureInput carries the per-forward views shared by all terms: the
// masked (C, H·W) matrix and the masked (C,H,W) volume it was read from.
type featureInput[B tensor.Backend] struct {
	c, h, w int
	flat    *mat.Dense
	vol     *tensor.Tensor[float32, B]
}

// styleTerm is one enabled style statistic. Its target is built once at
// construction and compared against every forward input; terms never keep
// tensor references, only plain float64 state (the reference volume for
// the per-axis statistics is reduced to float64 slices up front).
type styleTerm[B tensor.Backend] interface {
	kind() LossKind
	compute(in *featureInput[B]) (float64, error)
}

// gramTerm compares channel co-activation gram matrices.
type gramTerm[B tensor.Backend] struct {
	target *mat.Dense // C×C
}

func newGramTerm[B tensor.Backend](ref *styleReference[B]) *gramTerm[B] {
	g := stats.Gram(ref.flat)
	if ref.level == 3 {
		g = signal.FilterMatrix(g, ref.band)
	}
	return &gramTerm[B]{target: g}
}

func (t *gramTerm[B]) kind() LossKind { return Gram }

func (t *gramTerm[B]) compute(in *featureInput[B]) (float64, error) {
	return stats.MSEMat(stats.Gram(in.flat), t.target), nil
}

// bnstTerm compares per-channel mean and standard deviation vectors, the
// batch-norm statistics of the feature map.
type bnstTerm[B tensor.Backend] struct {
	mean, std []float64
}

func newBNSTTerm[B tensor.Backend](ref *styleReference[B]) *bnstTerm[B] {
	mean, std := stats.MeanStdRows(ref.flat)
	if ref.level == 4 {
		mean = signal.FilterVec(mean, ref.band)
		std = signal.FilterVec(std, ref.band)
	}
	return &bnstTerm[B]{mean: mean, std: std}
}

func (t *bnstTerm[B]) kind() LossKind { return BNST }

func (t *bnstTerm[B]) compute(in *featureInput[B]) (float64, error) {
	mean, std := stats.MeanStdRows(in.flat)
	return stats.MSE(mean, t.mean) + stats.MSE(std, t.std), nil
}

// morestTerm compares standard deviations taken along each axis of the
// (C,H,W) volume. It is the one term whose target retains the spatial
// extent of the style features, so forward inputs must match it.
type morestTerm[B tensor.Backend] struct {
	h, w int
	stds [3][]float64
}

func newMorestTerm[B tensor.Backend](ref *styleReference[B]) *morestTerm[B] {
	return &morestTerm[B]{h: ref.h, w: ref.w, stds: volumeStds(ref.vol)}
}

func (t *morestTerm[B]) kind() LossKind { return Morest }

func (t *morestTerm[B]) compute(in *featureInput[B]) (float64, error) {
	if in.h != t.h || in.w != t.w {
		return 0, &ShapeError{
			Op:   "morest term",
			Want: fmt.Sprintf("spatial extent %dx%d", t.h, t.w),
			Got:  fmt.Sprintf("%dx%d", in.h, in.w),
		}
	}
	got := volumeStds(in.vol)
	total := 0.0
	for i := range got {
		total += stats.MSE(got[i], t.stds[i])
	}
	return total, nil
}

// histoTerm compares per-channel value distributions through quantile
// matching on normalized values.
type histoTerm[B tensor.Backend] struct {
	descs []stats.ChannelHistogram
}

func newHistoTerm[B tensor.Backend](ref *styleReference[B]) *histoTerm[B] {
	return &histoTerm[B]{descs: stats.BuildHistograms(stats.NormalizeRows(ref.flat))}
}

func (t *histoTerm[B]) kind() LossKind { return Histo }

func (t *histoTerm[B]) compute(in *featureInput[B]) (float64, error) {
	return stats.HistogramLoss(stats.NormalizeRows(in.flat), t.descs), nil
}

// kernelKinds maps the kernel loss kinds onto the stats package kernels.
var kernelKinds = map[LossKind]stats.KernelKind{
	Linear: stats.KernelLinear,
	Poly:   stats.KernelPoly,
	RBF:    stats.KernelRBF,
}

// kernelTerm compares channel rows through a kernel MMD statistic. The
// style matrix is retained whole, so forward inputs must carry the same
// spatial sample count.
type kernelTerm[B tensor.Backend] struct {
	k     LossKind
	style *mat.Dense // (C, N)
}

func newKernelTerm[B tensor.Backend](k LossKind, ref *styleReference[B]) *kernelTerm[B] {
	return &kernelTerm[B]{k: k, style: ref.flat}
}

func (t *kernelTerm[B]) kind() LossKind { return t.k }

func (t *kernelTerm[B]) compute(in *featureInput[B]) (float64, error) {
	_, ns := t.style.Dims()
	_, ni := in.flat.Dims()
	if ni != ns {
		return 0, &ShapeError{
			Op:   fmt.Sprintf("%s term", string(t.k)),
			Want: fmt.Sprintf("%d spatial samples", ns),
			Got:  fmt.Sprintf("%d spatial samples", ni),
		}
	}
	return stats.MMD(kernelKinds[t.k], t.style, in.flat), nil
}
