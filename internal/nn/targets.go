package nn

import (
	"fmt"
	"log/slog"

	"github.com/patina-ml/patina/internal/serialization"
	"github.com/patina-ml/patina/internal/signal"
	"github.com/patina-ml/patina/internal/stats"
	"github.com/patina-ml/patina/internal/tensor"
)

// TargetLayer is a loss layer whose captured targets can be snapshotted
// into and restored from a serialization bundle. Entry names are built
// from the prefix handed in by the caller, so the same layer can appear
// at several pipeline positions without key collisions.
type TargetLayer interface {
	SaveTargets(prefix string, bundle *serialization.Bundle) error
	LoadTargets(prefix string, bundle *serialization.Bundle) error
}

// BuildTargetBundle snapshots the captured targets of every target layer
// in layers into a fresh bundle. Entries are keyed "<index>.<name>.…",
// matching the loss keys a Pipeline reports, and layers without targets
// (mask captures, feature stages) are skipped.
func BuildTargetBundle[B tensor.Backend](layers ...Layer[B]) (*serialization.Bundle, error) {
	bundle := serialization.NewBundle()
	for i, layer := range layers {
		tl, ok := layer.(TargetLayer)
		if !ok {
			continue
		}
		if err := tl.SaveTargets(fmt.Sprintf("%d.%s.", i, layer.Name()), bundle); err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, layer.Name(), err)
		}
	}
	slog.Debug("built target bundle", "layers", len(layers), "entries", bundle.Len())
	return bundle, nil
}

// ApplyTargetBundle restores captured targets from a bundle into
// already-constructed layers. The layers must be arranged as they were
// when the bundle was built; shapes that cannot change after
// construction (channel counts, content extents) are validated, while
// data-dependent extents (histogram support sizes, kernel sample counts)
// follow the bundle.
func ApplyTargetBundle[B tensor.Backend](bundle *serialization.Bundle, layers ...Layer[B]) error {
	for i, layer := range layers {
		tl, ok := layer.(TargetLayer)
		if !ok {
			continue
		}
		if err := tl.LoadTargets(fmt.Sprintf("%d.%s.", i, layer.Name()), bundle); err != nil {
			return fmt.Errorf("layer %d (%s): %w", i, layer.Name(), err)
		}
	}
	slog.Debug("applied target bundle", "layers", len(layers), "entries", bundle.Len())
	return nil
}

// loadVec fetches a vector entry and checks its length.
func loadVec(bundle *serialization.Bundle, name string, want int, op string) ([]float64, error) {
	v, err := bundle.Vector(name)
	if err != nil {
		return nil, err
	}
	if len(v) != want {
		return nil, &ShapeError{Op: op, Want: fmt.Sprintf("%d entries", want), Got: fmt.Sprintf("%d entries", len(v))}
	}
	return v, nil
}

// SaveTargets stores the content feature map.
func (l *ContentLoss[B]) SaveTargets(prefix string, bundle *serialization.Bundle) error {
	return bundle.PutTensor(prefix+"target", l.target.Shape(), stats.FromF32(l.target.Data()))
}

// LoadTargets replaces the content feature map; the stored shape must
// match the constructed layer.
func (l *ContentLoss[B]) LoadTargets(prefix string, bundle *serialization.Bundle) error {
	shape, data, err := bundle.Tensor(prefix + "target")
	if err != nil {
		return err
	}
	if !tensor.Shape(shape).Equal(l.target.Shape()) {
		return &ShapeError{Op: "content targets", Want: l.target.Shape().String(), Got: tensor.Shape(shape).String()}
	}
	copy(l.target.Data(), stats.ToF32(data))
	return nil
}

// SaveTargets stores the shaped mean and std target vectors.
func (l *MomentLoss[B]) SaveTargets(prefix string, bundle *serialization.Bundle) error {
	if err := bundle.PutVector(prefix+"mean", l.mean); err != nil {
		return err
	}
	return bundle.PutVector(prefix+"std", l.std)
}

// LoadTargets replaces the shaped mean and std target vectors.
func (l *MomentLoss[B]) LoadTargets(prefix string, bundle *serialization.Bundle) error {
	mean, err := loadVec(bundle, prefix+"mean", l.c, "moment targets")
	if err != nil {
		return err
	}
	std, err := loadVec(bundle, prefix+"std", l.c, "moment targets")
	if err != nil {
		return err
	}
	l.mean, l.std = mean, std
	return nil
}

// SaveTargets stores the raw mean and std target vectors. The
// band-limited std target is derived state and is recomputed on load.
func (l *BandAmplifyLoss[B]) SaveTargets(prefix string, bundle *serialization.Bundle) error {
	if err := bundle.PutVector(prefix+"mean", l.mean); err != nil {
		return err
	}
	return bundle.PutVector(prefix+"std", l.std)
}

// LoadTargets replaces the mean and std targets and rebuilds the
// band-limited std through the layer's keep mask.
func (l *BandAmplifyLoss[B]) LoadTargets(prefix string, bundle *serialization.Bundle) error {
	mean, err := loadVec(bundle, prefix+"mean", l.c, "amplify targets")
	if err != nil {
		return err
	}
	std, err := loadVec(bundle, prefix+"std", l.c, "amplify targets")
	if err != nil {
		return err
	}
	l.mean, l.std = mean, std
	l.stdBand = signal.FilterVecMask(std, l.keep)
	return nil
}

// SaveTargets stores the targets of every enabled term.
func (l *StyleLoss[B]) SaveTargets(prefix string, bundle *serialization.Bundle) error {
	for _, term := range l.terms {
		if err := term.(termTargets).saveTargets(prefix, bundle); err != nil {
			return err
		}
	}
	return nil
}

// LoadTargets replaces the targets of every enabled term. The enabled
// kind set must match the one the bundle was built from, or entries come
// up missing.
func (l *StyleLoss[B]) LoadTargets(prefix string, bundle *serialization.Bundle) error {
	for _, term := range l.terms {
		if err := term.(termTargets).loadTargets(prefix, bundle); err != nil {
			return err
		}
	}
	return nil
}

// SaveTargets recurses into the pipeline's target layers, extending the
// prefix with the member index and name exactly like Forward's loss keys.
func (p *Pipeline[B]) SaveTargets(prefix string, bundle *serialization.Bundle) error {
	for i, layer := range p.layers {
		tl, ok := layer.(TargetLayer)
		if !ok {
			continue
		}
		if err := tl.SaveTargets(fmt.Sprintf("%s%d.%s.", prefix, i, layer.Name()), bundle); err != nil {
			return fmt.Errorf("layer %d (%s): %w", i, layer.Name(), err)
		}
	}
	return nil
}

// LoadTargets recurses into the pipeline's target layers.
func (p *Pipeline[B]) LoadTargets(prefix string, bundle *serialization.Bundle) error {
	for i, layer := range p.layers {
		tl, ok := layer.(TargetLayer)
		if !ok {
			continue
		}
		if err := tl.LoadTargets(fmt.Sprintf("%s%d.%s.", prefix, i, layer.Name()), bundle); err != nil {
			return fmt.Errorf("layer %d (%s): %w", i, layer.Name(), err)
		}
	}
	return nil
}

// termTargets is the per-term half of the snapshot contract. Every style
// term implements it; the methods live here so the term definitions stay
// free of serialization concerns.
type termTargets interface {
	saveTargets(prefix string, bundle *serialization.Bundle) error
	loadTargets(prefix string, bundle *serialization.Bundle) error
}

func (t *gramTerm[B]) saveTargets(prefix string, bundle *serialization.Bundle) error {
	return bundle.PutMatrix(prefix+"gram.target", t.target)
}

func (t *gramTerm[B]) loadTargets(prefix string, bundle *serialization.Bundle) error {
	m, err := bundle.Matrix(prefix + "gram.target")
	if err != nil {
		return err
	}
	wr, wc := t.target.Dims()
	if r, c := m.Dims(); r != wr || c != wc {
		return &ShapeError{Op: "gram targets", Want: fmt.Sprintf("%dx%d", wr, wc), Got: fmt.Sprintf("%dx%d", r, c)}
	}
	t.target = m
	return nil
}

func (t *bnstTerm[B]) saveTargets(prefix string, bundle *serialization.Bundle) error {
	if err := bundle.PutVector(prefix+"bnst.mean", t.mean); err != nil {
		return err
	}
	return bundle.PutVector(prefix+"bnst.std", t.std)
}

func (t *bnstTerm[B]) loadTargets(prefix string, bundle *serialization.Bundle) error {
	mean, err := loadVec(bundle, prefix+"bnst.mean", len(t.mean), "bnst targets")
	if err != nil {
		return err
	}
	std, err := loadVec(bundle, prefix+"bnst.std", len(t.std), "bnst targets")
	if err != nil {
		return err
	}
	t.mean, t.std = mean, std
	return nil
}

// morestAxes names the reduced axis of each per-axis std vector.
var morestAxes = [3]string{"channel", "height", "width"}

func (t *morestTerm[B]) saveTargets(prefix string, bundle *serialization.Bundle) error {
	for i, axis := range morestAxes {
		if err := bundle.PutVector(prefix+"morest."+axis, t.stds[i]); err != nil {
			return err
		}
	}
	return nil
}

func (t *morestTerm[B]) loadTargets(prefix string, bundle *serialization.Bundle) error {
	var stds [3][]float64
	for i, axis := range morestAxes {
		v, err := loadVec(bundle, prefix+"morest."+axis, len(t.stds[i]), "morest targets")
		if err != nil {
			return err
		}
		stds[i] = v
	}
	t.stds = stds
	return nil
}

func (t *histoTerm[B]) saveTargets(prefix string, bundle *serialization.Bundle) error {
	for ch, desc := range t.descs {
		if err := bundle.PutVector(fmt.Sprintf("%shisto.ch%d.values", prefix, ch), desc.Values); err != nil {
			return err
		}
		if err := bundle.PutVector(fmt.Sprintf("%shisto.ch%d.quantiles", prefix, ch), desc.Quantiles); err != nil {
			return err
		}
	}
	return nil
}

// loadTargets accepts any per-channel support size (the number of unique
// values depends on the style image), but the channel count and the
// pairing of values with quantiles are fixed.
func (t *histoTerm[B]) loadTargets(prefix string, bundle *serialization.Bundle) error {
	descs := make([]stats.ChannelHistogram, len(t.descs))
	for ch := range descs {
		values, err := bundle.Vector(fmt.Sprintf("%shisto.ch%d.values", prefix, ch))
		if err != nil {
			return err
		}
		quantiles, err := bundle.Vector(fmt.Sprintf("%shisto.ch%d.quantiles", prefix, ch))
		if err != nil {
			return err
		}
		if len(values) == 0 || len(values) != len(quantiles) {
			return &ShapeError{
				Op:   "histo targets",
				Want: "matching non-empty values and quantiles",
				Got:  fmt.Sprintf("%d values, %d quantiles", len(values), len(quantiles)),
			}
		}
		descs[ch] = stats.ChannelHistogram{Values: values, Quantiles: quantiles}
	}
	t.descs = descs
	return nil
}

// saveTargets writes the shared style matrix once; the linear, poly and
// rbf terms of one layer all reference the same entry.
func (t *kernelTerm[B]) saveTargets(prefix string, bundle *serialization.Bundle) error {
	name := prefix + "kernel.style"
	if bundle.Has(name) {
		return nil
	}
	return bundle.PutMatrix(name, t.style)
}

// loadTargets accepts any spatial sample count (a style swap may change
// the extent) but holds the channel count fixed.
func (t *kernelTerm[B]) loadTargets(prefix string, bundle *serialization.Bundle) error {
	m, err := bundle.Matrix(prefix + "kernel.style")
	if err != nil {
		return err
	}
	wr, _ := t.style.Dims()
	if r, _ := m.Dims(); r != wr {
		return &ShapeError{Op: "kernel targets", Want: fmt.Sprintf("%d channel rows", wr), Got: fmt.Sprintf("%d channel rows", r)}
	}
	t.style = m
	return nil
}
