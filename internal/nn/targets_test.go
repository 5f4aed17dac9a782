package nn

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patina-ml/patina/internal/backend/cpu"
	"github.com/patina-ml/patina/internal/serialization"
	"github.com/patina-ml/patina/internal/signal"
)

var (
	_ TargetLayer = (*ContentLoss[*cpu.CPUBackend])(nil)
	_ TargetLayer = (*StyleLoss[*cpu.CPUBackend])(nil)
	_ TargetLayer = (*MomentLoss[*cpu.CPUBackend])(nil)
	_ TargetLayer = (*BandAmplifyLoss[*cpu.CPUBackend])(nil)
	_ TargetLayer = (*Pipeline[*cpu.CPUBackend])(nil)
)

// altRamp is a second deterministic pattern, distinct from ramp.
func altRamp(n int) []float32 {
	base := ramp(n)
	for i := range base {
		base[i] = 1.5*base[i] + 0.3
	}
	return base
}

// targetStack builds one of each target layer from the given style data.
func targetStack(t *testing.T, b *cpu.CPUBackend, style []float32) []Layer[*cpu.CPUBackend] {
	t.Helper()
	sf := feature(t, b, style, 3, 4, 4)

	content, err := NewContentLoss(sf)
	require.NoError(t, err)

	styleLayer, err := NewStyleLoss(StyleConfig{Kinds: allKinds()}, sf, nil)
	require.NoError(t, err)

	moment, err := NewMomentLoss(MomentConfig{
		MeanBands:  []signal.Band{signal.NewBand(0, 0.3)},
		MeanAffine: &Affine{Coef: 2, Bias: -0.5},
	}, sf)
	require.NoError(t, err)

	amplify, err := NewBandAmplifyLoss(AmplifyConfig{Band: signal.NewBand(0, 0.3), AmplifyWeight: 2.5}, sf)
	require.NoError(t, err)

	return []Layer[*cpu.CPUBackend]{content, styleLayer, moment, amplify}
}

func forwardAll(t *testing.T, layers []Layer[*cpu.CPUBackend], input []float32, b *cpu.CPUBackend) Losses {
	t.Helper()
	x := feature(t, b, input, 3, 4, 4)
	total := Losses{}
	for i, layer := range layers {
		_, losses, err := layer.Forward(x)
		require.NoError(t, err)
		total.Merge(fmt.Sprintf("%d.%s.", i, layer.Name()), losses)
	}
	return total
}

// Applying a bundle built from one layer stack onto a second stack built
// from different style data must make the second stack report the first
// stack's losses exactly.
func TestTargetBundleTransfersCapturedState(t *testing.T) {
	b := cpu.New()
	original := targetStack(t, b, ramp(48))
	other := targetStack(t, b, altRamp(48))

	input := altRamp(48)
	input[7] = -1.25

	want := forwardAll(t, original, input, b)
	before := forwardAll(t, other, input, b)
	assert.NotEqual(t, want, before)

	bundle, err := BuildTargetBundle(original...)
	require.NoError(t, err)
	require.NoError(t, ApplyTargetBundle(bundle, other...))

	got := forwardAll(t, other, input, b)
	assert.Equal(t, want, got)
}

// TestTargetBundleKeys pins the entry naming scheme, including the shared
// kernel style matrix written once for all kernel kinds.
func TestTargetBundleKeys(t *testing.T) {
	b := cpu.New()
	sf := feature(t, b, ramp(48), 3, 4, 4)

	content, err := NewContentLoss(sf)
	require.NoError(t, err)
	styleLayer, err := NewStyleLoss(StyleConfig{Kinds: kindSet(Gram, Linear, RBF)}, sf, nil)
	require.NoError(t, err)

	bundle, err := BuildTargetBundle[*cpu.CPUBackend](content, styleLayer)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"0.content.target",
		"1.style.gram.target",
		"1.style.kernel.style",
	}, bundle.Names())
}

// TestTargetBundleFileRoundTrip goes through the on-disk format.
func TestTargetBundleFileRoundTrip(t *testing.T) {
	b := cpu.New()
	original := targetStack(t, b, ramp(48))
	other := targetStack(t, b, altRamp(48))
	input := altRamp(48)

	bundle, err := BuildTargetBundle(original...)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "targets.ptna")
	require.NoError(t, serialization.WriteFile(path, bundle))
	loaded, err := serialization.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, ApplyTargetBundle(loaded, other...))
	assert.Equal(t, forwardAll(t, original, input, b), forwardAll(t, other, input, b))
}

// A bundle built with fewer enabled kinds cannot populate a layer that
// expects more.
func TestApplyTargetBundleMissingEntry(t *testing.T) {
	b := cpu.New()
	sf := feature(t, b, ramp(48), 3, 4, 4)

	gramOnly, err := NewStyleLoss(StyleConfig{Kinds: kindSet(Gram)}, sf, nil)
	require.NoError(t, err)
	both, err := NewStyleLoss(StyleConfig{Kinds: kindSet(Gram, BNST)}, sf, nil)
	require.NoError(t, err)

	bundle, err := BuildTargetBundle[*cpu.CPUBackend](gramOnly)
	require.NoError(t, err)

	err = ApplyTargetBundle[*cpu.CPUBackend](bundle, both)
	require.ErrorIs(t, err, serialization.ErrEntryNotFound)
	assert.Contains(t, err.Error(), "layer 0 (style)")
}

// TestApplyTargetBundleShapeMismatch rejects content targets whose stored
// shape disagrees with the constructed layer.
func TestApplyTargetBundleShapeMismatch(t *testing.T) {
	b := cpu.New()
	bigger, err := NewContentLoss(feature(t, b, ramp(27), 3, 3, 3))
	require.NoError(t, err)
	smaller, err := NewContentLoss(feature(t, b, ramp(12), 3, 2, 2))
	require.NoError(t, err)

	bundle, err := BuildTargetBundle[*cpu.CPUBackend](bigger)
	require.NoError(t, err)

	err = ApplyTargetBundle[*cpu.CPUBackend](bundle, smaller)
	var se *ShapeError
	require.ErrorAs(t, err, &se)
}

// Histogram support and kernel sample counts follow the bundle, so
// targets captured at one spatial extent can restore a layer built at
// another. Only the channel count is pinned.
func TestTargetBundleAcrossSpatialExtents(t *testing.T) {
	b := cpu.New()
	cfg := StyleConfig{Kinds: kindSet(Histo, RBF)}

	wide, err := NewStyleLoss(cfg, feature(t, b, ramp(48), 3, 4, 4), nil)
	require.NoError(t, err)
	narrow, err := NewStyleLoss(cfg, feature(t, b, altRamp(12), 3, 2, 2), nil)
	require.NoError(t, err)

	bundle, err := BuildTargetBundle[*cpu.CPUBackend](wide)
	require.NoError(t, err)
	require.NoError(t, ApplyTargetBundle[*cpu.CPUBackend](bundle, narrow))

	input := feature(t, b, altRamp(48), 3, 4, 4)
	_, want, err := wide.Forward(input)
	require.NoError(t, err)
	_, got, err := narrow.Forward(input)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestPipelineTargetsNested verifies pipelines recurse with the same
// index.name prefixes as their loss keys and skip stages without targets.
func TestPipelineTargetsNested(t *testing.T) {
	b := cpu.New()
	sf := feature(t, b, ramp(48), 3, 4, 4)

	content, err := NewContentLoss(sf)
	require.NoError(t, err)
	p := NewPipeline[*cpu.CPUBackend](&scaleStage{factor: 2}, content)

	bundle, err := BuildTargetBundle[*cpu.CPUBackend](p)
	require.NoError(t, err)
	assert.Equal(t, []string{"0.pipeline.1.content.target"}, bundle.Names())

	restored, err := NewContentLoss(feature(t, b, altRamp(48), 3, 4, 4))
	require.NoError(t, err)
	p2 := NewPipeline[*cpu.CPUBackend](&scaleStage{factor: 2}, restored)
	require.NoError(t, ApplyTargetBundle[*cpu.CPUBackend](bundle, p2))

	input := feature(t, b, ramp(48), 3, 4, 4)
	_, want, err := p.Forward(input)
	require.NoError(t, err)
	_, got, err := p2.Forward(input)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
