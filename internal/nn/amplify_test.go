package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/patina-ml/patina/internal/backend/cpu"
	"github.com/patina-ml/patina/internal/signal"
	"github.com/patina-ml/patina/internal/stats"
)

func TestAmplifySelfTargetZero(t *testing.T) {
	b := cpu.New()
	style := feature(t, b, ramp(8*2*2), 8, 2, 2)
	layer, err := NewBandAmplifyLoss(AmplifyConfig{Band: signal.NewBand(0, 0.2), AmplifyWeight: 3}, style)
	require.NoError(t, err)

	out, losses, err := layer.Forward(style)
	require.NoError(t, err)
	assert.Same(t, style, out)
	assert.Equal(t, 0.0, losses["mean"])
	assert.Equal(t, 0.0, losses["std"])
}

// An open band is the explicit no-op: the amplify weight is forced to
// zero and the layer reduces to the plain BN statistics.
func TestAmplifyOpenBandIsPlainBNLoss(t *testing.T) {
	b := cpu.New()
	styleData := ramp(8 * 2 * 2)
	inputData := append([]float32(nil), styleData...)
	inputData[3] = 4

	layer, err := NewBandAmplifyLoss(AmplifyConfig{AmplifyWeight: 7}, feature(t, b, styleData, 8, 2, 2))
	require.NoError(t, err)

	_, losses, err := layer.Forward(feature(t, b, inputData, 8, 2, 2))
	require.NoError(t, err)

	styleMean, styleStd := stats.MeanStdRows(mat.NewDense(8, 4, stats.FromF32(styleData)))
	inMean, inStd := stats.MeanStdRows(mat.NewDense(8, 4, stats.FromF32(inputData)))
	assert.InDelta(t, stats.MSE(inMean, styleMean), losses["mean"], 1e-12)
	assert.InDelta(t, stats.MSE(inStd, styleStd), losses["std"], 1e-12)
}

// With RawInputStd the unfiltered input stds are held against the
// filtered target, so even a self-forward pays for band-external energy.
func TestAmplifyRawInputStd(t *testing.T) {
	b := cpu.New()
	data := ramp(8 * 2 * 2)
	style := feature(t, b, data, 8, 2, 2)
	band := signal.NewBand(0, 0.2)

	layer, err := NewBandAmplifyLoss(AmplifyConfig{Band: band, AmplifyWeight: 2, RawInputStd: true}, style)
	require.NoError(t, err)

	_, losses, err := layer.Forward(style)
	require.NoError(t, err)

	_, std := stats.MeanStdRows(mat.NewDense(8, 4, stats.FromF32(data)))
	stdBand := signal.FilterVecMask(std, signal.RealKeepMask(8, band))
	want := 2 * stats.MSE(std, stdBand)
	require.Greater(t, want, 0.0)
	assert.Equal(t, 0.0, losses["mean"])
	assert.InDelta(t, want, losses["std"], 1e-12)
}

func TestAmplifyWeightScalesBandTerm(t *testing.T) {
	b := cpu.New()
	style := feature(t, b, ramp(8*2*2), 8, 2, 2)
	band := signal.NewBand(0.2, 0.5)

	one, err := NewBandAmplifyLoss(AmplifyConfig{Band: band, AmplifyWeight: 1, RawInputStd: true}, style)
	require.NoError(t, err)
	three, err := NewBandAmplifyLoss(AmplifyConfig{Band: band, AmplifyWeight: 3, RawInputStd: true}, style)
	require.NoError(t, err)

	_, first, err := one.Forward(style)
	require.NoError(t, err)
	_, scaled, err := three.Forward(style)
	require.NoError(t, err)
	assert.InDelta(t, 3*first["std"], scaled["std"], 1e-12)
}

func TestAmplifyRepeatable(t *testing.T) {
	b := cpu.New()
	layer, err := NewBandAmplifyLoss(AmplifyConfig{Band: signal.NewBand(0, 0.3), AmplifyWeight: 1.5}, feature(t, b, ramp(8*2*2), 8, 2, 2))
	require.NoError(t, err)

	input := feature(t, b, ramp(8*2*2), 8, 2, 2)
	input.Data()[12] = -2

	_, first, err := layer.Forward(input)
	require.NoError(t, err)
	_, second, err := layer.Forward(input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	finite(t, first)
}

func TestAmplifyChannelMismatch(t *testing.T) {
	b := cpu.New()
	layer, err := NewBandAmplifyLoss(AmplifyConfig{}, feature(t, b, ramp(8*2*2), 8, 2, 2))
	require.NoError(t, err)

	_, _, err = layer.Forward(feature(t, b, ramp(4*2*2), 4, 2, 2))
	var se *ShapeError
	require.ErrorAs(t, err, &se)
}

func TestAmplifyInvertedBand(t *testing.T) {
	b := cpu.New()
	_, err := NewBandAmplifyLoss(AmplifyConfig{Band: signal.NewBand(0.4, 0.1)}, feature(t, b, ramp(8*2*2), 8, 2, 2))
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestAmplifyNilStyle(t *testing.T) {
	_, err := NewBandAmplifyLoss[*cpu.CPUBackend](AmplifyConfig{}, nil)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
}
