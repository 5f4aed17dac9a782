// Package nn implements the loss layers used for neural style transfer.
//
// This package provides the building blocks inserted between probe-network
// stages:
//   - Layer interface: base interface for all loss layers
//   - ContentLoss: feature reconstruction against a captured content target
//   - MaskCapture: records a mask feature map for spatially weighted styles
//   - StyleLoss: gram / BN-statistic / per-axis / histogram / kernel-MMD
//     style terms with optional frequency-band filtered targets
//   - MomentLoss, BandAmplifyLoss: band-composed BN-statistic variants
//   - Pipeline: container threading an image through layers and merging
//     their losses
//
// Layers capture their targets at construction time as plain float64
// descriptors, detached from the runtime tensor plane; Forward returns the
// input unchanged so probe stages can keep consuming it. Design inspired
// by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/patina-ml/patina/internal/signal"
	"github.com/patina-ml/patina/internal/stats"
	"github.com/patina-ml/patina/internal/tensor"
)

// Layer is the base interface for all loss layers.
//
// Forward computes the layer's losses for a feature tensor and passes the
// tensor through unchanged, so layers interleave freely with probe-network
// stages. Implementations validate shapes and return errors instead of
// panicking.
//
// Type parameter B must satisfy the tensor.Backend interface.
type Layer[B tensor.Backend] interface {
	// Name identifies the layer kind inside merged loss keys.
	Name() string

	// Forward computes the losses for input.
	//
	// Returns the input tensor unchanged together with one entry per
	// enabled loss term.
	Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], Losses, error)
}

// featureDims interprets a feature tensor shape as (C, H, W). A leading
// unit batch dimension is accepted and dropped; larger batches are
// rejected.
func featureDims(op string, shape tensor.Shape) (c, h, w int, err error) {
	switch len(shape) {
	case 3:
		return shape[0], shape[1], shape[2], nil
	case 4:
		if shape[0] != 1 {
			return 0, 0, 0, &ShapeError{Op: op, Want: "batch size 1", Got: fmt.Sprintf("batch size %d", shape[0])}
		}
		return shape[1], shape[2], shape[3], nil
	default:
		return 0, 0, 0, &ShapeError{Op: op, Want: "(C, H, W) or (1, C, H, W)", Got: shape.String()}
	}
}

// flatten widens a (C,H,W) feature volume into a (C, H·W) float64 matrix.
// The tensor's row-major layout makes each channel plane one matrix row.
func flatten[B tensor.Backend](x *tensor.Tensor[float32, B], c, n int) *mat.Dense {
	return mat.NewDense(c, n, stats.FromF32(x.Data()))
}

// filterVolume band-filters every channel plane of a (C,H,W) volume in 2-D
// and returns the result as a fresh tensor on the same backend.
func filterVolume[B tensor.Backend](x *tensor.Tensor[float32, B], c, h, w int, band signal.Band) (*tensor.Tensor[float32, B], error) {
	data := stats.FromF32(x.Data())
	planes := make([][]float64, c)
	for i := range planes {
		planes[i] = data[i*h*w : (i+1)*h*w]
	}
	filtered := signal.FilterPlanes(planes, h, w, band)
	out := make([]float32, 0, c*h*w)
	for _, plane := range filtered {
		out = append(out, stats.ToF32(plane)...)
	}
	return tensor.FromSlice(out, tensor.Shape{c, h, w}, x.Backend())
}

// volumeStds computes the per-axis standard deviations of a (C,H,W)
// volume: axis 0 collapses channels, 1 height, 2 width. Unbiased, to match
// the BN statistics elsewhere.
func volumeStds[B tensor.Backend](vol *tensor.Tensor[float32, B]) [3][]float64 {
	var out [3][]float64
	for dim := 0; dim < 3; dim++ {
		out[dim] = stats.FromF32(vol.StdDim(dim, true, false).Data())
	}
	return out
}
