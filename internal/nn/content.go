package nn

import (
	"log/slog"

	"github.com/patina-ml/patina/internal/tensor"
)

// ContentLoss penalizes the distance between a forward feature map and a
// content feature map captured at construction time.
//
// The target is detached when the layer is built, so mutating the source
// tensor afterwards (as the optimization loop does to the synthesized
// image) cannot drift the target.
//
// Example:
//
//	layer, err := nn.NewContentLoss(contentFeatures)
//	_, losses, err := layer.Forward(inputFeatures)
//	// losses["content"] holds the raw mean squared error
type ContentLoss[B tensor.Backend] struct {
	target *tensor.Tensor[float32, B]
}

// NewContentLoss captures a detached copy of the content feature map.
func NewContentLoss[B tensor.Backend](target *tensor.Tensor[float32, B]) (*ContentLoss[B], error) {
	if target == nil {
		return nil, &ConfigError{Field: "target", Reason: "content target must not be nil"}
	}
	slog.Debug("captured content target", "shape", target.Shape().String())
	return &ContentLoss[B]{target: target.Detach()}, nil
}

func (l *ContentLoss[B]) Name() string { return "content" }

// Forward returns the input unchanged and its mean squared error against
// the captured target under the "content" key. Accumulation runs in
// float64 so large feature maps do not lose low-order error mass.
func (l *ContentLoss[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], Losses, error) {
	if !input.Shape().Equal(l.target.Shape()) {
		return nil, nil, &ShapeError{Op: "content forward", Want: l.target.Shape().String(), Got: input.Shape().String()}
	}
	in := input.Data()
	want := l.target.Data()
	sum := 0.0
	for i := range in {
		d := float64(in[i]) - float64(want[i])
		sum += d * d
	}
	return input, Losses{"content": sum / float64(len(in))}, nil
}
