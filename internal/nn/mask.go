package nn

import (
	"github.com/patina-ml/patina/internal/tensor"
)

// MaskCapture records a detached copy of whatever tensor passes through
// it. Style layers built with masking read the capture at forward time and
// weight their input features with it.
//
// The register is overwritten on every Forward, so the intended use is to
// push the mask image through the probe stages once, immediately before
// constructing the layers that consume the capture. This is the single
// stateful layer in the package.
type MaskCapture[B tensor.Backend] struct {
	mask *tensor.Tensor[float32, B]
}

// NewMaskCapture creates a capture layer with an empty register.
func NewMaskCapture[B tensor.Backend]() *MaskCapture[B] {
	return &MaskCapture[B]{}
}

func (l *MaskCapture[B]) Name() string { return "mask" }

// Forward stores a detached copy of input and passes it through with no
// losses.
func (l *MaskCapture[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], Losses, error) {
	l.mask = input.Detach()
	return input, Losses{}, nil
}

// Mask returns the current capture, reporting whether one exists.
func (l *MaskCapture[B]) Mask() (*tensor.Tensor[float32, B], bool) {
	if l.mask == nil {
		return nil, false
	}
	return l.mask, true
}
