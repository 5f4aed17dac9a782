package nn

import (
	"fmt"

	"github.com/patina-ml/patina/internal/tensor"
)

// Pipeline threads a tensor through an ordered list of layers and merges
// their losses under "<index>.<name>." key prefixes, so the same layer
// kind can sit at several probe stages without key collisions.
//
// Pipeline itself implements Layer, so pipelines nest.
//
// Example:
//
//	p := nn.NewPipeline(stage1, styleA, stage2, content, styleB)
//	_, losses, err := p.Forward(img)
//	total := losses.WeightedSum(weights) // keys like "1.style.gram"
type Pipeline[B tensor.Backend] struct {
	layers []Layer[B]
}

// NewPipeline creates a pipeline from the given layers in order.
func NewPipeline[B tensor.Backend](layers ...Layer[B]) *Pipeline[B] {
	return &Pipeline[B]{layers: layers}
}

// Add appends a layer to the pipeline.
func (p *Pipeline[B]) Add(layer Layer[B]) {
	p.layers = append(p.layers, layer)
}

// Len returns the number of layers.
func (p *Pipeline[B]) Len() int {
	return len(p.layers)
}

// Layer returns the layer at the given index.
// Panics if the index is out of bounds.
func (p *Pipeline[B]) Layer(index int) Layer[B] {
	if index < 0 || index >= len(p.layers) {
		panic(fmt.Sprintf("layer index %d out of bounds [0, %d)", index, len(p.layers)))
	}
	return p.layers[index]
}

func (p *Pipeline[B]) Name() string { return "pipeline" }

// Forward passes input through every layer in order. The pipeline records
// nothing between calls; the returned Losses are a pure function of the
// input and the layers' captured targets.
func (p *Pipeline[B]) Forward(input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], Losses, error) {
	x := input
	losses := Losses{}
	for i, layer := range p.layers {
		var child Losses
		var err error
		x, child, err = layer.Forward(x)
		if err != nil {
			return nil, nil, fmt.Errorf("layer %d (%s): %w", i, layer.Name(), err)
		}
		losses.Merge(fmt.Sprintf("%d.%s.", i, layer.Name()), child)
	}
	return x, losses, nil
}
