package serialization

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Bundle is an ordered, named set of float64 payloads. Entries keep their
// insertion order through a write/read round trip, and every accessor
// returns copies so bundle contents stay immutable once stored.
type Bundle struct {
	entries map[string]*bundleEntry
	order   []string
}

type bundleEntry struct {
	kind  string
	shape []int
	data  []float64
}

// NewBundle creates an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{entries: make(map[string]*bundleEntry)}
}

// Len returns the number of entries.
func (b *Bundle) Len() int { return len(b.order) }

// Has reports whether an entry with the given name exists.
func (b *Bundle) Has(name string) bool {
	_, ok := b.entries[name]
	return ok
}

// Names returns the entry names in insertion order.
func (b *Bundle) Names() []string {
	return append([]string(nil), b.order...)
}

func (b *Bundle) put(name, kind string, shape []int, data []float64) error {
	if name == "" {
		return &ValidationError{Type: "empty_name", Details: "entry name must not be empty"}
	}
	if len(name) > MaxEntryNameLen {
		return &ValidationError{Type: "name_too_long", Details: fmt.Sprintf("%d bytes, max %d", len(name), MaxEntryNameLen)}
	}
	if b.Has(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateEntry, name)
	}
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return &ValidationError{Type: "bad_shape", Entry: name, Details: fmt.Sprintf("dimension %d (must be > 0)", d)}
		}
		n *= d
	}
	if n != len(data) {
		return &ValidationError{Type: "bad_shape", Entry: name, Details: fmt.Sprintf("shape %v needs %d elements, got %d", shape, n, len(data))}
	}
	b.entries[name] = &bundleEntry{
		kind:  kind,
		shape: append([]int(nil), shape...),
		data:  append([]float64(nil), data...),
	}
	b.order = append(b.order, name)
	return nil
}

// PutVector adds a 1-D entry. The values are copied.
func (b *Bundle) PutVector(name string, v []float64) error {
	return b.put(name, KindVector, []int{len(v)}, v)
}

// PutMatrix adds a 2-D entry in row-major order. The values are copied.
func (b *Bundle) PutMatrix(name string, m *mat.Dense) error {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		data = append(data, m.RawRowView(i)...)
	}
	return b.put(name, KindMatrix, []int{r, c}, data)
}

// PutTensor adds an entry with an arbitrary positive shape.
func (b *Bundle) PutTensor(name string, shape []int, data []float64) error {
	return b.put(name, KindTensor, shape, data)
}

func (b *Bundle) lookup(name, kind string) (*bundleEntry, error) {
	e, ok := b.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, name)
	}
	if e.kind != kind {
		return nil, fmt.Errorf("%w: %q is a %s, not a %s", ErrKindMismatch, name, e.kind, kind)
	}
	return e, nil
}

// Vector returns a copy of a 1-D entry's values.
func (b *Bundle) Vector(name string) ([]float64, error) {
	e, err := b.lookup(name, KindVector)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), e.data...), nil
}

// Matrix returns a 2-D entry as a fresh dense matrix.
func (b *Bundle) Matrix(name string) (*mat.Dense, error) {
	e, err := b.lookup(name, KindMatrix)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(e.shape[0], e.shape[1], append([]float64(nil), e.data...)), nil
}

// Tensor returns an arbitrary-shape entry's shape and values.
func (b *Bundle) Tensor(name string) ([]int, []float64, error) {
	e, err := b.lookup(name, KindTensor)
	if err != nil {
		return nil, nil, err
	}
	return append([]int(nil), e.shape...), append([]float64(nil), e.data...), nil
}
