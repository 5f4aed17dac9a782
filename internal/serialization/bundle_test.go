package serialization

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestBundlePutGet verifies storage and retrieval of all three entry kinds.
func TestBundlePutGet(t *testing.T) {
	b := NewBundle()

	if err := b.PutVector("mean", []float64{1, 2, 3}); err != nil {
		t.Fatalf("PutVector failed: %v", err)
	}
	if err := b.PutMatrix("gram", mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err != nil {
		t.Fatalf("PutMatrix failed: %v", err)
	}
	if err := b.PutTensor("volume", []int{2, 1, 3}, []float64{5, 6, 7, 8, 9, 10}); err != nil {
		t.Fatalf("PutTensor failed: %v", err)
	}

	if b.Len() != 3 {
		t.Fatalf("Expected 3 entries, got %d", b.Len())
	}

	v, err := b.Vector("mean")
	if err != nil {
		t.Fatalf("Vector failed: %v", err)
	}
	if len(v) != 3 || v[0] != 1 || v[2] != 3 {
		t.Errorf("Unexpected vector values: %v", v)
	}

	m, err := b.Matrix("gram")
	if err != nil {
		t.Fatalf("Matrix failed: %v", err)
	}
	if r, c := m.Dims(); r != 2 || c != 2 {
		t.Errorf("Unexpected matrix dims: %dx%d", r, c)
	}
	if m.At(1, 0) != 3 {
		t.Errorf("Unexpected matrix value at (1,0): %v", m.At(1, 0))
	}

	shape, data, err := b.Tensor("volume")
	if err != nil {
		t.Fatalf("Tensor failed: %v", err)
	}
	if len(shape) != 3 || shape[0] != 2 || shape[1] != 1 || shape[2] != 3 {
		t.Errorf("Unexpected tensor shape: %v", shape)
	}
	if len(data) != 6 || data[5] != 10 {
		t.Errorf("Unexpected tensor data: %v", data)
	}
}

// TestBundleCopiesOnPutAndGet verifies that stored entries are isolated
// from caller slices in both directions.
func TestBundleCopiesOnPutAndGet(t *testing.T) {
	src := []float64{1, 2, 3}
	b := NewBundle()
	if err := b.PutVector("v", src); err != nil {
		t.Fatalf("PutVector failed: %v", err)
	}
	src[0] = 100

	got, err := b.Vector("v")
	if err != nil {
		t.Fatalf("Vector failed: %v", err)
	}
	if got[0] != 1 {
		t.Errorf("Stored entry aliases the caller slice: got[0] = %v", got[0])
	}

	got[1] = 200
	again, err := b.Vector("v")
	if err != nil {
		t.Fatalf("Vector failed: %v", err)
	}
	if again[1] != 2 {
		t.Errorf("Returned slice aliases stored entry: again[1] = %v", again[1])
	}
}

// TestBundleNamesInsertionOrder verifies Names returns entries in the
// order they were added, not map order.
func TestBundleNamesInsertionOrder(t *testing.T) {
	b := NewBundle()
	names := []string{"zeta", "alpha", "mid", "beta"}
	for _, name := range names {
		if err := b.PutVector(name, []float64{1}); err != nil {
			t.Fatalf("PutVector(%q) failed: %v", name, err)
		}
	}

	got := b.Names()
	if len(got) != len(names) {
		t.Fatalf("Expected %d names, got %d", len(names), len(got))
	}
	for i, name := range names {
		if got[i] != name {
			t.Errorf("Name %d: expected %q, got %q", i, name, got[i])
		}
	}
}

// TestBundleDuplicateName verifies duplicate names are rejected.
func TestBundleDuplicateName(t *testing.T) {
	b := NewBundle()
	if err := b.PutVector("x", []float64{1}); err != nil {
		t.Fatalf("First put failed: %v", err)
	}
	err := b.PutMatrix("x", mat.NewDense(1, 1, []float64{2}))
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("Expected ErrDuplicateEntry, got: %v", err)
	}
}

// TestBundleEntryNotFound verifies lookups on missing names.
func TestBundleEntryNotFound(t *testing.T) {
	b := NewBundle()
	if _, err := b.Vector("nope"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound, got: %v", err)
	}
	if b.Has("nope") {
		t.Error("Has reported a missing entry as present")
	}
}

// TestBundleKindMismatch verifies accessing an entry through the wrong
// kind fails instead of reinterpreting it.
func TestBundleKindMismatch(t *testing.T) {
	b := NewBundle()
	if err := b.PutVector("v", []float64{1, 2}); err != nil {
		t.Fatalf("PutVector failed: %v", err)
	}
	if _, err := b.Matrix("v"); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("Expected ErrKindMismatch from Matrix, got: %v", err)
	}
	if _, _, err := b.Tensor("v"); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("Expected ErrKindMismatch from Tensor, got: %v", err)
	}
}

// TestBundleRejectsBadEntries verifies name and shape validation on put.
func TestBundleRejectsBadEntries(t *testing.T) {
	b := NewBundle()

	var vErr *ValidationError
	if err := b.PutVector("", []float64{1}); !errors.As(err, &vErr) {
		t.Errorf("Expected ValidationError for empty name, got: %v", err)
	}
	if err := b.PutTensor("bad", []int{2, 3}, []float64{1, 2, 3}); !errors.As(err, &vErr) {
		t.Errorf("Expected ValidationError for shape/data mismatch, got: %v", err)
	}
	if err := b.PutTensor("zero", []int{0}, nil); !errors.As(err, &vErr) {
		t.Errorf("Expected ValidationError for zero dimension, got: %v", err)
	}
	if b.Len() != 0 {
		t.Errorf("Rejected entries must not be stored, Len = %d", b.Len())
	}
}
