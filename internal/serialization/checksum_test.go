package serialization

import (
	"errors"
	"testing"
)

// TestComputeChecksum verifies determinism and sensitivity to changes.
func TestComputeChecksum(t *testing.T) {
	data := []byte("patina target data")

	first := ComputeChecksum(data)
	second := ComputeChecksum(data)
	if first != second {
		t.Error("Checksum is not deterministic")
	}

	data[0] ^= 0xFF
	changed := ComputeChecksum(data)
	if first == changed {
		t.Error("Checksum did not change after data mutation")
	}
}

// TestValidateChecksum verifies match and mismatch handling.
func TestValidateChecksum(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	sum := ComputeChecksum(data)

	if err := ValidateChecksum(sum, sum); err != nil {
		t.Errorf("Expected matching checksums to validate, got: %v", err)
	}

	var other [32]byte
	other[0] = 0xAB
	err := ValidateChecksum(sum, other)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Expected ErrChecksumMismatch, got: %v", err)
	}
}
