package serialization

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func testBundle(t *testing.T) *Bundle {
	t.Helper()
	b := NewBundle()
	if err := b.PutVector("stats.mean", []float64{0.5, -1.25, 3.75}); err != nil {
		t.Fatalf("PutVector failed: %v", err)
	}
	if err := b.PutMatrix("gram", mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})); err != nil {
		t.Fatalf("PutMatrix failed: %v", err)
	}
	if err := b.PutTensor("volume", []int{2, 2, 2}, []float64{1, -2, 3, -4, 5, -6, 7, -8}); err != nil {
		t.Fatalf("PutTensor failed: %v", err)
	}
	return b
}

// TestRoundTrip verifies a float64 write/read cycle is lossless and
// preserves entry order.
func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.ptna")
	if err := WriteFile(path, testBundle(t)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	names := loaded.Names()
	want := []string{"stats.mean", "gram", "volume"}
	if len(names) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(names))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("Entry %d: expected %q, got %q", i, name, names[i])
		}
	}

	v, err := loaded.Vector("stats.mean")
	if err != nil {
		t.Fatalf("Vector failed: %v", err)
	}
	for i, x := range []float64{0.5, -1.25, 3.75} {
		if v[i] != x {
			t.Errorf("Vector element %d: expected %v, got %v", i, x, v[i])
		}
	}

	m, err := loaded.Matrix("gram")
	if err != nil {
		t.Fatalf("Matrix failed: %v", err)
	}
	if r, c := m.Dims(); r != 2 || c != 3 {
		t.Fatalf("Unexpected matrix dims: %dx%d", r, c)
	}
	if m.At(1, 2) != 6 {
		t.Errorf("Matrix (1,2): expected 6, got %v", m.At(1, 2))
	}

	shape, data, err := loaded.Tensor("volume")
	if err != nil {
		t.Fatalf("Tensor failed: %v", err)
	}
	if len(shape) != 3 || shape[0] != 2 || shape[1] != 2 || shape[2] != 2 {
		t.Fatalf("Unexpected tensor shape: %v", shape)
	}
	if data[7] != -8 {
		t.Errorf("Tensor element 7: expected -8, got %v", data[7])
	}
}

// TestRoundTripNarrowDTypes verifies float32 and float16 encodings
// recover values within their precision.
func TestRoundTripNarrowDTypes(t *testing.T) {
	tests := []struct {
		dtype string
		tol   float64
	}{
		{DTypeFloat32, 1e-6},
		{DTypeFloat16, 1e-2},
	}
	values := []float64{0.1, -2.5, 3.14159, 100.0}

	for _, tt := range tests {
		t.Run(tt.dtype, func(t *testing.T) {
			b := NewBundle()
			if err := b.PutVector("v", values); err != nil {
				t.Fatalf("PutVector failed: %v", err)
			}

			path := filepath.Join(t.TempDir(), "narrow.ptna")
			if err := WriteFileWithOptions(path, b, WriterOptions{DType: tt.dtype}); err != nil {
				t.Fatalf("WriteFileWithOptions failed: %v", err)
			}

			loaded, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			got, err := loaded.Vector("v")
			if err != nil {
				t.Fatalf("Vector failed: %v", err)
			}
			for i, want := range values {
				rel := math.Abs(got[i]-want) / math.Abs(want)
				if rel > tt.tol {
					t.Errorf("Element %d: expected %v within %v, got %v", i, want, tt.tol, got[i])
				}
			}
		})
	}
}

// TestCorruptionDetection verifies that a flipped data byte is caught by
// the checksum.
func TestCorruptionDetection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.ptna")
	if err := WriteFile(path, testBundle(t)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	corruptLastByte(t, path)

	_, err := ReadFile(path)
	if err == nil {
		t.Fatal("Expected checksum validation to fail, but succeeded")
	}
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Expected ErrChecksumMismatch, got: %v", err)
	}
}

// TestSkipChecksumValidation verifies validation can be disabled for
// trusted files.
func TestSkipChecksumValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skip.ptna")
	if err := WriteFile(path, testBundle(t)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	corruptLastByte(t, path)

	if _, err := ReadFile(path); err == nil {
		t.Fatal("Expected checksum validation to fail")
	}

	loaded, err := ReadFileWithOptions(path, ReaderOptions{SkipChecksumValidation: true})
	if err != nil {
		t.Fatalf("Expected read to succeed with validation skipped, got: %v", err)
	}
	if loaded.Len() != 3 {
		t.Errorf("Expected 3 entries, got %d", loaded.Len())
	}
}

func corruptLastByte(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("Failed to open file for corruption: %v", err)
	}
	if _, err := f.Seek(info.Size()-1, 0); err != nil {
		t.Fatalf("Failed to seek: %v", err)
	}
	if _, err := f.Write([]byte{0xFF}); err != nil {
		t.Fatalf("Failed to corrupt file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Failed to close file: %v", err)
	}
}

// TestInvalidMagic rejects files that do not start with the magic bytes.
func TestInvalidMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magic.ptna")
	if err := WriteFile(path, testBundle(t)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("Failed to open file: %v", err)
	}
	if _, err := f.WriteAt([]byte("NOPE"), 0); err != nil {
		t.Fatalf("Failed to overwrite magic: %v", err)
	}
	f.Close()

	_, err = ReadFile(path)
	if !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("Expected ErrInvalidMagic, got: %v", err)
	}
}

// TestUnsupportedVersion rejects files with an unknown format version.
func TestUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version.ptna")
	if err := WriteFile(path, testBundle(t)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("Failed to open file: %v", err)
	}
	version := make([]byte, 4)
	binary.LittleEndian.PutUint32(version, 99)
	if _, err := f.WriteAt(version, 4); err != nil {
		t.Fatalf("Failed to overwrite version: %v", err)
	}
	f.Close()

	_, err = ReadFile(path)
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Expected ErrUnsupportedVersion, got: %v", err)
	}
}

// TestTruncatedFile rejects a file cut short in the data section.
func TestTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunc.ptna")
	if err := WriteFile(path, testBundle(t)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if err := os.Truncate(path, info.Size()-16); err != nil {
		t.Fatalf("Failed to truncate file: %v", err)
	}

	if _, err := ReadFile(path); err == nil {
		t.Fatal("Expected truncated file to fail")
	}
}

// TestDataSectionAlignment verifies the data section starts on the
// declared 64-byte boundary and the file ends where the header says.
func TestDataSectionAlignment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "align.ptna")
	if err := WriteFile(path, testBundle(t)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if len(raw) < FixedHeaderSize {
		t.Fatalf("File shorter than fixed header: %d bytes", len(raw))
	}

	headerSize := binary.LittleEndian.Uint64(raw[16:24])
	dataSize := binary.LittleEndian.Uint64(raw[24:32])

	dataStart := FixedHeaderSize + int(headerSize)
	if pad := (DataAlignment - dataStart%DataAlignment) % DataAlignment; pad > 0 {
		dataStart += pad
	}
	if dataStart%DataAlignment != 0 {
		t.Errorf("Data section starts at %d, not %d-byte aligned", dataStart, DataAlignment)
	}
	if len(raw) != dataStart+int(dataSize) {
		t.Errorf("File size %d, expected data start %d + data size %d", len(raw), dataStart, dataSize)
	}
}

// TestHeaderMetadata verifies the JSON header records version, producer,
// and a creation timestamp.
func TestHeaderMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.ptna")
	err := WriteFileWithOptions(path, testBundle(t), WriterOptions{Producer: "patina-test"})
	if err != nil {
		t.Fatalf("WriteFileWithOptions failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	headerSize := binary.LittleEndian.Uint64(raw[16:24])

	var header Header
	if err := json.Unmarshal(raw[FixedHeaderSize:FixedHeaderSize+int(headerSize)], &header); err != nil {
		t.Fatalf("Failed to parse header JSON: %v", err)
	}
	if header.Version != int(FormatVersion) {
		t.Errorf("Header version: expected %d, got %d", FormatVersion, header.Version)
	}
	if header.Producer != "patina-test" {
		t.Errorf("Header producer: expected %q, got %q", "patina-test", header.Producer)
	}
	if header.Created == "" {
		t.Error("Header creation timestamp is empty")
	}
	if len(header.Entries) != 3 {
		t.Errorf("Header entries: expected 3, got %d", len(header.Entries))
	}
}

// TestWriteUnknownDType rejects writer options with an unsupported dtype.
func TestWriteUnknownDType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dtype.ptna")
	err := WriteFileWithOptions(path, testBundle(t), WriterOptions{DType: "float8"})
	if err == nil {
		t.Fatal("Expected unknown dtype to fail")
	}
}

// TestEmptyBundleRoundTrip verifies a bundle with no entries survives a
// round trip.
func TestEmptyBundleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.ptna")
	if err := WriteFile(path, NewBundle()); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if loaded.Len() != 0 {
		t.Errorf("Expected empty bundle, got %d entries", loaded.Len())
	}
}

// TestInspectFile verifies header-only inspection reports the entry
// table without touching the payload.
func TestInspectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.ptna")
	err := WriteFileWithOptions(path, testBundle(t), WriterOptions{Producer: "patina-test"})
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	header, dataSize, err := InspectFile(path)
	if err != nil {
		t.Fatalf("InspectFile failed: %v", err)
	}
	if header.Producer != "patina-test" {
		t.Errorf("Expected producer %q, got %q", "patina-test", header.Producer)
	}
	if len(header.Entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(header.Entries))
	}

	var total int64
	for _, e := range header.Entries {
		total += e.Size
	}
	if dataSize != total {
		t.Errorf("Data size %d does not match entry sizes summing to %d", dataSize, total)
	}

	first := header.Entries[0]
	if first.Name != "stats.mean" || first.Kind != KindVector || first.DType != DTypeFloat64 {
		t.Errorf("Unexpected first entry: %+v", first)
	}
	if len(first.Shape) != 1 || first.Shape[0] != 3 {
		t.Errorf("Expected shape [3], got %v", first.Shape)
	}

	// Inspection never reads the data section, so payload corruption
	// must not affect it.
	corruptLastByte(t, path)
	if _, _, err := InspectFile(path); err != nil {
		t.Errorf("InspectFile failed on payload-corrupted file: %v", err)
	}
	if _, err := ReadFile(path); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Expected ErrChecksumMismatch from full read, got %v", err)
	}
}
