package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/x448/float16"
)

// WriterOptions configures bundle encoding.
type WriterOptions struct {
	// DType selects the on-disk element encoding for every entry.
	// Defaults to float64 (lossless).
	DType string
	// Producer is recorded in the JSON header for provenance.
	Producer string
}

// WriteFile writes the bundle to path with default options.
func WriteFile(path string, b *Bundle) error {
	return WriteFileWithOptions(path, b, WriterOptions{})
}

// WriteFileWithOptions writes the bundle to path.
func WriteFileWithOptions(path string, b *Bundle, opts WriterOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Write(f, b, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Write encodes the bundle to w: fixed header, JSON header, zero padding
// to the 64-byte data alignment, then the packed data section. The SHA256
// checksum in the fixed header covers the data section only.
func Write(w io.Writer, b *Bundle, opts WriterOptions) error {
	dtype := opts.DType
	if dtype == "" {
		dtype = DTypeFloat64
	}
	if _, err := dtypeSize(dtype); err != nil {
		return err
	}

	// Entry table and data section, in bundle insertion order.
	entries := make([]EntryMeta, 0, b.Len())
	var data []byte
	for _, name := range b.order {
		e := b.entries[name]
		payload := encodePayload(e.data, dtype)
		entries = append(entries, EntryMeta{
			Name:   name,
			Kind:   e.kind,
			Shape:  append([]int(nil), e.shape...),
			DType:  dtype,
			Offset: int64(len(data)),
			Size:   int64(len(payload)),
		})
		data = append(data, payload...)
	}

	header := Header{
		Version:  int(FormatVersion),
		Created:  time.Now().UTC().Format(time.RFC3339),
		Producer: opts.Producer,
		Entries:  entries,
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	checksum := ComputeChecksum(data)

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], 0) // flags, reserved
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	copy(fixed[32:64], checksum[:])

	if _, err := w.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	pos := FixedHeaderSize + len(headerJSON)
	if pad := (DataAlignment - pos%DataAlignment) % DataAlignment; pad > 0 {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write data section: %w", err)
	}
	return nil
}

// encodePayload narrows float64 values into the wire encoding.
func encodePayload(values []float64, dtype string) []byte {
	switch dtype {
	case DTypeFloat32:
		out := make([]byte, 4*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(float32(v)))
		}
		return out
	case DTypeFloat16:
		out := make([]byte, 2*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint16(out[i*2:], float16.Fromfloat32(float32(v)).Bits())
		}
		return out
	default:
		out := make([]byte, 8*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
		}
		return out
	}
}
