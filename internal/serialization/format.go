// Package serialization implements the .ptna target-bundle format.
//
// A bundle snapshots the float64 descriptors loss layers capture at
// construction time, so an edit session can rebuild its layers without
// re-running the probe network.
//
// File layout (all integers little-endian):
//
//	[0x00] 4 bytes   magic "PTNA"
//	[0x04] uint32    format version
//	[0x08] uint32    flags (reserved, zero)
//	[0x0c] 4 bytes   reserved
//	[0x10] uint64    JSON header size
//	[0x18] uint64    data section size
//	[0x20] 32 bytes  SHA-256 checksum of the data section
//	[0x40] JSON header
//	[....] zero padding to a 64-byte boundary
//	[....] data section (entry payloads, in header order)
package serialization

import "fmt"

const (
	// MagicBytes identifies .ptna files.
	MagicBytes = "PTNA"

	// FormatVersion is the current .ptna format version.
	FormatVersion uint32 = 1

	// FixedHeaderSize is the byte length of the fixed header block.
	FixedHeaderSize = 64

	// DataAlignment aligns the data section start.
	DataAlignment = 64
)

// Entry kinds.
const (
	KindVector = "vector"
	KindMatrix = "matrix"
	KindTensor = "tensor"
)

// Payload element encodings.
const (
	DTypeFloat64 = "float64"
	DTypeFloat32 = "float32"
	DTypeFloat16 = "float16"
)

// Header is the JSON header of a .ptna file.
type Header struct {
	Version  int         `json:"version"`
	Created  string      `json:"created,omitempty"` // RFC3339
	Producer string      `json:"producer,omitempty"`
	Entries  []EntryMeta `json:"entries"`
}

// EntryMeta describes one payload in the data section.
type EntryMeta struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Shape  []int  `json:"shape"`
	DType  string `json:"dtype"`
	Offset int64  `json:"offset"` // relative to the data section start
	Size   int64  `json:"size"`   // bytes
}

// dtypeSize returns the byte width of one element.
func dtypeSize(dtype string) (int, error) {
	switch dtype {
	case DTypeFloat64:
		return 8, nil
	case DTypeFloat32:
		return 4, nil
	case DTypeFloat16:
		return 2, nil
	default:
		return 0, fmt.Errorf("%w: unknown dtype %q", ErrCorruptedData, dtype)
	}
}

func validKind(kind string) bool {
	return kind == KindVector || kind == KindMatrix || kind == KindTensor
}
