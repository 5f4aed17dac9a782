package serialization

import (
	"fmt"
	"sort"
)

// Validation limits for resource protection when reading untrusted files.
const (
	// MaxHeaderSize caps the JSON header (100MB).
	MaxHeaderSize = 100 * 1024 * 1024
	// MaxDataSize caps the data section (1GB).
	MaxDataSize = 1 << 30
	// MaxEntryCount caps the number of entries per file.
	MaxEntryCount = 100_000
	// MaxEntryNameLen caps the length of a single entry name.
	MaxEntryNameLen = 4096
)

// ValidateEntries checks the header entry table against the data section:
// kinds, dtypes, bounds, overlaps, duplicate names, and shape/size
// agreement. Malformed files must fail here rather than corrupt
// downstream decoding.
func ValidateEntries(entries []EntryMeta, dataSize int64) error {
	if len(entries) > MaxEntryCount {
		return &ValidationError{Type: "too_many_entries", Details: fmt.Sprintf("got %d, max %d", len(entries), MaxEntryCount)}
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return &ValidationError{Type: "empty_name", Details: "entry name must not be empty"}
		}
		if len(e.Name) > MaxEntryNameLen {
			return &ValidationError{Type: "name_too_long", Entry: e.Name[:32] + "...", Details: fmt.Sprintf("%d bytes, max %d", len(e.Name), MaxEntryNameLen)}
		}
		if seen[e.Name] {
			return &ValidationError{Type: "duplicate_name", Entry: e.Name, Details: "entry appears more than once"}
		}
		seen[e.Name] = true

		if !validKind(e.Kind) {
			return &ValidationError{Type: "bad_kind", Entry: e.Name, Details: fmt.Sprintf("unknown kind %q", e.Kind)}
		}
		elemSize, err := dtypeSize(e.DType)
		if err != nil {
			return &ValidationError{Type: "bad_dtype", Entry: e.Name, Details: fmt.Sprintf("unknown dtype %q", e.DType)}
		}
		if e.Offset < 0 || e.Size < 0 {
			return &ValidationError{Type: "negative_extent", Entry: e.Name, Details: fmt.Sprintf("offset=%d size=%d", e.Offset, e.Size)}
		}
		// Individual bounds before the sum so the sum cannot overflow.
		if e.Offset > dataSize || e.Size > dataSize || e.Offset+e.Size > dataSize {
			return &ValidationError{Type: "out_of_bounds", Entry: e.Name, Details: fmt.Sprintf("offset=%d size=%d data section=%d", e.Offset, e.Size, dataSize)}
		}
		n := int64(1)
		for _, d := range e.Shape {
			if d <= 0 {
				return &ValidationError{Type: "bad_shape", Entry: e.Name, Details: fmt.Sprintf("dimension %d (must be > 0)", d)}
			}
			n *= int64(d)
		}
		if n*int64(elemSize) != e.Size {
			return &ValidationError{Type: "bad_shape", Entry: e.Name, Details: fmt.Sprintf("shape %v as %s needs %d bytes, size is %d", e.Shape, e.DType, n*int64(elemSize), e.Size)}
		}
	}

	// Overlap detection on the offset-sorted view.
	sorted := make([]EntryMeta, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1]
		if prev.Offset+prev.Size > sorted[i].Offset {
			return &ValidationError{Type: "offset_overlap", Entry: sorted[i].Name, Details: fmt.Sprintf("overlaps entry %q", prev.Name)}
		}
	}
	return nil
}
