package serialization

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMagic indicates the file does not start with "PTNA".
	ErrInvalidMagic = errors.New("invalid magic bytes, not a .ptna file")

	// ErrUnsupportedVersion indicates an unknown format version.
	ErrUnsupportedVersion = errors.New("unsupported format version")

	// ErrHeaderTooLarge indicates the declared header exceeds the limit.
	ErrHeaderTooLarge = errors.New("header size exceeds maximum")

	// ErrChecksumMismatch indicates the data section failed verification.
	ErrChecksumMismatch = errors.New("checksum mismatch, file may be corrupted")

	// ErrCorruptedData indicates structurally invalid file contents.
	ErrCorruptedData = errors.New("corrupted data")

	// ErrEntryNotFound indicates a bundle lookup for an unknown name.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrDuplicateEntry indicates two bundle entries share a name.
	ErrDuplicateEntry = errors.New("duplicate entry name")

	// ErrKindMismatch indicates a bundle entry was read as the wrong kind.
	ErrKindMismatch = errors.New("entry kind mismatch")
)

// ValidationError describes a structural problem with a header entry.
type ValidationError struct {
	Type    string // problem category
	Entry   string // offending entry name, if any
	Details string
}

func (e *ValidationError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("validation failed (%s) for entry %q: %s", e.Type, e.Entry, e.Details)
	}
	return fmt.Sprintf("validation failed (%s): %s", e.Type, e.Details)
}
