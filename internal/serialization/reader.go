package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/x448/float16"
)

// ReaderOptions configures bundle decoding.
type ReaderOptions struct {
	// SkipChecksumValidation disables SHA256 verification of the data
	// section. Only safe for trusted files where speed matters.
	SkipChecksumValidation bool
}

// ReadFile reads a bundle from path with full validation.
func ReadFile(path string) (*Bundle, error) {
	return ReadFileWithOptions(path, ReaderOptions{})
}

// ReadFileWithOptions reads a bundle from path.
func ReadFileWithOptions(path string, opts ReaderOptions) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return Read(f, opts)
}

// InspectFile parses the headers of a bundle file without decoding the
// payload. The entry table is validated against the declared data size,
// but the data section is never read, so the checksum is not verified.
func InspectFile(path string) (*Header, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return Inspect(f)
}

// Inspect parses the headers of a bundle from r. See InspectFile.
func Inspect(r io.Reader) (*Header, int64, error) {
	header, dataSize, _, err := readHeaders(r)
	if err != nil {
		return nil, 0, err
	}
	if err := ValidateEntries(header.Entries, dataSize); err != nil {
		return nil, 0, err
	}
	return header, dataSize, nil
}

// Read decodes a bundle from r. The entry table is validated against the
// data section before any payload is touched, and the checksum is
// verified unless the options skip it.
func Read(r io.Reader, opts ReaderOptions) (*Bundle, error) {
	header, dataSize, stored, err := readHeaders(r)
	if err != nil {
		return nil, err
	}

	data := make([]byte, dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("failed to read data section: %w", err)
	}

	if err := ValidateEntries(header.Entries, int64(len(data))); err != nil {
		return nil, err
	}
	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(data), stored); err != nil {
			return nil, err
		}
	}

	bundle := NewBundle()
	for _, meta := range header.Entries {
		values, err := decodePayload(data[meta.Offset:meta.Offset+meta.Size], meta.DType)
		if err != nil {
			return nil, err
		}
		if err := bundle.put(meta.Name, meta.Kind, meta.Shape, values); err != nil {
			return nil, err
		}
	}
	return bundle, nil
}

// readHeaders consumes the fixed header, the JSON header and the
// alignment padding, leaving r positioned at the data section.
func readHeaders(r io.Reader) (*Header, int64, [32]byte, error) {
	var stored [32]byte

	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, 0, stored, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, 0, stored, ErrInvalidMagic
	}
	version := binary.LittleEndian.Uint32(fixed[4:8])
	if version != FormatVersion {
		return nil, 0, stored, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	if headerSize > uint64(MaxHeaderSize) {
		return nil, 0, stored, ErrHeaderTooLarge
	}
	if dataSize > uint64(MaxDataSize) {
		return nil, 0, stored, fmt.Errorf("%w: data section of %d bytes exceeds limit", ErrCorruptedData, dataSize)
	}
	copy(stored[:], fixed[32:64])

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, 0, stored, fmt.Errorf("failed to read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, 0, stored, fmt.Errorf("%w: malformed header JSON: %v", ErrCorruptedData, err)
	}

	pos := FixedHeaderSize + int(headerSize)
	if pad := (DataAlignment - pos%DataAlignment) % DataAlignment; pad > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(pad)); err != nil {
			return nil, 0, stored, fmt.Errorf("failed to skip padding: %w", err)
		}
	}
	return &header, int64(dataSize), stored, nil
}

// decodePayload widens wire values back to float64.
func decodePayload(data []byte, dtype string) ([]float64, error) {
	elemSize, err := dtypeSize(dtype)
	if err != nil {
		return nil, err
	}
	if len(data)%elemSize != 0 {
		return nil, fmt.Errorf("%w: payload of %d bytes is not a multiple of element size %d", ErrCorruptedData, len(data), elemSize)
	}
	out := make([]float64, len(data)/elemSize)
	switch dtype {
	case DTypeFloat32:
		for i := range out {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
		}
	case DTypeFloat16:
		for i := range out {
			out[i] = float64(float16.Frombits(binary.LittleEndian.Uint16(data[i*2:])).Float32())
		}
	default:
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
	}
	return out, nil
}
