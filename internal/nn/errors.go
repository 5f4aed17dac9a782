package nn

import (
	"errors"
	"fmt"
)

// ErrMaskEmpty is returned when a masking-enabled layer runs Forward
// before its mask layer has captured anything.
var ErrMaskEmpty = errors.New("mask layer has not captured a mask yet")

// ShapeError reports a mismatch between a forward input and the shapes
// a layer captured at construction time.
type ShapeError struct {
	Op   string // operation that rejected the shape
	Want string
	Got  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: shape mismatch: want %s, got %s", e.Op, e.Want, e.Got)
}

// ConfigError reports an invalid layer configuration at construction time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}
