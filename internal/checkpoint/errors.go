package checkpoint

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedArchitecture = errors.New("unsupported architecture")
	ErrInvalidClassIndex       = errors.New("invalid class index mapping")
)

// LoadError reports a checkpoint that could not be read, parsed or validated.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load checkpoint %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
