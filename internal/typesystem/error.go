package typesystem

import (
	"errors"
	"fmt"
)

// ErrUnsupportedShape indicates a type shape that cannot be classified or erased.
var ErrUnsupportedShape = errors.New("unsupported descriptor shape")

// ClassNotFoundError indicates a provider could not resolve a class name
type ClassNotFoundError struct {
	Name string
}

func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("class not found: %s", e.Name)
}

func NewClassNotFoundError(name string) *ClassNotFoundError {
	return &ClassNotFoundError{Name: name}
}

func errUnsupported(t Type) error {
	return fmt.Errorf("%w: %T", ErrUnsupportedShape, t)
}
