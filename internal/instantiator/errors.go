package instantiator

import (
	"errors"
	"fmt"

	ts "github.com/funvibe/geninst/internal/typesystem"
)

// ErrInstantiationFailed is matched by every failed instantiation attempt.
// The attempt may succeed when retried with different candidates.
var ErrInstantiationFailed = errors.New("instantiation failed")

// ErrUnsupportedShape is a hard internal error: a descriptor shape the engine
// cannot classify.
var ErrUnsupportedShape = ts.ErrUnsupportedShape

// InstantiationError reports why a descriptor could not be instantiated.
type InstantiationError struct {
	Descriptor string
	Reason     string
	Err        error // failure of a nested instantiation, may be nil
}

func (e *InstantiationError) Error() string {
	msg := fmt.Sprintf("cannot instantiate %s: %s", e.Descriptor, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrInstantiationFailed unless the failure is an unsupported
// shape, which no retry can fix.
func (e *InstantiationError) Is(target error) bool {
	return target == ErrInstantiationFailed && !errors.Is(e.Err, ErrUnsupportedShape)
}

func (e *InstantiationError) Unwrap() error { return e.Err }

func failf(d *ts.Descriptor, format string, args ...any) error {
	return &InstantiationError{Descriptor: d.Name(), Reason: fmt.Sprintf(format, args...)}
}

func wrapFailure(d *ts.Descriptor, err error, format string, args ...any) error {
	return &InstantiationError{Descriptor: d.Name(), Reason: fmt.Sprintf(format, args...), Err: err}
}
