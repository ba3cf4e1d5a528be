package bridge

import (
	"errors"
	"fmt"
)

var ErrFatal = errors.New("bridge: fatal")

// FatalError is an unrecoverable failure. The entry point maps it to a process
// exit so a supervisor can restart the bridge.
type FatalError struct {
	Op    string
	Cause error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("bridge: fatal %s: %v", e.Op, e.Cause)
}

func (e *FatalError) Is(target error) bool {
	return target == ErrFatal
}

func (e *FatalError) Unwrap() error {
	return e.Cause
}

func fatal(op string, cause error) error {
	return &FatalError{Op: op, Cause: cause}
}
