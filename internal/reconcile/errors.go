package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a batch rejected before any write.
	ErrValidation = errors.New("invalid record")
	// ErrTransient marks a store failure. Nothing from the batch is visible
	// and the client may retry the identical batch.
	ErrTransient = errors.New("store unavailable")
)

// ValidationError identifies the first malformed record of a batch.
type ValidationError struct {
	Index int
	Name  string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("localChanges[%d]: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("localChanges[%d] (%s): %v", e.Index, e.Name, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type transientError struct {
	op  string
	err error
}

func (e *transientError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *transientError) Unwrap() error { return e.err }

func (e *transientError) Is(target error) bool {
	return target == ErrTransient
}

func transient(op string, err error) error {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return err
	}
	return &transientError{op: op, err: err}
}
