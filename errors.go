package treats

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable classifies every failure to reach or operate on the
// counter store. Test with errors.Is.
var ErrStoreUnavailable = errors.New("counter store unavailable")

type StoreUnavailable struct {
	Operation string
	Key       string
	Cause     error
}

func (e *StoreUnavailable) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Operation, e.Key, ErrStoreUnavailable, e.Cause)
}

func (e *StoreUnavailable) Unwrap() error {
	return e.Cause
}

func (e *StoreUnavailable) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func unavailable(operation, key string, cause error) error {
	return &StoreUnavailable{Operation: operation, Key: key, Cause: cause}
}
