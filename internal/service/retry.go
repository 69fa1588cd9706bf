package service

import (
	"errors"

	"giftshop/internal/store"
)

// retryRead re-runs a read-only operation a bounded number of times
// when the backend reports a transient failure. Mutating operations
// never go through here: a mutation that may or may not have applied
// is resolved by re-observing terminal state, not by re-issuing it.
func retryRead(attempts int, fn func() error) error {
	err := fn()
	for i := 0; i < attempts && errors.Is(err, store.ErrStorageUnavailable); i++ {
		err = fn()
	}
	return err
}
