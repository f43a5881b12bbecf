package services

import (
	"errors"
	"fmt"

	"github.com/lborres/evently/core"
)

// storeError passes through errors that already carry a class and tags
// everything else as a persistence failure.
func storeError(op string, err error) error {
	for _, class := range []error{core.ErrPersistence, core.ErrNotFound, core.ErrConflict, core.ErrValidation} {
		if errors.Is(err, class) {
			return err
		}
	}
	return fmt.Errorf("%w: failed to %s: %w", core.ErrPersistence, op, err)
}
