// Package backend adapts each proof system variant to the bench phase interface.
package backend

import (
	"fmt"

	"github.com/summa-dev/summa-bench/errs"
)

func checkPopulation(name string, got, capacity int) error {
	if got != capacity {
		return fmt.Errorf("%w: %s expects exactly %d entries, got %d", errs.ErrInvalidConfiguration, name, capacity, got)
	}
	return nil
}

func checkSubject(subject, capacity int) error {
	if subject < 0 || subject >= capacity {
		return fmt.Errorf("%w: index %d not in [0, %d)", errs.ErrInvalidSubject, subject, capacity)
	}
	return nil
}

// failure marks err as a library failure inside op.
func failure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", errs.ErrBackendFailure, op, err)
}
