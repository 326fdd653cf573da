// Package errs holds the sentinel errors shared by every benchmark phase.
// Callers match them with errors.Is; producers wrap them with fmt.Errorf("%w: ...").
package errs

import "errors"

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInvalidSubject       = errors.New("invalid subject index")
	ErrBackendFailure       = errors.New("backend failure")
	ErrIO                   = errors.New("io error")
)
