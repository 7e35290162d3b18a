package exception

import "errors"

// Time-exception domain errors
var (
	ErrExceptionNotFound        = errors.New("time exception not found")
	ErrExceptionAlreadyResolved = errors.New("time exception has already been approved or rejected")
	ErrInvalidExceptionType     = errors.New("invalid time exception type")
)
