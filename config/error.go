package config

import "fmt"

// Error marks a malformed or self-contradictory configuration. The CLI maps
// it to a distinct "misconfigured" exit code; every other failure exits with
// the generic status.
type Error struct {
	Err error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func errf(format string, args ...any) *Error {
	return &Error{Err: fmt.Errorf(format, args...)}
}
