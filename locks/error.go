// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package locks

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrInvalidLockHeight indicates a chain lock signs a negative height.
	ErrInvalidLockHeight = ErrorKind("ErrInvalidLockHeight")

	// ErrNoSignatoryQuorum indicates no signing quorum could be resolved for
	// any of the attempted heights.
	ErrNoSignatoryQuorum = ErrorKind("ErrNoSignatoryQuorum")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// LockError identifies a lock that can't be verified.  It has full support for
// errors.Is and errors.As, so the caller can ascertain the specific reason for
// the error by checking the underlying error.
type LockError struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e LockError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e LockError) Unwrap() error {
	return e.Err
}

// lockError creates a LockError given a set of arguments.
func lockError(kind error, desc string) LockError {
	return LockError{Err: kind, Description: desc}
}
