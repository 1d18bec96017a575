// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrInvalidFirstDiff indicates the first diff of a store does not start
	// from an empty masternode list.
	ErrInvalidFirstDiff = ErrorKind("ErrInvalidFirstDiff")

	// ErrInvalidHeight indicates a diff does not advance the height of the
	// store.
	ErrInvalidHeight = ErrorKind("ErrInvalidHeight")

	// ErrHeightOutOfRange indicates a masternode list was requested for a
	// height that is not covered by the store.
	ErrHeightOutOfRange = ErrorKind("ErrHeightOutOfRange")

	// ErrUnknownBlock indicates a masternode list was requested for a block
	// that is not covered by the store.
	ErrUnknownBlock = ErrorKind("ErrUnknownBlock")

	// ErrStoreEmpty indicates an attempt to load a store from a database that
	// does not hold one.
	ErrStoreEmpty = ErrorKind("ErrStoreEmpty")

	// ErrDBCorrupt indicates the database holds data that can't be decoded or
	// does not describe a valid store.
	ErrDBCorrupt = ErrorKind("ErrDBCorrupt")

	// ErrWrongNetwork indicates the database holds a store for a different
	// network.
	ErrWrongNetwork = ErrorKind("ErrWrongNetwork")

	// ErrDBVersion indicates the database was written by a newer version of
	// the store.
	ErrDBVersion = ErrorKind("ErrDBVersion")

	// ErrDB indicates a failure of the underlying database.
	ErrDB = ErrorKind("ErrDB")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// ContextError wraps an error with additional context.  It has full support for
// errors.Is and errors.As, so the caller can ascertain the specific wrapped
// error.
//
// RawErr contains the original error in the case where an error has been
// converted.
type ContextError struct {
	Err         error
	Description string
	RawErr      error
}

// Error satisfies the error interface and prints human-readable errors.
func (e ContextError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e ContextError) Unwrap() error {
	return e.Err
}

// contextError creates a ContextError given a set of arguments.
func contextError(kind ErrorKind, desc string) ContextError {
	return ContextError{Err: kind, Description: desc}
}
