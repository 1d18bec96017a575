// Copyright (c) 2019-2020 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific RuleError.
const (
	// ErrEmptyPartialTree indicates a partial merkle tree commits to zero
	// leaves.
	ErrEmptyPartialTree = ErrorKind("ErrEmptyPartialTree")

	// ErrPartialTreeTooManyLeaves indicates a partial merkle tree claims more
	// leaves than a block could possibly hold.
	ErrPartialTreeTooManyLeaves = ErrorKind("ErrPartialTreeTooManyLeaves")

	// ErrPartialTreeTooManyHashes indicates a partial merkle tree carries
	// more hashes than it has leaves.
	ErrPartialTreeTooManyHashes = ErrorKind("ErrPartialTreeTooManyHashes")

	// ErrBadPartialTree indicates the flag bits and hashes of a partial
	// merkle tree do not describe a tree of its size.  That includes running
	// out of flags or hashes during traversal and leaving any unused.
	ErrBadPartialTree = ErrorKind("ErrBadPartialTree")

	// ErrPartialTreeDuplicateHash indicates a partial merkle tree provides
	// two identical children for a node whose right child is real, which
	// would allow distinct leaf sets to produce the same root.
	ErrPartialTreeDuplicateHash = ErrorKind("ErrPartialTreeDuplicateHash")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// RuleError identifies a rule violation. It has full support for errors.Is
// and errors.As, so the caller can ascertain the specific reason for the
// error by checking the underlying error.
type RuleError struct {
	Description string
	Err         error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e RuleError) Unwrap() error {
	return e.Err
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(kind ErrorKind, desc string) RuleError {
	return RuleError{Err: kind, Description: desc}
}
