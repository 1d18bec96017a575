// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnlist

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrChainMismatch indicates a diff does not build on the block the
	// masternode list is currently at.
	ErrChainMismatch = ErrorKind("ErrChainMismatch")

	// ErrBadCoinbase indicates the coinbase transaction of a diff is not a
	// coinbase special transaction or its payload can't be decoded.
	ErrBadCoinbase = ErrorKind("ErrBadCoinbase")

	// ErrCbTxMismatch indicates the partial merkle tree of a diff does not
	// prove its coinbase transaction.
	ErrCbTxMismatch = ErrorKind("ErrCbTxMismatch")

	// ErrMerkleRootMismatch indicates the masternode list merkle root
	// calculated after applying a diff does not match the root committed to
	// by its coinbase.
	ErrMerkleRootMismatch = ErrorKind("ErrMerkleRootMismatch")

	// ErrQuorumMerkleRootMismatch indicates the quorum list merkle root
	// calculated after applying a diff does not match the root committed to
	// by its coinbase.
	ErrQuorumMerkleRootMismatch = ErrorKind("ErrQuorumMerkleRootMismatch")

	// ErrQuorumCapExceeded indicates a diff adds more quorums of a type than
	// may be active at once.
	ErrQuorumCapExceeded = ErrorKind("ErrQuorumCapExceeded")

	// ErrDuplicateQuorum indicates a diff adds a quorum that is already part
	// of the list or adds the same quorum twice.
	ErrDuplicateQuorum = ErrorKind("ErrDuplicateQuorum")

	// ErrUnknownQuorumType indicates a quorum type without known
	// parameters.
	ErrUnknownQuorumType = ErrorKind("ErrUnknownQuorumType")

	// ErrWrongQuorumContext indicates a quorum was verified against a
	// masternode list that is not the list at the quorum block.
	ErrWrongQuorumContext = ErrorKind("ErrWrongQuorumContext")

	// ErrUnsupportedQuorum indicates an attempt to verify a quorum that was
	// received in the outdated short form and carries no commitment.
	ErrUnsupportedQuorum = ErrorKind("ErrUnsupportedQuorum")

	// ErrQuorumsNotVerifiable indicates the quorum merkle root can't be
	// calculated because the list holds quorums in the outdated short form.
	ErrQuorumsNotVerifiable = ErrorKind("ErrQuorumsNotVerifiable")

	// ErrQuorumNotFound indicates a quorum is not part of the list.
	ErrQuorumNotFound = ErrorKind("ErrQuorumNotFound")

	// ErrNoQuorums indicates the list has no active quorum of the type
	// requested for signing.
	ErrNoQuorums = ErrorKind("ErrNoQuorums")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// RuleError identifies a rule violation.  It is used to indicate that
// processing of a masternode list diff or a quorum failed due to one of the
// consistency rules.  It has full support for errors.Is and errors.As, so the
// caller can ascertain the specific reason for the rule violation.
type RuleError struct {
	Err         error
	Description string
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
