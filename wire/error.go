// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrNonCanonicalVarInt is returned when a variable length integer is
	// not canonically encoded.
	ErrNonCanonicalVarInt = ErrorKind("ErrNonCanonicalVarInt")

	// ErrVarBytesTooLong is returned when a variable-length byte slice
	// exceeds the maximum message size allowed.
	ErrVarBytesTooLong = ErrorKind("ErrVarBytesTooLong")

	// ErrTooManyEntries is returned when a list prefixed by a count exceeds
	// the maximum number of items allowed.
	ErrTooManyEntries = ErrorKind("ErrTooManyEntries")

	// ErrShortRead is returned when a record ends before all of its fields
	// could be read.
	ErrShortRead = ErrorKind("ErrShortRead")

	// ErrTrailingBytes is returned when bytes remain after a complete record
	// has been decoded from a byte slice.
	ErrTrailingBytes = ErrorKind("ErrTrailingBytes")

	// ErrUnknownLLMQType is returned when a quorum references a quorum type
	// that has no known parameters.
	ErrUnknownLLMQType = ErrorKind("ErrUnknownLLMQType")

	// ErrUnknownMnType is returned when a masternode list entry carries a
	// type discriminator that is not recognized.
	ErrUnknownMnType = ErrorKind("ErrUnknownMnType")

	// ErrInvalidRecord is returned when a record fails validation prior to
	// being serialized.
	ErrInvalidRecord = ErrorKind("ErrInvalidRecord")

	// ErrUnknownTxType is returned when a special transaction payload is
	// requested from a transaction of a different type.
	ErrUnknownTxType = ErrorKind("ErrUnknownTxType")

	// ErrMsgInvalidForPVer is returned when a message is invalid for
	// the expected protocol version.
	ErrMsgInvalidForPVer = ErrorKind("ErrMsgInvalidForPVer")

	// ErrPayloadTooLarge is returned when a payload exceeds the maximum
	// payload size allowed.
	ErrPayloadTooLarge = ErrorKind("ErrPayloadTooLarge")

	// ErrUnknownCmd is returned when a message command is unknown.
	ErrUnknownCmd = ErrorKind("ErrUnknownCmd")

	// ErrCmdTooLong is returned when a message command exceeds the maximum
	// command size allowed.
	ErrCmdTooLong = ErrorKind("ErrCmdTooLong")

	// ErrMalformedCmd is returned when a message command is malformed.
	ErrMalformedCmd = ErrorKind("ErrMalformedCmd")

	// ErrWrongNetwork is returned when a message intended for a different
	// network is received.
	ErrWrongNetwork = ErrorKind("ErrWrongNetwork")

	// ErrPayloadChecksum is returned when a message with an invalid checksum
	// is received.
	ErrPayloadChecksum = ErrorKind("ErrPayloadChecksum")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// MessageError identifies an error related to wire messages. It has
// full support for errors.Is and errors.As, so the caller can
// ascertain the specific reason for the error by checking the
// underlying error.
type MessageError struct {
	Func        string
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e MessageError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e MessageError) Unwrap() error {
	return e.Err
}

// messageError creates a MessageError given a set of arguments.
func messageError(fn string, kind ErrorKind, desc string) MessageError {
	return MessageError{Func: fn, Err: kind, Description: desc}
}
