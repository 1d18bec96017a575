// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dashutil

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dashpay/dashcore-lib/chaincfg"
	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
	"github.com/dashpay/dashcore-lib/wire"
	"github.com/decred/base58"
)

var (
	// ErrChecksumMismatch describes an error where decoding failed due
	// to a bad checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrUnknownAddressType describes an error where an address can not be
	// decoded as a specific address type due to the string encoding
	// beginning with an identifier byte unknown to the network.
	ErrUnknownAddressType = errors.New("unknown address type")

	// ErrInvalidFormat describes an error where an address is not valid
	// base58 or does not have the length of a version byte, a hash160 and
	// a checksum.
	ErrInvalidFormat = errors.New("invalid format: version and/or checksum bytes missing")
)

const (
	// Hash160Size is the size of the hashes carried by addresses.
	Hash160Size = 20

	// checksumSize is the number of leading bytes of the double sha256 of
	// the version and payload that are appended to the encoding.
	checksumSize = 4

	// encodedAddressSize is the decoded size of every supported address.
	encodedAddressSize = 1 + Hash160Size + checksumSize
)

// checksum returns the first four bytes of the double sha256 of the input.
func checksum(input []byte) (cksum [checksumSize]byte) {
	h := chainhash.HashB(input)
	copy(cksum[:], h[:checksumSize])
	return
}

// checkEncode prepends the version byte and appends a four byte checksum
// before base58 encoding the result.
func checkEncode(input []byte, version byte) string {
	b := make([]byte, 0, 1+len(input)+checksumSize)
	b = append(b, version)
	b = append(b, input...)
	cksum := checksum(b)
	b = append(b, cksum[:]...)
	return base58.Encode(b)
}

// checkDecode decodes a string that was encoded with checkEncode and verifies
// the checksum.
func checkDecode(input string) (result []byte, version byte, err error) {
	decoded := base58.Decode(input)
	if len(decoded) != encodedAddressSize {
		return nil, 0, ErrInvalidFormat
	}
	version = decoded[0]
	payload := decoded[:len(decoded)-checksumSize]
	cksum := checksum(payload)
	if !bytes.Equal(cksum[:], decoded[len(decoded)-checksumSize:]) {
		return nil, 0, ErrChecksumMismatch
	}
	return payload[1:], version, nil
}

// Address is an interface type for any type of destination a transaction
// output may spend to or a masternode may be voted for with.
type Address interface {
	// String returns the string encoding of the address.
	String() string

	// Address returns the string encoding of the address.  This is the
	// same as String and is kept for parity with the other address types.
	Address() string

	// ScriptAddress returns the raw bytes of the address to be used when
	// inserting the address into a txout's script.
	ScriptAddress() []byte

	// Hash160 returns the hash160 the address pays to.
	Hash160() *[Hash160Size]byte
}

// AddressPubKeyHash is an Address for a pay-to-pubkey-hash (P2PKH)
// transaction.  Masternode voting keys are encoded this way.
type AddressPubKeyHash struct {
	hash  [Hash160Size]byte
	netID byte
}

// NewAddressPubKeyHash returns a new AddressPubKeyHash for the network of the
// passed parameters.  pkHash must be 20 bytes.
func NewAddressPubKeyHash(pkHash []byte, params *chaincfg.Params) (*AddressPubKeyHash, error) {
	if len(pkHash) != Hash160Size {
		return nil, errors.New("pkHash must be 20 bytes")
	}
	addr := &AddressPubKeyHash{netID: params.PubKeyHashAddrID}
	copy(addr.hash[:], pkHash)
	return addr, nil
}

// Address returns the string encoding of a pay-to-pubkey-hash address.
//
// Part of the Address interface.
func (a *AddressPubKeyHash) Address() string {
	return checkEncode(a.hash[:], a.netID)
}

// ScriptAddress returns the bytes to be included in a txout script to pay
// to a pubkey hash.  Part of the Address interface.
func (a *AddressPubKeyHash) ScriptAddress() []byte {
	return a.hash[:]
}

// String returns a human-readable string for the pay-to-pubkey-hash address.
// This is equivalent to calling Address, but is provided so the type can be
// used as a fmt.Stringer.
func (a *AddressPubKeyHash) String() string {
	return a.Address()
}

// Hash160 returns the underlying array of the pubkey hash.
func (a *AddressPubKeyHash) Hash160() *[Hash160Size]byte {
	return &a.hash
}

// AddressScriptHash is an Address for a pay-to-script-hash (P2SH)
// transaction.
type AddressScriptHash struct {
	hash  [Hash160Size]byte
	netID byte
}

// NewAddressScriptHashFromHash returns a new AddressScriptHash for the network
// of the passed parameters.  scriptHash must be 20 bytes.
func NewAddressScriptHashFromHash(scriptHash []byte, params *chaincfg.Params) (*AddressScriptHash, error) {
	if len(scriptHash) != Hash160Size {
		return nil, errors.New("scriptHash must be 20 bytes")
	}
	addr := &AddressScriptHash{netID: params.ScriptHashAddrID}
	copy(addr.hash[:], scriptHash)
	return addr, nil
}

// Address returns the string encoding of a pay-to-script-hash address.
//
// Part of the Address interface.
func (a *AddressScriptHash) Address() string {
	return checkEncode(a.hash[:], a.netID)
}

// ScriptAddress returns the bytes to be included in a txout script to pay
// to a script hash.  Part of the Address interface.
func (a *AddressScriptHash) ScriptAddress() []byte {
	return a.hash[:]
}

// String returns a human-readable string for the pay-to-script-hash address.
// This is equivalent to calling Address, but is provided so the type can be
// used as a fmt.Stringer.
func (a *AddressScriptHash) String() string {
	return a.Address()
}

// Hash160 returns the underlying array of the script hash.
func (a *AddressScriptHash) Hash160() *[Hash160Size]byte {
	return &a.hash
}

// DecodeAddress decodes the string encoding of an address and returns the
// Address if addr is a valid encoding for a known address type of the
// network described by params.
func DecodeAddress(addr string, params *chaincfg.Params) (Address, error) {
	decoded, netID, err := checkDecode(addr)
	if err != nil {
		if errors.Is(err, ErrChecksumMismatch) {
			return nil, ErrChecksumMismatch
		}
		return nil, fmt.Errorf("decoded address is of unknown format: %w", err)
	}

	switch netID {
	case params.PubKeyHashAddrID:
		return NewAddressPubKeyHash(decoded, params)

	case params.ScriptHashAddrID:
		return NewAddressScriptHashFromHash(decoded, params)

	default:
		return nil, ErrUnknownAddressType
	}
}

// VotingAddress returns the pay-to-pubkey-hash address of the voting key of
// the masternode on the network described by params.
func VotingAddress(entry *wire.MnListEntry, params *chaincfg.Params) string {
	addr := AddressPubKeyHash{hash: entry.KeyIDVoting, netID: params.PubKeyHashAddrID}
	return addr.Address()
}
