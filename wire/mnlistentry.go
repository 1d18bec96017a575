// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"
	"net/netip"

	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
)

// MnType is the type discriminator that trails typed masternode list entries.
type MnType uint16

const (
	// MnTypeRegular identifies a regular masternode.
	MnTypeRegular MnType = 0

	// MnTypeHighPerformance identifies a high performance masternode which
	// additionally runs platform services.
	MnTypeHighPerformance MnType = 1
)

// String returns the MnType in human-readable form.
func (t MnType) String() string {
	switch t {
	case MnTypeRegular:
		return "Regular"
	case MnTypeHighPerformance:
		return "HighPerformance"
	}
	return fmt.Sprintf("Unknown MnType (%d)", uint16(t))
}

// MnEntryVariant describes which historical wire form a masternode list entry
// uses.
type MnEntryVariant uint8

const (
	// MnEntryLegacy entries end after the valid flag and carry no type
	// discriminator.
	MnEntryLegacy MnEntryVariant = iota

	// MnEntryTyped entries carry the trailing type discriminator and, for
	// high performance masternodes, the platform fields.
	MnEntryTyped
)

const (
	// mnListEntryLegacySize is the serialized size of a legacy entry:
	// proRegTxHash 32 + confirmedHash 32 + service 18 + pubKeyOperator 48 +
	// keyIDVoting 20 + isValid 1.
	mnListEntryLegacySize = chainhash.HashSize*2 + 18 + BLSPubKeySize +
		KeyIDSize + 1

	// maxMnListEntriesPerMsg is the maximum number of masternode list
	// entries that could possibly fit into a message.
	maxMnListEntriesPerMsg = MaxMessagePayload / mnListEntryLegacySize
)

// PlatformInfo houses the platform service fields of a high performance
// masternode.
type PlatformInfo struct {
	HTTPPort uint16

	// NodeID is kept in wire byte order.  See NodeIDString for the display
	// form.
	NodeID [20]byte
}

// NodeIDString returns the platform node id in its byte-reversed display form.
func (p *PlatformInfo) NodeIDString() string {
	return fmt.Sprintf("%x", reversed(p.NodeID[:]))
}

// MnListEntry is a single entry of the simplified masternode list.  It is the
// registration record of one masternode as committed to by the merkle root of
// the coinbase transaction.
type MnListEntry struct {
	ProRegTxHash   chainhash.Hash
	ConfirmedHash  chainhash.Hash
	Service        netip.AddrPort
	PubKeyOperator [BLSPubKeySize]byte
	KeyIDVoting    [KeyIDSize]byte
	IsValid        bool

	// Variant selects the wire form.  Type is only serialized for typed
	// entries and Platform must be set exactly when a typed entry is a high
	// performance masternode.
	Variant  MnEntryVariant
	Type     MnType
	Platform *PlatformInfo
}

// Copy returns a deep copy of the entry.
func (e *MnListEntry) Copy() *MnListEntry {
	c := *e
	if e.Platform != nil {
		p := *e.Platform
		c.Platform = &p
	}
	return &c
}

// Validate ensures the variant specific fields of the entry are consistent.
func (e *MnListEntry) Validate() error {
	const op = "MnListEntry.Validate"
	switch e.Variant {
	case MnEntryLegacy:
		if e.Platform != nil {
			const str = "legacy entry must not carry platform fields"
			return messageError(op, ErrInvalidRecord, str)
		}

	case MnEntryTyped:
		switch e.Type {
		case MnTypeRegular:
			if e.Platform != nil {
				const str = "regular entry must not carry platform fields"
				return messageError(op, ErrInvalidRecord, str)
			}
		case MnTypeHighPerformance:
			if e.Platform == nil {
				const str = "high performance entry is missing platform fields"
				return messageError(op, ErrInvalidRecord, str)
			}
		default:
			msg := fmt.Sprintf("unknown masternode type %d", uint16(e.Type))
			return messageError(op, ErrUnknownMnType, msg)
		}

	default:
		msg := fmt.Sprintf("unknown entry variant %d", e.Variant)
		return messageError(op, ErrInvalidRecord, msg)
	}

	if !e.Service.Addr().IsValid() {
		const str = "service address is not set"
		return messageError(op, ErrInvalidRecord, str)
	}
	return nil
}

// readService reads an IPv6 (or IPv4-mapped) address followed by a big endian
// port.
func readService(r io.Reader) (netip.AddrPort, error) {
	var ip [16]byte
	var port uint16
	if err := readElement(r, &ip); err != nil {
		return netip.AddrPort{}, err
	}
	if err := readUint16BE(r, &port); err != nil {
		return netip.AddrPort{}, err
	}
	return netip.AddrPortFrom(netip.AddrFrom16(ip).Unmap(), port), nil
}

// writeService writes the address in its 16 byte form followed by the port in
// big endian.
func writeService(w io.Writer, service netip.AddrPort) error {
	ip := service.Addr().As16()
	if err := writeElement(w, &ip); err != nil {
		return err
	}
	return writeUint16BE(w, service.Port())
}

// decodeFixed reads the fields that are common to every entry variant.
func (e *MnListEntry) decodeFixed(r io.Reader) error {
	err := readElements(r, &e.ProRegTxHash, &e.ConfirmedHash)
	if err != nil {
		return err
	}
	e.Service, err = readService(r)
	if err != nil {
		return err
	}
	return readElements(r, &e.PubKeyOperator, &e.KeyIDVoting, &e.IsValid)
}

// decodeTyped reads the type discriminator and the platform fields when the
// discriminator announces a high performance masternode.
func (e *MnListEntry) decodeTyped(r io.Reader) error {
	const op = "MnListEntry.decodeTyped"
	e.Variant = MnEntryTyped
	if err := readElement(r, &e.Type); err != nil {
		return err
	}
	switch e.Type {
	case MnTypeRegular:
		e.Platform = nil
	case MnTypeHighPerformance:
		var p PlatformInfo
		err := readElements(r, &p.HTTPPort, &p.NodeID)
		if err != nil {
			return err
		}
		e.Platform = &p
	default:
		msg := fmt.Sprintf("unknown masternode type %d", uint16(e.Type))
		return messageError(op, ErrUnknownMnType, msg)
	}
	return nil
}

// BtcDecode decodes r using the masternode list protocol encoding into the
// receiver.  Entries carried by a message only contain the type discriminator
// from protocol version MnListEntryTypeVersion onwards.
func (e *MnListEntry) BtcDecode(r io.Reader, pver uint32) error {
	*e = MnListEntry{}
	if err := e.decodeFixed(r); err != nil {
		return err
	}
	if pver < MnListEntryTypeVersion {
		e.Variant = MnEntryLegacy
		return nil
	}
	return e.decodeTyped(r)
}

// BtcEncode encodes the receiver to w using the masternode list protocol
// encoding.  Legacy entries can't be encoded for protocol versions that
// require the type discriminator and vice versa.
func (e *MnListEntry) BtcEncode(w io.Writer, pver uint32) error {
	const op = "MnListEntry.BtcEncode"
	typed := pver >= MnListEntryTypeVersion
	if typed != (e.Variant == MnEntryTyped) {
		msg := fmt.Sprintf("entry variant %d is invalid for protocol "+
			"version %d", e.Variant, pver)
		return messageError(op, ErrMsgInvalidForPVer, msg)
	}
	return e.Serialize(w)
}

// Deserialize decodes a standalone entry from r.  The type discriminator is
// only present when the reader has bytes left after the valid flag, so this
// must only be used when r contains exactly one entry.
func (e *MnListEntry) Deserialize(r io.Reader) error {
	*e = MnListEntry{}
	if err := e.decodeFixed(r); err != nil {
		return err
	}

	// Peek for the optional trailing type discriminator.
	var first [1]byte
	n, err := io.ReadFull(r, first[:])
	if n == 0 && (err == io.EOF || err == io.ErrUnexpectedEOF) {
		e.Variant = MnEntryLegacy
		return nil
	}
	if err != nil {
		return err
	}
	return e.decodeTyped(io.MultiReader(bytes.NewReader(first[:]), r))
}

// Serialize encodes the entry to w.  The entry is validated first so
// malformed entries are never written.
func (e *MnListEntry) Serialize(w io.Writer) error {
	if err := e.Validate(); err != nil {
		return err
	}

	err := writeElements(w, &e.ProRegTxHash, &e.ConfirmedHash)
	if err != nil {
		return err
	}
	if err := writeService(w, e.Service); err != nil {
		return err
	}
	err = writeElements(w, &e.PubKeyOperator, &e.KeyIDVoting, &e.IsValid)
	if err != nil {
		return err
	}
	if e.Variant == MnEntryLegacy {
		return nil
	}

	if err := writeElement(w, &e.Type); err != nil {
		return err
	}
	if e.Type == MnTypeHighPerformance {
		return writeElements(w, &e.Platform.HTTPPort, &e.Platform.NodeID)
	}
	return nil
}

// SerializeSize returns the number of bytes it would take to serialize the
// entry.
func (e *MnListEntry) SerializeSize() int {
	n := mnListEntryLegacySize
	if e.Variant == MnEntryTyped {
		n += 2
		if e.Type == MnTypeHighPerformance {
			n += 2 + 20
		}
	}
	return n
}

// Bytes returns the serialized entry.
func (e *MnListEntry) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(e.SerializeSize())
	if err := e.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MnListEntryFromBytes decodes a standalone masternode list entry.
func MnListEntryFromBytes(b []byte) (*MnListEntry, error) {
	var e MnListEntry
	err := decodeExact("MnListEntryFromBytes", b, func(r *bytes.Reader) error {
		return e.Deserialize(r)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Hash returns the double sha256 of the serialized entry.  It is the leaf
// committed to by the masternode list merkle root.
func (e *MnListEntry) Hash() (chainhash.Hash, error) {
	w := chainhash.NewDoubleHashWriter()
	if err := e.Serialize(w); err != nil {
		return chainhash.Hash{}, err
	}
	return w.Sum256(), nil
}

// ConfirmedHashWithProRegTxHash returns the single sha256 of the
// registration hash followed by the confirmed hash.  It is the per-masternode
// input of the quorum member scores.
func (e *MnListEntry) ConfirmedHashWithProRegTxHash() chainhash.Hash {
	var buf [chainhash.HashSize * 2]byte
	copy(buf[:], e.ProRegTxHash[:])
	copy(buf[chainhash.HashSize:], e.ConfirmedHash[:])
	return chainhash.SingleHashH(buf[:])
}

// HasConfirmedHash returns whether the masternode has a confirmed
// registration.  Unconfirmed masternodes carry an all-zero confirmed hash.
func (e *MnListEntry) HasConfirmedHash() bool {
	return !e.ConfirmedHash.IsZero()
}
