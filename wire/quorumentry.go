// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
	"github.com/jrick/bitset"
)

// outdatedQuorumEntryMaxSize is the size below which a standalone quorum entry
// is treated as the outdated short form.  Short entries were produced by
// nodes prior to the full commitment being exposed and never carry the member
// bitsets or the signatures.
const outdatedQuorumEntryMaxSize = 100

// minQuorumEntrySize is the minimum size of a quorum entry in a message:
// version 2 + type 1 + quorumHash 32 + 2 * (varint 1 + bitset 1) +
// publicKey 48 + vvecHash 32 + 2 * signature 96.
const minQuorumEntrySize = 2 + 1 + chainhash.HashSize + 4 + BLSPubKeySize +
	chainhash.HashSize + 2*BLSSignatureSize

// maxQuorumEntriesPerMsg is the maximum number of quorum entries that could
// possibly fit into a message.
const maxQuorumEntriesPerMsg = MaxMessagePayload / minQuorumEntrySize

// QuorumCommitment houses the final commitment fields of a quorum which are
// required to verify it.
type QuorumCommitment struct {
	// Signers and ValidMembers are bitsets over the committee size of the
	// quorum type with bit i in byte i/8 at position i%8.
	Signers      bitset.Bytes
	ValidMembers bitset.Bytes

	QuorumVvecHash chainhash.Hash
	QuorumSig      [BLSSignatureSize]byte
	MembersSig     [BLSSignatureSize]byte
}

// QuorumEntry is the commitment of a long living masternode quorum as carried
// by the simplified masternode list.
//
// A nil Commitment identifies the outdated short form which can be stored and
// serialized but never hashed or verified.
type QuorumEntry struct {
	Version    uint16
	LLMQType   LLMQType
	QuorumHash chainhash.Hash

	// QuorumIndex is only serialized for rotated quorum versions.  See
	// IsQuorumIndexRequired.
	QuorumIndex int16

	SignersCount      uint64
	ValidMembersCount uint64
	QuorumPublicKey   [BLSPubKeySize]byte

	Commitment *QuorumCommitment
}

// IsOutdated returns whether the entry is in the outdated short form.
func (q *QuorumEntry) IsOutdated() bool {
	return q.Commitment == nil
}

// Params returns the consensus parameters of the quorum type.
func (q *QuorumEntry) Params() (LLMQParams, error) {
	return lookupLLMQ("QuorumEntry.Params", q.LLMQType)
}

// Copy returns a deep copy of the entry.
func (q *QuorumEntry) Copy() *QuorumEntry {
	c := *q
	if q.Commitment != nil {
		cm := *q.Commitment
		cm.Signers = append(bitset.Bytes(nil), q.Commitment.Signers...)
		cm.ValidMembers = append(bitset.Bytes(nil), q.Commitment.ValidMembers...)
		c.Commitment = &cm
	}
	return &c
}

// Validate ensures the quorum type is known and the member bitsets have the
// size mandated by it.
func (q *QuorumEntry) Validate() error {
	const op = "QuorumEntry.Validate"
	params, err := lookupLLMQ(op, q.LLMQType)
	if err != nil {
		return err
	}
	if q.Commitment == nil {
		return nil
	}

	want := params.BitsetSize()
	if len(q.Commitment.Signers) != want {
		msg := fmt.Sprintf("signers bitset is %d bytes, want %d",
			len(q.Commitment.Signers), want)
		return messageError(op, ErrInvalidRecord, msg)
	}
	if len(q.Commitment.ValidMembers) != want {
		msg := fmt.Sprintf("valid members bitset is %d bytes, want %d",
			len(q.Commitment.ValidMembers), want)
		return messageError(op, ErrInvalidRecord, msg)
	}
	return nil
}

// readHeader reads the fields that lead both the full and the outdated form.
func (q *QuorumEntry) readHeader(r io.Reader) error {
	err := readElements(r, &q.Version, &q.LLMQType, &q.QuorumHash)
	if err != nil {
		return err
	}
	if IsQuorumIndexRequired(q.Version) {
		return readElement(r, &q.QuorumIndex)
	}
	return nil
}

// readBitset reads a member bitset of the given size in bytes.
func readBitset(r io.Reader, size int) (bitset.Bytes, error) {
	b := make(bitset.Bytes, size)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// decodeFull reads the full form of an entry.
func (q *QuorumEntry) decodeFull(r io.Reader, pver uint32) error {
	const op = "QuorumEntry.decodeFull"
	if err := q.readHeader(r); err != nil {
		return err
	}
	params, err := lookupLLMQ(op, q.LLMQType)
	if err != nil {
		return err
	}
	size := params.BitsetSize()

	var c QuorumCommitment
	q.SignersCount, err = ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	c.Signers, err = readBitset(r, size)
	if err != nil {
		return err
	}
	q.ValidMembersCount, err = ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	c.ValidMembers, err = readBitset(r, size)
	if err != nil {
		return err
	}
	err = readElements(r, &q.QuorumPublicKey, &c.QuorumVvecHash, &c.QuorumSig,
		&c.MembersSig)
	if err != nil {
		return err
	}
	q.Commitment = &c
	return nil
}

// decodeOutdated reads the outdated short form of an entry.
func (q *QuorumEntry) decodeOutdated(r io.Reader, pver uint32) error {
	const op = "QuorumEntry.decodeOutdated"
	if err := q.readHeader(r); err != nil {
		return err
	}
	if _, err := lookupLLMQ(op, q.LLMQType); err != nil {
		return err
	}

	var err error
	q.SignersCount, err = ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	q.ValidMembersCount, err = ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	q.Commitment = nil
	return readElement(r, &q.QuorumPublicKey)
}

// BtcDecode decodes r using the protocol encoding into the receiver.  Quorum
// entries carried by messages are always in the full form.
func (q *QuorumEntry) BtcDecode(r io.Reader, pver uint32) error {
	*q = QuorumEntry{}
	return q.decodeFull(r, pver)
}

// BtcEncode encodes the receiver to w using the protocol encoding.
func (q *QuorumEntry) BtcEncode(w io.Writer, pver uint32) error {
	const op = "QuorumEntry.BtcEncode"
	if q.Commitment == nil {
		const str = "outdated quorum entries can't be encoded in messages"
		return messageError(op, ErrInvalidRecord, str)
	}
	return q.serialize(w, pver, false)
}

// Serialize encodes the entry to w in the form it was decoded from.
func (q *QuorumEntry) Serialize(w io.Writer) error {
	return q.serialize(w, ProtocolVersion, false)
}

// SerializeForHashing encodes the entry to w with both member counts set to
// the committee size of the quorum type.
func (q *QuorumEntry) SerializeForHashing(w io.Writer) error {
	return q.serialize(w, ProtocolVersion, true)
}

// serialize writes the entry.  When forHashing is set, the member counts are
// replaced by the committee size of the quorum type.
func (q *QuorumEntry) serialize(w io.Writer, pver uint32, forHashing bool) error {
	const op = "QuorumEntry.serialize"
	if err := q.Validate(); err != nil {
		return err
	}
	err := writeElements(w, &q.Version, &q.LLMQType, &q.QuorumHash)
	if err != nil {
		return err
	}
	if IsQuorumIndexRequired(q.Version) {
		if err := writeElement(w, &q.QuorumIndex); err != nil {
			return err
		}
	}

	signersCount, validCount := q.SignersCount, q.ValidMembersCount
	if forHashing {
		params, err := lookupLLMQ(op, q.LLMQType)
		if err != nil {
			return err
		}
		signersCount = uint64(params.Size)
		validCount = uint64(params.Size)
	}

	c := q.Commitment
	if c == nil {
		if forHashing {
			const str = "outdated quorum entries can't be hashed"
			return messageError(op, ErrInvalidRecord, str)
		}
		if err := WriteVarInt(w, pver, signersCount); err != nil {
			return err
		}
		if err := WriteVarInt(w, pver, validCount); err != nil {
			return err
		}
		return writeElement(w, &q.QuorumPublicKey)
	}

	if err := WriteVarInt(w, pver, signersCount); err != nil {
		return err
	}
	if _, err := w.Write(c.Signers); err != nil {
		return err
	}
	if err := WriteVarInt(w, pver, validCount); err != nil {
		return err
	}
	if _, err := w.Write(c.ValidMembers); err != nil {
		return err
	}
	return writeElements(w, &q.QuorumPublicKey, &c.QuorumVvecHash,
		&c.QuorumSig, &c.MembersSig)
}

// SerializeSize returns the number of bytes it would take to serialize the
// entry.
func (q *QuorumEntry) SerializeSize() int {
	n := 2 + 1 + chainhash.HashSize
	if IsQuorumIndexRequired(q.Version) {
		n += 2
	}
	n += VarIntSerializeSize(q.SignersCount) +
		VarIntSerializeSize(q.ValidMembersCount) + BLSPubKeySize
	if c := q.Commitment; c != nil {
		n += len(c.Signers) + len(c.ValidMembers) + chainhash.HashSize +
			2*BLSSignatureSize
	}
	return n
}

// Bytes returns the serialized entry.
func (q *QuorumEntry) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(q.SerializeSize())
	if err := q.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// QuorumEntryFromBytes decodes a standalone quorum entry.  Inputs shorter than
// the full form can possibly be are decoded as the outdated short form.
func QuorumEntryFromBytes(b []byte) (*QuorumEntry, error) {
	var q QuorumEntry
	err := decodeExact("QuorumEntryFromBytes", b, func(r *bytes.Reader) error {
		if len(b) < outdatedQuorumEntryMaxSize {
			return q.decodeOutdated(r, ProtocolVersion)
		}
		return q.decodeFull(r, ProtocolVersion)
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Hash returns the double sha256 of the entry serialized with both member
// counts set to the committee size.  It is the leaf committed to by the
// quorum merkle root.  Outdated entries can't be hashed.
func (q *QuorumEntry) Hash() (chainhash.Hash, error) {
	w := chainhash.NewDoubleHashWriter()
	if err := q.SerializeForHashing(w); err != nil {
		return chainhash.Hash{}, err
	}
	return w.Sum256(), nil
}

// CommitmentHash returns the message both the quorum signature and the
// aggregated members signature are computed over.
func (q *QuorumEntry) CommitmentHash() (chainhash.Hash, error) {
	const op = "QuorumEntry.CommitmentHash"
	params, err := lookupLLMQ(op, q.LLMQType)
	if err != nil {
		return chainhash.Hash{}, err
	}
	if q.Commitment == nil {
		const str = "outdated quorum entries carry no commitment"
		return chainhash.Hash{}, messageError(op, ErrInvalidRecord, str)
	}

	w := chainhash.NewDoubleHashWriter()
	writeUint8(w, uint8(q.LLMQType))
	w.Write(q.QuorumHash[:])
	WriteVarInt(w, ProtocolVersion, uint64(params.Size))
	w.Write(q.Commitment.ValidMembers)
	w.Write(q.QuorumPublicKey[:])
	w.Write(q.Commitment.QuorumVvecHash[:])
	return w.Sum256(), nil
}

// SelectionModifier returns the seed used to deterministically order the
// masternode list when selecting the members of the quorum.
func (q *QuorumEntry) SelectionModifier() chainhash.Hash {
	w := chainhash.NewDoubleHashWriter()
	writeUint8(w, uint8(q.LLMQType))
	w.Write(q.QuorumHash[:])
	return w.Sum256()
}

// OrderingHashForRequestID returns the score of the quorum for signing the
// given request.  The quorum with the lowest score among the active quorums of
// a type is responsible for the request.
func (q *QuorumEntry) OrderingHashForRequestID(requestID *chainhash.Hash) chainhash.Hash {
	w := chainhash.NewDoubleHashWriter()
	writeUint8(w, uint8(q.LLMQType))
	w.Write(q.QuorumHash[:])
	w.Write(requestID[:])
	return w.Sum256()
}

// String returns a short description of the quorum.
func (q *QuorumEntry) String() string {
	return fmt.Sprintf("%v:%v", q.LLMQType, q.QuorumHash)
}
