// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
)

// maxFlagsPerMerkleBlock is the maximum number of flag bytes that could
// possibly fit into a message.  Each transaction is represented by at most
// one bit per tree level.
const maxFlagsPerMerkleBlock = MaxMessagePayload / 8

// maxHashesPerPartialTree is the maximum number of hashes that could possibly
// fit into a message.
const maxHashesPerPartialTree = MaxMessagePayload / chainhash.HashSize

// PartialMerkleTree is the serialized form of a merkle tree pruned down to
// the branches that prove a set of matched leaves.  The hashes and flag bits
// are in depth-first order with the flag bits packed least significant bit
// first.
type PartialMerkleTree struct {
	TotalTransactions uint32
	Hashes            []chainhash.Hash
	Flags             []byte
}

// BtcDecode decodes r using the protocol encoding into the receiver.
func (t *PartialMerkleTree) BtcDecode(r io.Reader, pver uint32) error {
	if err := readElement(r, &t.TotalTransactions); err != nil {
		return err
	}

	count, err := readCount(r, pver, maxHashesPerPartialTree,
		"partial merkle tree hashes")
	if err != nil {
		return err
	}
	t.Hashes = make([]chainhash.Hash, count)
	for i := range t.Hashes {
		if err := readElement(r, &t.Hashes[i]); err != nil {
			return err
		}
	}

	t.Flags, err = ReadVarBytes(r, pver, maxFlagsPerMerkleBlock,
		"partial merkle tree flags")
	return err
}

// BtcEncode encodes the receiver to w using the protocol encoding.
func (t *PartialMerkleTree) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeElement(w, &t.TotalTransactions); err != nil {
		return err
	}
	if err := WriteVarInt(w, pver, uint64(len(t.Hashes))); err != nil {
		return err
	}
	for i := range t.Hashes {
		if err := writeElement(w, &t.Hashes[i]); err != nil {
			return err
		}
	}
	return WriteVarBytes(w, pver, t.Flags)
}

// SerializeSize returns the number of bytes it would take to serialize the
// tree.
func (t *PartialMerkleTree) SerializeSize() int {
	return 4 + VarIntSerializeSize(uint64(len(t.Hashes))) +
		len(t.Hashes)*chainhash.HashSize +
		VarIntSerializeSize(uint64(len(t.Flags))) + len(t.Flags)
}

// Bytes returns the serialized tree.
func (t *PartialMerkleTree) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, t.SerializeSize()))
	// Writing to a bytes.Buffer can't fail.
	_ = t.BtcEncode(buf, ProtocolVersion)
	return buf.Bytes()
}

// PartialMerkleTreeFromBytes decodes a whole serialized partial merkle tree.
func PartialMerkleTreeFromBytes(b []byte) (*PartialMerkleTree, error) {
	var t PartialMerkleTree
	err := decodeExact("PartialMerkleTreeFromBytes", b, func(r *bytes.Reader) error {
		return t.BtcDecode(r, ProtocolVersion)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}
