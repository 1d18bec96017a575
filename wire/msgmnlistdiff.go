// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
)

// maxDeletedPerMsg is the maximum number of deleted masternode hashes or
// quorum keys that could possibly fit into a message.
const maxDeletedPerMsg = MaxMessagePayload / chainhash.HashSize

// QuorumKey identifies a quorum within a masternode list.
type QuorumKey struct {
	LLMQType   LLMQType
	QuorumHash chainhash.Hash
}

// String returns the key in the form "type:hash".
func (k QuorumKey) String() string {
	return fmt.Sprintf("%v:%v", k.LLMQType, k.QuorumHash)
}

// MsgMnListDiff implements the Message interface and represents a Dash
// mnlistdiff message.  It transforms the masternode list at BaseBlockHash into
// the list at BlockHash.
//
// The message carries no validation beyond its structure.  All consistency
// checks are performed when the diff is applied to a masternode list.
type MsgMnListDiff struct {
	BaseBlockHash  chainhash.Hash
	BlockHash      chainhash.Hash
	CbTxMerkleTree PartialMerkleTree
	CbTx           MsgTx
	DeletedMNs     []chainhash.Hash
	MNList         []*MnListEntry

	// The quorum lists are only encoded from protocol version
	// MnListDiffQuorumsVersion.
	DeletedQuorums []QuorumKey
	NewQuorums     []*QuorumEntry
}

// CbTxPayload decodes the coinbase payload of the diff.
func (msg *MsgMnListDiff) CbTxPayload() (*CbTx, error) {
	return msg.CbTx.CbTx()
}

// Height returns the height of the block the diff leads to as committed to by
// the coinbase payload.
func (msg *MsgMnListDiff) Height() (uint32, error) {
	payload, err := msg.CbTx.CbTx()
	if err != nil {
		return 0, err
	}
	return payload.Height, nil
}

// MerkleRootMNList returns the masternode list merkle root claimed by the
// coinbase payload of the diff.
func (msg *MsgMnListDiff) MerkleRootMNList() (chainhash.Hash, error) {
	payload, err := msg.CbTx.CbTx()
	if err != nil {
		return chainhash.Hash{}, err
	}
	return payload.MerkleRootMNList, nil
}

// MerkleRootQuorums returns the quorum list merkle root claimed by the
// coinbase payload of the diff and whether the payload version commits to
// quorums at all.
func (msg *MsgMnListDiff) MerkleRootQuorums() (chainhash.Hash, bool, error) {
	payload, err := msg.CbTx.CbTx()
	if err != nil {
		return chainhash.Hash{}, false, err
	}
	return payload.MerkleRootQuorums, payload.Version >= 2, nil
}

// BtcDecode decodes r using the Dash protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgMnListDiff) BtcDecode(r io.Reader, pver uint32) error {
	const op = "MsgMnListDiff.BtcDecode"
	if pver < InitialProtocolVersion {
		str := fmt.Sprintf("%s message invalid for protocol version %d",
			msg.Command(), pver)
		return messageError(op, ErrMsgInvalidForPVer, str)
	}

	err := readElements(r, &msg.BaseBlockHash, &msg.BlockHash)
	if err != nil {
		return err
	}
	if err := msg.CbTxMerkleTree.BtcDecode(r, pver); err != nil {
		return err
	}
	if err := msg.CbTx.BtcDecode(r, pver); err != nil {
		return err
	}

	count, err := readCount(r, pver, maxDeletedPerMsg, "deleted masternodes")
	if err != nil {
		return err
	}
	msg.DeletedMNs = make([]chainhash.Hash, count)
	for i := range msg.DeletedMNs {
		if err := readElement(r, &msg.DeletedMNs[i]); err != nil {
			return err
		}
	}

	count, err = readCount(r, pver, maxMnListEntriesPerMsg,
		"masternode list entries")
	if err != nil {
		return err
	}
	msg.MNList = make([]*MnListEntry, count)
	for i := range msg.MNList {
		var e MnListEntry
		if err := e.BtcDecode(r, pver); err != nil {
			return err
		}
		msg.MNList[i] = &e
	}

	msg.DeletedQuorums = nil
	msg.NewQuorums = nil
	if pver < MnListDiffQuorumsVersion {
		return nil
	}

	count, err = readCount(r, pver, maxDeletedPerMsg, "deleted quorums")
	if err != nil {
		return err
	}
	msg.DeletedQuorums = make([]QuorumKey, count)
	for i := range msg.DeletedQuorums {
		k := &msg.DeletedQuorums[i]
		if err := readElements(r, &k.LLMQType, &k.QuorumHash); err != nil {
			return err
		}
	}

	count, err = readCount(r, pver, maxQuorumEntriesPerMsg, "new quorums")
	if err != nil {
		return err
	}
	msg.NewQuorums = make([]*QuorumEntry, count)
	for i := range msg.NewQuorums {
		var q QuorumEntry
		if err := q.BtcDecode(r, pver); err != nil {
			return err
		}
		msg.NewQuorums[i] = &q
	}
	return nil
}

// BtcEncode encodes the receiver to w using the Dash protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgMnListDiff) BtcEncode(w io.Writer, pver uint32) error {
	const op = "MsgMnListDiff.BtcEncode"
	if pver < InitialProtocolVersion {
		str := fmt.Sprintf("%s message invalid for protocol version %d",
			msg.Command(), pver)
		return messageError(op, ErrMsgInvalidForPVer, str)
	}
	if pver < MnListDiffQuorumsVersion &&
		(len(msg.DeletedQuorums) != 0 || len(msg.NewQuorums) != 0) {

		str := fmt.Sprintf("quorum lists can't be encoded for protocol "+
			"version %d", pver)
		return messageError(op, ErrMsgInvalidForPVer, str)
	}

	err := writeElements(w, &msg.BaseBlockHash, &msg.BlockHash)
	if err != nil {
		return err
	}
	if err := msg.CbTxMerkleTree.BtcEncode(w, pver); err != nil {
		return err
	}
	if err := msg.CbTx.BtcEncode(w, pver); err != nil {
		return err
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.DeletedMNs))); err != nil {
		return err
	}
	for i := range msg.DeletedMNs {
		if err := writeElement(w, &msg.DeletedMNs[i]); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.MNList))); err != nil {
		return err
	}
	for _, e := range msg.MNList {
		if err := e.BtcEncode(w, pver); err != nil {
			return err
		}
	}

	if pver < MnListDiffQuorumsVersion {
		return nil
	}

	err = WriteVarInt(w, pver, uint64(len(msg.DeletedQuorums)))
	if err != nil {
		return err
	}
	for i := range msg.DeletedQuorums {
		k := &msg.DeletedQuorums[i]
		if err := writeElements(w, &k.LLMQType, &k.QuorumHash); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.NewQuorums))); err != nil {
		return err
	}
	for _, q := range msg.NewQuorums {
		if err := q.BtcEncode(w, pver); err != nil {
			return err
		}
	}
	return nil
}

// Command returns the protocol command string for the message.  This is part
// of the Message interface implementation.
func (msg *MsgMnListDiff) Command() string {
	return CmdMnListDiff
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgMnListDiff) MaxPayloadLength(pver uint32) uint32 {
	return MaxMessagePayload
}

// Bytes returns the diff serialized with the provided protocol version.
func (msg *MsgMnListDiff) Bytes(pver uint32) ([]byte, error) {
	var buf bytes.Buffer
	if err := msg.BtcEncode(&buf, pver); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MsgMnListDiffFromBytes decodes a whole serialized diff with the provided
// protocol version.
func MsgMnListDiffFromBytes(b []byte, pver uint32) (*MsgMnListDiff, error) {
	var msg MsgMnListDiff
	err := decodeExact("MsgMnListDiffFromBytes", b, func(r *bytes.Reader) error {
		return msg.BtcDecode(r, pver)
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
