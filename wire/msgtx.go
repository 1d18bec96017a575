// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2024 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
)

// TxType is the special transaction type carried in the upper 16 bits of the
// version field of transactions with version 3 and later.
type TxType uint16

// These constants define the known special transaction types.
const (
	TxTypeClassic          TxType = 0
	TxTypeProRegTx         TxType = 1
	TxTypeProUpServTx      TxType = 2
	TxTypeProUpRegTx       TxType = 3
	TxTypeProUpRevTx       TxType = 4
	TxTypeCoinbase         TxType = 5
	TxTypeQuorumCommitment TxType = 6
	TxTypeMnHfSignal       TxType = 7
	TxTypeAssetLock        TxType = 8
	TxTypeAssetUnlock      TxType = 9
)

// txTypeStrings is a map of special transaction types back to their constant
// names for pretty printing.
var txTypeStrings = map[TxType]string{
	TxTypeClassic:          "Classic",
	TxTypeProRegTx:         "ProRegTx",
	TxTypeProUpServTx:      "ProUpServTx",
	TxTypeProUpRegTx:       "ProUpRegTx",
	TxTypeProUpRevTx:       "ProUpRevTx",
	TxTypeCoinbase:         "Coinbase",
	TxTypeQuorumCommitment: "QuorumCommitment",
	TxTypeMnHfSignal:       "MnHfSignal",
	TxTypeAssetLock:        "AssetLock",
	TxTypeAssetUnlock:      "AssetUnlock",
}

// String returns the TxType in human-readable form.
func (t TxType) String() string {
	if s, ok := txTypeStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown TxType (%d)", uint16(t))
}

const (
	// SpecialTxVersion is the first transaction version which may carry a
	// special transaction type and extra payload.
	SpecialTxVersion uint16 = 3

	// MaxPrevOutIndex is the maximum index the index field of a previous
	// outpoint can be.
	MaxPrevOutIndex uint32 = 0xffffffff

	// minTxInPayload is the minimum payload size for a transaction input.
	// PreviousOutPoint.Hash + PreviousOutPoint.Index 4 bytes + Varint for
	// SignatureScript length 1 byte + Sequence 4 bytes.
	minTxInPayload = 9 + chainhash.HashSize

	// maxTxInPerMessage is the maximum number of transactions inputs that
	// a transaction which fits into a message could possibly have.
	maxTxInPerMessage = (MaxMessagePayload / minTxInPayload) + 1

	// minTxOutPayload is the minimum payload size for a transaction output.
	// Value 8 bytes + Varint for PkScript length 1 byte.
	minTxOutPayload = 9

	// maxTxOutPerMessage is the maximum number of transactions outputs that
	// a transaction which fits into a message could possibly have.
	maxTxOutPerMessage = (MaxMessagePayload / minTxOutPayload) + 1
)

// OutPoint defines a Dash data type that is used to track previous
// transaction outputs.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new transaction outpoint point with the provided hash
// and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{
		Hash:  *hash,
		Index: index,
	}
}

// String returns the OutPoint in the human-readable form "hash:index".
func (o OutPoint) String() string {
	// Allocate enough for hash string, colon, and 10 digits.  Although
	// at the time of writing, the number of digits can be no greater than
	// the length of the decimal representation of maxTxOutPerMessage, the
	// maximum message payload may increase in the future and this
	// optimization may go unnoticed, so allocate space for 10 decimal
	// digits, which will fit any uint32.
	buf := make([]byte, 2*chainhash.HashSize+1, 2*chainhash.HashSize+1+10)
	copy(buf, o.Hash.String())
	buf[2*chainhash.HashSize] = ':'
	buf = strconv.AppendUint(buf, uint64(o.Index), 10)
	return string(buf)
}

// readOutPoint reads the next sequence of bytes from r as an OutPoint.
func readOutPoint(r io.Reader, op *OutPoint) error {
	return readElements(r, &op.Hash, &op.Index)
}

// writeOutPoint encodes op to the protocol encoding for an OutPoint to w.
func writeOutPoint(w io.Writer, op *OutPoint) error {
	return writeElements(w, &op.Hash, &op.Index)
}

// TxIn defines a Dash transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input.
func (t *TxIn) SerializeSize() int {
	// Outpoint Hash 32 bytes + Outpoint Index 4 bytes + Sequence 4 bytes +
	// serialized varint size for the length of SignatureScript +
	// SignatureScript bytes.
	return 40 + VarIntSerializeSize(uint64(len(t.SignatureScript))) +
		len(t.SignatureScript)
}

// TxOut defines a Dash transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction output.
func (t *TxOut) SerializeSize() int {
	// Value 8 bytes + serialized varint size for the length of PkScript +
	// PkScript bytes.
	return 8 + VarIntSerializeSize(uint64(len(t.PkScript))) + len(t.PkScript)
}

// MsgTx implements the Message interface and represents a Dash transaction.
// Transactions from version 3 onwards may be special transactions which
// carry a type and an extra payload describing a masternode or quorum
// operation.
type MsgTx struct {
	Version      uint16
	Type         TxType
	TxIn         []*TxIn
	TxOut        []*TxOut
	LockTime     uint32
	ExtraPayload []byte
}

// IsSpecial returns whether the transaction carries an extra payload.
func (msg *MsgTx) IsSpecial() bool {
	return msg.Version >= SpecialTxVersion && msg.Type != TxTypeClassic
}

// BtcDecode decodes r using the Dash protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgTx) BtcDecode(r io.Reader, pver uint32) error {
	err := readElements(r, &msg.Version, &msg.Type)
	if err != nil {
		return err
	}

	count, err := readCount(r, pver, maxTxInPerMessage, "transaction inputs")
	if err != nil {
		return err
	}
	msg.TxIn = make([]*TxIn, count)
	for i := uint64(0); i < count; i++ {
		var ti TxIn
		if err := readOutPoint(r, &ti.PreviousOutPoint); err != nil {
			return err
		}
		ti.SignatureScript, err = ReadVarBytes(r, pver, MaxMessagePayload,
			"transaction input signature script")
		if err != nil {
			return err
		}
		if err := readElement(r, &ti.Sequence); err != nil {
			return err
		}
		msg.TxIn[i] = &ti
	}

	count, err = readCount(r, pver, maxTxOutPerMessage, "transaction outputs")
	if err != nil {
		return err
	}
	msg.TxOut = make([]*TxOut, count)
	for i := uint64(0); i < count; i++ {
		var to TxOut
		if err := readElement(r, &to.Value); err != nil {
			return err
		}
		to.PkScript, err = ReadVarBytes(r, pver, MaxMessagePayload,
			"transaction output public key script")
		if err != nil {
			return err
		}
		msg.TxOut[i] = &to
	}

	if err := readElement(r, &msg.LockTime); err != nil {
		return err
	}

	msg.ExtraPayload = nil
	if msg.IsSpecial() {
		msg.ExtraPayload, err = ReadVarBytes(r, pver, MaxMessagePayload,
			"transaction extra payload")
		if err != nil {
			return err
		}
	}
	return nil
}

// Deserialize decodes a transaction from r into the receiver using a format
// that is suitable for long-term storage such as a database while respecting
// the Version field in the transaction.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	return msg.BtcDecode(r, ProtocolVersion)
}

// BtcEncode encodes the receiver to w using the Dash protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgTx) BtcEncode(w io.Writer, pver uint32) error {
	err := writeElements(w, &msg.Version, &msg.Type)
	if err != nil {
		return err
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeOutPoint(w, &ti.PreviousOutPoint); err != nil {
			return err
		}
		if err := WriteVarBytes(w, pver, ti.SignatureScript); err != nil {
			return err
		}
		if err := writeElement(w, &ti.Sequence); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeElement(w, &to.Value); err != nil {
			return err
		}
		if err := WriteVarBytes(w, pver, to.PkScript); err != nil {
			return err
		}
	}

	if err := writeElement(w, &msg.LockTime); err != nil {
		return err
	}
	if msg.IsSpecial() {
		return WriteVarBytes(w, pver, msg.ExtraPayload)
	}
	return nil
}

// Serialize encodes the transaction to w using a format that suitable for
// long-term storage such as a database while respecting the Version field in
// the transaction.
func (msg *MsgTx) Serialize(w io.Writer) error {
	return msg.BtcEncode(w, ProtocolVersion)
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction.
func (msg *MsgTx) SerializeSize() int {
	// Version 2 bytes + Type 2 bytes + LockTime 4 bytes + serialized
	// varint size for the number of transaction inputs and outputs.
	n := 8 + VarIntSerializeSize(uint64(len(msg.TxIn))) +
		VarIntSerializeSize(uint64(len(msg.TxOut)))
	for _, txIn := range msg.TxIn {
		n += txIn.SerializeSize()
	}
	for _, txOut := range msg.TxOut {
		n += txOut.SerializeSize()
	}
	if msg.IsSpecial() {
		n += VarIntSerializeSize(uint64(len(msg.ExtraPayload))) +
			len(msg.ExtraPayload)
	}
	return n
}

// Bytes returns the serialized form of the transaction in bytes.
func (msg *MsgTx) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	if err := msg.Serialize(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MsgTxFromBytes decodes a whole serialized transaction.
func MsgTxFromBytes(b []byte) (*MsgTx, error) {
	var tx MsgTx
	err := decodeExact("MsgTxFromBytes", b, func(r *bytes.Reader) error {
		return tx.Deserialize(r)
	})
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// TxHash generates the hash for the transaction.
func (msg *MsgTx) TxHash() chainhash.Hash {
	w := chainhash.NewDoubleHashWriter()
	// Serializing to the hasher can't fail.
	_ = msg.Serialize(w)
	return w.Sum256()
}

// Command returns the protocol command string for the message.  This is part
// of the Message interface implementation.
func (msg *MsgTx) Command() string {
	return CmdTx
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgTx) MaxPayloadLength(pver uint32) uint32 {
	return MaxMessagePayload
}

// Copy creates a deep copy of a transaction so that the original does not
// get modified when the copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version:  msg.Version,
		Type:     msg.Type,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}
	for _, oldTxIn := range msg.TxIn {
		newTxIn := *oldTxIn
		newTxIn.SignatureScript = bytes.Clone(oldTxIn.SignatureScript)
		newTx.TxIn = append(newTx.TxIn, &newTxIn)
	}
	for _, oldTxOut := range msg.TxOut {
		newTxOut := *oldTxOut
		newTxOut.PkScript = bytes.Clone(oldTxOut.PkScript)
		newTx.TxOut = append(newTx.TxOut, &newTxOut)
	}
	newTx.ExtraPayload = bytes.Clone(msg.ExtraPayload)
	return &newTx
}
