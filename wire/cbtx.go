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

// CbTx is the extra payload of a coinbase special transaction.  It commits
// the block to the masternode list and, from version 2, to the active quorum
// list.
type CbTx struct {
	Version          uint16
	Height           uint32
	MerkleRootMNList chainhash.Hash

	// Only present from version 2.
	MerkleRootQuorums chainhash.Hash

	// Only present from version 3.
	BestCLHeightDiff  uint64
	BestCLSignature   [BLSSignatureSize]byte
	CreditPoolBalance int64
}

// BtcDecode decodes the payload from r.
func (p *CbTx) BtcDecode(r io.Reader, pver uint32) error {
	err := readElements(r, &p.Version, &p.Height, &p.MerkleRootMNList)
	if err != nil {
		return err
	}
	if p.Version < 2 {
		return nil
	}
	if err := readElement(r, &p.MerkleRootQuorums); err != nil {
		return err
	}
	if p.Version < 3 {
		return nil
	}
	p.BestCLHeightDiff, err = ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	return readElements(r, &p.BestCLSignature, &p.CreditPoolBalance)
}

// BtcEncode encodes the payload to w.
func (p *CbTx) BtcEncode(w io.Writer, pver uint32) error {
	err := writeElements(w, &p.Version, &p.Height, &p.MerkleRootMNList)
	if err != nil {
		return err
	}
	if p.Version < 2 {
		return nil
	}
	if err := writeElement(w, &p.MerkleRootQuorums); err != nil {
		return err
	}
	if p.Version < 3 {
		return nil
	}
	if err := WriteVarInt(w, pver, p.BestCLHeightDiff); err != nil {
		return err
	}
	return writeElements(w, &p.BestCLSignature, &p.CreditPoolBalance)
}

// Bytes returns the serialized payload.
func (p *CbTx) Bytes() []byte {
	var buf bytes.Buffer
	// Writing to a bytes.Buffer can't fail.
	_ = p.BtcEncode(&buf, ProtocolVersion)
	return buf.Bytes()
}

// CbTx decodes the extra payload of a coinbase special transaction.
func (msg *MsgTx) CbTx() (*CbTx, error) {
	const op = "MsgTx.CbTx"
	if !msg.IsSpecial() || msg.Type != TxTypeCoinbase {
		str := fmt.Sprintf("transaction of type %v version %d is not a "+
			"coinbase special transaction", msg.Type, msg.Version)
		return nil, messageError(op, ErrUnknownTxType, str)
	}

	var payload CbTx
	err := decodeExact(op, msg.ExtraPayload, func(r *bytes.Reader) error {
		return payload.BtcDecode(r, ProtocolVersion)
	})
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

// NewCoinbaseTx returns a coinbase special transaction carrying the provided
// payload.  It is mostly useful for constructing masternode list diffs.
func NewCoinbaseTx(payload *CbTx) *MsgTx {
	return &MsgTx{
		Version: SpecialTxVersion,
		Type:    TxTypeCoinbase,
		TxIn: []*TxIn{{
			PreviousOutPoint: OutPoint{Index: MaxPrevOutIndex},
			SignatureScript:  []byte{0x01, byte(payload.Height)},
			Sequence:         MaxPrevOutIndex,
		}},
		TxOut:        []*TxOut{},
		ExtraPayload: payload.Bytes(),
	}
}
