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

// MsgCLSigPayloadSize is the size of a serialized clsig message: height 4
// bytes + block hash 32 bytes + signature 96 bytes.
const MsgCLSigPayloadSize = 4 + chainhash.HashSize + BLSSignatureSize

// MsgCLSig implements the Message interface and represents a Dash clsig
// message.  It is a chain lock: the threshold signature of a quorum attesting
// that the block at Height is BlockHash.
type MsgCLSig struct {
	Height    int32
	BlockHash chainhash.Hash
	Signature [BLSSignatureSize]byte
}

// NewMsgCLSig returns a new clsig message that conforms to the Message
// interface using the passed parameters.
func NewMsgCLSig(height int32, blockHash *chainhash.Hash, sig *[BLSSignatureSize]byte) *MsgCLSig {
	return &MsgCLSig{
		Height:    height,
		BlockHash: *blockHash,
		Signature: *sig,
	}
}

// BtcDecode decodes r using the Dash protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgCLSig) BtcDecode(r io.Reader, pver uint32) error {
	return readElements(r, &msg.Height, &msg.BlockHash, &msg.Signature)
}

// BtcEncode encodes the receiver to w using the Dash protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgCLSig) BtcEncode(w io.Writer, pver uint32) error {
	return writeElements(w, &msg.Height, &msg.BlockHash, &msg.Signature)
}

// Command returns the protocol command string for the message.  This is part
// of the Message interface implementation.
func (msg *MsgCLSig) Command() string {
	return CmdCLSig
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgCLSig) MaxPayloadLength(pver uint32) uint32 {
	return MsgCLSigPayloadSize
}

// Bytes returns the serialized chain lock.
func (msg *MsgCLSig) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, MsgCLSigPayloadSize))
	// Writing to a bytes.Buffer can't fail.
	_ = msg.BtcEncode(buf, ProtocolVersion)
	return buf.Bytes()
}

// Hash returns the double sha256 of the serialized chain lock.
func (msg *MsgCLSig) Hash() chainhash.Hash {
	w := chainhash.NewDoubleHashWriter()
	_ = msg.BtcEncode(w, ProtocolVersion)
	return w.Sum256()
}

// String returns a short description of the chain lock.
func (msg *MsgCLSig) String() string {
	return fmt.Sprintf("clsig(height=%d, block=%v)", msg.Height, msg.BlockHash)
}

// MsgCLSigFromBytes decodes a whole serialized chain lock.
func MsgCLSigFromBytes(b []byte) (*MsgCLSig, error) {
	var msg MsgCLSig
	err := decodeExact("MsgCLSigFromBytes", b, func(r *bytes.Reader) error {
		return msg.BtcDecode(r, ProtocolVersion)
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
