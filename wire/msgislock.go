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

// maxISLockInputsPerMsg is the maximum number of locked inputs that could
// possibly fit into a message.
const maxISLockInputsPerMsg = MaxMessagePayload / (chainhash.HashSize + 4)

// MsgISLock implements the Message interface and represents a Dash islock
// message.  It is an instant lock: the threshold signature of a quorum
// attesting that the listed inputs are spent by TxID.
type MsgISLock struct {
	Inputs    []OutPoint
	TxID      chainhash.Hash
	Signature [BLSSignatureSize]byte
}

// BtcDecode decodes r using the Dash protocol encoding into the receiver.
// This is part of the Message interface implementation.
func (msg *MsgISLock) BtcDecode(r io.Reader, pver uint32) error {
	count, err := readCount(r, pver, maxISLockInputsPerMsg, "locked inputs")
	if err != nil {
		return err
	}
	msg.Inputs = make([]OutPoint, count)
	for i := range msg.Inputs {
		if err := readOutPoint(r, &msg.Inputs[i]); err != nil {
			return err
		}
	}
	return readElements(r, &msg.TxID, &msg.Signature)
}

// BtcEncode encodes the receiver to w using the Dash protocol encoding.
// This is part of the Message interface implementation.
func (msg *MsgISLock) BtcEncode(w io.Writer, pver uint32) error {
	if err := msg.encodeInputs(w, pver); err != nil {
		return err
	}
	return writeElements(w, &msg.TxID, &msg.Signature)
}

// encodeInputs writes the count prefixed list of locked inputs.  It is also
// the input of the request id.
func (msg *MsgISLock) encodeInputs(w io.Writer, pver uint32) error {
	if err := WriteVarInt(w, pver, uint64(len(msg.Inputs))); err != nil {
		return err
	}
	for i := range msg.Inputs {
		if err := writeOutPoint(w, &msg.Inputs[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteInputs writes the locked inputs in their protocol encoding.
func (msg *MsgISLock) WriteInputs(w io.Writer) error {
	return msg.encodeInputs(w, ProtocolVersion)
}

// Command returns the protocol command string for the message.  This is part
// of the Message interface implementation.
func (msg *MsgISLock) Command() string {
	return CmdISLock
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the Message interface implementation.
func (msg *MsgISLock) MaxPayloadLength(pver uint32) uint32 {
	return MaxMessagePayload
}

// SerializeSize returns the number of bytes it would take to serialize the
// instant lock.
func (msg *MsgISLock) SerializeSize() int {
	return VarIntSerializeSize(uint64(len(msg.Inputs))) +
		len(msg.Inputs)*(chainhash.HashSize+4) + chainhash.HashSize +
		BLSSignatureSize
}

// Bytes returns the serialized instant lock.
func (msg *MsgISLock) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	// Writing to a bytes.Buffer can't fail.
	_ = msg.BtcEncode(buf, ProtocolVersion)
	return buf.Bytes()
}

// Hash returns the double sha256 of the serialized instant lock.
func (msg *MsgISLock) Hash() chainhash.Hash {
	w := chainhash.NewDoubleHashWriter()
	_ = msg.BtcEncode(w, ProtocolVersion)
	return w.Sum256()
}

// String returns a short description of the instant lock.
func (msg *MsgISLock) String() string {
	return fmt.Sprintf("islock(tx=%v, inputs=%d)", msg.TxID, len(msg.Inputs))
}

// MsgISLockFromBytes decodes a whole serialized instant lock.
func MsgISLockFromBytes(b []byte) (*MsgISLock, error) {
	var msg MsgISLock
	err := decodeExact("MsgISLockFromBytes", b, func(r *bytes.Reader) error {
		return msg.BtcDecode(r, ProtocolVersion)
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
