// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "fmt"

const (
	// InitialProtocolVersion is the initial protocol version for the
	// masternode list messages.
	InitialProtocolVersion uint32 = 70213

	// ProtocolVersion is the latest protocol version this package supports.
	ProtocolVersion uint32 = 70228

	// MnListDiffQuorumsVersion is the protocol version which adds the
	// deleted and new quorum lists to the mnlistdiff message.
	MnListDiffQuorumsVersion uint32 = 70214

	// MnListEntryTypeVersion is the protocol version which adds the trailing
	// masternode type discriminator (and the platform fields of high
	// performance masternodes) to every masternode list entry carried by a
	// mnlistdiff message.
	MnListEntryTypeVersion uint32 = 70227
)

const (
	// MaxMessagePayload is the maximum bytes a message can be regardless of
	// other individual limits imposed by messages themselves.
	MaxMessagePayload = (1024 * 1024 * 32) // 32MB

	// BLSPubKeySize is the size of a serialized BLS12-381 public key.
	BLSPubKeySize = 48

	// BLSSignatureSize is the size of a serialized BLS12-381 signature.
	BLSSignatureSize = 96

	// KeyIDSize is the size of a public key hash.
	KeyIDSize = 20
)

// Command strings of the messages this package encodes.
const (
	CmdTx         = "tx"
	CmdMnListDiff = "mnlistdiff"
	CmdCLSig      = "clsig"
	CmdISLock     = "islock"
)

// CurrencyNet represents which Dash network a message belongs to.
type CurrencyNet uint32

// Constants used to indicate the message Dash network.  They can also be
// used to seek to the next message when a stream's state is unknown, but
// this package does not provide that functionality since it's generally a
// better idea to simply disconnect clients that are misbehaving over TCP.
const (
	// MainNet represents the main Dash network.
	MainNet CurrencyNet = 0xbd6b0cbf

	// TestNet represents the public Dash test network.
	TestNet CurrencyNet = 0xffcae2ce

	// DevNet represents the Dash development networks.
	DevNet CurrencyNet = 0xceffcae2

	// RegNet represents the Dash regression test network.
	RegNet CurrencyNet = 0xdab5bffc
)

// cnStrings is a map of Dash networks back to their constant names for
// pretty printing.
var cnStrings = map[CurrencyNet]string{
	MainNet: "MainNet",
	TestNet: "TestNet",
	DevNet:  "DevNet",
	RegNet:  "RegNet",
}

// String returns the CurrencyNet in human-readable form.
func (n CurrencyNet) String() string {
	if s, ok := cnStrings[n]; ok {
		return s
	}

	return fmt.Sprintf("Unknown CurrencyNet (%d)", uint32(n))
}
