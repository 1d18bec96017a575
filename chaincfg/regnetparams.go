// Copyright (c) 2018-2023 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "github.com/dashpay/dashcore-lib/wire"

// RegNetParams returns the network parameters for the regression test network.
// This should not be confused with the public test network or the development
// networks.  The purpose of this network is primarily for unit tests and
// integration tests run against a local node, so every quorum is one of the
// three member test types.
func RegNetParams() *Params {
	return &Params{
		Name:        "regtest",
		Net:         wire.RegNet,
		DefaultPort: "19899",
		GenesisHash: *newHashFromStr("000008ca1832a4baf228eb1553c03d3a2c8e02399550dd6ea8d65cec3ef23d2e"),

		// Address encoding magics
		PubKeyHashAddrID: 0x8c, // starts with y
		ScriptHashAddrID: 0x13, // starts with 8 or 9

		LLMQSignHeightOffset: DefaultLLMQSignHeightOffset,
		LLMQs:                testLLMQs(),
	}
}
