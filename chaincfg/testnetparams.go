// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "github.com/dashpay/dashcore-lib/wire"

// TestNetParams returns the network parameters for the public Dash test
// network.
//
// The test network falls back to the local test quorums while its masternode
// list holds no more than SmallNetworkMNThreshold entries, which is how
// freshly reset test networks run before enough masternodes registered.
func TestNetParams() *Params {
	small := testLLMQs()
	return &Params{
		Name:        "testnet3",
		Net:         wire.TestNet,
		DefaultPort: "19999",
		GenesisHash: *newHashFromStr("00000bafbc94add76cb75e2ec92894837288a481e5c005f6563d91623bf8bc2c"),

		// Address encoding magics
		PubKeyHashAddrID: 0x8c, // starts with y
		ScriptHashAddrID: 0x13, // starts with 8 or 9

		LLMQSignHeightOffset: DefaultLLMQSignHeightOffset,
		LLMQs: LLMQConfig{
			Types: []wire.LLMQType{
				wire.LLMQType50_60,
				wire.LLMQType60_75,
				wire.LLMQType400_60,
				wire.LLMQType400_85,
				wire.LLMQType25_67,
			},
			ChainLocks:  wire.LLMQType50_60,
			InstantSend: wire.LLMQType60_75,
			Platform:    wire.LLMQType25_67,
		},
		SmallNetworkLLMQs:       &small,
		SmallNetworkMNThreshold: 100,
	}
}

// DevNetParams returns the network parameters for the named Dash development
// network.
func DevNetParams(name string) *Params {
	return &Params{
		Name:        "devnet-" + name,
		Net:         wire.DevNet,
		DefaultPort: "19799",

		// Address encoding magics
		PubKeyHashAddrID: 0x8c, // starts with y
		ScriptHashAddrID: 0x13, // starts with 8 or 9

		LLMQSignHeightOffset: DefaultLLMQSignHeightOffset,
		LLMQs: LLMQConfig{
			Types: []wire.LLMQType{
				wire.LLMQType50_60,
				wire.LLMQType60_75,
				wire.LLMQType400_60,
				wire.LLMQType400_85,
				wire.LLMQTypeDevnet,
				wire.LLMQTypeDevnetDIP0024,
				wire.LLMQTypeDevnetPlatform,
			},
			ChainLocks:  wire.LLMQTypeDevnet,
			InstantSend: wire.LLMQTypeDevnetDIP0024,
			Platform:    wire.LLMQTypeDevnetPlatform,
		},
	}
}
