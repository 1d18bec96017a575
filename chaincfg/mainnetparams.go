// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "github.com/dashpay/dashcore-lib/wire"

// MainNetParams returns the network parameters for the main Dash network.
func MainNetParams() *Params {
	return &Params{
		Name:        "mainnet",
		Net:         wire.MainNet,
		DefaultPort: "9999",
		GenesisHash: *newHashFromStr("00000ffd590b1485b3caadc19b22e6379c733355108f107a430458cdf3407ab6"),

		// Address encoding magics
		PubKeyHashAddrID: 0x4c, // starts with X
		ScriptHashAddrID: 0x10, // starts with 7

		LLMQSignHeightOffset: DefaultLLMQSignHeightOffset,
		LLMQs: LLMQConfig{
			Types: []wire.LLMQType{
				wire.LLMQType50_60,
				wire.LLMQType60_75,
				wire.LLMQType400_60,
				wire.LLMQType400_85,
				wire.LLMQType100_67,
			},
			ChainLocks:  wire.LLMQType400_60,
			InstantSend: wire.LLMQType60_75,
			Platform:    wire.LLMQType100_67,
		},
	}
}
