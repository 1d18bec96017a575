// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines chain configuration parameters.
//
// In addition to the main Dash network there are the public test network,
// any number of named development networks and the local regression test
// network.  These networks are incompatible with each other and software
// should handle errors where input intended for one network is used on an
// application instance running on a different network.
//
// Parameters are plain values returned by constructor functions.  Nothing in
// this module consults a global active network: every consumer that needs
// network specific behavior, such as the masternode list or address
// decoding, takes a *Params.
//
//	package main
//
//	import (
//		"flag"
//		"fmt"
//
//		"github.com/dashpay/dashcore-lib/chaincfg"
//	)
//
//	func main() {
//		var testnet = flag.Bool("testnet", false, "operate on the test network")
//		flag.Parse()
//
//		// By default (without -testnet), use mainnet.
//		var chainParams = chaincfg.MainNetParams()
//
//		// Modify active network parameters if operating on testnet.
//		if *testnet {
//			chainParams = chaincfg.TestNetParams()
//		}
//
//		// Quorum type that signs chain locks with 3000 masternodes.
//		fmt.Println(chainParams.ChainLockLLMQType(3000))
//	}
//
// # Quorum types
//
// Each network runs a fixed set of long living masternode quorum types and
// assigns signing duties (chain locks, instant send, platform) to some of
// them.  The public test network runs the small test quorums whenever its
// masternode list holds at most SmallNetworkMNThreshold entries, so the lookups
// take the current masternode count.
package chaincfg
