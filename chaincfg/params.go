// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
	"github.com/dashpay/dashcore-lib/wire"
)

// DefaultLLMQSignHeightOffset is the number of blocks a signing quorum is
// selected below the height of the signed message.
const DefaultLLMQSignHeightOffset = 8

// LLMQConfig groups the quorum types a network runs and which of them serve
// the specific signing duties.
type LLMQConfig struct {
	// Types lists every quorum type that is active on the network.
	Types []wire.LLMQType

	// ChainLocks is the quorum type that signs chain locks.
	ChainLocks wire.LLMQType

	// InstantSend is the quorum type that signs instant send locks.
	InstantSend wire.LLMQType

	// Platform is the quorum type that validates platform blocks.
	Platform wire.LLMQType
}

// HasType returns whether t is one of the active quorum types of the config.
func (c *LLMQConfig) HasType(t wire.LLMQType) bool {
	for _, typ := range c.Types {
		if typ == t {
			return true
		}
	}
	return false
}

// Params defines a Dash network by its parameters.  These parameters may be
// used by Dash applications to differentiate networks as well as addresses
// and quorums for one network from those intended for use on another network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network.
	Net wire.CurrencyNet

	// DefaultPort defines the default peer-to-peer port for the network.
	DefaultPort string

	// GenesisHash is the starting block hash.  It is left zero for devnets
	// since their genesis depends on the devnet name.
	GenesisHash chainhash.Hash

	// Address encoding magics.
	PubKeyHashAddrID byte
	ScriptHashAddrID byte

	// LLMQSignHeightOffset is the number of blocks below the signed height
	// at which the signing quorum of a lock is selected.
	LLMQSignHeightOffset uint32

	// LLMQs holds the quorum types of the network.
	LLMQs LLMQConfig

	// SmallNetworkLLMQs, when set, replaces LLMQs while the masternode list
	// holds at most SmallNetworkMNThreshold masternodes.  Test networks
	// that are temporarily short on masternodes run the small test quorums
	// instead.
	SmallNetworkLLMQs       *LLMQConfig
	SmallNetworkMNThreshold int
}

// LLMQConfig returns the quorum configuration in effect for a masternode
// list of mnCount masternodes.
func (p *Params) LLMQConfig(mnCount int) *LLMQConfig {
	if p.SmallNetworkLLMQs != nil && mnCount <= p.SmallNetworkMNThreshold {
		return p.SmallNetworkLLMQs
	}
	return &p.LLMQs
}

// LLMQTypes returns the quorum types active for a masternode list of mnCount
// masternodes.
func (p *Params) LLMQTypes(mnCount int) []wire.LLMQType {
	types := p.LLMQConfig(mnCount).Types
	return append([]wire.LLMQType(nil), types...)
}

// ChainLockLLMQType returns the quorum type that signs chain locks for a
// masternode list of mnCount masternodes.
func (p *Params) ChainLockLLMQType(mnCount int) wire.LLMQType {
	return p.LLMQConfig(mnCount).ChainLocks
}

// InstantSendLLMQType returns the quorum type that signs instant send locks
// for a masternode list of mnCount masternodes.
func (p *Params) InstantSendLLMQType(mnCount int) wire.LLMQType {
	return p.LLMQConfig(mnCount).InstantSend
}

// ValidatorLLMQType returns the quorum type of the platform validator set for
// a masternode list of mnCount masternodes.
func (p *Params) ValidatorLLMQType(mnCount int) wire.LLMQType {
	return p.LLMQConfig(mnCount).Platform
}

// testLLMQs is the quorum configuration of the local test networks.
func testLLMQs() LLMQConfig {
	return LLMQConfig{
		Types: []wire.LLMQType{
			wire.LLMQTypeTest,
			wire.LLMQTypeTestInstantSend,
			wire.LLMQTypeTestV17,
			wire.LLMQTypeTestDIP0024,
			wire.LLMQTypeTestPlatform,
		},
		ChainLocks:  wire.LLMQTypeTest,
		InstantSend: wire.LLMQTypeTestDIP0024,
		Platform:    wire.LLMQTypeTestPlatform,
	}
}

// newHashFromStr converts the passed big-endian hex string into a
// chainhash.Hash.  It only differs from the one available in chainhash in that
// it panics on an error since it will only (and must only) be called with
// hard-coded, and therefore known good, hashes.
func newHashFromStr(hexStr string) *chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(hexStr)
	if err != nil {
		panic(err)
	}
	return hash
}
