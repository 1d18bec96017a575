// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "fmt"

// LLMQType identifies a long living masternode quorum type.  The type fixes
// the committee size, the signing threshold and how many quorums of the type
// may be active at once.
type LLMQType uint8

// These constants define the known quorum types.
const (
	LLMQType50_60           LLMQType = 1
	LLMQType400_60          LLMQType = 2
	LLMQType400_85          LLMQType = 3
	LLMQType100_67          LLMQType = 4
	LLMQType60_75           LLMQType = 5
	LLMQType25_67           LLMQType = 6
	LLMQTypeTest            LLMQType = 100
	LLMQTypeDevnet          LLMQType = 101
	LLMQTypeTestV17         LLMQType = 102
	LLMQTypeTestDIP0024     LLMQType = 103
	LLMQTypeTestInstantSend LLMQType = 104
	LLMQTypeDevnetDIP0024   LLMQType = 105
	LLMQTypeTestPlatform    LLMQType = 106
	LLMQTypeDevnetPlatform  LLMQType = 107
)

// LLMQParams houses the consensus parameters of a quorum type.
type LLMQParams struct {
	Type LLMQType
	Name string

	// Size is the number of members of a quorum of this type.  It also fixes
	// the bit length of the signer and valid member bitsets.
	Size int

	// Threshold is the minimum number of members needed to recover a
	// threshold signature.
	Threshold int

	// MaxActiveQuorums is the maximum number of quorums of this type that
	// can be part of a masternode list at the same time.
	MaxActiveQuorums int
}

// BitsetSize returns the number of bytes used to serialize a member bitset of
// a quorum of this type.
func (p *LLMQParams) BitsetSize() int {
	n := (p.Size + 7) / 8
	if n == 0 {
		return 1
	}
	return n
}

// llmqParams is the table of every quorum type known to the protocol.
var llmqParams = map[LLMQType]LLMQParams{
	LLMQType50_60:           {LLMQType50_60, "llmq_50_60", 50, 30, 24},
	LLMQType400_60:          {LLMQType400_60, "llmq_400_60", 400, 240, 4},
	LLMQType400_85:          {LLMQType400_85, "llmq_400_85", 400, 340, 4},
	LLMQType100_67:          {LLMQType100_67, "llmq_100_67", 100, 67, 24},
	LLMQType60_75:           {LLMQType60_75, "llmq_60_75", 60, 45, 32},
	LLMQType25_67:           {LLMQType25_67, "llmq_25_67", 25, 17, 24},
	LLMQTypeTest:            {LLMQTypeTest, "llmq_test", 3, 2, 2},
	LLMQTypeDevnet:          {LLMQTypeDevnet, "llmq_devnet", 12, 6, 4},
	LLMQTypeTestV17:         {LLMQTypeTestV17, "llmq_test_v17", 3, 2, 2},
	LLMQTypeTestDIP0024:     {LLMQTypeTestDIP0024, "llmq_test_dip0024", 4, 2, 2},
	LLMQTypeTestInstantSend: {LLMQTypeTestInstantSend, "llmq_test_instantsend", 3, 2, 2},
	LLMQTypeDevnetDIP0024:   {LLMQTypeDevnetDIP0024, "llmq_devnet_dip0024", 8, 4, 2},
	LLMQTypeTestPlatform:    {LLMQTypeTestPlatform, "llmq_test_platform", 3, 2, 2},
	LLMQTypeDevnetPlatform:  {LLMQTypeDevnetPlatform, "llmq_devnet_platform", 12, 8, 4},
}

// Params returns the consensus parameters of the quorum type and whether the
// type is known.
func (t LLMQType) Params() (LLMQParams, bool) {
	p, ok := llmqParams[t]
	return p, ok
}

// String returns the name of the quorum type.
func (t LLMQType) String() string {
	if p, ok := llmqParams[t]; ok {
		return p.Name
	}
	return fmt.Sprintf("Unknown LLMQType (%d)", uint8(t))
}

// lookupLLMQ returns the parameters of the quorum type or an
// ErrUnknownLLMQType error attributed to op.
func lookupLLMQ(op string, t LLMQType) (LLMQParams, error) {
	p, ok := llmqParams[t]
	if !ok {
		msg := fmt.Sprintf("invalid llmq type %d", uint8(t))
		return LLMQParams{}, messageError(op, ErrUnknownLLMQType, msg)
	}
	return p, nil
}

// IsQuorumIndexRequired returns whether a quorum commitment of the given
// version carries the quorum index used by rotated quorums.
func IsQuorumIndexRequired(version uint16) bool {
	return version == 2 || version == 4
}
