// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package locks

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"net/netip"
	"sort"
	"testing"

	"github.com/dashpay/dashcore-lib/blockchain/standalone"
	"github.com/dashpay/dashcore-lib/chaincfg"
	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
	"github.com/dashpay/dashcore-lib/crypto/bls"
	"github.com/dashpay/dashcore-lib/mnlist"
	"github.com/dashpay/dashcore-lib/mnlist/store"
	"github.com/dashpay/dashcore-lib/wire"
	"github.com/jrick/bitset"
)

// hexToBytes converts the passed hex string into bytes and will panic if there
// is an error.  This is only provided for the hard-coded constants so errors in
// the source code can be detected.  It will only (and must only) be called with
// hard-coded values.
func hexToBytes(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("invalid hex in source file: " + s)
	}
	return b
}

// testBlockHash returns the hash used for the test block at height.
func testBlockHash(height uint32) chainhash.Hash {
	return chainhash.HashH([]byte(fmt.Sprintf("block %d", height)))
}

// testQuorum returns a quorum of type t formed at the test block at height and
// keyed by the returned secret key.
func testQuorum(t wire.LLMQType, height uint32) (*wire.QuorumEntry, *bls.SecretKey) {
	params, _ := t.Params()
	sk := bls.NewSecretKey([]byte(fmt.Sprintf("quorum %d %d", t, height)))
	q := &wire.QuorumEntry{
		Version:           1,
		LLMQType:          t,
		QuorumHash:        testBlockHash(height),
		SignersCount:      uint64(params.Size),
		ValidMembersCount: uint64(params.Size),
		QuorumPublicKey:   sk.PublicKey(),
		Commitment: &wire.QuorumCommitment{
			Signers:        bitset.NewBytes(params.Size),
			ValidMembers:   bitset.NewBytes(params.Size),
			QuorumVvecHash: chainhash.HashH([]byte{byte(t), byte(height)}),
		},
	}
	for i := 0; i < params.Size; i++ {
		q.Commitment.Signers.Set(i)
		q.Commitment.ValidMembers.Set(i)
	}
	return q, sk
}

// quorumChanges describes the quorums a block removes and forms.
type quorumChanges struct {
	del []*wire.QuorumEntry
	add []*wire.QuorumEntry
}

// testEntry returns a valid legacy masternode list entry derived from i.
func testEntry(i uint32) *wire.MnListEntry {
	e := &wire.MnListEntry{
		ProRegTxHash: chainhash.HashH([]byte(fmt.Sprintf("mn %d", i))),
		Service: netip.AddrPortFrom(netip.AddrFrom4([4]byte{10, 0, 0,
			byte(i)}), 19999),
		IsValid: true,
	}
	e.PubKeyOperator[0] = byte(i)
	return e
}

// buildDiffs returns the diffs of a regression test chain of n blocks where
// every block registers one masternode and applies the quorum changes
// scheduled for it.
func buildDiffs(t *testing.T, n uint32, schedule map[uint32]quorumChanges) []*wire.MsgMnListDiff {
	t.Helper()
	var entries []*wire.MnListEntry
	quorums := make(map[wire.QuorumKey]chainhash.Hash)
	diffs := make([]*wire.MsgMnListDiff, 0, n)
	for h := uint32(1); h <= n; h++ {
		diff := &wire.MsgMnListDiff{BlockHash: testBlockHash(h)}
		if h > 1 {
			diff.BaseBlockHash = testBlockHash(h - 1)
		}
		entry := testEntry(h)
		diff.MNList = []*wire.MnListEntry{entry}
		entries = append(entries, entry)
		mnRoot, err := mnlist.CalcEntriesMerkleRoot(entries)
		if err != nil {
			t.Fatalf("unable to calculate masternode list root: %v", err)
		}

		changes := schedule[h]
		for _, q := range changes.del {
			key := wire.QuorumKey{LLMQType: q.LLMQType, QuorumHash: q.QuorumHash}
			diff.DeletedQuorums = append(diff.DeletedQuorums, key)
			delete(quorums, key)
		}
		for _, q := range changes.add {
			hash, err := q.Hash()
			if err != nil {
				t.Fatalf("unable to hash quorum: %v", err)
			}
			key := wire.QuorumKey{LLMQType: q.LLMQType, QuorumHash: q.QuorumHash}
			quorums[key] = hash
			diff.NewQuorums = append(diff.NewQuorums, q)
		}

		tx := wire.NewCoinbaseTx(&wire.CbTx{
			Version:           2,
			Height:            h,
			MerkleRootMNList:  mnRoot,
			MerkleRootQuorums: quorumsRoot(quorums),
		})
		diff.CbTx = *tx
		diffs = append(diffs, diff)
	}
	return diffs
}

// quorumsRoot returns the merkle root over the passed quorum hashes ordered by
// their bytes.
func quorumsRoot(quorums map[wire.QuorumKey]chainhash.Hash) chainhash.Hash {
	leaves := make([]chainhash.Hash, 0, len(quorums))
	for _, hash := range quorums {
		leaves = append(leaves, hash)
	}
	sort.Slice(leaves, func(i, j int) bool {
		return bytes.Compare(leaves[i][:], leaves[j][:]) < 0
	})
	return standalone.CalcMerkleRoot(leaves)
}

// recordingSource is a list source that records the heights of the lists it
// hands out.
type recordingSource struct {
	*store.Store
	heights []uint32
}

func (s *recordingSource) MnListByHeight(height uint32) (*mnlist.MnList, error) {
	s.heights = append(s.heights, height)
	return s.Store.MnListByHeight(height)
}

// lockHarness is a regression test store of 20 blocks with the following
// quorums:
//
//	chain lock quorum a      formed at block 1, active from block 2 to 15
//	chain lock quorum b      formed at block 9, active from block 10
//	chain lock quorum c      formed at block 15, active from block 16
//	instant send quorum i    formed at block 1, active from block 2
type lockHarness struct {
	store *store.Store
	keys  map[wire.QuorumKey]*bls.SecretKey
}

func newLockHarness(t *testing.T) *lockHarness {
	t.Helper()
	h := &lockHarness{keys: make(map[wire.QuorumKey]*bls.SecretKey)}
	quorum := func(typ wire.LLMQType, height uint32) *wire.QuorumEntry {
		q, sk := testQuorum(typ, height)
		h.keys[wire.QuorumKey{LLMQType: typ, QuorumHash: q.QuorumHash}] = sk
		return q
	}
	qa := quorum(wire.LLMQTypeTest, 1)
	qi := quorum(wire.LLMQTypeTestDIP0024, 1)
	qb := quorum(wire.LLMQTypeTest, 9)
	qc := quorum(wire.LLMQTypeTest, 15)
	diffs := buildDiffs(t, 20, map[uint32]quorumChanges{
		2:  {add: []*wire.QuorumEntry{qa, qi}},
		10: {add: []*wire.QuorumEntry{qb}},
		16: {del: []*wire.QuorumEntry{qa}, add: []*wire.QuorumEntry{qc}},
	})

	s, err := store.New(&store.Config{Params: chaincfg.RegNetParams()},
		diffs...)
	if err != nil {
		t.Fatalf("unable to create store: %v", err)
	}
	h.store = s
	return h
}

// sign returns the signature of the quorum with the passed key over the
// answer msgHash to the request.
func (h *lockHarness) sign(t *testing.T, key wire.QuorumKey, requestID, msgHash chainhash.Hash) [bls.SignatureSize]byte {
	t.Helper()
	sk, ok := h.keys[key]
	if !ok {
		t.Fatalf("no key for quorum %v", key)
	}
	signHash := SignHash(key.LLMQType, key.QuorumHash, requestID, msgHash)
	sig, err := sk.Sign(signHash[:])
	if err != nil {
		t.Fatalf("unable to sign: %v", err)
	}
	return sig
}

// selected returns the key of the quorum selected for the request at the
// passed height and offset.
func (h *lockHarness) selected(t *testing.T, kind Kind, requestID chainhash.Hash, height, offset uint32) wire.QuorumKey {
	t.Helper()
	q, err := SelectSignatoryQuorum(h.store, kind, requestID, height, offset)
	if err != nil {
		t.Fatalf("unable to select quorum at height %d offset %d: %v",
			height, offset, err)
	}
	return wire.QuorumKey{LLMQType: q.LLMQType, QuorumHash: q.QuorumHash}
}
