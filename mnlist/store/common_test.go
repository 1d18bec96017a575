// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"fmt"
	"net/netip"
	"sort"
	"testing"

	"github.com/dashpay/dashcore-lib/blockchain/standalone"
	"github.com/dashpay/dashcore-lib/chaincfg"
	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
	"github.com/dashpay/dashcore-lib/mnlist"
	"github.com/dashpay/dashcore-lib/wire"
	"github.com/jrick/bitset"
	"github.com/syndtr/goleveldb/leveldb"
)

// testBlockHash returns the hash used for the test block at height.
func testBlockHash(height uint32) chainhash.Hash {
	return chainhash.HashH([]byte(fmt.Sprintf("block %d", height)))
}

// testEntry returns a valid legacy masternode list entry derived from i.
func testEntry(i uint32) *wire.MnListEntry {
	e := &wire.MnListEntry{
		ProRegTxHash:  chainhash.HashH([]byte(fmt.Sprintf("mn %d", i))),
		ConfirmedHash: chainhash.HashH([]byte(fmt.Sprintf("confirmed %d", i))),
		Service: netip.AddrPortFrom(netip.AddrFrom4([4]byte{10, 0,
			byte(i >> 8), byte(i)}), 19999),
		IsValid: true,
	}
	e.PubKeyOperator[0] = byte(i)
	copy(e.KeyIDVoting[:], e.ProRegTxHash[:wire.KeyIDSize])
	return e
}

// testQuorum returns a quorum of the test type formed at the test block at
// height.
func testQuorum(height uint32) *wire.QuorumEntry {
	params, _ := wire.LLMQTypeTest.Params()
	q := &wire.QuorumEntry{
		Version:           1,
		LLMQType:          wire.LLMQTypeTest,
		QuorumHash:        testBlockHash(height),
		SignersCount:      uint64(params.Size),
		ValidMembersCount: uint64(params.Size),
		Commitment: &wire.QuorumCommitment{
			Signers:        bitset.NewBytes(params.Size),
			ValidMembers:   bitset.NewBytes(params.Size),
			QuorumVvecHash: chainhash.HashH([]byte{byte(height)}),
		},
	}
	for i := 0; i < params.Size; i++ {
		q.Commitment.Signers.Set(i)
		q.Commitment.ValidMembers.Set(i)
	}
	q.QuorumPublicKey[0] = byte(height)
	return q
}

// testChain produces chained masternode list diffs.  The diff for block h
// registers masternode h, revokes masternode h-3 when h is a multiple of 4 and
// forms a quorum when h is a multiple of 5.  At most two quorums are kept
// active.
type testChain struct {
	t       *testing.T
	diffs   []*wire.MsgMnListDiff
	entries map[chainhash.Hash]*wire.MnListEntry
	quorums []*wire.QuorumEntry
}

// newTestChain returns a chain with diffs for the blocks at heights 1 through
// n.
func newTestChain(t *testing.T, n uint32) *testChain {
	t.Helper()
	c := &testChain{
		t:       t,
		entries: make(map[chainhash.Hash]*wire.MnListEntry),
	}
	for h := uint32(1); h <= n; h++ {
		c.diffs = append(c.diffs, c.nextDiff(h))
	}
	return c
}

// diff returns the diff for the block at height.
func (c *testChain) diff(height uint32) *wire.MsgMnListDiff {
	return c.diffs[height-1]
}

// nextDiff generates the diff for the block at height and advances the chain
// state.
func (c *testChain) nextDiff(height uint32) *wire.MsgMnListDiff {
	c.t.Helper()
	diff := &wire.MsgMnListDiff{
		BlockHash: testBlockHash(height),
	}
	if height > 1 {
		diff.BaseBlockHash = testBlockHash(height - 1)
	}

	entry := testEntry(height)
	diff.MNList = append(diff.MNList, entry)
	c.entries[entry.ProRegTxHash] = entry
	if height%4 == 0 {
		revoked := testEntry(height - 3).ProRegTxHash
		diff.DeletedMNs = append(diff.DeletedMNs, revoked)
		delete(c.entries, revoked)
	}
	if height%5 == 0 {
		if len(c.quorums) == 2 {
			oldest := c.quorums[0]
			diff.DeletedQuorums = append(diff.DeletedQuorums, wire.QuorumKey{
				LLMQType:   oldest.LLMQType,
				QuorumHash: oldest.QuorumHash,
			})
			c.quorums = c.quorums[1:]
		}
		q := testQuorum(height)
		diff.NewQuorums = append(diff.NewQuorums, q)
		c.quorums = append(c.quorums, q)
	}

	payload := &wire.CbTx{
		Version:           2,
		Height:            height,
		MerkleRootMNList:  c.entriesRoot(),
		MerkleRootQuorums: c.quorumsRoot(),
	}
	setCbTx(diff, payload)
	return diff
}

// setCbTx replaces the coinbase of the diff by a coinbase special transaction
// with the passed payload and proves it with a partial merkle tree.
func setCbTx(diff *wire.MsgMnListDiff, payload *wire.CbTx) {
	tx := wire.NewCoinbaseTx(payload)
	leaves := []chainhash.Hash{tx.TxHash(), chainhash.HashH([]byte("other"))}
	tree := standalone.BuildPartialMerkleTree(leaves, []bool{true, false})
	diff.CbTx = *tx
	diff.CbTxMerkleTree = *tree
}

func (c *testChain) entriesRoot() chainhash.Hash {
	c.t.Helper()
	entries := make([]*wire.MnListEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	root, err := mnlist.CalcEntriesMerkleRoot(entries)
	if err != nil {
		c.t.Fatalf("unable to calculate masternode list root: %v", err)
	}
	return root
}

func (c *testChain) quorumsRoot() chainhash.Hash {
	c.t.Helper()
	leaves := make([]chainhash.Hash, 0, len(c.quorums))
	for _, q := range c.quorums {
		hash, err := q.Hash()
		if err != nil {
			c.t.Fatalf("unable to hash quorum %v: %v", q, err)
		}
		leaves = append(leaves, hash)
	}
	sort.Slice(leaves, func(i, j int) bool {
		return bytes.Compare(leaves[i][:], leaves[j][:]) < 0
	})
	return standalone.CalcMerkleRoot(leaves)
}

// buildList returns the list at height built directly from the chain diffs.
func (c *testChain) buildList(height uint32) *mnlist.MnList {
	c.t.Helper()
	l := mnlist.New(chaincfg.RegNetParams(), nil)
	for h := uint32(1); h <= height; h++ {
		if err := l.ApplyDiff(c.diff(h)); err != nil {
			c.t.Fatalf("unable to apply diff for height %d: %v", h, err)
		}
	}
	return l
}

// openTestDB opens a database in a temporary directory that is closed when
// the test finishes.
func openTestDB(t *testing.T) *leveldb.DB {
	t.Helper()
	db, err := OpenDB(t.TempDir())
	if err != nil {
		t.Fatalf("unable to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// assertList ensures the passed list is the one at height built directly from
// the chain diffs.
func assertList(t *testing.T, c *testChain, got *mnlist.MnList, height uint32) {
	t.Helper()
	want := c.buildList(height)
	if got.Height() != want.Height() || got.BlockHash() != want.BlockHash() {
		t.Fatalf("got list at height %d (block %v), want height %d "+
			"(block %v)", got.Height(), got.BlockHash(), want.Height(),
			want.BlockHash())
	}
	if got.MerkleRootMNList() != want.MerkleRootMNList() {
		t.Fatalf("list at height %d: masternode root %v, want %v", height,
			got.MerkleRootMNList(), want.MerkleRootMNList())
	}
	if got.Len() != want.Len() {
		t.Fatalf("list at height %d: %d entries, want %d", height,
			got.Len(), want.Len())
	}
	gotRoot, err := got.CalcMerkleRootQuorums()
	if err != nil {
		t.Fatalf("unable to calculate quorum root: %v", err)
	}
	if gotRoot != want.MerkleRootQuorums() {
		t.Fatalf("list at height %d: quorum root %v, want %v", height,
			gotRoot, want.MerkleRootQuorums())
	}
}
