// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnlist

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"net/netip"
	"sort"
	"testing"

	"github.com/dashpay/dashcore-lib/blockchain/standalone"
	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
	"github.com/dashpay/dashcore-lib/crypto/bls"
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

// hashFromStr converts the passed display hex string into a hash and will
// panic if there is an error.  It must only be called with hard-coded values.
func hashFromStr(s string) chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(s)
	if err != nil {
		panic("invalid hash in source file: " + s)
	}
	return *hash
}

// testBlockHash returns the hash used for the test block at height.
func testBlockHash(height uint32) chainhash.Hash {
	return chainhash.HashH([]byte(fmt.Sprintf("block %d", height)))
}

// testEntry returns a valid, confirmed legacy masternode list entry derived
// from i.  The operator key is the public key of sk when it is not nil.
func testEntry(i int, sk *bls.SecretKey) *wire.MnListEntry {
	e := &wire.MnListEntry{
		ProRegTxHash:  chainhash.HashH([]byte(fmt.Sprintf("mn %d", i))),
		ConfirmedHash: chainhash.HashH([]byte(fmt.Sprintf("confirmed %d", i))),
		Service: netip.AddrPortFrom(netip.AddrFrom4([4]byte{10, 0, 0,
			byte(i)}), 19999),
		IsValid: true,
	}
	copy(e.KeyIDVoting[:], e.ProRegTxHash[:wire.KeyIDSize])
	if sk != nil {
		e.PubKeyOperator = sk.PublicKey()
	}
	return e
}

// testOperatorKey returns the deterministic operator key of test entry i.
func testOperatorKey(i int) *bls.SecretKey {
	return bls.NewSecretKey([]byte(fmt.Sprintf("operator %d", i)))
}

// testQuorum returns a quorum of the test type formed at quorumHash with every
// member valid and no signers.  The quorum public key is the public key of sk
// when it is not nil.
func testQuorum(quorumHash chainhash.Hash, sk *bls.SecretKey) *wire.QuorumEntry {
	params, _ := wire.LLMQTypeTest.Params()
	q := &wire.QuorumEntry{
		Version:           1,
		LLMQType:          wire.LLMQTypeTest,
		QuorumHash:        quorumHash,
		SignersCount:      uint64(params.Size),
		ValidMembersCount: uint64(params.Size),
		Commitment: &wire.QuorumCommitment{
			Signers:        bitset.NewBytes(params.Size),
			ValidMembers:   bitset.NewBytes(params.Size),
			QuorumVvecHash: chainhash.HashH(quorumHash[:]),
		},
	}
	for i := 0; i < params.Size; i++ {
		q.Commitment.ValidMembers.Set(i)
	}
	if sk != nil {
		q.QuorumPublicKey = sk.PublicKey()
	}
	return q
}

// signQuorum signs the commitment of q by the members at the passed positions
// of its member list and by the quorum key sk.  keys maps the operator keys of
// the masternodes of memberList to their secret keys.
func signQuorum(t *testing.T, q *wire.QuorumEntry, memberList *MnList,
	keys map[[bls.PublicKeySize]byte]*bls.SecretKey, sk *bls.SecretKey,
	signers ...int) {

	t.Helper()
	members, err := memberList.QuorumMembers(q)
	if err != nil {
		t.Fatalf("unable to select quorum members: %v", err)
	}
	msgHash, err := q.CommitmentHash()
	if err != nil {
		t.Fatalf("unable to calculate commitment hash: %v", err)
	}

	sigs := make([][]byte, 0, len(signers))
	for _, pos := range signers {
		key, ok := keys[members[pos].PubKeyOperator]
		if !ok {
			t.Fatalf("no secret key for member %d", pos)
		}
		sig, err := key.Sign(msgHash[:])
		if err != nil {
			t.Fatalf("unable to sign commitment: %v", err)
		}
		sigs = append(sigs, sig[:])
		q.Commitment.Signers.Set(pos)
	}
	q.SignersCount = uint64(len(signers))
	q.Commitment.MembersSig, err = bls.AggregateSignatures(sigs...)
	if err != nil {
		t.Fatalf("unable to aggregate member signatures: %v", err)
	}
	q.Commitment.QuorumSig, err = sk.Sign(msgHash[:])
	if err != nil {
		t.Fatalf("unable to sign commitment: %v", err)
	}
}

// countingVerifier wraps the basic verifier and counts the signature checks
// it performs.
type countingVerifier struct {
	bls.BasicVerifier
	verifies   int
	aggregated int
}

func (v *countingVerifier) Verify(sig, msgHash, pubKey []byte) bool {
	v.verifies++
	return v.BasicVerifier.Verify(sig, msgHash, pubKey)
}

func (v *countingVerifier) VerifyAggregated(sig, msgHash []byte, pubKeys [][]byte, signers bitset.Bytes) bool {
	v.aggregated++
	return v.BasicVerifier.VerifyAggregated(sig, msgHash, pubKeys, signers)
}

// setCbTx replaces the coinbase of the diff by a coinbase special transaction
// with the passed payload and proves it with a partial merkle tree over the
// coinbase and one other transaction.
func setCbTx(diff *wire.MsgMnListDiff, payload *wire.CbTx) {
	tx := wire.NewCoinbaseTx(payload)
	leaves := []chainhash.Hash{tx.TxHash(), chainhash.HashH([]byte("other"))}
	tree := standalone.BuildPartialMerkleTree(leaves, []bool{true, false})
	diff.CbTx = *tx
	diff.CbTxMerkleTree = *tree
}

// testChain produces chained masternode list diffs whose coinbases commit to
// the masternode and quorum lists that result from applying them.
type testChain struct {
	t         *testing.T
	height    uint32
	tip       chainhash.Hash
	cbVersion uint16
	entries   map[chainhash.Hash]*wire.MnListEntry
	quorums   map[wire.QuorumKey]*wire.QuorumEntry
}

// newTestChain returns a test chain without any diffs whose coinbases use
// payload version cbVersion.
func newTestChain(t *testing.T, cbVersion uint16) *testChain {
	return &testChain{
		t:         t,
		cbVersion: cbVersion,
		entries:   make(map[chainhash.Hash]*wire.MnListEntry),
		quorums:   make(map[wire.QuorumKey]*wire.QuorumEntry),
	}
}

// quorumKey returns the key identifying q.
func quorumKey(q *wire.QuorumEntry) wire.QuorumKey {
	return wire.QuorumKey{LLMQType: q.LLMQType, QuorumHash: q.QuorumHash}
}

// next returns the diff for the block after the tip that deletes and adds the
// passed masternodes and quorums.  The chain itself is only advanced by
// accept.
func (c *testChain) next(delMNs []chainhash.Hash, addMNs []*wire.MnListEntry,
	delQuorums []wire.QuorumKey, addQuorums []*wire.QuorumEntry) *wire.MsgMnListDiff {

	c.t.Helper()
	entries := make(map[chainhash.Hash]*wire.MnListEntry, len(c.entries))
	for hash, entry := range c.entries {
		entries[hash] = entry
	}
	for _, hash := range delMNs {
		delete(entries, hash)
	}
	for _, entry := range addMNs {
		entries[entry.ProRegTxHash] = entry
	}
	quorums := make(map[wire.QuorumKey]*wire.QuorumEntry, len(c.quorums))
	if c.cbVersion >= 2 {
		for key, q := range c.quorums {
			quorums[key] = q
		}
		for _, key := range delQuorums {
			delete(quorums, key)
		}
		for _, q := range addQuorums {
			quorums[quorumKey(q)] = q
		}
	}

	height := c.height + 1
	diff := &wire.MsgMnListDiff{
		BaseBlockHash:  c.tip,
		BlockHash:      testBlockHash(height),
		DeletedMNs:     delMNs,
		MNList:         addMNs,
		DeletedQuorums: delQuorums,
		NewQuorums:     addQuorums,
	}
	setCbTx(diff, &wire.CbTx{
		Version:           c.cbVersion,
		Height:            height,
		MerkleRootMNList:  c.entriesRoot(entries),
		MerkleRootQuorums: c.quorumsRoot(quorums),
	})
	return diff
}

// entriesRoot returns the merkle root over the passed entries.
func (c *testChain) entriesRoot(entries map[chainhash.Hash]*wire.MnListEntry) chainhash.Hash {
	c.t.Helper()
	list := make([]*wire.MnListEntry, 0, len(entries))
	for _, entry := range entries {
		list = append(list, entry)
	}
	root, err := CalcEntriesMerkleRoot(list)
	if err != nil {
		c.t.Fatalf("unable to calculate masternode list root: %v", err)
	}
	return root
}

// quorumsRoot returns the merkle root over the hashes of the passed quorums.
// Outdated quorums can't be hashed and are skipped.
func (c *testChain) quorumsRoot(quorums map[wire.QuorumKey]*wire.QuorumEntry) chainhash.Hash {
	c.t.Helper()
	leaves := make([]chainhash.Hash, 0, len(quorums))
	for _, q := range quorums {
		if q.IsOutdated() {
			continue
		}
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

// accept advances the chain by the passed diff.
func (c *testChain) accept(diff *wire.MsgMnListDiff) {
	for _, hash := range diff.DeletedMNs {
		delete(c.entries, hash)
	}
	for _, entry := range diff.MNList {
		c.entries[entry.ProRegTxHash] = entry
	}
	if c.cbVersion >= 2 {
		for _, key := range diff.DeletedQuorums {
			delete(c.quorums, key)
		}
		for _, q := range diff.NewQuorums {
			c.quorums[quorumKey(q)] = q
		}
	}
	c.height++
	c.tip = diff.BlockHash
}

// mustApply applies the diff to the list, fails the test on error and
// advances the chain.
func (c *testChain) mustApply(list *MnList, diff *wire.MsgMnListDiff) {
	c.t.Helper()
	if err := list.ApplyDiff(diff); err != nil {
		c.t.Fatalf("unexpected error applying diff for block %v: %v",
			diff.BlockHash, err)
	}
	c.accept(diff)
}

// listSnapshot captures the observable state of a list.
type listSnapshot struct {
	initialized bool
	blockHash   chainhash.Hash
	height      uint32
	rootMNList  chainhash.Hash
	rootQuorums chainhash.Hash
	active      bool
	entries     []*wire.MnListEntry
	quorums     []*wire.QuorumEntry
}

func snapshot(l *MnList) listSnapshot {
	return listSnapshot{
		initialized: l.Initialized(),
		blockHash:   l.BlockHash(),
		height:      l.Height(),
		rootMNList:  l.MerkleRootMNList(),
		rootQuorums: l.MerkleRootQuorums(),
		active:      l.QuorumsActive(),
		entries:     l.Entries(),
		quorums:     l.Quorums(),
	}
}

// equal returns whether both snapshots describe the same list.  Entries and
// quorums are compared by identity since the list never modifies them.
func (s *listSnapshot) equal(o *listSnapshot) bool {
	if s.initialized != o.initialized || s.blockHash != o.blockHash ||
		s.height != o.height || s.rootMNList != o.rootMNList ||
		s.rootQuorums != o.rootQuorums || s.active != o.active ||
		len(s.entries) != len(o.entries) || len(s.quorums) != len(o.quorums) {

		return false
	}
	for i := range s.entries {
		if s.entries[i] != o.entries[i] {
			return false
		}
	}
	for i := range s.quorums {
		if s.quorums[i] != o.quorums[i] {
			return false
		}
	}
	return true
}

// mustReject applies the diff to the list and fails the test unless it is
// rejected with an error of the passed kind and leaves the list unchanged.
func mustReject(t *testing.T, list *MnList, diff *wire.MsgMnListDiff, kind ErrorKind) {
	t.Helper()
	before := snapshot(list)
	err := list.ApplyDiff(diff)
	if !errors.Is(err, kind) {
		t.Fatalf("unexpected error applying diff for block %v -- got %v, "+
			"want %v", diff.BlockHash, err, kind)
	}
	var rerr RuleError
	if !errors.As(err, &rerr) {
		t.Fatalf("error %v is not a RuleError", err)
	}
	after := snapshot(list)
	if !before.equal(&after) {
		t.Fatalf("list was modified by rejected diff for block %v",
			diff.BlockHash)
	}
}
