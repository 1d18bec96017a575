// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnlist

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/dashpay/dashcore-lib/blockchain/standalone"
	"github.com/dashpay/dashcore-lib/chaincfg"
	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
	"github.com/dashpay/dashcore-lib/crypto/bls"
	"github.com/dashpay/dashcore-lib/wire"
)

// MnList is the simplified masternode list at a specific block along with the
// quorums that are active at that block.  It is built by applying masternode
// list diffs in chain order starting from an empty list.
//
// Entries and quorums handed out by the list are shared with it and must not
// be modified by the caller.
//
// The list is not safe for concurrent mutation.  Read-only access from
// multiple goroutines is safe once no more diffs are applied.
type MnList struct {
	params   *chaincfg.Params
	verifier bls.Verifier

	initialized   bool
	baseBlockHash chainhash.Hash
	blockHash     chainhash.Hash
	height        uint32

	entries map[chainhash.Hash]*wire.MnListEntry
	sorted  []*wire.MnListEntry

	quorumsActive bool
	quorums       map[wire.QuorumKey]*QuorumState
	quorumOrder   []*QuorumState
	unverifiable  bool

	merkleRootMNList  chainhash.Hash
	merkleRootQuorums chainhash.Hash
	cbTx              *wire.MsgTx
	cbTxMerkleTree    *wire.PartialMerkleTree
	cbTxProofRoot     *chainhash.Hash
}

// New returns an empty masternode list for the network described by params.
// The verifier is used for quorum signature checks.
func New(params *chaincfg.Params, verifier bls.Verifier) *MnList {
	return &MnList{
		params:   params,
		verifier: verifier,
		entries:  make(map[chainhash.Hash]*wire.MnListEntry),
		quorums:  make(map[wire.QuorumKey]*QuorumState),
	}
}

// Copy returns a copy of the list that can be advanced independently.  The
// immutable entries and quorum states are shared.
func (l *MnList) Copy() *MnList {
	c := *l
	c.entries = make(map[chainhash.Hash]*wire.MnListEntry, len(l.entries))
	for hash, entry := range l.entries {
		c.entries[hash] = entry
	}
	c.sorted = append([]*wire.MnListEntry(nil), l.sorted...)
	c.quorums = make(map[wire.QuorumKey]*QuorumState, len(l.quorums))
	for key, state := range l.quorums {
		c.quorums[key] = state
	}
	c.quorumOrder = append([]*QuorumState(nil), l.quorumOrder...)
	return &c
}

// ToDiff returns a diff that rebuilds the list when applied to an empty list.
// It carries every masternode and quorum of the list along with the coinbase
// and coinbase proof of the last applied diff.  The base block hash of the
// diff is zero.
func (l *MnList) ToDiff() *wire.MsgMnListDiff {
	diff := &wire.MsgMnListDiff{
		BlockHash:  l.blockHash,
		MNList:     make([]*wire.MnListEntry, 0, len(l.sorted)),
		NewQuorums: make([]*wire.QuorumEntry, 0, len(l.quorumOrder)),
	}
	if l.cbTx != nil {
		diff.CbTx = *l.cbTx.Copy()
	}
	if l.cbTxMerkleTree != nil {
		diff.CbTxMerkleTree = wire.PartialMerkleTree{
			TotalTransactions: l.cbTxMerkleTree.TotalTransactions,
			Hashes:            append([]chainhash.Hash(nil), l.cbTxMerkleTree.Hashes...),
			Flags:             append([]byte(nil), l.cbTxMerkleTree.Flags...),
		}
	}
	for _, entry := range l.sorted {
		diff.MNList = append(diff.MNList, entry.Copy())
	}
	for _, state := range l.quorumOrder {
		diff.NewQuorums = append(diff.NewQuorums, state.Entry.Copy())
	}
	return diff
}

// Params returns the network parameters of the list.
func (l *MnList) Params() *chaincfg.Params {
	return l.params
}

// Verifier returns the signature verifier of the list.
func (l *MnList) Verifier() bls.Verifier {
	return l.verifier
}

// Initialized returns whether at least one diff was applied to the list.
func (l *MnList) Initialized() bool {
	return l.initialized
}

// BaseBlockHash returns the base block hash of the last applied diff.
func (l *MnList) BaseBlockHash() chainhash.Hash {
	return l.baseBlockHash
}

// BlockHash returns the hash of the block the list is at.
func (l *MnList) BlockHash() chainhash.Hash {
	return l.blockHash
}

// Height returns the height of the block the list is at as committed to by
// the coinbase of the last applied diff.
func (l *MnList) Height() uint32 {
	return l.height
}

// MerkleRootMNList returns the masternode list merkle root of the last
// applied diff.
func (l *MnList) MerkleRootMNList() chainhash.Hash {
	return l.merkleRootMNList
}

// MerkleRootQuorums returns the quorum list merkle root of the last applied
// diff.  It is zero until quorums are active.
func (l *MnList) MerkleRootQuorums() chainhash.Hash {
	return l.merkleRootQuorums
}

// CbTx returns the coinbase transaction of the last applied diff.
func (l *MnList) CbTx() *wire.MsgTx {
	return l.cbTx
}

// CbTxMerkleTree returns the partial merkle tree proving the coinbase of the
// last applied diff.
func (l *MnList) CbTxMerkleTree() *wire.PartialMerkleTree {
	return l.cbTxMerkleTree
}

// CbTxProofRoot returns the block merkle root reconstructed from the coinbase
// proof of the last applied diff.  The list has no block headers, so callers
// compare it against the header of BlockHash themselves.  The second result is
// false when the diff carried no proof.
func (l *MnList) CbTxProofRoot() (chainhash.Hash, bool) {
	if l.cbTxProofRoot == nil {
		return chainhash.Hash{}, false
	}
	return *l.cbTxProofRoot, true
}

// QuorumsActive returns whether the chain commits to quorums at the block the
// list is at.  Once active, quorums remain active.
func (l *MnList) QuorumsActive() bool {
	return l.quorumsActive
}

// QuorumsUnverifiable returns whether the list holds quorums received in the
// outdated short form.  Their hashes, and therefore the quorum merkle root,
// can't be calculated, so the quorum list of such a list was accepted
// without being checked against the coinbase commitment.
func (l *MnList) QuorumsUnverifiable() bool {
	return l.unverifiable
}

// Len returns the number of masternodes, including invalid ones.
func (l *MnList) Len() int {
	return len(l.sorted)
}

// Entries returns every masternode of the list, including invalid ones,
// sorted by registration hash.
func (l *MnList) Entries() []*wire.MnListEntry {
	return append([]*wire.MnListEntry(nil), l.sorted...)
}

// Entry returns the masternode registered by proRegTxHash.
func (l *MnList) Entry(proRegTxHash chainhash.Hash) (*wire.MnListEntry, bool) {
	entry, ok := l.entries[proRegTxHash]
	return entry, ok
}

// ValidMasternodes returns the masternodes that are not banned, sorted by
// registration hash.
func (l *MnList) ValidMasternodes() []*wire.MnListEntry {
	valid := make([]*wire.MnListEntry, 0, len(l.sorted))
	for _, entry := range l.sorted {
		if entry.IsValid {
			valid = append(valid, entry)
		}
	}
	return valid
}

// Quorums returns every quorum of the list in merkle order.
func (l *MnList) Quorums() []*wire.QuorumEntry {
	quorums := make([]*wire.QuorumEntry, 0, len(l.quorumOrder))
	for _, state := range l.quorumOrder {
		quorums = append(quorums, state.Entry)
	}
	return quorums
}

// QuorumsOfType returns the quorums of type t in merkle order.
func (l *MnList) QuorumsOfType(t wire.LLMQType) []*wire.QuorumEntry {
	var quorums []*wire.QuorumEntry
	for _, state := range l.quorumOrder {
		if state.Entry.LLMQType == t {
			quorums = append(quorums, state.Entry)
		}
	}
	return quorums
}

// Quorum returns the quorum of type t formed at the block quorumHash.
func (l *MnList) Quorum(t wire.LLMQType, quorumHash chainhash.Hash) (*wire.QuorumEntry, bool) {
	state, ok := l.quorums[wire.QuorumKey{LLMQType: t, QuorumHash: quorumHash}]
	if !ok {
		return nil, false
	}
	return state.Entry, true
}

// QuorumState returns the verification state of the quorum identified by key.
func (l *MnList) QuorumState(key wire.QuorumKey) (*QuorumState, bool) {
	state, ok := l.quorums[key]
	return state, ok
}

// countQuorums returns the number of quorums of type t in the list.
func (l *MnList) countQuorums(t wire.LLMQType) int {
	var n int
	for key := range l.quorums {
		if key.LLMQType == t {
			n++
		}
	}
	return n
}

// LLMQTypes returns the quorum types active on the network at the current
// list size.
func (l *MnList) LLMQTypes() []wire.LLMQType {
	return l.params.LLMQTypes(l.Len())
}

// ChainLockLLMQType returns the quorum type signing chain locks at the current
// list size.
func (l *MnList) ChainLockLLMQType() wire.LLMQType {
	return l.params.ChainLockLLMQType(l.Len())
}

// InstantSendLLMQType returns the quorum type signing instant send locks at the
// current list size.
func (l *MnList) InstantSendLLMQType() wire.LLMQType {
	return l.params.InstantSendLLMQType(l.Len())
}

// ValidatorLLMQType returns the quorum type of the platform validator set at
// the current list size.
func (l *MnList) ValidatorLLMQType() wire.LLMQType {
	return l.params.ValidatorLLMQType(l.Len())
}

// SortEntries sorts the passed entries in place by registration hash.
// Registration hashes are ordered by their bytes in wire order.
func SortEntries(entries []*wire.MnListEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].ProRegTxHash[:],
			entries[j].ProRegTxHash[:]) < 0
	})
}

// CalcEntriesMerkleRoot returns the masternode list merkle root a coinbase
// commits to for a list holding the passed entries.  The entries are ordered
// by registration hash before they are hashed, so the order of the passed
// slice does not matter.  The slice itself is not modified.
func CalcEntriesMerkleRoot(entries []*wire.MnListEntry) (chainhash.Hash, error) {
	sorted := append([]*wire.MnListEntry(nil), entries...)
	SortEntries(sorted)
	return sortedEntriesMerkleRoot(sorted)
}

// sortedEntriesMerkleRoot returns the merkle root of the hashes of the passed
// entries which must already be sorted.
func sortedEntriesMerkleRoot(sorted []*wire.MnListEntry) (chainhash.Hash, error) {
	leaves := make([]chainhash.Hash, 0, len(sorted))
	for _, entry := range sorted {
		hash, err := entry.Hash()
		if err != nil {
			return chainhash.Hash{}, err
		}
		leaves = append(leaves, hash)
	}
	return standalone.CalcMerkleRootInPlace(leaves), nil
}

// sortEntries materializes the sorted view of the entries.
func (l *MnList) sortEntries() {
	sorted := make([]*wire.MnListEntry, 0, len(l.entries))
	for _, entry := range l.entries {
		sorted = append(sorted, entry)
	}
	SortEntries(sorted)
	l.sorted = sorted
}

// sortQuorums materializes the merkle ordered view of the quorums.  Quorums
// are ordered by their hashes in wire order.  Outdated quorums have no hash
// and are ordered after the others by type and quorum hash.
func (l *MnList) sortQuorums() {
	order := make([]*QuorumState, 0, len(l.quorums))
	l.unverifiable = false
	for _, state := range l.quorums {
		order = append(order, state)
		if !state.hashOK {
			l.unverifiable = true
		}
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.hashOK != b.hashOK {
			return a.hashOK
		}
		if a.hashOK {
			return bytes.Compare(a.hash[:], b.hash[:]) < 0
		}
		if a.Entry.LLMQType != b.Entry.LLMQType {
			return a.Entry.LLMQType < b.Entry.LLMQType
		}
		return bytes.Compare(a.Entry.QuorumHash[:], b.Entry.QuorumHash[:]) < 0
	})
	l.quorumOrder = order
}

// CalcMerkleRoot returns the merkle root of the hashes of the sorted entries.
// The root of an empty list is the zero hash.
func (l *MnList) CalcMerkleRoot() (chainhash.Hash, error) {
	return sortedEntriesMerkleRoot(l.sorted)
}

// CalcMerkleRootQuorums returns the merkle root of the sorted quorum hashes.
// The root of an empty quorum list is the zero hash.  An error with kind
// ErrQuorumsNotVerifiable is returned when the list holds outdated quorums.
func (l *MnList) CalcMerkleRootQuorums() (chainhash.Hash, error) {
	if l.unverifiable {
		str := "quorum merkle root can't be calculated over outdated quorums"
		return chainhash.Hash{}, ruleError(ErrQuorumsNotVerifiable, str)
	}
	leaves := make([]chainhash.Hash, 0, len(l.quorumOrder))
	for _, state := range l.quorumOrder {
		leaves = append(leaves, state.hash)
	}
	return standalone.CalcMerkleRootInPlace(leaves), nil
}

// checkCbTx ensures the coinbase of the diff is a coinbase special transaction
// and, when the diff carries a partial merkle tree, that the tree proves it.
// The block merkle root reconstructed from the tree is returned along with the
// decoded payload.  It is nil when the diff carries no tree.
func checkCbTx(diff *wire.MsgMnListDiff) (*wire.CbTx, *chainhash.Hash, error) {
	if !standalone.IsCoinBaseSpecialTx(&diff.CbTx) {
		str := fmt.Sprintf("diff for block %v does not carry a coinbase "+
			"special transaction", diff.BlockHash)
		return nil, nil, ruleError(ErrBadCoinbase, str)
	}
	payload, err := diff.CbTx.CbTx()
	if err != nil {
		str := fmt.Sprintf("diff for block %v carries a malformed coinbase "+
			"payload: %v", diff.BlockHash, err)
		return nil, nil, RuleError{Err: ErrBadCoinbase, Description: str}
	}

	tree := &diff.CbTxMerkleTree
	if tree.TotalTransactions == 0 && len(tree.Hashes) == 0 {
		return payload, nil, nil
	}
	root, matched, indexes, err := standalone.ExtractMatches(tree)
	if err != nil {
		str := fmt.Sprintf("diff for block %v carries an invalid coinbase "+
			"proof: %v", diff.BlockHash, err)
		return nil, nil, ruleError(ErrCbTxMismatch, str)
	}
	cbHash := diff.CbTx.TxHash()
	if len(matched) != 1 || indexes[0] != 0 || matched[0] != cbHash {
		str := fmt.Sprintf("coinbase proof of diff for block %v does not "+
			"prove coinbase %v", diff.BlockHash, cbHash)
		return nil, nil, ruleError(ErrCbTxMismatch, str)
	}
	return payload, &root, nil
}

// applyQuorums removes and adds the quorums of the diff.  The cap of active
// quorums per type is enforced after removals.
func (l *MnList) applyQuorums(diff *wire.MsgMnListDiff) error {
	for _, key := range diff.DeletedQuorums {
		delete(l.quorums, key)
	}

	active := make(map[wire.LLMQType]int)
	for _, q := range diff.NewQuorums {
		params, ok := q.LLMQType.Params()
		if !ok {
			str := fmt.Sprintf("quorum %v has an unknown type", q)
			return ruleError(ErrUnknownQuorumType, str)
		}
		key := wire.QuorumKey{LLMQType: q.LLMQType, QuorumHash: q.QuorumHash}
		if _, ok := l.quorums[key]; ok {
			str := fmt.Sprintf("quorum %v is already active", q)
			return ruleError(ErrDuplicateQuorum, str)
		}
		count, ok := active[q.LLMQType]
		if !ok {
			count = l.countQuorums(q.LLMQType)
		}
		count++
		active[q.LLMQType] = count
		if count > params.MaxActiveQuorums {
			str := fmt.Sprintf("adding quorum %v exceeds the maximum of %d "+
				"active %s quorums", q, params.MaxActiveQuorums,
				q.LLMQType)
			return ruleError(ErrQuorumCapExceeded, str)
		}
		state, err := newQuorumState(q.Copy())
		if err != nil {
			return err
		}
		l.quorums[key] = state
	}
	l.sortQuorums()
	return nil
}

// ApplyDiff advances the list by the passed diff.  The masternode and quorum
// merkle roots calculated after applying the diff must match the roots
// committed to by the coinbase of the diff.
//
// The list is left unchanged when an error is returned.  Errors are of type
// RuleError for every consistency failure.
func (l *MnList) ApplyDiff(diff *wire.MsgMnListDiff) error {
	if l.initialized && diff.BaseBlockHash != l.blockHash {
		str := fmt.Sprintf("diff with base block %v does not build on the "+
			"list at block %v", diff.BaseBlockHash, l.blockHash)
		return ruleError(ErrChainMismatch, str)
	}
	payload, proofRoot, err := checkCbTx(diff)
	if err != nil {
		return err
	}

	scratch := l.Copy()
	for _, hash := range diff.DeletedMNs {
		delete(scratch.entries, hash)
	}
	for _, entry := range diff.MNList {
		scratch.entries[entry.ProRegTxHash] = entry.Copy()
	}
	scratch.sortEntries()

	root, err := scratch.CalcMerkleRoot()
	if err != nil {
		return err
	}
	if root != payload.MerkleRootMNList {
		str := fmt.Sprintf("calculated masternode list merkle root %v does "+
			"not match committed root %v at block %v", root,
			payload.MerkleRootMNList, diff.BlockHash)
		return ruleError(ErrMerkleRootMismatch, str)
	}

	scratch.quorumsActive = scratch.quorumsActive || payload.Version >= 2
	if scratch.quorumsActive {
		if err := scratch.applyQuorums(diff); err != nil {
			return err
		}

		qroot, err := scratch.CalcMerkleRootQuorums()
		switch {
		case err != nil:
			log.Warnf("Accepting unverifiable quorum list at block %v: %v",
				diff.BlockHash, err)

		case qroot != payload.MerkleRootQuorums:
			str := fmt.Sprintf("calculated quorum merkle root %v does not "+
				"match committed root %v at block %v", qroot,
				payload.MerkleRootQuorums, diff.BlockHash)
			return ruleError(ErrQuorumMerkleRootMismatch, str)
		}
	} else if len(diff.NewQuorums) > 0 || len(diff.DeletedQuorums) > 0 {
		log.Debugf("Ignoring quorum changes of diff for block %v before "+
			"quorum activation", diff.BlockHash)
	}

	scratch.initialized = true
	scratch.baseBlockHash = diff.BaseBlockHash
	scratch.blockHash = diff.BlockHash
	scratch.height = payload.Height
	scratch.merkleRootMNList = payload.MerkleRootMNList
	scratch.merkleRootQuorums = payload.MerkleRootQuorums
	scratch.cbTx = diff.CbTx.Copy()
	scratch.cbTxMerkleTree = &wire.PartialMerkleTree{
		TotalTransactions: diff.CbTxMerkleTree.TotalTransactions,
		Hashes:            append([]chainhash.Hash(nil), diff.CbTxMerkleTree.Hashes...),
		Flags:             append([]byte(nil), diff.CbTxMerkleTree.Flags...),
	}
	scratch.cbTxProofRoot = proofRoot
	*l = *scratch

	log.Debugf("Applied diff for block %v at height %d (%d %s, %d %s)",
		l.blockHash, l.height, len(l.sorted),
		pickNoun(len(l.sorted), "masternode", "masternodes"),
		len(l.quorumOrder), pickNoun(len(l.quorumOrder), "quorum", "quorums"))
	return nil
}
