// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"fmt"

	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
	"github.com/dashpay/dashcore-lib/wire"
	"github.com/jrick/bitset"
)

const (
	// maxBlockSize is the maximum serialized size of a Dash block.
	maxBlockSize = 2000000

	// minTxSize is the smallest serialized size a transaction can have.
	minTxSize = 60

	// MaxPartialTreeLeaves is the maximum number of leaves a partial merkle
	// tree may commit to.  It is the number of the smallest possible
	// transactions that fit into a block.
	MaxPartialTreeLeaves = maxBlockSize / minTxSize
)

// partialTreeBuilder houses the state used while pruning a merkle tree down
// to the branches that prove a set of matched leaves.
type partialTreeBuilder struct {
	leaves  []chainhash.Hash
	matches []bool
	bits    []bool
	hashes  []chainhash.Hash
}

// traverseAndBuild descends from the node at the given height and position.
// It records one flag per visited node telling whether a matched leaf lies
// beneath it and stores the node hash whenever it stops descending.
func (b *partialTreeBuilder) traverseAndBuild(height, pos uint32) {
	total := uint32(len(b.leaves))
	var parentOfMatch bool
	for p := pos << height; p < (pos+1)<<height && p < total; p++ {
		parentOfMatch = parentOfMatch || b.matches[p]
	}
	b.bits = append(b.bits, parentOfMatch)

	if height == 0 || !parentOfMatch {
		b.hashes = append(b.hashes, CalcHashAtHeight(height, pos, b.leaves))
		return
	}

	b.traverseAndBuild(height-1, pos*2)
	if pos*2+1 < TreeWidth(total, height-1) {
		b.traverseAndBuild(height-1, pos*2+1)
	}
}

// BuildPartialMerkleTree returns the partial merkle tree over leaves that
// proves the leaves whose entry in matches is set.  The flag bits are packed
// least significant bit first.
//
// The matches slice must have the same length as leaves.
func BuildPartialMerkleTree(leaves []chainhash.Hash, matches []bool) *wire.PartialMerkleTree {
	tree := &wire.PartialMerkleTree{
		TotalTransactions: uint32(len(leaves)),
		Hashes:            []chainhash.Hash{},
		Flags:             []byte{},
	}
	if len(leaves) == 0 {
		return tree
	}

	b := partialTreeBuilder{leaves: leaves, matches: matches}
	b.traverseAndBuild(TreeHeight(tree.TotalTransactions), 0)

	flags := bitset.NewBytes(len(b.bits))
	for i, bit := range b.bits {
		if bit {
			flags.Set(i)
		}
	}
	tree.Hashes = b.hashes
	tree.Flags = flags
	return tree
}

// partialTreeExtractor houses the state used while walking a partial merkle
// tree to recover its root and matched leaves.
type partialTreeExtractor struct {
	tree      *wire.PartialMerkleTree
	flags     bitset.Bytes
	numBits   int
	bitsUsed  int
	hashUsed  int
	matched   []chainhash.Hash
	indexes   []uint32
	badReason ErrorKind
	badDesc   string
}

// fail records the first traversal failure.
func (e *partialTreeExtractor) fail(kind ErrorKind, desc string) {
	if e.badReason == "" {
		e.badReason = kind
		e.badDesc = desc
	}
}

// traverseAndExtract is the inverse of traverseAndBuild.  It consumes flag
// bits and hashes in depth-first order and returns the hash of the node at
// the given height and position.
func (e *partialTreeExtractor) traverseAndExtract(height, pos uint32) chainhash.Hash {
	if e.badReason != "" {
		return chainhash.Hash{}
	}
	if e.bitsUsed >= e.numBits {
		e.fail(ErrBadPartialTree, "partial merkle tree ran out of flag bits")
		return chainhash.Hash{}
	}
	parentOfMatch := e.flags.Get(e.bitsUsed)
	e.bitsUsed++

	if height == 0 || !parentOfMatch {
		if e.hashUsed >= len(e.tree.Hashes) {
			e.fail(ErrBadPartialTree, "partial merkle tree ran out of hashes")
			return chainhash.Hash{}
		}
		hash := e.tree.Hashes[e.hashUsed]
		e.hashUsed++
		if height == 0 && parentOfMatch {
			e.matched = append(e.matched, hash)
			e.indexes = append(e.indexes, pos)
		}
		return hash
	}

	left := e.traverseAndExtract(height-1, pos*2)
	right := left
	if pos*2+1 < TreeWidth(e.tree.TotalTransactions, height-1) {
		right = e.traverseAndExtract(height-1, pos*2+1)
		if e.badReason == "" && right == left {
			str := fmt.Sprintf("partial merkle tree node at height %d "+
				"position %d has identical children", height, pos)
			e.fail(ErrPartialTreeDuplicateHash, str)
		}
	}
	return hashMerkleBranches(&left, &right)
}

// ExtractMatches walks the provided partial merkle tree and returns the merkle
// root it commits to along with the matched leaf hashes and their positions.
//
// The tree must consume every flag byte and every hash exactly, so any
// partial tree is accepted in one canonical form only.
func ExtractMatches(tree *wire.PartialMerkleTree) (chainhash.Hash, []chainhash.Hash, []uint32, error) {
	var zeroHash chainhash.Hash
	if tree.TotalTransactions == 0 {
		return zeroHash, nil, nil, ruleError(ErrEmptyPartialTree,
			"partial merkle tree has no leaves")
	}
	if tree.TotalTransactions > MaxPartialTreeLeaves {
		str := fmt.Sprintf("partial merkle tree commits to %d leaves which "+
			"is more than the max of %d", tree.TotalTransactions,
			MaxPartialTreeLeaves)
		return zeroHash, nil, nil, ruleError(ErrPartialTreeTooManyLeaves, str)
	}
	if uint64(len(tree.Hashes)) > uint64(tree.TotalTransactions) {
		str := fmt.Sprintf("partial merkle tree carries %d hashes for %d "+
			"leaves", len(tree.Hashes), tree.TotalTransactions)
		return zeroHash, nil, nil, ruleError(ErrPartialTreeTooManyHashes, str)
	}

	// There must be at least one flag bit per hash.
	numBits := len(tree.Flags) * 8
	if numBits < len(tree.Hashes) {
		str := fmt.Sprintf("partial merkle tree carries %d flag bits for %d "+
			"hashes", numBits, len(tree.Hashes))
		return zeroHash, nil, nil, ruleError(ErrBadPartialTree, str)
	}

	e := partialTreeExtractor{
		tree:    tree,
		flags:   bitset.Bytes(tree.Flags),
		numBits: numBits,
	}
	root := e.traverseAndExtract(TreeHeight(tree.TotalTransactions), 0)
	if e.badReason != "" {
		return zeroHash, nil, nil, ruleError(e.badReason, e.badDesc)
	}

	// Every flag byte and every hash must have been consumed.
	if (e.bitsUsed+7)/8 != len(tree.Flags) {
		str := fmt.Sprintf("partial merkle tree used %d of %d flag bytes",
			(e.bitsUsed+7)/8, len(tree.Flags))
		return zeroHash, nil, nil, ruleError(ErrBadPartialTree, str)
	}
	if e.hashUsed != len(tree.Hashes) {
		str := fmt.Sprintf("partial merkle tree used %d of %d hashes",
			e.hashUsed, len(tree.Hashes))
		return zeroHash, nil, nil, ruleError(ErrBadPartialTree, str)
	}

	return root, e.matched, e.indexes, nil
}
