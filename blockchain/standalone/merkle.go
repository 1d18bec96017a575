// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2019 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
)

// hashMerkleBranches returns the double sha256 of the concatenation of the
// provided left and right hashes.
func hashMerkleBranches(left, right *chainhash.Hash) chainhash.Hash {
	var buf [2 * chainhash.HashSize]byte
	copy(buf[:chainhash.HashSize], left[:])
	copy(buf[chainhash.HashSize:], right[:])
	return chainhash.HashH(buf[:])
}

// TreeWidth returns the number of nodes at the given height of a merkle tree
// with total leaves.  Height zero is the leaf level.
func TreeWidth(total, height uint32) uint32 {
	return uint32((uint64(total) + (1 << height) - 1) >> height)
}

// TreeHeight returns the height of the root of a merkle tree with total
// leaves.  A tree with a single leaf, or none at all, has height zero.
func TreeHeight(total uint32) uint32 {
	var height uint32
	for TreeWidth(total, height) > 1 {
		height++
	}
	return height
}

// BuildMerkleTreeStore creates a merkle tree from the provided leaves and
// returns all of its levels concatenated, leaves first and the root last.
//
// A level with an odd number of nodes pairs its last node with itself.  For
// example, the following illustrates the layout of a tree with 3 leaves:
//
//	         root = h1234 = h(h12 + h33)
//	        /                          \
//	  h12 = h(h1 + h2)          h33 = h(h3 + h3)
//	   /            \                  /
//	 h1              h2              h3
//
//	store: [h1 h2 h3 h12 h33 h1234]
//
// The store of N leaves therefore holds exactly N + TreeWidth(N, 1) + ... + 1
// hashes.  No leaves result in an empty store and a single leaf is its own
// root.
func BuildMerkleTreeStore(leaves []chainhash.Hash) []chainhash.Hash {
	if len(leaves) == 0 {
		return nil
	}

	total := uint32(len(leaves))
	height := TreeHeight(total)
	storeSize := uint32(0)
	for h := uint32(0); h <= height; h++ {
		storeSize += TreeWidth(total, h)
	}

	store := make([]chainhash.Hash, len(leaves), storeSize)
	copy(store, leaves)
	offset := 0
	for size := len(leaves); size > 1; size = (size + 1) / 2 {
		for i := 0; i < size; i += 2 {
			i2 := i + 1
			if i2 == size {
				i2 = i
			}
			store = append(store, hashMerkleBranches(&store[offset+i],
				&store[offset+i2]))
		}
		offset += size
	}
	return store
}

// MerkleRoot returns the root of a merkle tree store as created by
// BuildMerkleTreeStore and whether the store holds a root at all.
func MerkleRoot(store []chainhash.Hash) (chainhash.Hash, bool) {
	if len(store) == 0 {
		return chainhash.Hash{}, false
	}
	return store[len(store)-1], true
}

// CalcMerkleRootInPlace is an in-place version of CalcMerkleRoot that reuses
// the backing array of the provided slice to perform the calculation thereby
// preventing extra allocations.  It is the caller's responsibility to ensure
// it is safe to mutate the entries in the provided slice.
//
// The function internally appends an additional entry in the case the number
// of provided leaves is odd, so the caller may wish to pre-allocate space for
// one additional element in the backing array in that case to ensure it
// doesn't need to be reallocated to expand it.
//
// For example:
//
//	allocLen := len(leaves) + len(leaves)&1
//	leaves := make([]chainhash.Hash, len(leaves), allocLen)
//	// populate the leaves
//
// See CalcMerkleRoot for more details on how the merkle root is calculated.
func CalcMerkleRootInPlace(leaves []chainhash.Hash) chainhash.Hash {
	if len(leaves) == 0 {
		// All zero.
		return chainhash.Hash{}
	}

	// The following algorithm works by replacing the leftmost entries in the
	// slice with the hash of each subsequent set of 2 hashes and shrinking
	// the slice by half to account for the fact that each level of the tree
	// is half the size of the previous one.  In the case a level is
	// unbalanced (there is no final right child), the final node is
	// duplicated so it ultimately is concatenated with itself.
	for len(leaves) > 1 {
		if len(leaves)&1 != 0 {
			leaves = append(leaves, leaves[len(leaves)-1])
		}
		for i := 0; i < len(leaves)/2; i++ {
			leaves[i] = hashMerkleBranches(&leaves[i*2], &leaves[i*2+1])
		}
		leaves = leaves[:len(leaves)/2]
	}
	return leaves[0]
}

// CalcMerkleRoot creates a merkle tree from the slice of leaves and returns
// the root of the tree.  It is the same tree BuildMerkleTreeStore creates,
// without retaining the intermediate levels.
//
// The all zero hash is returned when there are no leaves.  Callers that
// commit to possibly empty sets, such as the masternode and quorum lists,
// rely on this sentinel.
func CalcMerkleRoot(leaves []chainhash.Hash) chainhash.Hash {
	if len(leaves) == 0 {
		// All zero.
		return chainhash.Hash{}
	}

	// Note that the backing array is provided with space for one additional
	// item when the number of leaves is odd as an optimization for the
	// in-place calculation to avoid the need to grow the backing array.
	allocLen := len(leaves) + len(leaves)&1
	dupLeaves := make([]chainhash.Hash, len(leaves), allocLen)
	copy(dupLeaves, leaves)
	return CalcMerkleRootInPlace(dupLeaves)
}

// CalcHashAtHeight returns the hash of the node at the given height and
// position of the merkle tree over leaves.  Height zero addresses the leaves
// themselves.
//
// The caller must ensure pos is less than TreeWidth(len(leaves), height).
func CalcHashAtHeight(height, pos uint32, leaves []chainhash.Hash) chainhash.Hash {
	if height == 0 {
		return leaves[pos]
	}

	// Calculate the left hash and the right one when it is not beyond the
	// end of the level.  A missing right child is a copy of the left.
	left := CalcHashAtHeight(height-1, pos*2, leaves)
	right := left
	if pos*2+1 < TreeWidth(uint32(len(leaves)), height-1) {
		right = CalcHashAtHeight(height-1, pos*2+1, leaves)
	}
	return hashMerkleBranches(&left, &right)
}
