// Copyright (c) 2015-2016 The Decred developers
// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"hash"

	"github.com/minio/sha256-simd"
)

// HashB calculates sha256(sha256(b)) and returns the resulting bytes.
func HashB(b []byte) []byte {
	hash := HashH(b)
	return hash[:]
}

// HashH calculates sha256(sha256(b)) and returns the resulting bytes as a Hash.
func HashH(b []byte) Hash {
	first := sha256.Sum256(b)
	return Hash(sha256.Sum256(first[:]))
}

// SingleHashB calculates a single sha256(b) and returns the resulting bytes.
func SingleHashB(b []byte) []byte {
	hash := sha256.Sum256(b)
	return hash[:]
}

// SingleHashH calculates a single sha256(b) and returns the resulting bytes as
// a Hash.
func SingleHashH(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}

// DoubleHashWriter is a hash.Hash that yields sha256(sha256(data)) for all
// data written to it.  It allows callers to stream serializations directly
// into the hasher instead of first building a buffer.
type DoubleHashWriter struct {
	hash.Hash
}

// NewDoubleHashWriter returns a new writer that computes the double sha256 of
// everything written to it.
func NewDoubleHashWriter() *DoubleHashWriter {
	return &DoubleHashWriter{Hash: sha256.New()}
}

// Sum256 returns the double sha256 of all data written so far as a Hash.
func (w *DoubleHashWriter) Sum256() Hash {
	var first [HashSize]byte
	w.Hash.Sum(first[:0])
	return Hash(sha256.Sum256(first[:]))
}

// HashBlockSize is the block size of the hash algorithm in bytes.
const HashBlockSize = sha256.BlockSize

// New returns a new hash.Hash computing a single sha256 of the data written to
// the object.
func New() hash.Hash {
	return sha256.New()
}
