// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package bls implements verification of the BLS12-381 signatures used by
masternode quorums.

Public keys are compressed G1 points of 48 bytes and signatures are
compressed G2 points of 96 bytes.  Messages are hashed to G2 with the domain
separation tag of the basic scheme.  Quorum member signatures are aggregated
over a single message, so aggregate verification sums the public keys of the
selected signers and performs a single pairing check.

The Verifier interface allows the masternode list and lock verification code
to be exercised with alternative implementations.
*/
package bls
