// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mnlist implements the simplified deterministic masternode list along
with the long living masternode quorums that are active at a block.

A list starts out empty and is advanced one masternode list diff at a time.
Every diff must build on the block the list is at and carries the coinbase
transaction of its block, optionally along with a partial merkle tree proving
that coinbase.  After the removals and additions of a diff are applied, the
merkle root over the hashes of the masternodes sorted by registration hash must
match the root the coinbase commits to.  Once the coinbase payload reaches
version 2, the same holds for the merkle root over the hashes of the active
quorums.  A diff that fails any of these checks leaves the list unchanged.

# Quorums

The members of a quorum are the valid, confirmed masternodes of the list at the
block the quorum was formed at with the highest scores for the selection
modifier of the quorum.  VerifyQuorum checks the aggregated signature of the
signing members and the threshold signature of the quorum against that member
list and remembers successful verifications.

The quorum responsible for signing a request is the active quorum of the
requested type with the lowest ordering hash for the request id.  See
SelectSignatoryQuorum.

Quorums received in the outdated short form carry no commitment.  They are
kept, but the quorum merkle root of a list holding them can't be calculated and
they can't be verified.

# Errors

Errors returned by this package for consistency failures are of type
mnlist.RuleError.  Callers can programmatically determine the specific rule
violation by using errors.Is against the ErrorKind constants.
*/
package mnlist
