// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package locks verifies chain locks and instant send locks against the quorums
of a masternode list store.

A lock answers a signing request.  The request id of a chain lock commits to
the locked height and the request id of an instant lock commits to the locked
inputs.  The signing quorum is the active quorum of the lock's quorum type with
the lowest ordering hash for the request id, as seen by the masternode list a
fixed number of blocks below the locked height.

Since signer and verifier may disagree on the current height, verification
tries the list at the configured offset first, then the list at the height
itself and finally the list at twice the offset.  No further attempts are
made.

An invalid signature is reported as a false result.  Errors are reserved for
locks that could not be checked at all, for example because the store does not
cover any of the attempted heights.
*/
package locks
