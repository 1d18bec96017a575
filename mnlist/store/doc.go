// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package store keeps the simplified masternode lists of a range of recent
blocks.

A store is created from an initial diff that builds a list from scratch and is
advanced by adding one diff per block in chain order.  Only a bounded number of
diffs is kept on top of a base list.  Once the bound is exceeded the oldest
diffs are folded into the base, which moves the oldest height the store can
answer for forward.

Lists for any height in the stored range are rebuilt by replaying the kept
diffs onto the base.  Rebuilt lists are cached so repeated requests for the
same height are cheap.  Every list handed out is a copy that the caller may
advance independently of the store.

# Persistence

A store optionally persists its state in a goleveldb database.  The database
holds the base list as a checksummed snapshot along with every kept diff framed
as a network message, so a store survives restarts through Load.

# Errors

Errors returned by this package are either the rule errors of package mnlist
for diffs that do not apply, or of type ContextError with an ErrorKind that
can be checked with errors.Is.
*/
package store
