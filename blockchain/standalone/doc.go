// Copyright (c) 2019-2022 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package standalone provides standalone functions useful for working with the
Dash block chain commitments used by the deterministic masternode list.

The primary goal of offering these functions via a separate package is to
reduce the required dependencies to a minimum.  Lightweight clients that only
follow the masternode list need to prove that a coinbase transaction is part
of a block and that a masternode or quorum list matches the root committed to
by that coinbase.

# Function categories

The provided functions fall into the following categories:

  - Merkle root calculation
  - Partial merkle trees
  - Coinbase transaction identification

# Merkle root calculation

  - Calculation of the root from individual leaf hashes
  - Building the complete tree store with every level
  - Width and height of tree levels and the hash of any node

All trees use double sha256 and pair the last node of a level with itself
when the level has an odd number of nodes.  The root of an empty set of
leaves is the all zero hash.

# Partial merkle trees

  - Pruning a tree down to the branches that prove a set of leaves
  - Recovering the root and the proven leaves from a pruned tree

Extraction rejects trees with unused flags or hashes and trees whose nodes
have identical left and right children, so a pruned tree can't be malleated
into proving a different set of leaves.

# Errors

Errors returned by this package are of type standalone.RuleError.  This allows
the caller to differentiate between errors further up the call stack through
type assertions.  In addition, callers can programmatically determine the
specific rule violation by using errors.Is against the ErrorKind constants.
*/
package standalone
