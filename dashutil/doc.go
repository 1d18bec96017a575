// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package dashutil provides dash-specific convenience functions and types.

# Address Overview

The Address interface provides an abstraction for a Dash address.  This
package provides implementations for the pay-to-pubkey-hash and
pay-to-script-hash address types.  Both encode a version byte identifying the
network and the address type, a 20 byte hash and a four byte checksum taken
from the double sha256 of the preceding bytes in base58.

Masternode list entries carry the hash160 of the voting key of each
masternode.  VotingAddress renders it as a pay-to-pubkey-hash address of the
network the list belongs to.

# Amount Overview

Amount is a monetary amount counted in duffs, the atomic unit of which one
coin holds 1e8.
*/
package dashutil
