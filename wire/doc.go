// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2024 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package wire implements the Dash wire encoding of the deterministic masternode
list records.

It covers the simplified masternode list entries, the final quorum
commitments, the special transactions and coinbase payloads they are committed
to, the mnlistdiff message which transports changes between two blocks, and
the clsig and islock messages.

# Record Encoding

Every record provides BtcDecode and BtcEncode methods which operate on an
io.Reader or io.Writer for a given protocol version, matching the Message
interface where the record is a message of its own.  Records that are also
decoded outside of a message stream additionally provide a FromBytes function
which rejects input with bytes left over after the record.

Some records changed their layout over time:

  - Masternode list entries carried by a mnlistdiff message gained a
    trailing type discriminator at MnListEntryTypeVersion.  High performance
    masternodes additionally carry their platform fields.  A standalone entry
    is decoded as typed when bytes follow its valid flag.
  - The mnlistdiff message gained the deleted and new quorum lists at
    MnListDiffQuorumsVersion.
  - Standalone quorum entries shorter than the full form can possibly be are
    decoded as the outdated short form, which lacks the member bitsets and
    signatures and therefore can't be hashed or verified.

# Hashes

Hashes are kept in their internal byte order and printed in the reversed
display order by chainhash.Hash.String.  The hashing helpers on the records
(Hash, CommitmentHash, SelectionModifier and OrderingHashForRequestID) return
the digest in internal byte order.

# Messages

ReadMessage and WriteMessage frame a message with the network magic, the
command, the payload length and a payload checksum.  The same framing is used
to persist records since it detects corrupted payloads and records of a
different network.

# Errors

Errors returned by this package are either the raw errors provided by the
underlying io.Reader or io.Writer, or a MessageError wrapping one of the
ErrorKind constants, so callers can use errors.Is to determine the reason.
Records decoded with a FromBytes function report truncation as ErrShortRead.
*/
package wire
