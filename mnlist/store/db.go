// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2021-2023 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
	"github.com/dashpay/dashcore-lib/wire"
	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	// currentDatabaseVersion indicates the current database version.
	currentDatabaseVersion = 1

	// dbName is the name of the database directory within a data directory.
	dbName = "mnlist"

	// checksumSize is the number of bytes of the checksum that prefixes a
	// base list snapshot.
	checksumSize = 4

	// maxSnapshotItem is the maximum size of a single serialized item of a
	// base list snapshot.
	maxSnapshotItem = wire.MaxMessagePayload
)

// keySet represents a top level key set in the database.  Every key is prefixed
// with its key set and the version of that key set.
type keySet uint8

const (
	keySetDbInfo keySet = iota + 1
	keySetBase
	keySetDiffs
)

// keySetVersions tracks the current version of each key set.
var keySetVersions = map[keySet]uint8{
	keySetDbInfo: 0,
	keySetBase:   1,
	keySetDiffs:  1,
}

var (
	prefixDbInfo = []byte{byte(keySetDbInfo), keySetVersions[keySetDbInfo]}
	prefixBase   = []byte{byte(keySetBase), keySetVersions[keySetBase]}
	prefixDiffs  = []byte{byte(keySetDiffs), keySetVersions[keySetDiffs]}

	dbInfoVersionKeyName = prefixedKey(prefixDbInfo, []byte("version"))
	dbInfoNetKeyName     = prefixedKey(prefixDbInfo, []byte("net"))
	dbInfoCreatedKeyName = prefixedKey(prefixDbInfo, []byte("created"))
	baseKeyName          = prefixedKey(prefixBase, []byte("base"))
)

// prefixedKey returns a new key with the provided key prefixed by the provided
// prefix.
func prefixedKey(prefix []byte, key []byte) []byte {
	prefixedKey := make([]byte, len(prefix)+len(key))
	copy(prefixedKey, prefix)
	copy(prefixedKey[len(prefix):], key)
	return prefixedKey
}

// diffKey returns the key of the diff for the block at the passed height.  The
// height is big endian so diffs iterate in height order.
func diffKey(height uint32) []byte {
	key := make([]byte, len(prefixDiffs)+4)
	copy(key, prefixDiffs)
	binary.BigEndian.PutUint32(key[len(prefixDiffs):], height)
	return key
}

// diffKeyHeight returns the height encoded in a diff key.
func diffKeyHeight(key []byte) (uint32, bool) {
	if len(key) != len(prefixDiffs)+4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(key[len(prefixDiffs):]), true
}

// convertLdbErr converts the passed leveldb error into a context error with an
// equivalent error kind and the passed description.  It also sets the passed
// error as the underlying error.
func convertLdbErr(ldbErr error, desc string) ContextError {
	var kind = ErrDB
	switch {
	case ldberrors.IsCorrupted(ldbErr):
		kind = ErrDBCorrupt
	}

	desc = fmt.Sprintf("%s: %v", desc, ldbErr)
	err := contextError(kind, desc)
	err.RawErr = ldbErr
	return err
}

// corruptError returns an ErrDBCorrupt error that wraps the passed error.
func corruptError(rawErr error, format string, a ...interface{}) ContextError {
	desc := fmt.Sprintf(format, a...)
	if rawErr != nil {
		desc = fmt.Sprintf("%s: %v", desc, rawErr)
	}
	err := contextError(ErrDBCorrupt, desc)
	err.RawErr = rawErr
	return err
}

// diffProtocolVersion returns the protocol version a diff is persisted with.
// Diffs with typed masternode entries need the version that introduced them
// while every other diff is written in the legacy entry form.
func diffProtocolVersion(diff *wire.MsgMnListDiff) uint32 {
	for _, entry := range diff.MNList {
		if entry.Variant == wire.MnEntryTyped {
			return wire.ProtocolVersion
		}
	}
	return wire.MnListEntryTypeVersion - 1
}

// serializeDiffRecord returns the database record of a diff.  The record is
// the little endian protocol version followed by the diff framed as a network
// message for the passed network.
func serializeDiffRecord(diff *wire.MsgMnListDiff, net wire.CurrencyNet) ([]byte, error) {
	pver := diffProtocolVersion(diff)
	var buf bytes.Buffer
	var pverBytes [4]byte
	binary.LittleEndian.PutUint32(pverBytes[:], pver)
	buf.Write(pverBytes[:])
	if err := wire.WriteMessage(&buf, diff, pver, net); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserializeDiffRecord decodes a diff record written by serializeDiffRecord.
func deserializeDiffRecord(record []byte, net wire.CurrencyNet) (*wire.MsgMnListDiff, error) {
	if len(record) < 4 {
		return nil, corruptError(nil, "diff record of %d bytes is too short",
			len(record))
	}
	pver := binary.LittleEndian.Uint32(record[:4])
	r := bytes.NewReader(record[4:])
	msg, _, err := wire.ReadMessage(r, pver, net)
	if err != nil {
		return nil, corruptError(err, "unable to decode diff record")
	}
	if r.Len() != 0 {
		return nil, corruptError(nil, "diff record has %d trailing bytes",
			r.Len())
	}
	diff, ok := msg.(*wire.MsgMnListDiff)
	if !ok {
		return nil, corruptError(nil, "diff record holds a %q message",
			msg.Command())
	}
	return diff, nil
}

// serializeSnapshot returns the database record of a base list snapshot as
// produced by MnList.ToDiff.
//
// The serialized format is:
//
//	<checksum><block hash><cbtx><cbtx merkle tree><entries><quorums>
//
//	Field           Type              Size
//	checksum        [4]byte           first bytes of sha256d of the rest
//	block hash      chainhash.Hash    32
//	cbtx            var bytes         variable
//	merkle tree     var bytes         variable
//	entries         var int + list    variable, each entry as var bytes
//	quorums         var int + list    variable, each quorum as var bytes
//
// Entries and quorums use their standalone serialization so that every entry
// variant and outdated quorums survive a round trip.
func serializeSnapshot(diff *wire.MsgMnListDiff) ([]byte, error) {
	const pver = wire.ProtocolVersion

	var buf bytes.Buffer
	buf.Write(make([]byte, checksumSize))
	buf.Write(diff.BlockHash[:])

	cbTx, err := diff.CbTx.Bytes()
	if err != nil {
		return nil, err
	}
	if err := wire.WriteVarBytes(&buf, pver, cbTx); err != nil {
		return nil, err
	}
	err = wire.WriteVarBytes(&buf, pver, diff.CbTxMerkleTree.Bytes())
	if err != nil {
		return nil, err
	}

	if err := wire.WriteVarInt(&buf, pver, uint64(len(diff.MNList))); err != nil {
		return nil, err
	}
	for _, entry := range diff.MNList {
		b, err := entry.Bytes()
		if err != nil {
			return nil, err
		}
		if err := wire.WriteVarBytes(&buf, pver, b); err != nil {
			return nil, err
		}
	}

	numQuorums := uint64(len(diff.NewQuorums))
	if err := wire.WriteVarInt(&buf, pver, numQuorums); err != nil {
		return nil, err
	}
	for _, q := range diff.NewQuorums {
		b, err := q.Bytes()
		if err != nil {
			return nil, err
		}
		if err := wire.WriteVarBytes(&buf, pver, b); err != nil {
			return nil, err
		}
	}

	record := buf.Bytes()
	checksum := chainhash.HashB(record[checksumSize:])
	copy(record[:checksumSize], checksum[:checksumSize])
	return record, nil
}

// deserializeSnapshot decodes a base list snapshot written by
// serializeSnapshot into a diff that rebuilds the list from an empty list.
func deserializeSnapshot(record []byte) (*wire.MsgMnListDiff, error) {
	const pver = wire.ProtocolVersion

	if len(record) < checksumSize+chainhash.HashSize {
		return nil, corruptError(nil, "base snapshot of %d bytes is too "+
			"short", len(record))
	}
	checksum := chainhash.HashB(record[checksumSize:])
	if !bytes.Equal(checksum[:checksumSize], record[:checksumSize]) {
		return nil, corruptError(nil, "base snapshot checksum mismatch")
	}

	diff := new(wire.MsgMnListDiff)
	r := bytes.NewReader(record[checksumSize:])
	if _, err := io.ReadFull(r, diff.BlockHash[:]); err != nil {
		return nil, corruptError(err, "unable to read base block hash")
	}

	cbTxBytes, err := wire.ReadVarBytes(r, pver, maxSnapshotItem, "cbtx")
	if err != nil {
		return nil, corruptError(err, "unable to read base coinbase")
	}
	cbTx, err := wire.MsgTxFromBytes(cbTxBytes)
	if err != nil {
		return nil, corruptError(err, "unable to decode base coinbase")
	}
	diff.CbTx = *cbTx

	treeBytes, err := wire.ReadVarBytes(r, pver, maxSnapshotItem, "merkle tree")
	if err != nil {
		return nil, corruptError(err, "unable to read base coinbase proof")
	}
	tree, err := wire.PartialMerkleTreeFromBytes(treeBytes)
	if err != nil {
		return nil, corruptError(err, "unable to decode base coinbase proof")
	}
	diff.CbTxMerkleTree = *tree

	numEntries, err := wire.ReadVarInt(r, pver)
	if err != nil {
		return nil, corruptError(err, "unable to read entry count")
	}
	if numEntries > uint64(r.Len()) {
		return nil, corruptError(nil, "entry count %d exceeds snapshot size",
			numEntries)
	}
	diff.MNList = make([]*wire.MnListEntry, 0, numEntries)
	for i := uint64(0); i < numEntries; i++ {
		b, err := wire.ReadVarBytes(r, pver, maxSnapshotItem, "entry")
		if err != nil {
			return nil, corruptError(err, "unable to read entry %d", i)
		}
		entry, err := wire.MnListEntryFromBytes(b)
		if err != nil {
			return nil, corruptError(err, "unable to decode entry %d", i)
		}
		diff.MNList = append(diff.MNList, entry)
	}

	numQuorums, err := wire.ReadVarInt(r, pver)
	if err != nil {
		return nil, corruptError(err, "unable to read quorum count")
	}
	if numQuorums > uint64(r.Len()) {
		return nil, corruptError(nil, "quorum count %d exceeds snapshot "+
			"size", numQuorums)
	}
	diff.NewQuorums = make([]*wire.QuorumEntry, 0, numQuorums)
	for i := uint64(0); i < numQuorums; i++ {
		b, err := wire.ReadVarBytes(r, pver, maxSnapshotItem, "quorum")
		if err != nil {
			return nil, corruptError(err, "unable to read quorum %d", i)
		}
		q, err := wire.QuorumEntryFromBytes(b)
		if err != nil {
			return nil, corruptError(err, "unable to decode quorum %d", i)
		}
		diff.NewQuorums = append(diff.NewQuorums, q)
	}

	if r.Len() != 0 {
		return nil, corruptError(nil, "base snapshot has %d trailing bytes",
			r.Len())
	}
	return diff, nil
}

// resetDB removes every diff from the database and writes the database info
// and the passed base snapshot as part of the passed batch.
func resetDB(db *leveldb.DB, batch *leveldb.Batch, net wire.CurrencyNet, snapshot []byte) error {
	iter := db.NewIterator(util.BytesPrefix(prefixDiffs), nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return convertLdbErr(err, "failed to iterate stored diffs")
	}

	var version [4]byte
	binary.LittleEndian.PutUint32(version[:], currentDatabaseVersion)
	batch.Put(dbInfoVersionKeyName, version[:])

	var netBytes [4]byte
	binary.LittleEndian.PutUint32(netBytes[:], uint32(net))
	batch.Put(dbInfoNetKeyName, netBytes[:])

	var created [8]byte
	binary.LittleEndian.PutUint64(created[:], uint64(time.Now().Unix()))
	batch.Put(dbInfoCreatedKeyName, created[:])

	batch.Put(baseKeyName, snapshot)
	return nil
}

// checkDBInfo ensures the database holds a store of a supported version for
// the passed network.
func checkDBInfo(db *leveldb.DB, net wire.CurrencyNet) error {
	version, err := db.Get(dbInfoVersionKeyName, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return contextError(ErrStoreEmpty, "database does not hold a "+
			"masternode list store")
	}
	if err != nil {
		return convertLdbErr(err, "failed to read database version")
	}
	if len(version) != 4 {
		return corruptError(nil, "malformed database version")
	}
	if v := binary.LittleEndian.Uint32(version); v > currentDatabaseVersion {
		str := fmt.Sprintf("database version %d is newer than the latest "+
			"supported version %d", v, currentDatabaseVersion)
		return contextError(ErrDBVersion, str)
	}

	netBytes, err := db.Get(dbInfoNetKeyName, nil)
	if err != nil && !errors.Is(err, leveldb.ErrNotFound) {
		return convertLdbErr(err, "failed to read database network")
	}
	if len(netBytes) != 4 {
		return corruptError(nil, "malformed database network")
	}
	if dbNet := wire.CurrencyNet(binary.LittleEndian.Uint32(netBytes)); dbNet != net {
		str := fmt.Sprintf("database holds a store for %v, not %v", dbNet,
			net)
		return contextError(ErrWrongNetwork, str)
	}
	return nil
}

// OpenDB opens (or creates when needed) the masternode list database in the
// passed data directory and returns a handle to it.
func OpenDB(dataDir string) (*leveldb.DB, error) {
	dbPath := filepath.Join(dataDir, dbName)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, err
	}

	opts := opt.Options{
		Strict:      opt.DefaultStrict,
		Compression: opt.NoCompression,
		Filter:      filter.NewBloomFilter(10),
	}
	db, err := leveldb.OpenFile(dbPath, &opts)
	if err != nil {
		return nil, convertLdbErr(err, "failed to open masternode list "+
			"database")
	}
	return db, nil
}
