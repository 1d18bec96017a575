// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dashpay/dashcore-lib/chaincfg"
	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
	"github.com/dashpay/dashcore-lib/crypto/bls"
	"github.com/dashpay/dashcore-lib/mnlist"
	"github.com/dashpay/dashcore-lib/wire"
	"github.com/decred/dcrd/container/lru"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	// DefaultMaxDiffs is the number of diffs a store keeps on top of its base
	// list when the configuration does not specify one.
	DefaultMaxDiffs = 100

	// DefaultCacheSize is the number of reconstructed lists a store keeps
	// when the configuration does not specify one.
	DefaultCacheSize = 16
)

// Config is a descriptor which specifies the store instance configuration.
type Config struct {
	// Params identifies the network of the stored lists.
	//
	// This field is required.
	Params *chaincfg.Params

	// Verifier is used by every list of the store for quorum signature
	// checks.
	Verifier bls.Verifier

	// MaxDiffs is the number of diffs kept on top of the base list.  Older
	// diffs are folded into the base.  DefaultMaxDiffs is used when zero.
	MaxDiffs int

	// CacheSize is the number of lists reconstructed for past heights that
	// are kept in memory.  DefaultCacheSize is used when zero.
	CacheSize uint32

	// DB persists the store when set.  The store does not close it.
	DB *leveldb.DB
}

// windowDiff is a diff kept on top of the base list along with the height of
// the block it leads to.
type windowDiff struct {
	height uint32
	diff   *wire.MsgMnListDiff
}

// Store keeps the masternode lists of a range of recent blocks.  It holds a
// base list along with a bounded window of diffs on top of it.  Lists for
// blocks inside the window are rebuilt on demand by replaying diffs onto the
// base and the results are cached.
//
// Diffs handed to the store must not be modified afterwards.
//
// The store is safe for concurrent access.
type Store struct {
	params   *chaincfg.Params
	verifier bls.Verifier
	maxDiffs int
	db       *leveldb.DB

	// cache holds lists reconstructed for past heights keyed by the
	// requested height.  It is safe for concurrent access on its own.
	cache *lru.Map[uint32, *mnlist.MnList]

	mtx        sync.RWMutex
	base       *mnlist.MnList
	baseHeight uint32
	window     []windowDiff
	tip        *mnlist.MnList
}

// newStore returns a store for the passed configuration without any lists.
func newStore(cfg *Config) *Store {
	maxDiffs := cfg.MaxDiffs
	if maxDiffs <= 0 {
		maxDiffs = DefaultMaxDiffs
	}
	cacheSize := cfg.CacheSize
	if cacheSize == 0 {
		cacheSize = DefaultCacheSize
	}
	return &Store{
		params:   cfg.Params,
		verifier: cfg.Verifier,
		maxDiffs: maxDiffs,
		db:       cfg.DB,
		cache:    lru.NewMap[uint32, *mnlist.MnList](cacheSize),
	}
}

// New returns a store initialized with the passed diffs.  The first diff must
// build the list from scratch, which is signaled by a zero base block hash, and
// each following diff must build on the previous one.
//
// When the configuration carries a database, any store it holds is replaced.
func New(cfg *Config, diffs ...*wire.MsgMnListDiff) (*Store, error) {
	if len(diffs) == 0 {
		return nil, contextError(ErrInvalidFirstDiff, "no initial diff")
	}
	first := diffs[0]
	if !first.BaseBlockHash.IsZero() {
		str := fmt.Sprintf("initial diff builds on block %v instead of an "+
			"empty list", first.BaseBlockHash)
		return nil, contextError(ErrInvalidFirstDiff, str)
	}

	s := newStore(cfg)
	base := mnlist.New(s.params, s.verifier)
	if err := base.ApplyDiff(first); err != nil {
		return nil, err
	}
	s.base = base
	s.baseHeight = base.Height()
	s.tip = base.Copy()

	if s.db != nil {
		snapshot, err := serializeSnapshot(base.ToDiff())
		if err != nil {
			return nil, err
		}
		batch := new(leveldb.Batch)
		if err := resetDB(s.db, batch, s.params.Net, snapshot); err != nil {
			return nil, err
		}
		if err := s.db.Write(batch, nil); err != nil {
			return nil, convertLdbErr(err, "failed to initialize store")
		}
	}

	for _, diff := range diffs[1:] {
		if err := s.AddDiff(diff); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Load returns the store persisted in the database of the passed
// configuration.
func Load(cfg *Config) (*Store, error) {
	if cfg.DB == nil {
		return nil, contextError(ErrStoreEmpty, "no database configured")
	}
	if err := checkDBInfo(cfg.DB, cfg.Params.Net); err != nil {
		return nil, err
	}

	record, err := cfg.DB.Get(baseKeyName, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, corruptError(nil, "database has no base list")
	}
	if err != nil {
		return nil, convertLdbErr(err, "failed to read base list")
	}
	baseDiff, err := deserializeSnapshot(record)
	if err != nil {
		return nil, err
	}

	s := newStore(cfg)
	base := mnlist.New(s.params, s.verifier)
	if err := base.ApplyDiff(baseDiff); err != nil {
		return nil, corruptError(err, "unable to rebuild base list")
	}
	s.base = base
	s.baseHeight = base.Height()

	tip := base.Copy()
	iter := s.db.NewIterator(util.BytesPrefix(prefixDiffs), nil)
	defer iter.Release()
	for iter.Next() {
		height, ok := diffKeyHeight(iter.Key())
		if !ok {
			return nil, corruptError(nil, "malformed diff key %x", iter.Key())
		}
		diff, err := deserializeDiffRecord(iter.Value(), s.params.Net)
		if err != nil {
			return nil, err
		}
		if err := tip.ApplyDiff(diff); err != nil {
			return nil, corruptError(err, "unable to apply stored diff for "+
				"height %d", height)
		}
		if tip.Height() != height {
			return nil, corruptError(nil, "stored diff for height %d leads "+
				"to height %d", height, tip.Height())
		}
		s.window = append(s.window, windowDiff{height: height, diff: diff})
	}
	if err := iter.Error(); err != nil {
		return nil, convertLdbErr(err, "failed to iterate stored diffs")
	}
	s.tip = tip

	log.Infof("Loaded masternode list store at height %d (base height %d, "+
		"%d diffs)", tip.Height(), s.baseHeight, len(s.window))
	return s, nil
}

// AddDiff applies the passed diff to the current list of the store.  The diff
// must build on the current block and lead to a higher block.  The oldest
// diffs are folded into the base list once more than the configured number of
// diffs are kept.
//
// The store is unchanged when an error is returned.
func (s *Store) AddDiff(diff *wire.MsgMnListDiff) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	next := s.tip.Copy()
	if err := next.ApplyDiff(diff); err != nil {
		log.Warnf("Rejected diff for block %v: %v", diff.BlockHash, err)
		return err
	}
	height := next.Height()
	if height <= s.tip.Height() {
		str := fmt.Sprintf("diff for block %v at height %d does not "+
			"advance the store past height %d", diff.BlockHash, height,
			s.tip.Height())
		log.Warnf("Rejected diff: %s", str)
		return contextError(ErrInvalidHeight, str)
	}

	window := make([]windowDiff, 0, len(s.window)+1)
	window = append(window, s.window...)
	window = append(window, windowDiff{height: height, diff: diff})

	base, baseHeight := s.base, s.baseHeight
	var folded []uint32
	for len(window) > s.maxDiffs {
		oldest := window[0]
		if len(folded) == 0 {
			base = base.Copy()
		}
		if err := base.ApplyDiff(oldest.diff); err != nil {
			return err
		}
		baseHeight = oldest.height
		folded = append(folded, oldest.height)
		window = window[1:]
	}

	if s.db != nil {
		batch := new(leveldb.Batch)
		record, err := serializeDiffRecord(diff, s.params.Net)
		if err != nil {
			return err
		}
		batch.Put(diffKey(height), record)
		if len(folded) > 0 {
			snapshot, err := serializeSnapshot(base.ToDiff())
			if err != nil {
				return err
			}
			batch.Put(baseKeyName, snapshot)
			for _, h := range folded {
				batch.Delete(diffKey(h))
			}
		}
		if err := s.db.Write(batch, nil); err != nil {
			return convertLdbErr(err, "failed to store diff")
		}
	}

	s.window = window
	s.tip = next
	if len(folded) > 0 {
		s.base = base
		s.baseHeight = baseHeight
		for _, h := range s.cache.Keys() {
			if h < baseHeight {
				s.cache.Delete(h)
			}
		}
		log.Debugf("Folded %d diffs into the base list at height %d",
			len(folded), baseHeight)
	}
	log.Tracef("Added diff for block %v at height %d", diff.BlockHash, height)
	return nil
}

// mnListByHeight returns the list at the passed height without copying it.
//
// This function MUST be called with the store lock held (for reads).
func (s *Store) mnListByHeight(height uint32) (*mnlist.MnList, error) {
	tipHeight := s.tip.Height()
	if height < s.baseHeight || height > tipHeight {
		str := fmt.Sprintf("height %d is outside of the stored range "+
			"[%d, %d]", height, s.baseHeight, tipHeight)
		return nil, contextError(ErrHeightOutOfRange, str)
	}
	switch height {
	case tipHeight:
		return s.tip, nil
	case s.baseHeight:
		return s.base, nil
	}
	if l, ok := s.cache.Get(height); ok {
		return l, nil
	}

	l := s.base.Copy()
	for _, wd := range s.window {
		if wd.height > height {
			break
		}
		if err := l.ApplyDiff(wd.diff); err != nil {
			return nil, err
		}
	}
	s.cache.Put(height, l)
	return l, nil
}

// MnListByHeight returns the list at the passed height.  Heights between two
// stored diffs result in the list of the lower one.  The returned list is a
// copy that may be advanced by the caller.
func (s *Store) MnListByHeight(height uint32) (*mnlist.MnList, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	l, err := s.mnListByHeight(height)
	if err != nil {
		return nil, err
	}
	return l.Copy(), nil
}

// MnListByHash returns the list at the passed block.  The returned list is a
// copy that may be advanced by the caller.
//
// It may be used as an mnlist.ListLookup.
func (s *Store) MnListByHash(blockHash chainhash.Hash) (*mnlist.MnList, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.base.BlockHash() == blockHash {
		return s.base.Copy(), nil
	}
	for _, wd := range s.window {
		if wd.diff.BlockHash == blockHash {
			l, err := s.mnListByHeight(wd.height)
			if err != nil {
				return nil, err
			}
			return l.Copy(), nil
		}
	}
	str := fmt.Sprintf("block %v is not covered by the store", blockHash)
	return nil, contextError(ErrUnknownBlock, str)
}

// CurrentMnList returns a copy of the list at the most recent block.
func (s *Store) CurrentMnList() *mnlist.MnList {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.tip.Copy()
}

// TipHeight returns the height of the most recent block of the store.
func (s *Store) TipHeight() uint32 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.tip.Height()
}

// TipHash returns the hash of the most recent block of the store.
func (s *Store) TipHash() chainhash.Hash {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.tip.BlockHash()
}

// BaseHeight returns the height of the oldest list the store can return.
func (s *Store) BaseHeight() uint32 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.baseHeight
}

// NumDiffs returns the number of diffs kept on top of the base list.
func (s *Store) NumDiffs() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.window)
}

// Params returns the network parameters of the store.
func (s *Store) Params() *chaincfg.Params {
	return s.params
}
