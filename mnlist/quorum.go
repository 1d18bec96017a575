// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnlist

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
	"github.com/dashpay/dashcore-lib/wire"
)

// QuorumState tracks a quorum of the list along with whether its signatures
// were verified.  The quorum itself is never modified.
type QuorumState struct {
	Entry *wire.QuorumEntry

	// hash is the merkle leaf of the quorum.  It is only valid when hashOK
	// is set, which is not the case for outdated quorums.
	hash   chainhash.Hash
	hashOK bool

	verified atomic.Bool
}

// newQuorumState returns the state of a freshly added quorum.
func newQuorumState(q *wire.QuorumEntry) (*QuorumState, error) {
	state := &QuorumState{Entry: q}
	if q.IsOutdated() {
		return state, nil
	}
	hash, err := q.Hash()
	if err != nil {
		return nil, err
	}
	state.hash = hash
	state.hashOK = true
	return state, nil
}

// Hash returns the merkle leaf of the quorum and whether it is known.
func (s *QuorumState) Hash() (chainhash.Hash, bool) {
	return s.hash, s.hashOK
}

// IsVerified returns whether both signatures of the quorum were verified.
func (s *QuorumState) IsVerified() bool {
	return s.verified.Load()
}

// MasternodeScore is the score of a masternode for a quorum selection
// modifier.
type MasternodeScore struct {
	Score chainhash.Hash
	Entry *wire.MnListEntry
}

// compareScore compares two member scores as little-endian integers.
func compareScore(a, b *chainhash.Hash) int {
	for i := chainhash.HashSize - 1; i >= 0; i-- {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// CalculateScores returns the scores of the valid masternodes with a confirmed
// registration for the passed selection modifier, highest score first.  The
// score of a masternode is the single sha256 of its confirmed hash with
// registration hash followed by the modifier.
func (l *MnList) CalculateScores(modifier chainhash.Hash) []MasternodeScore {
	scores := make([]MasternodeScore, 0, len(l.sorted))
	var buf [chainhash.HashSize * 2]byte
	copy(buf[chainhash.HashSize:], modifier[:])
	for _, entry := range l.sorted {
		if !entry.IsValid || !entry.HasConfirmedHash() {
			continue
		}
		cwp := entry.ConfirmedHashWithProRegTxHash()
		copy(buf[:], cwp[:])
		scores = append(scores, MasternodeScore{
			Score: chainhash.SingleHashH(buf[:]),
			Entry: entry,
		})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return compareScore(&scores[i].Score, &scores[j].Score) > 0
	})
	return scores
}

// CalculateQuorum returns the size highest scoring masternodes for the passed
// selection modifier.  Fewer masternodes are returned when the list does not
// hold enough scored masternodes.
func (l *MnList) CalculateQuorum(modifier chainhash.Hash, size int) []*wire.MnListEntry {
	scores := l.CalculateScores(modifier)
	if len(scores) > size {
		scores = scores[:size]
	}
	members := make([]*wire.MnListEntry, 0, len(scores))
	for i := range scores {
		members = append(members, scores[i].Entry)
	}
	return members
}

// QuorumScore is the score of a quorum for signing a request.
type QuorumScore struct {
	Score  chainhash.Hash
	Index  int
	Quorum *wire.QuorumEntry
}

// CalculateSignatoryQuorumScores returns the scores of the active quorums of
// type t for signing the request identified by modifier, lowest score first.
// Index is the position of the quorum in QuorumsOfType.
func (l *MnList) CalculateSignatoryQuorumScores(t wire.LLMQType, modifier chainhash.Hash) ([]QuorumScore, error) {
	if _, ok := t.Params(); !ok {
		str := fmt.Sprintf("unknown quorum type %d", uint8(t))
		return nil, ruleError(ErrUnknownQuorumType, str)
	}
	quorums := l.QuorumsOfType(t)
	scores := make([]QuorumScore, 0, len(quorums))
	for i, q := range quorums {
		scores = append(scores, QuorumScore{
			Score:  q.OrderingHashForRequestID(&modifier),
			Index:  i,
			Quorum: q,
		})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return bytes.Compare(scores[i].Score[:], scores[j].Score[:]) < 0
	})
	return scores, nil
}

// SelectSignatoryQuorum returns the quorum of type t responsible for signing
// the request identified by requestID.
func (l *MnList) SelectSignatoryQuorum(t wire.LLMQType, requestID chainhash.Hash) (*wire.QuorumEntry, error) {
	scores, err := l.CalculateSignatoryQuorumScores(t, requestID)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		str := fmt.Sprintf("no active %v quorums at block %v", t, l.blockHash)
		return nil, ruleError(ErrNoQuorums, str)
	}
	return scores[0].Quorum, nil
}

// checkQuorumContext ensures the list is the masternode list at the block
// the quorum was formed at and that the quorum carries a commitment.
func (l *MnList) checkQuorumContext(q *wire.QuorumEntry) error {
	if l.blockHash != q.QuorumHash {
		str := fmt.Sprintf("masternode list at block %v is not the list of "+
			"quorum %v", l.blockHash, q)
		return ruleError(ErrWrongQuorumContext, str)
	}
	return checkQuorumSupported(q)
}

// checkQuorumSupported ensures the quorum carries the commitment needed to
// verify it.
func checkQuorumSupported(q *wire.QuorumEntry) error {
	if q.IsOutdated() {
		str := fmt.Sprintf("quorum %v was received in the outdated form "+
			"and can't be verified", q)
		return ruleError(ErrUnsupportedQuorum, str)
	}
	return nil
}

// QuorumMembers returns the members of the passed quorum.  The receiver must be
// the masternode list at the block the quorum was formed at.
func (l *MnList) QuorumMembers(q *wire.QuorumEntry) ([]*wire.MnListEntry, error) {
	if l.blockHash != q.QuorumHash {
		str := fmt.Sprintf("masternode list at block %v is not the list of "+
			"quorum %v", l.blockHash, q)
		return nil, ruleError(ErrWrongQuorumContext, str)
	}
	params, ok := q.LLMQType.Params()
	if !ok {
		str := fmt.Sprintf("quorum %v has an unknown type", q)
		return nil, ruleError(ErrUnknownQuorumType, str)
	}
	return l.CalculateQuorum(q.SelectionModifier(), params.Size), nil
}

// IsValidQuorumSig returns whether the threshold signature of the quorum over
// its commitment is valid for the quorum public key.
func (l *MnList) IsValidQuorumSig(q *wire.QuorumEntry) (bool, error) {
	if err := checkQuorumSupported(q); err != nil {
		return false, err
	}
	msgHash, err := q.CommitmentHash()
	if err != nil {
		return false, err
	}
	return l.verifier.Verify(q.Commitment.QuorumSig[:], msgHash[:],
		q.QuorumPublicKey[:]), nil
}

// IsValidMemberSig returns whether the aggregated signature of the signing
// members of the quorum over its commitment is valid for their operator keys.
// The receiver must be the masternode list at the block the quorum was formed
// at.
func (l *MnList) IsValidMemberSig(q *wire.QuorumEntry) (bool, error) {
	if err := l.checkQuorumContext(q); err != nil {
		return false, err
	}
	members, err := l.QuorumMembers(q)
	if err != nil {
		return false, err
	}
	msgHash, err := q.CommitmentHash()
	if err != nil {
		return false, err
	}

	// Signer bits of positions without a member can't be satisfied.
	signers := q.Commitment.Signers
	for i := len(members); i < len(signers)*8; i++ {
		if signers.Get(i) {
			return false, nil
		}
	}

	pubKeys := make([][]byte, 0, len(members))
	for _, member := range members {
		pubKeys = append(pubKeys, member.PubKeyOperator[:])
	}
	return l.verifier.VerifyAggregated(q.Commitment.MembersSig[:], msgHash[:],
		pubKeys, signers), nil
}

// VerifyQuorum verifies both signatures of the quorum identified by key
// against memberList, the masternode list at the block the quorum was formed
// at.  A successful verification is cached by the quorum state so later calls
// return without checking signatures again.
//
// Invalid signatures are reported by a false result.  Errors are returned for
// unknown quorums, mismatched member lists and outdated quorums.
func (l *MnList) VerifyQuorum(ctx context.Context, key wire.QuorumKey, memberList *MnList) (bool, error) {
	state, ok := l.quorums[key]
	if !ok {
		str := fmt.Sprintf("quorum %v is not active at block %v", key,
			l.blockHash)
		return false, ruleError(ErrQuorumNotFound, str)
	}
	return l.verifyQuorumState(ctx, state, memberList)
}

// verifyQuorumState performs the verification of VerifyQuorum for a known
// quorum state.
func (l *MnList) verifyQuorumState(ctx context.Context, state *QuorumState, memberList *MnList) (bool, error) {
	if err := memberList.checkQuorumContext(state.Entry); err != nil {
		return false, err
	}
	if state.verified.Load() {
		log.Tracef("Quorum %v already verified", state.Entry)
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	valid, err := memberList.IsValidMemberSig(state.Entry)
	if err != nil || !valid {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	valid, err = l.IsValidQuorumSig(state.Entry)
	if err != nil || !valid {
		return false, err
	}
	state.verified.Store(true)
	return true, nil
}

// ListLookup returns the masternode list at the passed block hash.
type ListLookup func(blockHash chainhash.Hash) (*MnList, error)

// VerifyQuorums verifies every quorum of the list against the masternode list
// at its quorum block as returned by lookup.  The keys of quorums with invalid
// signatures are returned.  Outdated quorums can't be verified and result in
// an error.
func (l *MnList) VerifyQuorums(ctx context.Context, lookup ListLookup) ([]wire.QuorumKey, error) {
	var invalid []wire.QuorumKey
	for _, state := range l.quorumOrder {
		q := state.Entry
		if err := checkQuorumSupported(q); err != nil {
			return nil, err
		}
		if state.verified.Load() {
			continue
		}
		memberList, err := lookup(q.QuorumHash)
		if err != nil {
			return nil, err
		}
		valid, err := l.verifyQuorumState(ctx, state, memberList)
		if err != nil {
			return nil, err
		}
		if !valid {
			log.Debugf("Quorum %v has invalid signatures", q)
			invalid = append(invalid, wire.QuorumKey{
				LLMQType:   q.LLMQType,
				QuorumHash: q.QuorumHash,
			})
		}
	}
	return invalid, nil
}
