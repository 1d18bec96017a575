// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package locks

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dashpay/dashcore-lib/chaincfg"
	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
	"github.com/dashpay/dashcore-lib/crypto/bls"
	"github.com/dashpay/dashcore-lib/mnlist"
	"github.com/dashpay/dashcore-lib/mnlist/store"
	"github.com/dashpay/dashcore-lib/wire"
)

const (
	// chainLockRequestIDPrefix tags the request ids of chain locks.
	chainLockRequestIDPrefix = "clsig"

	// instantLockRequestIDPrefix tags the request ids of instant locks.
	instantLockRequestIDPrefix = "islock"
)

// Kind identifies the kind of lock and with it the quorum type that signs it.
type Kind uint8

const (
	// ChainLock locks are signed by the chain lock quorums.
	ChainLock Kind = iota

	// InstantLock locks are signed by the instant send quorums.
	InstantLock
)

// String returns the Kind in human-readable form.
func (k Kind) String() string {
	switch k {
	case ChainLock:
		return "chain lock"
	case InstantLock:
		return "instant lock"
	}
	return fmt.Sprintf("Unknown Kind (%d)", uint8(k))
}

// llmqType returns the quorum type that signs locks of the kind according to
// the passed list.
func (k Kind) llmqType(l *mnlist.MnList) wire.LLMQType {
	if k == InstantLock {
		return l.InstantSendLLMQType()
	}
	return l.ChainLockLLMQType()
}

// ListSource provides the masternode lists signing quorums are resolved from.
// It is implemented by *store.Store.
type ListSource interface {
	MnListByHeight(height uint32) (*mnlist.MnList, error)
	TipHeight() uint32
	Params() *chaincfg.Params
}

// Ensure the store implements the ListSource interface.
var _ ListSource = (*store.Store)(nil)

// requestID returns the double sha256 of the length prefixed tag followed by
// data.
func requestID(prefix string, data func(w *chainhash.DoubleHashWriter)) chainhash.Hash {
	w := chainhash.NewDoubleHashWriter()

	// Writes to a hash never fail.
	_ = wire.WriteVarBytes(w, wire.ProtocolVersion, []byte(prefix))
	data(w)
	return w.Sum256()
}

// ChainLockRequestID returns the id of the signing request of the chain lock
// for the block at height.
func ChainLockRequestID(height int32) chainhash.Hash {
	return requestID(chainLockRequestIDPrefix, func(w *chainhash.DoubleHashWriter) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(height))
		w.Write(b[:])
	})
}

// InstantLockRequestID returns the id of the signing request of the instant
// lock.  It commits to the locked inputs only.
func InstantLockRequestID(islock *wire.MsgISLock) chainhash.Hash {
	return requestID(instantLockRequestIDPrefix, func(w *chainhash.DoubleHashWriter) {
		// Writes to a hash never fail.
		_ = islock.WriteInputs(w)
	})
}

// SignHash returns the message a quorum signs to answer the request
// identified by requestID with msgHash.
func SignHash(llmqType wire.LLMQType, quorumHash, requestID, msgHash chainhash.Hash) chainhash.Hash {
	w := chainhash.NewDoubleHashWriter()
	w.Write([]byte{byte(llmqType)})
	w.Write(quorumHash[:])
	w.Write(requestID[:])
	w.Write(msgHash[:])
	return w.Sum256()
}

// VerifyAgainstQuorum returns whether sig is the threshold signature of the
// quorum q over the answer msgHash to the request identified by requestID.
func VerifyAgainstQuorum(verifier bls.Verifier, q *wire.QuorumEntry, requestID, msgHash chainhash.Hash, sig []byte) bool {
	if verifier == nil {
		verifier = bls.BasicVerifier{}
	}
	signHash := SignHash(q.LLMQType, q.QuorumHash, requestID, msgHash)
	return verifier.Verify(sig, signHash[:], q.QuorumPublicKey[:])
}

// SelectSignatoryQuorum returns the quorum responsible for signing the request
// identified by requestID as seen by the list offset blocks below height.
func SelectSignatoryQuorum(src ListSource, kind Kind, requestID chainhash.Hash, height, offset uint32) (*wire.QuorumEntry, error) {
	if offset > height {
		str := fmt.Sprintf("offset %d exceeds height %d", offset, height)
		return nil, lockError(store.ErrHeightOutOfRange, str)
	}
	l, err := src.MnListByHeight(height - offset)
	if err != nil {
		return nil, err
	}
	return l.SelectSignatoryQuorum(kind.llmqType(l), requestID)
}

// signOffsets returns the height offsets at which signing quorums are tried.
// Signers and verifiers may disagree on the tip, so the configured offset is
// followed by no offset and finally by twice the configured offset.
func signOffsets(params *chaincfg.Params) [3]uint32 {
	offset := params.LLMQSignHeightOffset
	return [3]uint32{offset, 0, offset * 2}
}

// isUnresolvable returns whether the error means no signing quorum exists for
// an attempt as opposed to a failure that ends verification.
func isUnresolvable(err error) bool {
	return errors.Is(err, store.ErrHeightOutOfRange) ||
		errors.Is(err, mnlist.ErrNoQuorums) ||
		errors.Is(err, mnlist.ErrUnknownQuorumType)
}

// verify tries the signature against the signing quorums of every offset in
// turn.  Verification fails with an error only when no quorum could be
// resolved at all.
func verify(ctx context.Context, src ListSource, verifier bls.Verifier, kind Kind,
	requestID, msgHash chainhash.Hash, sig []byte, height uint32) (bool, error) {

	var unresolved error
	attempted := false
	for _, offset := range signOffsets(src.Params()) {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		q, err := SelectSignatoryQuorum(src, kind, requestID, height, offset)
		if err != nil {
			if !isUnresolvable(err) {
				return false, err
			}
			log.Debugf("No signing quorum for %v %v at offset %d: %v", kind,
				requestID, offset, err)
			if unresolved == nil {
				unresolved = err
			}
			continue
		}

		attempted = true
		if VerifyAgainstQuorum(verifier, q, requestID, msgHash, sig) {
			log.Debugf("Verified %v %v with quorum %v at offset %d", kind,
				requestID, q.QuorumHash, offset)
			return true, nil
		}
		log.Tracef("Signature of %v %v does not match quorum %v at "+
			"offset %d", kind, requestID, q.QuorumHash, offset)
	}

	if !attempted {
		str := fmt.Sprintf("no signing quorum for %v %v at height %d: %v",
			kind, requestID, height, unresolved)
		return false, lockError(ErrNoSignatoryQuorum, str)
	}
	return false, nil
}

// VerifyChainLock returns whether the chain lock carries a valid signature of
// one of the quorums that may sign it.  The lists used to resolve the quorums
// are taken from src relative to the locked height.
//
// An invalid signature is a false result.  An error means the lock could not
// be checked.
func VerifyChainLock(ctx context.Context, src ListSource, verifier bls.Verifier, clsig *wire.MsgCLSig) (bool, error) {
	if clsig.Height < 0 {
		str := fmt.Sprintf("chain lock for block %v has negative height %d",
			clsig.BlockHash, clsig.Height)
		return false, lockError(ErrInvalidLockHeight, str)
	}
	requestID := ChainLockRequestID(clsig.Height)
	return verify(ctx, src, verifier, ChainLock, requestID, clsig.BlockHash,
		clsig.Signature[:], uint32(clsig.Height))
}

// VerifyInstantLock returns whether the instant lock carries a valid signature
// of one of the quorums that may sign it.  Instant locks do not commit to a
// height, so the lists used to resolve the quorums are taken from src relative
// to its tip.
//
// An invalid signature is a false result.  An error means the lock could not
// be checked.
func VerifyInstantLock(ctx context.Context, src ListSource, verifier bls.Verifier, islock *wire.MsgISLock) (bool, error) {
	requestID := InstantLockRequestID(islock)
	return verify(ctx, src, verifier, InstantLock, requestID, islock.TxID,
		islock.Signature[:], src.TipHeight())
}
