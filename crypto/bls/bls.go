// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bls

import (
	"crypto/sha256"
	"errors"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/jrick/bitset"
)

const (
	// PublicKeySize is the size of a compressed G1 public key.
	PublicKeySize = bls12381.SizeOfG1AffineCompressed

	// SignatureSize is the size of a compressed G2 signature.
	SignatureSize = bls12381.SizeOfG2AffineCompressed
)

// basicSchemeDST is the domain separation tag of the basic signature scheme
// with public keys in G1 and signatures in G2.
var basicSchemeDST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")

// Verifier verifies the BLS signatures carried by quorum commitments and
// locks.  A failed verification is a false result rather than an error since
// malformed keys and signatures are just invalid signatures.
type Verifier interface {
	// Verify returns whether sig is a valid signature of msgHash by the
	// owner of pubKey.
	Verify(sig, msgHash, pubKey []byte) bool

	// VerifyAggregated returns whether sig is the aggregate of signatures
	// of msgHash by every owner of pubKeys selected by signers.
	VerifyAggregated(sig, msgHash []byte, pubKeys [][]byte, signers bitset.Bytes) bool
}

// BasicVerifier implements Verifier for the basic scheme over BLS12-381.
type BasicVerifier struct{}

// Ensure BasicVerifier implements the Verifier interface.
var _ Verifier = BasicVerifier{}

// parsePublicKey decodes a compressed public key.  The point at infinity is
// rejected.
func parsePublicKey(pubKey []byte) (*bls12381.G1Affine, bool) {
	if len(pubKey) != PublicKeySize {
		return nil, false
	}
	var pk bls12381.G1Affine
	if _, err := pk.SetBytes(pubKey); err != nil {
		return nil, false
	}
	if pk.IsInfinity() {
		return nil, false
	}
	return &pk, true
}

// parseSignature decodes a compressed signature.
func parseSignature(sig []byte) (*bls12381.G2Affine, bool) {
	if len(sig) != SignatureSize {
		return nil, false
	}
	var s bls12381.G2Affine
	if _, err := s.SetBytes(sig); err != nil {
		return nil, false
	}
	return &s, true
}

// verify checks e(pk, H(msg)) == e(g1, sig).
func verify(sig *bls12381.G2Affine, msgHash []byte, pk *bls12381.G1Affine) bool {
	hm, err := bls12381.HashToG2(msgHash, basicSchemeDST)
	if err != nil {
		return false
	}

	_, _, g1, _ := bls12381.Generators()
	var negG1 bls12381.G1Affine
	negG1.Neg(&g1)

	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{*pk, negG1},
		[]bls12381.G2Affine{hm, *sig},
	)
	return err == nil && ok
}

// Verify returns whether sig is a valid signature of msgHash by the owner of
// pubKey.
//
// This is part of the Verifier interface.
func (BasicVerifier) Verify(sig, msgHash, pubKey []byte) bool {
	pk, ok := parsePublicKey(pubKey)
	if !ok {
		return false
	}
	s, ok := parseSignature(sig)
	if !ok {
		return false
	}
	return verify(s, msgHash, pk)
}

// VerifyAggregated returns whether sig is the aggregate of signatures of
// msgHash by every owner of pubKeys selected by signers.  Bit i of signers
// selects pubKeys[i].  At least one key must be selected.
//
// This is part of the Verifier interface.
func (BasicVerifier) VerifyAggregated(sig, msgHash []byte, pubKeys [][]byte, signers bitset.Bytes) bool {
	s, ok := parseSignature(sig)
	if !ok {
		return false
	}

	var agg bls12381.G1Jac
	var selected int
	for i, pubKey := range pubKeys {
		if i >= len(signers)*8 || !signers.Get(i) {
			continue
		}
		pk, ok := parsePublicKey(pubKey)
		if !ok {
			return false
		}
		agg.AddMixed(pk)
		selected++
	}
	if selected == 0 {
		return false
	}

	var aggPK bls12381.G1Affine
	aggPK.FromJacobian(&agg)
	if aggPK.IsInfinity() {
		return false
	}
	return verify(s, msgHash, &aggPK)
}

// SecretKey is a BLS12-381 secret scalar.  It signs with the same scheme
// BasicVerifier verifies.
type SecretKey struct {
	scalar big.Int
}

// NewSecretKey deterministically derives a secret key from seed.
func NewSecretKey(seed []byte) *SecretKey {
	h := sha256.Sum256(seed)
	var sk SecretKey
	sk.scalar.SetBytes(h[:])
	sk.scalar.Mod(&sk.scalar, fr.Modulus())
	if sk.scalar.Sign() == 0 {
		sk.scalar.SetInt64(1)
	}
	return &sk
}

// PublicKey returns the compressed public key of the secret key.
func (sk *SecretKey) PublicKey() [PublicKeySize]byte {
	var pk bls12381.G1Affine
	pk.ScalarMultiplicationBase(&sk.scalar)
	return pk.Bytes()
}

// Sign returns the compressed signature of msgHash.
func (sk *SecretKey) Sign(msgHash []byte) ([SignatureSize]byte, error) {
	hm, err := bls12381.HashToG2(msgHash, basicSchemeDST)
	if err != nil {
		return [SignatureSize]byte{}, err
	}
	var sig bls12381.G2Affine
	sig.ScalarMultiplication(&hm, &sk.scalar)
	return sig.Bytes(), nil
}

// AggregateSignatures returns the sum of the passed compressed signatures.
func AggregateSignatures(sigs ...[]byte) ([SignatureSize]byte, error) {
	if len(sigs) == 0 {
		return [SignatureSize]byte{}, errors.New("no signatures to aggregate")
	}
	var agg bls12381.G2Jac
	for _, sig := range sigs {
		s, ok := parseSignature(sig)
		if !ok {
			return [SignatureSize]byte{}, errors.New("malformed signature")
		}
		agg.AddMixed(s)
	}
	var aggAff bls12381.G2Affine
	aggAff.FromJacobian(&agg)
	return aggAff.Bytes(), nil
}
