// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package locks

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"reflect"
	"testing"

	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
	"github.com/dashpay/dashcore-lib/crypto/bls"
	"github.com/dashpay/dashcore-lib/wire"
	"github.com/davecgh/go-spew/spew"
)

// TestRequestIDs ensures the request ids and hashes of locks match the values
// produced by the network.
func TestRequestIDs(t *testing.T) {
	clsig, err := wire.MsgCLSigFromBytes(hexToBytes("ea480100f4a5708c82f58" +
		"9e19dfe9e9cd1dbab57f74f27b24f0a3c765ba6e007000000000a43f1c3e5b3e8dbd" +
		"670bca8d437dc25572f72d8e1e9be673e9ebbb606570307c3e5f5d073f7beb209dd7" +
		"e0b8f96c751060ab3a7fb69a71d5ccab697b8cfa5a91038a6fecf76b7a827d75d17f" +
		"01496302942aa5e2c7f4a48246efc8d3941bf6c"))
	if err != nil {
		t.Fatalf("unable to decode chain lock: %v", err)
	}
	if clsig.Height != 84202 {
		t.Fatalf("unexpected chain lock height -- got %d, want 84202",
			clsig.Height)
	}
	const wantCLSigHash = "3764ada6c32f09bb4f02295415b230657720f8be17d6fe04" +
		"6f0f8bf3db72b8e0"
	if got := clsig.Hash().String(); got != wantCLSigHash {
		t.Fatalf("unexpected chain lock hash -- got %s, want %s", got,
			wantCLSigHash)
	}
	const wantCLSigID = "6639d0da4a746f7260968e54be1b14fce8c5429f51bfe8762b" +
		"58aae294e0925d"
	id := ChainLockRequestID(clsig.Height)
	if got := hex.EncodeToString(id[:]); got != wantCLSigID {
		t.Fatalf("unexpected chain lock request id -- got %s, want %s", got,
			wantCLSigID)
	}

	tests := []struct {
		name   string
		lock   string
		hash   string
		reqID  string
		txID   string
		inputs int
	}{{
		name: "instant lock spending output 0",
		lock: "011dbbda5861b12d7523f20aa5e0d42f52de3dcd2d5c2fe919ba67b59f050" +
			"d206e00000000babb35d229d6bf5897a9fc3770755868d9730e022dc04c8a7a7e" +
			"9df9f1caccbe8967c46529a967b3822e1ba8a173066296d02593f0f59b3a78a30" +
			"a7eef9c8a120847729e62e4a32954339286b79fe7590221331cd28d576887a263" +
			"f45b595d499272f656c3f5176987c976239cac16f972d796ad82931d532102a4f" +
			"95eec7d80",
		hash:   "4001b2c5acff9fc94e60d5adda9f70c3f0f829d0cc08434844c31b0410dfaca0",
		reqID:  "bbbb1cfeb55396d7e5f9bebdb220670d23dbb0b47e22b1cd5357afe1ef33f559",
		txID:   "becccaf1f99d7e7a8a4cc02d020e73d96858757037fca99758bfd629d235bbba",
		inputs: 1,
	}, {
		name: "instant lock spending output 1",
		lock: "01825991eb118aa41e71ced9077dd48fa66b8765c7e7198c4671bfa8f757e" +
			"f38bb01000000cadb623d3a686e994c33d9f77be75e1662213ce1eda72f4034d6" +
			"c0d0f14ce603137c0c27601a7d276f0141c55a11a84b34a022688399fab8e1f33" +
			"dfa758007ddae002bfc29ce9e1bcf05bce139fa68b501ab691053ddd8a22d70de" +
			"692f0ab06aca57f77a2844ce9f0ad79d74727dca896236019ac4bb2722ab80ce7" +
			"f9e69bc9d",
		hash:   "e01f06c0a9284ae47253d913e1cd6caa92df8bbbf372dd7feef3f15676001c31",
		reqID:  "4c778920186645d97f406e2d3c7ea75bd1a6989992123b640b7bd6b8bc6676bc",
		txID:   "03e64cf1d0c0d634402fa7ede13c2162165ee77bf7d9334c996e683a3d62dbca",
		inputs: 1,
	}}

	for _, test := range tests {
		islock, err := wire.MsgISLockFromBytes(hexToBytes(test.lock))
		if err != nil {
			t.Errorf("%s: unable to decode lock: %v", test.name, err)
			continue
		}
		if len(islock.Inputs) != test.inputs || islock.TxID.String() != test.txID {
			t.Errorf("%s: unexpected lock %v", test.name, spew.Sdump(islock))
			continue
		}
		if got := islock.Hash().String(); got != test.hash {
			t.Errorf("%s: unexpected hash -- got %s, want %s", test.name,
				got, test.hash)
		}
		if got := InstantLockRequestID(islock).String(); got != test.reqID {
			t.Errorf("%s: unexpected request id -- got %s, want %s",
				test.name, got, test.reqID)
		}
	}
}

// TestSignHash ensures the sign hash commits to the quorum type, quorum,
// request and answer in that order.
func TestSignHash(t *testing.T) {
	quorumHash := chainhash.HashH([]byte("quorum"))
	requestID := ChainLockRequestID(100)
	msgHash := chainhash.HashH([]byte("block"))

	var buf bytes.Buffer
	buf.WriteByte(byte(wire.LLMQTypeTest))
	buf.Write(quorumHash[:])
	buf.Write(requestID[:])
	buf.Write(msgHash[:])
	want := chainhash.HashH(buf.Bytes())

	got := SignHash(wire.LLMQTypeTest, quorumHash, requestID, msgHash)
	if got != want {
		t.Fatalf("unexpected sign hash -- got %v, want %v", got, want)
	}
	other := SignHash(wire.LLMQTypeTestV17, quorumHash, requestID, msgHash)
	if other == got {
		t.Fatal("sign hash does not commit to the quorum type")
	}
}

// TestVerifyAgainstQuorum ensures lock signatures are checked against the
// quorum public key.
func TestVerifyAgainstQuorum(t *testing.T) {
	q, sk := testQuorum(wire.LLMQTypeTest, 1)
	requestID := ChainLockRequestID(10)
	msgHash := testBlockHash(10)
	signHash := SignHash(q.LLMQType, q.QuorumHash, requestID, msgHash)
	sig, err := sk.Sign(signHash[:])
	if err != nil {
		t.Fatalf("unable to sign: %v", err)
	}

	if !VerifyAgainstQuorum(nil, q, requestID, msgHash, sig[:]) {
		t.Fatal("valid signature rejected")
	}
	if !VerifyAgainstQuorum(bls.BasicVerifier{}, q, requestID, msgHash, sig[:]) {
		t.Fatal("valid signature rejected by explicit verifier")
	}
	if VerifyAgainstQuorum(nil, q, requestID, testBlockHash(11), sig[:]) {
		t.Fatal("signature accepted for another block")
	}
	if VerifyAgainstQuorum(nil, q, ChainLockRequestID(11), msgHash, sig[:]) {
		t.Fatal("signature accepted for another request")
	}
	other, _ := testQuorum(wire.LLMQTypeTest, 2)
	if VerifyAgainstQuorum(nil, other, requestID, msgHash, sig[:]) {
		t.Fatal("signature accepted for another quorum")
	}
}

// TestVerifyChainLock ensures chain locks are verified against the quorums of
// the lists at the configured offset, no offset and twice the offset in that
// order.
func TestVerifyChainLock(t *testing.T) {
	h := newLockHarness(t)
	wrongKey := bls.NewSecretKey([]byte("wrong"))

	// The lists at heights 12, 20 and 4 are consulted for a lock at height
	// 20.  Only quorum a is active at height 4.
	const height = 20
	requestID := ChainLockRequestID(height)
	atOffset := h.selected(t, ChainLock, requestID, height, 8)
	keyA := h.selected(t, ChainLock, requestID, height, 16)
	if keyA.QuorumHash != testBlockHash(1) {
		t.Fatalf("unexpected quorum at height 4: %v", keyA)
	}
	wantHeightsA := []uint32{12, 20, 4}
	if atOffset == keyA {
		wantHeightsA = []uint32{12}
	}

	wrongSig, err := wrongKey.Sign(requestID[:])
	if err != nil {
		t.Fatalf("unable to sign: %v", err)
	}

	tests := []struct {
		name    string
		height  int32
		sig     [bls.SignatureSize]byte
		want    bool
		heights []uint32
	}{{
		name:    "signed by the quorum at the offset",
		height:  height,
		sig:     h.sign(t, atOffset, requestID, testBlockHash(height)),
		want:    true,
		heights: []uint32{12},
	}, {
		name:    "signed by the quorum at twice the offset",
		height:  height,
		sig:     h.sign(t, keyA, requestID, testBlockHash(height)),
		want:    true,
		heights: wantHeightsA,
	}, {
		name:    "not signed by any quorum",
		height:  height,
		sig:     wrongSig,
		want:    false,
		heights: []uint32{12, 20, 4},
	}, {
		name:   "offsets beyond the height are skipped",
		height: 5,
		sig: h.sign(t, keyA, ChainLockRequestID(5),
			testBlockHash(5)),
		want:    true,
		heights: []uint32{5},
	}}

	for _, test := range tests {
		src := &recordingSource{Store: h.store}
		clsig := &wire.MsgCLSig{
			Height:    test.height,
			BlockHash: testBlockHash(uint32(test.height)),
			Signature: test.sig,
		}
		got, err := VerifyChainLock(context.Background(), src, nil, clsig)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("%s: unexpected result -- got %v, want %v", test.name,
				got, test.want)
		}
		if !reflect.DeepEqual(src.heights, test.heights) {
			t.Errorf("%s: unexpected lists consulted -- got %v, want %v",
				test.name, src.heights, test.heights)
		}
	}
}

// TestVerifyChainLockErrors ensures chain locks that can't be checked result
// in errors rather than false results.
func TestVerifyChainLockErrors(t *testing.T) {
	h := newLockHarness(t)

	tests := []struct {
		name   string
		ctx    func() context.Context
		height int32
		want   error
	}{{
		name:   "negative height",
		ctx:    context.Background,
		height: -1,
		want:   ErrInvalidLockHeight,
	}, {
		name:   "no quorums at any offset",
		ctx:    context.Background,
		height: 1,
		want:   ErrNoSignatoryQuorum,
	}, {
		name:   "height beyond the store",
		ctx:    context.Background,
		height: 100,
		want:   ErrNoSignatoryQuorum,
	}, {
		name: "canceled context",
		ctx: func() context.Context {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx
		},
		height: 20,
		want:   context.Canceled,
	}}

	for _, test := range tests {
		clsig := &wire.MsgCLSig{Height: test.height}
		got, err := VerifyChainLock(test.ctx(), h.store, nil, clsig)
		if !errors.Is(err, test.want) {
			t.Errorf("%s: unexpected error -- got %v, want %v", test.name,
				err, test.want)
			continue
		}
		if got {
			t.Errorf("%s: lock verified despite error", test.name)
		}
	}
}

// TestVerifyInstantLock ensures instant locks are verified against the instant
// send quorums relative to the tip of the store.
func TestVerifyInstantLock(t *testing.T) {
	h := newLockHarness(t)
	islock := &wire.MsgISLock{
		Inputs: []wire.OutPoint{{
			Hash:  chainhash.HashH([]byte("funding")),
			Index: 1,
		}},
		TxID: chainhash.HashH([]byte("spending")),
	}
	requestID := InstantLockRequestID(islock)
	key := h.selected(t, InstantLock, requestID, h.store.TipHeight(), 8)
	if key.LLMQType != wire.LLMQTypeTestDIP0024 {
		t.Fatalf("unexpected signing quorum type %v", key.LLMQType)
	}

	islock.Signature = h.sign(t, key, requestID, islock.TxID)
	src := &recordingSource{Store: h.store}
	ok, err := VerifyInstantLock(context.Background(), src, nil, islock)
	if err != nil || !ok {
		t.Fatalf("valid instant lock rejected -- got %v, %v", ok, err)
	}
	if !reflect.DeepEqual(src.heights, []uint32{12}) {
		t.Fatalf("unexpected lists consulted -- got %v, want [12]",
			src.heights)
	}

	// A lock for another transaction with the same inputs carries the
	// same request id and must not verify.
	other := *islock
	other.TxID = chainhash.HashH([]byte("double spend"))
	src = &recordingSource{Store: h.store}
	ok, err = VerifyInstantLock(context.Background(), src, nil, &other)
	if err != nil || ok {
		t.Fatalf("conflicting instant lock accepted -- got %v, %v", ok, err)
	}
	if !reflect.DeepEqual(src.heights, []uint32{12, 20, 4}) {
		t.Fatalf("unexpected lists consulted -- got %v, want [12 20 4]",
			src.heights)
	}
}

// TestKindStringer tests the stringized output for the Kind type.
func TestKindStringer(t *testing.T) {
	tests := []struct {
		in   Kind
		want string
	}{
		{ChainLock, "chain lock"},
		{InstantLock, "instant lock"},
		{0xff, "Unknown Kind (255)"},
	}

	for i, test := range tests {
		if got := test.in.String(); got != test.want {
			t.Errorf("#%d: got: %s want: %s", i, got, test.want)
		}
	}
}
