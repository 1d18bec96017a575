// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Copyright (c) 2024 The Dash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"reflect"
	"testing"
	"testing/iotest"

	"github.com/dashpay/dashcore-lib/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"
)

// hexToBytes converts the passed hex string into bytes and will panic if there
// is an error.  This is only provided for the hard-coded constants so errors in
// the source code can be detected. It will only (and must only) be called with
// hard-coded values.
func hexToBytes(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("invalid hex in source file: " + s)
	}
	return b
}

// hashFromStr converts the passed display hex string into a hash and will
// panic if there is an error.  It must only be called with hard-coded values.
func hashFromStr(s string) chainhash.Hash {
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		panic("invalid hash in source file: " + s)
	}
	return *h
}

func ptr[T any](v T) *T {
	return &v
}

// TestElementWire tests wire encode and decode for the element types used by
// the masternode list records.  This is mainly to test the "fast" paths in
// readElement and writeElement which use type assertions to avoid reflection
// when possible.
func TestElementWire(t *testing.T) {
	type writeElementReflect int32

	tests := []struct {
		name string
		in   interface{} // Value to encode
		buf  []byte      // Wire encoding
	}{
		{"uint8", ptr[uint8](240), hexToBytes("f0")},
		{"llmq type", ptr(LLMQTypeTestDIP0024), hexToBytes("67")},
		{"uint16", ptr[uint16](61423), hexToBytes("efef")},
		{"negative int16", ptr[int16](-2), hexToBytes("feff")},
		{"mn type", ptr(MnTypeHighPerformance), hexToBytes("0100")},
		{"tx type", ptr(TxTypeCoinbase), hexToBytes("0500")},
		{"currency net", ptr(MainNet), hexToBytes("bf0c6bbd")},
		{"int32", ptr[int32](84202), hexToBytes("ea480100")},
		{"uint32", ptr[uint32](256), hexToBytes("00010000")},
		{"int64", ptr[int64](-1), hexToBytes("ffffffffffffffff")},
		{"uint64", ptr[uint64](4294967296), hexToBytes("0000000001000000")},
		{"true", ptr(true), hexToBytes("01")},
		{"false", ptr(false), hexToBytes("00")},
		{
			"ipv6 address",
			&[16]byte{
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0xff, 0xff, 0x7f, 0x00, 0x00, 0x01,
			},
			hexToBytes("00000000000000000000ffff7f000001"),
		},
		{
			"key id",
			(*[KeyIDSize]byte)(repeat(0x11, KeyIDSize)),
			repeat(0x11, KeyIDSize),
		},
		{
			"hash",
			ptr(rhash(0x22)),
			repeat(0x22, chainhash.HashSize),
		},
		{
			"bls public key",
			(*[BLSPubKeySize]byte)(repeat(0x33, BLSPubKeySize)),
			repeat(0x33, BLSPubKeySize),
		},
		{
			"bls signature",
			(*[BLSSignatureSize]byte)(repeat(0x44, BLSSignatureSize)),
			repeat(0x44, BLSSignatureSize),
		},
		// Type not supported by the "fast" path and requires reflection.
		{"reflection", writeElementReflect(1), hexToBytes("01000000")},
	}

	for _, test := range tests {
		// Write to wire format.
		var buf bytes.Buffer
		err := writeElement(&buf, test.in)
		if err != nil {
			t.Errorf("%s: writeElement error %v", test.name, err)
			continue
		}
		if !bytes.Equal(buf.Bytes(), test.buf) {
			t.Errorf("%s: writeElement\n got: %s want: %s", test.name,
				spew.Sdump(buf.Bytes()), spew.Sdump(test.buf))
			continue
		}

		// Read from wire format with both a bytes reader and a one byte
		// reader so the fast and default short read paths are covered.
		readers := []io.Reader{
			bytes.NewReader(test.buf),
			iotest.OneByteReader(bytes.NewReader(test.buf)),
		}
		for _, r := range readers {
			val := test.in
			if reflect.ValueOf(test.in).Kind() != reflect.Ptr {
				val = reflect.New(reflect.TypeOf(test.in)).Interface()
			}
			err = readElement(r, val)
			if err != nil {
				t.Errorf("%s: readElement (%T) error %v", test.name, r, err)
				continue
			}
			ival := val
			if reflect.ValueOf(test.in).Kind() != reflect.Ptr {
				ival = reflect.Indirect(reflect.ValueOf(val)).Interface()
			}
			if !reflect.DeepEqual(ival, test.in) {
				t.Errorf("%s: readElement (%T)\n got: %s want: %s",
					test.name, r, spew.Sdump(ival), spew.Sdump(test.in))
			}
		}
	}
}

// TestElementWireErrors performs negative tests against wire encode and decode
// of various element types to confirm error paths work correctly.
func TestElementWireErrors(t *testing.T) {
	tests := []struct {
		in       interface{} // Value to encode
		max      int         // Max size of fixed buffer to induce errors
		writeErr error       // Expected write error
		readErr  error       // Expected read error
	}{
		{ptr[int16](1), 0, io.ErrShortWrite, io.EOF},
		{ptr[int32](1), 0, io.ErrShortWrite, io.EOF},
		{ptr[uint32](256), 0, io.ErrShortWrite, io.EOF},
		{ptr[int64](65536), 0, io.ErrShortWrite, io.EOF},
		{ptr(true), 0, io.ErrShortWrite, io.EOF},
		{ptr(LLMQTypeTest), 0, io.ErrShortWrite, io.EOF},
		{ptr(MnTypeRegular), 0, io.ErrShortWrite, io.EOF},
		{ptr(TxTypeProRegTx), 0, io.ErrShortWrite, io.EOF},
		{ptr(TestNet), 0, io.ErrShortWrite, io.EOF},
		{&[4]byte{0x01, 0x02, 0x03, 0x04}, 0, io.ErrShortWrite, io.EOF},
		{&[CommandSize]byte{0x01}, 0, io.ErrShortWrite, io.EOF},
		{&[16]byte{0x01}, 0, io.ErrShortWrite, io.EOF},
		{&[KeyIDSize]byte{0x01}, 0, io.ErrShortWrite, io.EOF},
		{ptr(rhash(0x01)), 0, io.ErrShortWrite, io.EOF},
		{&[BLSPubKeySize]byte{0x01}, 0, io.ErrShortWrite, io.EOF},
		{&[BLSSignatureSize]byte{0x01}, 0, io.ErrShortWrite, io.EOF},
	}

	for i, test := range tests {
		// Encode to wire format.
		w := newFixedWriter(test.max)
		err := writeElement(w, test.in)
		if !errors.Is(err, test.writeErr) {
			t.Errorf("writeElement #%d (%T) wrong error got: %v, want: %v",
				i, test.in, err, test.writeErr)
			continue
		}

		// Decode from wire format.
		r := newFixedReader(test.max, nil)
		err = readElement(r, test.in)
		if !errors.Is(err, test.readErr) {
			t.Errorf("readElement #%d (%T) wrong error got: %v, want: %v",
				i, test.in, err, test.readErr)
			continue
		}
	}
}

// TestShortReads ensures that all short reads work as expected with the various
// supported readers and a couple of readers for the default path including a
// one byte reader.
func TestShortReads(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0x05)
	binary.Write(&buf, binary.LittleEndian, uint16(61355))
	binary.Write(&buf, binary.BigEndian, uint16(9999))
	binary.Write(&buf, binary.LittleEndian, uint32(16777216))
	binary.Write(&buf, binary.LittleEndian, uint64(8589934592))
	testWithReader := func(r io.Reader) {
		t.Helper()

		var u8 uint8
		if err := readUint8(r, &u8); err != nil || u8 != 5 {
			t.Fatalf("%T: readUint8 got %v (err %v), want 5", r, u8, err)
		}
		var u16 uint16
		if err := readUint16LE(r, &u16); err != nil || u16 != 61355 {
			t.Fatalf("%T: readUint16LE got %v (err %v), want 61355", r,
				u16, err)
		}
		if err := readUint16BE(r, &u16); err != nil || u16 != 9999 {
			t.Fatalf("%T: readUint16BE got %v (err %v), want 9999", r, u16,
				err)
		}
		var u32 uint32
		if err := readUint32LE(r, &u32); err != nil || u32 != 16777216 {
			t.Fatalf("%T: readUint32LE got %v (err %v), want 16777216", r,
				u32, err)
		}
		var u64 uint64
		if err := readUint64LE(r, &u64); err != nil || u64 != 8589934592 {
			t.Fatalf("%T: readUint64LE got %v (err %v), want 8589934592", r,
				u64, err)
		}

		// The reader is exhausted now.
		if err := readUint8(r, &u8); !errors.Is(err, io.EOF) {
			t.Fatalf("%T: readUint8 on exhausted reader got err %v, want "+
				"io.EOF", r, err)
		}
	}
	testWithReader(bytes.NewBuffer(buf.Bytes()))
	testWithReader(bytes.NewReader(buf.Bytes()))
	testWithReader(io.LimitReader(bytes.NewReader(buf.Bytes()), int64(buf.Len())))
	testWithReader(iotest.OneByteReader(bytes.NewReader(buf.Bytes())))

	// A value cut in half is an unexpected EOF on every path.
	half := []byte{0x01, 0x02}
	readers := []io.Reader{
		bytes.NewReader(half),
		bytes.NewBuffer(half),
		iotest.OneByteReader(bytes.NewReader(half)),
	}
	for _, r := range readers {
		var u32 uint32
		if err := readUint32LE(r, &u32); !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("%T: readUint32LE on short input got err %v, want "+
				"io.ErrUnexpectedEOF", r, err)
		}
	}
}

// TestVarIntWire tests wire encode and decode for variable length integers.
func TestVarIntWire(t *testing.T) {
	tests := []struct {
		name string
		in   uint64 // Value to encode
		buf  []byte // Wire encoding
	}{
		{"zero", 0, []byte{0x00}},
		{"max single byte", 0xfc, []byte{0xfc}},
		{"min 2-byte", 0xfd, []byte{0xfd, 0xfd, 0x00}},
		{"max 2-byte", 0xffff, []byte{0xfd, 0xff, 0xff}},
		{"min 4-byte", 0x10000, []byte{0xfe, 0x00, 0x00, 0x01, 0x00}},
		{"max 4-byte", 0xffffffff, []byte{0xfe, 0xff, 0xff, 0xff, 0xff}},
		{
			"min 8-byte", 0x100000000,
			[]byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00},
		},
		{
			"max 8-byte", 0xffffffffffffffff,
			[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		},
	}

	for _, test := range tests {
		var buf bytes.Buffer
		err := WriteVarInt(&buf, ProtocolVersion, test.in)
		if err != nil {
			t.Errorf("%s: WriteVarInt error %v", test.name, err)
			continue
		}
		if !bytes.Equal(buf.Bytes(), test.buf) {
			t.Errorf("%s: WriteVarInt\n got: %s want: %s", test.name,
				spew.Sdump(buf.Bytes()), spew.Sdump(test.buf))
			continue
		}
		if size := VarIntSerializeSize(test.in); size != len(test.buf) {
			t.Errorf("%s: VarIntSerializeSize got %d, want %d", test.name,
				size, len(test.buf))
		}

		val, err := ReadVarInt(bytes.NewReader(test.buf), ProtocolVersion)
		if err != nil {
			t.Errorf("%s: ReadVarInt error %v", test.name, err)
			continue
		}
		if val != test.in {
			t.Errorf("%s: ReadVarInt got %d, want %d", test.name, val,
				test.in)
		}
	}
}

// TestVarIntWireErrors performs negative tests against wire encode and decode
// of variable length integers to confirm error paths work correctly.
func TestVarIntWireErrors(t *testing.T) {
	tests := []struct {
		name     string
		in       uint64 // Value to encode
		buf      []byte // Wire encoding
		max      int    // Max size of fixed buffer to induce errors
		writeErr error  // Expected write error
		readErr  error  // Expected read error
	}{
		{"discriminant", 0, []byte{0x00}, 0, io.ErrShortWrite, io.EOF},
		{"2-byte", 0xfd, []byte{0xfd}, 2, io.ErrShortWrite, io.ErrUnexpectedEOF},
		{"4-byte", 0x10000, []byte{0xfe}, 2, io.ErrShortWrite, io.ErrUnexpectedEOF},
		{"8-byte", 0x100000000, []byte{0xff}, 2, io.ErrShortWrite, io.ErrUnexpectedEOF},
	}

	for _, test := range tests {
		w := newFixedWriter(test.max)
		err := WriteVarInt(w, ProtocolVersion, test.in)
		if !errors.Is(err, test.writeErr) {
			t.Errorf("%s: WriteVarInt wrong error got: %v, want: %v",
				test.name, err, test.writeErr)
			continue
		}

		r := newFixedReader(test.max, test.buf)
		_, err = ReadVarInt(r, ProtocolVersion)
		if !errors.Is(err, test.readErr) {
			t.Errorf("%s: ReadVarInt wrong error got: %v, want: %v",
				test.name, err, test.readErr)
		}
	}
}

// TestVarIntNonCanonical ensures variable length integers that are not encoded
// canonically return the expected error.
func TestVarIntNonCanonical(t *testing.T) {
	tests := []struct {
		name string // Test name for easier identification
		in   []byte // Value to decode
	}{
		{"0 encoded with 3 bytes", []byte{0xfd, 0x00, 0x00}},
		{"max single-byte value encoded with 3 bytes", []byte{0xfd, 0xfc, 0x00}},
		{"0 encoded with 5 bytes", []byte{0xfe, 0x00, 0x00, 0x00, 0x00}},
		{"max three-byte value encoded with 5 bytes", []byte{0xfe, 0xff, 0xff, 0x00, 0x00}},
		{"0 encoded with 9 bytes", []byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"max five-byte value encoded with 9 bytes", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00}},
	}

	for _, test := range tests {
		val, err := ReadVarInt(bytes.NewReader(test.in), ProtocolVersion)
		if !errors.Is(err, ErrNonCanonicalVarInt) {
			t.Errorf("%s: unexpected error %v", test.name, err)
			continue
		}
		if val != 0 {
			t.Errorf("%s: got %d, want 0", test.name, val)
		}
	}
}

// TestReadCount ensures list counts beyond the permitted maximum are rejected
// before anything is allocated for them.
func TestReadCount(t *testing.T) {
	var buf bytes.Buffer
	WriteVarInt(&buf, ProtocolVersion, 11)

	count, err := readCount(bytes.NewReader(buf.Bytes()), ProtocolVersion, 11,
		"test entries")
	if err != nil || count != 11 {
		t.Fatalf("readCount got %d (err %v), want 11", count, err)
	}
	_, err = readCount(bytes.NewReader(buf.Bytes()), ProtocolVersion, 10,
		"test entries")
	if !errors.Is(err, ErrTooManyEntries) {
		t.Fatalf("readCount got err %v, want %v", err, ErrTooManyEntries)
	}
}

// TestVarBytesWire tests wire encode and decode for variable length byte array.
func TestVarBytesWire(t *testing.T) {
	// bytes256 is a byte array that takes a 2-byte varint to encode.
	bytes256 := bytes.Repeat([]byte{0x01}, 256)

	tests := []struct {
		name string
		in   []byte // Byte Array to write
		buf  []byte // Wire encoding
	}{
		{"empty", []byte{}, []byte{0x00}},
		{"single byte varint", []byte{0x01}, []byte{0x01, 0x01}},
		{"2-byte varint", bytes256, append([]byte{0xfd, 0x00, 0x01}, bytes256...)},
	}

	for _, test := range tests {
		var buf bytes.Buffer
		err := WriteVarBytes(&buf, ProtocolVersion, test.in)
		if err != nil {
			t.Errorf("%s: WriteVarBytes error %v", test.name, err)
			continue
		}
		if !bytes.Equal(buf.Bytes(), test.buf) {
			t.Errorf("%s: WriteVarBytes\n got: %s want: %s", test.name,
				spew.Sdump(buf.Bytes()), spew.Sdump(test.buf))
			continue
		}

		val, err := ReadVarBytes(bytes.NewReader(test.buf), ProtocolVersion,
			MaxMessagePayload, "test payload")
		if err != nil {
			t.Errorf("%s: ReadVarBytes error %v", test.name, err)
			continue
		}
		if !bytes.Equal(val, test.in) {
			t.Errorf("%s: ReadVarBytes\n got: %x want: %x", test.name,
				val, test.in)
		}
	}
}

// TestVarBytesWireErrors performs negative tests against wire encode and
// decode of variable length byte arrays to confirm error paths work correctly.
func TestVarBytesWireErrors(t *testing.T) {
	// bytes256 is a byte array that takes a 2-byte varint to encode.
	bytes256 := bytes.Repeat([]byte{0x01}, 256)

	tests := []struct {
		in       []byte // Byte Array to write
		buf      []byte // Wire encoding
		max      int    // Max size of fixed buffer to induce errors
		writeErr error  // Expected write error
		readErr  error  // Expected read error
	}{
		// Force errors on empty byte array.
		{[]byte{}, []byte{0x00}, 0, io.ErrShortWrite, io.EOF},
		// Force error on single byte varint + byte array.
		{[]byte{0x01, 0x02, 0x03}, []byte{0x04}, 2, io.ErrShortWrite, io.ErrUnexpectedEOF},
		// Force errors on 2-byte varint + byte array.
		{bytes256, []byte{0xfd}, 2, io.ErrShortWrite, io.ErrUnexpectedEOF},
	}

	for i, test := range tests {
		w := newFixedWriter(test.max)
		err := WriteVarBytes(w, ProtocolVersion, test.in)
		if !errors.Is(err, test.writeErr) {
			t.Errorf("WriteVarBytes #%d wrong error got: %v, want: %v",
				i, err, test.writeErr)
			continue
		}

		r := newFixedReader(test.max, test.buf)
		_, err = ReadVarBytes(r, ProtocolVersion, MaxMessagePayload,
			"test payload")
		if !errors.Is(err, test.readErr) {
			t.Errorf("ReadVarBytes #%d wrong error got: %v, want: %v",
				i, err, test.readErr)
		}
	}
}

// TestVarBytesOverflowErrors performs tests to ensure deserializing variable
// length byte arrays intentionally crafted to use large values for the array
// length are handled properly.  This could otherwise potentially be used as an
// attack vector.
func TestVarBytesOverflowErrors(t *testing.T) {
	tests := [][]byte{
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		{0xff, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01},
	}

	for i, buf := range tests {
		_, err := ReadVarBytes(bytes.NewReader(buf), ProtocolVersion,
			MaxMessagePayload, "test payload")
		if !errors.Is(err, ErrVarBytesTooLong) {
			t.Errorf("ReadVarBytes #%d wrong error got: %v, want: %v", i,
				err, ErrVarBytesTooLong)
		}
	}
}

// TestDecodeExact ensures whole record decoding reports truncated records and
// leftover bytes with their dedicated error kinds.
func TestDecodeExact(t *testing.T) {
	decodeU32 := func(r *bytes.Reader) error {
		var v uint32
		return readElement(r, &v)
	}

	tests := []struct {
		name string
		in   []byte
		err  error
	}{
		{"exact", []byte{1, 2, 3, 4}, nil},
		{"empty", nil, ErrShortRead},
		{"truncated", []byte{1, 2}, ErrShortRead},
		{"trailing", []byte{1, 2, 3, 4, 5}, ErrTrailingBytes},
	}

	for _, test := range tests {
		err := decodeExact("test", test.in, decodeU32)
		if !errors.Is(err, test.err) {
			t.Errorf("%s: got err %v, want %v", test.name, err, test.err)
		}
	}
}

// repeat returns the byte slice containing count elements of the byte b.
func repeat(b byte, count int) []byte {
	return bytes.Repeat([]byte{b}, count)
}

// rhash returns a chainhash.Hash with all bytes set to b.
func rhash(b byte) chainhash.Hash {
	var h chainhash.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

// expectedSerializationEqual compares serialized bytes to the expected
// sequence of bytes.  When got and expected are not equal, the test t will be
// errored with descriptive messages of how the two encodings are different.
// Returns true if the serialization are equal, and false if the test
// errors.
func expectedSerializationEqual(t *testing.T, got, expected []byte) bool {
	t.Helper()
	if bytes.Equal(got, expected) {
		return true
	}

	t.Errorf("encoded message differs from expected serialization")
	minLen := min(len(got), len(expected))
	for i := 0; i < minLen; i++ {
		if b := got[i]; b != expected[i] {
			t.Errorf("message differs at index %d (got 0x%x, expected 0x%x)",
				i, b, expected[i])
		}
	}
	if len(got) > len(expected) {
		t.Errorf("serialized message contains extra bytes [%x]",
			got[len(expected):])
	}
	if len(expected) > len(got) {
		t.Errorf("serialization prematurely ends at index %d, missing bytes [%x]",
			len(got), expected[len(got):])
	}
	return false
}
