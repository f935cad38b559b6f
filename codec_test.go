// Copyright 2019 Michael J. Fromberger. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package canon

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestPrimitiveIdentity implements the encoding half of scenario S1 from the
// design notes: the encoding of 328u64 is 8 little-endian bytes, and the byte
// count a DrySink reports matches EncodedLen.
func TestPrimitiveIdentity(t *testing.T) {
	v := U64(328)

	if got, want := v.EncodedLen(), 8; got != want {
		t.Errorf("EncodedLen() = %d, want %d", got, want)
	}

	sink := NewSliceSink()
	if err := v.Encode(sink); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{0x48, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(sink.Bytes(), want) {
		t.Errorf("Encode(328) = % x, want % x", sink.Bytes(), want)
	}

	if got := EncodedLenOf(v); got != v.EncodedLen() {
		t.Errorf("DrySink byte count = %d, want %d", got, v.EncodedLen())
	}
}

func TestBoolStrictDecode(t *testing.T) {
	for _, tc := range []struct {
		in   byte
		want bool
		ok   bool
	}{
		{0x00, false, true},
		{0x01, true, true},
		{0x02, false, false},
		{0xff, false, false},
	} {
		got, err := DecodeBool(NewSliceSource([]byte{tc.in}))
		if tc.ok && err != nil {
			t.Errorf("DecodeBool(%#x): unexpected error %v", tc.in, err)
		} else if !tc.ok && err == nil {
			t.Errorf("DecodeBool(%#x): got %v, want ErrInvalidEncoding", tc.in, got)
		} else if tc.ok && got != tc.want {
			t.Errorf("DecodeBool(%#x) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

// TestOptionInvalidTag implements scenario S6: an Option with a tag other
// than 0 or 1 is ErrInvalidEncoding.
func TestOptionInvalidTag(t *testing.T) {
	var o Option[U8, *U8]
	err := o.Decode(NewSliceSource([]byte{0x02, 0x00}))
	if err != ErrInvalidEncoding {
		t.Errorf("Decode() = %v, want ErrInvalidEncoding", err)
	}
}

func TestOptionRoundtrip(t *testing.T) {
	for _, o := range []Option[U32, *U32]{
		None[U32, *U32](),
		Some[U32, *U32](42),
	} {
		sink := NewSliceSink()
		if err := o.Encode(sink); err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if got := len(sink.Bytes()); got != o.EncodedLen() {
			t.Errorf("Encode wrote %d bytes, EncodedLen() = %d", got, o.EncodedLen())
		}

		var got Option[U32, *U32]
		if err := got.Decode(NewSliceSource(sink.Bytes())); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got != o {
			t.Errorf("Decode() = %+v, want %+v", got, o)
		}
	}
}

func TestResultRoundtrip(t *testing.T) {
	ok := Ok[U32, U8, *U32, *U8](7)
	fail := Err[U32, U8, *U32, *U8](9)

	for _, r := range []Result[U32, U8, *U32, *U8]{ok, fail} {
		sink := NewSliceSink()
		if err := r.Encode(sink); err != nil {
			t.Fatalf("Encode: %v", err)
		}
		var got Result[U32, U8, *U32, *U8]
		if err := got.Decode(NewSliceSource(sink.Bytes())); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got != r {
			t.Errorf("Decode() = %+v, want %+v", got, r)
		}
	}
}

// TestSeqTruncated implements the second half of scenario S6: a sequence
// whose length prefix claims more elements than the input actually has fails
// with ErrInvalidEncoding.
func TestSeqTruncated(t *testing.T) {
	// Length prefix says 10 elements of U8 (1 byte each), but only 3 follow.
	buf := []byte{0x0a, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03}

	var got Seq[U8, *U8]
	err := got.Decode(NewSliceSource(buf))
	if err != ErrInvalidEncoding {
		t.Errorf("Decode() = %v, want ErrInvalidEncoding", err)
	}
}

func TestSeqRoundtrip(t *testing.T) {
	orig := Seq[U8, *U8]{1, 2, 3, 4, 5}

	sink := NewSliceSink()
	if err := orig.Encode(sink); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got, want := len(sink.Bytes()), orig.EncodedLen(); got != want {
		t.Errorf("Encode wrote %d bytes, want %d", got, want)
	}
	if got, want := sink.Bytes()[:4], []byte{5, 0, 0, 0}; !bytes.Equal(got, want) {
		t.Errorf("length prefix = % x, want % x", got, want)
	}

	var got Seq[U8, *U8]
	if err := got.Decode(NewSliceSource(sink.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != len(orig) {
		t.Fatalf("Decode() len = %d, want %d", len(got), len(orig))
	}
	for i := range orig {
		if got[i] != orig[i] {
			t.Errorf("element %d = %v, want %v", i, got[i], orig[i])
		}
	}
}

func TestFixedConcatenatesWithNoPrefix(t *testing.T) {
	orig := Fixed[U16, *U16]{10, 20, 30}

	sink := NewSliceSink()
	if err := orig.Encode(sink); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got, want := len(sink.Bytes()), 6; got != want {
		t.Errorf("Encode wrote %d bytes, want %d (no length prefix)", got, want)
	}

	got, err := DecodeFixed[U16, *U16](NewSliceSource(sink.Bytes()), 3)
	if err != nil {
		t.Fatalf("DecodeFixed: %v", err)
	}
	for i := range orig {
		if got[i] != orig[i] {
			t.Errorf("element %d = %v, want %v", i, got[i], orig[i])
		}
	}
}

// TestSignedIntRoundtrip exercises I32 standalone, and I16 and I8 as elements
// of generic composites, which requires each to satisfy Codec[T].
func TestSignedIntRoundtrip(t *testing.T) {
	sink := NewSliceSink()
	orig := I32(-1234)
	if err := orig.Encode(sink); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var got I32
	if err := got.Decode(NewSliceSource(sink.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != orig {
		t.Errorf("Decode() = %v, want %v", got, orig)
	}

	opt := Some[I16, *I16](-7)
	osink := NewSliceSink()
	if err := opt.Encode(osink); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var ogot Option[I16, *I16]
	if err := ogot.Decode(NewSliceSource(osink.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ogot != opt {
		t.Errorf("Decode() = %+v, want %+v", ogot, opt)
	}

	seq := Seq[I8, *I8]{-1, 0, 1, 127, -128}
	ssink := NewSliceSink()
	if err := seq.Encode(ssink); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var sgot Seq[I8, *I8]
	if err := sgot.Decode(NewSliceSource(ssink.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(seq, sgot); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestTuple2Roundtrip(t *testing.T) {
	orig := Tuple2[U8, U32, *U8, *U32]{A: 7, B: 1000}

	sink := NewSliceSink()
	if err := orig.Encode(sink); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got, want := orig.EncodedLen(), 1+4; got != want {
		t.Errorf("EncodedLen() = %d, want %d", got, want)
	}

	var got Tuple2[U8, U32, *U8, *U32]
	if err := got.Decode(NewSliceSource(sink.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != orig {
		t.Errorf("Decode() = %+v, want %+v", got, orig)
	}
}

func TestTuple3Roundtrip(t *testing.T) {
	orig := Tuple3[U64, U64, U64, *U64, *U64, *U64]{A: 1, B: 2, C: 3}

	sink := NewSliceSink()
	if err := orig.Encode(sink); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got, want := orig.EncodedLen(), 24; got != want {
		t.Errorf("EncodedLen() = %d, want %d", got, want)
	}

	var got Tuple3[U64, U64, U64, *U64, *U64, *U64]
	if err := got.Decode(NewSliceSource(sink.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	// cmp.Diff gives a structural report rather than a flat %+v dump, which
	// matters once a tuple element is itself a composite type.
	if diff := cmp.Diff(orig, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}
