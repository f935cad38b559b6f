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
)

func TestIdBuilderMatchesHashBytes(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")

	want := HashBytes(data)

	b := NewIdBuilder()
	b.Write(data[:10])
	b.Write(data[10:])
	got := b.Sum()

	if got != want {
		t.Errorf("IdBuilder.Sum() = %x, want %x", got, want)
	}
}

func TestIdIsZero(t *testing.T) {
	var id Id
	if !id.IsZero() {
		t.Error("zero Id reports non-zero")
	}
	id[0] = 1
	if id.IsZero() {
		t.Error("non-zero Id reports zero")
	}
}

func TestIdRoundtrip(t *testing.T) {
	id := HashBytes([]byte("round trip me"))

	sink := NewSliceSink()
	if err := id.Encode(sink); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(sink.Bytes()) != id.EncodedLen() {
		t.Fatalf("Encode wrote %d bytes, EncodedLen() = %d", len(sink.Bytes()), id.EncodedLen())
	}

	var got Id
	if err := got.Decode(NewSliceSource(sink.Bytes())); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != id {
		t.Errorf("Decode() = %x, want %x", got, id)
	}
	if !bytes.Equal(id[:], sink.Bytes()) {
		t.Errorf("Id encoding is not the raw bytes: %x vs %x", sink.Bytes(), id[:])
	}
}
