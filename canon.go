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

// Package canon implements a content-addressed serialization core for
// recursive data structures.
//
// # Summary
//
// A value participates in the codec by implementing [Value] on the value
// receiver and [Decoder] on the pointer receiver. The two together form the
// "Canon" contract: EncodedLen reports exactly how many bytes Encode will
// emit, and Decode consumes exactly that many bytes to reconstruct an equal
// value. This invariant -- that length, write, and read all agree -- is the
// single thing every implementation in this package must get right; see
// [Value] for the full contract.
//
// Composite values recurse through [Sink] and [Source], which are aware of an
// underlying [Store] so that a child value can either be inlined into its
// parent's encoding or committed separately and referenced by identifier (see
// [Repr]). [Repr] picks its form from the child's EncodedLen; [DrySink]
// answers "how big would this be" without allocating, by counting the bytes
// Encode writes.
//
// Two concrete Sink/Source implementations are provided: a slice-backed pair
// with no store, for encoding into (or decoding from) a single in-memory
// buffer, and a store-backed sink that accumulates bytes and commits them to a
// [Store] on [Sink.Fin]. The store/bridge subpackage supplies its own pair over
// a fixed-size page.
package canon

import "errors"

// ErrInvalidEncoding is reported when a byte stream cannot be decoded under
// the requested type: a bad tag, a truncated input, an out-of-range boolean,
// an unknown discriminant, or a sequence whose declared length exceeds the
// remaining input.
var ErrInvalidEncoding = errors.New("invalid encoding")

// ErrMissingValue is reported by a Store when a lookup by identifier fails to
// find a value.
var ErrMissingValue = errors.New("missing value")

// Value is implemented by any type whose wire encoding it knows how to
// produce. EncodedLen must be a pure function of the value's content, and
// Encode must write exactly EncodedLen() bytes to sink.
//
// A type that also wants to be read back out of a [Source] implements
// [Decoder] on its pointer receiver; Decode must consume exactly the number
// of bytes Encode would have written for the resulting value. Keeping read
// and write as separate interfaces mirrors encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler: most container codecs in this package (for
// example [Option] and [Seq]) are generic over any T that satisfies both.
type Value interface {
	// EncodedLen reports the exact number of bytes Encode will write.
	EncodedLen() int

	// Encode writes the value's canonical encoding to sink. It must write
	// exactly EncodedLen() bytes.
	Encode(Sink) error
}

// Decoder is implemented by the pointer receiver of a decodable [Value]. It
// replaces the receiver's contents with a value read from src.
type Decoder interface {
	// Decode reads a value's canonical encoding from src, replacing the
	// contents of the receiver. It must consume exactly as many bytes as
	// Encode would have written for the value it produces.
	Decode(Source) error
}

// Codec requires both directions of the Canon contract on a single type. Most
// call sites only need [Value] (to write) or a concrete *T implementing
// [Decoder] (to read); Codec is convenient shorthand for generic functions
// that need both, such as [Fixed] and [Seq].
type Codec[T any] interface {
	*T
	Value
	Decoder
}

// DecodeValue allocates a zero T, decodes src into it via the Decoder method
// on *T, and returns the resulting value. PT pins the pointer-receiver
// constraint so the compiler can prove *T implements Decoder without the
// caller naming the pointer type explicitly.
func DecodeValue[T any, PT interface {
	*T
	Decoder
}](src Source) (T, error) {
	var v T
	if err := PT(&v).Decode(src); err != nil {
		return v, err
	}
	return v, nil
}
