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

// This file implements the generic container encodings from §4.1: Option,
// Result, fixed-length concatenation, and u32-length-prefixed sequences. Each
// is generic over any element type satisfying [Codec], the pointer-receiver
// constraint that ties a value type to its own Decoder.

// Option encodes a T that may or may not be present: tag 0x00 for absent, or
// 0x01 followed by the encoding of Value.
type Option[T any, PT Codec[T]] struct {
	Value T
	Valid bool
}

// Some constructs a present Option wrapping v.
func Some[T any, PT Codec[T]](v T) Option[T, PT] { return Option[T, PT]{Value: v, Valid: true} }

// None constructs an absent Option.
func None[T any, PT Codec[T]]() Option[T, PT] { return Option[T, PT]{} }

// EncodedLen implements part of [Value].
func (o Option[T, PT]) EncodedLen() int {
	if !o.Valid {
		return 1
	}
	return 1 + PT(&o.Value).EncodedLen()
}

// Encode implements part of [Value].
func (o Option[T, PT]) Encode(s Sink) error {
	if !o.Valid {
		return EncodeUint8(s, 0x00)
	}
	if err := EncodeUint8(s, 0x01); err != nil {
		return err
	}
	return PT(&o.Value).Encode(s)
}

// Decode implements part of [Decoder].
func (o *Option[T, PT]) Decode(src Source) error {
	tag, err := DecodeUint8(src)
	if err != nil {
		return err
	}
	switch tag {
	case 0x00:
		var zero T
		o.Value, o.Valid = zero, false
		return nil
	case 0x01:
		var v T
		if err := PT(&v).Decode(src); err != nil {
			return err
		}
		o.Value, o.Valid = v, true
		return nil
	default:
		return ErrInvalidEncoding
	}
}

// Result encodes a value that is either a success of type T (tag 0x00) or a
// failure of type E (tag 0x01).
type Result[T, E any, PT Codec[T], PE Codec[E]] struct {
	Ok   T
	Err  E
	IsOk bool
}

// Ok constructs a successful Result wrapping v.
func Ok[T, E any, PT Codec[T], PE Codec[E]](v T) Result[T, E, PT, PE] {
	return Result[T, E, PT, PE]{Ok: v, IsOk: true}
}

// Err constructs a failed Result wrapping e.
func Err[T, E any, PT Codec[T], PE Codec[E]](e E) Result[T, E, PT, PE] {
	return Result[T, E, PT, PE]{Err: e, IsOk: false}
}

// EncodedLen implements part of [Value].
func (r Result[T, E, PT, PE]) EncodedLen() int {
	if r.IsOk {
		return 1 + PT(&r.Ok).EncodedLen()
	}
	return 1 + PE(&r.Err).EncodedLen()
}

// Encode implements part of [Value].
func (r Result[T, E, PT, PE]) Encode(s Sink) error {
	if r.IsOk {
		if err := EncodeUint8(s, 0x00); err != nil {
			return err
		}
		return PT(&r.Ok).Encode(s)
	}
	if err := EncodeUint8(s, 0x01); err != nil {
		return err
	}
	return PE(&r.Err).Encode(s)
}

// Decode implements part of [Decoder].
func (r *Result[T, E, PT, PE]) Decode(src Source) error {
	tag, err := DecodeUint8(src)
	if err != nil {
		return err
	}
	switch tag {
	case 0x00:
		var v T
		if err := PT(&v).Decode(src); err != nil {
			return err
		}
		r.Ok, r.IsOk = v, true
		return nil
	case 0x01:
		var e E
		if err := PE(&e).Decode(src); err != nil {
			return err
		}
		r.Err, r.IsOk = e, false
		return nil
	default:
		return ErrInvalidEncoding
	}
}

// Fixed encodes a known-length array of elements as the plain concatenation
// of their individual encodings, with no length prefix; the element count is
// fixed by context (e.g. a struct field of array type), not by the wire form.
type Fixed[T any, PT Codec[T]] []T

// EncodedLen implements part of [Value].
func (f Fixed[T, PT]) EncodedLen() int {
	n := 0
	for i := range f {
		n += PT(&f[i]).EncodedLen()
	}
	return n
}

// Encode implements part of [Value].
func (f Fixed[T, PT]) Encode(s Sink) error {
	for i := range f {
		if err := PT(&f[i]).Encode(s); err != nil {
			return err
		}
	}
	return nil
}

// DecodeFixed reads n consecutive elements with no length prefix, matching
// the wire form produced by [Fixed.Encode].
func DecodeFixed[T any, PT Codec[T]](src Source, n int) (Fixed[T, PT], error) {
	out := make(Fixed[T, PT], n)
	for i := range out {
		if err := PT(&out[i]).Decode(src); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// maxSeqLen is the largest sequence length the u32 length prefix can address.
// Declaring a sequence longer than this is a programmer error (§4.1).
const maxSeqLen = 1<<32 - 1

// Seq encodes a variable-length sequence as a little-endian u32 length prefix
// followed by the concatenated encodings of its elements.
type Seq[T any, PT Codec[T]] []T

// EncodedLen implements part of [Value].
func (q Seq[T, PT]) EncodedLen() int {
	n := 4
	for i := range q {
		n += PT(&q[i]).EncodedLen()
	}
	return n
}

// Encode implements part of [Value].
func (q Seq[T, PT]) Encode(s Sink) error {
	if len(q) > maxSeqLen {
		panic("canon: sequence length exceeds u32 range")
	}
	if err := EncodeUint32(s, uint32(len(q))); err != nil {
		return err
	}
	for i := range q {
		if err := PT(&q[i]).Encode(s); err != nil {
			return err
		}
	}
	return nil
}

// Decode implements part of [Decoder].
func (q *Seq[T, PT]) Decode(src Source) error {
	n, err := DecodeUint32(src)
	if err != nil {
		return err
	}
	out := make(Seq[T, PT], n)
	for i := range out {
		if err := PT(&out[i]).Decode(src); err != nil {
			return err
		}
	}
	*q = out
	return nil
}

// Tuple2 encodes a pair left-to-right with no separators, per §4.1.
type Tuple2[A, B any, PA Codec[A], PB Codec[B]] struct {
	A A
	B B
}

// EncodedLen implements part of [Value].
func (t Tuple2[A, B, PA, PB]) EncodedLen() int {
	return PA(&t.A).EncodedLen() + PB(&t.B).EncodedLen()
}

// Encode implements part of [Value].
func (t Tuple2[A, B, PA, PB]) Encode(s Sink) error {
	if err := PA(&t.A).Encode(s); err != nil {
		return err
	}
	return PB(&t.B).Encode(s)
}

// Decode implements part of [Decoder].
func (t *Tuple2[A, B, PA, PB]) Decode(src Source) error {
	if err := PA(&t.A).Decode(src); err != nil {
		return err
	}
	return PB(&t.B).Decode(src)
}

// Tuple3 encodes a triple left-to-right with no separators, per §4.1.
type Tuple3[A, B, C any, PA Codec[A], PB Codec[B], PC Codec[C]] struct {
	A A
	B B
	C C
}

// EncodedLen implements part of [Value].
func (t Tuple3[A, B, C, PA, PB, PC]) EncodedLen() int {
	return PA(&t.A).EncodedLen() + PB(&t.B).EncodedLen() + PC(&t.C).EncodedLen()
}

// Encode implements part of [Value].
func (t Tuple3[A, B, C, PA, PB, PC]) Encode(s Sink) error {
	if err := PA(&t.A).Encode(s); err != nil {
		return err
	}
	if err := PB(&t.B).Encode(s); err != nil {
		return err
	}
	return PC(&t.C).Encode(s)
}

// Decode implements part of [Decoder].
func (t *Tuple3[A, B, C, PA, PB, PC]) Decode(src Source) error {
	if err := PA(&t.A).Decode(src); err != nil {
		return err
	}
	if err := PB(&t.B).Decode(src); err != nil {
		return err
	}
	return PC(&t.C).Decode(src)
}
