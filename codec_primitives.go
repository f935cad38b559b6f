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

import "encoding/binary"

// This file implements the Canon encoding of the built-in primitive types:
// u8/i8, u16..u64/i16..i64, and bool. All multi-byte integers are
// little-endian (§4.1 of the design notes); Go has no native 128-bit integer,
// so u128/i128 are not implemented here -- see DESIGN.md for that scoping
// note.

func putUint64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }

// Uint8, Int8

// EncodeUint8 writes v as a single byte.
func EncodeUint8(s Sink, v uint8) error { return s.CopyBytes([]byte{v}) }

// DecodeUint8 reads a single byte.
func DecodeUint8(src Source) (uint8, error) {
	b, err := src.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// EncodeInt8 writes v as a single byte.
func EncodeInt8(s Sink, v int8) error { return s.CopyBytes([]byte{byte(v)}) }

// DecodeInt8 reads a single byte.
func DecodeInt8(src Source) (int8, error) {
	b, err := src.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// Bool

// EncodeBool writes v as 0x00 or 0x01.
func EncodeBool(s Sink, v bool) error {
	if v {
		return s.CopyBytes([]byte{0x01})
	}
	return s.CopyBytes([]byte{0x00})
}

// DecodeBool reads a byte and requires it to be 0x00 or 0x01; any other value
// is ErrInvalidEncoding.
func DecodeBool(src Source) (bool, error) {
	b, err := src.ReadBytes(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	default:
		return false, ErrInvalidEncoding
	}
}

// Uint16, Int16

// EncodeUint16 writes v little-endian in 2 bytes.
func EncodeUint16(s Sink, v uint16) error {
	b := s.WriteBytes(2)
	binary.LittleEndian.PutUint16(b, v)
	return nil
}

// DecodeUint16 reads 2 little-endian bytes.
func DecodeUint16(src Source) (uint16, error) {
	b, err := src.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// EncodeInt16 writes v little-endian in 2 bytes.
func EncodeInt16(s Sink, v int16) error { return EncodeUint16(s, uint16(v)) }

// DecodeInt16 reads 2 little-endian bytes.
func DecodeInt16(src Source) (int16, error) {
	v, err := DecodeUint16(src)
	return int16(v), err
}

// Uint32, Int32

// EncodeUint32 writes v little-endian in 4 bytes.
func EncodeUint32(s Sink, v uint32) error {
	b := s.WriteBytes(4)
	binary.LittleEndian.PutUint32(b, v)
	return nil
}

// DecodeUint32 reads 4 little-endian bytes.
func DecodeUint32(src Source) (uint32, error) {
	b, err := src.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// EncodeInt32 writes v little-endian in 4 bytes.
func EncodeInt32(s Sink, v int32) error { return EncodeUint32(s, uint32(v)) }

// DecodeInt32 reads 4 little-endian bytes.
func DecodeInt32(src Source) (int32, error) {
	v, err := DecodeUint32(src)
	return int32(v), err
}

// Uint64, Int64

// EncodeUint64 writes v little-endian in 8 bytes.
func EncodeUint64(s Sink, v uint64) error {
	b := s.WriteBytes(8)
	binary.LittleEndian.PutUint64(b, v)
	return nil
}

// DecodeUint64 reads 8 little-endian bytes.
func DecodeUint64(src Source) (uint64, error) {
	b, err := src.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// EncodeInt64 writes v little-endian in 8 bytes.
func EncodeInt64(s Sink, v int64) error { return EncodeUint64(s, uint64(v)) }

// DecodeInt64 reads 8 little-endian bytes.
func DecodeInt64(src Source) (int64, error) {
	v, err := DecodeUint64(src)
	return int64(v), err
}

// Concrete Value/Decoder wrappers, so primitives can be used anywhere a
// generic [Codec] is expected (e.g. inside [Option], [Result], [Seq]).

// U8 adapts uint8 to the Canon contract.
type U8 uint8

// EncodedLen implements part of [Value].
func (U8) EncodedLen() int { return 1 }

// Encode implements part of [Value].
func (v U8) Encode(s Sink) error { return EncodeUint8(s, uint8(v)) }

// Decode implements part of [Decoder].
func (v *U8) Decode(src Source) error {
	u, err := DecodeUint8(src)
	*v = U8(u)
	return err
}

// U16 adapts uint16 to the Canon contract.
type U16 uint16

// EncodedLen implements part of [Value].
func (U16) EncodedLen() int { return 2 }

// Encode implements part of [Value].
func (v U16) Encode(s Sink) error { return EncodeUint16(s, uint16(v)) }

// Decode implements part of [Decoder].
func (v *U16) Decode(src Source) error {
	u, err := DecodeUint16(src)
	*v = U16(u)
	return err
}

// U32 adapts uint32 to the Canon contract.
type U32 uint32

// EncodedLen implements part of [Value].
func (U32) EncodedLen() int { return 4 }

// Encode implements part of [Value].
func (v U32) Encode(s Sink) error { return EncodeUint32(s, uint32(v)) }

// Decode implements part of [Decoder].
func (v *U32) Decode(src Source) error {
	u, err := DecodeUint32(src)
	*v = U32(u)
	return err
}

// U64 adapts uint64 to the Canon contract.
type U64 uint64

// EncodedLen implements part of [Value].
func (U64) EncodedLen() int { return 8 }

// Encode implements part of [Value].
func (v U64) Encode(s Sink) error { return EncodeUint64(s, uint64(v)) }

// Decode implements part of [Decoder].
func (v *U64) Decode(src Source) error {
	u, err := DecodeUint64(src)
	*v = U64(u)
	return err
}

// I8 adapts int8 to the Canon contract.
type I8 int8

// EncodedLen implements part of [Value].
func (I8) EncodedLen() int { return 1 }

// Encode implements part of [Value].
func (v I8) Encode(s Sink) error { return EncodeInt8(s, int8(v)) }

// Decode implements part of [Decoder].
func (v *I8) Decode(src Source) error {
	n, err := DecodeInt8(src)
	*v = I8(n)
	return err
}

// I16 adapts int16 to the Canon contract.
type I16 int16

// EncodedLen implements part of [Value].
func (I16) EncodedLen() int { return 2 }

// Encode implements part of [Value].
func (v I16) Encode(s Sink) error { return EncodeInt16(s, int16(v)) }

// Decode implements part of [Decoder].
func (v *I16) Decode(src Source) error {
	n, err := DecodeInt16(src)
	*v = I16(n)
	return err
}

// I32 adapts int32 to the Canon contract.
type I32 int32

// EncodedLen implements part of [Value].
func (I32) EncodedLen() int { return 4 }

// Encode implements part of [Value].
func (v I32) Encode(s Sink) error { return EncodeInt32(s, int32(v)) }

// Decode implements part of [Decoder].
func (v *I32) Decode(src Source) error {
	n, err := DecodeInt32(src)
	*v = I32(n)
	return err
}

// I64 adapts int64 to the Canon contract.
type I64 int64

// EncodedLen implements part of [Value].
func (I64) EncodedLen() int { return 8 }

// Encode implements part of [Value].
func (v I64) Encode(s Sink) error { return EncodeInt64(s, int64(v)) }

// Decode implements part of [Decoder].
func (v *I64) Decode(src Source) error {
	n, err := DecodeInt64(src)
	*v = I64(n)
	return err
}

// Bool adapts bool to the Canon contract.
type Bool bool

// EncodedLen implements part of [Value].
func (Bool) EncodedLen() int { return 1 }

// Encode implements part of [Value].
func (v Bool) Encode(s Sink) error { return EncodeBool(s, bool(v)) }

// Decode implements part of [Decoder].
func (v *Bool) Decode(src Source) error {
	b, err := DecodeBool(src)
	*v = Bool(b)
	return err
}
