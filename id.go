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
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// IdLen is the width in bytes of an [Id]. The reference store in this package
// uses a narrow, non-cryptographic hash for brevity and speed; a production
// store substitutes a wider cryptographic digest (see the design notes in
// DESIGN.md) but must still satisfy the same Id = hash(bytes) contract.
const IdLen = 8

// Id is a fixed-width content fingerprint: the identifier under which a byte
// sequence is stored. The zero Id is the "nil" identifier and is never
// produced by hashing non-empty input with overwhelming probability, but
// callers should not rely on that; use IsZero only to detect an
// uninitialized field.
type Id [IdLen]byte

// IsZero reports whether id is the default, all-zero identifier.
func (id Id) IsZero() bool { return id == Id{} }

// String renders id as a hexadecimal string.
func (id Id) String() string { return hex.EncodeToString(id[:]) }

// EncodedLen implements part of [Value]. An Id always encodes to IdLen bytes.
func (id Id) EncodedLen() int { return IdLen }

// Encode implements part of [Value].
func (id Id) Encode(s Sink) error { return s.CopyBytes(id[:]) }

// Decode implements part of [Decoder].
func (id *Id) Decode(src Source) error {
	b, err := src.ReadBytes(IdLen)
	if err != nil {
		return err
	}
	copy(id[:], b)
	return nil
}

// HashBytes computes the Id that [Store.PutRaw] would assign to data, without
// storing anything. This is the single hash function shared by every
// identity-computing path in this package (see invariant 4, "Identity = put",
// in the design notes): [IdBuilder] and [Ident] must both agree with it.
func HashBytes(data []byte) Id {
	var id Id
	sum := xxhash.Sum64(data)
	putUint64(id[:], sum)
	return id
}

// An IdBuilder computes an [Id] incrementally, by feeding it successive
// slices of bytes, so that a [Sink] can hash its accumulated buffer as it
// grows rather than re-hashing it whole on [Sink.Fin]. It implements
// io.Writer.
type IdBuilder struct {
	h *xxhash.Digest
}

// NewIdBuilder returns a ready-to-use, empty IdBuilder.
func NewIdBuilder() *IdBuilder { return &IdBuilder{h: xxhash.New()} }

// Write feeds p into the running hash. It never reports an error.
func (b *IdBuilder) Write(p []byte) (int, error) { return b.h.Write(p) }

// Sum finalizes the builder and returns the resulting identifier. The builder
// remains usable afterward; subsequent writes extend the same running hash.
func (b *IdBuilder) Sum() Id {
	var id Id
	putUint64(id[:], b.h.Sum64())
	return id
}
