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

import "context"

// ReprKind distinguishes the two forms a [Repr] may take on the wire.
type ReprKind int

const (
	// ReprInline indicates the child's encoded bytes are carried directly in
	// the parent's encoding.
	ReprInline ReprKind = iota
	// ReprIdent indicates the Repr carries only an identifier; the child's
	// bytes live in a store.
	ReprIdent
)

// Repr is the hybrid child reference described in §4.3 of the design notes: a
// "handle" to a value of type T that either inlines the value's encoded bytes
// (when they fit in one less than an identifier's width) or stores the value
// separately and holds its [Id].
//
// A Repr never embeds a store reference (this follows the storeless variant
// of the design the source library converged on; see Open Question (a) in
// the design notes): the store is always supplied explicitly by the caller of
// [Repr.Restore] or [Repr.Mutate], mirroring how a [Source] supplies the store
// used to resolve an Ident read out of it.
//
// The zero Repr is not valid; construct one with [NewRepr] or by decoding.
type Repr[T any, PT Codec[T]] struct {
	kind   ReprKind
	inline []byte // valid encoding of a T, length <= IdLen-1
	id     Id
}

// NewRepr constructs a Repr wrapping v. If v's encoded length is at most
// IdLen-1, the Repr inlines v's bytes directly (ReprInline); otherwise v is
// encoded into a fresh store-backed sink, committed, and the Repr holds the
// resulting identifier (ReprIdent). This threshold is what makes the wire
// form self-describing and canonical: see invariant 5 in the design notes.
func NewRepr[T any, PT Codec[T]](ctx context.Context, store Store, v T) (Repr[T, PT], error) {
	n := PT(&v).EncodedLen()
	if n <= IdLen-1 {
		buf := NewSliceSink()
		if err := PT(&v).Encode(buf); err != nil {
			return Repr[T, PT]{}, err
		}
		return Repr[T, PT]{kind: ReprInline, inline: buf.Bytes()}, nil
	}
	sink := NewStoreSink(ctx, store)
	if err := PT(&v).Encode(sink); err != nil {
		return Repr[T, PT]{}, err
	}
	id, err := sink.Fin()
	if err != nil {
		return Repr[T, PT]{}, err
	}
	return Repr[T, PT]{kind: ReprIdent, id: id}, nil
}

// Kind reports whether r is inline or a store identifier.
func (r Repr[T, PT]) Kind() ReprKind { return r.kind }

// Restore returns the value behind r. For an inline Repr this decodes the
// carried bytes directly with no store access; for an identifier Repr it
// fetches the bytes from store first. The returned T is a fresh, owned copy:
// mutating it does not affect anything already committed to store (§3,
// "Lifecycles").
func (r Repr[T, PT]) Restore(ctx context.Context, store Store) (T, error) {
	var zero T
	switch r.kind {
	case ReprInline:
		var v T
		if err := PT(&v).Decode(NewSliceSource(r.inline)); err != nil {
			return zero, err
		}
		return v, nil
	case ReprIdent:
		return Get[T, PT](ctx, store, r.id)
	default:
		return zero, ErrInvalidEncoding
	}
}

// Mutate restores the value behind r, passes a pointer to it to fn, and -- if
// fn succeeds -- re-derives r from the (possibly changed) result exactly as
// [NewRepr] would, replacing r's contents in place. The mutation may cross the
// inline/ident threshold in either direction. If fn reports an error, r is
// left unchanged and the error is returned to the caller directly, rather
// than being silently dropped (§9, "Mutation via guarded borrow": this is the
// explicit-commit re-architecture of the source library's drop-triggered
// cast_mut pattern).
//
// If r was previously an Ident referencing bytes in store, the old identifier
// is not reclaimed; stores are append-only from this package's point of view.
func (r *Repr[T, PT]) Mutate(ctx context.Context, store Store, fn func(*T) error) error {
	v, err := r.Restore(ctx, store)
	if err != nil {
		return err
	}
	if err := fn(&v); err != nil {
		return err
	}
	next, err := NewRepr[T, PT](ctx, store, v)
	if err != nil {
		return err
	}
	*r = next
	return nil
}

// EncodedLen implements part of [Value]. The wire form is always a single
// prefix byte, plus either the inline payload or a full [Id].
func (r Repr[T, PT]) EncodedLen() int {
	if r.kind == ReprInline {
		return 1 + len(r.inline)
	}
	return 1 + IdLen
}

// Encode implements part of [Value]: prefix byte 0 means an identifier
// follows; prefix byte 1..=IdLen-1 gives the count of inline bytes that
// follow (§4.3, "Wire encoding of a Repr").
func (r Repr[T, PT]) Encode(s Sink) error {
	if r.kind == ReprInline {
		if err := EncodeUint8(s, uint8(len(r.inline))); err != nil {
			return err
		}
		return s.CopyBytes(r.inline)
	}
	if err := EncodeUint8(s, 0); err != nil {
		return err
	}
	return s.CopyBytes(r.id[:])
}

// Decode implements part of [Decoder]. It consumes the prefix byte and either
// IdLen identifier bytes or that many inline bytes, reconstructing the Repr
// without resolving it: resolving happens lazily in [Repr.Restore].
func (r *Repr[T, PT]) Decode(src Source) error {
	prefix, err := DecodeUint8(src)
	if err != nil {
		return err
	}
	if prefix == 0 {
		b, err := src.ReadBytes(IdLen)
		if err != nil {
			return err
		}
		var id Id
		copy(id[:], b)
		*r = Repr[T, PT]{kind: ReprIdent, id: id}
		return nil
	}
	if int(prefix) > IdLen-1 {
		return ErrInvalidEncoding
	}
	b, err := src.ReadBytes(int(prefix))
	if err != nil {
		return err
	}
	inline := make([]byte, len(b))
	copy(inline, b)
	*r = Repr[T, PT]{kind: ReprInline, inline: inline}
	return nil
}
