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

// Package remote holds a heterogeneous collection of stored values behind a
// single typeless handle: a [Remote] records only an identifier and a store,
// and the caller supplies the type at cast time. A mis-cast — decoding the
// stored bytes as the wrong type — surfaces as [canon.ErrInvalidEncoding]
// when the stored bytes cannot be decoded as that type (too few bytes, a bad
// tag). The stored bytes carry no type information, so a mis-cast whose type
// decodes successfully from them (for example, from a prefix of the stored
// bytes) returns a value without error.
package remote

import (
	"context"

	"github.com/creachadair/canon"
)

// Remote is an untyped reference to a value reachable from an identifier in
// a store. It carries no type information of its own; [Cast] requires the
// caller to name the type to decode into.
type Remote struct {
	id    canon.Id
	store canon.Store
}

// New commits v to store and returns a Remote referencing it.
func New(ctx context.Context, store canon.Store, v canon.Value) (Remote, error) {
	id, err := canon.Put(ctx, store, v)
	if err != nil {
		return Remote{}, err
	}
	return Remote{id: id, store: store}, nil
}

// FromId wraps an already-known identifier as a Remote over store, without
// independently verifying that a value of any particular type lives there.
func FromId(store canon.Store, id canon.Id) Remote { return Remote{id: id, store: store} }

// Id reports the identifier this Remote currently refers to.
func (r Remote) Id() canon.Id { return r.id }

// Cast decodes the value r refers to as a T. If the stored bytes cannot be
// decoded as a T, Cast fails with [canon.ErrInvalidEncoding] rather than
// producing a zero or partially-decoded T. Bytes left over after a T has been
// decoded are not reported as an error.
func Cast[T any, PT canon.Codec[T]](ctx context.Context, r Remote) (T, error) {
	return canon.Get[T, PT](ctx, r.store, r.id)
}

// EncodedLen implements part of [canon.Value]. A Remote's wire form is
// exactly its identifier.
func (r Remote) EncodedLen() int { return canon.IdLen }

// Encode implements part of [canon.Value].
func (r Remote) Encode(sink canon.Sink) error { return r.id.Encode(sink) }

// Decode implements part of [canon.Decoder]. The store backing the decoded
// Remote is the one attached to src.
func (r *Remote) Decode(src canon.Source) error {
	var id canon.Id
	if err := id.Decode(src); err != nil {
		return err
	}
	r.id = id
	r.store = src.Store()
	return nil
}

// CastMut is a scoped, explicit-commit mutable view of the value a Remote
// refers to, obtained via [CastMutAs]. Unlike the guarded-borrow pattern it
// descends from, nothing here runs implicitly on release: a caller that does
// not call Commit leaves the originating Remote unchanged, and any error
// from Commit is returned to the caller rather than discarded.
type CastMut[T any, PT canon.Codec[T]] struct {
	remote *Remote
	value  T
}

// CastMutAs decodes the value r refers to as a T and returns a scoped handle
// for mutating it in place. Call Commit on the result to write the mutated
// value back and advance r to the new identifier; otherwise r is left
// pointing at the original value.
func CastMutAs[T any, PT canon.Codec[T]](ctx context.Context, r *Remote) (CastMut[T, PT], error) {
	v, err := canon.Get[T, PT](ctx, r.store, r.id)
	if err != nil {
		return CastMut[T, PT]{}, err
	}
	return CastMut[T, PT]{remote: r, value: v}, nil
}

// Value returns the decoded value. Mutate it through Set, then call Commit
// to persist the change.
func (c CastMut[T, PT]) Value() T { return c.value }

// Set replaces the decoded value held by c. It has no effect on the
// originating Remote until Commit is called.
func (c *CastMut[T, PT]) Set(v T) { c.value = v }

// Commit puts the (possibly mutated) value back into the store and updates
// the originating Remote to reference the new identifier.
func (c *CastMut[T, PT]) Commit(ctx context.Context) error {
	id, err := canon.Put(ctx, c.remote.store, PT(&c.value))
	if err != nil {
		return err
	}
	c.remote.id = id
	return nil
}
