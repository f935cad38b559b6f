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

// Store is a logical mapping from [Id] to byte slice. Implementations must be
// safe for concurrent use by multiple goroutines, and must be cheaply
// cloneable: copies of a Store share the same backing state (see the
// store/memstore, store/filestore, store/cachestore, and store/wbstore
// subpackages for concrete implementations, and store/storetest for a
// reusable conformance suite).
//
// PutRaw must be idempotent: PutRaw(b) twice returns the same Id both times,
// and the Id it returns must equal [HashBytes](b) (invariant 4, "Identity =
// put", in the design notes).
type Store interface {
	// PutRaw stores bytes under their content address and returns that
	// address. Storing the same bytes again is a no-op that returns the same
	// Id.
	PutRaw(ctx context.Context, bytes []byte) (Id, error)

	// GetRaw fetches the bytes previously stored under id. If id is unknown,
	// GetRaw reports ErrMissingValue.
	GetRaw(ctx context.Context, id Id) ([]byte, error)
}

// Put encodes v and stores its bytes in s, returning the assigned identifier.
// It is semantically PutRaw(Encode(v)).
func Put(ctx context.Context, s Store, v Value) (Id, error) {
	sink := NewSliceSink()
	if err := v.Encode(sink); err != nil {
		return Id{}, err
	}
	return s.PutRaw(ctx, sink.Bytes())
}

// Get fetches the bytes stored under id in s and decodes them as a T.
func Get[T any, PT Codec[T]](ctx context.Context, s Store, id Id) (T, error) {
	var zero T
	raw, err := s.GetRaw(ctx, id)
	if err != nil {
		return zero, err
	}
	var v T
	if err := PT(&v).Decode(NewSourceWithStore(raw, s)); err != nil {
		return zero, err
	}
	return v, nil
}

// Ident computes the [Id] that Put(ctx, s, v) would assign, without storing
// anything. Ident(v) == Put(v).Id is a core invariant of the codec (see
// invariant 4 in the design notes): two different stores using the same hash
// function must agree on identifiers.
func Ident(v Value) Id {
	sink := NewSliceSink()
	// Encode errors here would also surface from Put; since Ident computes a
	// pure function of v's encoding, any such error means v is malformed
	// regardless of the store it would have gone to.
	_ = v.Encode(sink)
	return HashBytes(sink.Bytes())
}

// storeSource is the Source half of the store-backed implementation: it reads
// from a fixed byte slice (typically retrieved from a Store, or accumulated
// by a storeSink) but, unlike [SliceSource], has an associated [Store] so
// that a [Repr] read from it can resolve an Ident reference.
type storeSource struct {
	buf   []byte
	store Store
}

// NewSourceWithStore returns a Source over buf that resolves identifiers
// against store.
func NewSourceWithStore(buf []byte, store Store) Source {
	return &storeSource{buf: buf, store: store}
}

// ReadBytes implements part of [Source].
func (s *storeSource) ReadBytes(n int) ([]byte, error) {
	if n > len(s.buf) {
		return nil, ErrInvalidEncoding
	}
	b := s.buf[:n]
	s.buf = s.buf[n:]
	return b, nil
}

// Store implements part of [Source].
func (s *storeSource) Store() Store { return s.store }

// storeSink is the Sink half of the store-backed implementation (§4.2,
// canonical implementation (b)): it accumulates bytes in memory and commits
// them to an underlying Store when Fin is called. Recur spawns a child
// storeSink sharing the same store and context but a fresh, independent
// buffer, so that a subtree committed via the child's Fin does not appear in
// the parent's bytes.
type storeSink struct {
	ctx   context.Context
	store Store
	buf   []byte
}

// NewStoreSink returns a Sink that accumulates bytes and commits them to store
// on Fin.
func NewStoreSink(ctx context.Context, store Store) Sink {
	return &storeSink{ctx: ctx, store: store}
}

// WriteBytes implements part of [Sink].
func (s *storeSink) WriteBytes(n int) []byte {
	start := len(s.buf)
	s.buf = append(s.buf, make([]byte, n)...)
	return s.buf[start : start+n]
}

// CopyBytes implements part of [Sink].
func (s *storeSink) CopyBytes(b []byte) error {
	s.buf = append(s.buf, b...)
	return nil
}

// Recur implements part of [Sink].
func (s *storeSink) Recur() Sink {
	return &storeSink{ctx: s.ctx, store: s.store}
}

// Fin implements part of [Sink].
func (s *storeSink) Fin() (Id, error) {
	return s.store.PutRaw(s.ctx, s.buf)
}
