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

package remote_test

import (
	"context"
	"testing"

	"github.com/creachadair/canon"
	"github.com/creachadair/canon/collections/stack"
	"github.com/creachadair/canon/remote"
	"github.com/creachadair/canon/store/memstore"
)

type stackT = stack.Stack[canon.U8, *canon.U8]

const pushTransactionID uint16 = 0xaaa

// TestRemoteCastRoundtrip commits a value behind an erased Remote and casts
// it back as its concrete type.
func TestRemoteCastRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	s := stack.New[canon.U8, *canon.U8]()
	if err := s.Push(ctx, store, 0xb0); err != nil {
		t.Fatalf("Push: %v", err)
	}

	r, err := remote.New(ctx, store, s)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := remote.Cast[stackT, *stackT](ctx, r)
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	v, ok, err := got.Pop(ctx, store)
	if err != nil || !ok || v != 0xb0 {
		t.Errorf("Pop() = (%v, %v, %v), want (0xb0, true, nil)", v, ok, err)
	}
}

// TestRemoteCastWrongTypeFails asserts that casting a Remote to a shape that
// does not match the stored bytes fails with ErrInvalidEncoding rather than
// silently producing an unrelated value.
func TestRemoteCastWrongTypeFails(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	r, err := remote.New(ctx, store, canon.U64(0xdeadbeef))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	type triple = canon.Tuple3[canon.U64, canon.U64, canon.U64, *canon.U64, *canon.U64, *canon.U64]
	if _, err := remote.Cast[triple, *triple](ctx, r); err != canon.ErrInvalidEncoding {
		t.Errorf("Cast to mismatched type = %v, want ErrInvalidEncoding", err)
	}
}

// TestRemoteWireRoundtrip checks that a Remote's own encoding is exactly its
// identifier, and that decoding it against a fresh source attaches that
// source's store.
func TestRemoteWireRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	r, err := remote.New(ctx, store, canon.U32(7))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := r.EncodedLen(); got != canon.IdLen {
		t.Errorf("EncodedLen() = %d, want %d", got, canon.IdLen)
	}

	id, err := canon.Put(ctx, store, r)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	var r2 remote.Remote
	src := canon.NewSourceWithStore(mustGetRaw(t, ctx, store, id), store)
	if err := r2.Decode(src); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r2.Id() != r.Id() {
		t.Errorf("decoded id = %x, want %x", r2.Id(), r.Id())
	}

	v, err := remote.Cast[canon.U32, *canon.U32](ctx, r2)
	if err != nil || v != 7 {
		t.Errorf("Cast() = (%v, %v), want (7, nil)", v, err)
	}
}

func mustGetRaw(t *testing.T, ctx context.Context, store canon.Store, id canon.Id) []byte {
	t.Helper()
	raw, err := store.GetRaw(ctx, id)
	if err != nil {
		t.Fatalf("GetRaw: %v", err)
	}
	return raw
}

// TestCastMutCommit exercises the explicit-commit mutation pattern: a caller
// that never calls Commit leaves the Remote pointing at the original value,
// and one that does advances it to the mutated value's identifier.
func TestCastMutCommit(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	r, err := remote.New(ctx, store, canon.U32(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	origID := r.Id()

	cast, err := remote.CastMutAs[canon.U32, *canon.U32](ctx, &r)
	if err != nil {
		t.Fatalf("CastMutAs: %v", err)
	}
	cast.Set(cast.Value() + 1)
	if r.Id() != origID {
		t.Fatalf("Remote id changed before Commit")
	}
	if err := cast.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if r.Id() == origID {
		t.Errorf("Remote id unchanged after Commit")
	}

	got, err := remote.Cast[canon.U32, *canon.U32](ctx, r)
	if err != nil || got != 2 {
		t.Errorf("Cast() after commit = (%v, %v), want (2, nil)", got, err)
	}
}

// TestApplierFunc exercises the dispatch adapter types against the stack
// push operation, mirroring the guest dispatch convention used by the
// byte-buffer bridge (store/bridge).
func TestApplierFunc(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	s := stack.New[canon.U8, *canon.U8]()
	txn := remote.NewTransaction[canon.U8, struct{}](pushTransactionID, 0x42)

	applier := remote.ApplierFunc[stackT, canon.U8, struct{}](
		func(self stackT, v canon.U8) (stackT, struct{}, error) {
			if err := self.Push(ctx, store, v); err != nil {
				return self, struct{}{}, err
			}
			return self, struct{}{}, nil
		})

	newSelf, _, err := applier.Apply(s, txn)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	v, ok, err := newSelf.Pop(ctx, store)
	if err != nil || !ok || v != 0x42 {
		t.Errorf("Pop() after Apply = (%v, %v, %v), want (0x42, true, nil)", v, ok, err)
	}
}
