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

// Package storetest provides a reusable conformance suite for implementations
// of the [canon.Store] interface.
package storetest

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/creachadair/canon"
	"github.com/creachadair/taskgroup"
)

// Run exercises the universal invariants of a [canon.Store] (§8 of the design
// notes) against s: idempotence of PutRaw, agreement between PutRaw and
// [canon.HashBytes], and ErrMissingValue for unknown identifiers.
func Run(t *testing.T, s canon.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("MissingValue", func(t *testing.T) {
		_, err := s.GetRaw(ctx, canon.Id{0xff})
		if err != canon.ErrMissingValue {
			t.Errorf("GetRaw(unknown) = %v, want ErrMissingValue", err)
		}
	})

	t.Run("PutGetRoundtrip", func(t *testing.T) {
		data := []byte("a store is a logical mapping from identifier to byte vector")
		id, err := s.PutRaw(ctx, data)
		if err != nil {
			t.Fatalf("PutRaw: %v", err)
		}
		got, err := s.GetRaw(ctx, id)
		if err != nil {
			t.Fatalf("GetRaw(%x): %v", id, err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("GetRaw(%x) = %q, want %q", id, got, data)
		}
	})

	t.Run("Idempotence", func(t *testing.T) {
		data := []byte("idempotent")
		id1, err := s.PutRaw(ctx, data)
		if err != nil {
			t.Fatalf("PutRaw (first): %v", err)
		}
		id2, err := s.PutRaw(ctx, data)
		if err != nil {
			t.Fatalf("PutRaw (second): %v", err)
		}
		if id1 != id2 {
			t.Errorf("PutRaw not idempotent: %x != %x", id1, id2)
		}
	})

	t.Run("IdentityEqualsPut", func(t *testing.T) {
		data := []byte("identity = put")
		want := canon.HashBytes(data)
		got, err := s.PutRaw(ctx, data)
		if err != nil {
			t.Fatalf("PutRaw: %v", err)
		}
		if got != want {
			t.Errorf("PutRaw returned %x, HashBytes returned %x", got, want)
		}
	})

	t.Run("ConcurrentPut", func(t *testing.T) {
		const n = 64
		var g taskgroup.Group
		var mu sync.Mutex
		ids := make(map[canon.Id]bool)
		for i := range n {
			g.Go(func() error {
				data := []byte(fmt.Sprintf("concurrent-%d", i%8)) // force collisions on purpose
				id, err := s.PutRaw(ctx, data)
				if err != nil {
					return err
				}
				mu.Lock()
				ids[id] = true
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("concurrent PutRaw: %v", err)
		}
		if len(ids) != 8 {
			t.Errorf("got %d distinct ids from 8 distinct values, want 8", len(ids))
		}
	})
}
