// Copyright 2020 Michael J. Fromberger. All Rights Reserved.
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

package cachestore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/creachadair/canon"
	"github.com/creachadair/canon/store/cachestore"
	"github.com/creachadair/canon/store/memstore"
	"github.com/creachadair/canon/store/storetest"
)

// countingStore wraps a canon.Store and counts calls to PutRaw, so tests can
// verify how many times a write actually reached the base store.
type countingStore struct {
	canon.Store
	puts atomic.Int64
}

func (s *countingStore) PutRaw(ctx context.Context, data []byte) (canon.Id, error) {
	s.puts.Add(1)
	return s.Store.PutRaw(ctx, data)
}

func TestStore(t *testing.T) {
	storetest.Run(t, cachestore.New(memstore.New(), 1<<20))
}

// TestCacheServesWithoutBase confirms a cached value can still be read back
// after the identifier has been evicted from the underlying base store,
// demonstrating that GetRaw consults the cache before the base.
func TestCacheServesWithoutBase(t *testing.T) {
	ctx := context.Background()
	base := memstore.New()
	s := cachestore.New(base, 1<<20)

	id, err := s.PutRaw(ctx, []byte("cached"))
	if err != nil {
		t.Fatalf("PutRaw: %v", err)
	}

	base.Clear() // remove from the base store directly; the cache still has it
	got, err := s.GetRaw(ctx, id)
	if err != nil {
		t.Fatalf("GetRaw after base clear: %v", err)
	}
	if string(got) != "cached" {
		t.Errorf("GetRaw(%x) = %q, want %q", id, got, "cached")
	}
}

// TestPutCoalescesConcurrentIdenticalWrites implements scenario S8: N
// concurrent PutRaw calls for identical bytes collapse into exactly one
// PutRaw reaching the base store.
func TestPutCoalescesConcurrentIdenticalWrites(t *testing.T) {
	ctx := context.Background()
	base := &countingStore{Store: memstore.New()}
	s := cachestore.New(base, 1<<20)

	const n = 16
	data := []byte("coalesce me")

	var wg sync.WaitGroup
	ids := make([]canon.Id, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = s.PutRaw(ctx, data)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("PutRaw[%d]: %v", i, err)
		}
		if ids[i] != ids[0] {
			t.Errorf("PutRaw[%d] = %x, want %x", i, ids[i], ids[0])
		}
	}
	if got := base.puts.Load(); got != 1 {
		t.Errorf("base received %d PutRaw calls, want 1", got)
	}
}

func TestMissing(t *testing.T) {
	ctx := context.Background()
	s := cachestore.New(memstore.New(), 1<<20)
	if _, err := s.GetRaw(ctx, canon.Id{0xff}); err != canon.ErrMissingValue {
		t.Errorf("GetRaw(unknown) = %v, want ErrMissingValue", err)
	}
}
