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

// Package cachestore implements a [canon.Store] that wraps an underlying
// store in an in-memory LRU cache. It is appropriate in front of a
// high-latency or quota-limited remote store that will not be concurrently
// written by other processes; concurrent readers are fine.
//
// Unlike the keyspace-partitioned cache this package is adapted from,
// content-addressed data needs no negative-hit cache and no replace-aware
// put path: a given [canon.Id] either already names the bytes a caller is
// about to store (in which case PutRaw is a cached no-op) or it doesn't, and
// there is never a conflicting value to worry about overwriting.
package cachestore

import (
	"context"

	"github.com/creachadair/canon"
	"github.com/creachadair/mds/cache"
	"github.com/creachadair/msync/throttle"
)

// Store wraps a base [canon.Store] with an LRU byte cache bounded by
// maxBytes. Reads and writes are both cached; writes still go through to the
// base store, but concurrent PutRaw calls for the same identifier are
// coalesced so only one of them reaches the base store.
type Store struct {
	base  canon.Store
	cache *cache.Cache[canon.Id, []byte]
	put   throttle.Set[canon.Id, canon.Id]
}

// New constructs a Store delegating to base, caching up to maxBytes bytes of
// value data. It panics if maxBytes < 0.
func New(base canon.Store, maxBytes int) *Store {
	if maxBytes < 0 {
		panic("cachestore: negative cache size")
	}
	return &Store{
		base: base,
		cache: cache.New(cache.LRU[canon.Id, []byte](int64(maxBytes)).
			WithSize(func(_ canon.Id, v []byte) int64 { return int64(len(v)) })),
	}
}

// GetRaw implements part of [canon.Store].
func (s *Store) GetRaw(ctx context.Context, id canon.Id) ([]byte, error) {
	if data, ok := s.cache.Get(id); ok {
		return data, nil
	}
	data, err := s.base.GetRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Put(id, data)
	return data, nil
}

// PutRaw implements part of [canon.Store]. Since the identifier is a pure
// function of the bytes, a cache hit on id means the underlying store
// already holds these exact bytes, so the call can return without touching
// the base store.
func (s *Store) PutRaw(ctx context.Context, data []byte) (canon.Id, error) {
	id := canon.HashBytes(data)
	if _, ok := s.cache.Get(id); ok {
		return id, nil
	}
	return s.put.Call(ctx, id, func(ctx context.Context) (canon.Id, error) {
		if _, ok := s.cache.Get(id); ok {
			return id, nil // a call that finished meanwhile already stored it
		}
		got, err := s.base.PutRaw(ctx, data)
		if err != nil {
			return canon.Id{}, err
		}
		s.cache.Put(id, data)
		return got, nil
	})
}
