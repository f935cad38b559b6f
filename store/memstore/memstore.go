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

// Package memstore implements the [canon.Store] interface using an in-memory
// map. It is the reference implementation described in §4.6 of the design
// notes: a cheaply-cloneable handle to a shared, lock-protected mapping from
// identifier to byte slice.
package memstore

import (
	"context"
	"sync"

	"github.com/creachadair/canon"
)

// Store implements [canon.Store] with a map guarded by a read-write lock.
// Multiple readers may call GetRaw concurrently; PutRaw takes the lock
// exclusively. The zero Store is not ready for use; construct one with [New].
//
// A Store value is a handle to shared state: copying it (by value or by
// taking its address) yields another view of the same backing map, matching
// the "cheaply cloneable" requirement on [canon.Store].
type Store struct {
	state *state
}

type state struct {
	μ sync.RWMutex
	m map[canon.Id][]byte
}

// New constructs a new, empty Store.
func New() Store {
	return Store{state: &state{m: make(map[canon.Id][]byte)}}
}

// PutRaw implements part of [canon.Store]. Storing the same bytes twice
// returns the same [canon.Id] both times, and does not overwrite the existing
// entry (content-addressed data never changes once hashed).
func (s Store) PutRaw(_ context.Context, bytes []byte) (canon.Id, error) {
	id := canon.HashBytes(bytes)

	s.state.μ.Lock()
	defer s.state.μ.Unlock()
	if _, ok := s.state.m[id]; !ok {
		cp := make([]byte, len(bytes))
		copy(cp, bytes)
		s.state.m[id] = cp
	}
	return id, nil
}

// GetRaw implements part of [canon.Store].
func (s Store) GetRaw(_ context.Context, id canon.Id) ([]byte, error) {
	s.state.μ.RLock()
	defer s.state.μ.RUnlock()
	v, ok := s.state.m[id]
	if !ok {
		return nil, canon.ErrMissingValue
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

// Len reports the number of distinct values currently held by s.
func (s Store) Len() int {
	s.state.μ.RLock()
	defer s.state.μ.RUnlock()
	return len(s.state.m)
}

// Clear removes all entries from s. It is intended for test setup; a
// production store would not expose a way to discard its content-addressed
// history wholesale.
func (s Store) Clear() {
	s.state.μ.Lock()
	defer s.state.μ.Unlock()
	s.state.m = make(map[canon.Id][]byte)
}
