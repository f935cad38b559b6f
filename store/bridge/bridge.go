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

// Package bridge implements the guest side of the sandbox I/O boundary: a
// single fixed-size page crossing the guest/host trust boundary, carrying
// encoded state and transaction or query arguments in one direction and an
// updated state plus a return value in the other.
//
// A page is read once (self, then a transaction or query identifier, then
// any arguments) and written once (new state for a transaction, then the
// return value), with no overlap in time between the two passes, so the same
// backing array can be reused in place.
package bridge

import (
	"context"
	"fmt"

	"github.com/creachadair/canon"
)

// MinPageSize is the smallest page this package will operate over.
const MinPageSize = 4096

// QueryID identifies a read-only operation dispatched across the bridge. The
// query namespace is one byte wide and disjoint from the transaction
// namespace.
type QueryID uint8

// TransactionID identifies a state-mutating operation dispatched across the
// bridge. The transaction namespace is two bytes wide and disjoint from the
// query namespace.
type TransactionID uint16

// Store is the process-wide singleton store backing all bridge traffic
// inside a single guest instance. It is a plain in-memory store: the guest
// sandbox is single-threaded and cooperative, so no locking is required, and
// nothing outlives a single transaction's page.
//
// Package bridge only ever constructs one Store, lazily, on first use: see
// [ambient].
type Store struct {
	m map[canon.Id][]byte
}

func newStore() *Store { return &Store{m: make(map[canon.Id][]byte)} }

// PutRaw implements part of [canon.Store].
func (s *Store) PutRaw(_ context.Context, data []byte) (canon.Id, error) {
	id := canon.HashBytes(data)
	if _, ok := s.m[id]; !ok {
		cp := make([]byte, len(data))
		copy(cp, data)
		s.m[id] = cp
	}
	return id, nil
}

// GetRaw implements part of [canon.Store].
func (s *Store) GetRaw(_ context.Context, id canon.Id) ([]byte, error) {
	data, ok := s.m[id]
	if !ok {
		return nil, canon.ErrMissingValue
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

var ambient *Store

// Ambient returns the guest's single process-wide bridge store,
// initializing it on first access. Outside the guest build profile this
// store has no purpose; callers on the host side should construct their own
// [canon.Store] (e.g. memstore.New) instead.
func Ambient() *Store {
	if ambient == nil {
		ambient = newStore()
	}
	return ambient
}

// Page is a fixed-size buffer shared by a ByteSource/ByteSink pair for the
// lifetime of a single bridge transaction or query. Reset the cursor with
// Rewind before constructing the ByteSink that writes the response, since
// reads and writes to the same backing array must not overlap in time.
type Page struct {
	buf []byte
	pos int
}

// NewPage wraps buf, which must be at least MinPageSize bytes, as a bridge
// page. The returned Page's cursor starts at offset 0.
func NewPage(buf []byte) (*Page, error) {
	if len(buf) < MinPageSize {
		return nil, fmt.Errorf("bridge: page of %d bytes is smaller than minimum %d", len(buf), MinPageSize)
	}
	return &Page{buf: buf}, nil
}

// Rewind resets the page's cursor to offset 0, so a ByteSink constructed
// afterward overwrites the page from the start. Call this only after all
// reads for the current transaction or query have completed.
func (p *Page) Rewind() { p.pos = 0 }

// Source returns a [canon.Source] that reads forward from the page's
// current cursor, backed by store.
func (p *Page) Source(store canon.Store) canon.Source {
	return &byteSource{page: p, store: store}
}

// Sink returns a [canon.Sink] that writes forward from the page's current
// cursor, backed by store. It does not support Recur: the bridge protocol
// has no notion of a child page, since every value crossing the boundary is
// encoded flat into the one shared buffer.
func (p *Page) Sink(store canon.Store) canon.Sink {
	return &byteSink{page: p, store: store}
}

type byteSource struct {
	page  *Page
	store canon.Store
}

func (s *byteSource) ReadBytes(n int) ([]byte, error) {
	p := s.page
	if n < 0 || p.pos+n > len(p.buf) {
		return nil, canon.ErrInvalidEncoding
	}
	b := p.buf[p.pos : p.pos+n]
	p.pos += n
	return b, nil
}

func (s *byteSource) Store() canon.Store { return s.store }

type byteSink struct {
	page  *Page
	store canon.Store
}

func (s *byteSink) WriteBytes(n int) []byte {
	p := s.page
	if p.pos+n > len(p.buf) {
		panic("bridge: page overflow: encoding exceeds page size")
	}
	b := p.buf[p.pos : p.pos+n]
	p.pos += n
	return b
}

func (s *byteSink) CopyBytes(b []byte) error {
	copy(s.WriteBytes(len(b)), b)
	return nil
}

func (s *byteSink) Recur() canon.Sink {
	panic("bridge: Sink does not support Recur")
}

func (s *byteSink) Fin() (canon.Id, error) {
	return canon.Id{}, canon.ErrMissingValue
}
