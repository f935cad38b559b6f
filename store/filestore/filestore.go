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

// Package filestore implements [canon.Store] using one file per stored
// value, similar to a Git local object store: the identifier's hex encoding
// names the file, sharded by a short directory prefix so no single directory
// accumulates an unbounded number of entries.
//
// Two optional, disk-only concerns layer on top of the bare file-per-value
// model, neither of which is visible through the [canon.Store] contract:
// values above a size threshold may be transparently compressed on disk, and
// a store may keep a detached integrity checksum beside each value to detect
// corruption that a filesystem's own error detection misses.
package filestore

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/creachadair/atomicfile"
	"github.com/creachadair/canon"
	"github.com/golang/snappy"
	"golang.org/x/crypto/blake2b"
)

// shardLen is the number of leading hex digits of an identifier used as an
// intervening directory component, so that a single directory never
// accumulates one file per stored value.
const shardLen = 2

// compressThreshold is the smallest value size, in bytes, that PutRaw
// considers for snappy compression when compression is enabled. Smaller
// values are stored raw; snappy's own framing overhead would net negative on
// them.
const compressThreshold = 256

const (
	formatRaw    byte = 0
	formatSnappy byte = 1
)

// Store implements [canon.Store] using a directory of files, one per stored
// value. The zero Store is not ready for use; construct one with [New].
type Store struct {
	dir      string
	compress bool
	checksum bool
}

// Option configures optional behavior of a Store constructed by [New].
type Option func(*Store)

// WithCompression enables transparent snappy compression of values at or
// above an internal size threshold.
func WithCompression() Option { return func(s *Store) { s.compress = true } }

// WithChecksums enables a detached blake2b-256 integrity checksum written
// alongside each value and verified on every GetRaw. This catches disk
// corruption that would otherwise surface as a silently wrong value, at the
// cost of one extra small file per stored value.
func WithChecksums() Option { return func(s *Store) { s.checksum = true } }

// New creates a Store rooted at dir, which is created if it does not already
// exist.
func New(dir string, opts ...Option) (Store, error) {
	root := filepath.Clean(dir)
	if err := os.MkdirAll(root, 0700); err != nil {
		return Store{}, err
	}
	s := Store{dir: root}
	for _, opt := range opts {
		opt(&s)
	}
	return s, nil
}

// path returns the on-disk location of id's value file: the identifier's hex
// encoding, under a subdirectory named by its first shardLen hex digits, so
// that s.dir never accumulates an unbounded number of direct entries.
func (s Store) path(id canon.Id) string {
	name := hex.EncodeToString(id[:])
	return filepath.Join(s.dir, name[:shardLen], name)
}

// PutRaw implements part of [canon.Store]. Storing the same bytes twice
// writes the file again (an idempotent no-op from the caller's view) rather
// than erroring, since the destination path is wholly determined by the
// content hash.
func (s Store) PutRaw(_ context.Context, data []byte) (canon.Id, error) {
	id := canon.HashBytes(data)
	path := s.path(id)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return canon.Id{}, err
	}

	format := formatRaw
	payload := data
	if s.compress && len(data) >= compressThreshold {
		format = formatSnappy
		payload = snappy.Encode(nil, data)
	}
	if err := atomicfile.WriteData(path, append([]byte{format}, payload...), 0600); err != nil {
		return canon.Id{}, err
	}
	if s.checksum {
		sum := blake2b.Sum256(data)
		if err := atomicfile.WriteData(path+".sum", sum[:], 0600); err != nil {
			return canon.Id{}, err
		}
	}
	return id, nil
}

// GetRaw implements part of [canon.Store].
func (s Store) GetRaw(_ context.Context, id canon.Id) ([]byte, error) {
	path := s.path(id)
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, canon.ErrMissingValue
	} else if err != nil {
		return nil, fmt.Errorf("filestore: %x: %w", id, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("filestore: %x: truncated value file", id)
	}
	format, payload := raw[0], raw[1:]

	var data []byte
	switch format {
	case formatRaw:
		data = payload
	case formatSnappy:
		data, err = snappy.Decode(nil, payload)
		if err != nil {
			return nil, fmt.Errorf("filestore: %x: decompressing value: %w", id, err)
		}
	default:
		return nil, fmt.Errorf("filestore: %x: unknown value format %d", id, format)
	}

	if s.checksum {
		want, err := os.ReadFile(path + ".sum")
		if err != nil {
			return nil, fmt.Errorf("filestore: %x: reading checksum: %w", id, err)
		}
		got := blake2b.Sum256(data)
		if !bytes.Equal(got[:], want) {
			return nil, fmt.Errorf("filestore: %x: checksum mismatch (corrupt value)", id)
		}
	}
	return data, nil
}

// Dir reports the root directory associated with s.
func (s Store) Dir() string { return s.dir }
