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

// SliceSink is a [Sink] backed by a growable in-memory buffer and no store.
// Recur and Fin are unsupported: a SliceSink is for flat, non-recursive
// encodings such as a single primitive or a fully-inlined value. The
// store/bridge subpackage builds its page-bound sink on the same principle,
// but over a fixed-size buffer rather than a growable one.
type SliceSink struct {
	buf []byte
}

// NewSliceSink returns an empty, ready-to-use SliceSink.
func NewSliceSink() *SliceSink { return &SliceSink{} }

// Bytes returns the bytes written to s so far.
func (s *SliceSink) Bytes() []byte { return s.buf }

// WriteBytes implements part of [Sink].
func (s *SliceSink) WriteBytes(n int) []byte {
	start := len(s.buf)
	s.buf = append(s.buf, make([]byte, n)...)
	return s.buf[start : start+n]
}

// CopyBytes implements part of [Sink].
func (s *SliceSink) CopyBytes(b []byte) error {
	s.buf = append(s.buf, b...)
	return nil
}

// Recur implements part of [Sink]. A SliceSink cannot recurse, since it has no
// associated store to commit a child subtree to; use a store-backed sink (see
// [NewStoreSink]) for values containing a [Repr] in Ident form.
func (*SliceSink) Recur() Sink { panic("canon: SliceSink does not support Recur") }

// Fin implements part of [Sink]. A SliceSink has no store to commit to, so Fin
// always reports ErrMissingValue; callers that only need the written bytes
// should use Bytes instead.
func (s *SliceSink) Fin() (Id, error) { return Id{}, ErrMissingValue }

// SliceSource is a [Source] that reads from a fixed byte slice and has no
// associated store; resolving an Ident [Repr] read from a SliceSource fails.
type SliceSource struct {
	buf []byte
}

// NewSliceSource returns a Source that reads from buf.
func NewSliceSource(buf []byte) *SliceSource { return &SliceSource{buf: buf} }

// ReadBytes implements part of [Source].
func (s *SliceSource) ReadBytes(n int) ([]byte, error) {
	if n > len(s.buf) {
		return nil, ErrInvalidEncoding
	}
	b := s.buf[:n]
	s.buf = s.buf[n:]
	return b, nil
}

// Store implements part of [Source]. A SliceSource has no backing store.
func (*SliceSource) Store() Store { return nil }
