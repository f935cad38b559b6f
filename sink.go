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

// A Sink accepts the bytes of a canonical encoding. Implementations may write
// into a fixed buffer, grow a scratch slice, or accumulate bytes to commit to
// a [Store].
type Sink interface {
	// WriteBytes reserves n bytes in the sink and returns a slice the caller
	// must fill completely. The returned slice is only valid until the next
	// call to a Sink method.
	WriteBytes(n int) []byte

	// CopyBytes is a convenience equivalent to copying b into WriteBytes(len(b)).
	CopyBytes(b []byte) error

	// Recur returns a fresh sink that shares the same underlying store as the
	// receiver, but whose accumulated bytes belong to a separate identifier
	// scope: bytes written to the child do not appear in the parent's buffer.
	Recur() Sink

	// Fin consumes the sink, commits its accumulated bytes to the associated
	// store, and returns the resulting identifier.
	Fin() (Id, error)
}

// A Source yields the bytes of a canonical encoding, in the order a matching
// Sink wrote them.
type Source interface {
	// ReadBytes consumes and returns the next n bytes from the source,
	// advancing the cursor. Reading past the end reports ErrInvalidEncoding.
	ReadBytes(n int) ([]byte, error)

	// Store returns the store used to resolve identifiers encountered while
	// reading from this source.
	Store() Store
}
