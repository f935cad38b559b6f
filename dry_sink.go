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

// DrySink is a [Sink] that counts the bytes a value would occupy without
// storing any of them. It answers "how big would this be" where computing
// EncodedLen directly is inconvenient ([NewRepr] itself uses EncodedLen to
// pick between the Inline and Ident forms); for every [Value] implementation
// in this package, DrySink's count must equal EncodedLen() (invariant 6 in the
// design notes).
type DrySink struct {
	n       int
	scratch [64]byte // large enough for any single WriteBytes request this package issues
}

// NewDrySink returns a ready-to-use DrySink with a zero count.
func NewDrySink() *DrySink { return &DrySink{} }

// Len reports the number of bytes written to the sink so far.
func (d *DrySink) Len() int { return d.n }

// WriteBytes implements part of [Sink]. It advances the counter and returns a
// borrowed slice into a fixed scratch buffer; callers must not retain it past
// the next Sink call and must not request more than len(scratch) bytes in one
// call (no codec in this package does).
func (d *DrySink) WriteBytes(n int) []byte {
	d.n += n
	if n > len(d.scratch) {
		panic("canon: DrySink request exceeds scratch capacity")
	}
	return d.scratch[:n]
}

// CopyBytes implements part of [Sink]. It only advances the counter.
func (d *DrySink) CopyBytes(b []byte) error {
	d.n += len(b)
	return nil
}

// Recur implements part of [Sink]. The child DrySink has its own independent
// counter, matching the scoping a real recursive sink gives a child subtree.
func (d *DrySink) Recur() Sink { return NewDrySink() }

// Fin implements part of [Sink]. A DrySink commits nothing and always returns
// the zero Id.
func (d *DrySink) Fin() (Id, error) { return Id{}, nil }

// EncodedLenOf returns the number of bytes v's Encode would write, computed by
// running it against a DrySink. This is useful when a caller wants
// EncodedLen-like behavior for a value that does not expose one directly
// (e.g. when composing ad hoc encodings), but ordinary [Value] implementers
// should prefer implementing EncodedLen directly where that is cheap.
func EncodedLenOf(v Value) int {
	d := NewDrySink()
	_ = v.Encode(d)
	return d.Len()
}
