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

package remote

// A Query names a read-only operation together with its argument value. Go
// has no analogue of a const generic parameter, so unlike the source this is
// modeled on, the operation identifier is an ordinary struct field rather
// than a type parameter; callers still get a distinct Go type per (A, R)
// argument/result pair, and the id travels with the value across the bridge
// exactly as described in §4.5 and §4.6.
type Query[A, R any] struct {
	ID   uint8
	Args A
}

// NewQuery constructs a Query with the given one-byte identifier and
// arguments.
func NewQuery[A, R any](id uint8, args A) Query[A, R] {
	return Query[A, R]{ID: id, Args: args}
}

// A Transaction names a state-mutating operation together with its argument
// value, using the two-byte identifier namespace that is disjoint from
// Query's.
type Transaction[A, R any] struct {
	ID   uint16
	Args A
}

// NewTransaction constructs a Transaction with the given two-byte
// identifier and arguments.
func NewTransaction[A, R any](id uint16, args A) Transaction[A, R] {
	return Transaction[A, R]{ID: id, Args: args}
}

// Executor runs read-only queries against a value of type T without
// modifying it.
type Executor[T, A, R any] interface {
	Execute(self T, q Query[A, R]) (R, error)
}

// Applier runs a state-mutating transaction against a value of type T,
// returning the (possibly) updated value alongside the transaction's result.
// Matching the guest dispatch loop in §4.5, the updated value is returned
// rather than mutated through a pointer, so a transaction that errors part
// way through cannot leave self in an inconsistent state: the caller simply
// discards the returned value and keeps the original.
type Applier[T, A, R any] interface {
	Apply(self T, t Transaction[A, R]) (T, R, error)
}

// ExecutorFunc adapts a plain function to the [Executor] interface.
type ExecutorFunc[T, A, R any] func(self T, args A) (R, error)

// Execute implements [Executor].
func (f ExecutorFunc[T, A, R]) Execute(self T, q Query[A, R]) (R, error) {
	return f(self, q.Args)
}

// ApplierFunc adapts a plain function to the [Applier] interface.
type ApplierFunc[T, A, R any] func(self T, args A) (T, R, error)

// Apply implements [Applier].
func (f ApplierFunc[T, A, R]) Apply(self T, t Transaction[A, R]) (T, R, error) {
	return f(self, t.Args)
}
