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

// Package stack is a proof-of-concept self-referential structure built on
// [canon.Repr]: a singly linked stack whose tail is a Repr rather than a
// direct embedding, so that a long stack is not one giant inline blob but a
// chain of store-committed (or, for short tails, inlined) nodes.
//
// This package exists to demonstrate the recursive sink/source protocol, not
// as a general-purpose collection; higher-level collections built on the
// core codec are out of scope for this module (see §1 of the design notes).
package stack

import (
	"context"

	"github.com/creachadair/canon"
)

// Stack is an immutable-feeling, Repr-backed singly linked stack of values of
// type T. The zero Stack is not empty and not valid; obtain an empty Stack
// from [New].
//
// Stack is itself a Canon sum type, matching §4.1's encoding for sum types: a
// discriminant byte (0 for Empty, 1 for Node) followed by the active
// variant's payload. The Node variant's payload is the top value followed by
// a Repr referencing the rest of the stack.
type Stack[T any, PT canon.Codec[T]] struct {
	empty bool
	value T
	prev  canon.Repr[Stack[T, PT], *Stack[T, PT]]
}

// New returns an empty Stack.
func New[T any, PT canon.Codec[T]]() Stack[T, PT] { return Stack[T, PT]{empty: true} }

// IsEmpty reports whether s has no elements.
func (s Stack[T, PT]) IsEmpty() bool { return s.empty }

// Push places v on top of s, committing the previous top of the stack behind
// a [canon.Repr] (inlined if it is small, stored under an identifier
// otherwise).
func (s *Stack[T, PT]) Push(ctx context.Context, store canon.Store, v T) error {
	rest, err := canon.NewRepr[Stack[T, PT], *Stack[T, PT]](ctx, store, *s)
	if err != nil {
		return err
	}
	*s = Stack[T, PT]{value: v, prev: rest}
	return nil
}

// Pop removes and returns the top value of s, reporting false if s was empty.
func (s *Stack[T, PT]) Pop(ctx context.Context, store canon.Store) (T, bool, error) {
	var zero T
	if s.empty {
		return zero, false, nil
	}
	v := s.value
	rest, err := s.prev.Restore(ctx, store)
	if err != nil {
		return zero, false, err
	}
	*s = rest
	return v, true, nil
}

// EncodedLen implements part of [canon.Value].
func (s Stack[T, PT]) EncodedLen() int {
	if s.empty {
		return 1
	}
	return 1 + PT(&s.value).EncodedLen() + s.prev.EncodedLen()
}

// Encode implements part of [canon.Value].
func (s Stack[T, PT]) Encode(sink canon.Sink) error {
	if s.empty {
		return canon.EncodeUint8(sink, 0)
	}
	if err := canon.EncodeUint8(sink, 1); err != nil {
		return err
	}
	if err := PT(&s.value).Encode(sink); err != nil {
		return err
	}
	return s.prev.Encode(sink)
}

// Decode implements part of [canon.Decoder].
func (s *Stack[T, PT]) Decode(src canon.Source) error {
	tag, err := canon.DecodeUint8(src)
	if err != nil {
		return err
	}
	switch tag {
	case 0:
		*s = Stack[T, PT]{empty: true}
		return nil
	case 1:
		var v T
		if err := PT(&v).Decode(src); err != nil {
			return err
		}
		var rest canon.Repr[Stack[T, PT], *Stack[T, PT]]
		if err := rest.Decode(src); err != nil {
			return err
		}
		*s = Stack[T, PT]{value: v, prev: rest}
		return nil
	default:
		return canon.ErrInvalidEncoding
	}
}
