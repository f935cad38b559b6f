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

package memstore

import (
	"context"
	"testing"

	"github.com/creachadair/canon/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, New())
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.PutRaw(ctx, []byte("hello")); err != nil {
		t.Fatalf("PutRaw: %v", err)
	}
	if got, want := s.Len(), 1; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	s.Clear()
	if got, want := s.Len(), 0; got != want {
		t.Errorf("Len() after Clear = %d, want %d", got, want)
	}
}

func TestSharedState(t *testing.T) {
	ctx := context.Background()
	s1 := New()
	s2 := s1 // copy should share state
	id, err := s1.PutRaw(ctx, []byte("shared"))
	if err != nil {
		t.Fatalf("PutRaw: %v", err)
	}
	if _, err := s2.GetRaw(ctx, id); err != nil {
		t.Errorf("GetRaw on copy: %v", err)
	}
}
