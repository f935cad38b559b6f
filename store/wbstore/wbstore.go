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

// Package wbstore implements a [canon.Store] wrapper that buffers writes
// locally and pushes them to a base store concurrently in the background.
//
// Because a content address is a pure function of its bytes, the writeback
// discipline here is simpler than one built over arbitrary mutable keys: a
// buffered write can never conflict with another write of the same
// identifier (they are, by construction, the same bytes), so forwarding a
// buffered entry to the base store never needs a replace-aware Put and
// draining the buffer out of order is always safe.
package wbstore

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/creachadair/canon"
	"github.com/creachadair/msync"
	"github.com/creachadair/msync/trigger"
	"github.com/creachadair/taskgroup"
)

var errWriterStopped = errors.New("background writer stopped")

// Store wraps a base [canon.Store], buffering writes in buf and forwarding
// them to base on a background schedule. Reads are satisfied from the
// buffer first, then the base store, so a value is visible immediately
// after PutRaw returns even before the background writer has caught up.
type Store struct {
	base canon.Store
	buf  canon.Store

	exited chan struct{}
	stop   context.CancelFunc
	err    error

	nempty   *msync.Flag[any]
	bufClean *trigger.Cond

	μ       sync.Mutex
	pending map[canon.Id][]byte
}

// New constructs a Store delegating to base and buffering uncommitted writes
// in buf. The background writer runs until ctx ends or the Store is closed;
// New panics if base or buf is nil.
func New(ctx context.Context, base, buf canon.Store) *Store {
	if base == nil {
		panic("wbstore: base is nil")
	} else if buf == nil {
		panic("wbstore: buf is nil")
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Store{
		base:     base,
		buf:      buf,
		exited:   make(chan struct{}),
		stop:     cancel,
		nempty:   msync.NewFlag[any](),
		bufClean: trigger.New(),
		pending:  make(map[canon.Id][]byte),
	}
	g := taskgroup.Go(func() error { return s.run(ctx) })
	go func() {
		s.err = g.Wait()
		close(s.exited)
	}()
	return s
}

// GetRaw implements part of [canon.Store]. It checks the buffer before
// falling through to the base store.
func (s *Store) GetRaw(ctx context.Context, id canon.Id) ([]byte, error) {
	s.μ.Lock()
	data, ok := s.pending[id]
	s.μ.Unlock()
	if ok {
		cp := make([]byte, len(data))
		copy(cp, data)
		return cp, nil
	}
	return s.base.GetRaw(ctx, id)
}

// PutRaw implements part of [canon.Store]. It records the bytes in the
// buffer and wakes the background writer; it does not wait for the base
// store to acknowledge the write.
func (s *Store) PutRaw(ctx context.Context, data []byte) (canon.Id, error) {
	id, err := s.buf.PutRaw(ctx, data)
	if err != nil {
		return canon.Id{}, err
	}
	s.μ.Lock()
	s.pending[id] = append([]byte(nil), data...)
	s.μ.Unlock()
	s.nempty.Set(nil)
	return id, nil
}

// Buffer returns the buffer store used by s.
func (s *Store) Buffer() canon.Store { return s.buf }

// Sync blocks until the buffer is empty or ctx ends.
func (s *Store) Sync(ctx context.Context) error {
	for {
		ready := s.bufClean.Ready()
		s.μ.Lock()
		n := len(s.pending)
		s.μ.Unlock()
		if n == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ready:
			// try again
		}
	}
}

// Close stops the background writer and waits for it to exit, or for ctx to
// end, whichever comes first.
func (s *Store) Close(ctx context.Context) error {
	s.stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.exited:
		if s.err != errWriterStopped && s.err != context.Canceled {
			return s.err
		}
		return nil
	}
}

// run implements the background writer. It runs until ctx terminates or it
// receives an unrecoverable error.
func (s *Store) run(ctx context.Context) error {
	errSlowWriteRetry := errors.New("slow write retry")
	g, run := taskgroup.New(nil).Limit(64)

	for {
		select {
		case <-ctx.Done():
			return errWriterStopped
		case <-s.nempty.Ready():
		}

		s.μ.Lock()
		work := make([]canon.Id, 0, len(s.pending))
		for id := range s.pending {
			work = append(work, id)
		}
		s.μ.Unlock()
		rand.Shuffle(len(work), func(i, j int) { work[i], work[j] = work[j], work[i] })

		for _, id := range work {
			if ctx.Err() != nil {
				return errWriterStopped
			}
			s.μ.Lock()
			data, ok := s.pending[id]
			s.μ.Unlock()
			if !ok {
				continue // already flushed by a previous pass
			}

			run(func() error {
				const maxTries = 3
				for try := 1; ; try++ {
					rtctx, cancel := context.WithTimeoutCause(ctx, 10*time.Second, errSlowWriteRetry)
					_, err := s.base.PutRaw(rtctx, data)
					cancel()
					if err == nil {
						break
					} else if (isRetryableError(err) || context.Cause(rtctx) == errSlowWriteRetry) && try <= maxTries {
						if try > 1 {
							log.Printf("wbstore: error writing back %x (try %d): %v (retrying)", id, try, err)
						}
					} else if ctx.Err() != nil {
						return ctx.Err()
					} else {
						return err
					}
					time.Sleep(50 * time.Millisecond)
				}
				s.μ.Lock()
				delete(s.pending, id)
				s.μ.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			log.Printf("wbstore: error in writeback: %v", err)
		}
		s.bufClean.Signal()
	}
}

func isRetryableError(err error) bool {
	var derr *net.DNSError
	if errors.As(err, &derr) {
		return derr.Temporary() || derr.IsNotFound
	}
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNABORTED)
}
