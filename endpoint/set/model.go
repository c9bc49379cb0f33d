/*
 * MIT License
 *
 * Copyright (c) 2026 sockunit authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package set

import (
	"context"
	"sync"

	"github.com/sabouaram/sockunit/endpoint"

	libctx "github.com/nabbar/golib/context"
)

// New builds an empty, ordered endpoint Set.
func New(ctx context.Context) Set {
	return &set{
		ctxFn: contextFunc(ctx),
		cfg:   libctx.NewConfig[string](contextFunc(ctx)),
	}
}

func contextFunc(ctx context.Context) libctx.FuncContext {
	return func() context.Context {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
}

// set keeps insertion order in a slice of keys alongside a
// libctx.Config[string]-backed lookup (the same handle-registry pattern
// httpserver/pool uses for its Config[string]-backed maps): ordering
// matters for dump/serialization, address lookup does not need it.
type set struct {
	mu    sync.RWMutex
	ctxFn libctx.FuncContext
	order []string
	cfg   libctx.Config[string]
}

func (s *set) Add(p endpoint.Port) {
	if p == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	addr := p.Address()
	if _, exists := s.cfg.Load(addr); !exists {
		s.order = append(s.order, addr)
	}
	s.cfg.Store(addr, p)
}

func (s *set) Get(address string) endpoint.Port {
	v, ok := s.cfg.Load(address)
	if !ok {
		return nil
	}
	p, _ := v.(endpoint.Port)
	return p
}

func (s *set) Remove(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cfg.Load(address); !exists {
		return
	}
	s.cfg.Delete(address)
	for i, a := range s.order {
		if a == address {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *set) Walk(fct FuncWalk) {
	if fct == nil {
		return
	}

	s.mu.RLock()
	order := make([]string, len(s.order))
	copy(order, s.order)
	s.mu.RUnlock()

	for _, addr := range order {
		p := s.Get(addr)
		if p == nil {
			continue
		}
		if !fct(addr, p) {
			return
		}
	}
}

func (s *set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// OpenAll opens every endpoint in insertion order. On the first failure it
// rolls back by closing every endpoint this call opened (spec.md 4.B), so a
// unit never ends up holding a partially-open batch.
func (s *set) OpenAll() error {
	var opened []endpoint.Port

	var openErr error
	s.Walk(func(_ string, p endpoint.Port) bool {
		if p.IsOpen() {
			return true
		}
		if err := p.Open(); err != nil {
			openErr = err
			return false
		}
		opened = append(opened, p)
		return true
	})

	if openErr != nil {
		for _, p := range opened {
			_ = p.Close()
		}
		return openErr
	}

	return nil
}

// CloseAll closes every endpoint, best-effort. It never deletes the
// underlying filesystem object (spec.md 4.B).
func (s *set) CloseAll() error {
	var last error
	s.Walk(func(_ string, p endpoint.Port) bool {
		if err := p.Close(); err != nil {
			last = err
		}
		return true
	})
	return last
}

// WatchAll installs onReadable on every open endpoint. A failure unwinds
// every watch this call installed, mirroring OpenAll's rollback contract.
func (s *set) WatchAll(w endpoint.Watcher, onReadable func(p endpoint.Port)) error {
	var watched []endpoint.Port

	var watchErr error
	s.Walk(func(_ string, p endpoint.Port) bool {
		if !p.IsOpen() || p.IsWatched() {
			return true
		}
		port := p
		if err := p.Watch(w, func() { onReadable(port) }); err != nil {
			watchErr = err
			return false
		}
		watched = append(watched, p)
		return true
	})

	if watchErr != nil {
		for _, p := range watched {
			_ = p.Unwatch(w)
		}
		return watchErr
	}

	return nil
}

func (s *set) UnwatchAll(w endpoint.Watcher) error {
	var last error
	s.Walk(func(_ string, p endpoint.Port) bool {
		if err := p.Unwatch(w); err != nil {
			last = err
		}
		return true
	})
	return last
}

func (s *set) Clone(ctx context.Context) Set {
	if ctx == nil {
		ctx = s.ctxFn()
	}
	return New(ctx)
}
