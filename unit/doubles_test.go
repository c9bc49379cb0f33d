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

package unit_test

import (
	"context"
	"sync"
	"syscall"
	"time"

	"github.com/sabouaram/sockunit/unit"
)

type fakeServiceRef struct{ name string }

func (f *fakeServiceRef) Name() string { return f.name }

type fakeManager struct {
	mu         sync.Mutex
	loaded     []string
	started    []string
	loadErr    error
	startErr   error
}

func (m *fakeManager) LoadUnit(name string) (unit.ServiceRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = append(m.loaded, name)
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return &fakeServiceRef{name: name}, nil
}

func (m *fakeManager) AddStartJob(svc unit.ServiceRef) (unit.JobID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, svc.Name())
	if m.startErr != nil {
		return 0, m.startErr
	}
	return unit.JobID(len(m.started)), nil
}

type fakeSpawner struct {
	mu       sync.Mutex
	spawnErr error
	calls    [][]string
	waits    []chan unit.ExitStatus
}

func (s *fakeSpawner) Spawn(_ context.Context, argv []string, _ []string) (int, <-chan unit.ExitStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, argv)
	if s.spawnErr != nil {
		return 0, nil, s.spawnErr
	}
	wait := make(chan unit.ExitStatus, 1)
	s.waits = append(s.waits, wait)
	return 1000 + len(s.waits), wait, nil
}

func (s *fakeSpawner) finish(idx int, es unit.ExitStatus) {
	s.mu.Lock()
	wait := s.waits[idx]
	s.mu.Unlock()
	wait <- es
}

type fakeWatcher struct {
	mu         sync.Mutex
	nextHandle int
	fdCB       map[int]func()
	timers     []func()
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{nextHandle: 1, fdCB: map[int]func(){}}
}

func (w *fakeWatcher) WatchPID(pid int, fn func(unit.ExitStatus)) error { return nil }
func (w *fakeWatcher) UnwatchPID(pid int)                               {}

func (w *fakeWatcher) WatchFD(fd int, onReadable func()) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	h := w.nextHandle
	w.nextHandle++
	w.fdCB[h] = onReadable
	return h, nil
}

func (w *fakeWatcher) UnwatchFD(handle int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.fdCB, handle)
	return nil
}

func (w *fakeWatcher) WatchTimer(_ time.Duration, fn func()) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := len(w.timers)
	w.timers = append(w.timers, fn)
	canceled := false
	return func() { canceled = true; _ = canceled; _ = idx }
}

// fireAny invokes every currently registered fd callback, simulating one
// readiness round on whichever fd a test most recently watched.
func (w *fakeWatcher) fireAny() {
	w.mu.Lock()
	cbs := make([]func(), 0, len(w.fdCB))
	for _, cb := range w.fdCB {
		cbs = append(cbs, cb)
	}
	w.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

func (w *fakeWatcher) fireLastTimer() {
	w.mu.Lock()
	fn := w.timers[len(w.timers)-1]
	w.mu.Unlock()
	fn()
}

type fakeBinder struct {
	mu    sync.Mutex
	calls []string
}

func (b *fakeBinder) SetSocketFD(svc unit.ServiceRef, fd int, self unit.Unit) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, svc.Name())
	_ = syscall.Close(fd)
	return nil
}

type fakeKill struct {
	alive int
}

func (k *fakeKill) Kill(pid int, sig syscall.Signal) (int, error) {
	return k.alive, nil
}
