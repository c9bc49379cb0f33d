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

package endpoint

import (
	libatm "github.com/nabbar/golib/atomic"
	libptc "github.com/nabbar/golib/network/protocol"
)

// port is the shared implementation behind every Kind: the fd/watch
// bookkeeping is identical across sockets, FIFOs, special files and
// message queues (spec.md section 3, Endpoint). Only Open differs, and
// that is supplied by the opener closure captured at construction.
type port struct {
	Logging

	kind Kind
	netw libptc.NetworkProtocol
	addr string
	opts Options

	fd   libatm.Value[int]
	wtc  libatm.Value[int]
	used libatm.Value[bool]

	open func(p *port) error
}

func newPort(kind Kind, netw libptc.NetworkProtocol, addr string, opts Options, log Logging, openFn func(p *port) error) *port {
	p := &port{
		Logging: log,
		kind:    kind,
		netw:    netw,
		addr:    addr,
		opts:    opts,
		open:    openFn,
		fd:      libatm.NewValue[int](),
		wtc:     libatm.NewValue[int](),
		used:    libatm.NewValue[bool](),
	}
	p.fd.Store(-1)
	p.wtc.Store(-1)
	return p
}

func (p *port) Kind() Kind                       { return p.kind }
func (p *port) Network() libptc.NetworkProtocol  { return p.netw }
func (p *port) Address() string                  { return p.addr }
func (p *port) FD() int                          { return p.fd.Load() }
func (p *port) IsOpen() bool                      { return p.fd.Load() >= 0 }
func (p *port) IsWatched() bool                   { return p.wtc.Load() >= 0 }
func (p *port) ListenTag() string                 { return p.kind.ListenTag(p.netw) }

func (p *port) Open() error {
	if p.IsOpen() {
		return nil
	}
	return p.open(p)
}

func (p *port) Close() error {
	fd := p.fd.Swap(-1)
	if fd < 0 {
		return nil
	}
	return closeFD(fd)
}

func (p *port) SetFD(fd int) {
	p.fd.Store(fd)
}

func (p *port) Watch(w Watcher, onReadable func()) error {
	if w == nil || !p.IsOpen() || p.IsWatched() {
		return nil
	}
	h, e := w.WatchFD(p.fd.Load(), onReadable)
	if e != nil {
		return e
	}
	p.wtc.Store(h)
	return nil
}

func (p *port) Unwatch(w Watcher) error {
	h := p.wtc.Swap(-1)
	if h < 0 || w == nil {
		return nil
	}
	return w.UnwatchFD(h)
}
