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

package serialize

import (
	"github.com/sabouaram/sockunit/endpoint/set"
	"github.com/sabouaram/sockunit/unit"

	"golang.org/x/sys/unix"
)

// Resolve matches every raw endpoint line this Decoded carries against
// the reloaded endpoint set by address only (the line's key and socket
// type are not compared), and appends the ones it can match to a
// ready-to-restore Snapshot. Lines with no match survive in the returned
// Decoded's Unmatched for DistributeFDs to retry.
func (d Decoded) Resolve(eps set.Set) (unit.Snapshot, Decoded) {
	s := d.Snapshot
	var rest Decoded

	for _, raw := range d.Unmatched {
		p := eps.Get(raw.Address)
		if p == nil {
			rest.Unmatched = append(rest.Unmatched, raw)
			continue
		}
		s.Endpoints = append(s.Endpoints, unit.EndpointSnapshot{
			Kind:    p.Kind(),
			Network: p.Network(),
			Tag:     p.ListenTag(),
			Address: raw.Address,
			FD:      raw.FD,
		})
	}

	return s, rest
}

// DistributeFDs sweeps candidate fds (every descriptor the caller found
// still open in the re-exec'd process image beyond what Resolve matched)
// against eps's not-yet-open endpoints, matching AF_UNIX fds by their
// bound path (spec.md section 4.F, distribute_fds). It returns the
// addresses it attached; a non-empty result means the caller must force
// the restored state to Listening.
func DistributeFDs(candidates []int, eps set.Set) []string {
	var attached []string

	for _, fd := range candidates {
		addr, ok := unixBoundPath(fd)
		if !ok {
			continue
		}
		p := eps.Get(addr)
		if p == nil || p.IsOpen() {
			continue
		}
		p.SetFD(fd)
		attached = append(attached, addr)
	}

	return attached
}

func unixBoundPath(fd int) (string, bool) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return "", false
	}
	u, ok := sa.(*unix.SockaddrUnix)
	if !ok || u.Name == "" {
		return "", false
	}
	return u.Name, true
}
