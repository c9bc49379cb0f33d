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

	"github.com/sabouaram/sockunit/endpoint"
)

// FuncWalk is called for each endpoint in the order it was added. Returning false
// stops the walk early.
type FuncWalk func(address string, p endpoint.Port) bool

// Set is the ordered, address-keyed collection of endpoints belonging to
// one socket unit.
type Set interface {
	// Add appends an endpoint, keyed by its Address(). Adding a second
	// endpoint under an already-used address replaces the first.
	Add(p endpoint.Port)

	// Get returns the endpoint bound to address, or nil.
	Get(address string) endpoint.Port

	// Remove drops the endpoint bound to address, if any, without
	// closing it.
	Remove(address string)

	// Walk visits every endpoint in the order it was Added.
	Walk(fct FuncWalk)

	// Len reports how many endpoints this set holds.
	Len() int

	// OpenAll opens every endpoint in order. On the first failure, every
	// endpoint this call already opened is closed again and the error is
	// returned (spec.md 4.A rollback-on-open invariant).
	OpenAll() error

	// CloseAll closes every endpoint, best-effort: it does not stop at
	// the first error, and returns the last one encountered, if any.
	CloseAll() error

	// WatchAll installs onReadable on every open endpoint via w. Like
	// OpenAll, a failure unwinds every watch this call installed.
	WatchAll(w endpoint.Watcher, onReadable func(p endpoint.Port)) error

	// UnwatchAll removes every watch installed by WatchAll, best-effort.
	UnwatchAll(w endpoint.Watcher) error

	// Clone returns an empty Set sharing this one's logging/context
	// wiring, the way libctx.Config.Clone does for pool.
	Clone(ctx context.Context) Set
}
