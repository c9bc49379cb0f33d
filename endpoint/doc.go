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

// Package endpoint creates and owns the individual listening artifacts a
// socket unit exposes: stream/datagram/sequenced-packet/raw/netlink
// sockets, FIFOs, POSIX message queues, and pre-existing special files.
//
// Every opener is idempotent (a Port that is already open is a no-op) and
// leaves no half-created filesystem object behind on failure. Socket option
// application happens after creation and before listen, and failures there
// are logged as warnings rather than propagated: the endpoint still enters
// service (see Port.Open).
//
// This package targets Linux: several options (SO_REUSEPORT, SO_MARK,
// F_SETPIPE_SZ, mq_open, security.* xattrs) have no portable equivalent,
// and the systemd-style unit this package serves is Linux-only by
// construction.
package endpoint
