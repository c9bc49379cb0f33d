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
	"context"

	liblog "github.com/nabbar/golib/logger"
	libptc "github.com/nabbar/golib/network/protocol"
)

// Kind tags the variant an endpoint belongs to. Each Kind has its own
// open/close behavior and its own dump tag (see Port.ListenTag).
type Kind uint8

const (
	// KindSocket covers stream, datagram, sequenced-packet, raw and
	// netlink sockets, distinguished by their network.Protocol.
	KindSocket Kind = iota
	KindFIFO
	KindSpecial
	KindMessageQueue
)

func (k Kind) String() string {
	switch k {
	case KindSocket:
		return "socket"
	case KindFIFO:
		return "fifo"
	case KindSpecial:
		return "special"
	case KindMessageQueue:
		return "mqueue"
	default:
		return "unknown"
	}
}

// ListenTag returns the dump keyword for a port of this kind on network p:
// ListenFIFO, ListenSpecial, ListenMessageQueue, ListenDatagram for UDP and
// Unix datagram sockets, ListenNetlink for netlink sockets (NetworkEmpty),
// and ListenStream for every other socket. Sequenced-packet and raw sockets
// are not told apart from stream sockets and also report ListenStream.
func (k Kind) ListenTag(p libptc.NetworkProtocol) string {
	switch k {
	case KindFIFO:
		return "ListenFIFO"
	case KindSpecial:
		return "ListenSpecial"
	case KindMessageQueue:
		return "ListenMessageQueue"
	case KindSocket:
		switch p {
		case libptc.NetworkUDP, libptc.NetworkUDP4, libptc.NetworkUDP6:
			return "ListenDatagram"
		case libptc.NetworkUnixGram:
			return "ListenDatagram"
		case libptc.NetworkEmpty:
			return "ListenNetlink"
		default:
			return "ListenStream"
		}
	default:
		return "Listen"
	}
}

// Options groups every socket-level tunable from spec.md section 3/4.A.
// A zero value means "leave the OS default"; the sentinel -1 is used for
// the integer fields that have a meaningful 0 (priority, tos, ttl, mark).
type Options struct {
	Backlog        int
	DirectoryMode  uint32
	SocketMode     uint32
	ReceiveBuffer  int
	SendBuffer     int
	Priority       int
	IPTOS          int
	IPTTL          int
	Mark           int
	PipeSize       int
	TCPCongestion  string
	KeepAlive      bool
	Broadcast      bool
	PassCredential bool
	PassSecurity   bool
	ReusePort      bool
	FreeBind       bool
	Transparent    bool
	BindIPv6Only   bool
	BindToDevice   string
	MACLabel       string
	MACLabelIn     string
	MACLabelOut    string
	OwnerUser      string
	OwnerGroup     string
	MQMaxMessages  int64
	MQMessageSize  int64
}

// DefaultOptions returns the defaults spelled out in spec.md section 3:
// backlog = OS max, directory mode 0755, socket mode 0666, and every
// signed "unset" field at -1.
func DefaultOptions() Options {
	return Options{
		Backlog:       0, // 0 => SOMAXCONN, applied by the opener
		DirectoryMode: 0755,
		SocketMode:    0666,
		Priority:      -1,
		IPTOS:         -1,
		IPTTL:         -1,
		Mark:          -1,
	}
}

// Port is a single endpoint owned by a socket unit: one listening
// artifact, open or closed, with its own watch handle. It is the Go
// rendering of spec.md's SocketPort.
type Port interface {
	// Kind reports which variant this port is.
	Kind() Kind

	// Network reports the address family/transport for KindSocket ports
	// (zero value for the other kinds).
	Network() libptc.NetworkProtocol

	// Address returns the human-readable address or filesystem path this
	// port binds, used for dumps, serialization keys and
	// RequiresMountsFor linking.
	Address() string

	// FD returns the currently owned file descriptor, or -1 if closed.
	FD() int

	// IsOpen reports whether FD() >= 0.
	IsOpen() bool

	// Open creates (idempotently) the underlying object and applies
	// Options. Failures to apply individual socket/FIFO options are
	// logged as warnings, never returned as an error (spec.md 4.A/7).
	Open() error

	// Close closes FD() without deleting the filesystem object
	// (spec.md 4.B). Idempotent.
	Close() error

	// Watch installs a readiness watch on FD() via the injected Watcher
	// and records the resulting handle so Unwatch can remove exactly
	// that registration (invariant 2 in spec.md section 3).
	Watch(w Watcher, onReadable func()) error

	// Unwatch removes the watch installed by Watch, if any. Idempotent.
	Unwatch(w Watcher) error

	// IsWatched reports whether Watch installed a live registration.
	IsWatched() bool

	// SetFD transplants an externally obtained fd (from serializer
	// deserialization or distribute_fds) as if Open had created it.
	SetFD(fd int)

	// ListenTag returns the dump keyword for this port (spec.md section 6).
	ListenTag() string
}

// Watcher is the subset of the manager-wide event loop a Port needs: a
// single-readiness-event registration per fd, matching spec.md section 6's
// unit_watch_fd/unwatch_fd(events=EV_READ) contract.
type Watcher interface {
	WatchFD(fd int, onReadable func()) (handle int, err error)
	UnwatchFD(handle int) error
}

// Logging is embedded by every constructor in this package so callers can
// supply nil and get a silent logger, matching httpserver.New's defLog
// parameter.
type Logging struct {
	Log liblog.FuncLog
}

func (l Logging) logger() liblog.Logger {
	if l.Log != nil {
		if lg := l.Log(); lg != nil {
			return lg
		}
	}
	return liblog.New(context.Background())
}
