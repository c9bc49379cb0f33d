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

//go:build linux

package endpoint

import (
	"unsafe"

	libptc "github.com/nabbar/golib/network/protocol"
	"golang.org/x/sys/unix"
)

// mqAttr mirrors struct mq_attr from <mqueue.h>: flags, max message
// count, max message size, current count. Only the first three are read
// by mq_open; curmsgs is kernel-filled on mq_getattr and left zero here.
type mqAttr struct {
	Flags   int64
	Maxmsg  int64
	Msgsize int64
	Curmsgs int64
}

// NewMessageQueue builds a Port over a POSIX message queue, opened
// read-only as spec.md's open_mqueue requires (the unit is only ever
// notified of arrival, never a producer).
func NewMessageQueue(name string, opts Options, log Logging) Port {
	return newPort(KindMessageQueue, libptc.NetworkEmpty, name, opts, log, openMessageQueue)
}

func openMessageQueue(p *port) error {
	attr := mqAttr{}
	if p.opts.MQMaxMessages > 0 {
		attr.Maxmsg = p.opts.MQMaxMessages
	}
	if p.opts.MQMessageSize > 0 {
		attr.Msgsize = p.opts.MQMessageSize
	}

	mode := p.opts.SocketMode
	if mode == 0 {
		mode = 0666
	}

	pathBytes, err := unix.BytePtrFromString(p.addr)
	if err != nil {
		return ErrorParamsInvalid.Error(err)
	}

	var attrPtr uintptr
	if attr.Maxmsg > 0 || attr.Msgsize > 0 {
		attrPtr = uintptr(unsafe.Pointer(&attr))
	}

	r1, _, errno := unix.Syscall6(
		unix.SYS_MQ_OPEN,
		uintptr(unsafe.Pointer(pathBytes)),
		uintptr(unix.O_RDONLY|unix.O_CLOEXEC|unix.O_NONBLOCK|unix.O_CREAT),
		uintptr(mode),
		attrPtr,
		0, 0,
	)
	if errno != 0 {
		return ErrorMessageQueue.Error(errno)
	}

	fd := int(r1)

	if p.opts.OwnerUser != "" || p.opts.OwnerGroup != "" {
		// best effort: queues live under a VFS mount, chown applies like
		// any other filesystem object.
		if e := chownMessageQueue(p.addr, p.opts); e != nil {
			p.logger().Warning("chown message queue failed", e)
		}
	}

	p.fd.Store(fd)
	return nil
}
