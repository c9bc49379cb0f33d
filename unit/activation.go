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

package unit

import (
	"strings"

	"github.com/sabouaram/sockunit/endpoint"

	liblog "github.com/nabbar/golib/logger"
	"golang.org/x/sys/unix"
)

// handleReadable is the per-endpoint readiness trigger (spec.md section
// 4.E): dispatched from the watcher callback installed in doListening,
// already marshalled back onto the event loop. A readiness event that
// arrives after the unit left Listening (the watch removal itself raced
// with an already-queued callback) is dropped.
func (u *socketUnit) handleReadable(p endpoint.Port) {
	if u.state.Load() != StateListening {
		return
	}
	if u.cfg.Accept {
		u.acceptOne(p)
	} else {
		u.activateNonAccepting()
	}
}

// activateNonAccepting implements the non-accepting half of spec.md
// section 4.E: the first readiness event loads and queues the paired
// service and stops watching. The unit only reaches Running once that
// service reports itself running, through NotifyServiceRunning.
func (u *socketUnit) activateNonAccepting() {
	if u.service != nil {
		return
	}
	if u.col.Manager == nil {
		return
	}

	svc, err := u.col.Manager.LoadUnit(u.cfg.ServiceName)
	if err != nil {
		u.logger().Entry(liblog.ErrorLevel, "failed to load paired service").
			FieldAdd("unit", u.name).FieldAdd("service", u.cfg.ServiceName).
			ErrorAdd(true, err).Log()
		u.doStopPre(ResultFailureResources)
		return
	}
	u.service = svc

	if _, err := u.col.Manager.AddStartJob(svc); err != nil {
		u.logger().Entry(liblog.ErrorLevel, "failed to queue paired service start").
			FieldAdd("unit", u.name).ErrorAdd(true, err).Log()
		u.doStopPre(ResultFailureResources)
		return
	}

	_ = u.eps.UnwatchAll(u.col.Watcher)
}

// acceptOne implements the accepting half of spec.md section 4.E: one
// accept per readiness event, a new service instance per connection, and
// a hard drop once max_connections is reached.
func (u *socketUnit) acceptOne(p endpoint.Port) {
	if u.cfg.MaxConnections > 0 && u.nConnections.Load() >= u.cfg.MaxConnections {
		if fd, _, err := acceptFD(p.FD()); err == nil {
			_ = unix.Close(fd)
		}
		return
	}

	fd, _, err := acceptFD(p.FD())
	if err != nil {
		if !isNonFatalAcceptErr(err) {
			u.logger().Entry(liblog.WarnLevel, "accept failed").
				FieldAdd("unit", u.name).ErrorAdd(true, err).Log()
		}
		return
	}

	nr := u.nAccepted.Load()

	name, err := instanceName(nr, fd)
	if err != nil || name == "" {
		_ = unix.Close(fd)
		return
	}
	u.nAccepted.Store(nr + 1)

	if u.col.Manager == nil || u.col.Binder == nil {
		_ = unix.Close(fd)
		return
	}

	svc, err := u.col.Manager.LoadUnit(u.instanceServiceName(name))
	if err != nil {
		_ = unix.Close(fd)
		return
	}

	if err := u.col.Binder.SetSocketFD(svc, fd, u); err != nil {
		_ = unix.Close(fd)
		return
	}

	u.nConnections.Store(u.nConnections.Load() + 1)

	if _, err := u.col.Manager.AddStartJob(svc); err != nil {
		u.logger().Entry(liblog.ErrorLevel, "failed to queue accepted connection").
			FieldAdd("unit", u.name).ErrorAdd(true, err).Log()
	}
}

// instanceServiceName substitutes instance into ServiceName's "@" template
// slot (spec.md section 4.E.1), or returns ServiceName unchanged if it has
// none.
func (u *socketUnit) instanceServiceName(instance string) string {
	idx := strings.IndexByte(u.cfg.ServiceName, '@')
	if idx < 0 {
		return u.cfg.ServiceName
	}
	return u.cfg.ServiceName[:idx+1] + instance + u.cfg.ServiceName[idx+1:]
}

// acceptFD wraps accept4 with the non-blocking, close-on-exec flags every
// accepted connection fd needs, retrying across EINTR.
func acceptFD(listenFD int) (int, unix.Sockaddr, error) {
	for {
		fd, sa, err := unix.Accept4(listenFD, unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK)
		if err == unix.EINTR {
			continue
		}
		return fd, sa, err
	}
}

// isNonFatalAcceptErr reports the accept(2) errors spec.md section 4.E
// calls out as transient: a peer that reset or hung up before the accept
// completed.
func isNonFatalAcceptErr(err error) bool {
	switch err {
	case unix.ECONNABORTED, unix.ENOTCONN, unix.EAGAIN, unix.EWOULDBLOCK:
		return true
	}
	return false
}
