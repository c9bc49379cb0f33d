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
	"context"
	"io"
	"syscall"
	"time"

	liblog "github.com/nabbar/golib/logger"
)

// ServiceRef is an opaque handle on the paired service unit, resolved
// through Manager rather than held as a raw pointer (spec.md section 9,
// "registry handle (unit id + resolver callback)").
type ServiceRef interface {
	Name() string
}

// JobID identifies a queued job (spec.md section 6, manager_add_job).
type JobID uint64

// ExitStatus is the outcome of a spawned control child (spec.md section
// 4.D/4.C).
type ExitStatus struct {
	Pid        int
	ExitCode   int
	Signal     syscall.Signal
	CoreDumped bool
	Exited     bool
	Signaled   bool
}

// Manager is the out-of-scope manager-wide event loop and job queue,
// consumed only through this narrow contract (spec.md section 6).
type Manager interface {
	LoadUnit(name string) (ServiceRef, error)
	AddStartJob(svc ServiceRef) (JobID, error)
}

// Spawner stands in for the out-of-scope exec_spawn primitive (spec.md
// section 6).
type Spawner interface {
	Spawn(ctx context.Context, argv []string, env []string) (pid int, wait <-chan ExitStatus, err error)
}

// Watcher is the manager-wide event loop's registration surface for pids,
// fds and timers (spec.md section 6). endpoint.Watcher is the fd subset of
// this interface, reused as-is by endpoint.Port.Watch/Unwatch.
type Watcher interface {
	WatchPID(pid int, fn func(ExitStatus)) error
	UnwatchPID(pid int)
	WatchFD(fd int, onReadable func()) (handle int, err error)
	UnwatchFD(handle int) error
	WatchTimer(d time.Duration, fn func()) (cancel func())
}

// ServiceBinder hands an accepted connection's fd to the paired service,
// transferring ownership (spec.md section 6, service_set_socket_fd).
type ServiceBinder interface {
	SetSocketFD(svc ServiceRef, fd int, self Unit) error
}

// Labeler wraps the MAC-labelling collaborator (spec.md section 6,
// label_*). Collaborators carries it, but this package never calls it.
type Labeler interface {
	ContextSet(path string) error
	ContextClear()
	CreateLabelFromExe(exe string) (string, error)
}

// KillContext delivers a signal to a control-group or a tracked pid and
// reports whether any process was still alive (spec.md section 6,
// kill_context.kill).
type KillContext interface {
	Kill(pid int, sig syscall.Signal) (processesSignalled int, err error)
}

// Collaborators bundles every external contract a socket unit needs. A nil
// field is tolerated wherever the corresponding behavior is exercised only
// in configurations that need it; Labeler is not consulted at all.
type Collaborators struct {
	Manager  Manager
	Spawner  Spawner
	Watcher  Watcher
	Binder   ServiceBinder
	Labeler  Labeler
	Kill     KillContext
	Log      liblog.FuncLog
}

// Unit is the Go rendering of spec.md's SocketUnit aggregate.
type Unit interface {
	io.Closer

	// Name reports the unit id.
	Name() string

	// Start enters the start path from Dead/Failed (spec.md section 4.C).
	// It is a no-op error if the unit is already starting or active.
	Start() error

	// Stop enters the stop path from Listening/Running, or aborts the start
	// path from StartPre/StartChown/StartPost (spec.md section 4.C). In
	// Dead, Failed or a state already on the stop path it does nothing.
	Stop() error

	// State reports the current SocketState.
	State() State

	// ActiveState reports the active-state projection of State().
	ActiveState() ActiveState

	// Result reports the latched SocketResult.
	Result() Result

	// CollectFDs returns a snapshot of every currently open endpoint fd,
	// in endpoint order (spec.md section 6).
	CollectFDs() []int

	// ConnectionUnref decrements n_connections. Invariant: n_connections
	// must be >= 1 before the call (spec.md section 6).
	ConnectionUnref()

	// NotifyServiceDead is the non-accepting-mode service-state change
	// notification (spec.md section 6/4.C trigger 6).
	NotifyServiceDead(failedPermanent bool)

	// NotifyServiceRunning is the other half of trigger 6: the
	// non-accepting path's Listening -> Running transition on first
	// "service now running" notification (spec.md section 4.C, Running
	// path).
	NotifyServiceRunning()

	// GetTimeout reports the current timer deadline, if armed.
	GetTimeout() (deadline time.Time, armed bool)

	// Dump writes a stable-order textual property dump (spec.md section
	// 6, Property dump fields).
	Dump(w io.Writer) error

	// Snapshot, Restore and Coldplug are the Unit-side half of the serialize
	// package's contract: they expose exactly the fields
	// serialize.Encode/Decode need without leaking socketUnit internals.
	Snapshot() Snapshot
	Restore(s Snapshot) error
	Coldplug() error
}
