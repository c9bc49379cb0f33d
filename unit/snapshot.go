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
	"github.com/sabouaram/sockunit/endpoint"

	libptc "github.com/nabbar/golib/network/protocol"
)

// Snapshot is the Unit-side half of the serializer's contract (spec.md
// section 4.F): everything a re-exec needs to reconstruct a unit on the
// other side without redoing the start path. It carries no collaborators
// and no watch handles; Coldplug rebuilds those after Restore.
type Snapshot struct {
	Name          string
	State         State
	Result        Result
	NAccepted     uint64
	NConnections  int
	ControlPID    int
	ControlCommand string
	Endpoints     []EndpointSnapshot
}

// EndpointSnapshot pairs one listen endpoint's serializer key with the fd
// it owned at snapshot time (spec.md section 4.F, one ListenXxx=value line
// per endpoint plus the fd passed out-of-band).
type EndpointSnapshot struct {
	Kind    endpoint.Kind
	Network libptc.NetworkProtocol
	Tag     string
	Address string
	FD      int
}

// NotifyServiceRunning is trigger 6's "service now running" half (spec.md
// section 4.C): only the non-accepting path waits on it, and only while
// Listening.
func (u *socketUnit) NotifyServiceRunning() {
	u.call(func() {
		if !u.cfg.Accept && u.state.Load() == StateListening {
			u.doRunning()
		}
	})
}

// NotifyServiceDead is trigger 6's "service exited" half. A permanent
// failure latches ResultFailureServicePermanent and tears the unit down;
// a transient exit in non-accepting mode re-arms listening so the next
// connection can re-trigger activation.
func (u *socketUnit) NotifyServiceDead(failedPermanent bool) {
	u.call(func() {
		switch u.state.Load() {
		case StateListening, StateRunning:
		default:
			return
		}

		u.service = nil

		if failedPermanent {
			u.doStopPre(ResultFailureServicePermanent)
			return
		}
		if !u.cfg.Accept {
			u.doListening()
		}
	})
}

// Snapshot captures the fields the serializer needs to survive a re-exec.
func (u *socketUnit) Snapshot() Snapshot {
	var s Snapshot
	u.call(func() {
		s = Snapshot{
			Name:         u.name,
			State:        u.state.Load(),
			Result:       u.result.Load(),
			NAccepted:    u.nAccepted.Load(),
			NConnections: u.nConnections.Load(),
			ControlPID:   u.controlPid.Load(),
		}
		if u.controlActive {
			s.ControlCommand = u.control.id()
		}
		u.eps.Walk(func(addr string, p endpoint.Port) bool {
			if p.IsOpen() {
				s.Endpoints = append(s.Endpoints, EndpointSnapshot{
					Kind:    p.Kind(),
					Network: p.Network(),
					Tag:     p.ListenTag(),
					Address: addr,
					FD:      p.FD(),
				})
			}
			return true
		})
	})
	return s
}

// Restore applies a Snapshot taken before re-exec: counters, latched
// result, state, and every endpoint fd that survived the exec's
// dup/FD_CLOEXEC-clearing step. It does not rearm watches or timers; call
// Coldplug once every unit in the manager has been restored.
func (u *socketUnit) Restore(s Snapshot) error {
	var err error
	u.call(func() {
		u.state.Store(s.State)
		u.result.Store(s.Result)
		u.nAccepted.Store(s.NAccepted)
		u.nConnections.Store(s.NConnections)
		u.controlPid.Store(s.ControlPID)

		byAddr := map[string]int{}
		for _, e := range s.Endpoints {
			byAddr[e.Address] = e.FD
		}
		u.eps.Walk(func(addr string, p endpoint.Port) bool {
			if fd, ok := byAddr[addr]; ok {
				p.SetFD(fd)
			}
			return true
		})
	})
	return err
}

// Coldplug re-establishes everything Restore deliberately left out: the
// readiness watch if the restored state is Listening, the timeout timer
// if the restored state arms one, and the control-child watch if a
// control pid survived the re-exec.
func (u *socketUnit) Coldplug() error {
	var err error
	u.call(func() {
		s := u.state.Load()

		if endpointsOpenIn(s) {
			if oerr := u.eps.OpenAll(); oerr != nil {
				err = oerr
				return
			}
		}

		if s == StateListening {
			err = u.eps.WatchAll(u.col.Watcher, func(p endpoint.Port) {
				u.call(func() { u.handleReadable(p) })
			})
		}

		if timerArmedIn(s) {
			u.armTimer()
		}

		if pid := u.controlPid.Load(); pid > 0 && u.col.Watcher != nil {
			u.controlActive = true
			_ = u.col.Watcher.WatchPID(pid, func(es ExitStatus) {
				u.call(func() { u.finishControl(ExecCommand{Ignore: false}, es) })
			})
		}
	})
	return err
}
