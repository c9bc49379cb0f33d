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
	"fmt"
	"io"
	"time"

	"github.com/sabouaram/sockunit/endpoint"
	"github.com/sabouaram/sockunit/endpoint/set"

	libatm "github.com/nabbar/golib/atomic"
	liblog "github.com/nabbar/golib/logger"
	libptc "github.com/nabbar/golib/network/protocol"
)

// socketUnit is the Go rendering of spec.md's SocketUnit. Every field below
// is either an atomic.Value read by external callers (State, Result,
// CollectFDs, ...) or owned exclusively by the goroutine started in run():
// "the lock is the loop" (spec.md section 5).
type socketUnit struct {
	name string
	cfg  Config
	col  Collaborators
	eps  set.Set

	events chan func()
	done   chan struct{}

	state        libatm.Value[State]
	result       libatm.Value[Result]
	nAccepted    libatm.Value[uint64]
	nConnections libatm.Value[int]
	controlPid   libatm.Value[int]

	// loop-owned fields: touched only from inside run()/call().
	control       controlJob
	controlActive bool
	service       ServiceRef

	timerCancel  func()
	timerActive  bool
	timerGen     uint64
	timerDead    time.Time
}

// controlJob records which control child is currently in flight and why,
// so its exit can be dispatched back to the right state-table row (spec.md
// section 4.C/4.D).
type controlJob struct {
	state    State
	step     ExecStep
	isChown  bool
	cmdIndex int
}

// New builds a Unit from cfg and wires col as its collaborators. The
// returned Unit starts in StateDead; call Start to enter the start path.
func New(name string, cfg Config, col Collaborators) (Unit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	u := &socketUnit{
		name:   name,
		cfg:    cfg,
		col:    col,
		eps:    set.New(context.Background()),
		events: make(chan func(), 64),
		done:   make(chan struct{}),
	}
	u.controlPid.Store(0)
	u.nConnections.Store(0)

	for _, spec := range cfg.Listen {
		u.eps.Add(u.buildEndpoint(spec))
	}

	go u.run()
	return u, nil
}

func (u *socketUnit) buildEndpoint(spec EndpointSpec) endpoint.Port {
	log := endpoint.Logging{Log: u.col.Log}
	switch spec.Kind {
	case endpoint.KindFIFO:
		return endpoint.NewFIFO(spec.Address, u.cfg.Options, log)
	case endpoint.KindSpecial:
		return endpoint.NewSpecial(spec.Address, u.cfg.Options, log)
	case endpoint.KindMessageQueue:
		return endpoint.NewMessageQueue(spec.Address, u.cfg.Options, log)
	default:
		switch spec.Network {
		case libptc.NetworkIP:
			return endpoint.NewRaw(spec.Address, spec.IPProto, u.cfg.Options, log)
		case libptc.NetworkEmpty:
			return endpoint.NewNetlink(spec.NLFamily, spec.NLGroup, u.cfg.Options, log)
		default:
			if spec.Network == libptc.NetworkUnix && spec.IPProto == seqPacketMarker {
				return endpoint.NewSeqPacket(spec.Address, u.cfg.Options, log)
			}
			return endpoint.NewSocket(spec.Network, spec.Address, u.cfg.Options, log)
		}
	}
}

// seqPacketMarker is a sentinel IPProto value used to select SOCK_SEQPACKET
// out of an AF_UNIX EndpointSpec without growing the Kind enum: spec.md
// treats seqpacket as one of the Socket-kind address families, not a
// separate kind.
const seqPacketMarker = -1

func (u *socketUnit) logger() liblog.Logger {
	if u.col.Log != nil {
		if lg := u.col.Log(); lg != nil {
			return lg
		}
	}
	return liblog.New(context.Background())
}

// run is the unit's single event-loop goroutine (spec.md section 5).
func (u *socketUnit) run() {
	for {
		select {
		case fn := <-u.events:
			fn()
		case <-u.done:
			return
		}
	}
}

// call enqueues fn onto the event loop and blocks until it has completed,
// giving external callers synchronous semantics while every mutation still
// happens on the single loop goroutine.
func (u *socketUnit) call(fn func()) {
	reply := make(chan struct{})
	select {
	case u.events <- func() { fn(); close(reply) }:
		<-reply
	case <-u.done:
	}
}

func (u *socketUnit) Name() string { return u.name }

func (u *socketUnit) Start() error {
	var err error
	u.call(func() { err = u.handleStart() })
	return err
}

func (u *socketUnit) Stop() error {
	var err error
	u.call(func() { err = u.handleStop() })
	return err
}

func (u *socketUnit) State() State            { return u.state.Load() }
func (u *socketUnit) ActiveState() ActiveState { return ActiveStateOf(u.state.Load()) }
func (u *socketUnit) Result() Result          { return u.result.Load() }

func (u *socketUnit) CollectFDs() []int {
	var fds []int
	u.eps.Walk(func(_ string, p endpoint.Port) bool {
		if p.IsOpen() {
			fds = append(fds, p.FD())
		}
		return true
	})
	return fds
}

func (u *socketUnit) ConnectionUnref() {
	u.call(func() {
		cur := u.nConnections.Load()
		if cur <= 0 {
			return
		}
		u.nConnections.Store(cur - 1)
	})
}

func (u *socketUnit) GetTimeout() (time.Time, bool) {
	var dl time.Time
	var armed bool
	u.call(func() {
		dl = u.timerDead
		armed = u.timerActive
	})
	return dl, armed
}

func (u *socketUnit) Close() error {
	var err error
	u.call(func() {
		err = u.eps.CloseAll()
	})
	close(u.done)
	return err
}

func (u *socketUnit) Dump(w io.Writer) error {
	var err error
	u.call(func() { err = u.dumpLocked(w) })
	return err
}

func (u *socketUnit) dumpLocked(w io.Writer) error {
	var err error
	write := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}
	o := u.cfg.Options

	write("SocketState=%s\n", u.state.Load())
	write("Result=%s\n", u.result.Load())
	write("BindIPv6Only=%v\n", o.BindIPv6Only)
	write("Backlog=%d\n", o.Backlog)
	write("SocketMode=%04o\n", o.SocketMode)
	write("DirectoryMode=%04o\n", o.DirectoryMode)
	write("KeepAlive=%v\n", o.KeepAlive)
	write("FreeBind=%v\n", o.FreeBind)
	write("Transparent=%v\n", o.Transparent)
	write("Broadcast=%v\n", o.Broadcast)
	write("PassCredentials=%v\n", o.PassCredential)
	write("PassSecurity=%v\n", o.PassSecurity)
	write("TCPCongestion=%s\n", o.TCPCongestion)
	if u.controlPid.Load() > 0 {
		write("ControlPID=%d\n", u.controlPid.Load())
	}
	write("BindToDevice=%s\n", o.BindToDevice)
	if u.cfg.Accept {
		write("Accepted=%d\n", u.nAccepted.Load())
		write("NConnections=%d\n", u.nConnections.Load())
		write("MaxConnections=%d\n", u.cfg.MaxConnections)
	}
	if o.Priority >= 0 {
		write("Priority=%d\n", o.Priority)
	}
	if o.IPTOS >= 0 {
		write("IPTOS=%d\n", o.IPTOS)
	}
	if o.IPTTL >= 0 {
		write("IPTTL=%d\n", o.IPTTL)
	}
	if o.Mark >= 0 {
		write("Mark=%d\n", o.Mark)
	}
	if o.MACLabel != "" {
		write("SmackLabel=%s\n", o.MACLabel)
	}
	if o.MACLabelIn != "" {
		write("SmackLabelIPIn=%s\n", o.MACLabelIn)
	}
	if o.MACLabelOut != "" {
		write("SmackLabelIPOut=%s\n", o.MACLabelOut)
	}
	if o.OwnerUser != "" {
		write("OwnerUser=%s\n", o.OwnerUser)
	}
	if o.OwnerGroup != "" {
		write("OwnerGroup=%s\n", o.OwnerGroup)
	}

	u.eps.Walk(func(addr string, p endpoint.Port) bool {
		write("%s=%s\n", p.ListenTag(), addr)
		return true
	})

	return err
}
