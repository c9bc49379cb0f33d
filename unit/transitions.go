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
	"syscall"

	"github.com/sabouaram/sockunit/endpoint"

	liblog "github.com/nabbar/golib/logger"
)

// latch implements spec.md invariant 3: the first failing result wins.
// Success never overwrites a latched failure.
func (u *socketUnit) latch(res Result) {
	if res == ResultSuccess {
		return
	}
	if u.result.Load() == ResultSuccess {
		u.result.Store(res)
	}
}

// setStateRaw applies the bookkeeping every transition shares: unwatching
// on leaving Listening, closing endpoints on leaving an open state,
// disarming/rearming the timer, and emitting the active-state notification
// spec.md invariant 7 requires after every state change. It never opens
// endpoints: the StartChown path does that explicitly so it can react to a
// failure before committing to the new state's "open" invariant.
func (u *socketUnit) setStateRaw(s State) {
	old := u.state.Load()

	u.disarmTimer()

	if old == StateListening && s != StateListening {
		_ = u.eps.UnwatchAll(u.col.Watcher)
	}
	if endpointsOpenIn(old) && !endpointsOpenIn(s) {
		_ = u.eps.CloseAll()
	}

	u.state.Store(s)

	if timerArmedIn(s) {
		u.armTimer()
	}

	u.logger().Entry(liblog.InfoLevel, "socket unit changed state").
		FieldAdd("unit", u.name).
		FieldAdd("state", s.String()).
		FieldAdd("active", ActiveStateOf(s).String()).
		Log()
}

// handleStart is the "start request" trigger (spec.md section 4.C). Valid
// only from Dead/Failed.
func (u *socketUnit) handleStart() error {
	switch u.state.Load() {
	case StateDead, StateFailed:
	default:
		return ErrorAlreadyStarting.Error(nil)
	}
	u.result.Store(ResultSuccess)
	u.doStartPre()
	return nil
}

// handleStop is the "stop request" trigger (spec.md section 4.C).
func (u *socketUnit) handleStop() error {
	switch u.state.Load() {
	case StateListening, StateRunning:
		u.doStopPre(ResultSuccess)
	case StateStartPre, StateStartChown, StateStartPost:
		u.cancelControl()
		u.doStopPreSigterm(ResultSuccess)
	default:
		// already mid stop-path, or already Dead/Failed: nothing to do.
	}
	return nil
}

func (u *socketUnit) doStartPre() {
	u.setStateRaw(StateStartPre)
	if u.spawnExecStep(StateStartPre, ExecStartPre) {
		return
	}
	u.doStartChown()
}

func (u *socketUnit) doStartChown() {
	u.setStateRaw(StateStartChown)

	if err := u.eps.OpenAll(); err != nil {
		u.logger().Entry(liblog.ErrorLevel, "failed to open listen endpoints").
			FieldAdd("unit", u.name).ErrorAdd(true, err).Log()
		u.doStopPre(ResultFailureResources)
		return
	}

	if u.spawnChown() {
		return
	}
	u.doStartPost()
}

func (u *socketUnit) doStartPost() {
	u.setStateRaw(StateStartPost)
	if u.spawnExecStep(StateStartPost, ExecStartPost) {
		return
	}
	u.doListening()
}

func (u *socketUnit) doListening() {
	u.setStateRaw(StateListening)
	_ = u.eps.WatchAll(u.col.Watcher, func(p endpoint.Port) {
		u.call(func() { u.handleReadable(p) })
	})
}

func (u *socketUnit) doRunning() {
	u.setStateRaw(StateRunning)
}

func (u *socketUnit) doStopPre(res Result) {
	u.latch(res)
	u.setStateRaw(StateStopPre)
	if u.spawnExecStep(StateStopPre, ExecStopPre) {
		return
	}
	u.doStopPost(res)
}

func (u *socketUnit) doStopPreSigterm(res Result) {
	u.latch(res)
	u.setStateRaw(StateStopPreSigterm)
	u.sendSignal(syscall.SIGTERM, func() { u.doStopPost(res) })
}

func (u *socketUnit) doStopPreSigkill() {
	u.setStateRaw(StateStopPreSigkill)
	u.sendSignal(syscall.SIGKILL, func() { u.doStopPost(ResultFailureTimeout) })
}

func (u *socketUnit) doStopPost(res Result) {
	u.latch(res)
	u.setStateRaw(StateStopPost)
	if u.spawnExecStep(StateStopPost, ExecStopPost) {
		return
	}
	u.doFinalSigterm(res)
}

func (u *socketUnit) doFinalSigterm(res Result) {
	u.latch(res)
	u.setStateRaw(StateFinalSigterm)
	u.sendSignal(syscall.SIGTERM, func() { u.doDead(res) })
}

func (u *socketUnit) doFinalSigkill() {
	u.setStateRaw(StateFinalSigkill)
	u.sendSignal(syscall.SIGKILL, func() { u.doDead(ResultFailureTimeout) })
}

func (u *socketUnit) doDead(res Result) {
	u.latch(res)
	final := StateDead
	if u.result.Load() != ResultSuccess {
		final = StateFailed
	}
	u.setStateRaw(final)
	u.service = nil
}

// sendSignal implements the kill_context.kill half of the Stop*Sigterm and
// FinalSigterm rows (spec.md section 4.C): signal once, and if nothing was
// alive to signal proceed immediately; otherwise wait for the timer (armed
// by setStateRaw) to escalate or force progress.
func (u *socketUnit) sendSignal(sig syscall.Signal, onClean func()) {
	alive := 0
	if u.col.Kill != nil {
		alive, _ = u.col.Kill.Kill(u.controlPid.Load(), sig)
	}
	if alive == 0 {
		onClean()
	}
}
