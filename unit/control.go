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

	"github.com/sabouaram/sockunit/endpoint"

	liblog "github.com/nabbar/golib/logger"
)

// The control-child supervisor (spec.md section 4.D) is the small
// Idle -> Running(cmd, pid) -> Exited(result) FSM described in spec.md
// section 9: socketUnit only ever consults whether a control child is in
// flight (controlActive) or has just exited (the onControlExit callback);
// any in-flight work means "no new step until exit".

// id is the textual control-command identifier the serializer persists
// (spec.md section 4.F, "control-command").
func (j controlJob) id() string {
	if j.isChown {
		return "chown"
	}
	return fmt.Sprintf("%s:%d", j.step, j.cmdIndex)
}

// spawnExecStep spawns the first command of cfg.Exec[step], if any, and
// returns true if a control child was started (the caller must not
// transition further until it exits). Returns false if the step has no
// commands, meaning the caller should transition directly.
func (u *socketUnit) spawnExecStep(state State, step ExecStep) bool {
	cmds := u.cfg.Exec[step]
	if len(cmds) == 0 {
		return false
	}
	u.control = controlJob{state: state, step: step, cmdIndex: 0}
	u.spawnCommand(cmds[0])
	return true
}

func (u *socketUnit) spawnCommand(cmd ExecCommand) {
	if u.col.Spawner == nil {
		u.onControlExit(ResultFailureResources)
		return
	}

	pid, wait, err := u.col.Spawner.Spawn(context.Background(), cmd.Argv, nil)
	if err != nil {
		u.logger().Entry(liblog.ErrorLevel, "failed to spawn control command").
			FieldAdd("unit", u.name).ErrorAdd(true, err).Log()
		res := ResultFailureResources
		if cmd.Ignore {
			res = ResultSuccess
		}
		u.onControlExit(res)
		return
	}

	u.controlPid.Store(pid)
	u.controlActive = true

	// The Spawner's wait channel is the single completion source for this
	// child: spec.md section 6 notes a real manager wires WatchPID to the
	// same SIGCHLD source the wait channel drains, so registering both here
	// would let a stale WatchPID delivery race a later command's finishControl.
	go func() {
		es := <-wait
		u.call(func() { u.finishControl(cmd, es) })
	}()
}

// finishControl is the single completion path for a command's exit,
// whether delivered through Watcher.WatchPID or the Spawner's own wait
// channel (spec.md section 6 lists both collaborators; a real manager
// wires WatchPID to the same SIGCHLD source the wait channel drains).
func (u *socketUnit) finishControl(cmd ExecCommand, es ExitStatus) {
	if !u.controlActive {
		return
	}
	res := resultFromExit(es)
	if cmd.Ignore {
		res = ResultSuccess
	}
	u.onControlExit(res)
}

// spawnChown spawns the synthetic StartChown helper (spec.md section 4.D):
// it is never user-supplied and has no exec-command slot. It resolves and
// applies OwnerUser/OwnerGroup to every path-bearing endpoint, out of line
// from the event loop, and reports back through the normal control-exit
// path.
func (u *socketUnit) spawnChown() bool {
	if !u.cfg.needsChown() {
		return false
	}

	u.control = controlJob{state: StateStartChown, isChown: true}
	u.controlActive = true

	go func() {
		var firstErr error
		u.eps.Walk(func(addr string, p endpoint.Port) bool {
			if p.Kind() == endpoint.KindSocket || p.Kind() == endpoint.KindFIFO {
				if err := endpoint.ChownPath(addr, u.cfg.Options); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			return true
		})

		res := ResultSuccess
		if firstErr != nil {
			res = ResultFailureResources
		}
		u.call(func() { u.onControlExit(res) })
	}()

	return true
}

// cancelControl detaches the in-flight control child's watch and clears
// its recorded pid (spec.md invariant 1: control_pid>0 iff a watch is
// registered). It does not signal the child; callers that need to abort a
// live helper do so through sendSignal/kill_context.
func (u *socketUnit) cancelControl() {
	if u.controlActive {
		if u.col.Watcher != nil {
			u.col.Watcher.UnwatchPID(u.controlPid.Load())
		}
	}
	u.controlActive = false
	u.controlPid.Store(0)
}

// onControlExit is the control-child-exit trigger (spec.md section 4.C):
// it advances to the next command in the current exec step on Success, or
// dispatches to the next state using the "dying state" table.
func (u *socketUnit) onControlExit(res Result) {
	job := u.control
	u.cancelControl()

	if job.isChown {
		u.dispatchControlResult(job.state, res)
		return
	}

	if res == ResultSuccess {
		job.cmdIndex++
		cmds := u.cfg.Exec[job.step]
		if job.cmdIndex < len(cmds) {
			u.control = job
			u.spawnCommand(cmds[job.cmdIndex])
			return
		}
	}

	u.dispatchControlResult(job.state, res)
}

// dispatchControlResult is spec.md section 4.C's "Dying state" table.
func (u *socketUnit) dispatchControlResult(state State, res Result) {
	switch state {
	case StateStartPre:
		if res == ResultSuccess {
			u.doStartChown()
		} else {
			u.doFinalSigterm(res)
		}
	case StateStartChown:
		if res == ResultSuccess {
			u.doStartPost()
		} else {
			u.doStopPre(res)
		}
	case StateStartPost:
		if res == ResultSuccess {
			u.doListening()
		} else {
			u.doStopPre(res)
		}
	case StateStopPre, StateStopPreSigterm, StateStopPreSigkill:
		u.doStopPost(res)
	case StateStopPost, StateFinalSigterm, StateFinalSigkill:
		u.doDead(res)
	}
}

// resultFromExit classifies an ExitStatus into a SocketResult (spec.md
// section 4.C, "Control-child exit semantics").
func resultFromExit(es ExitStatus) Result {
	if es.Signaled {
		if es.CoreDumped {
			return ResultFailureCoreDump
		}
		return ResultFailureSignal
	}
	if es.Exited {
		if es.ExitCode == 0 {
			return ResultSuccess
		}
		return ResultFailureExitCode
	}
	return ResultFailureResources
}
