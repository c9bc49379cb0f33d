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

import "time"

// armTimer starts (or restarts) the per-state watchdog using
// cfg.TimeoutSec, tagged with a generation counter so a callback racing
// against a state change it no longer applies to is dropped (spec.md
// section 4.C, Timeout trigger).
func (u *socketUnit) armTimer() {
	u.disarmTimer()

	d := u.cfg.TimeoutSec.Time()
	if d <= 0 {
		return
	}
	if u.col.Watcher == nil {
		return
	}

	u.timerGen++
	gen := u.timerGen
	u.timerDead = timeNow().Add(d)
	u.timerActive = true
	u.timerCancel = u.col.Watcher.WatchTimer(d, func() {
		u.call(func() { u.onTimerFire(gen) })
	})
}

func (u *socketUnit) disarmTimer() {
	if u.timerCancel != nil {
		u.timerCancel()
		u.timerCancel = nil
	}
	u.timerActive = false
	u.timerDead = time.Time{}
}

// onTimerFire is the Timeout trigger (spec.md section 4.C). A stale fire
// (gen no longer current, because the state already moved on) is ignored.
func (u *socketUnit) onTimerFire(gen uint64) {
	if !u.timerActive || gen != u.timerGen {
		return
	}
	u.dispatchTimeout(u.state.Load())
}

// dispatchTimeout is spec.md section 4.C's timeout dispatch table.
func (u *socketUnit) dispatchTimeout(s State) {
	switch s {
	case StateStartPre:
		u.cancelControl()
		u.doFinalSigterm(ResultFailureTimeout)
	case StateStartChown, StateStartPost:
		u.cancelControl()
		u.doStopPre(ResultFailureTimeout)
	case StateRunning:
		u.doStopPreSigterm(ResultFailureTimeout)
	case StateStopPre:
		u.cancelControl()
		u.doStopPreSigterm(ResultFailureTimeout)
	case StateStopPreSigterm:
		if u.cfg.SendSigkill {
			u.doStopPreSigkill()
		} else {
			u.doStopPost(ResultFailureTimeout)
		}
	case StateStopPreSigkill:
		u.doStopPost(ResultFailureTimeout)
	case StateStopPost:
		u.cancelControl()
		u.doFinalSigterm(ResultFailureTimeout)
	case StateFinalSigterm:
		if u.cfg.SendSigkill {
			u.doFinalSigkill()
		} else {
			u.doDead(ResultFailureTimeout)
		}
	case StateFinalSigkill:
		u.doDead(ResultFailureTimeout)
	}
}

// timeNow is a seam over time.Now so tests can stub the clock without the
// package reaching for a heavier time-source abstraction the teacher
// doesn't use elsewhere.
var timeNow = time.Now
