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

// State is the socket unit's lifecycle state (spec.md section 3,
// SocketState).
type State uint8

const (
	StateDead State = iota
	StateStartPre
	StateStartChown
	StateStartPost
	StateListening
	StateRunning
	StateStopPre
	StateStopPreSigterm
	StateStopPreSigkill
	StateStopPost
	StateFinalSigterm
	StateFinalSigkill
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDead:
		return "dead"
	case StateStartPre:
		return "start-pre"
	case StateStartChown:
		return "start-chown"
	case StateStartPost:
		return "start-post"
	case StateListening:
		return "listening"
	case StateRunning:
		return "running"
	case StateStopPre:
		return "stop-pre"
	case StateStopPreSigterm:
		return "stop-pre-sigterm"
	case StateStopPreSigkill:
		return "stop-pre-sigkill"
	case StateStopPost:
		return "stop-post"
	case StateFinalSigterm:
		return "final-sigterm"
	case StateFinalSigkill:
		return "final-sigkill"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ActiveState is the projection exposed to the surrounding supervisor
// (spec.md section 3, Active-state projection).
type ActiveState uint8

const (
	ActiveInactive ActiveState = iota
	ActiveActivating
	ActiveActive
	ActiveDeactivating
	ActiveFailed
)

func (a ActiveState) String() string {
	switch a {
	case ActiveInactive:
		return "inactive"
	case ActiveActivating:
		return "activating"
	case ActiveActive:
		return "active"
	case ActiveDeactivating:
		return "deactivating"
	case ActiveFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ActiveStateOf implements state_translation_table from the original
// source: the table reproduced in spec.md section 3.
func ActiveStateOf(s State) ActiveState {
	switch s {
	case StateDead:
		return ActiveInactive
	case StateStartPre, StateStartChown, StateStartPost:
		return ActiveActivating
	case StateListening, StateRunning:
		return ActiveActive
	case StateStopPre, StateStopPreSigterm, StateStopPreSigkill, StateStopPost, StateFinalSigterm, StateFinalSigkill:
		return ActiveDeactivating
	case StateFailed:
		return ActiveFailed
	default:
		return ActiveInactive
	}
}

// endpointsOpenIn is spec.md invariant 3: the states in which endpoints are
// open (and, for Listening, watched).
func endpointsOpenIn(s State) bool {
	switch s {
	case StateStartChown, StateStartPost, StateListening, StateRunning,
		StateStopPre, StateStopPreSigterm, StateStopPreSigkill:
		return true
	default:
		return false
	}
}

// timerArmedIn is spec.md invariant 5: every transient state other than
// Listening/Running arms the timeout timer.
func timerArmedIn(s State) bool {
	switch s {
	case StateStartPre, StateStartChown, StateStartPost,
		StateStopPre, StateStopPreSigterm, StateStopPreSigkill,
		StateStopPost, StateFinalSigterm, StateFinalSigkill:
		return true
	default:
		return false
	}
}

// Result is the socket unit's latched outcome (spec.md section 3,
// SocketResult).
type Result uint8

const (
	ResultSuccess Result = iota
	ResultFailureResources
	ResultFailureTimeout
	ResultFailureExitCode
	ResultFailureSignal
	ResultFailureCoreDump
	ResultFailureServicePermanent
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultFailureResources:
		return "resources"
	case ResultFailureTimeout:
		return "timeout"
	case ResultFailureExitCode:
		return "exit-code"
	case ResultFailureSignal:
		return "signal"
	case ResultFailureCoreDump:
		return "core-dump"
	case ResultFailureServicePermanent:
		return "service-failed-permanent"
	default:
		return "unknown"
	}
}
