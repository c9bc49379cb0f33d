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

	liberr "github.com/nabbar/golib/errors"
	libdur "github.com/nabbar/golib/duration"
	libptc "github.com/nabbar/golib/network/protocol"
)

// ExecStep names one of the exec-command slots a socket unit may carry
// (spec.md section 3, exec commands map). StartChown is synthetic and has
// no slot here: it is never user-supplied, see endpoint.Options owner
// fields and Config.needsChown.
type ExecStep uint8

const (
	ExecStartPre ExecStep = iota
	ExecStartPost
	ExecStopPre
	ExecStopPost
)

func (e ExecStep) String() string {
	switch e {
	case ExecStartPre:
		return "start-pre"
	case ExecStartPost:
		return "start-post"
	case ExecStopPre:
		return "stop-pre"
	case ExecStopPost:
		return "stop-post"
	default:
		return "unknown"
	}
}

// ExecCommand is one argv in an ExecStep's ordered list. Ignore mirrors the
// original's "-" prefix convention: a failing command whose Ignore is set
// never turns into a SocketResult failure (spec.md section 4.C, control
// child exit semantics).
type ExecCommand struct {
	Argv   []string
	Ignore bool
}

// KillMode mirrors the subset of kill_context relevant to this unit:
// whether the kill is delivered to a control-group or to a tracked pid
// directly. Control-group kill is the only mode compatible with a
// configured PAMName (spec.md section 4.G).
type KillMode uint8

const (
	KillModeControlGroup KillMode = iota
	KillModeProcess
	KillModeNone
)

// EndpointSpec describes one listen endpoint before it is materialised
// into an endpoint.Port by New (spec.md section 2: "endpoints materialised
// lazily at open").
type EndpointSpec struct {
	Kind    endpoint.Kind
	Network libptc.NetworkProtocol // meaningful for KindSocket only
	Address string                 // host:port, or filesystem path
	IPProto int                    // KindSocket + NetworkIP (raw) only
	NLGroup uint32                 // KindSocket + netlink only
	NLFamily int
}

// connectionOriented reports whether accept(2) is meaningful on this
// endpoint, used by the verifier's accept-mode rule (spec.md section 4.G).
func (e EndpointSpec) connectionOriented() bool {
	if e.Kind != endpoint.KindSocket {
		return false
	}
	switch e.Network {
	case libptc.NetworkUDP, libptc.NetworkUDP4, libptc.NetworkUDP6, libptc.NetworkUnixGram:
		return false
	default:
		return true
	}
}

// ConnectionOriented is the exported form of connectionOriented, used by
// the verify package's accept-mode rule (spec.md section 4.G), which
// cannot reach into this package's unexported predicate.
func (e EndpointSpec) ConnectionOriented() bool {
	return e.connectionOriented()
}

// HasFilesystemPath reports whether Address names a filesystem path
// rather than a network address, used by the verifier's
// RequiresMountsFor linking (spec.md section 4.G).
func (e EndpointSpec) HasFilesystemPath() bool {
	switch e.Kind {
	case endpoint.KindFIFO, endpoint.KindSpecial, endpoint.KindMessageQueue:
		return true
	case endpoint.KindSocket:
		switch e.Network {
		case libptc.NetworkUnix, libptc.NetworkUnixGram:
			return true
		}
	}
	return false
}

// Config is the immutable-after-load configuration of a socket unit
// (spec.md section 3). It mirrors httpserver.Config's shape: a plain
// struct with a Validate method, passed by value into New.
type Config struct {
	Listen []EndpointSpec

	Options endpoint.Options

	Accept         bool
	MaxConnections int
	TimeoutSec     libdur.Duration

	Exec map[ExecStep][]ExecCommand

	// ServiceName is the paired service unit name. For accept-mode units
	// this is the instantiation prefix; for non-accepting units it is the
	// single service started on first activity (spec.md section 4.E).
	ServiceName string

	KillMode KillMode
	PAMName  string

	// SystemMode selects the implicit After=sysinit.target/Requires=
	// dependency the verifier adds (spec.md section 4.G); false means
	// user-mode, where that pair is omitted.
	SystemMode bool

	SendSigkill bool
}

// DefaultConfig returns a Config with the defaults named in spec.md
// section 3: MaxConnections=64, accept=false, options at their own
// defaults (endpoint.DefaultOptions).
func DefaultConfig() Config {
	return Config{
		Options:        endpoint.DefaultOptions(),
		MaxConnections: 64,
		TimeoutSec:     libdur.Seconds(90),
		Exec:           map[ExecStep][]ExecCommand{},
		KillMode:       KillModeControlGroup,
		SendSigkill:    true,
	}
}

// needsChown mirrors endpoint.needsChown's guard on the config's owner
// fields: a synthetic chown helper is only spawned when an owner was
// configured (spec.md section 4.C, StartChown).
func (c Config) needsChown() bool {
	return c.Options.OwnerUser != "" || c.Options.OwnerGroup != ""
}

// Validate performs the ambient, structural checks a config layer in this
// lineage always carries (httpserver.Config.Validate's role): it does not
// duplicate the semantic rejection rules of spec.md section 4.G, which
// live in the verify package and need cross-cutting knowledge (implicit
// dependencies) this package does not own.
func (c Config) Validate() liberr.Error {
	if len(c.Listen) == 0 {
		return ErrorParamsInvalid.Error(nil)
	}
	if c.Accept && c.MaxConnections <= 0 {
		return ErrorMaxConnectionsInvalid.Error(nil)
	}
	for _, e := range c.Listen {
		if e.Address == "" && e.Kind != endpoint.KindSocket {
			return ErrorParamsInvalid.Error(nil)
		}
	}
	return nil
}
