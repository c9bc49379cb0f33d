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

package serialize

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sabouaram/sockunit/endpoint"
	"github.com/sabouaram/sockunit/unit"

	libptc "github.com/nabbar/golib/network/protocol"
)

// Line keys, as enumerated in spec.md section 4.F.
const (
	keyState          = "state"
	keyResult         = "result"
	keyNAccepted      = "n-accepted"
	keyControlPID     = "control-pid"
	keyControlCommand = "control-command"
	keyFIFO           = "fifo"
	keySpecial        = "special"
	keyMQueue         = "mqueue"
	keySocket         = "socket"
	keyNetlink        = "netlink"
)

var stateNames = map[unit.State]string{
	unit.StateDead:            "dead",
	unit.StateStartPre:        "start-pre",
	unit.StateStartChown:      "start-chown",
	unit.StateStartPost:       "start-post",
	unit.StateListening:       "listening",
	unit.StateRunning:         "running",
	unit.StateStopPre:         "stop-pre",
	unit.StateStopPreSigterm:  "stop-pre-sigterm",
	unit.StateStopPreSigkill:  "stop-pre-sigkill",
	unit.StateStopPost:        "stop-post",
	unit.StateFinalSigterm:    "final-sigterm",
	unit.StateFinalSigkill:    "final-sigkill",
	unit.StateFailed:          "failed",
}

var resultNames = map[unit.Result]string{
	unit.ResultSuccess:                "success",
	unit.ResultFailureResources:       "resources",
	unit.ResultFailureTimeout:         "timeout",
	unit.ResultFailureExitCode:        "exit-code",
	unit.ResultFailureSignal:          "signal",
	unit.ResultFailureCoreDump:        "core-dump",
	unit.ResultFailureServicePermanent: "service-failed-permanent",
}

func stateByName(name string) (unit.State, bool) {
	for s, n := range stateNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

func resultByName(name string) (unit.Result, bool) {
	for r, n := range resultNames {
		if n == name {
			return r, true
		}
	}
	return 0, false
}

// endpointKey returns the serializer key for one endpoint, and for
// KindSocket, whether it is a netlink endpoint (serialized under "netlink"
// rather than "socket").
func endpointKey(e unit.EndpointSnapshot) string {
	switch e.Kind {
	case endpoint.KindFIFO:
		return keyFIFO
	case endpoint.KindSpecial:
		return keySpecial
	case endpoint.KindMessageQueue:
		return keyMQueue
	default:
		if isNetlink(e) {
			return keyNetlink
		}
		return keySocket
	}
}

func isNetlink(e unit.EndpointSnapshot) bool {
	return e.Kind == endpoint.KindSocket && e.Network == libptc.NetworkEmpty
}

// Encode writes s as line-oriented key/value pairs (spec.md section 4.F),
// duplicating every owned endpoint fd into fdset so the values it writes
// remain valid descriptor numbers in the re-exec'd process image.
func Encode(w io.Writer, s unit.Snapshot, fdset *FDSet) error {
	bw := bufio.NewWriter(w)

	name, ok := stateNames[s.State]
	if !ok {
		return ErrorUnknownState.Error(nil)
	}
	if _, err := fmt.Fprintf(bw, "%s=%s\n", keyState, name); err != nil {
		return err
	}

	if s.Result != unit.ResultSuccess {
		rn, ok := resultNames[s.Result]
		if !ok {
			return ErrorUnknownResult.Error(nil)
		}
		if _, err := fmt.Fprintf(bw, "%s=%s\n", keyResult, rn); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(bw, "%s=%d\n", keyNAccepted, s.NAccepted); err != nil {
		return err
	}

	if s.ControlPID > 0 {
		if _, err := fmt.Fprintf(bw, "%s=%d\n", keyControlPID, s.ControlPID); err != nil {
			return err
		}
	}
	if s.ControlCommand != "" {
		if _, err := fmt.Fprintf(bw, "%s=%s\n", keyControlCommand, s.ControlCommand); err != nil {
			return err
		}
	}

	for _, e := range s.Endpoints {
		dup, err := fdset.Add(e.FD)
		if err != nil {
			return err
		}

		key := endpointKey(e)
		switch key {
		case keySocket:
			if _, err := fmt.Fprintf(bw, "%s=%d %s %s\n", key, dup, e.Network.String(), e.Address); err != nil {
				return err
			}
		default:
			if _, err := fmt.Fprintf(bw, "%s=%d %s\n", key, dup, e.Address); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// Decoded is what Decode restores from the line format Encode writes:
// everything but the endpoint fds in Snapshot, and every endpoint line,
// unresolved, in Unmatched. Resolve matches those lines against the
// reloaded endpoint set by address; what it cannot match is left for the
// caller, e.g. for DistributeFDs' descriptor sweep.
type Decoded struct {
	Snapshot  unit.Snapshot
	Unmatched []RawEndpoint
}

// RawEndpoint is one endpoint line that Decode could not resolve to a
// snapshot endpoint with a known Kind/Network (the decoder has no
// reloaded endpoint list to cross-reference); DistributeFDs resolves it
// against the caller's actual endpoint set.
type RawEndpoint struct {
	Key     string
	FD      int
	Address string
}

func Decode(r io.Reader) (Decoded, error) {
	var d Decoded
	sc := bufio.NewScanner(r)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			return d, ErrorMalformedLine.Error(nil)
		}
		key, value := line[:idx], line[idx+1:]

		switch key {
		case keyState:
			s, ok := stateByName(value)
			if !ok {
				return d, ErrorUnknownState.Error(nil)
			}
			d.Snapshot.State = s

		case keyResult:
			res, ok := resultByName(value)
			if !ok {
				return d, ErrorUnknownResult.Error(nil)
			}
			d.Snapshot.Result = res

		case keyNAccepted:
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return d, ErrorMalformedLine.Error(err)
			}
			d.Snapshot.NAccepted = n

		case keyControlPID:
			n, err := strconv.Atoi(value)
			if err != nil {
				return d, ErrorMalformedLine.Error(err)
			}
			d.Snapshot.ControlPID = n

		case keyControlCommand:
			d.Snapshot.ControlCommand = value

		case keyFIFO, keySpecial, keyMQueue, keyNetlink:
			fd, addr, err := splitFDAddress(value)
			if err != nil {
				return d, err
			}
			d.Unmatched = append(d.Unmatched, RawEndpoint{Key: key, FD: fd, Address: addr})

		case keySocket:
			fields := strings.SplitN(value, " ", 3)
			if len(fields) != 3 {
				return d, ErrorMalformedLine.Error(nil)
			}
			fd, err := strconv.Atoi(fields[0])
			if err != nil {
				return d, ErrorMalformedLine.Error(err)
			}
			d.Unmatched = append(d.Unmatched, RawEndpoint{Key: key, FD: fd, Address: fields[2]})

		default:
			// unknown key: skipped for backwards compatibility. Decode
			// has no logger and does not report the key to its caller.
		}
	}

	return d, sc.Err()
}

func splitFDAddress(value string) (int, string, error) {
	fields := strings.SplitN(value, " ", 2)
	if len(fields) != 2 {
		return 0, "", ErrorMalformedLine.Error(nil)
	}
	fd, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, "", ErrorMalformedLine.Error(err)
	}
	return fd, fields[1], nil
}
