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

package serialize_test

import (
	"bytes"
	"os"

	"github.com/sabouaram/sockunit/endpoint"
	"github.com/sabouaram/sockunit/serialize"
	"github.com/sabouaram/sockunit/unit"

	libptc "github.com/nabbar/golib/network/protocol"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Encode/Decode round trip", func() {
	It("is the identity on state, result, counters and endpoint addresses", func() {
		r, w, err := os.Pipe()
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = r.Close(); _ = w.Close() }()

		snap := unit.Snapshot{
			Name:           "demo",
			State:          unit.StateListening,
			Result:         unit.ResultSuccess,
			NAccepted:      7,
			NConnections:   1,
			ControlPID:     0,
			ControlCommand: "",
			Endpoints: []unit.EndpointSnapshot{
				{
					Kind:    endpoint.KindSocket,
					Network: libptc.NetworkUnix,
					Tag:     "ListenStream",
					Address: "/run/demo.sock",
					FD:      int(r.Fd()),
				},
			},
		}

		fdset := serialize.NewFDSet()
		defer fdset.CloseAll()

		var buf bytes.Buffer
		Expect(serialize.Encode(&buf, snap, fdset)).To(Succeed())
		Expect(fdset.Fds()).To(HaveLen(1))

		decoded, err := serialize.Decode(&buf)
		Expect(err).ToNot(HaveOccurred())

		Expect(decoded.Snapshot.State).To(Equal(unit.StateListening))
		Expect(decoded.Snapshot.Result).To(Equal(unit.ResultSuccess))
		Expect(decoded.Snapshot.NAccepted).To(Equal(uint64(7)))
		Expect(decoded.Snapshot.ControlPID).To(Equal(0))
		Expect(decoded.Unmatched).To(HaveLen(1))
		Expect(decoded.Unmatched[0].Key).To(Equal("socket"))
		Expect(decoded.Unmatched[0].Address).To(Equal("/run/demo.sock"))
		Expect(decoded.Unmatched[0].FD).To(Equal(fdset.Fds()[0]))
	})

	It("skips the result line for Success and restores it back to Success", func() {
		var buf bytes.Buffer
		snap := unit.Snapshot{State: unit.StateDead, Result: unit.ResultSuccess}
		Expect(serialize.Encode(&buf, snap, serialize.NewFDSet())).To(Succeed())
		Expect(buf.String()).ToNot(ContainSubstring("result="))

		decoded, err := serialize.Decode(&buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(decoded.Snapshot.Result).To(Equal(unit.ResultSuccess))
	})

	It("round-trips a failed result and a control pid", func() {
		var buf bytes.Buffer
		snap := unit.Snapshot{
			State:          unit.StateFailed,
			Result:         unit.ResultFailureTimeout,
			ControlPID:     4242,
			ControlCommand: "start-pre:0",
		}
		Expect(serialize.Encode(&buf, snap, serialize.NewFDSet())).To(Succeed())

		decoded, err := serialize.Decode(&buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(decoded.Snapshot.State).To(Equal(unit.StateFailed))
		Expect(decoded.Snapshot.Result).To(Equal(unit.ResultFailureTimeout))
		Expect(decoded.Snapshot.ControlPID).To(Equal(4242))
		Expect(decoded.Snapshot.ControlCommand).To(Equal("start-pre:0"))
	})

	It("rejects a line with no '=' separator", func() {
		_, err := serialize.Decode(bytes.NewBufferString("garbage line\n"))
		Expect(err).To(HaveOccurred())
	})

	It("ignores unknown keys for forward compatibility", func() {
		decoded, err := serialize.Decode(bytes.NewBufferString("state=dead\nfuture-key=whatever\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(decoded.Snapshot.State).To(Equal(unit.StateDead))
	})
})

var _ = Describe("FDSet", func() {
	It("duplicates fds and clears their close-on-exec flag", func() {
		r, w, err := os.Pipe()
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = r.Close(); _ = w.Close() }()

		s := serialize.NewFDSet()
		dup, err := s.Add(int(r.Fd()))
		Expect(err).ToNot(HaveOccurred())
		Expect(dup).ToNot(Equal(int(r.Fd())))
		Expect(s.Fds()).To(ConsistOf(dup))

		s.CloseAll()
		Expect(s.Fds()).To(BeEmpty())
	})
})
