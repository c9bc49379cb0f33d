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

package unit_test

import (
	"os"
	"path/filepath"

	"github.com/sabouaram/sockunit/endpoint"
	"github.com/sabouaram/sockunit/unit"

	libdur "github.com/nabbar/golib/duration"
	libptc "github.com/nabbar/golib/network/protocol"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("timeout escalation", func() {
	var (
		dir string
		cfg unit.Config
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "unit_timeout_*")
		Expect(err).ToNot(HaveOccurred())

		cfg = unit.DefaultConfig()
		cfg.TimeoutSec = libdur.Seconds(30)
		cfg.Listen = []unit.EndpointSpec{{
			Kind:    endpoint.KindSocket,
			Network: libptc.NetworkUnix,
			Address: filepath.Join(dir, "timeout.sock"),
		}}
		cfg.ServiceName = "demo.service"
		cfg.Exec = map[unit.ExecStep][]unit.ExecCommand{
			unit.ExecStartPre: {{Argv: []string{"/bin/sleep-forever"}}},
		}
	})

	AfterEach(func() {
		_ = os.RemoveAll(dir)
	})

	It("arms a watchdog on entering a transient state and fails the unit when it fires", func() {
		w := newFakeWatcher()

		u, err := unit.New("timeout", cfg, unit.Collaborators{
			Manager: &fakeManager{},
			Spawner: &fakeSpawner{},
			Watcher: w,
			Binder:  &fakeBinder{},
			Kill:    &fakeKill{alive: 0},
		})
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = u.Close() }()

		Expect(u.Start()).To(Succeed())
		Expect(u.State()).To(Equal(unit.StateStartPre))

		deadline, armed := u.GetTimeout()
		Expect(armed).To(BeTrue())
		Expect(deadline).ToNot(BeZero())

		w.fireLastTimer()

		Expect(u.State()).To(Equal(unit.StateFailed))
		Expect(u.Result()).To(Equal(unit.ResultFailureTimeout))
	})
})
