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
	"net"
	"os"
	"path/filepath"

	"github.com/sabouaram/sockunit/endpoint"
	"github.com/sabouaram/sockunit/unit"

	libptc "github.com/nabbar/golib/network/protocol"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("accept-mode activation", func() {
	var (
		dir  string
		addr string
		cfg  unit.Config
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "unit_activation_*")
		Expect(err).ToNot(HaveOccurred())
		addr = filepath.Join(dir, "accept.sock")

		cfg = unit.DefaultConfig()
		cfg.Listen = []unit.EndpointSpec{{
			Kind:    endpoint.KindSocket,
			Network: libptc.NetworkUnix,
			Address: addr,
		}}
		cfg.Accept = true
		cfg.MaxConnections = 1
		cfg.ServiceName = "demo@.service"
	})

	AfterEach(func() {
		_ = os.RemoveAll(dir)
	})

	It("binds exactly one accepted connection to a new service instance and drops the rest", func() {
		manager := &fakeManager{}
		binder := &fakeBinder{}
		w := newFakeWatcher()

		u, err := unit.New("activation", cfg, unit.Collaborators{
			Manager: manager,
			Spawner: &fakeSpawner{},
			Watcher: w,
			Binder:  binder,
			Kill:    &fakeKill{},
		})
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = u.Close() }()

		Expect(u.Start()).To(Succeed())
		Expect(u.State()).To(Equal(unit.StateListening))

		c1, err := net.Dial("unix", addr)
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = c1.Close() }()

		w.fireAny()
		Expect(binder.calls).To(HaveLen(1))

		c2, err := net.Dial("unix", addr)
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = c2.Close() }()

		w.fireAny()
		Expect(binder.calls).To(HaveLen(1))
	})
})
