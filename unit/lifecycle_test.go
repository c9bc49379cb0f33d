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

	libptc "github.com/nabbar/golib/network/protocol"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("socket unit lifecycle", func() {
	var (
		dir string
		cfg unit.Config
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "unit_lifecycle_*")
		Expect(err).ToNot(HaveOccurred())

		cfg = unit.DefaultConfig()
		cfg.Listen = []unit.EndpointSpec{{
			Kind:    endpoint.KindSocket,
			Network: libptc.NetworkUnix,
			Address: filepath.Join(dir, "lifecycle.sock"),
		}}
		cfg.ServiceName = "demo.service"
	})

	AfterEach(func() {
		_ = os.RemoveAll(dir)
	})

	It("walks start-pre -> start-chown -> start-post -> listening with no exec commands", func() {
		u, err := unit.New("lifecycle", cfg, unit.Collaborators{
			Manager: &fakeManager{},
			Spawner: &fakeSpawner{},
			Watcher: newFakeWatcher(),
			Binder:  &fakeBinder{},
			Kill:    &fakeKill{},
		})
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = u.Close() }()

		Expect(u.Start()).To(Succeed())
		Expect(u.State()).To(Equal(unit.StateListening))
		Expect(u.ActiveState()).To(Equal(unit.ActiveActive))
		Expect(u.Result()).To(Equal(unit.ResultSuccess))
	})

	It("enters Running only once the paired service reports running", func() {
		u, err := unit.New("lifecycle", cfg, unit.Collaborators{
			Manager: &fakeManager{},
			Spawner: &fakeSpawner{},
			Watcher: newFakeWatcher(),
			Binder:  &fakeBinder{},
			Kill:    &fakeKill{},
		})
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = u.Close() }()

		Expect(u.Start()).To(Succeed())
		Expect(u.State()).To(Equal(unit.StateListening))

		u.NotifyServiceRunning()
		Expect(u.State()).To(Equal(unit.StateRunning))
	})

	It("tears down to Dead on Stop when nothing is left alive to signal", func() {
		u, err := unit.New("lifecycle", cfg, unit.Collaborators{
			Manager: &fakeManager{},
			Spawner: &fakeSpawner{},
			Watcher: newFakeWatcher(),
			Binder:  &fakeBinder{},
			Kill:    &fakeKill{alive: 0},
		})
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = u.Close() }()

		Expect(u.Start()).To(Succeed())
		u.NotifyServiceRunning()
		Expect(u.State()).To(Equal(unit.StateRunning))

		Expect(u.Stop()).To(Succeed())
		Expect(u.State()).To(Equal(unit.StateDead))
		Expect(u.Result()).To(Equal(unit.ResultSuccess))
	})

	It("rejects Start while already active", func() {
		u, err := unit.New("lifecycle", cfg, unit.Collaborators{
			Manager: &fakeManager{},
			Spawner: &fakeSpawner{},
			Watcher: newFakeWatcher(),
			Binder:  &fakeBinder{},
			Kill:    &fakeKill{},
		})
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = u.Close() }()

		Expect(u.Start()).To(Succeed())
		Expect(u.Start()).To(HaveOccurred())
	})
})
