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
	"errors"
	"os"
	"path/filepath"

	"github.com/sabouaram/sockunit/endpoint"
	"github.com/sabouaram/sockunit/unit"

	libptc "github.com/nabbar/golib/network/protocol"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("control-child dispatch", func() {
	var (
		dir string
		cfg unit.Config
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "unit_control_*")
		Expect(err).ToNot(HaveOccurred())

		cfg = unit.DefaultConfig()
		cfg.Listen = []unit.EndpointSpec{{
			Kind:    endpoint.KindSocket,
			Network: libptc.NetworkUnix,
			Address: filepath.Join(dir, "control.sock"),
		}}
		cfg.ServiceName = "demo.service"
	})

	AfterEach(func() {
		_ = os.RemoveAll(dir)
	})

	It("advances to listening once an ExecStartPre command exits zero", func() {
		cfg.Exec = map[unit.ExecStep][]unit.ExecCommand{
			unit.ExecStartPre: {{Argv: []string{"/bin/true"}}},
		}
		spawner := &fakeSpawner{}

		u, err := unit.New("control", cfg, unit.Collaborators{
			Manager: &fakeManager{},
			Spawner: spawner,
			Watcher: newFakeWatcher(),
			Binder:  &fakeBinder{},
			Kill:    &fakeKill{},
		})
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = u.Close() }()

		Expect(u.Start()).To(Succeed())
		Expect(u.State()).To(Equal(unit.StateStartPre))

		spawner.finish(0, unit.ExitStatus{Exited: true, ExitCode: 0})
		Eventually(u.State).Should(Equal(unit.StateListening))
	})

	It("fails the unit when an ExecStartPre command exits non-zero", func() {
		cfg.Exec = map[unit.ExecStep][]unit.ExecCommand{
			unit.ExecStartPre: {{Argv: []string{"/bin/false"}}},
		}
		spawner := &fakeSpawner{}

		u, err := unit.New("control", cfg, unit.Collaborators{
			Manager: &fakeManager{},
			Spawner: spawner,
			Watcher: newFakeWatcher(),
			Binder:  &fakeBinder{},
			Kill:    &fakeKill{alive: 0},
		})
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = u.Close() }()

		Expect(u.Start()).To(Succeed())
		spawner.finish(0, unit.ExitStatus{Exited: true, ExitCode: 1})

		Eventually(u.State).Should(Equal(unit.StateFailed))
		Expect(u.Result()).To(Equal(unit.ResultFailureExitCode))
	})

	It("latches ResultFailureResources when the control child cannot be spawned", func() {
		cfg.Exec = map[unit.ExecStep][]unit.ExecCommand{
			unit.ExecStartPre: {{Argv: []string{"/does/not/matter"}}},
		}

		u, err := unit.New("control", cfg, unit.Collaborators{
			Manager: &fakeManager{},
			Spawner: &fakeSpawner{spawnErr: errors.New("fork failed")},
			Watcher: newFakeWatcher(),
			Binder:  &fakeBinder{},
			Kill:    &fakeKill{alive: 0},
		})
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = u.Close() }()

		Expect(u.Start()).To(Succeed())
		Expect(u.State()).To(Equal(unit.StateFailed))
		Expect(u.Result()).To(Equal(unit.ResultFailureResources))
	})

	It("ignores a failing command flagged Ignore", func() {
		cfg.Exec = map[unit.ExecStep][]unit.ExecCommand{
			unit.ExecStartPre: {{Argv: []string{"/bin/false"}, Ignore: true}},
		}
		spawner := &fakeSpawner{}

		u, err := unit.New("control", cfg, unit.Collaborators{
			Manager: &fakeManager{},
			Spawner: spawner,
			Watcher: newFakeWatcher(),
			Binder:  &fakeBinder{},
			Kill:    &fakeKill{},
		})
		Expect(err).ToNot(HaveOccurred())
		defer func() { _ = u.Close() }()

		Expect(u.Start()).To(Succeed())
		spawner.finish(0, unit.ExitStatus{Exited: true, ExitCode: 1})

		Eventually(u.State).Should(Equal(unit.StateListening))
		Expect(u.Result()).To(Equal(unit.ResultSuccess))
	})
})
