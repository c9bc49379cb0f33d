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

package verify_test

import (
	"github.com/sabouaram/sockunit/endpoint"
	"github.com/sabouaram/sockunit/unit"
	"github.com/sabouaram/sockunit/verify"

	libptc "github.com/nabbar/golib/network/protocol"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validConfig() unit.Config {
	cfg := unit.DefaultConfig()
	cfg.Listen = []unit.EndpointSpec{
		{Kind: endpoint.KindSocket, Network: libptc.NetworkTCP, Address: "127.0.0.1:8080"},
	}
	return cfg
}

var _ = Describe("Verify", func() {
	It("rejects a config with no listen endpoints", func() {
		cfg := unit.DefaultConfig()
		_, err := verify.Verify(cfg)
		Expect(err).To(HaveOccurred())
		Expect(err.IsCode(verify.ErrorNoListenEndpoint)).To(BeTrue())
	})

	It("rejects accept mode over a non-connection-oriented endpoint", func() {
		cfg := validConfig()
		cfg.Accept = true
		cfg.Listen[0].Network = libptc.NetworkUDP
		_, err := verify.Verify(cfg)
		Expect(err).To(HaveOccurred())
		Expect(err.IsCode(verify.ErrorAcceptNonAccepting)).To(BeTrue())
	})

	It("rejects accept mode with max-connections <= 0", func() {
		cfg := validConfig()
		cfg.Accept = true
		cfg.MaxConnections = 0
		_, err := verify.Verify(cfg)
		Expect(err).To(HaveOccurred())
		Expect(err.IsCode(verify.ErrorMaxConnectionsInvalid)).To(BeTrue())
	})

	It("rejects accept mode combined with an explicit service reference", func() {
		cfg := validConfig()
		cfg.Accept = true
		cfg.MaxConnections = 4
		cfg.ServiceName = "demo.service"
		_, err := verify.Verify(cfg)
		Expect(err).To(HaveOccurred())
		Expect(err.IsCode(verify.ErrorAcceptWithService)).To(BeTrue())
	})

	It("rejects a pam name without control-group kill mode", func() {
		cfg := validConfig()
		cfg.PAMName = "login"
		cfg.KillMode = unit.KillModeProcess
		_, err := verify.Verify(cfg)
		Expect(err).To(HaveOccurred())
		Expect(err.IsCode(verify.ErrorPAMRequiresControlGroup)).To(BeTrue())
	})

	It("accepts a pam name paired with control-group kill mode", func() {
		cfg := validConfig()
		cfg.PAMName = "login"
		cfg.KillMode = unit.KillModeControlGroup
		_, err := verify.Verify(cfg)
		Expect(err).ToNot(HaveOccurred())
	})

	It("always links before/conflicts shutdown.target and before sockets.target", func() {
		links, err := verify.Verify(validConfig())
		Expect(err).ToNot(HaveOccurred())
		Expect(links.Before).To(ConsistOf("shutdown.target", "sockets.target"))
		Expect(links.Conflicts).To(ConsistOf("shutdown.target"))
		Expect(links.After).To(BeEmpty())
		Expect(links.Requires).To(BeEmpty())
	})

	It("adds the sysinit.target pair in system mode", func() {
		cfg := validConfig()
		cfg.SystemMode = true
		links, err := verify.Verify(cfg)
		Expect(err).ToNot(HaveOccurred())
		Expect(links.After).To(ConsistOf("sysinit.target"))
		Expect(links.Requires).To(ConsistOf("sysinit.target"))
	})

	It("adds a RequiresMountsFor entry per filesystem-backed endpoint, deduplicated", func() {
		cfg := unit.DefaultConfig()
		cfg.Listen = []unit.EndpointSpec{
			{Kind: endpoint.KindFIFO, Address: "/run/demo.fifo"},
			{Kind: endpoint.KindSocket, Network: libptc.NetworkUnix, Address: "/run/demo.sock"},
			{Kind: endpoint.KindSocket, Network: libptc.NetworkUnix, Address: "/run/demo.sock"},
			{Kind: endpoint.KindSocket, Network: libptc.NetworkTCP, Address: "127.0.0.1:9"},
		}
		links, err := verify.Verify(cfg)
		Expect(err).ToNot(HaveOccurred())
		Expect(links.RequiresMountsFor).To(ConsistOf("/run/demo.fifo", "/run/demo.sock"))
	})

	It("links a non-loopback bind-to-device to its sysfs node", func() {
		cfg := validConfig()
		cfg.Options.BindToDevice = "eth0"
		links, err := verify.Verify(cfg)
		Expect(err).ToNot(HaveOccurred())
		Expect(links.DeviceSysfsLink).To(Equal("/sys/class/net/eth0"))
	})

	It("omits the device link for loopback", func() {
		cfg := validConfig()
		cfg.Options.BindToDevice = "lo"
		links, err := verify.Verify(cfg)
		Expect(err).ToNot(HaveOccurred())
		Expect(links.DeviceSysfsLink).To(BeEmpty())
	})
})
