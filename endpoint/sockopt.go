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

package endpoint

import (
	liblog "github.com/nabbar/golib/logger"
	"golang.org/x/sys/unix"
)

// applySocketOptions applies every option from spec.md section 4.A's table,
// in the order listed there; free-bind, transparent, bind-ipv6-only and
// bind-to-device, which the table does not list, go between TCP congestion
// and reuseport, and the MAC labels come after reuseport. A failure to
// apply any one option is a warning, never an error: the socket still
// enters service.
func applySocketOptions(fd int, o Options, log liblog.Logger) {
	warn := func(setting string, err error) {
		if err != nil {
			log.Warning("apply socket option failed: "+setting, err)
		}
	}

	if o.KeepAlive {
		warn("keep-alive", unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1))
	}
	if o.Broadcast {
		warn("broadcast", unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST, 1))
	}
	if o.PassCredential {
		warn("pass-credentials", unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_PASSCRED, 1))
	}
	if o.PassSecurity {
		warn("pass-security", unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_PASSSEC, 1))
	}
	if o.Priority >= 0 {
		warn("priority", unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_PRIORITY, o.Priority))
	}
	if o.ReceiveBuffer > 0 {
		if e := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUFFORCE, o.ReceiveBuffer); e != nil {
			warn("receive-buffer", unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, o.ReceiveBuffer))
		}
	}
	if o.SendBuffer > 0 {
		if e := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUFFORCE, o.SendBuffer); e != nil {
			warn("send-buffer", unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, o.SendBuffer))
		}
	}
	if o.Mark >= 0 {
		warn("mark", unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_MARK, o.Mark))
	}
	if o.IPTOS >= 0 {
		warn("ip-tos", unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_TOS, o.IPTOS))
	}
	if o.IPTTL >= 0 {
		eTTL := unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_TTL, o.IPTTL)
		eHops := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_UNICAST_HOPS, o.IPTTL)
		if eTTL != nil && eHops != nil {
			warn("ip-ttl", eTTL)
		}
	}
	if o.TCPCongestion != "" {
		warn("tcp-congestion", unix.SetsockoptString(fd, unix.IPPROTO_TCP, unix.TCP_CONGESTION, o.TCPCongestion))
	}
	if o.FreeBind {
		warn("free-bind", unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_FREEBIND, 1))
	}
	if o.Transparent {
		warn("transparent", unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_TRANSPARENT, 1))
	}
	if o.BindIPv6Only {
		warn("bind-ipv6-only", unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 1))
	}
	if o.BindToDevice != "" {
		warn("bind-to-device", unix.BindToDevice(fd, o.BindToDevice))
	}
	if o.ReusePort {
		warn("reuseport", unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1))
	}
	if o.MACLabelIn != "" {
		warn("mac-label-in", unix.Fsetxattr(fd, "security.MAC64IPIN", []byte(o.MACLabelIn), 0))
	}
	if o.MACLabelOut != "" {
		warn("mac-label-out", unix.Fsetxattr(fd, "security.MAC64IPOUT", []byte(o.MACLabelOut), 0))
	}
}

// applyFIFOOptions applies the pipe-size and MAC label options from
// spec.md's FIFO options table. Same warnings-only contract.
func applyFIFOOptions(fd int, o Options, log liblog.Logger) {
	if o.PipeSize > 0 {
		if _, e := unix.FcntlInt(uintptr(fd), unix.F_SETPIPE_SZ, o.PipeSize); e != nil {
			log.Warning("apply fifo option failed: pipe-size", e)
		}
	}
	if o.MACLabel != "" {
		if e := unix.Fsetxattr(fd, "security.SMACK64", []byte(o.MACLabel), 0); e != nil {
			log.Warning("apply fifo option failed: mac-label", e)
		}
	}
}

func closeFD(fd int) error {
	return unix.Close(fd)
}

func effectiveBacklog(backlog int) int {
	if backlog <= 0 {
		return unix.SOMAXCONN
	}
	return backlog
}
