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
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	libptc "github.com/nabbar/golib/network/protocol"
	"golang.org/x/sys/unix"
)

// NewSocket builds a Port for a stream or datagram socket (TCP, UDP and
// their v4/v6 variants, Unix, UnixGram), as named by spec.md's
// open_stream/open_dgram operations; sequenced-packet, raw and netlink
// sockets have their own constructors (NewSeqPacket, NewRaw, NewNetlink).
// The address format follows net.Dial's: "host:port"
// for TCP/UDP, a filesystem path for Unix/UnixGram.
func NewSocket(netw libptc.NetworkProtocol, addr string, opts Options, log Logging) Port {
	return newPort(KindSocket, netw, addr, opts, log, openSocket)
}

func openSocket(p *port) error {
	switch p.netw {
	case libptc.NetworkUnix, libptc.NetworkUnixGram:
		return openUnixSocket(p)
	default:
		return openInetSocket(p)
	}
}

func socketTypeOf(netw libptc.NetworkProtocol) int {
	switch netw {
	case libptc.NetworkUDP, libptc.NetworkUDP4, libptc.NetworkUDP6, libptc.NetworkUnixGram:
		return unix.SOCK_DGRAM
	default:
		return unix.SOCK_STREAM
	}
}

func isDatagram(netw libptc.NetworkProtocol) bool {
	return socketTypeOf(netw) == unix.SOCK_DGRAM
}

func domainOf(netw libptc.NetworkProtocol) int {
	switch netw {
	case libptc.NetworkTCP6, libptc.NetworkUDP6:
		return unix.AF_INET6
	default:
		return unix.AF_INET
	}
}

// openInetSocket handles TCP/TCP4/TCP6/UDP/UDP4/UDP6. Address resolution
// is delegated to the stdlib's address splitter rather than reimplemented,
// but the socket itself is created, bound and listened by hand so the
// resulting fd is fully under this package's control (dup/serialize,
// accept4 loop, option table) the way a handler-based net.Listener is not.
func openInetSocket(p *port) error {
	host, portStr, err := splitHostPort(p.addr)
	if err != nil {
		return ErrorParamsInvalid.Error(err)
	}

	domain := domainOf(p.netw)
	if host == "" || host == "*" {
		host = "0.0.0.0"
		if domain == unix.AF_INET6 {
			host = "::"
		}
	}

	portNum, err := strconv.Atoi(portStr)
	if err != nil || portNum < 0 || portNum > 65535 {
		return ErrorParamsInvalid.Error(err)
	}

	fd, err := unix.Socket(domain, socketTypeOf(p.netw)|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return ErrorOpen.Error(err)
	}

	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	applySocketOptions(fd, p.opts, p.logger())

	if err = bindInet(fd, domain, host, portNum); err != nil {
		_ = closeFD(fd)
		return ErrorBind.Error(err)
	}

	if !isDatagram(p.netw) {
		if err = unix.Listen(fd, effectiveBacklog(p.opts.Backlog)); err != nil {
			_ = closeFD(fd)
			return ErrorListen.Error(err)
		}
	}

	p.fd.Store(fd)
	return nil
}

func bindInet(fd, domain int, host string, port int) error {
	ip := net.ParseIP(host)
	if domain == unix.AF_INET6 {
		var sa unix.SockaddrInet6
		sa.Port = port
		if v6 := ip.To16(); v6 != nil {
			copy(sa.Addr[:], v6)
		}
		return unix.Bind(fd, &sa)
	}
	var sa unix.SockaddrInet4
	sa.Port = port
	if v4 := ip.To4(); v4 != nil {
		copy(sa.Addr[:], v4)
	}
	return unix.Bind(fd, &sa)
}

// openUnixSocket handles Unix/UnixGram endpoints: create parent
// directories (directory_mode), refuse to clobber anything that is not a
// stale socket, unlink a stale one, bind, listen (stream only).
func openUnixSocket(p *port) error {
	if err := os.MkdirAll(filepath.Dir(p.addr), os.FileMode(p.opts.DirectoryMode)); err != nil {
		return ErrorMkdir.Error(err)
	}

	if fi, err := os.Lstat(p.addr); err == nil {
		if fi.Mode()&os.ModeSocket == 0 {
			return ErrorAlreadyExists.Error(fmt.Errorf("%s exists and is not a socket", p.addr))
		}
		if err = os.Remove(p.addr); err != nil {
			return ErrorAddressInUse.Error(err)
		}
	}

	sockType := socketTypeOf(p.netw)
	fd, err := unix.Socket(unix.AF_UNIX, sockType|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return ErrorOpen.Error(err)
	}

	applySocketOptions(fd, p.opts, p.logger())

	if err = unix.Bind(fd, &unix.SockaddrUnix{Name: p.addr}); err != nil {
		_ = closeFD(fd)
		return ErrorBind.Error(err)
	}

	if err = os.Chmod(p.addr, os.FileMode(p.opts.SocketMode)); err != nil {
		p.logger().Warning("chmod unix socket failed", err)
	}
	if err = chownPath(p.addr, p.opts); err != nil {
		p.logger().Warning("chown unix socket failed", err)
	}

	if sockType == unix.SOCK_STREAM || sockType == unix.SOCK_SEQPACKET {
		if err = unix.Listen(fd, effectiveBacklog(p.opts.Backlog)); err != nil {
			_ = closeFD(fd)
			_ = os.Remove(p.addr)
			return ErrorListen.Error(err)
		}
	}

	p.fd.Store(fd)
	return nil
}

// NewSeqPacket builds a SOCK_SEQPACKET AF_UNIX endpoint (spec.md's
// open_seqpacket). net.Listen has no seqpacket mode, so this is raw
// syscalls end to end.
func NewSeqPacket(addr string, opts Options, log Logging) Port {
	return newPort(KindSocket, libptc.NetworkUnix, addr, opts, log, func(p *port) error {
		return openUnixSeqPacket(p, addr)
	})
}

func openUnixSeqPacket(p *port, addr string) error {
	if err := os.MkdirAll(filepath.Dir(addr), os.FileMode(p.opts.DirectoryMode)); err != nil {
		return ErrorMkdir.Error(err)
	}
	if fi, err := os.Lstat(addr); err == nil {
		if fi.Mode()&os.ModeSocket == 0 {
			return ErrorAlreadyExists.Error(fmt.Errorf("%s exists and is not a socket", addr))
		}
		if err = os.Remove(addr); err != nil {
			return ErrorAddressInUse.Error(err)
		}
	}

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_SEQPACKET|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return ErrorOpen.Error(err)
	}
	applySocketOptions(fd, p.opts, p.logger())

	if err = unix.Bind(fd, &unix.SockaddrUnix{Name: addr}); err != nil {
		_ = closeFD(fd)
		return ErrorBind.Error(err)
	}
	if err = unix.Listen(fd, effectiveBacklog(p.opts.Backlog)); err != nil {
		_ = closeFD(fd)
		_ = os.Remove(addr)
		return ErrorListen.Error(err)
	}

	p.fd.Store(fd)
	return nil
}

// NewRaw builds an AF_INET SOCK_RAW endpoint bound to the given IP
// protocol number (spec.md's open_raw). Requires CAP_NET_RAW at runtime;
// that failure surfaces as ErrorOpen, not a panic.
func NewRaw(addr string, ipProto int, opts Options, log Logging) Port {
	return newPort(KindSocket, libptc.NetworkIP, addr, opts, log, func(p *port) error {
		return openRawSocket(p, ipProto)
	})
}

func openRawSocket(p *port, ipProto int) error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_RAW|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, ipProto)
	if err != nil {
		return ErrorOpen.Error(err)
	}
	applySocketOptions(fd, p.opts, p.logger())

	if p.addr != "" {
		if v4 := net.ParseIP(p.addr).To4(); v4 != nil {
			var sa unix.SockaddrInet4
			copy(sa.Addr[:], v4)
			if err = unix.Bind(fd, &sa); err != nil {
				_ = closeFD(fd)
				return ErrorBind.Error(err)
			}
		}
	}

	p.fd.Store(fd)
	return nil
}

// NewNetlink builds an AF_NETLINK endpoint joined to the given multicast
// groups bitmask (spec.md's open_netlink).
func NewNetlink(family int, groups uint32, opts Options, log Logging) Port {
	addr := fmt.Sprintf("netlink:%d:%d", family, groups)
	return newPort(KindSocket, libptc.NetworkEmpty, addr, opts, log, func(p *port) error {
		return openNetlinkSocket(p, family, groups)
	})
}

func openNetlinkSocket(p *port, family int, groups uint32) error {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, family)
	if err != nil {
		return ErrorOpen.Error(err)
	}
	applySocketOptions(fd, p.opts, p.logger())

	if err = unix.Bind(fd, &unix.SockaddrNetlink{Groups: groups}); err != nil {
		_ = closeFD(fd)
		return ErrorBind.Error(err)
	}

	p.fd.Store(fd)
	return nil
}

func splitHostPort(addr string) (host, port string, err error) {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return "", "", fmt.Errorf("address %q has no port", addr)
	}
	host = addr[:idx]
	port = addr[idx+1:]
	host = strings.TrimPrefix(strings.TrimSuffix(host, "]"), "[")
	return host, port, nil
}

