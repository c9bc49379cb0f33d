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
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// instanceName builds the "%i" instance string for accepted connection
// number nr (0 for the first) on fd, following spec.md section 4.E.1: IPv4/IPv6 peers
// render as "{nr}-{local_addr}:{local_port}-{peer_addr}:{peer_port}",
// IPv6 addresses using the v4-mapped dotted quad when applicable or the
// full textual form otherwise, and AF_UNIX peers render as
// "{nr}-{peer_pid}-{peer_uid}" via SO_PEERCRED. A peer that has already
// disconnected (ENOTCONN) yields an empty name, which callers treat as
// "drop this connection".
func instanceName(nr uint64, fd int) (string, error) {
	peer, err := unix.Getpeername(fd)
	if err != nil {
		if err == unix.ENOTCONN {
			return "", nil
		}
		return "", err
	}

	switch peer.(type) {
	case *unix.SockaddrInet4, *unix.SockaddrInet6:
		local, err := unix.Getsockname(fd)
		if err != nil {
			return "", err
		}
		localAddr, ok := formatInetAddr(local)
		if !ok {
			return fmt.Sprintf("%d", nr), nil
		}
		peerAddr, ok := formatInetAddr(peer)
		if !ok {
			return fmt.Sprintf("%d", nr), nil
		}
		return fmt.Sprintf("%d-%s-%s", nr, localAddr, peerAddr), nil

	case *unix.SockaddrUnix:
		cred, err := unix.GetsockoptUcred(fd, unix.SOL_SOCKET, unix.SO_PEERCRED)
		if err != nil {
			return fmt.Sprintf("%d", nr), nil
		}
		return fmt.Sprintf("%d-%d-%d", nr, cred.Pid, cred.Uid), nil

	default:
		return fmt.Sprintf("%d", nr), nil
	}
}

// formatInetAddr renders an AF_INET/AF_INET6 sockaddr as "addr:port",
// using the dotted-quad form for IPv4 and v4-mapped IPv6 addresses.
func formatInetAddr(sa unix.Sockaddr) (string, bool) {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return fmt.Sprintf("%d.%d.%d.%d:%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3], a.Port), true

	case *unix.SockaddrInet6:
		ip := net.IP(a.Addr[:])
		if v4 := ip.To4(); v4 != nil {
			return fmt.Sprintf("%d.%d.%d.%d:%d", v4[0], v4[1], v4[2], v4[3], a.Port), true
		}
		return fmt.Sprintf("%s:%d", ip.String(), a.Port), true

	default:
		return "", false
	}
}
