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
	"os"
	"path/filepath"

	libptc "github.com/nabbar/golib/network/protocol"
	"golang.org/x/sys/unix"
)

// NewFIFO builds a Port for spec.md's open_fifo: mkfifo the path if it
// does not already exist (or reuse an existing fifo), then open it
// O_RDWR so the unit itself holds a writer and never observes EOF while
// waiting for client activity.
func NewFIFO(path string, opts Options, log Logging) Port {
	return newPort(KindFIFO, libptc.NetworkEmpty, path, opts, log, openFIFO)
}

func openFIFO(p *port) error {
	if err := os.MkdirAll(filepath.Dir(p.addr), os.FileMode(p.opts.DirectoryMode)); err != nil {
		return ErrorMkdir.Error(err)
	}

	old := unix.Umask(0)
	err := unix.Mkfifo(p.addr, p.opts.SocketMode)
	unix.Umask(old)
	if err != nil && err != unix.EEXIST {
		return ErrorMkfifo.Error(err)
	}

	fd, err := unix.Open(p.addr, unix.O_RDWR|unix.O_CLOEXEC|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_NOFOLLOW, 0)
	if err != nil {
		return ErrorOpen.Error(err)
	}

	var st unix.Stat_t
	if err = unix.Fstat(fd, &st); err != nil {
		_ = closeFD(fd)
		return ErrorStat.Error(err)
	}

	// A pre-existing path is only reused if it is a FIFO at the expected
	// mode, owned by this process (original_source's fifo_address_create):
	// anything else means something else occupies the path.
	expectedMode := p.opts.SocketMode & 0777
	if st.Mode&unix.S_IFMT != unix.S_IFIFO ||
		uint32(st.Mode)&0777 != expectedMode ||
		int(st.Uid) != os.Getuid() ||
		int(st.Gid) != os.Getgid() {
		_ = closeFD(fd)
		return ErrorAlreadyExists.Error(fmt.Errorf("%s is not a fifo with the expected mode/owner", p.addr))
	}

	applyFIFOOptions(fd, p.opts, p.logger())

	if err = chownPath(p.addr, p.opts); err != nil {
		p.logger().Warning("chown fifo failed", err)
	}

	p.fd.Store(fd)
	return nil
}
