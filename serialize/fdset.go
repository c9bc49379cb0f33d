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

package serialize

import "golang.org/x/sys/unix"

// FDSet is the manager-wide shared container endpoint fds are duplicated
// into before a re-exec (spec.md section 4.F: "The manager fd-set is the
// only shared container; endpoints pull fds out by key on deserialize").
// It is not safe for concurrent use; callers serialize every unit from
// the single supervisor event loop.
type FDSet struct {
	fds []int
}

// NewFDSet returns an empty set.
func NewFDSet() *FDSet {
	return &FDSet{}
}

// Add duplicates src and clears FD_CLOEXEC on the duplicate so it
// survives the coming execve. It returns the duplicate's fd number, the
// value persisted in the key/value line.
func (s *FDSet) Add(src int) (int, error) {
	dup, err := unix.Dup(src)
	if err != nil {
		return -1, ErrorDuplicateFD.Error(err)
	}
	if _, err := unix.FcntlInt(uintptr(dup), unix.F_SETFD, 0); err != nil {
		_ = unix.Close(dup)
		return -1, ErrorDuplicateFD.Error(err)
	}
	s.fds = append(s.fds, dup)
	return dup, nil
}

// Fds returns every duplicated fd, in Add order, for the exec step that
// builds the child's inherited descriptor table.
func (s *FDSet) Fds() []int {
	return append([]int(nil), s.fds...)
}

// CloseAll closes every fd this set owns. Call it on the old process
// image once the new one has taken over, or after a failed exec.
func (s *FDSet) CloseAll() {
	for _, fd := range s.fds {
		_ = unix.Close(fd)
	}
	s.fds = nil
}
