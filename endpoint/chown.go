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
	"os"
	"os/user"
	"strconv"
)

// needsChown mirrors the original implementation's socket_chown guard
// (original_source/cmd/manager/socket.c): nothing to do when neither an
// owning user nor an owning group was configured.
func needsChown(o Options) bool {
	return o.OwnerUser != "" || o.OwnerGroup != ""
}

// chownPath resolves OwnerUser/OwnerGroup (numeric or by name) and
// applies them to path. A configured owner that cannot be resolved is
// reported to the caller, who logs it as a warning rather than failing
// the endpoint (spec.md 4.A/7).
func chownPath(path string, o Options) error {
	if !needsChown(o) {
		return nil
	}

	uid, gid := -1, -1

	if o.OwnerUser != "" {
		if n, err := strconv.Atoi(o.OwnerUser); err == nil {
			uid = n
		} else if u, err := user.Lookup(o.OwnerUser); err == nil {
			if n, err2 := strconv.Atoi(u.Uid); err2 == nil {
				uid = n
			}
		} else {
			return err
		}
	}

	if o.OwnerGroup != "" {
		if n, err := strconv.Atoi(o.OwnerGroup); err == nil {
			gid = n
		} else if g, err := user.LookupGroup(o.OwnerGroup); err == nil {
			if n, err2 := strconv.Atoi(g.Gid); err2 == nil {
				gid = n
			}
		} else {
			return err
		}
	}

	return os.Chown(path, uid, gid)
}

func chownMessageQueue(path string, o Options) error {
	return chownPath(path, o)
}

// ChownPath is the exported form of chownPath, used by the unit package's
// synthetic StartChown helper (spec.md section 4.C) to apply the
// configured owner to every path-bearing endpoint without reaching into
// this package's unexported opener internals.
func ChownPath(path string, o Options) error {
	return chownPath(path, o)
}
