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

package verify

import (
	"github.com/sabouaram/sockunit/unit"

	liberr "github.com/nabbar/golib/errors"
)

// Links is the implicit dependency set a valid configuration picks up
// (spec.md section 4.G). Every unit gets Before/Conflicts against
// shutdown.target and Before=sockets.target; system mode adds the
// sysinit.target pair; each path-bearing endpoint adds a
// RequiresMountsFor entry; a non-loopback bind-to-device adds a sysfs
// node link.
type Links struct {
	Before            []string
	Conflicts         []string
	After             []string
	Requires          []string
	RequiresMountsFor []string
	DeviceSysfsLink   string
}

// Verify rejects cfg per spec.md section 4.G's five rules and, on
// success, computes its implicit links.
func Verify(cfg unit.Config) (Links, liberr.Error) {
	if len(cfg.Listen) == 0 {
		return Links{}, ErrorNoListenEndpoint.Error(nil)
	}

	if cfg.Accept {
		for _, e := range cfg.Listen {
			if !e.ConnectionOriented() {
				return Links{}, ErrorAcceptNonAccepting.Error(nil)
			}
		}
		if cfg.MaxConnections <= 0 {
			return Links{}, ErrorMaxConnectionsInvalid.Error(nil)
		}
		if cfg.ServiceName != "" {
			return Links{}, ErrorAcceptWithService.Error(nil)
		}
	}

	if cfg.PAMName != "" && cfg.KillMode != unit.KillModeControlGroup {
		return Links{}, ErrorPAMRequiresControlGroup.Error(nil)
	}

	links := Links{
		Before:    []string{"shutdown.target", "sockets.target"},
		Conflicts: []string{"shutdown.target"},
	}

	if cfg.SystemMode {
		links.After = append(links.After, "sysinit.target")
		links.Requires = append(links.Requires, "sysinit.target")
	}

	seen := map[string]bool{}
	for _, e := range cfg.Listen {
		if !e.HasFilesystemPath() || seen[e.Address] {
			continue
		}
		seen[e.Address] = true
		links.RequiresMountsFor = append(links.RequiresMountsFor, e.Address)
	}

	if cfg.Options.BindToDevice != "" && cfg.Options.BindToDevice != "lo" {
		links.DeviceSysfsLink = "/sys/class/net/" + cfg.Options.BindToDevice
	}

	return links, nil
}
