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

package set_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/sabouaram/sockunit/endpoint"
	"github.com/sabouaram/sockunit/endpoint/set"

	libptc "github.com/nabbar/golib/network/protocol"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type failPort struct {
	endpoint.Port
	failOpen bool
}

func (f *failPort) Open() error {
	if f.failOpen {
		return errors.New("boom")
	}
	return f.Port.Open()
}

var _ = Describe("Set", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "set_*")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(dir)
	})

	It("preserves insertion order on Walk", func() {
		s := set.New(context.Background())
		a := endpoint.NewSocket(libptc.NetworkUnix, filepath.Join(dir, "a.sock"), endpoint.DefaultOptions(), endpoint.Logging{})
		b := endpoint.NewSocket(libptc.NetworkUnix, filepath.Join(dir, "b.sock"), endpoint.DefaultOptions(), endpoint.Logging{})
		s.Add(a)
		s.Add(b)

		var seen []string
		s.Walk(func(addr string, _ endpoint.Port) bool {
			seen = append(seen, addr)
			return true
		})
		Expect(seen).To(Equal([]string{a.Address(), b.Address()}))
		Expect(s.Len()).To(Equal(2))
	})

	It("rolls back every endpoint opened in this call when one fails", func() {
		s := set.New(context.Background())
		good := endpoint.NewSocket(libptc.NetworkUnix, filepath.Join(dir, "good.sock"), endpoint.DefaultOptions(), endpoint.Logging{})
		bad := &failPort{Port: endpoint.NewSocket(libptc.NetworkUnix, filepath.Join(dir, "bad.sock"), endpoint.DefaultOptions(), endpoint.Logging{}), failOpen: true}

		s.Add(good)
		s.Add(bad)

		err := s.OpenAll()
		Expect(err).To(HaveOccurred())
		Expect(good.IsOpen()).To(BeFalse())
	})

	It("removes an endpoint without closing it", func() {
		s := set.New(context.Background())
		addr := filepath.Join(dir, "keep.sock")
		p := endpoint.NewSocket(libptc.NetworkUnix, addr, endpoint.DefaultOptions(), endpoint.Logging{})
		s.Add(p)
		Expect(p.Open()).To(Succeed())

		s.Remove(addr)
		Expect(s.Get(addr)).To(BeNil())
		Expect(p.IsOpen()).To(BeTrue())
		_ = p.Close()
	})
})
