/*
 * MIT License
 *
 * Copyright (c) 2026 The runns Authors
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

// Package peercred is a thin accessor over toolman.org/net/peercred,
// narrowing its *Conn down to exactly what the accept loop needs: the
// peer's credentials and the underlying net.Conn for reading a request.
package peercred

import (
	"context"
	"fmt"
	"net"

	"toolman.org/net/peercred"
)

// Listener accepts AF_UNIX connections and exposes the connecting
// process's uid/gid/pid for each one.
type Listener struct {
	inner *peercred.Listener
}

// Listen opens a unix socket at addr. The caller is responsible for the
// socket file's ownership and permissions once Listen returns.
func Listen(ctx context.Context, addr string) (*Listener, error) {
	l, err := peercred.Listen(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("peercred: listen %s: %w", addr, err)
	}
	return &Listener{inner: l}, nil
}

// Conn pairs a net.Conn with the credentials of the process on its other
// end, captured at accept time via SO_PEERCRED.
type Conn struct {
	net.Conn
	Uid uint32
	Gid uint32
	Pid int32
}

// Accept blocks until a new connection arrives and returns it along with
// the connecting process's credentials.
func (l *Listener) Accept() (*Conn, error) {
	c, err := l.inner.AcceptPeerCred()
	if err != nil {
		return nil, err
	}
	return &Conn{
		Conn: c.Conn,
		Uid:  c.Ucred.Uid,
		Gid:  c.Ucred.Gid,
		Pid:  c.Ucred.Pid,
	}, nil
}

// Close closes the listening socket.
func (l *Listener) Close() error { return l.inner.Close() }

// Addr returns the listener's network address.
func (l *Listener) Addr() net.Addr { return l.inner.Addr() }
