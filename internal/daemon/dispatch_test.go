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

package daemon

import (
	"net"
	"os"
	"testing"

	"github.com/sh1r4s3/runns-go/internal/peercred"
	"github.com/sh1r4s3/runns-go/internal/registry"
	"github.com/sh1r4s3/runns-go/internal/wire"
)

func newTestConn(t *testing.T, uid uint32) (*peercred.Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	return &peercred.Conn{Conn: server, Uid: uid}, client
}

func TestHandleStopIgnoresNonRoot(t *testing.T) {
	d := &Daemon{registry: &registry.Registry{}}
	conn, client := newTestConn(t, 1000)
	defer client.Close()

	stop := d.handleStop(conn)
	if stop {
		t.Fatalf("handleStop honored a non-root peer")
	}
	if d.State() != StateInit {
		t.Fatalf("state changed on a rejected stop: %s", d.State())
	}
}

func TestHandleStopHonorsRoot(t *testing.T) {
	// A STOP is only ever dispatched by the accept loop, i.e. while serving.
	d := &Daemon{state: StateServing, registry: &registry.Registry{}}
	conn, client := newTestConn(t, 0)
	defer client.Close()

	if !d.handleStop(conn) {
		t.Fatalf("handleStop did not honor uid 0")
	}
	if d.State() != StateShuttingDown {
		t.Fatalf("state = %s, want %s", d.State(), StateShuttingDown)
	}
}

func TestHandleListReturnsOnlyCallerEntries(t *testing.T) {
	reg := &registry.Registry{}
	// pid is this test process itself so Prune's liveness check keeps it.
	reg.Insert(1000, int32(os.Getpid()))
	reg.Insert(2000, int32(1))
	d := &Daemon{registry: reg}

	conn, client := newTestConn(t, 1000)
	defer client.Close()
	done := make(chan struct{})
	go func() {
		d.handleList(conn)
		close(done)
	}()

	workers, err := wire.ReadListReply(client)
	if err != nil {
		t.Fatalf("ReadListReply: %v", err)
	}
	<-done

	if len(workers) != 1 || workers[0].Uid != 1000 {
		t.Fatalf("workers = %+v, want one entry for uid 1000", workers)
	}
}

func TestHandleLaunchRejectsWhenRegistryFull(t *testing.T) {
	reg := &registry.Registry{}
	self := int32(os.Getpid())
	for i := 0; i < registry.MaxWorkers; i++ {
		// pid is this test process itself, so Prune's liveness check
		// never evicts these entries before capacity is checked.
		if err := reg.Insert(uint32(i), self); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	d := &Daemon{registry: reg}

	conn, client := newTestConn(t, 1000)
	done := make(chan struct{})
	go func() {
		d.handleLaunch(conn, wire.Request{Prog: "/bin/true", Netns: "/proc/self/ns/net"})
		close(done)
	}()

	status, err := wire.ReadStatus(client)
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}
	<-done
	client.Close()

	if status != wire.StatusError {
		t.Fatalf("status = %v, want StatusError for a full registry", status)
	}
}
