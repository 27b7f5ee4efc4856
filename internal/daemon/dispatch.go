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
	"github.com/sh1r4s3/runns-go/internal/launch"
	"github.com/sh1r4s3/runns-go/internal/peercred"
	"github.com/sh1r4s3/runns-go/internal/registry"
	"github.com/sh1r4s3/runns-go/internal/wire"
)

// handleConn reads and dispatches exactly one request from conn, closing
// it before returning. It reports whether the accept loop should stop
// serving (an honored STOP).
func (d *Daemon) handleConn(conn *peercred.Conn) bool {
	defer conn.Close()

	req, err := wire.ReadRequest(conn)
	if err != nil {
		d.logWarn("reading request from uid %d: %v", conn.Uid, err)
		return false
	}

	switch {
	case req.Header.Flag.Has(wire.FlagStop):
		return d.handleStop(conn)
	case req.Header.Flag.Has(wire.FlagList):
		d.handleList(conn)
		return false
	default:
		d.handleLaunch(conn, req)
		return false
	}
}

// handleStop honors a STOP request only from uid 0, matching the
// original daemon's refusal to let unprivileged clients shut it down.
func (d *Daemon) handleStop(conn *peercred.Conn) bool {
	if conn.Uid != 0 {
		d.logWarn("stop request from non-root uid %d ignored", conn.Uid)
		return false
	}
	d.logInfo("stop requested by uid 0, shutting down")
	_ = d.transition(StateShuttingDown)
	return true
}

// handleList prunes dead workers, then replies with the entries owned
// by the requesting peer.
func (d *Daemon) handleList(conn *peercred.Conn) {
	entries := d.registry.ListFor(conn.Uid)
	workers := make([]wire.WorkerInfo, len(entries))
	for i, e := range entries {
		workers[i] = wire.WorkerInfo{Uid: e.Uid, Pid: uint32(e.Pid)}
	}
	if err := wire.WriteListReply(conn, workers); err != nil {
		d.logWarn("writing list reply to uid %d: %v", conn.Uid, err)
	}
}

// handleLaunch runs the launch pipeline for req on behalf of the peer
// that sent it, then reports a single status byte: the client never
// learns the launched program's own exit status, only whether the
// worker was started and registered.
func (d *Daemon) handleLaunch(conn *peercred.Conn, req wire.Request) {
	d.registry.Prune()
	if d.registry.Len() >= registry.MaxWorkers {
		d.logWarn("registry full, dropping launch request from uid %d", conn.Uid)
		_ = wire.WriteStatus(conn, wire.StatusError)
		return
	}

	lreq := launch.FromWire(conn.Uid, req)
	pid, err := launch.Spawn(d.selfExecPath(), lreq)
	if err != nil {
		d.logError("launch for uid %d failed: %v", conn.Uid, err)
		_ = wire.WriteStatus(conn, wire.StatusError)
		return
	}

	if err := d.registry.Insert(conn.Uid, pid); err != nil {
		d.logError("registering worker pid %d for uid %d: %v", pid, conn.Uid, err)
		_ = wire.WriteStatus(conn, wire.StatusError)
		return
	}

	d.logInfo("launched pid %d for uid %d", pid, conn.Uid)
	_ = wire.WriteStatus(conn, wire.StatusOK)
}
