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
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/nabbar/golib/file/perm"
	liblog "github.com/nabbar/golib/logger"
	"golang.org/x/sys/unix"

	"github.com/sh1r4s3/runns-go/internal/peercred"
	"github.com/sh1r4s3/runns-go/internal/registry"
)

// Config bundles the startup parameters a Daemon needs. SelfPath must be
// an absolute, resolvable path to the running executable: the launch
// pipeline re-execs it for the intermediate and worker roles.
type Config struct {
	SelfPath   string
	SocketPath string
	SocketPerm perm.Perm
	Logger     liblog.Logger
}

// Daemon is the supervisor: the socket listener, the worker registry and
// the lifecycle state machine that ties them together.
type Daemon struct {
	mu sync.Mutex

	state      State
	listener   *peercred.Listener
	socketPerm perm.Perm
	socketPath string
	selfPath   string
	groupGid   int

	registry *registry.Registry
	log      liblog.Logger
}

// New builds a Daemon in StateInit. It performs no I/O; the caller
// detaches first with Daemonize, and Run drives the rest of the startup
// sequence (resolve group, bind, serve) in the order the state machine
// requires.
func New(cfg Config) (*Daemon, error) {
	if cfg.SelfPath == "" {
		return nil, fmt.Errorf("daemon: empty self path")
	}
	if cfg.SocketPath == "" {
		cfg.SocketPath = DefaultSocketPath
	}
	if cfg.SocketPerm == 0 {
		cfg.SocketPerm = DefaultSocketPerm
	}
	return &Daemon{
		state:      StateInit,
		socketPerm: cfg.SocketPerm,
		socketPath: cfg.SocketPath,
		selfPath:   cfg.SelfPath,
		registry:   &registry.Registry{},
		log:        cfg.Logger,
	}, nil
}

// Run drives the daemon through its full lifecycle: resolving the runns
// group, binding the socket, and serving the accept loop until a STOP
// request or ctx cancellation ends it. It returns once the daemon has
// reached StateExited.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.transition(StateDaemonized); err != nil {
		return err
	}
	unix.Umask(0022)

	gid, err := lookupRunnsGid()
	if err != nil {
		return ErrConfig.Error(err)
	}
	d.groupGid = gid

	if err := d.bind(ctx, d.socketPath); err != nil {
		return ErrSocket.Error(err)
	}
	if err := d.transition(StateBound); err != nil {
		return err
	}

	if err := d.transition(StateServing); err != nil {
		return err
	}
	d.logInfo("serving on %s", d.socketPath)

	serveErr := d.serve(ctx)

	if err := d.transition(StateShuttingDown); err != nil {
		// already shutting down from within serve, nothing more to do
	}
	d.cleanup()
	_ = d.transition(StateExited)

	return serveErr
}

// serve runs the strictly serial accept loop: one connection handled at
// a time, matching the original daemon's single-threaded accept/dispatch
// design. It returns nil on an honored STOP, ctx's error once ctx is
// cancelled (checked between connections), and the accept error
// otherwise.
func (d *Daemon) serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn, err := d.listener.Accept()
		if err != nil {
			if d.State() == StateShuttingDown {
				return nil
			}
			d.logError("accept: %v", err)
			return err
		}

		stop := d.handleConn(conn)
		if stop {
			return nil
		}
	}
}

// cleanup unlinks the socket file and, if the socket directory was the
// default one, removes it too, mirroring the original daemon's clean
// shutdown path.
func (d *Daemon) cleanup() {
	if d.listener != nil {
		d.listener.Close()
	}
	if err := os.Remove(d.socketPath); err != nil && !os.IsNotExist(err) {
		d.logError("removing socket: %v", err)
	}
	if d.socketPath == DefaultSocketPath {
		if err := os.Remove(DefaultSocketDir); err != nil && !os.IsNotExist(err) {
			d.logError("removing socket directory: %v", err)
		}
	}
}

func (d *Daemon) logInfo(format string, args ...interface{}) {
	if d.log == nil {
		return
	}
	d.log.Info(fmt.Sprintf(format, args...), nil)
}

func (d *Daemon) logWarn(format string, args ...interface{}) {
	if d.log == nil {
		return
	}
	d.log.Warning(fmt.Sprintf(format, args...), nil)
}

func (d *Daemon) logError(format string, args ...interface{}) {
	if d.log == nil {
		return
	}
	d.log.Error(fmt.Sprintf(format, args...), nil)
}

// selfExecPath exposes the path Spawn re-execs, narrowed to what the
// launch package needs.
func (d *Daemon) selfExecPath() string { return d.selfPath }
