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

// Command runns is the privileged daemon: it binds the control socket,
// accepts requests from runnsctl (or any client speaking the wire
// protocol) and launches programs in caller-selected network namespaces.
//
// Re-exec'd with one of the hidden launch.IntermediateArg/WorkerArg
// sentinels as argv[1], it instead becomes the intermediate or worker
// half of the launch pipeline: see internal/launch.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	libcbr "github.com/nabbar/golib/cobra"
	libver "github.com/nabbar/golib/version"
	spfcbr "github.com/spf13/cobra"

	"github.com/sh1r4s3/runns-go/internal/daemon"
	"github.com/sh1r4s3/runns-go/internal/launch"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case launch.IntermediateArg:
			self, err := os.Executable()
			if err != nil {
				fmt.Fprintf(os.Stderr, "runns: resolving self path: %v\n", err)
				os.Exit(1)
			}
			launch.RunIntermediate(self)
			return
		case launch.WorkerArg:
			if err := launch.RunWorker(); err != nil {
				fmt.Fprintf(os.Stderr, "runns: worker: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	var socketPath string

	app := libcbr.New()
	app.SetVersion(appVersion())
	app.SetForceNoInfo(true)
	app.Init()
	app.AddFlagString(true, &socketPath, "socket", "s", daemon.DefaultSocketPath, "path to the control socket")

	app.Cobra().RunE = func(cmd *spfcbr.Command, args []string) error {
		return runDaemon(socketPath)
	}

	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// appVersion builds the minimal libver.Version the cobra wrapper requires
// before Init(): this daemon has no independent release-version concept
// to report, so SetForceNoInfo(true) suppresses the banner and these
// fields only back the --help/--version machinery.
func appVersion() libver.Version {
	return libver.NewVersion(
		libver.License_MIT,
		"runns",
		"launches programs in caller-selected network namespaces",
		"2026-01-01T00:00:00Z",
		"",
		"",
		"The runns Authors",
		"RUNNS",
		struct{}{},
		0,
	)
}

// runDaemon performs the privileged startup sequence: verify we are
// root, daemonize, then build and run the supervisor until it exits.
func runDaemon(socketPath string) error {
	if os.Geteuid() != 0 {
		return fmt.Errorf("runns: must run as root")
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("runns: resolving self path: %w", err)
	}
	self, err = filepath.EvalSymlinks(self)
	if err != nil {
		return fmt.Errorf("runns: resolving self path: %w", err)
	}

	if err := daemon.Daemonize(self); err != nil {
		return fmt.Errorf("runns: daemonizing: %w", err)
	}

	log, err := daemon.NewSyslogLogger(context.Background())
	if err != nil {
		return fmt.Errorf("runns: configuring logger: %w", err)
	}

	d, err := daemon.New(daemon.Config{
		SelfPath:   self,
		SocketPath: socketPath,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("runns: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return d.Run(ctx)
}
