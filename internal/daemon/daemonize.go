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
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// daemonizedEnv marks a re-exec'd process as already detached, so
// Daemonize does not fork a second time when the grandchild starts
// running its normal main().
const daemonizedEnv = "__RUNNS_DAEMONIZED"

// Daemonize detaches the process from its controlling terminal the way
// the original daemon's daemon(0, 0) call did. A bare fork() without an
// immediate exec is not safe in a multi-threaded Go process, so this
// re-execs self with a marker environment variable instead: the first
// invocation starts a new, session-leading copy of itself with its
// standard streams redirected to /dev/null and its working directory
// changed to /, then exits 0 itself; the re-exec'd copy recognizes the
// marker and returns immediately to continue as the running daemon.
//
// On success Daemonize never returns in the parent: it calls os.Exit(0)
// before control would reach the caller. A setup failure (opening
// /dev/null or starting the copy) is returned as an error instead.
func Daemonize(self string) error {
	if os.Getenv(daemonizedEnv) != "" {
		return nil
	}

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("daemon: opening %s: %w", os.DevNull, err)
	}
	defer devnull.Close()

	cmd := exec.Command(self, os.Args[1:]...)
	cmd.Env = append(os.Environ(), daemonizedEnv+"=1")
	cmd.Stdin = devnull
	cmd.Stdout = devnull
	cmd.Stderr = devnull
	cmd.Dir = "/"
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("daemon: re-exec for daemonize: %w", err)
	}

	os.Exit(0)
	return nil // unreachable
}
