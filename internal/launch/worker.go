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

package launch

import (
	"fmt"
	"os"
	"runtime"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/sh1r4s3/runns-go/internal/privilege"
	"github.com/sh1r4s3/runns-go/internal/pty"
)

// workerReqFd is the fd number the worker inherits its request on: it
// only ever receives ExtraFiles[0] from the intermediate.
const workerReqFd = 3

// RunWorker is cmd/runns's entrypoint when re-exec'd with WorkerArg. It
// never returns on success: unix.Setsid, the namespace switch, the
// privilege drop and finally syscall.Exec all happen here, in that
// order, ending with the worker process becoming the target program in
// place.
func RunWorker() error {
	// setns, setgid and setuid below are thread-scoped; nothing may
	// migrate this goroutine to another OS thread between them and
	// execve. The lock is never released: execve replaces the image.
	runtime.LockOSThread()

	req, err := decodeRequest(os.NewFile(workerReqFd, "runns-req"))
	if err != nil {
		return fmt.Errorf("launch: worker: decoding request: %w", err)
	}

	if _, err := unix.Setsid(); err != nil {
		return fmt.Errorf("launch: worker: setsid: %w", err)
	}

	if req.NewPTY {
		master, replica, err := pty.Open(req.TMode)
		if err != nil {
			return fmt.Errorf("launch: worker: opening pty: %w", err)
		}
		if err := pty.Attach(replica); err != nil {
			return fmt.Errorf("launch: worker: attaching pty: %w", err)
		}
		// master is intentionally left open across execve, matching
		// create_ptms() in the original daemon; closing it here would
		// hang up the replica now sitting on the worker's stdio.
		_ = master
		replica.Close()
	}

	nsFile, err := os.Open(req.Netns)
	if err != nil {
		return fmt.Errorf("launch: worker: opening netns %s: %w", req.Netns, err)
	}
	if err := unix.Setns(int(nsFile.Fd()), unix.CLONE_NEWNET); err != nil {
		nsFile.Close()
		return fmt.Errorf("launch: worker: setns %s: %w", req.Netns, err)
	}
	nsFile.Close()

	if err := privilege.Drop(req.Uid); err != nil {
		return fmt.Errorf("launch: worker: dropping privilege: %w", err)
	}

	argv := buildArgv(req.Prog, req.Args)
	if err := syscall.Exec(req.Prog, argv, req.Env); err != nil {
		return fmt.Errorf("launch: worker: exec %s: %w", req.Prog, err)
	}
	return nil // unreachable on success
}

// buildArgv assembles the argv execve receives: position 0 is always the
// program path itself, with the request's extra arguments filling the
// middle. req.Args never includes the program path (the original client
// sent argc-optind, the extra positional arguments only).
func buildArgv(prog string, extra []string) []string {
	argv := make([]string, 0, len(extra)+1)
	argv = append(argv, prog)
	return append(argv, extra...)
}
