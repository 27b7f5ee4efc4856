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
	"os/exec"

	"golang.org/x/sys/unix"
)

// IntermediateArg and WorkerArg are the argv[1] sentinels cmd/runns looks
// for to re-exec itself into the intermediate or worker role, instead of
// running its normal daemon/CLI entrypoint.
const (
	IntermediateArg = "__runns_intermediate"
	WorkerArg       = "__runns_worker"
)

// Spawn runs the full launch pipeline for req: it re-execs self as the
// intermediate process (fork #1, waited on), which itself re-execs self
// as the worker (fork #2, reparented to init once the intermediate
// exits), and returns the worker's pid once the intermediate has reported
// it through the shared PID cell. The worker's own exit status is never
// observed here: registering (uid, pid) is the daemon's only remaining
// job, matching the fire-and-forget launch model.
func Spawn(self string, req Request) (int32, error) {
	cell, err := NewPIDCell()
	if err != nil {
		return 0, err
	}
	defer cell.Close()

	// cellFile wraps a dup of the pid cell's fd, not the fd itself: an
	// *os.File installs a GC finalizer that closes whatever fd it
	// wraps, and cell.Close (deferred above) already owns closing
	// cell.Fd(). Sharing the raw fd between the two would let the
	// finalizer close a descriptor number cell still thinks is open
	// (possibly already reused by then).
	cellDup, err := unix.Dup(cell.Fd())
	if err != nil {
		return 0, fmt.Errorf("launch: duplicating pid cell fd: %w", err)
	}
	cellFile := os.NewFile(uintptr(cellDup), "runns-pidcell")

	reqR, reqW, err := os.Pipe()
	if err != nil {
		cellFile.Close()
		return 0, fmt.Errorf("launch: request pipe: %w", err)
	}

	encodeErr := make(chan error, 1)
	go func() {
		encodeErr <- encodeRequest(reqW, req)
		reqW.Close()
	}()

	cmd := exec.Command(self, IntermediateArg)
	cmd.ExtraFiles = []*os.File{cellFile, reqR}
	cmd.Stdin = nil
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cellFile.Close()
		reqR.Close()
		return 0, fmt.Errorf("launch: starting intermediate: %w", err)
	}
	cellFile.Close()
	reqR.Close()

	waitErr := cmd.Wait()
	if err := <-encodeErr; err != nil {
		return 0, fmt.Errorf("launch: encoding request: %w", err)
	}
	if waitErr != nil {
		return 0, fmt.Errorf("launch: intermediate exited with error: %w", waitErr)
	}

	pid, ready := cell.Read()
	if !ready {
		return 0, fmt.Errorf("launch: intermediate exited without reporting a worker pid")
	}
	return pid, nil
}
