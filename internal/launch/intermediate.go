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
)

// intermediateCellFd and intermediateReqFd are the fixed fd numbers the
// intermediate process inherits: exec.Cmd.ExtraFiles always starts
// numbering at 3, and Spawn always passes the pid cell before the
// request pipe.
const (
	intermediateCellFd = 3
	intermediateReqFd  = 4
)

// RunIntermediate is cmd/runns's entrypoint when re-exec'd with
// IntermediateArg. It performs fork #2 (starting, not waiting on, the
// worker), reports the worker's pid through the inherited shared cell,
// then exits so the worker reparents to init. It never returns on the
// success path; it always calls os.Exit.
func RunIntermediate(self string) {
	cell, err := OpenPIDCell(intermediateCellFd)
	if err != nil {
		fatalf("launch: intermediate: opening pid cell: %v", err)
	}

	req, err := decodeRequest(os.NewFile(intermediateReqFd, "runns-req"))
	if err != nil {
		fatalf("launch: intermediate: decoding request: %v", err)
	}

	workerReqR, workerReqW, err := os.Pipe()
	if err != nil {
		fatalf("launch: intermediate: worker request pipe: %v", err)
	}

	encodeErr := make(chan error, 1)
	go func() {
		encodeErr <- encodeRequest(workerReqW, req)
		workerReqW.Close()
	}()

	cmd := exec.Command(self, WorkerArg)
	cmd.ExtraFiles = []*os.File{workerReqR}
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr

	if err := cmd.Start(); err != nil {
		fatalf("launch: intermediate: starting worker: %v", err)
	}
	workerReqR.Close()
	if err := <-encodeErr; err != nil {
		fatalf("launch: intermediate: encoding worker request: %v", err)
	}

	cell.Write(int32(cmd.Process.Pid))
	cell.Close()
	os.Exit(0)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
