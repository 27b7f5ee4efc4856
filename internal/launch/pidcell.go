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
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// pidCellSize is one machine word: big enough for an int32 pid plus a
// ready flag, native-endian encoded.
const pidCellSize = 8

// PIDCell is a small MAP_SHARED page backed by an anonymous memfd, used to
// hand the worker's pid from the intermediate process back to the daemon
// without either of them being the other's direct child. This is the
// shared-memory equivalent of the original double fork's inherited page.
type PIDCell struct {
	fd  int
	mem []byte
}

// NewPIDCell creates a fresh memfd-backed shared cell, sized for one pid
// and a ready flag. The returned cell's Fd should be passed to the
// intermediate process via exec.Cmd.ExtraFiles.
func NewPIDCell() (*PIDCell, error) {
	fd, err := unix.MemfdCreate("runns-pidcell", 0)
	if err != nil {
		return nil, fmt.Errorf("launch: memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, pidCellSize); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("launch: ftruncate pidcell: %w", err)
	}
	mem, err := unix.Mmap(fd, 0, pidCellSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("launch: mmap pidcell: %w", err)
	}
	return &PIDCell{fd: fd, mem: mem}, nil
}

// OpenPIDCell maps an inherited memfd (received over ExtraFiles by a
// re-exec'd child) as a PIDCell.
func OpenPIDCell(fd int) (*PIDCell, error) {
	mem, err := unix.Mmap(fd, 0, pidCellSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("launch: mmap inherited pidcell: %w", err)
	}
	return &PIDCell{fd: fd, mem: mem}, nil
}

// Fd is the underlying memfd, for passing across exec.Cmd.ExtraFiles.
func (c *PIDCell) Fd() int { return c.fd }

// Write stores pid then sets the ready flag last, so a racing reader
// never observes a pid without the flag that marks it valid.
func (c *PIDCell) Write(pid int32) {
	binary.NativeEndian.PutUint32(c.mem[0:4], uint32(pid))
	binary.NativeEndian.PutUint32(c.mem[4:8], 1)
}

// Read returns the stored pid and whether it has been written yet.
func (c *PIDCell) Read() (pid int32, ready bool) {
	ready = binary.NativeEndian.Uint32(c.mem[4:8]) == 1
	pid = int32(binary.NativeEndian.Uint32(c.mem[0:4]))
	return pid, ready
}

// Close unmaps the cell and closes its backing fd.
func (c *PIDCell) Close() error {
	if err := unix.Munmap(c.mem); err != nil {
		return err
	}
	return unix.Close(c.fd)
}
