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

// Package pty provisions a fresh controlling pseudo-terminal for a worker
// process, the Go equivalent of the original daemon's create_ptms(): open
// the multiplexer, unlock and resolve the replica side, apply the
// caller-supplied termios, then wire it up as stdin/stdout/stderr.
package pty

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Open allocates a new pty pair, applies mode to the replica side, and
// returns both ends. On error nothing is left open. On success the
// caller owns both files: the worker closes Replica once Attach has
// duplicated it onto stdio, and keeps Master open across exec.
func Open(mode unix.Termios) (master, replica *os.File, err error) {
	m, err := os.OpenFile("/dev/ptmx", os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("pty: open /dev/ptmx: %w", err)
	}
	defer func() {
		if err != nil {
			m.Close()
		}
	}()

	if err = unlock(m); err != nil {
		return nil, nil, fmt.Errorf("pty: unlockpt: %w", err)
	}

	name, err := ptsName(m)
	if err != nil {
		return nil, nil, fmt.Errorf("pty: ptsname: %w", err)
	}

	r, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("pty: open %s: %w", name, err)
	}
	defer func() {
		if err != nil {
			r.Close()
		}
	}()

	if err = setTermios(r, mode); err != nil {
		return nil, nil, fmt.Errorf("pty: set termios on %s: %w", name, err)
	}

	return m, r, nil
}

// Attach dup2s replica onto stdin, stdout and stderr, matching the
// original's wiring of the worker's standard streams to the pty replica.
func Attach(replica *os.File) error {
	fd := int(replica.Fd())
	for _, target := range []int{unix.Stdin, unix.Stdout, unix.Stderr} {
		if target == fd {
			continue
		}
		if err := unix.Dup2(fd, target); err != nil {
			return fmt.Errorf("pty: dup2 to fd %d: %w", target, err)
		}
	}
	return nil
}

func unlock(m *os.File) error {
	var locked int32
	if err := ioctl(m.Fd(), unix.TIOCSPTLCK, uintptr(unsafe.Pointer(&locked))); err != nil {
		return err
	}
	return nil
}

func ptsName(m *os.File) (string, error) {
	var n int32
	if err := ioctl(m.Fd(), unix.TIOCGPTN, uintptr(unsafe.Pointer(&n))); err != nil {
		return "", err
	}
	return fmt.Sprintf("/dev/pts/%d", n), nil
}

func setTermios(f *os.File, mode unix.Termios) error {
	return ioctl(f.Fd(), unix.TCSETS, uintptr(unsafe.Pointer(&mode)))
}

func ioctl(fd uintptr, req uint, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), arg)
	if errno != 0 {
		return errno
	}
	return nil
}
