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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nabbar/golib/file/perm"

	"github.com/sh1r4s3/runns-go/internal/peercred"
)

// DefaultSocketPath matches the original daemon's compiled-in default.
const DefaultSocketPath = "/var/run/runns/runns.socket"

// DefaultSocketDir is removed on clean shutdown only when the socket
// path in use is still DefaultSocketPath: the directory of a
// caller-supplied --socket path is left in place, even when bind
// created it.
const DefaultSocketDir = "/var/run/runns"

// DefaultSocketPerm is the mode applied to the socket file once bound:
// rwxrwxr-x, group-writable so members of the owning group can connect.
var DefaultSocketPerm = perm.ParseFileMode(0775)

// bind removes any stale socket file, creates the parent directory if
// needed, listens on path, and applies DefaultSocketPerm (or d.socketPerm
// if set) to the resulting socket file.
func (d *Daemon) bind(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("daemon: creating socket directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("daemon: removing stale socket: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("daemon: stat socket path: %w", err)
	}

	l, err := peercred.Listen(ctx, path)
	if err != nil {
		return fmt.Errorf("daemon: binding socket %s: %w", path, err)
	}

	if err := os.Chown(path, 0, d.groupGid); err != nil {
		l.Close()
		return fmt.Errorf("daemon: chown socket to root:runns: %w", err)
	}

	mode := DefaultSocketPerm
	if d.socketPerm != 0 {
		mode = d.socketPerm
	}
	if err := os.Chmod(path, mode.FileMode()); err != nil {
		l.Close()
		return fmt.Errorf("daemon: chmod socket: %w", err)
	}

	d.listener = l
	return nil
}
