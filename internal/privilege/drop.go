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

// Package privilege drops the worker process from root down to the
// requesting caller's uid before the target program is ever exec'd.
package privilege

import (
	"fmt"
	"os"
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"
)

// Drop resolves uid to its passwd entry, applies its supplementary
// groups, group id and user id in that order, then chdirs to its home
// directory. The order matters: group id must change before user id
// while the process still holds CAP_SETGID, and the home directory
// change happens last so it is evaluated with the caller's own
// permissions rather than root's.
func Drop(uid uint32) error {
	pw, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return fmt.Errorf("privilege: lookup uid %d: %w", uid, err)
	}

	gid, err := strconv.ParseUint(pw.Gid, 10, 32)
	if err != nil {
		return fmt.Errorf("privilege: parse gid for uid %d: %w", uid, err)
	}

	groups, err := pw.GroupIds()
	if err != nil {
		return fmt.Errorf("privilege: lookup groups for uid %d: %w", uid, err)
	}
	groupIDs := make([]int, 0, len(groups))
	for _, g := range groups {
		n, err := strconv.ParseUint(g, 10, 32)
		if err != nil {
			continue
		}
		groupIDs = append(groupIDs, int(n))
	}
	if err := unix.Setgroups(groupIDs); err != nil {
		return fmt.Errorf("privilege: setgroups for uid %d: %w", uid, err)
	}

	if err := unix.Setgid(int(gid)); err != nil {
		return fmt.Errorf("privilege: setgid(%d): %w", gid, err)
	}
	if err := unix.Setuid(int(uid)); err != nil {
		return fmt.Errorf("privilege: setuid(%d): %w", uid, err)
	}

	if err := os.Chdir(pw.HomeDir); err != nil {
		return fmt.Errorf("privilege: chdir to %s: %w", pw.HomeDir, err)
	}
	return nil
}
