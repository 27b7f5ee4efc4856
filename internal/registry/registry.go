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

// Package registry tracks the live worker processes launched by the
// daemon: a fixed-capacity table of (uid, pid) pairs, pruned lazily by
// signal-0 liveness checks rather than by a reaper goroutine, matching the
// original daemon's "check on demand, compact in place" approach.
package registry

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// MaxWorkers bounds the number of concurrently tracked workers. Matches
// the original daemon's fixed-size child table.
const MaxWorkers = 1024

// Entry is a single tracked worker.
type Entry struct {
	Uid uint32
	Pid int32
}

// Registry is a fixed-capacity, mutex-guarded table of live workers. The
// zero value is ready to use.
type Registry struct {
	mu      sync.Mutex
	entries [MaxWorkers]Entry
	count   int
}

// ErrFull is returned by Insert when the registry is already at capacity.
var ErrFull = fmt.Errorf("registry: full (max %d workers)", MaxWorkers)

// Insert records a newly launched worker. Callers should Prune first if
// they expect stale entries to make room.
func (r *Registry) Insert(uid uint32, pid int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count >= MaxWorkers {
		return ErrFull
	}
	r.entries[r.count] = Entry{Uid: uid, Pid: pid}
	r.count++
	return nil
}

// Prune removes entries whose pid is no longer alive, using kill(pid, 0)
// as a pure liveness probe (no signal delivered). Dead entries are
// compacted by swapping in the last live entry and shrinking the count,
// walking from the end so a swap never revisits an already-checked slot.
func (r *Registry) Prune() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := r.count - 1; i >= 0; i-- {
		if alive(r.entries[i].Pid) {
			continue
		}
		last := r.count - 1
		r.entries[i] = r.entries[last]
		r.entries[last] = Entry{}
		r.count--
	}
}

// ListFor returns a snapshot of the live entries owned by uid, pruning
// dead entries first so the result reflects reality as closely as a
// point-in-time check can.
func (r *Registry) ListFor(uid uint32) []Entry {
	r.Prune()

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, 0, r.count)
	for i := 0; i < r.count; i++ {
		if r.entries[i].Uid == uid {
			out = append(out, r.entries[i])
		}
	}
	return out
}

// Len reports the current number of tracked entries without pruning.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func alive(pid int32) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(int(pid), 0)
	if err == nil {
		return true
	}
	// EPERM still means the process exists, just owned by someone we
	// cannot signal; only ESRCH proves it is gone.
	return err != unix.ESRCH
}
