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

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WorkerInfo is one row of a LIST reply: a live worker's owning uid and pid.
type WorkerInfo struct {
	Uid uint32
	Pid uint32
}

// WriteListReply encodes a LIST reply as a uint32 count followed by that
// many WorkerInfo records, in native byte order.
func WriteListReply(w io.Writer, workers []WorkerInfo) error {
	if err := binary.Write(w, binary.NativeEndian, uint32(len(workers))); err != nil {
		return fmt.Errorf("wire: writing list count: %w", err)
	}
	for i, wk := range workers {
		if err := binary.Write(w, binary.NativeEndian, wk); err != nil {
			return fmt.Errorf("wire: writing list record %d: %w", i, err)
		}
	}
	return nil
}

// ReadListReply decodes a LIST reply written by WriteListReply.
func ReadListReply(r io.Reader) ([]WorkerInfo, error) {
	var count uint32
	if err := binary.Read(r, binary.NativeEndian, &count); err != nil {
		return nil, fmt.Errorf("wire: reading list count: %w", err)
	}
	if count > MaxVector {
		return nil, fmt.Errorf("wire: list count %d exceeds cap", count)
	}
	out := make([]WorkerInfo, count)
	for i := range out {
		if err := binary.Read(r, binary.NativeEndian, &out[i]); err != nil {
			return nil, fmt.Errorf("wire: reading list record %d: %w", i, err)
		}
	}
	return out, nil
}

// ExitStatus is the single reply byte a LAUNCH request gets once the
// daemon has registered (or failed to register) the worker. It is not the
// exit status of the launched program itself: the daemon returns as soon
// as the worker pid is known, matching the "fire and forget" launch model.
type ExitStatus uint8

const (
	// StatusOK means the worker process was started and registered.
	StatusOK ExitStatus = 0
	// StatusError means the request was rejected, the launch failed, or
	// the started worker could not be registered.
	StatusError ExitStatus = 1
)

// WriteStatus writes a single status byte.
func WriteStatus(w io.Writer, s ExitStatus) error {
	_, err := w.Write([]byte{byte(s)})
	return err
}

// ReadStatus reads a single status byte.
func ReadStatus(r io.Reader) (ExitStatus, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("wire: reading status: %w", err)
	}
	return ExitStatus(buf[0]), nil
}
