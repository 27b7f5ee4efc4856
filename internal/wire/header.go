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

// Package wire implements the runns client/daemon wire protocol: a fixed-size
// header followed by an optional variable-length payload, all in native
// byte order since the protocol never leaves the local host.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// Flag is the bitset carried in Header.Flag.
type Flag uint32

const (
	// FlagStop asks the daemon to shut down. Only honored from UID 0.
	FlagStop Flag = 1 << 1
	// FlagList asks the daemon to return the caller's live workers.
	FlagList Flag = 1 << 2
	// FlagNewPTY asks the launch pipeline to attach a fresh controlling pty.
	FlagNewPTY Flag = 1 << 3
)

func (f Flag) Has(bit Flag) bool { return f&bit != 0 }

// Size caps for payload fields. PathMax mirrors Linux's PATH_MAX; the vector
// caps are implementation-defined, chosen generously but boundedly so a
// corrupt or hostile header cannot make the daemon allocate unbounded memory.
const (
	PathMax     = unix.PathMax
	MaxVector   = 1 << 16 // max number of args or env records per request
	MaxStringSz = 1 << 20 // max bytes for a single arg/env record
)

// Header is the fixed-size record that precedes every request's payload.
// Field order and sizes mirror the original runns_header C struct: four
// machine-word lengths, a flag bitset, an opaque termios blob and the
// preserved (but unused by launch) op_mode field.
type Header struct {
	ProgSz  uint64
	NetnsSz uint64
	EnvSz   uint64
	ArgsSz  uint64
	Flag    Flag
	_       [4]byte // padding to keep TMode 8-byte aligned like the C struct
	TMode   unix.Termios
	OpMode  uint32
	_       [4]byte
}

// Validate rejects headers whose declared sizes could not possibly be
// serviced, before any payload read is attempted.
func (h *Header) Validate() error {
	if h.Flag.Has(FlagStop) || h.Flag.Has(FlagList) {
		return nil
	}
	if h.ProgSz < 1 || h.ProgSz > PathMax {
		return fmt.Errorf("wire: invalid prog_sz %d", h.ProgSz)
	}
	if h.NetnsSz < 1 || h.NetnsSz > PathMax {
		return fmt.Errorf("wire: invalid netns_sz %d", h.NetnsSz)
	}
	if h.ArgsSz > MaxVector {
		return fmt.Errorf("wire: invalid args_sz %d", h.ArgsSz)
	}
	if h.EnvSz > MaxVector {
		return fmt.Errorf("wire: invalid env_sz %d", h.EnvSz)
	}
	return nil
}

// ReadHeader decodes a fixed-size Header from r in native byte order.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.NativeEndian, &h); err != nil {
		return Header{}, fmt.Errorf("wire: short read on header: %w", err)
	}
	return h, nil
}

// WriteHeader encodes h to w in native byte order.
func WriteHeader(w io.Writer, h Header) error {
	if err := binary.Write(w, binary.NativeEndian, h); err != nil {
		return fmt.Errorf("wire: short write on header: %w", err)
	}
	return nil
}
