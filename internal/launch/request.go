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

// Package launch implements the double-fork-equivalent pipeline that
// turns an accepted request into a running worker process inside the
// caller-selected network namespace, under the caller's own uid.
package launch

import (
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"github.com/sh1r4s3/runns-go/internal/wire"
)

// Request is the fully resolved description of one launch, carrying the
// peer uid established by the accept loop (never trusted from the wire
// payload itself) alongside the program, namespace, argv/envp and
// optional pty the caller asked for.
type Request struct {
	Uid    uint32
	Prog   string
	Netns  string
	Args   []string
	Env    []string
	NewPTY bool
	TMode  unix.Termios
}

// FromWire builds a launch Request from a decoded wire.Request and the
// uid the accept loop obtained via SO_PEERCRED.
func FromWire(uid uint32, req wire.Request) Request {
	return Request{
		Uid:    uid,
		Prog:   req.Prog,
		Netns:  req.Netns,
		Args:   req.Args,
		Env:    req.Env,
		NewPTY: req.Header.Flag.Has(wire.FlagNewPTY),
		TMode:  req.Header.TMode,
	}
}

// toWire packages a Request back into a wire.Request for the internal
// pipes between daemon, intermediate and worker, which reuse the exact
// same codec as the external client protocol rather than a second
// serialization scheme.
func (r Request) toWire() wire.Request {
	var flag wire.Flag
	if r.NewPTY {
		flag |= wire.FlagNewPTY
	}
	wr := wire.Request{
		Header: wire.Header{Flag: flag, TMode: r.TMode},
		Prog:   r.Prog,
		Netns:  r.Netns,
		Args:   r.Args,
		Env:    r.Env,
	}
	wr.EncodeSizes()
	return wr
}

// encodeRequest writes uid followed by the wire-encoded request body to
// w, the format used on the internal daemon -> intermediate -> worker
// pipes.
func encodeRequest(w io.Writer, r Request) error {
	if err := binary.Write(w, binary.NativeEndian, r.Uid); err != nil {
		return fmt.Errorf("launch: writing uid: %w", err)
	}
	return wire.WriteRequest(w, r.toWire())
}

// decodeRequest reads a Request written by encodeRequest.
func decodeRequest(r io.Reader) (Request, error) {
	var uid uint32
	if err := binary.Read(r, binary.NativeEndian, &uid); err != nil {
		return Request{}, fmt.Errorf("launch: reading uid: %w", err)
	}
	wr, err := wire.ReadRequest(r)
	if err != nil {
		return Request{}, fmt.Errorf("launch: reading wire body: %w", err)
	}
	return FromWire(uid, wr), nil
}
