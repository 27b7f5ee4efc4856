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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Request is the fully decoded form of a launch request: a Header plus the
// program path, target network namespace path, argv and envp vectors it
// describes. LIST and STOP requests only ever populate Header.
type Request struct {
	Header Header
	Prog   string
	Netns  string
	Args   []string
	Env    []string
}

// ReadRequest decodes a full request (header plus payload) from r. The
// payload shape is: prog (NUL-terminated, ProgSz bytes incl. NUL), netns
// (NUL-terminated, NetnsSz bytes incl. NUL), then ArgsSz length-prefixed
// records, then EnvSz length-prefixed records. STOP/LIST headers carry no
// payload at all.
func ReadRequest(r io.Reader) (Request, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return Request{}, err
	}
	if err := h.Validate(); err != nil {
		return Request{}, err
	}

	req := Request{Header: h}
	if h.Flag.Has(FlagStop) || h.Flag.Has(FlagList) {
		return req, nil
	}

	br := bufio.NewReader(r)

	if req.Prog, err = readCString(br, h.ProgSz); err != nil {
		return Request{}, fmt.Errorf("wire: reading prog: %w", err)
	}
	if req.Netns, err = readCString(br, h.NetnsSz); err != nil {
		return Request{}, fmt.Errorf("wire: reading netns: %w", err)
	}
	if req.Args, err = readVector(br, h.ArgsSz); err != nil {
		return Request{}, fmt.Errorf("wire: reading args: %w", err)
	}
	if req.Env, err = readVector(br, h.EnvSz); err != nil {
		return Request{}, fmt.Errorf("wire: reading env: %w", err)
	}
	return req, nil
}

// WriteRequest encodes req to w in the shape ReadRequest expects. Callers
// building a launch request must set Header.ProgSz/NetnsSz/ArgsSz/EnvSz
// consistently with Prog/Netns/Args/Env; EncodeSizes does that.
func WriteRequest(w io.Writer, req Request) error {
	if err := WriteHeader(w, req.Header); err != nil {
		return err
	}
	if req.Header.Flag.Has(FlagStop) || req.Header.Flag.Has(FlagList) {
		return nil
	}
	if err := writeCString(w, req.Prog); err != nil {
		return fmt.Errorf("wire: writing prog: %w", err)
	}
	if err := writeCString(w, req.Netns); err != nil {
		return fmt.Errorf("wire: writing netns: %w", err)
	}
	if err := writeVector(w, req.Args); err != nil {
		return fmt.Errorf("wire: writing args: %w", err)
	}
	if err := writeVector(w, req.Env); err != nil {
		return fmt.Errorf("wire: writing env: %w", err)
	}
	return nil
}

// EncodeSizes fills in Header.ProgSz/NetnsSz/ArgsSz/EnvSz from the payload
// fields, including the trailing NUL each counts as part of its size.
func (req *Request) EncodeSizes() {
	req.Header.ProgSz = uint64(len(req.Prog)) + 1
	req.Header.NetnsSz = uint64(len(req.Netns)) + 1
	req.Header.ArgsSz = uint64(len(req.Args))
	req.Header.EnvSz = uint64(len(req.Env))
}

func readCString(r *bufio.Reader, declaredSz uint64) (string, error) {
	if declaredSz < 1 || declaredSz > MaxStringSz {
		return "", fmt.Errorf("invalid declared size %d", declaredSz)
	}
	buf := make([]byte, declaredSz)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	if buf[declaredSz-1] != 0 {
		return "", fmt.Errorf("missing NUL terminator")
	}
	return string(buf[:declaredSz-1]), nil
}

func writeCString(w io.Writer, s string) error {
	_, err := w.Write(append([]byte(s), 0))
	return err
}

// readVector decodes n length-prefixed records: each is a native-endian
// uint64 byte count followed by that many raw bytes (no NUL terminator;
// the record is the exact string).
func readVector(r *bufio.Reader, n uint64) ([]string, error) {
	if n == 0 {
		return nil, nil
	}
	out := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		var sz uint64
		if err := binary.Read(r, binary.NativeEndian, &sz); err != nil {
			return nil, fmt.Errorf("record %d length: %w", i, err)
		}
		if sz > MaxStringSz {
			return nil, fmt.Errorf("record %d too large (%d bytes)", i, sz)
		}
		buf := make([]byte, sz)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("record %d body: %w", i, err)
		}
		out = append(out, string(buf))
	}
	return out, nil
}

func writeVector(w io.Writer, records []string) error {
	for _, rec := range records {
		if err := binary.Write(w, binary.NativeEndian, uint64(len(rec))); err != nil {
			return err
		}
		if _, err := w.Write([]byte(rec)); err != nil {
			return err
		}
	}
	return nil
}
