package wire

import (
	"bytes"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		ProgSz:  5,
		NetnsSz: 4,
		EnvSz:   2,
		ArgsSz:  1,
		Flag:    FlagNewPTY,
		OpMode:  7,
	}

	var buf bytes.Buffer
	if err := WriteHeader(&buf, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	got, err := ReadHeader(&buf)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestHeaderValidate(t *testing.T) {
	cases := []struct {
		name string
		h    Header
		ok   bool
	}{
		{"list is always valid", Header{Flag: FlagList}, true},
		{"stop is always valid", Header{Flag: FlagStop}, true},
		{"zero prog_sz rejected", Header{ProgSz: 0, NetnsSz: 1}, false},
		{"oversize prog_sz rejected", Header{ProgSz: PathMax + 1, NetnsSz: 1}, false},
		{"oversize args_sz rejected", Header{ProgSz: 1, NetnsSz: 1, ArgsSz: MaxVector + 1}, false},
		{"minimal valid launch header", Header{ProgSz: 1, NetnsSz: 1}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.h.Validate()
			if (err == nil) != c.ok {
				t.Fatalf("Validate() error = %v, want ok=%v", err, c.ok)
			}
		})
	}
}

func TestRequestRoundTrip(t *testing.T) {
	req := Request{
		Prog:  "/usr/bin/env",
		Netns: "/var/run/netns/blue",
		Args:  []string{"/usr/bin/env", "sh"},
		Env:   []string{"HOME=/home/alice", "PATH=/usr/bin"},
	}
	req.EncodeSizes()

	var buf bytes.Buffer
	if err := WriteRequest(&buf, req); err != nil {
		t.Fatalf("WriteRequest: %v", err)
	}

	got, err := ReadRequest(&buf)
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if got.Prog != req.Prog || got.Netns != req.Netns {
		t.Fatalf("prog/netns mismatch: got %+v", got)
	}
	if len(got.Args) != len(req.Args) || got.Args[1] != "sh" {
		t.Fatalf("args mismatch: got %v, want %v", got.Args, req.Args)
	}
	if len(got.Env) != 2 || got.Env[0] != "HOME=/home/alice" {
		t.Fatalf("env mismatch: got %v, want %v", got.Env, req.Env)
	}
}

func TestRequestStopHasNoPayload(t *testing.T) {
	req := Request{Header: Header{Flag: FlagStop}}

	var buf bytes.Buffer
	if err := WriteRequest(&buf, req); err != nil {
		t.Fatalf("WriteRequest: %v", err)
	}
	if buf.Len() != int(headerSize()) {
		t.Fatalf("expected only header bytes for STOP, got %d bytes", buf.Len())
	}

	got, err := ReadRequest(&buf)
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if !got.Header.Flag.Has(FlagStop) {
		t.Fatalf("expected FlagStop to survive round trip")
	}
}

func TestListReplyRoundTrip(t *testing.T) {
	workers := []WorkerInfo{
		{Uid: 1000, Pid: 4242},
		{Uid: 0, Pid: 1},
	}

	var buf bytes.Buffer
	if err := WriteListReply(&buf, workers); err != nil {
		t.Fatalf("WriteListReply: %v", err)
	}

	got, err := ReadListReply(&buf)
	if err != nil {
		t.Fatalf("ReadListReply: %v", err)
	}
	if len(got) != 2 || got[0] != workers[0] || got[1] != workers[1] {
		t.Fatalf("list reply mismatch: got %+v, want %+v", got, workers)
	}
}

func TestListReplyEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteListReply(&buf, nil); err != nil {
		t.Fatalf("WriteListReply: %v", err)
	}
	got, err := ReadListReply(&buf)
	if err != nil {
		t.Fatalf("ReadListReply: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStatus(&buf, StatusError); err != nil {
		t.Fatalf("WriteStatus: %v", err)
	}
	got, err := ReadStatus(&buf)
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}
	if got != StatusError {
		t.Fatalf("got %v, want %v", got, StatusError)
	}
}

func headerSize() int64 {
	var buf bytes.Buffer
	_ = WriteHeader(&buf, Header{})
	return int64(buf.Len())
}
