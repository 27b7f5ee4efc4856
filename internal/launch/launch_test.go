package launch

import (
	"io"
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

func TestRequestEncodeDecodeRoundTrip(t *testing.T) {
	want := Request{
		Uid:    4242,
		Prog:   "/usr/bin/env",
		Netns:  "/var/run/netns/blue",
		Args:   []string{"/usr/bin/env", "sh", "-c", "true"},
		Env:    []string{"HOME=/home/alice"},
		NewPTY: true,
		TMode:  unix.Termios{},
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()

	done := make(chan error, 1)
	go func() {
		done <- encodeRequest(w, want)
		w.Close()
	}()

	got, err := decodeRequest(r)
	if err != nil {
		t.Fatalf("decodeRequest: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("encodeRequest: %v", err)
	}

	if got.Uid != want.Uid || got.Prog != want.Prog || got.Netns != want.Netns || got.NewPTY != want.NewPTY {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
	if len(got.Args) != len(want.Args) || len(got.Env) != len(want.Env) {
		t.Fatalf("vector length mismatch: got args=%v env=%v", got.Args, got.Env)
	}
}

func TestPIDCellWriteRead(t *testing.T) {
	cell, err := NewPIDCell()
	if err != nil {
		t.Fatalf("NewPIDCell: %v", err)
	}
	defer cell.Close()

	if _, ready := cell.Read(); ready {
		t.Fatalf("fresh cell should not be ready")
	}

	cell.Write(12345)
	pid, ready := cell.Read()
	if !ready || pid != 12345 {
		t.Fatalf("Read() = (%d, %v), want (12345, true)", pid, ready)
	}
}

func TestPIDCellSharedAcrossMappings(t *testing.T) {
	cell, err := NewPIDCell()
	if err != nil {
		t.Fatalf("NewPIDCell: %v", err)
	}
	defer cell.Close()

	cell.Write(777)

	reopened, err := OpenPIDCell(cell.Fd())
	if err != nil {
		t.Fatalf("OpenPIDCell: %v", err)
	}

	pid, ready := reopened.Read()
	if !ready || pid != 777 {
		t.Fatalf("second mapping Read() = (%d, %v), want (777, true)", pid, ready)
	}
	// Unmap only; the fd itself is owned by the original cell.
	_ = unix.Munmap(reopened.mem)
}

var _ io.Closer = (*PIDCell)(nil)
