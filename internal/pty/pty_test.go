//go:build linux

package pty

import (
	"golang.org/x/sys/unix"
	"testing"
)

func TestOpen(t *testing.T) {
	master, replica, err := Open(unix.Termios{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer master.Close()
	defer replica.Close()

	if master.Name() != "/dev/ptmx" {
		t.Fatalf("master.Name() = %q, want /dev/ptmx", master.Name())
	}
	if replica.Name() == "" {
		t.Fatalf("expected a non-empty replica device path")
	}
}
