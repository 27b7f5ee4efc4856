package registry

import (
	"os"
	"testing"
)

func TestInsertAndListFor(t *testing.T) {
	var r Registry

	self := int32(os.Getpid())
	if err := r.Insert(1000, self); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := r.Insert(1000, self); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := r.Insert(0, self); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got := r.ListFor(1000)
	if len(got) != 2 {
		t.Fatalf("ListFor(1000) = %v, want 2 entries", got)
	}
	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}
}

func TestPruneCompactsDeadEntries(t *testing.T) {
	var r Registry

	self := int32(os.Getpid())
	// A pid that is essentially guaranteed not to exist.
	const deadPid = int32(1 << 30)

	if err := r.Insert(1, deadPid); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := r.Insert(2, self); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := r.Insert(3, deadPid); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	r.Prune()

	if r.Len() != 1 {
		t.Fatalf("Len() after Prune = %d, want 1", r.Len())
	}
	got := r.ListFor(2)
	if len(got) != 1 || got[0].Pid != self {
		t.Fatalf("surviving entry = %v, want uid=2 pid=%d", got, self)
	}
}

func TestInsertFullRejects(t *testing.T) {
	var r Registry
	self := int32(os.Getpid())

	for i := 0; i < MaxWorkers; i++ {
		if err := r.Insert(uint32(i), self); err != nil {
			t.Fatalf("Insert #%d: %v", i, err)
		}
	}
	if err := r.Insert(9999, self); err != ErrFull {
		t.Fatalf("Insert past capacity = %v, want ErrFull", err)
	}
}
