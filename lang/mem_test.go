package lang

import (
	"bytes"
	"testing"
)

func TestGrowCapacityDoublesFromEight(t *testing.T) {
	if got := GrowCapacity(0); got != 8 {
		t.Fatalf("expected initial capacity 8, got %d", got)
	}
	if got := GrowCapacity(8); got != 16 {
		t.Fatalf("expected doubling from 8, got %d", got)
	}
	if got := GrowCapacity(256); got != 512 {
		t.Fatalf("expected doubling from 256, got %d", got)
	}
}

func TestReallocatePreservesBytesAndTracksDelta(t *testing.T) {
	var mem MemStats
	old := []byte{1, 2, 3}
	buf := mem.Reallocate(old, 8)
	if len(buf) != 8 {
		t.Fatalf("expected resized buffer of length 8, got %d", len(buf))
	}
	for i, b := range old {
		if buf[i] != b {
			t.Fatalf("expected preserved byte %d at index %d, got %d", b, i, buf[i])
		}
	}
	if mem.BytesAllocated() != 5 {
		t.Fatalf("expected delta of 5 bytes tracked, got %d", mem.BytesAllocated())
	}
}

func TestReallocateToZeroReleases(t *testing.T) {
	var mem MemStats
	buf := mem.Reallocate([]byte{1, 2}, 0)
	if buf != nil {
		t.Fatalf("expected nil buffer when releasing, got %v", buf)
	}
}

func TestChunkWriteGrowsThroughMemStats(t *testing.T) {
	c := NewChunk()
	for i := 0; i < 20; i++ {
		c.WriteOp(OpNil, 1)
	}
	if c.BytesAllocated() == 0 {
		t.Fatal("expected chunk code growth past initial capacity to register on BytesAllocated")
	}
}

func TestChunkAddConstantGrowsThroughMemStats(t *testing.T) {
	c := NewChunk()
	for i := 0; i < 20; i++ {
		c.AddConstant(IntegerVal{Val: int64(i)})
	}
	if c.BytesAllocated() == 0 {
		t.Fatal("expected constant pool growth past initial capacity to register on BytesAllocated")
	}
}

func TestArenaTrackGrowsAndEnumerates(t *testing.T) {
	var a Arena
	for i := 0; i < 20; i++ {
		a.Track(NewString([]byte("x")))
	}
	if len(a.Objects()) != 20 {
		t.Fatalf("expected 20 tracked objects, got %d", len(a.Objects()))
	}
	if a.BytesAllocated() == 0 {
		t.Fatal("expected arena growth past initial capacity to register on BytesAllocated")
	}
}

func TestArenaReleaseDropsObjects(t *testing.T) {
	var a Arena
	a.Track(NewString([]byte("x")))
	a.Release()
	if len(a.Objects()) != 0 {
		t.Fatalf("expected no objects after release, got %d", len(a.Objects()))
	}
}

func TestVMBytesAllocatedReflectsStringConcatenation(t *testing.T) {
	var stdout, stderr bytes.Buffer
	vm := NewVM(&stdout, &stderr)
	if err := RunScript(vm, "test", `print "a" + "b";`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vm.BytesAllocated() == 0 {
		t.Fatal("expected string concatenation to register on VM.BytesAllocated")
	}
	if len(vm.Arena().Objects()) == 0 {
		t.Fatal("expected the concatenated string to be tracked in the arena")
	}
}

func TestVMCloseReleasesArena(t *testing.T) {
	var stdout, stderr bytes.Buffer
	vm := NewVM(&stdout, &stderr)
	if err := RunScript(vm, "test", `print "a" + "b";`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vm.Close()
	if len(vm.Arena().Objects()) != 0 {
		t.Fatalf("expected Close to release tracked objects, got %d", len(vm.Arena().Objects()))
	}
}
