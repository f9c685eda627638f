package lang

// MemStats tracks bytes a single growable buffer has been resized to, the
// way clox's reallocate() tracks one process-wide counter -- here scoped to
// whichever owner (a Chunk, an Arena) embeds it, per spec.md §9's "model as
// a per-owner mapping, not module-level state".
type MemStats struct {
	bytesAllocated int64
}

// Reallocate is the one primitive the memory manager exposes: given the
// previous byte count and desired byte count it returns a buffer of the new
// size with min(old, new) bytes preserved, and updates the owning stats. A
// newSize of zero releases the region (returns nil); an empty old slice is
// treated as a fresh allocation.
func (m *MemStats) Reallocate(old []byte, newSize int) []byte {
	m.bytesAllocated += int64(newSize - len(old))
	if newSize == 0 {
		return nil
	}
	buf := make([]byte, newSize)
	copy(buf, old)
	return buf
}

// BytesAllocated reports the live byte count, for diagnostics and tests.
func (m *MemStats) BytesAllocated() int64 { return m.bytesAllocated }

// GrowCapacity implements clox's GROW_CAPACITY: capacities start at 8 and
// double from there, amortizing the cost of append-style growth for the
// byte buffers and constant pools the chunk and arena maintain.
func GrowCapacity(oldCap int) int {
	if oldCap < 8 {
		return 8
	}
	return oldCap * 2
}

// arenaSlotSize is the nominal per-object footprint charged against an
// Arena's MemStats when its object table grows. Value is a Go interface
// (two machine words), not a fixed-size C struct, so there is no exact
// sizeof to multiply by the way clox's GROW_ARRAY(Type, ...) does; this is
// the stand-in clox's macro would compute for a two-word type.
const arenaSlotSize = 16

// Arena tracks every heap Value allocated at runtime by a VM so they can all
// be enumerated (and, on teardown, dropped) without per-object reclamation --
// spec.md §3's "released en masse when the VM is destroyed" discipline. It
// is not a mark-sweep collector: nothing is freed while the VM runs.
type Arena struct {
	objects []Value
	mem     MemStats
}

// Track registers a heap object as VM-owned and returns it unchanged, so
// call sites can be written as `vm.arena.Track(NewString(buf))`. The
// backing slice grows through MemStats.Reallocate, exactly like Chunk.Write
// grows the code buffer, so BytesAllocated reflects real runtime allocation
// rather than sitting at zero.
func (a *Arena) Track(v Value) Value {
	if len(a.objects) == cap(a.objects) {
		newCap := GrowCapacity(cap(a.objects))
		a.mem.Reallocate(make([]byte, len(a.objects)*arenaSlotSize), newCap*arenaSlotSize)
		grown := make([]Value, len(a.objects), newCap)
		copy(grown, a.objects)
		a.objects = grown
	}
	a.objects = append(a.objects, v)
	return v
}

// Objects enumerates every live object for teardown or inspection.
func (a *Arena) Objects() []Value { return a.objects }

// BytesAllocated reports the arena's own growth counter -- the figure
// VM.BytesAllocated surfaces.
func (a *Arena) BytesAllocated() int64 { return a.mem.BytesAllocated() }

// Release drops the arena's references so the objects become eligible for
// ordinary Go garbage collection; JAPL itself never frees them individually.
func (a *Arena) Release() { a.objects = nil }
