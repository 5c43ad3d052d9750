// Package region attributes memory use to coarse subsystem regions. Code
// brackets a phase of work with Enter/Exit and reports its allocations to a
// Tracker; the tracker charges them to whatever region is current at the
// time. The zero region is General, so unbracketed code is still accounted
// for.
package region

import "sync/atomic"

// Region identifies a subsystem for allocation accounting.
type Region int

const (
	General Region = iota
	Graphics
	Physics
	Audio
	Scene
	ECS

	regionCount
)

func (r Region) String() string {
	switch r {
	case General:
		return "general"
	case Graphics:
		return "graphics"
	case Physics:
		return "physics"
	case Audio:
		return "audio"
	case Scene:
		return "scene"
	case ECS:
		return "ecs"
	}
	return "unknown"
}

// Count returns the number of defined regions.
func Count() int {
	return int(regionCount)
}

var current atomic.Int32

// Current returns the region in effect.
func Current() Region {
	return Region(current.Load())
}

// Guard restores the previously current region on Exit.
type Guard struct {
	previous Region
}

// Enter makes r the current region and returns a guard that restores the
// previous one. Guards must be exited in reverse order of entry:
//
//	defer region.Enter(region.Physics).Exit()
func Enter(r Region) *Guard {
	g := &Guard{previous: Region(current.Swap(int32(r)))}
	return g
}

// Exit restores the region that was current when the guard was created.
func (g *Guard) Exit() {
	current.Store(int32(g.previous))
}

// Tracker accumulates allocation counts and byte totals per region. The
// zero value is ready to use, and all methods are safe for concurrent use.
type Tracker struct {
	allocations [regionCount]atomic.Int64
	bytes       [regionCount]atomic.Int64
}

// Default is the process-wide tracker.
var Default Tracker

// Alloc charges one allocation of the given size to the current region.
func (t *Tracker) Alloc(size int) {
	r := Current()
	t.allocations[r].Add(1)
	t.bytes[r].Add(int64(size))
}

// Free credits one allocation of the given size back to the current region.
func (t *Tracker) Free(size int) {
	r := Current()
	t.allocations[r].Add(-1)
	t.bytes[r].Add(int64(-size))
}

// Allocations returns the live allocation count charged to a region.
func (t *Tracker) Allocations(r Region) int64 {
	return t.allocations[r].Load()
}

// Bytes returns the live byte total charged to a region.
func (t *Tracker) Bytes(r Region) int64 {
	return t.bytes[r].Load()
}
