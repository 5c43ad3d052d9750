package ecs

// Entity is an opaque handle identifying one simulated object. The zero
// value is never issued and can be used as a sentinel.
type Entity uint64

// Index returns the entity's position in the logical entity space.
func (e Entity) Index() uint64 {
	return uint64(e)
}

// EntityLocation records where an entity's row currently lives. Exactly one
// location exists per live entity; it is rewritten on every structural move.
type EntityLocation struct {
	Archetype ArchetypeID
	Row       int
}

// entityAllocator issues monotonically increasing handles. Indices are not
// recycled, so a handle stays unique for the process lifetime.
type entityAllocator struct {
	next uint64
}

func (a *entityAllocator) allocate() Entity {
	a.next++
	return Entity(a.next)
}
