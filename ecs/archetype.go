package ecs

import (
	"fmt"
	"unsafe"
)

// ArchetypeID identifies one archetype within a store. IDs are dense
// indices into the store's arena.
type ArchetypeID uint32

// Archetype is a columnar table: one Column per component type in its
// signature plus the parallel list of entity handles occupying each row.
// Every column always has the same logical length as the entity list, so
// "row i" denotes index i into every column and the entity list at once.
type Archetype struct {
	id       ArchetypeID
	sig      Signature
	columns  []column
	slots    [MaxComponentTypes]int8 // ComponentID -> column index, -1 if absent
	entities []Entity
}

func newArchetype(id ArchetypeID, sig Signature, registry *ComponentRegistry, capacity int) *Archetype {
	a := &Archetype{
		id:      id,
		sig:     sig,
		columns: make([]column, sig.Len()),
	}
	for i := range a.slots {
		a.slots[i] = -1
	}
	for i, cid := range sig.IDs() {
		a.columns[i] = newColumn(registry.mustInfo(cid), capacity)
		a.slots[cid] = int8(i)
	}
	if capacity > 0 {
		a.entities = make([]Entity, 0, capacity)
	}
	return a
}

// ID returns the archetype's identity within its store.
func (a *Archetype) ID() ArchetypeID {
	return a.id
}

// Signature returns the archetype's schema.
func (a *Archetype) Signature() Signature {
	return a.sig
}

// Len returns the number of rows (entities) in the archetype.
func (a *Archetype) Len() int {
	return len(a.entities)
}

// HasComponent reports whether the archetype's signature includes id.
func (a *Archetype) HasComponent(id ComponentID) bool {
	return a.slot(id) >= 0
}

// EntityAt returns the entity occupying the given row.
func (a *Archetype) EntityAt(row int) Entity {
	return a.entities[row]
}

func (a *Archetype) slot(id ComponentID) int {
	if int(id) >= len(a.slots) {
		return -1
	}
	return int(a.slots[id])
}

// add pushes one component value per signature member and appends the
// entity handle, returning the new row index. The ids passed must exactly
// match the archetype's signature in sorted order; a mismatch means the
// caller broke the bundle contract and is fatal.
func (a *Archetype) add(e Entity, ids []ComponentID, ptrs []unsafe.Pointer) int {
	if len(ids) != a.sig.Len() {
		panic(fmt.Sprintf("ecs: bundle has %d components, archetype signature has %d", len(ids), a.sig.Len()))
	}
	for i, cid := range ids {
		s := a.slot(cid)
		if s < 0 {
			panic(fmt.Sprintf("ecs: component id %d is not part of the archetype signature", cid))
		}
		a.columns[s].pushFrom(ptrs[i])
	}
	a.entities = append(a.entities, e)
	return len(a.entities) - 1
}

// remove swap-removes a row from every column and from the entity list. It
// returns the removed entity and, if a different entity was relocated into
// the vacated row, that entity's handle so the caller can patch its
// location.
func (a *Archetype) remove(row int) (removed Entity, displaced Entity, hasDisplaced bool) {
	last := len(a.entities) - 1
	if row < 0 || row > last {
		panic(fmt.Sprintf("ecs: archetype row %d out of bounds (len %d)", row, last+1))
	}
	removed = a.entities[row]
	for i := range a.columns {
		a.columns[i].swapRemove(row)
	}
	if row != last {
		displaced = a.entities[last]
		a.entities[row] = displaced
		hasDisplaced = true
	}
	a.entities = a.entities[:last]
	return removed, displaced, hasDisplaced
}

// addMovedEntity appends a fresh row for an entity migrating from another
// archetype, copying the bytes of every component the two signatures share.
// Components the source lacks get a reserved, unwritten row slot; the
// caller must fill them before the row is read, and must remove the entity
// from the source afterwards. Returns the new row index.
func (a *Archetype) addMovedEntity(e Entity, src *Archetype, srcRow int) int {
	for i, cid := range a.sig.IDs() {
		if s := src.slot(cid); s >= 0 {
			a.columns[i].pushFrom(src.columns[s].ptrAt(srcRow))
		} else {
			a.columns[i].pushZero()
		}
	}
	a.entities = append(a.entities, e)
	return len(a.entities) - 1
}

// componentPtr returns the address of one component's bytes for a row, or
// nil if the archetype does not store that component.
func (a *Archetype) componentPtr(id ComponentID, row int) unsafe.Pointer {
	s := a.slot(id)
	if s < 0 {
		return nil
	}
	return a.columns[s].ptrAt(row)
}

// setComponent overwrites one component's bytes for a row.
func (a *Archetype) setComponent(id ComponentID, row int, src unsafe.Pointer) {
	s := a.slot(id)
	if s < 0 {
		panic(fmt.Sprintf("ecs: component id %d is not part of the archetype signature", id))
	}
	a.columns[s].writeAt(row, src)
}

// columnAccess returns the base pointer and stride for one component's
// column, for per-archetype fetch construction. The archetype must be
// non-empty.
func (a *Archetype) columnAccess(id ComponentID) (unsafe.Pointer, uintptr, bool) {
	s := a.slot(id)
	if s < 0 {
		return nil, 0, false
	}
	base, stride := a.columns[s].basePtr()
	return base, stride, true
}
