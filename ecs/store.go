package ecs

import (
	"fmt"
	"iter"
)

// archetypeStore owns all archetypes by identity. The graph allocates
// identities; backing storage for an identity is allocated lazily the first
// time an entity needs it.
type archetypeStore struct {
	graph     *archetypeGraph
	storage   []*Archetype
	registry  *ComponentRegistry
	capacity  int // initial per-column capacity for new archetypes
	allocated int
}

func newArchetypeStore(registry *ComponentRegistry, capacity int) *archetypeStore {
	return &archetypeStore{
		graph:    newArchetypeGraph(),
		registry: registry,
		capacity: capacity,
	}
}

// ensure returns the archetype for id, allocating its columns on first use.
func (s *archetypeStore) ensure(id ArchetypeID) *Archetype {
	for int(id) >= len(s.storage) {
		s.storage = append(s.storage, nil)
	}
	if s.storage[id] == nil {
		s.storage[id] = newArchetype(id, s.graph.signature(id), s.registry, s.capacity)
		s.allocated++
	}
	return s.storage[id]
}

// getOrCreateForBundle resolves the archetype holding exactly the given
// component set, creating identity and storage on demand.
func (s *archetypeStore) getOrCreateForBundle(ids []ComponentID) *Archetype {
	return s.ensure(s.graph.getOrCreate(ids))
}

// addComponentDestination returns the archetype reached from `from` by
// adding one component, using the cached edge when present.
func (s *archetypeStore) addComponentDestination(from ArchetypeID, c ComponentID) ArchetypeID {
	if id, ok := s.graph.addEdge(from, c); ok {
		return id
	}
	return s.graph.getOrCreate(s.graph.signature(from).with(c))
}

// removeComponentDestination is the inverse direction of
// addComponentDestination.
func (s *archetypeStore) removeComponentDestination(from ArchetypeID, c ComponentID) ArchetypeID {
	if id, ok := s.graph.removeEdge(from, c); ok {
		return id
	}
	return s.graph.getOrCreate(s.graph.signature(from).without(c))
}

// moveEntity relocates an entity's row into the target archetype: shared
// components are copied into a fresh target row, then the old row is
// swap-removed from the source. Moving an entity onto its own archetype is
// a broken caller invariant and fatal. Returns the new location and, when
// the swap-remove relocated a different entity inside the source, that
// entity's handle so its location can be corrected.
func (s *archetypeStore) moveEntity(e Entity, loc EntityLocation, target ArchetypeID) (EntityLocation, Entity, bool) {
	if loc.Archetype == target {
		panic(fmt.Sprintf("ecs: entity %d moved onto its own archetype %d", e, target))
	}
	src := s.ensure(loc.Archetype)
	dst := s.ensure(target)

	newRow := dst.addMovedEntity(e, src, loc.Row)
	_, displaced, hasDisplaced := src.remove(loc.Row)

	return EntityLocation{Archetype: target, Row: newRow}, displaced, hasDisplaced
}

// iter walks all allocated archetypes in identity order. The sequence is
// lazy and restartable; it is a flat scan over archetypes, not entities.
func (s *archetypeStore) iter() iter.Seq[*Archetype] {
	return func(yield func(*Archetype) bool) {
		for _, a := range s.storage {
			if a == nil {
				continue
			}
			if !yield(a) {
				return
			}
		}
	}
}

// generation changes whenever a new archetype gains backing storage; query
// states use it to know when their matched-archetype list is stale.
func (s *archetypeStore) generation() int {
	return s.allocated
}
