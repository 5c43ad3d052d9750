package ecs

import (
	"github.com/TheBitDrifter/mask"
	"github.com/kamstrup/intmap"
)

// archetypeGraph memoizes signature -> archetype identity and caches the
// add/remove single-component edges between archetypes, so structural
// changes do not repeatedly canonicalize signatures. Edges are purely
// additive: once recorded they are never invalidated.
type archetypeGraph struct {
	byMask      map[mask.Mask]ArchetypeID
	signatures  []Signature
	addEdges    *intmap.Map[uint64, ArchetypeID]
	removeEdges *intmap.Map[uint64, ArchetypeID]
}

func newArchetypeGraph() *archetypeGraph {
	return &archetypeGraph{
		byMask:      make(map[mask.Mask]ArchetypeID, 16),
		addEdges:    intmap.New[uint64, ArchetypeID](64),
		removeEdges: intmap.New[uint64, ArchetypeID](64),
	}
}

func edgeKey(from ArchetypeID, c ComponentID) uint64 {
	return uint64(from)<<32 | uint64(c)
}

// getOrCreate canonicalizes ids and returns the archetype identity for that
// component set, allocating it if unseen. For a new identity it recursively
// ensures the archetype missing exactly one component exists, for every
// component in the signature, and records the forward and backward edges.
// This keeps every archetype reachable from the empty archetype through a
// chain of single-component add edges.
func (g *archetypeGraph) getOrCreate(ids []ComponentID) ArchetypeID {
	sig := newSignature(ids)
	if id, ok := g.byMask[sig.key()]; ok {
		return id
	}

	id := ArchetypeID(len(g.signatures))
	g.byMask[sig.key()] = id
	g.signatures = append(g.signatures, sig)

	for _, cid := range sig.IDs() {
		smaller := g.getOrCreate(sig.without(cid))
		g.addEdges.Put(edgeKey(smaller, cid), id)
		g.removeEdges.Put(edgeKey(id, cid), smaller)
	}
	return id
}

// addEdge returns the cached archetype reached by adding one component.
func (g *archetypeGraph) addEdge(from ArchetypeID, c ComponentID) (ArchetypeID, bool) {
	return g.addEdges.Get(edgeKey(from, c))
}

// removeEdge returns the cached archetype reached by removing one component.
func (g *archetypeGraph) removeEdge(from ArchetypeID, c ComponentID) (ArchetypeID, bool) {
	return g.removeEdges.Get(edgeKey(from, c))
}

func (g *archetypeGraph) signature(id ArchetypeID) Signature {
	return g.signatures[id]
}

func (g *archetypeGraph) count() int {
	return len(g.signatures)
}
