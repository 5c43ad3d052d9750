package ecs

import (
	"slices"

	"github.com/TheBitDrifter/mask"
)

// Signature is an ordered, deduplicated set of ComponentIDs identifying an
// archetype's schema. Two signatures are equal iff their sorted id
// sequences are equal; the bitmask is the canonical comparison key.
type Signature struct {
	ids  []ComponentID
	bits mask.Mask
}

// newSignature canonicalizes ids (sorts and deduplicates a copy) and builds
// the matching bitmask.
func newSignature(ids []ComponentID) Signature {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	var bits mask.Mask
	for _, id := range sorted {
		bits.Mark(uint32(id))
	}
	return Signature{ids: sorted, bits: bits}
}

// IDs returns the sorted component ids. Callers must not mutate the slice.
func (s Signature) IDs() []ComponentID {
	return s.ids
}

// Len returns the number of component types in the signature.
func (s Signature) Len() int {
	return len(s.ids)
}

// Contains reports whether the signature includes the given component.
func (s Signature) Contains(id ComponentID) bool {
	_, ok := slices.BinarySearch(s.ids, id)
	return ok
}

// ContainsAll reports whether the signature is a superset of the given mask.
func (s Signature) ContainsAll(bits mask.Mask) bool {
	return s.bits.ContainsAll(bits)
}

// key returns the comparable map key for this signature.
func (s Signature) key() mask.Mask {
	return s.bits
}

// without returns the id sequence with exactly one component removed.
func (s Signature) without(id ComponentID) []ComponentID {
	out := make([]ComponentID, 0, len(s.ids)-1)
	for _, c := range s.ids {
		if c != id {
			out = append(out, c)
		}
	}
	return out
}

// with returns the id sequence extended by one component.
func (s Signature) with(id ComponentID) []ComponentID {
	out := make([]ComponentID, 0, len(s.ids)+1)
	out = append(out, s.ids...)
	return append(out, id)
}
