package ecs

import (
	"fmt"
	"iter"
	"reflect"
	"unsafe"

	"github.com/TheBitDrifter/mask"
)

// Query iterates entities whose archetypes hold every component the fetch
// struct T names. T must be a struct; its fields describe the fetch kinds:
//
//   - a `*C` field fetches component C read-only
//   - a `*C` field tagged `ecs:"mut"` fetches C mutably
//   - an `ecs.Entity` field fetches the raw entity handle
//
// Matching archetypes are resolved once and cached; each archetype's column
// base pointers are resolved once per pass, so the per-row fetch is O(1)
// with no hashing. Iteration order is archetype-then-row and is not stable
// across structural changes; mutate through Commands, never directly while
// iterating.
type Query[T any] struct {
	state *queryState
}

// fieldPlan describes one field of the fetch struct.
type fieldPlan struct {
	offset  uintptr
	id      ComponentID
	mutable bool
	entity  bool
}

type queryState struct {
	world   *World
	plans   []fieldPlan
	strides []uintptr // per-plan row stride, fixed by the component's size
	accts   []paramAccess
	include mask.Mask
	matched []*Archetype
	gen     int
}

// NewQuery builds a standalone query against a world. Systems normally
// declare a Query field instead and let registration initialize it.
func NewQuery[T any](w *World) *Query[T] {
	q := &Query[T]{}
	if err := q.initState(w, "standalone query"); err != nil {
		panic(err.Error())
	}
	return q
}

func buildQueryState[T any](w *World) (*queryState, error) {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("ecs: query fetch type %s is not a struct", structType)
	}

	st := &queryState{world: w, gen: -1}
	entityType := reflect.TypeFor[Entity]()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		plan := fieldPlan{offset: field.Offset}

		if field.Type == entityType {
			plan.entity = true
			st.plans = append(st.plans, plan)
			st.strides = append(st.strides, 0)
			continue
		}
		if field.Type.Kind() != reflect.Ptr {
			return nil, fmt.Errorf("ecs: query field %s.%s must be a component pointer or ecs.Entity", structType, field.Name)
		}
		switch tag := field.Tag.Get("ecs"); tag {
		case "":
		case "mut":
			plan.mutable = true
		default:
			return nil, fmt.Errorf("ecs: invalid ecs tag %q on query field %s.%s", tag, structType, field.Name)
		}

		plan.id = w.registry.register(field.Type.Elem())
		st.include.Mark(uint32(plan.id))
		st.plans = append(st.plans, plan)
		st.strides = append(st.strides, w.registry.mustInfo(plan.id).Size)
		st.accts = append(st.accts, paramAccess{component: plan.id, mutable: plan.mutable})
	}
	return st, nil
}

// refresh re-matches archetypes when the store has grown since the last
// pass. Matching intersects the requested component set against each
// archetype's signature; it is a flat scan over archetypes, not entities.
func (st *queryState) refresh() {
	gen := st.world.store.generation()
	if gen == st.gen {
		return
	}
	st.matched = st.matched[:0]
	for arch := range st.world.store.iter() {
		if arch.Signature().ContainsAll(st.include) {
			st.matched = append(st.matched, arch)
		}
	}
	st.gen = gen
}

func (q *Query[T]) initState(w *World, sys string) error {
	st, err := buildQueryState[T](w)
	if err != nil {
		return err
	}
	q.state = st
	return nil
}

func (q *Query[T]) fetch(w *World) {
	q.state.refresh()
}

func (q *Query[T]) applyBuffers(w *World) {}

func (q *Query[T]) access() []paramAccess {
	return q.mustState().accts
}

func (q *Query[T]) mustState() *queryState {
	if q.state == nil {
		panic("ecs: query used before initialization; declare it as a system field or use NewQuery")
	}
	return q.state
}

// Iter yields (entity, fetch struct) for every matching row, walking
// archetypes in store order and rows in storage order.
func (q *Query[T]) Iter() iter.Seq2[Entity, T] {
	st := q.mustState()
	return func(yield func(Entity, T) bool) {
		st.refresh()

		var item T
		itemPtr := unsafe.Pointer(&item)
		bases := make([]unsafe.Pointer, len(st.plans))

		for _, arch := range st.matched {
			if arch.Len() == 0 {
				continue
			}
			if !st.resolveColumns(arch, bases) {
				continue
			}
			for row := 0; row < arch.Len(); row++ {
				st.fillItem(itemPtr, arch, row, bases)
				if !yield(arch.EntityAt(row), item) {
					return
				}
			}
		}
	}
}

// Values yields only the fetch structs.
func (q *Query[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range q.Iter() {
			if !yield(item) {
				return
			}
		}
	}
}

// Count returns the number of rows the query currently matches.
func (q *Query[T]) Count() int {
	st := q.mustState()
	st.refresh()
	n := 0
	for _, arch := range st.matched {
		n += arch.Len()
	}
	return n
}

// resolveColumns computes the per-archetype column base pointers, once per
// archetype per pass. An archetype missing a required column is skipped;
// by construction every matched archetype has them.
func (st *queryState) resolveColumns(arch *Archetype, bases []unsafe.Pointer) bool {
	for i, plan := range st.plans {
		if plan.entity {
			bases[i] = nil
			continue
		}
		base, _, ok := arch.columnAccess(plan.id)
		if !ok {
			return false
		}
		bases[i] = base
	}
	return true
}

// fillItem writes one row's fetch results into the item struct through its
// precomputed field offsets: a handle copy for entity fields, a direct
// column pointer for component fields.
func (st *queryState) fillItem(itemPtr unsafe.Pointer, arch *Archetype, row int, bases []unsafe.Pointer) {
	for i, plan := range st.plans {
		fieldPtr := unsafe.Pointer(uintptr(itemPtr) + plan.offset)
		if plan.entity {
			*(*Entity)(fieldPtr) = arch.EntityAt(row)
			continue
		}
		*(*unsafe.Pointer)(fieldPtr) = unsafe.Pointer(uintptr(bases[i]) + uintptr(row)*st.strides[i])
	}
}
