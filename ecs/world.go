package ecs

import (
	"fmt"
	"reflect"
	"slices"
	"unsafe"

	"github.com/kamstrup/intmap"
	"github.com/rs/zerolog"
)

const defaultColumnCapacity = 64

// World owns the component registry, the archetype store, the entity
// location table, resources, schedules and the command queue. It is
// single-threaded by design: systems never run concurrently within one
// schedule invocation, and the world is exclusively owned by the schedule
// runner for the duration of a run.
type World struct {
	registry  *ComponentRegistry
	allocator entityAllocator
	store     *archetypeStore
	locations *intmap.Map[Entity, EntityLocation]
	resources resourceMap
	schedules map[ScheduleLabel]*schedule
	queue     commandQueue
	log       zerolog.Logger
	flush     FlushPolicy
}

// Option configures a World at construction time.
type Option func(*worldConfig)

type worldConfig struct {
	registry *ComponentRegistry
	log      zerolog.Logger
	flush    FlushPolicy
	capacity int
}

// WithLogger sets the world's structured logger. The default discards
// everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *worldConfig) { c.log = log }
}

// WithRegistry makes the world use an existing component registry instead
// of creating its own.
func WithRegistry(r *ComponentRegistry) Option {
	return func(c *worldConfig) { c.registry = r }
}

// WithFlushPolicy selects when buffered commands are applied during a
// schedule run.
func WithFlushPolicy(p FlushPolicy) Option {
	return func(c *worldConfig) { c.flush = p }
}

// WithInitialColumnCapacity sets the per-column element capacity
// preallocated for new archetypes.
func WithInitialColumnCapacity(n int) Option {
	return func(c *worldConfig) { c.capacity = n }
}

// NewWorld creates an empty world.
func NewWorld(opts ...Option) *World {
	cfg := worldConfig{
		log:      zerolog.Nop(),
		flush:    FlushPerSystem,
		capacity: defaultColumnCapacity,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = NewComponentRegistry()
	}
	return &World{
		registry:  cfg.registry,
		store:     newArchetypeStore(cfg.registry, cfg.capacity),
		locations: intmap.New[Entity, EntityLocation](256),
		resources: newResourceMap(),
		schedules: newSchedules(),
		log:       cfg.log,
		flush:     cfg.flush,
	}
}

// Registry returns the world's component registry.
func (w *World) Registry() *ComponentRegistry {
	return w.registry
}

// Logger returns the world's structured logger.
func (w *World) Logger() *zerolog.Logger {
	return &w.log
}

// Spawn creates a new entity holding the given component bundle. Components
// may be passed by value or by pointer; their types are registered on first
// use. Passing the same component type twice is a bundle contract violation
// and fatal, as is an empty bundle.
func (w *World) Spawn(components ...any) Entity {
	if len(components) == 0 {
		panic("ecs: cannot spawn entity without components")
	}
	ids := make([]ComponentID, len(components))
	ptrs := make([]unsafe.Pointer, len(components))
	for i, comp := range components {
		t, p := componentValue(comp)
		ids[i] = w.registry.register(t)
		ptrs[i] = p
	}
	sortBundle(ids, ptrs)

	e := w.allocator.allocate()
	arch := w.store.getOrCreateForBundle(ids)
	row := arch.add(e, ids, ptrs)
	w.locations.Put(e, EntityLocation{Archetype: arch.ID(), Row: row})

	w.log.Trace().Uint64("entity", uint64(e)).Uint32("archetype", uint32(arch.ID())).Msg("spawned entity")
	return e
}

// sortBundle orders (id, ptr) pairs by component id and rejects duplicates.
func sortBundle(ids []ComponentID, ptrs []unsafe.Pointer) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
			ptrs[j], ptrs[j-1] = ptrs[j-1], ptrs[j]
		}
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] == ids[i-1] {
			panic(fmt.Sprintf("ecs: duplicate component id %d in bundle", ids[i]))
		}
	}
}

// Despawn destroys an entity, swap-removing its row and dropping its
// location record.
func (w *World) Despawn(e Entity) error {
	loc, ok := w.locations.Get(e)
	if !ok {
		return ErrUnknownEntity
	}
	arch := w.store.ensure(loc.Archetype)
	_, displaced, hasDisplaced := arch.remove(loc.Row)
	if hasDisplaced {
		w.locations.Put(displaced, EntityLocation{Archetype: loc.Archetype, Row: loc.Row})
	}
	w.locations.Del(e)
	return nil
}

// AddComponent attaches a component to an entity, migrating it to the
// archetype whose signature includes the new component. If the entity
// already has the component, its value is overwritten in place with no
// structural change.
func (w *World) AddComponent(e Entity, component any) error {
	loc, ok := w.locations.Get(e)
	if !ok {
		return ErrUnknownEntity
	}
	t, p := componentValue(component)
	id := w.registry.register(t)

	src := w.store.ensure(loc.Archetype)
	if src.HasComponent(id) {
		src.setComponent(id, loc.Row, p)
		return nil
	}

	target := w.store.addComponentDestination(loc.Archetype, id)
	newLoc, displaced, hasDisplaced := w.store.moveEntity(e, loc, target)
	w.store.ensure(target).setComponent(id, newLoc.Row, p)

	w.locations.Put(e, newLoc)
	if hasDisplaced {
		w.locations.Put(displaced, EntityLocation{Archetype: loc.Archetype, Row: loc.Row})
	}
	return nil
}

// RemoveComponent detaches a component from an entity, migrating it to the
// archetype whose signature lacks that component. Removing a component the
// entity does not have is an expected condition reported as
// ErrMissingComponent.
func (w *World) RemoveComponent(e Entity, componentType reflect.Type) error {
	loc, ok := w.locations.Get(e)
	if !ok {
		return ErrUnknownEntity
	}
	id, ok := w.registry.Lookup(componentType)
	if !ok {
		return ErrMissingComponent
	}
	src := w.store.ensure(loc.Archetype)
	if !src.HasComponent(id) {
		return ErrMissingComponent
	}

	target := w.store.removeComponentDestination(loc.Archetype, id)
	newLoc, displaced, hasDisplaced := w.store.moveEntity(e, loc, target)

	w.locations.Put(e, newLoc)
	if hasDisplaced {
		w.locations.Put(displaced, EntityLocation{Archetype: loc.Archetype, Row: loc.Row})
	}
	return nil
}

// RemoveComponentOf removes component type T from an entity.
func RemoveComponentOf[T any](w *World, e Entity) error {
	return w.RemoveComponent(e, reflect.TypeFor[T]())
}

// Get returns a pointer to entity e's component of type T. The pointer is
// only valid until the next structural change; callers must not retain it.
func Get[T any](w *World, e Entity) (*T, bool) {
	loc, ok := w.locations.Get(e)
	if !ok {
		return nil, false
	}
	id, ok := LookupComponent[T](w.registry)
	if !ok {
		return nil, false
	}
	ptr := w.store.ensure(loc.Archetype).componentPtr(id, loc.Row)
	if ptr == nil {
		return nil, false
	}
	return (*T)(ptr), true
}

// Has reports whether entity e currently has a component of type T.
func Has[T any](w *World, e Entity) bool {
	loc, ok := w.locations.Get(e)
	if !ok {
		return false
	}
	id, ok := LookupComponent[T](w.registry)
	if !ok {
		return false
	}
	return w.store.ensure(loc.Archetype).HasComponent(id)
}

// Alive reports whether the entity has a live storage location.
func (w *World) Alive(e Entity) bool {
	_, ok := w.locations.Get(e)
	return ok
}

// Location returns the entity's current storage location.
func (w *World) Location(e Entity) (EntityLocation, bool) {
	return w.locations.Get(e)
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return w.locations.Len()
}

// Archetype returns the archetype holding exactly the given component
// types, if it exists. Mostly useful in tests and diagnostics.
func (w *World) Archetype(types ...reflect.Type) (*Archetype, bool) {
	ids := make([]ComponentID, 0, len(types))
	for _, t := range types {
		id, ok := w.registry.Lookup(t)
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	sig := newSignature(ids)
	id, ok := w.store.graph.byMask[sig.key()]
	if !ok {
		return nil, false
	}
	return w.store.ensure(id), true
}
