package ecs

import (
	"fmt"
	"reflect"
)

// ComponentID is a dense integer identifying a registered component type.
// IDs are assigned in first-seen order and are stable for the registry's
// lifetime.
type ComponentID uint32

// MaxComponentTypes is the maximum number of distinct component types a
// registry will accept.
const MaxComponentTypes = 64

// ComponentInfo describes a registered component type. Immutable once
// created.
type ComponentInfo struct {
	ID    ComponentID
	Type  reflect.Type
	Size  uintptr
	Align uintptr
}

// ComponentRegistry assigns identifiers and records size/alignment/type
// identity for every component type on first use. It is owned exclusively
// by a World and is not safe for concurrent use.
type ComponentRegistry struct {
	byType map[reflect.Type]ComponentID
	infos  []ComponentInfo
}

// NewComponentRegistry creates an empty component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		byType: make(map[reflect.Type]ComponentID, 16),
	}
}

// RegisterComponent registers T and returns its id. Registration is
// idempotent: a type seen before keeps its original id.
func RegisterComponent[T any](r *ComponentRegistry) ComponentID {
	return r.register(reflect.TypeFor[T]())
}

// LookupComponent returns the id previously assigned to T, if any.
func LookupComponent[T any](r *ComponentRegistry) (ComponentID, bool) {
	return r.Lookup(reflect.TypeFor[T]())
}

func (r *ComponentRegistry) register(t reflect.Type) ComponentID {
	if id, ok := r.byType[t]; ok {
		return id
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		panic("ecs: component types must be value types, got " + t.String())
	}
	if len(r.infos) >= MaxComponentTypes {
		panic(fmt.Sprintf("ecs: cannot register component %s: limit of %d component types reached", t, MaxComponentTypes))
	}
	id := ComponentID(len(r.infos))
	r.byType[t] = id
	r.infos = append(r.infos, ComponentInfo{
		ID:    id,
		Type:  t,
		Size:  t.Size(),
		Align: uintptr(t.Align()),
	})
	return id
}

// Lookup returns the id assigned to the given type, if it was registered.
func (r *ComponentRegistry) Lookup(t reflect.Type) (ComponentID, bool) {
	id, ok := r.byType[t]
	return id, ok
}

// Info returns the recorded info for an id.
func (r *ComponentRegistry) Info(id ComponentID) (ComponentInfo, bool) {
	if int(id) >= len(r.infos) {
		return ComponentInfo{}, false
	}
	return r.infos[id], true
}

// Count returns the number of registered component types.
func (r *ComponentRegistry) Count() int {
	return len(r.infos)
}

func (r *ComponentRegistry) mustInfo(id ComponentID) ComponentInfo {
	info, ok := r.Info(id)
	if !ok {
		panic(fmt.Sprintf("ecs: component id %d not registered", id))
	}
	return info
}
