package ecs

import (
	"fmt"
	"reflect"
)

// systemParam is the two-phase lifecycle every system parameter type
// implements: initState runs once when the system is registered, fetch runs
// every schedule tick before the system body, applyBuffers runs after it.
// access describes the component/resource footprint used for conflict
// detection at registration time.
type systemParam interface {
	initState(w *World, sys string) error
	fetch(w *World)
	applyBuffers(w *World)
	access() []paramAccess
}

// paramAccess declares one component or resource a parameter touches.
type paramAccess struct {
	resource  reflect.Type // nil for component access
	component ComponentID
	mutable   bool
}

func (a paramAccess) String() string {
	if a.resource != nil {
		return fmt.Sprintf("resource %s", a.resource)
	}
	return fmt.Sprintf("component %d", a.component)
}

func (a paramAccess) overlaps(b paramAccess) bool {
	if (a.resource == nil) != (b.resource == nil) {
		return false
	}
	if a.resource != nil {
		return a.resource == b.resource
	}
	return a.component == b.component
}

// validateAccess rejects a parameter set with overlapping access to the
// same component or resource where at least one side is mutable. Systems
// failing validation are never run.
func validateAccess(sys string, all []paramAccess) error {
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[i].overlaps(all[j]) && (all[i].mutable || all[j].mutable) {
				return fmt.Errorf("%w: system %s declares %s twice with mutable access", ErrAccessConflict, sys, all[i])
			}
		}
	}
	return nil
}

// Res is a read-only borrow of the global instance of T. The resource must
// exist when the system runs; accessing a missing resource through a
// non-optional parameter is a broken contract and fatal. Use OptRes for
// resources that may legitimately be absent.
type Res[T any] struct {
	value *T
}

// Get returns the borrowed resource. The value must not be mutated.
func (r *Res[T]) Get() *T {
	return r.value
}

func (r *Res[T]) initState(w *World, sys string) error {
	return nil
}

func (r *Res[T]) fetch(w *World) {
	v, ok := Resource[T](w)
	if !ok {
		panic(fmt.Sprintf("ecs: required resource %s not found", reflect.TypeFor[T]()))
	}
	r.value = v
}

func (r *Res[T]) applyBuffers(w *World) {}

func (r *Res[T]) access() []paramAccess {
	return []paramAccess{{resource: reflect.TypeFor[T]()}}
}

// ResMut is a mutable borrow of the global instance of T. Same existence
// contract as Res.
type ResMut[T any] struct {
	value *T
}

// Get returns the borrowed resource for reading and writing.
func (r *ResMut[T]) Get() *T {
	return r.value
}

func (r *ResMut[T]) initState(w *World, sys string) error {
	return nil
}

func (r *ResMut[T]) fetch(w *World) {
	v, ok := Resource[T](w)
	if !ok {
		panic(fmt.Sprintf("ecs: required resource %s not found", reflect.TypeFor[T]()))
	}
	r.value = v
}

func (r *ResMut[T]) applyBuffers(w *World) {}

func (r *ResMut[T]) access() []paramAccess {
	return []paramAccess{{resource: reflect.TypeFor[T](), mutable: true}}
}

// OptRes is a read-only borrow of T that may be absent; Get returns nil in
// that case.
type OptRes[T any] struct {
	value *T
}

// Get returns the resource, or nil when it does not exist.
func (r *OptRes[T]) Get() *T {
	return r.value
}

func (r *OptRes[T]) initState(w *World, sys string) error {
	return nil
}

func (r *OptRes[T]) fetch(w *World) {
	v, _ := Resource[T](w)
	r.value = v
}

func (r *OptRes[T]) applyBuffers(w *World) {}

func (r *OptRes[T]) access() []paramAccess {
	return []paramAccess{{resource: reflect.TypeFor[T]()}}
}
