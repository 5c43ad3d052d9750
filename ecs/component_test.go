package ecs_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/loom/ecs"
)

func TestComponentRegistration(t *testing.T) {
	registry := ecs.NewComponentRegistry()

	posID := ecs.RegisterComponent[Position](registry)
	velID := ecs.RegisterComponent[Velocity](registry)

	assert.Equal(t, ecs.ComponentID(0), posID)
	assert.Equal(t, ecs.ComponentID(1), velID)
	assert.Equal(t, 2, registry.Count())

	// Registration is idempotent.
	assert.Equal(t, posID, ecs.RegisterComponent[Position](registry))
	assert.Equal(t, 2, registry.Count())
}

func TestComponentLookup(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	posID := ecs.RegisterComponent[Position](registry)

	id, ok := ecs.LookupComponent[Position](registry)
	require.True(t, ok)
	assert.Equal(t, posID, id)

	_, ok = ecs.LookupComponent[Velocity](registry)
	assert.False(t, ok)

	id, ok = registry.Lookup(reflect.TypeFor[Position]())
	require.True(t, ok)
	assert.Equal(t, posID, id)
}

func TestComponentInfo(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	id := ecs.RegisterComponent[Position](registry)

	info, ok := registry.Info(id)
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[Position](), info.Type)
	assert.Equal(t, uintptr(16), info.Size)
	assert.Equal(t, uintptr(8), info.Align)

	zst := ecs.RegisterComponent[PlayerController](registry)
	info, ok = registry.Info(zst)
	require.True(t, ok)
	assert.Equal(t, uintptr(0), info.Size)

	_, ok = registry.Info(ecs.ComponentID(99))
	assert.False(t, ok)
}

func TestComponentRejectsReferenceKinds(t *testing.T) {
	registry := ecs.NewComponentRegistry()

	assert.Panics(t, func() { ecs.RegisterComponent[*Position](registry) })
	assert.Panics(t, func() { ecs.RegisterComponent[map[string]int](registry) })
	assert.Panics(t, func() { ecs.RegisterComponent[chan int](registry) })
	assert.Panics(t, func() { ecs.RegisterComponent[func()](registry) })
	assert.Panics(t, func() { ecs.RegisterComponent[any](registry) })
}

func TestSharedRegistryAcrossWorlds(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	posID := ecs.RegisterComponent[Position](registry)

	w1 := ecs.NewWorld(ecs.WithRegistry(registry))
	w2 := ecs.NewWorld(ecs.WithRegistry(registry))

	w1.Spawn(Position{X: 1})
	w2.Spawn(Velocity{DX: 1})

	// Both worlds see the same id assignments.
	id, ok := ecs.LookupComponent[Position](w2.Registry())
	require.True(t, ok)
	assert.Equal(t, posID, id)
}
