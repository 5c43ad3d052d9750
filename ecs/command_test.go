package ecs_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/loom/ecs"
)

type recordingSystem struct {
	Cmd     ecs.Commands
	program func(cmd *ecs.Commands)
}

func (s *recordingSystem) Run(t *ecs.Tick) error {
	if s.program != nil {
		s.program(&s.Cmd)
	}
	return nil
}

func runCommands(t *testing.T, world *ecs.World, program func(cmd *ecs.Commands)) {
	t.Helper()
	sys := &recordingSystem{program: program}
	require.NoError(t, world.AddSystem(ecs.ScheduleMain, sys))
	require.NoError(t, world.RunSchedule(ecs.ScheduleMain, 1.0))
	sys.program = nil
}

func TestCommandSpawn(t *testing.T) {
	world := ecs.NewWorld()

	runCommands(t, world, func(cmd *ecs.Commands) {
		cmd.Spawn(Position{X: 1}, Velocity{DX: 2})
		cmd.Spawn(Position{X: 3})
	})

	assert.Equal(t, 2, world.EntityCount())
	q := ecs.NewQuery[struct{ *Position }](world)
	assert.Equal(t, 2, q.Count())
}

func TestCommandDespawn(t *testing.T) {
	world := ecs.NewWorld()
	e := world.Spawn(Position{})

	runCommands(t, world, func(cmd *ecs.Commands) {
		cmd.Despawn(e)
	})

	assert.False(t, world.Alive(e))
}

func TestCommandStructuralChanges(t *testing.T) {
	world := ecs.NewWorld()
	e := world.Spawn(Position{X: 1})

	runCommands(t, world, func(cmd *ecs.Commands) {
		cmd.AddComponent(e, Velocity{DX: 5})
		cmd.RemoveComponent(e, reflect.TypeFor[Position]())
	})

	assert.False(t, ecs.Has[Position](world, e))
	vel, ok := ecs.Get[Velocity](world, e)
	require.True(t, ok)
	assert.Equal(t, 5.0, vel.DX)
}

func TestCommandResources(t *testing.T) {
	world := ecs.NewWorld()

	runCommands(t, world, func(cmd *ecs.Commands) {
		cmd.InsertResource(clockResource{Ticks: 3})
	})

	clock, ok := ecs.Resource[clockResource](world)
	require.True(t, ok)
	assert.Equal(t, 3, clock.Ticks)

	runCommands(t, world, func(cmd *ecs.Commands) {
		cmd.RemoveResource(reflect.TypeFor[clockResource]())
	})

	_, ok = ecs.Resource[clockResource](world)
	assert.False(t, ok)
}

func TestCommandDefer(t *testing.T) {
	world := ecs.NewWorld()

	var captured int
	runCommands(t, world, func(cmd *ecs.Commands) {
		cmd.Spawn(Position{})
		cmd.Defer(func(w *ecs.World) {
			captured = w.EntityCount()
		})
	})

	// Defer ran after the spawn queued before it.
	assert.Equal(t, 1, captured)
}

func TestCommandAgainstDespawnedEntityIsSkipped(t *testing.T) {
	world := ecs.NewWorld()
	e := world.Spawn(Position{X: 1})

	runCommands(t, world, func(cmd *ecs.Commands) {
		cmd.Despawn(e)
		cmd.AddComponent(e, Velocity{DX: 1})
	})

	// The add targeted an entity destroyed earlier in the queue; it is
	// dropped quietly and the world stays consistent.
	assert.False(t, world.Alive(e))
	assert.Equal(t, 0, world.EntityCount())
}

func TestCommandsAreFIFO(t *testing.T) {
	world := ecs.NewWorld()

	var order []string
	runCommands(t, world, func(cmd *ecs.Commands) {
		for _, label := range []string{"a", "b", "c"} {
			label := label
			cmd.Defer(func(w *ecs.World) {
				order = append(order, label)
			})
		}
	})

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestDeferredVisibilityDuringIteration(t *testing.T) {
	world := ecs.NewWorld()
	world.Spawn(Position{X: 1})

	sys := &recordingSystem{}
	require.NoError(t, world.AddSystem(ecs.ScheduleMain, sys))

	q := ecs.NewQuery[struct{ *Position }](world)
	sys.program = func(cmd *ecs.Commands) {
		for range q.Iter() {
			cmd.Spawn(Position{X: 2})
		}
		// Nothing spawned above is visible yet.
		assert.Equal(t, 1, q.Count())
	}
	require.NoError(t, world.RunSchedule(ecs.ScheduleMain, 1.0))

	assert.Equal(t, 2, world.EntityCount())
}
