package ecs

import "reflect"

// Command is a type-erased, buffered mutation applied to the world after
// system execution, so no query iterator ever observes a structural change
// made by the system currently using it.
type Command interface {
	Apply(w *World) error
}

// commandQueue is the world-level FIFO that buffered commands drain into.
type commandQueue struct {
	cmds []Command
}

func (q *commandQueue) push(cmd Command) {
	q.cmds = append(q.cmds, cmd)
}

// applyCommands executes the queued commands in FIFO order. Commands queued
// while draining (for example by Defer) run in the same pass. A command that
// targets an entity despawned earlier in the queue fails quietly; that
// ordering is an expected hazard of deferred mutation, not a bug.
func (w *World) applyCommands() {
	for i := 0; i < len(w.queue.cmds); i++ {
		if err := w.queue.cmds[i].Apply(w); err != nil {
			w.log.Debug().Err(err).Msg("buffered command skipped")
		}
	}
	w.queue.cmds = w.queue.cmds[:0]
}

type spawnCommand struct {
	components []any
}

func (c spawnCommand) Apply(w *World) error {
	w.Spawn(c.components...)
	return nil
}

type despawnCommand struct {
	entity Entity
}

func (c despawnCommand) Apply(w *World) error {
	return w.Despawn(c.entity)
}

type addComponentCommand struct {
	entity    Entity
	component any
}

func (c addComponentCommand) Apply(w *World) error {
	return w.AddComponent(c.entity, c.component)
}

type removeComponentCommand struct {
	entity        Entity
	componentType reflect.Type
}

func (c removeComponentCommand) Apply(w *World) error {
	return w.RemoveComponent(c.entity, c.componentType)
}

type insertResourceCommand struct {
	value any
}

func (c insertResourceCommand) Apply(w *World) error {
	w.insertResourceValue(c.value)
	return nil
}

type removeResourceCommand struct {
	resourceType reflect.Type
}

func (c removeResourceCommand) Apply(w *World) error {
	w.resources.remove(c.resourceType)
	return nil
}

type deferCommand struct {
	fn func(*World)
}

func (c deferCommand) Apply(w *World) error {
	c.fn(w)
	return nil
}

// Commands is a system parameter handing out a buffer for deferred world
// mutations. Pushed commands accumulate during the system body and drain
// into the world queue afterwards; the queue itself is executed according
// to the world's flush policy.
type Commands struct {
	buf []Command
}

// Push queues an arbitrary command.
func (c *Commands) Push(cmd Command) {
	c.buf = append(c.buf, cmd)
}

// Spawn queues an entity spawn with the given component bundle.
func (c *Commands) Spawn(components ...any) {
	c.Push(spawnCommand{components: components})
}

// Despawn queues an entity destruction.
func (c *Commands) Despawn(e Entity) {
	c.Push(despawnCommand{entity: e})
}

// AddComponent queues a component addition.
func (c *Commands) AddComponent(e Entity, component any) {
	c.Push(addComponentCommand{entity: e, component: component})
}

// RemoveComponent queues a component removal.
func (c *Commands) RemoveComponent(e Entity, componentType reflect.Type) {
	c.Push(removeComponentCommand{entity: e, componentType: componentType})
}

// InsertResource queues a resource insert.
func (c *Commands) InsertResource(value any) {
	c.Push(insertResourceCommand{value: value})
}

// RemoveResource queues a resource removal.
func (c *Commands) RemoveResource(resourceType reflect.Type) {
	c.Push(removeResourceCommand{resourceType: resourceType})
}

// Defer queues an arbitrary function against the world.
func (c *Commands) Defer(fn func(*World)) {
	c.Push(deferCommand{fn: fn})
}

func (c *Commands) initState(w *World, sys string) error {
	return nil
}

func (c *Commands) fetch(w *World) {}

func (c *Commands) applyBuffers(w *World) {
	for _, cmd := range c.buf {
		w.queue.push(cmd)
	}
	c.buf = c.buf[:0]
}

func (c *Commands) access() []paramAccess {
	return nil
}
