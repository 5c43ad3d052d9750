package ecs

import "github.com/rotisserie/eris"

var (
	// ErrUnknownEntity is returned when an operation targets an entity
	// with no storage location (never spawned, or already despawned).
	ErrUnknownEntity = eris.New("entity has no storage location")

	// ErrAccessConflict is returned at registration time for a system
	// whose parameters declare overlapping access to the same component
	// or resource with at least one side mutable.
	ErrAccessConflict = eris.New("conflicting system parameter access")

	// ErrInvalidSystem is returned when a registered system is not a
	// pointer to a struct and therefore cannot carry parameter fields.
	ErrInvalidSystem = eris.New("system must be a pointer to a struct")

	// ErrMissingComponent is returned when a structural removal names a
	// component the entity does not have.
	ErrMissingComponent = eris.New("entity does not have the component")
)
