package ecs

// System represents a behavior that operates on entities and resources.
// User-defined systems are pointer-to-struct values whose exported fields
// of parameter types (Query, Res, ResMut, OptRes, Commands) are discovered
// and wired when the system is registered. Unexported and non-parameter
// fields are left alone and may carry per-system state.
type System interface {
	Run(t *Tick) error
}

// Tick carries the per-invocation inputs of a system run.
type Tick struct {
	// Delta is the elapsed time in seconds since the previous run of the
	// schedule, or the value passed explicitly to RunSchedule.
	Delta float64

	// World is the world the schedule is running against. Structural
	// changes during a run must go through a Commands parameter, not
	// through the world directly.
	World *World
}
