package ecs

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/rotisserie/eris"
)

// ScheduleLabel names one of the world's system schedules.
type ScheduleLabel string

const (
	// ScheduleInit runs once before the main loop starts.
	ScheduleInit ScheduleLabel = "initialization"
	// ScheduleMain runs every tick of the main loop.
	ScheduleMain ScheduleLabel = "main"
	// ScheduleDestroy runs once after the main loop stops.
	ScheduleDestroy ScheduleLabel = "destroy"
)

// FlushPolicy selects when buffered commands are applied during a schedule
// run.
type FlushPolicy int

const (
	// FlushPerSystem applies queued commands after each system, so later
	// systems in the same schedule observe earlier systems' structural
	// changes.
	FlushPerSystem FlushPolicy = iota
	// FlushPerSchedule applies queued commands once after the whole
	// schedule, so every system in a run observes the same world shape.
	FlushPerSchedule
)

// ScheduleStats provides statistics about one schedule's execution.
type ScheduleStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type systemEntry struct {
	name   string
	sys    System
	params []systemParam
	stats  systemStatsInternal
}

type schedule struct {
	label   ScheduleLabel
	entries []*systemEntry
}

func newSchedules() map[ScheduleLabel]*schedule {
	return map[ScheduleLabel]*schedule{
		ScheduleInit:    {label: ScheduleInit},
		ScheduleMain:    {label: ScheduleMain},
		ScheduleDestroy: {label: ScheduleDestroy},
	}
}

// AddSystem registers a system on the given schedule. The system must be a
// pointer to a struct; its exported parameter fields are discovered,
// checked for access conflicts and initialized here. A system whose
// parameters declare overlapping mutable access to the same component or
// resource is rejected with ErrAccessConflict and never runs.
func (w *World) AddSystem(label ScheduleLabel, sys System) error {
	sched, ok := w.schedules[label]
	if !ok {
		return eris.Errorf("unknown schedule %q", label)
	}

	v := reflect.ValueOf(sys)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return eris.Wrapf(ErrInvalidSystem, "system must be a non-nil pointer to a struct, got %T", sys)
	}
	elem := v.Elem()
	name := elem.Type().Name()

	params := discoverParams(elem)

	// Parameter state must exist before access footprints can be read;
	// a system failing validation is still never added, so it cannot run.
	for _, p := range params {
		if err := p.initState(w, name); err != nil {
			return eris.Wrapf(err, "initializing parameters of system %s", name)
		}
	}

	var access []paramAccess
	for _, p := range params {
		access = append(access, p.access()...)
	}
	if err := validateAccess(name, access); err != nil {
		return err
	}

	entry := &systemEntry{
		name:   name,
		sys:    sys,
		params: params,
		stats:  systemStatsInternal{minDuration: time.Duration(1<<63 - 1)},
	}
	sched.entries = append(sched.entries, entry)

	w.log.Debug().
		Str("schedule", string(label)).
		Str("system", name).
		Int("params", len(params)).
		Msg("registered system")
	return nil
}

// discoverParams collects the addressable struct fields that implement the
// parameter lifecycle, in declaration order.
func discoverParams(elem reflect.Value) []systemParam {
	var params []systemParam
	for i := 0; i < elem.NumField(); i++ {
		field := elem.Field(i)
		if !field.CanAddr() || !field.Addr().CanInterface() {
			continue
		}
		if p, ok := field.Addr().Interface().(systemParam); ok {
			params = append(params, p)
		}
	}
	return params
}

// RunSchedule executes every system registered on the given schedule, in
// registration order. A failing system is logged and skipped for this run;
// the rest of the schedule still executes, and the collected failures are
// returned joined. Buffered commands are applied according to the world's
// flush policy.
func (w *World) RunSchedule(label ScheduleLabel, dt float64) error {
	sched, ok := w.schedules[label]
	if !ok {
		return eris.Errorf("unknown schedule %q", label)
	}

	tick := &Tick{Delta: dt, World: w}
	var errs []error

	for _, entry := range sched.entries {
		for _, p := range entry.params {
			p.fetch(w)
		}

		start := time.Now()
		err := entry.sys.Run(tick)
		duration := time.Since(start)

		entry.stats.executionCount++
		entry.stats.lastDuration = duration
		entry.stats.totalDuration += duration
		if duration < entry.stats.minDuration {
			entry.stats.minDuration = duration
		}
		if duration > entry.stats.maxDuration {
			entry.stats.maxDuration = duration
		}

		if err != nil {
			wrapped := eris.Wrapf(err, "system %s", entry.name)
			w.log.Error().
				Err(wrapped).
				Str("schedule", string(label)).
				Str("system", entry.name).
				Msg("system failed")
			errs = append(errs, wrapped)
		}

		for _, p := range entry.params {
			p.applyBuffers(w)
		}
		if w.flush == FlushPerSystem {
			w.applyCommands()
		}
	}

	if w.flush == FlushPerSchedule {
		w.applyCommands()
	}
	return errors.Join(errs...)
}

// Run drives the world's lifecycle: the initialization schedule once, the
// main schedule at the given interval until the context is cancelled, and
// the destroy schedule on the way out. Schedule errors are logged by
// RunSchedule; Run only stops on context cancellation.
func (w *World) Run(ctx context.Context, interval time.Duration) error {
	if err := w.RunSchedule(ScheduleInit, 0); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return w.RunSchedule(ScheduleDestroy, 0)
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			w.RunSchedule(ScheduleMain, dt)
		}
	}
}

// ScheduleStats returns execution statistics for the given schedule.
func (w *World) ScheduleStats(label ScheduleLabel) *ScheduleStats {
	sched, ok := w.schedules[label]
	if !ok {
		return &ScheduleStats{}
	}

	stats := &ScheduleStats{
		SystemCount: len(sched.entries),
		Systems:     make([]SystemStats, len(sched.entries)),
	}

	var totalExecs int64
	for i, entry := range sched.entries {
		internal := entry.stats
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           entry.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
