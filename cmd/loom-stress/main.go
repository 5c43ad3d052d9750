package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"

	"github.com/plus3/loom/ecs"
	"github.com/plus3/loom/region"
)

type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }
type Health struct{ Current, Max int32 }
type Lifetime struct{ Remaining float64 }

// WorldClock is the global simulation time resource.
type WorldClock struct {
	Elapsed float64
}

// MovementSystem integrates positions from velocities.
type MovementSystem struct {
	Moving ecs.Query[struct {
		Pos *Position `ecs:"mut"`
		Vel *Velocity
	}]
}

func (s *MovementSystem) Run(t *ecs.Tick) error {
	for item := range s.Moving.Values() {
		item.Pos.X += item.Vel.X * t.Delta
		item.Pos.Y += item.Vel.Y * t.Delta
	}
	return nil
}

// ClockSystem advances the global clock.
type ClockSystem struct {
	Clock ecs.ResMut[WorldClock]
}

func (s *ClockSystem) Run(t *ecs.Tick) error {
	s.Clock.Get().Elapsed += t.Delta
	return nil
}

// DecaySystem counts down lifetimes and queues despawns for expired
// entities, exercising the deferred command path every frame.
type DecaySystem struct {
	Aging ecs.Query[struct {
		Entity ecs.Entity
		Life   *Lifetime `ecs:"mut"`
	}]
	Cmd ecs.Commands
}

func (s *DecaySystem) Run(t *ecs.Tick) error {
	for item := range s.Aging.Values() {
		item.Life.Remaining -= t.Delta
		if item.Life.Remaining <= 0 {
			s.Cmd.Despawn(item.Entity)
		}
	}
	return nil
}

// ChurnSystem spawns replacement entities and attaches components to a
// random sample, keeping the archetype graph and migration paths hot.
type ChurnSystem struct {
	Healthy ecs.Query[struct {
		Entity ecs.Entity
		HP     *Health
	}]
	Cmd ecs.Commands

	rng *rand.Rand
}

func (s *ChurnSystem) Run(t *ecs.Tick) error {
	for i := 0; i < 16; i++ {
		s.Cmd.Spawn(
			Position{X: s.rng.Float64() * 100, Y: s.rng.Float64() * 100},
			Velocity{X: s.rng.Float64()*2 - 1, Y: s.rng.Float64()*2 - 1},
			Lifetime{Remaining: 1 + s.rng.Float64()*4},
		)
	}
	for e, item := range s.Healthy.Iter() {
		if item.HP.Current < item.HP.Max {
			continue
		}
		if s.rng.Intn(100) == 0 {
			s.Cmd.AddComponent(e, Velocity{X: s.rng.Float64()*2 - 1})
		}
	}
	return nil
}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "total duration the test should run for")
	entityCount := flag.Int("entities", 10000, "initial number of entities to create")
	cpuProfile := flag.Bool("cpuprofile", false, "write a CPU profile to the working directory")
	verbose := flag.Bool("v", false, "log system registration and command activity")
	flag.Parse()

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	logLevel := zerolog.WarnLevel
	if *verbose {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(logLevel).With().Timestamp().Logger()

	log.Println("Starting stress test...")

	world := ecs.NewWorld(
		ecs.WithLogger(logger),
		ecs.WithFlushPolicy(ecs.FlushPerSchedule),
	)
	ecs.InsertResource(world, WorldClock{})

	rng := rand.New(rand.NewSource(1))
	systems := []ecs.System{
		&ClockSystem{},
		&MovementSystem{},
		&DecaySystem{},
		&ChurnSystem{rng: rng},
	}
	for _, sys := range systems {
		if err := world.AddSystem(ecs.ScheduleMain, sys); err != nil {
			log.Fatalf("Failed to register system: %v", err)
		}
	}

	guard := region.Enter(region.ECS)

	log.Printf("Populating world with %d entities...", *entityCount)
	populate(world, rng, *entityCount)
	log.Println("Population complete.")

	report := &Report{
		Duration: *duration,
		Entities: *entityCount,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...", *duration)

	startTime := time.Now()
	lastFrameTime := startTime
	deadline := startTime.Add(*duration)

	for time.Now().Before(deadline) {
		now := time.Now()
		dt := now.Sub(lastFrameTime).Seconds()
		lastFrameTime = now

		updateStart := time.Now()
		if err := world.RunSchedule(ecs.ScheduleMain, dt); err != nil {
			logger.Error().Err(err).Msg("schedule run reported failures")
		}
		report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
		report.TotalUpdates++
	}

	guard.Exit()
	report.TotalTime = time.Since(startTime)
	report.FinalEntities = world.EntityCount()
	report.UpdateTime.Finalize()
	report.Systems = world.ScheduleStats(ecs.ScheduleMain)
	report.ColumnBuffers = region.Default.Allocations(region.ECS)
	report.ColumnBytes = region.Default.Bytes(region.ECS)
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Simulation finished.")

	fmt.Println("\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")
}

func populate(world *ecs.World, rng *rand.Rand, n int) {
	for i := 0; i < n; i++ {
		pos := Position{X: rng.Float64() * 100, Y: rng.Float64() * 100}
		switch rng.Intn(4) {
		case 0:
			world.Spawn(pos)
		case 1:
			world.Spawn(pos, Velocity{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1})
		case 2:
			world.Spawn(pos, Health{Current: 100, Max: 100})
		default:
			world.Spawn(pos,
				Velocity{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1},
				Lifetime{Remaining: 1 + rng.Float64()*9},
			)
		}
	}
}
