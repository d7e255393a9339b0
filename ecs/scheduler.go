package ecs

import (
	"context"
	"log/slog"
	"reflect"
	"time"

	"github.com/plus3/capsynth/geom"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	Name            string
	SystemCount     int
	TotalExecutions int64
	Ticks           uint64
	Elapsed         time.Duration
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
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// Scheduler manages and executes systems in registration order.
type Scheduler struct {
	name        string
	logger      *slog.Logger
	systems     []System
	systemStats []*systemStatsInternal
	elapsed     time.Duration
	ticks       uint64
}

// NewScheduler creates a new scheduler. A nil logger uses slog.Default.
func NewScheduler(name string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		name:    name,
		logger:  logger.With("scheduler", name),
		systems: make([]System, 0),
	}
}

// Register adds a system to the scheduler under its type name.
func (s *Scheduler) Register(system System) {
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	s.RegisterNamed(systemType.Name(), system)
}

// RegisterNamed adds a system with an explicit name for stats and logs.
func (s *Scheduler) RegisterNamed(name string, system System) {
	s.systems = append(s.systems, system)
	s.systemStats = append(s.systemStats, &systemStatsInternal{
		name:        name,
		minDuration: time.Duration(1<<63 - 1),
	})
	s.logger.Debug("system registered", "system", name, "position", len(s.systems))
}

// Once executes all registered systems once. dt is in milliseconds.
func (s *Scheduler) Once(dt float64, surface geom.Surface) {
	frame := newUpdateFrame(dt, s.elapsed, s.ticks, surface)

	for i, system := range s.systems {
		start := time.Now()
		system.Execute(frame)
		duration := time.Since(start)

		stats := s.systemStats[i]
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}

	frame.Commands.Flush()

	s.ticks++
	s.elapsed += time.Duration(dt * float64(time.Millisecond))
}

// Run executes all systems repeatedly at the given interval until the context
// is cancelled. surface is called before every pass.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, surface func() geom.Surface) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("scheduler stopped", "ticks", s.ticks, "reason", context.Cause(ctx))
			return
		case now := <-ticker.C:
			dt := float64(now.Sub(lastTime)) / float64(time.Millisecond)
			lastTime = now
			s.Once(dt, surface())
		}
	}
}

// Elapsed returns the scheduler clock, the sum of all deltas passed to Once.
func (s *Scheduler) Elapsed() time.Duration {
	return s.elapsed
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		Name:        s.name,
		SystemCount: len(s.systems),
		Ticks:       s.ticks,
		Elapsed:     s.elapsed,
		Systems:     make([]SystemStats, len(s.systemStats)),
	}

	var totalExecs int64
	for i, internal := range s.systemStats {
		avgDuration := time.Duration(0)
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
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
