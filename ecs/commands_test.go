package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plus3/capsynth/ecs"
	"github.com/plus3/capsynth/geom"
)

func TestCommands(t *testing.T) {
	t.Run("spawn inside a system is visible to the next pass", func(t *testing.T) {
		var ids ecs.Allocator
		positions := ecs.NewTable[Position](4)
		seen := []int{}

		scheduler := ecs.NewScheduler("sim", nil)
		scheduler.RegisterNamed("spawner", ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
			seen = append(seen, positions.Len())
			frame.Commands.Spawn(func() {
				positions.Insert(ids.Next(), Position{})
			})
		}))

		scheduler.Once(1, geom.Surface{})
		scheduler.Once(1, geom.Surface{})
		scheduler.Once(1, geom.Surface{})

		assert.Equal(t, []int{0, 1, 2}, seen)
	})

	t.Run("delete during iteration is deferred", func(t *testing.T) {
		positions := ecs.NewTable[Position](4)
		for i := 1; i <= 3; i++ {
			positions.Insert(ecs.EntityId(i), Position{X: float64(i)})
		}

		visited := 0
		scheduler := ecs.NewScheduler("sim", nil)
		scheduler.RegisterNamed("reaper", ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
			for id, pos := range positions.Iter() {
				visited++
				if pos.X >= 2 {
					frame.Commands.Defer(func() { positions.Delete(id) })
				}
			}
		}))

		scheduler.Once(1, geom.Surface{})

		assert.Equal(t, 3, visited)
		assert.Equal(t, []ecs.EntityId{1}, positions.Ids())
	})

	t.Run("buffer resets after flush", func(t *testing.T) {
		var frame *ecs.UpdateFrame
		scheduler := ecs.NewScheduler("sim", nil)
		scheduler.RegisterNamed("capture", ecs.SystemFunc(func(f *ecs.UpdateFrame) {
			f.Commands.Defer(func() {})
			f.Commands.Spawn(func() {})
			assert.Equal(t, 2, f.Commands.Len())
			frame = f
		}))

		scheduler.Once(1, geom.Surface{})
		assert.Equal(t, 0, frame.Commands.Len())
	})
}
