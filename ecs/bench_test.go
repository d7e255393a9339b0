package ecs_test

import (
	"testing"

	"github.com/plus3/capsynth/ecs"
	"github.com/plus3/capsynth/geom"
)

func BenchmarkTableInsert(b *testing.B) {
	var ids ecs.Allocator
	table := ecs.NewTable[Position](64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		table.Insert(ids.Next(), Position{X: 1.0, Y: 2.0})
	}
}

func BenchmarkTableDelete(b *testing.B) {
	var ids ecs.Allocator
	table := ecs.NewTable[Position](b.N)

	keys := make([]ecs.EntityId, b.N)
	for i := 0; i < b.N; i++ {
		keys[i] = ids.Next()
		table.Insert(keys[i], Position{X: 1.0, Y: 2.0})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		table.Delete(keys[i])
	}
}

func BenchmarkTableGet(b *testing.B) {
	var ids ecs.Allocator
	table := ecs.NewTable[Position](64)
	id := ids.Next()
	table.Insert(id, Position{X: 1.0, Y: 2.0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = table.Get(id)
	}
}

func BenchmarkTableIterLarge(b *testing.B) {
	var ids ecs.Allocator
	table := ecs.NewTable[Position](10000)
	for i := 0; i < 10000; i++ {
		table.Insert(ids.Next(), Position{X: float64(i)})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, pos := range table.Iter() {
			pos.Y += pos.X
		}
	}
}

func BenchmarkSchedulerOnce(b *testing.B) {
	var ids ecs.Allocator
	positions := ecs.NewTable[Position](1000)
	for i := 0; i < 1000; i++ {
		positions.Insert(ids.Next(), Position{})
	}

	scheduler := ecs.NewScheduler("bench", nil)
	scheduler.Register(&MovementSystem{Positions: positions})
	surface := geom.Surface{Width: 800, Height: 600}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scheduler.Once(16.6, surface)
	}
}
