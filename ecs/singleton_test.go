package ecs_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plus3/capsynth/ecs"
)

func TestSingleton(t *testing.T) {
	t.Run("empty until set", func(t *testing.T) {
		cell := ecs.NewSingleton[Position]()
		_, ok := cell.Get()
		assert.False(t, ok)
		assert.False(t, cell.Exists())
		assert.Equal(t, uint64(0), cell.Version())

		cell.Set(Position{X: 1})
		got, ok := cell.Get()
		assert.True(t, ok)
		assert.Equal(t, 1.0, got.X)
		assert.Equal(t, uint64(1), cell.Version())
	})

	t.Run("initializer", func(t *testing.T) {
		cell := ecs.NewSingleton(Position{Y: 2})
		got, ok := cell.Get()
		assert.True(t, ok)
		assert.Equal(t, 2.0, got.Y)
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		cell := ecs.NewSingleton(0)

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 100 {
					cell.Update(func(current int, _ bool) int { return current + 1 })
				}
			}()
		}
		wg.Wait()

		got, _ := cell.Get()
		assert.Equal(t, 800, got)
		assert.Equal(t, uint64(801), cell.Version())
	})
}
