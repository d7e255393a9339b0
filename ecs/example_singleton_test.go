package ecs_test

import (
	"fmt"

	"github.com/plus3/capsynth/ecs"
)

type Tuning struct {
	RotateStep float64
}

// ExampleSingleton shows a cell written from outside the simulation and read
// once per pass. Version tells the reader whether anything changed.
func ExampleSingleton() {
	cell := ecs.NewSingleton(Tuning{RotateStep: 0.1})

	seen := uint64(0)
	read := func() {
		if cell.Version() == seen {
			fmt.Println("unchanged")
			return
		}
		seen = cell.Version()
		tuning, _ := cell.Get()
		fmt.Printf("rotate step %.2f\n", tuning.RotateStep)
	}

	read()
	read()
	cell.Set(Tuning{RotateStep: 0.2})
	read()

	// Output:
	// rotate step 0.10
	// unchanged
	// rotate step 0.20
}
