package main

import (
	"context"
	"fmt"

	"github.com/akmonengine/duckpond/scene"
)

type summary struct {
	frames   int
	subSteps int
	spawned  int
	rejected int
	evicted  int
	landed   int
	// settled is taken from the latest frame
	settled int
}

func (s *summary) add(stats scene.FrameStats) {
	s.frames++
	s.subSteps += stats.SubSteps
	s.spawned += stats.Spawned
	s.rejected += stats.Rejected
	s.landed += stats.Landed
	s.settled = stats.Settled
}

func simulate(ctx context.Context) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	loop, future, err := newFrameLoop(ctx, logger)
	if err != nil {
		return err
	}

	select {
	case <-future.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	var total summary
	loop.OnFrame = total.add

	viewport := *loop.Scene.Viewport
	taps := 0
	for frame := 0; frame < *simulateFrames; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if frame%10 == 0 && taps < *simulateTaps {
			x, y := tapPosition(taps, viewport)
			loop.Submit(scene.PointerEvent{X: x, Y: y, Phase: scene.PhasePress, Source: "simulate"})
			loop.Submit(scene.PointerEvent{X: x, Y: y, Phase: scene.PhaseRelease, Source: "simulate"})
			taps++
		}

		if _, err := loop.Tick(*simulateDt); err != nil {
			return err
		}
	}

	world := loop.Scene.World
	total.evicted = total.spawned - loop.Scene.Pool.Len()

	fmt.Printf("frames:     %d (%d sub-steps, %.3fs simulated)\n", total.frames, total.subSteps, world.SimTime())
	fmt.Printf("taps:       %d (%d spawned, %d rejected)\n", taps, total.spawned, total.rejected)
	fmt.Printf("pool:       %d/%d (%d evicted, %d settled)\n", loop.Scene.Pool.Len(), loop.Scene.Pool.Capacity, total.evicted, total.settled)
	fmt.Printf("landed:     %d\n", total.landed)
	fmt.Printf("bodies:     %d\n", len(world.Bodies))

	return nil
}

// tapPosition spreads taps over a 7x5 grid around the screen center
func tapPosition(i int, viewport scene.Viewport) (float64, float64) {
	column := i%7 - 3
	row := (i/7)%5 - 2

	x := float64(viewport.Width)/2 + float64(column)*float64(viewport.Width)/16
	y := float64(viewport.Height)/2 + float64(row)*float64(viewport.Height)/12

	return x, y
}
