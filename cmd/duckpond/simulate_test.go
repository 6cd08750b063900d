package main

import (
	"testing"

	"github.com/akmonengine/duckpond/scene"
	"github.com/stretchr/testify/assert"
)

func TestTapPosition(t *testing.T) {
	viewport := scene.Viewport{Width: 1280, Height: 720, PixelAspect: 1}

	x, y := tapPosition(17, viewport)
	assert.Equal(t, 640.0, x)
	assert.Equal(t, 360.0, y)

	seen := make(map[[2]float64]bool)
	for i := range 35 {
		x, y := tapPosition(i, viewport)
		assert.True(t, x > 0 && x < 1280 && y > 0 && y < 720)
		seen[[2]float64{x, y}] = true
	}
	assert.Len(t, seen, 35)

	// The grid repeats after 35 taps
	x0, y0 := tapPosition(0, viewport)
	x35, y35 := tapPosition(35, viewport)
	assert.Equal(t, x0, x35)
	assert.Equal(t, y0, y35)
}

func TestSummary_Add(t *testing.T) {
	var total summary
	total.add(scene.FrameStats{SubSteps: 1, Spawned: 2, Rejected: 1, Landed: 1, Settled: 0})
	total.add(scene.FrameStats{SubSteps: 2, Landed: 1, Settled: 3})
	total.add(scene.FrameStats{SubSteps: 1, Settled: 2})

	assert.Equal(t, 3, total.frames)
	assert.Equal(t, 4, total.subSteps)
	assert.Equal(t, 2, total.spawned)
	assert.Equal(t, 1, total.rejected)
	assert.Equal(t, 2, total.landed)
	assert.Equal(t, 2, total.settled)
}
