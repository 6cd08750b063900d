package duckpond

import (
	"errors"
	"fmt"

	"github.com/akmonengine/duckpond/actor"
	"github.com/akmonengine/duckpond/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

const (
	DefaultFixedTimestep = 1.0 / 60.0
	DefaultMaxSubSteps   = 10
	DefaultIterations    = 10
	DefaultCellSize      = 0.25
	DefaultCellCount     = 1024
)

var ErrBodyExists = errors.New("body already in world")

type World struct {
	// List of all rigid bodies in the world
	Bodies []*actor.RigidBody
	// Gravity acceleration (m/s², or N/kg)
	Gravity mgl64.Vec3
	// Iterations is the number of position passes per sub-step
	Iterations  int
	SpatialGrid *SpatialGrid
	// Materials supplies the contact properties. A nil table makes every
	// contact frictionless and inelastic.
	Materials *actor.MaterialTable
	Workers   int

	Events Events

	accumulator float64
	simTime     float64
}

// NewWorld creates a world whose material table must be total over its
// declared materials.
func NewWorld(gravity mgl64.Vec3, materials *actor.MaterialTable) (*World, error) {
	if materials != nil {
		if err := materials.Validate(); err != nil {
			return nil, fmt.Errorf("material table: %w", err)
		}
	}

	return &World{
		Gravity:     gravity,
		Iterations:  DefaultIterations,
		SpatialGrid: NewSpatialGrid(DefaultCellSize, DefaultCellCount),
		Materials:   materials,
		Workers:     DEFAULT_WORKERS,
		Events:      NewEvents(),
	}, nil
}

// AddBody adds a rigid body to the world
func (w *World) AddBody(body *actor.RigidBody) error {
	if w.HasBody(body) {
		return ErrBodyExists
	}
	if w.Materials != nil {
		if body.Material == nil {
			return fmt.Errorf("body without material: %w", actor.ErrUnknownMaterial)
		}
		if _, err := w.Materials.Get(body.Material.Name); err != nil {
			return err
		}
	}

	w.Bodies = append(w.Bodies, body)

	return nil
}

// HasBody reports whether the body is simulated by this world
func (w *World) HasBody(body *actor.RigidBody) bool {
	for _, b := range w.Bodies {
		if b == body {
			return true
		}
	}

	return false
}

// RemoveBody removes a rigid body from the world
func (w *World) RemoveBody(body *actor.RigidBody) bool {
	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k == -1 {
		return false
	}

	w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	w.Events.forget(body)

	return true
}

// SimTime is the simulated time in seconds
func (w *World) SimTime() float64 {
	return w.simTime
}

// Step advances the simulation in fixedDt increments to catch up with the
// accumulated wall time, running at most maxSubSteps increments. Wall time
// left over once the cap is hit is dropped, so a stalled frame makes the
// simulation slow down instead of spiralling. It returns the number of
// sub-steps run.
func (w *World) Step(fixedDt, wallDt float64, maxSubSteps int) int {
	if fixedDt <= 0 {
		return 0
	}
	if maxSubSteps < 1 {
		maxSubSteps = 1
	}
	if wallDt > 0 {
		w.accumulator += wallDt
	}

	// Tolerance for accumulated rounding of frame deltas
	const epsilon = 1e-9

	substeps := 0
	for w.accumulator+epsilon >= fixedDt && substeps < maxSubSteps {
		w.SubStep(fixedDt)
		w.accumulator -= fixedDt
		w.simTime += fixedDt
		substeps++
	}

	if w.accumulator+epsilon >= fixedDt || w.accumulator < 0 {
		w.accumulator = 0
	}

	if substeps > 0 {
		w.Events.processSleepEvents(w.Bodies)
		w.Events.flush()
	}

	return substeps
}

// SubStep runs one fixed increment of h seconds
func (w *World) SubStep(h float64) {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	iterations := max(1, w.Iterations)

	w.integrate(h)

	// Broad phase then narrow phase
	constraints := w.detectCollision()
	w.Events.recordCollisions(constraints)
	wakeTouched(constraints)

	for range iterations {
		w.solvePosition(h, constraints)
	}

	// Commit velocities from the corrected positions
	w.update(h)

	w.solveVelocity(h, constraints)

	w.trySleep(h)
}

func (w *World) integrate(h float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Integrate(h, w.Gravity)
	})
}

func (w *World) detectCollision() []*constraint.ContactConstraint {
	if w.SpatialGrid == nil {
		w.SpatialGrid = NewSpatialGrid(DefaultCellSize, DefaultCellCount)
	}

	return NarrowPhase(BroadPhase(w.SpatialGrid, w.Bodies), w.Materials)
}

// solvePosition runs sequentially: constraints share bodies
func (w *World) solvePosition(h float64, constraints []*constraint.ContactConstraint) {
	for _, c := range constraints {
		c.SolvePosition(h)
	}
}

func (w *World) update(h float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Update(h)
	})
}

func (w *World) solveVelocity(h float64, constraints []*constraint.ContactConstraint) {
	for _, c := range constraints {
		c.SolveVelocity(h, w.Gravity)
	}
}

// trySleep is too simple to use a task, it slows down in multiple goroutines
func (w *World) trySleep(h float64) {
	for _, body := range w.Bodies {
		body.TrySleep(h)
	}
}

// wakeTouched wakes sleeping bodies hit by a moving one
func wakeTouched(constraints []*constraint.ContactConstraint) {
	for _, c := range constraints {
		if c.BodyA.IsMoving() && c.BodyB.IsSleeping {
			c.BodyB.Awake()
		}
		if c.BodyB.IsMoving() && c.BodyA.IsSleeping {
			c.BodyA.Awake()
		}
	}
}
