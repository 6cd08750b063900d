package scene

import (
	"fmt"
	"math"

	"github.com/akmonengine/duckpond/actor"
	"github.com/akmonengine/duckpond/asset"
	"github.com/akmonengine/duckpond/config"
	"github.com/go-gl/mathgl/mgl64"
)

var up = mgl64.Vec3{0, 1, 0}

// Path is the closed loop the actor follows
type Path struct {
	AngularRate  float64 // ω, rad/s
	Radius       float64
	BobAmplitude float64
	BobFrequency float64 // rad/s
	YOffset      float64
}

func PathFromConfig(cfg config.ActorConfig) Path {
	return Path{
		AngularRate:  cfg.AngularRate,
		Radius:       cfg.Radius,
		BobAmplitude: cfg.BobAmplitude,
		BobFrequency: cfg.BobFrequency,
		YOffset:      cfg.YOffset,
	}
}

// Pose is the actor state at one instant
type Pose struct {
	Position        mgl64.Vec3
	Heading         float64
	Rotation        mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

// Pose is a pure function of t. The heading faces along atan2(x, z) and the
// velocities are the analytic derivatives of the path.
func (p Path) Pose(t float64) Pose {
	wt := t * p.AngularRate
	x := -math.Sin(wt) * p.Radius
	z := math.Cos(wt) * p.Radius
	y := math.Sin(t*p.BobFrequency)*p.BobAmplitude + p.YOffset

	dx := -math.Cos(wt) * p.AngularRate * p.Radius
	dz := -math.Sin(wt) * p.AngularRate * p.Radius
	dy := math.Cos(t*p.BobFrequency) * p.BobFrequency * p.BobAmplitude

	heading := math.Atan2(x, z)
	var yawRate float64
	if r2 := x*x + z*z; r2 > 0 {
		yawRate = (dx*z - dz*x) / r2
	}

	return Pose{
		Position:        mgl64.Vec3{x, y, z},
		Heading:         heading,
		Rotation:        mgl64.QuatRotate(heading, up),
		Velocity:        mgl64.Vec3{dx, dy, dz},
		AngularVelocity: mgl64.Vec3{0, yawRate, 0},
	}
}

// ScriptedActor drives one kinematic body along its path
type ScriptedActor struct {
	Path  Path
	Body  *actor.RigidBody
	Proxy *RenderProxy

	elapsed float64
}

// NewScriptedActor builds the actor body from the node bounds. Flat bounds
// are fatal.
func NewScriptedActor(node *asset.Node, path Path, material *actor.Material) (*ScriptedActor, error) {
	shape, err := actor.BoxFromBounds(node.Bounds)
	if err != nil {
		return nil, fmt.Errorf("actor node %q: %w: %w", node.Name, ErrDegenerateGeometry, err)
	}

	pose := path.Pose(0)
	body := actor.NewKinematicBody(actor.NewTransformAt(pose.Position, pose.Rotation), shape, material)

	proxy := &RenderProxy{
		ID:       node.Name,
		Name:     node.Name,
		Tag:      node.Tag,
		Position: pose.Position,
		Rotation: pose.Rotation,
		Bounds:   node.Bounds,
	}

	return &ScriptedActor{Path: path, Body: body, Proxy: proxy}, nil
}

func (a *ScriptedActor) Elapsed() float64 {
	return a.elapsed
}

// Pose returns the pose at t without touching the body
func (a *ScriptedActor) Pose(t float64) Pose {
	return a.Path.Pose(t)
}

// Update moves the body and its proxy to the pose at t
func (a *ScriptedActor) Update(t float64) Pose {
	a.elapsed = t
	pose := a.Path.Pose(t)

	a.Body.SetKinematicPose(pose.Position, pose.Rotation, pose.Velocity, pose.AngularVelocity)
	a.syncProxy()

	return pose
}

func (a *ScriptedActor) syncProxy() {
	a.Proxy.Position = a.Body.Transform.Position
	a.Proxy.Rotation = a.Body.Transform.Rotation
}
